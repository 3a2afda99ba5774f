package models

import "time"

// Context holds caller supplied metadata. Values are expected to be JSON compatible:
// strings, numbers, booleans, nil, nested maps and slices of those.
type Context map[string]interface{}

// Clone returns a shallow copy. A nil Context clones to an empty one.
func (c Context) Clone() Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// LogRecord is the value handed to every handler for one accepted log call.
// Handlers must treat it as read-only; Context is shared between all handlers of a call.
type LogRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Context   Context   `json:"context"`
}

// NewLogRecord builds a record, truncating the timestamp to whole seconds and copying
// ctx so later changes by the caller are not visible to handlers.
func NewLogRecord(id string, at time.Time, level Level, message string, ctx Context) LogRecord {
	return LogRecord{
		ID:        id,
		Timestamp: at.Truncate(time.Second),
		Level:     level,
		Message:   message,
		Context:   ctx.Clone(),
	}
}

// Get returns a single context value.
func (r LogRecord) Get(key string) (interface{}, bool) {
	v, ok := r.Context[key]
	return v, ok
}

// LogEntry is the loosely typed form of a log call as received from outside the
// process, before the level name has been validated.
type LogEntry struct {
	Level   string  `json:"level"`
	Message string  `json:"message"`
	Context Context `json:"context,omitempty"`
}
