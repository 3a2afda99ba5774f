package logger

import "logvault/pkg/models"

// Handler consumes accepted log records. It is the logger's only output; formatting and
// delivery are entirely up to the implementation. A returned error stops dispatch.
type Handler interface {
	Handle(record models.LogRecord) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(record models.LogRecord) error

// Handle calls f(record).
func (f HandlerFunc) Handle(record models.LogRecord) error {
	return f(record)
}
