package logger

import (
	"sync"
	"time"

	"logvault/pkg/models"

	"github.com/google/uuid"
)

// Logger filters log calls against a minimum level and fans accepted records out to
// its handlers, synchronously and in registration order.
//
// Logger is safe for concurrent use. The threshold and handler list are read under a
// lock, but handlers run outside it, so a handler may itself call into the Logger.
type Logger struct {
	mu       sync.RWMutex
	minLevel models.Level
	handlers []Handler

	now   func() time.Time
	newID func() string
}

// Option customizes a Logger at construction time.
type Option func(*Logger)

// WithClock replaces time.Now as the record timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) { l.now = now }
}

// WithIDFunc replaces uuid.NewString as the record ID source.
func WithIDFunc(newID func() string) Option {
	return func(l *Logger) { l.newID = newID }
}

// New creates a logger with the given minimum level. An empty string means debug, in
// which case everything is logged.
func New(minimum string, opts ...Option) (*Logger, error) {
	l := &Logger{
		minLevel: models.LevelDebug,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}

	if minimum != "" {
		if err := l.Configure(minimum); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Configure sets the minimum level. Unknown names are rejected with an
// *models.InvalidLevelError and the previous threshold is kept.
func (l *Logger) Configure(minimum string) error {
	level, err := models.ParseLevel(minimum)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
	return nil
}

// SetLogLevel is an alias for Configure.
func (l *Logger) SetLogLevel(minimum string) error {
	return l.Configure(minimum)
}

// Level returns the current minimum level.
func (l *Logger) Level() models.Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.minLevel
}

// AddHandler appends h to the handler list. Handlers are never deduplicated or removed.
func (l *Logger) AddHandler(h Handler) {
	if h == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers = append(l.handlers, h)
}

// RegisterHandler is an alias for AddHandler.
func (l *Logger) RegisterHandler(h Handler) {
	l.AddHandler(h)
}

// Log validates level, drops the call if it is below the minimum and otherwise
// delivers a new record to every handler. The first handler error is returned as is
// and the remaining handlers are skipped.
func (l *Logger) Log(level, message string, ctx models.Context) error {
	lvl, err := models.ParseLevel(level)
	if err != nil {
		return err
	}
	return l.LogLevel(lvl, message, ctx)
}

// LogLevel is Log with an already typed level.
func (l *Logger) LogLevel(level models.Level, message string, ctx models.Context) error {
	_, err := l.Dispatch(level, message, ctx)
	return err
}

// Dispatch is LogLevel that also reports whether the call passed the threshold. The
// threshold and handler list are read once, so accepted reflects the decision that
// was actually applied to this call.
func (l *Logger) Dispatch(level models.Level, message string, ctx models.Context) (accepted bool, err error) {
	if !level.Valid() {
		return false, &models.InvalidLevelError{Name: level.String()}
	}

	l.mu.RLock()
	minLevel := l.minLevel
	handlers := l.handlers[:len(l.handlers):len(l.handlers)]
	l.mu.RUnlock()

	if !minLevel.Allows(level) {
		return false, nil
	}

	record := models.NewLogRecord(l.newID(), l.now(), level, message, ctx)
	for _, h := range handlers {
		if err := h.Handle(record); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Emergency logs message at emergency level.
func (l *Logger) Emergency(message string, ctx models.Context) error {
	return l.LogLevel(models.LevelEmergency, message, ctx)
}

// Alert logs message at alert level.
func (l *Logger) Alert(message string, ctx models.Context) error {
	return l.LogLevel(models.LevelAlert, message, ctx)
}

// Critical logs message at critical level.
func (l *Logger) Critical(message string, ctx models.Context) error {
	return l.LogLevel(models.LevelCritical, message, ctx)
}

// Error logs message at error level.
func (l *Logger) Error(message string, ctx models.Context) error {
	return l.LogLevel(models.LevelError, message, ctx)
}

// Warning logs message at warning level.
func (l *Logger) Warning(message string, ctx models.Context) error {
	return l.LogLevel(models.LevelWarning, message, ctx)
}

// Notice logs message at notice level.
func (l *Logger) Notice(message string, ctx models.Context) error {
	return l.LogLevel(models.LevelNotice, message, ctx)
}

// Info logs message at info level.
func (l *Logger) Info(message string, ctx models.Context) error {
	return l.LogLevel(models.LevelInfo, message, ctx)
}

// Debug logs message at debug level.
func (l *Logger) Debug(message string, ctx models.Context) error {
	return l.LogLevel(models.LevelDebug, message, ctx)
}
