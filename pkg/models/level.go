package models

import (
	"errors"
	"fmt"
)

// Level is a position on the fixed severity scale. Lower values are more severe.
type Level int

const (
	LevelEmergency Level = iota
	LevelAlert
	LevelCritical
	LevelError
	LevelWarning
	LevelNotice
	LevelInfo
	LevelDebug
)

var levelNames = [...]string{
	LevelEmergency: "emergency",
	LevelAlert:     "alert",
	LevelCritical:  "critical",
	LevelError:     "error",
	LevelWarning:   "warning",
	LevelNotice:    "notice",
	LevelInfo:      "info",
	LevelDebug:     "debug",
}

// ErrInvalidLevel is matched by every InvalidLevelError via errors.Is.
var ErrInvalidLevel = errors.New("invalid log level")

// InvalidLevelError carries the level name that was not recognized.
type InvalidLevelError struct {
	Name string
}

// Error implements error.
func (e *InvalidLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q", e.Name)
}

// Is makes errors.Is match ErrInvalidLevel.
func (e *InvalidLevelError) Is(target error) bool {
	return target == ErrInvalidLevel
}

// Levels returns the whole scale, most severe first.
func Levels() []Level {
	out := make([]Level, len(levelNames))
	for i := range levelNames {
		out[i] = Level(i)
	}
	return out
}

// ParseLevel maps an exact lowercase level name to its Level.
func ParseLevel(name string) (Level, error) {
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return 0, &InvalidLevelError{Name: name}
}

// Valid reports whether l is one of the eight levels of the scale.
func (l Level) Valid() bool {
	return l >= LevelEmergency && l <= LevelDebug
}

// String returns the lowercase level name.
func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// Allows reports whether a record at level other passes a threshold of l, that is
// whether other is at least as severe as l.
func (l Level) Allows(other Level) bool {
	return other <= l
}

// MarshalText encodes l as its name. Out of range levels fail.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, &InvalidLevelError{Name: l.String()}
	}
	return []byte(levelNames[l]), nil
}

// UnmarshalText decodes a level name using ParseLevel.
func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
