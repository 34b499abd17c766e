// Package activitylog is the append-only narrative log of dataspace activity.
// Every federation scenario records its steps here; operators read them back
// newest first.
package activitylog

import (
	"time"
)

// Level is the severity of a log entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
	LevelDebug Level = "DEBUG"
)

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	switch l {
	case LevelInfo, LevelWarn, LevelError, LevelDebug:
		return true
	}
	return false
}

// Details is the structured payload of an entry.
type Details map[string]any

// Entry is one immutable narrative step.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Action    string    `json:"action"`
	Details   Details   `json:"details"`
}
