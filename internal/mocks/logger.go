package mocks

import (
	"sync"

	"weatherbot.app/internal/ports"
)

// LogEntry is one message captured by Logger
type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// Logger records log calls so tests can assert on them
type Logger struct {
	mu      sync.Mutex
	entries []LogEntry
}

func NewLogger() *Logger {
	return &Logger{}
}

func (l *Logger) Debug(msg string, fields ...ports.Field) { l.record("debug", msg, fields) }
func (l *Logger) Info(msg string, fields ...ports.Field)  { l.record("info", msg, fields) }
func (l *Logger) Warn(msg string, fields ...ports.Field)  { l.record("warn", msg, fields) }
func (l *Logger) Error(msg string, fields ...ports.Field) { l.record("error", msg, fields) }

func (l *Logger) record(level, msg string, fields []ports.Field) {
	entry := LogEntry{Level: level, Message: msg, Fields: make(map[string]interface{}, len(fields))}
	for _, f := range fields {
		entry.Fields[f.Key] = f.Value
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

// Entries returns a copy of everything logged so far
func (l *Logger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Has reports whether a message was logged at the given level
func (l *Logger) Has(level, msg string) bool {
	for _, e := range l.Entries() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}
