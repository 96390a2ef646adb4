package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Nop returns a Logger that discards everything. Useful as a default when
// callers pass a nil logger, and in tests that do not inspect log output.
func Nop() Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewLogrusAdapterFromLogger(logger)
}

// MemoryLogger captures log entries for verification in tests.
type MemoryLogger struct {
	entries       *[]LogEntry
	pendingError  error
	pendingFields []Field
}

// LogEntry is a single captured log entry.
type LogEntry struct {
	Level   string
	Message string
	Fields  []Field
	Error   error
}

// NewMemoryLogger returns a MemoryLogger with an empty entry buffer.
func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{entries: &[]LogEntry{}}
}

func (m *MemoryLogger) record(level, msg string, fields []Field) {
	all := append(append([]Field{}, m.pendingFields...), fields...)
	*m.entries = append(*m.entries, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  all,
		Error:   m.pendingError,
	})
}

func (m *MemoryLogger) Debug(msg string, fields ...Field) { m.record("DEBUG", msg, fields) }
func (m *MemoryLogger) Info(msg string, fields ...Field)  { m.record("INFO", msg, fields) }
func (m *MemoryLogger) Warn(msg string, fields ...Field)  { m.record("WARN", msg, fields) }
func (m *MemoryLogger) Error(msg string, fields ...Field) { m.record("ERROR", msg, fields) }

func (m *MemoryLogger) WithError(err error) Logger {
	return &MemoryLogger{entries: m.entries, pendingError: err, pendingFields: m.pendingFields}
}

func (m *MemoryLogger) WithField(key string, value interface{}) Logger {
	return m.WithFields(Field{Key: key, Value: value})
}

func (m *MemoryLogger) WithFields(fields ...Field) Logger {
	all := append(append([]Field{}, m.pendingFields...), fields...)
	return &MemoryLogger{entries: m.entries, pendingError: m.pendingError, pendingFields: all}
}

// Entries returns all captured log entries.
func (m *MemoryLogger) Entries() []LogEntry {
	return *m.entries
}

// HasEntry reports whether an entry with the given level and message exists.
func (m *MemoryLogger) HasEntry(level, message string) bool {
	for _, entry := range *m.entries {
		if entry.Level == level && entry.Message == message {
			return true
		}
	}
	return false
}
