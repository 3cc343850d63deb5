package testdoubles

import (
	"sync"

	"github.com/querymill/readmodel-go/readmodel"
)

// SpyLogRecord represents one recorded log call.
type SpyLogRecord struct {
	Level   string
	Message string
	Args    []any
}

// LoggerSpy is a Logger implementation that captures log calls for testing.
type LoggerSpy struct {
	mu      sync.Mutex
	records []SpyLogRecord
}

// NewLoggerSpy creates a new LoggerSpy instance.
func NewLoggerSpy() *LoggerSpy {
	return &LoggerSpy{}
}

// Debug implements the Logger interface for testing.
func (s *LoggerSpy) Debug(msg string, args ...any) {
	s.record("debug", msg, args)
}

// Info implements the Logger interface for testing.
func (s *LoggerSpy) Info(msg string, args ...any) {
	s.record("info", msg, args)
}

// Warn implements the Logger interface for testing.
func (s *LoggerSpy) Warn(msg string, args ...any) {
	s.record("warn", msg, args)
}

// Error implements the Logger interface for testing.
func (s *LoggerSpy) Error(msg string, args ...any) {
	s.record("error", msg, args)
}

func (s *LoggerSpy) record(level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SpyLogRecord{Level: level, Message: msg, Args: args})
}

// Records returns a copy of all recorded log calls.
func (s *LoggerSpy) Records() []SpyLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyLogRecord(nil), s.records...)
}

// RecordsAtLevel returns a copy of the recorded log calls at one level.
func (s *LoggerSpy) RecordsAtLevel(level string) []SpyLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := make([]SpyLogRecord, 0, len(s.records))
	for _, record := range s.records {
		if record.Level == level {
			filtered = append(filtered, record)
		}
	}

	return filtered
}

// Reset clears all recorded log calls.
func (s *LoggerSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = s.records[:0]
}

var _ readmodel.Logger = (*LoggerSpy)(nil)
