package logger

import (
	"fmt"
	"sync"
)

// Entry is one message captured by a RecordingLogger.
type Entry struct {
	Level   string
	Message string
}

// RecordingLogger captures messages instead of writing them. Fatalf records and does not exit.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *RecordingLogger) record(level, msg string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: fmt.Sprintf(msg, args...)})
}

func (r *RecordingLogger) Debugf(msg string, args ...any) { r.record("debug", msg, args...) }
func (r *RecordingLogger) Infof(msg string, args ...any)  { r.record("info", msg, args...) }
func (r *RecordingLogger) Warnf(msg string, args ...any)  { r.record("warn", msg, args...) }
func (r *RecordingLogger) Errorf(msg string, args ...any) { r.record("error", msg, args...) }
func (r *RecordingLogger) Fatalf(msg string, args ...any) { r.record("fatal", msg, args...) }

// Entries returns a copy of everything recorded so far.
func (r *RecordingLogger) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}
