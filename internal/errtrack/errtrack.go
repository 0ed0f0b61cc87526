// Package errtrack collects non-fatal errors for diagnostics panels.
//
// The tracker is an explicit object handed to its consumers, never a
// package-level buffer: tests get their own instance and nothing leaks
// between them.
package errtrack

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultMaxEntries = 100

type Entry struct {
	Time    time.Time `json:"time"`
	Scope   string    `json:"scope"`
	Message string    `json:"message"`
}

type Tracker struct {
	mu      sync.Mutex
	entries []Entry
	max     int
	logger  *zap.Logger
}

// New returns a tracker keeping at most max entries (<= 0 means the
// default). The logger receives every captured error as it happens.
func New(max int, logger *zap.Logger) *Tracker {
	if max <= 0 {
		max = defaultMaxEntries
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{max: max, logger: logger}
}

// Capture records a non-fatal error under a scope ("autosave", "assist", ...).
// nil errors are ignored so call sites can pass results through unconditionally.
func (t *Tracker) Capture(scope string, err error) {
	if t == nil || err == nil {
		return
	}
	t.logger.Warn("captured error", zap.String("scope", scope), zap.Error(err))

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, Entry{Time: time.Now().UTC(), Scope: scope, Message: err.Error()})
	if len(t.entries) > t.max {
		t.entries = t.entries[len(t.entries)-t.max:]
	}
}

// Recent returns a copy of the buffered entries, oldest first.
func (t *Tracker) Recent() []Entry {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Tracker) Clear() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = nil
}
