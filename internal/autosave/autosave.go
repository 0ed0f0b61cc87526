// Package autosave persists the editor's Graph Projection on a trailing-edge
// debounce, keeps a bounded ring of labeled snapshots, and detects stale
// concurrent saves (another instance writing the same workspace).
package autosave

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"mindmap-cli/internal/errtrack"
	"mindmap-cli/internal/model"
	"mindmap-cli/internal/store"
)

type Status string

const (
	StatusUnsaved Status = "unsaved"
	StatusSaving  Status = "saving"
	StatusSaved   Status = "saved"
)

const (
	// DefaultInterval is the trailing-edge debounce window.
	DefaultInterval = 30 * time.Second
	// DefaultConflictThreshold is how much older a persisted snapshot must be
	// than the in-memory data before a conflict is signalled. Anything within
	// the threshold is ordinary autosave lag.
	DefaultConflictThreshold = time.Minute
)

// ErrClosed is returned by SaveNow once the controller has been closed.
var ErrClosed = errors.New("autosave: controller closed")

type Opts struct {
	Local *store.Local

	// Data is the in-memory state at mount time, used for the conflict check.
	Data model.Snapshot

	Interval          time.Duration
	ConflictThreshold time.Duration

	// OnStatus observes unsaved -> saving -> saved transitions.
	OnStatus func(Status)
	// OnConflictFound fires at most once, at mount, when the persisted
	// snapshot is stale relative to Data. Last-write-wins: the host offers a
	// restore, no merge is attempted.
	OnConflictFound func(label string, stale model.Snapshot)

	Logger *zap.Logger
	Errors *errtrack.Tracker
}

type Controller struct {
	local    *store.Local
	interval time.Duration
	onStatus func(Status)
	logger   *zap.Logger
	errs     *errtrack.Tracker

	// flushMu serializes snapshot writes so a timer-fired flush and a
	// SaveNow (or the flush-on-exit in Close) never interleave.
	flushMu sync.Mutex

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	closed  bool
	current model.Snapshot
	// lastSaved is the comparison baseline; unrelated notifies that carry
	// identical data must not re-arm the timer.
	lastSaved []byte
}

// New mounts a controller and runs the conflict check against the persisted
// latest snapshot.
func New(ctx context.Context, opts Opts) (*Controller, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	threshold := opts.ConflictThreshold
	if threshold <= 0 {
		threshold = DefaultConflictThreshold
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Controller{
		local:    opts.Local,
		interval: interval,
		onStatus: opts.OnStatus,
		logger:   logger,
		errs:     opts.Errors,
		current:  opts.Data,
	}

	latest, err := opts.Local.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if latest != nil && opts.OnConflictFound != nil {
		age := opts.Data.Timestamp.Sub(latest.Timestamp)
		if age > threshold {
			opts.OnConflictFound(agoLabel(age), *latest)
		}
	}
	return c, nil
}

// Notify hands the controller the current graph after a data change. Rapid
// successive changes collapse into a single save at the trailing edge of the
// debounce window; notifies carrying unchanged data are ignored.
func (c *Controller) Notify(graph model.Graph, tree *model.TreeNode) {
	if c == nil {
		return
	}
	snap := model.Snapshot{
		Nodes:     graph.Nodes,
		Edges:     graph.Edges,
		Tree:      tree,
		Timestamp: time.Now().UTC(),
	}
	key := snapshotKey(snap)

	c.mu.Lock()
	if c.closed || bytes.Equal(key, c.lastSaved) {
		c.mu.Unlock()
		return
	}
	c.current = snap
	c.pending = true
	c.setStatusLocked(StatusUnsaved)
	if c.timer == nil {
		c.timer = time.AfterFunc(c.interval, c.onTimer)
		c.mu.Unlock()
		return
	}
	c.timer.Reset(c.interval)
	c.mu.Unlock()
}

func (c *Controller) onTimer() {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()
	c.mu.Lock()
	if c.closed || !c.pending {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	_ = c.flush(context.Background(), "")
}

// SaveNow bypasses the debounce: it cancels any pending timer, writes the
// current snapshot synchronously and pushes a labeled history entry. After
// Close it reports ErrClosed.
func (c *Controller) SaveNow(ctx context.Context, label string) error {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.pending = true
	c.mu.Unlock()
	if label == "" {
		label = "manual save"
	}
	return c.flush(ctx, label)
}

// flush writes the latest snapshot and, when label is non-empty, a history
// entry. The caller must hold flushMu; a flush that raced an earlier one and
// lost finds pending already cleared and skips the write. Storage failures
// are captured and leave the status at unsaved; the editor stays usable.
func (c *Controller) flush(ctx context.Context, label string) error {
	c.mu.Lock()
	if !c.pending {
		c.mu.Unlock()
		return nil
	}
	snap := c.current
	c.setStatusLocked(StatusSaving)
	c.mu.Unlock()

	snap.Label = label
	if err := c.local.SaveLatest(ctx, snap); err != nil {
		c.fail(fmt.Errorf("write latest snapshot: %w", err))
		return err
	}
	if label != "" {
		if err := c.local.PushHistory(ctx, snap); err != nil {
			c.fail(fmt.Errorf("push history: %w", err))
			return err
		}
	}

	c.mu.Lock()
	c.pending = false
	c.lastSaved = snapshotKey(snap)
	c.setStatusLocked(StatusSaved)
	c.mu.Unlock()
	c.logger.Debug("autosaved", zap.Int("nodes", len(snap.Nodes)), zap.String("label", label))
	return nil
}

func (c *Controller) fail(err error) {
	c.errs.Capture("autosave", err)
	c.mu.Lock()
	c.setStatusLocked(StatusUnsaved)
	c.mu.Unlock()
}

// Close stops the debounce timer and performs the flush-on-exit save if a
// change is still pending. The controller is unusable afterwards.
func (c *Controller) Close(ctx context.Context) error {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	pending := c.pending
	c.closed = true
	c.mu.Unlock()

	if pending {
		return c.flush(ctx, "")
	}
	return nil
}

func (c *Controller) RestoreFromHistory(ctx context.Context, index int) (*model.Snapshot, error) {
	return c.local.RestoreFromHistory(ctx, index)
}

func (c *Controller) DeleteHistorySlot(ctx context.Context, index int) error {
	return c.local.DeleteHistorySlot(ctx, index)
}

func (c *Controller) setStatusLocked(s Status) {
	if c.onStatus != nil {
		c.onStatus(s)
	}
}

// snapshotKey is the change-detection fingerprint: nodes and edges only, so
// timestamps and labels never produce false "changed" signals.
func snapshotKey(snap model.Snapshot) []byte {
	b, err := json.Marshal(model.Graph{Nodes: snap.Nodes, Edges: snap.Edges})
	if err != nil {
		return nil
	}
	return b
}

func agoLabel(d time.Duration) string {
	switch {
	case d < 2*time.Minute:
		return "about a minute ago"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 2*time.Hour:
		return "about an hour ago"
	default:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	}
}
