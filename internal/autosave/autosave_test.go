package autosave

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-cli/internal/errtrack"
	"mindmap-cli/internal/model"
	"mindmap-cli/internal/store"
)

type statusLog struct {
	mu       sync.Mutex
	statuses []Status
}

func (sl *statusLog) record(s Status) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	sl.statuses = append(sl.statuses, s)
}

func (sl *statusLog) count(s Status) int {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	n := 0
	for _, got := range sl.statuses {
		if got == s {
			n++
		}
	}
	return n
}

func openLocal(t *testing.T) *store.Local {
	t.Helper()
	s := store.Store{Dir: t.TempDir()}
	l, err := s.OpenLocal(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func graphWith(label string) model.Graph {
	return model.Graph{
		Nodes: []model.FlowNode{{ID: "n1", Data: model.NodeData{Label: label}}},
		Edges: []model.FlowEdge{},
	}
}

func mount(t *testing.T, l *store.Local, sl *statusLog, interval time.Duration) *Controller {
	t.Helper()
	c, err := New(context.Background(), Opts{
		Local:    l,
		Data:     model.Snapshot{Timestamp: time.Now().UTC()},
		Interval: interval,
		OnStatus: sl.record,
		Errors:   errtrack.New(0, nil),
	})
	require.NoError(t, err)
	return c
}

func TestDebounceCollapsesRapidChanges(t *testing.T) {
	ctx := context.Background()
	l := openLocal(t)
	sl := &statusLog{}
	c := mount(t, l, sl, 80*time.Millisecond)

	for i := 0; i < 5; i++ {
		c.Notify(graphWith(fmt.Sprintf("edit %d", i)), nil)
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return sl.count(StatusSaved) == 1
	}, time.Second, 10*time.Millisecond, "expected exactly one save at the trailing edge")

	assert.Equal(t, 1, sl.count(StatusSaving), "five rapid edits must collapse into one write")
	assert.Equal(t, 5, sl.count(StatusUnsaved))

	latest, err := l.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "edit 4", latest.Nodes[0].Data.Label, "the trailing save carries the last edit")

	require.NoError(t, c.Close(ctx))
}

func TestUnchangedDataDoesNotRearm(t *testing.T) {
	ctx := context.Background()
	l := openLocal(t)
	sl := &statusLog{}
	c := mount(t, l, sl, 50*time.Millisecond)

	g := graphWith("stable")
	c.Notify(g, nil)
	require.Eventually(t, func() bool { return sl.count(StatusSaved) == 1 }, time.Second, 10*time.Millisecond)

	// Re-render with identical data: no new unsaved transition, no new write.
	c.Notify(g, nil)
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 1, sl.count(StatusSaving))
	assert.Equal(t, 1, sl.count(StatusUnsaved))

	require.NoError(t, c.Close(ctx))
}

func TestSaveNowBypassesDebounceAndPushesHistory(t *testing.T) {
	ctx := context.Background()
	l := openLocal(t)
	sl := &statusLog{}
	c := mount(t, l, sl, time.Hour) // debounce far in the future

	c.Notify(graphWith("draft"), &model.TreeNode{ID: "n1", Content: "draft"})
	require.NoError(t, c.SaveNow(ctx, "before refactor"))

	latest, err := l.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "draft", latest.Nodes[0].Data.Label)

	history, err := l.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "before refactor", history[0].Label)
	assert.NotEmpty(t, history[0].ID)

	// The pending timer was cancelled; no second write sneaks in.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, sl.count(StatusSaving))

	require.NoError(t, c.Close(ctx))
}

func TestHistoryNeverExceedsBound(t *testing.T) {
	ctx := context.Background()
	l := openLocal(t)
	sl := &statusLog{}
	c := mount(t, l, sl, time.Hour)

	for i := 0; i < store.MaxHistorySlots+3; i++ {
		c.Notify(graphWith(fmt.Sprintf("v%d", i)), nil)
		require.NoError(t, c.SaveNow(ctx, fmt.Sprintf("save %d", i)))
	}

	history, err := l.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, store.MaxHistorySlots)

	require.NoError(t, c.Close(ctx))
}

func TestConflictDetection(t *testing.T) {
	ctx := context.Background()

	t.Run("stale snapshot triggers once", func(t *testing.T) {
		l := openLocal(t)
		require.NoError(t, l.SaveLatest(ctx, model.Snapshot{
			Nodes:     graphWith("other tab").Nodes,
			Timestamp: time.Now().UTC().Add(-2 * time.Minute),
		}))

		var calls []string
		_, err := New(ctx, Opts{
			Local: l,
			Data:  model.Snapshot{Timestamp: time.Now().UTC()},
			OnConflictFound: func(label string, stale model.Snapshot) {
				calls = append(calls, label)
			},
		})
		require.NoError(t, err)
		require.Len(t, calls, 1)
		assert.True(t, strings.Contains(calls[0], "ago"), "label %q must say how long ago", calls[0])
	})

	t.Run("recent snapshot stays quiet", func(t *testing.T) {
		l := openLocal(t)
		require.NoError(t, l.SaveLatest(ctx, model.Snapshot{
			Nodes:     graphWith("other tab").Nodes,
			Timestamp: time.Now().UTC().Add(-30 * time.Second),
		}))

		called := false
		_, err := New(ctx, Opts{
			Local: l,
			Data:  model.Snapshot{Timestamp: time.Now().UTC()},
			OnConflictFound: func(string, model.Snapshot) {
				called = true
			},
		})
		require.NoError(t, err)
		assert.False(t, called, "30s of autosave lag is not a conflict")
	})
}

func TestCloseFlushesPendingChange(t *testing.T) {
	ctx := context.Background()
	l := openLocal(t)
	sl := &statusLog{}
	c := mount(t, l, sl, time.Hour)

	c.Notify(graphWith("last edit"), nil)
	require.NoError(t, c.Close(ctx))

	latest, err := l.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "last edit", latest.Nodes[0].Data.Label)

	// A second close is a no-op.
	require.NoError(t, c.Close(ctx))
}

func TestSaveNowAfterCloseIsRejected(t *testing.T) {
	ctx := context.Background()
	l := openLocal(t)
	sl := &statusLog{}
	c := mount(t, l, sl, time.Hour)

	c.Notify(graphWith("final"), nil)
	require.NoError(t, c.Close(ctx))

	require.ErrorIs(t, c.SaveNow(ctx, "too late"), ErrClosed)

	history, err := l.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, history, "a rejected save must not push history")

	latest, err := l.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "final", latest.Nodes[0].Data.Label, "the flush-on-exit write stays the last one")
}

func TestTimerCannotFlushAfterClose(t *testing.T) {
	ctx := context.Background()
	l := openLocal(t)
	sl := &statusLog{}
	c := mount(t, l, sl, 20*time.Millisecond)

	c.Notify(graphWith("closing"), nil)
	require.NoError(t, c.Close(ctx))

	// Whichever side wins the race, exactly one snapshot gets written.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, sl.count(StatusSaving), "the stopped timer must not write a second snapshot")
}

func TestStorageFailureLeavesStatusUnsaved(t *testing.T) {
	ctx := context.Background()
	l := openLocal(t)
	sl := &statusLog{}
	errs := errtrack.New(0, nil)

	c, err := New(ctx, Opts{
		Local:    l,
		Data:     model.Snapshot{Timestamp: time.Now().UTC()},
		Interval: time.Hour,
		OnStatus: sl.record,
		Errors:   errs,
	})
	require.NoError(t, err)

	c.Notify(graphWith("doomed"), nil)

	// Kill the backing store to simulate quota/disabled-storage failures.
	require.NoError(t, l.Close())

	require.Error(t, c.SaveNow(ctx, "will fail"))

	sl.mu.Lock()
	last := sl.statuses[len(sl.statuses)-1]
	sl.mu.Unlock()
	assert.Equal(t, StatusUnsaved, last, "failed writes leave the editor in unsaved state")
	assert.NotEmpty(t, errs.Recent(), "the failure is captured, not thrown")
}
