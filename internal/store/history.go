package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"mindmap-cli/internal/model"
)

// MaxHistorySlots bounds the labeled snapshot ring. Oldest entries are
// evicted once the ring is full.
const MaxHistorySlots = 10

// SaveLatest overwrites the single crash/conflict-recovery snapshot.
func (l *Local) SaveLatest(ctx context.Context, snap model.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return l.Set(ctx, KeyAutosave, string(b))
}

// Latest returns the last autosaved snapshot, or nil when none exists.
func (l *Local) Latest(ctx context.Context) (*model.Snapshot, error) {
	v, err := l.Get(ctx, KeyAutosave)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap model.Snapshot
	if err := json.Unmarshal([]byte(v), &snap); err != nil {
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	return &snap, nil
}

// PushHistory appends a labeled snapshot, newest-last, evicting the oldest
// entries beyond MaxHistorySlots. A missing snapshot id is filled in.
func (l *Local) PushHistory(ctx context.Context, snap model.Snapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	history, err := l.History(ctx)
	if err != nil {
		return err
	}
	history = append(history, snap)
	if len(history) > MaxHistorySlots {
		history = history[len(history)-MaxHistorySlots:]
	}
	return l.writeHistory(ctx, history)
}

func (l *Local) History(ctx context.Context) ([]model.Snapshot, error) {
	v, err := l.Get(ctx, KeyAutosaveHistory)
	if errors.Is(err, ErrNotFound) {
		return []model.Snapshot{}, nil
	}
	if err != nil {
		return nil, err
	}
	var history []model.Snapshot
	if err := json.Unmarshal([]byte(v), &history); err != nil {
		return nil, fmt.Errorf("snapshot history: %w", err)
	}
	return history, nil
}

// RestoreFromHistory returns the snapshot at index, or nil when the index is
// out of range.
func (l *Local) RestoreFromHistory(ctx context.Context, index int) (*model.Snapshot, error) {
	history, err := l.History(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(history) {
		return nil, nil
	}
	snap := history[index]
	return &snap, nil
}

// DeleteHistorySlot removes one entry; later entries shift down.
func (l *Local) DeleteHistorySlot(ctx context.Context, index int) error {
	history, err := l.History(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(history) {
		return fmt.Errorf("history slot %d out of range (have %d)", index, len(history))
	}
	history = append(history[:index], history[index+1:]...)
	return l.writeHistory(ctx, history)
}

func (l *Local) writeHistory(ctx context.Context, history []model.Snapshot) error {
	b, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return l.Set(ctx, KeyAutosaveHistory, string(b))
}
