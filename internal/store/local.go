package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

// Local is the CLI analogue of browser local storage: a flat string
// key/value table in a workspace-scoped SQLite file. The autosave snapshot,
// the bounded history, the AI settings and the offline cache all live here
// under fixed keys.
type Local struct {
	db *sql.DB
}

// Well-known keys. These names are part of the on-disk contract and match
// the original application's storage keys.
const (
	KeyAutosave        = "mindmap_autosave"
	KeyAutosaveHistory = "mindmap_autosave_history"
	KeyAIProvider      = "ai_provider"
	KeyAIAPIKey        = "ai_api_key"

	offlinePrefix = "offline_"
)

// OfflineTTL is how long an offline_<key> cache entry stays fresh.
const OfflineTTL = 24 * time.Hour

// ErrNotFound is returned by Get for absent (or expired offline) keys.
var ErrNotFound = errors.New("store: key not found")

func (s Store) OpenLocal(ctx context.Context) (*Local, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.localDBPath())
	if err != nil {
		return nil, err
	}
	// Pragmas for multi-process local usage.
	// WAL enables one writer + many readers; busy_timeout helps avoid "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);
	`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Local{db: db}, nil
}

func (l *Local) Close() error {
	return l.db.Close()
}

func (l *Local) Set(ctx context.Context, key, value string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO kv(k, v, updated_at_unixms) VALUES(?, ?, ?)`,
		key, value, time.Now().UTC().UnixMilli())
	return err
}

func (l *Local) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := l.db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (l *Local) Delete(ctx context.Context, key string) error {
	_, err := l.db.ExecContext(ctx, `DELETE FROM kv WHERE k = ?`, key)
	return err
}

// SetOffline stores a generic offline-cache entry under offline_<key>.
func (l *Local) SetOffline(ctx context.Context, key, value string) error {
	return l.Set(ctx, offlinePrefix+key, value)
}

// GetOffline returns a cached entry if it is younger than OfflineTTL.
// Expired entries self-evict on read and report ErrNotFound.
func (l *Local) GetOffline(ctx context.Context, key string) (string, error) {
	full := offlinePrefix + key
	var v string
	var updatedMs int64
	err := l.db.QueryRowContext(ctx,
		`SELECT v, updated_at_unixms FROM kv WHERE k = ?`, full).Scan(&v, &updatedMs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if time.Since(time.UnixMilli(updatedMs)) > OfflineTTL {
		_ = l.Delete(ctx, full)
		return "", ErrNotFound
	}
	return v, nil
}

// AIConfig reads the locally stored assistant settings. The key is plaintext
// and never leaves the machine except toward the chosen provider's API.
func (l *Local) AIConfig(ctx context.Context) (provider, apiKey string, err error) {
	provider, err = l.Get(ctx, KeyAIProvider)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", "", err
	}
	apiKey, err = l.Get(ctx, KeyAIAPIKey)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", "", err
	}
	return provider, apiKey, nil
}

func (l *Local) SetAIConfig(ctx context.Context, provider, apiKey string) error {
	if err := l.Set(ctx, KeyAIProvider, provider); err != nil {
		return err
	}
	return l.Set(ctx, KeyAIAPIKey, apiKey)
}
