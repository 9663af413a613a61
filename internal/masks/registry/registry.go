// Package registry persists the value->id table used when mask ids must agree
// across every file of a dataset.
//
// Ids are handed out in the order values are first resolved: the normalizer
// walks masks in sorted file order and resolves each file's values in
// ascending order, so a rebuilt registry assigns the same ids for the same
// inputs. The table lives in a small SQLite database next to the normalized
// masks.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"segprep/internal/dataset"
)

// FileName is the registry database name written next to normalized masks.
const FileName = "label_registry.db"

const maxID = 255

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Entry is one persisted mapping.
type Entry struct {
	Value     uint8     `json:"value"`
	ID        uint8     `json:"id"`
	FirstSeen string    `json:"first_seen,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Registry manages the value->id table backed by SQLite.
type Registry struct {
	db   *sql.DB
	path string
}

// Open creates or opens the registry database at path.
func Open(path string) (*Registry, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure registry directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	reg := &Registry{db: db, path: path}
	if err := reg.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return reg, nil
}

// OpenExisting opens a registry that must already exist.
func OpenExisting(path string) (*Registry, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, dataset.Wrap(dataset.ErrNotFound, "registry", "open", path, nil)
		}
		return nil, fmt.Errorf("stat registry: %w", err)
	}
	return Open(path)
}

// Path returns the database file location.
func (r *Registry) Path() string { return r.path }

// Close closes the underlying database connection.
func (r *Registry) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Resolve returns the id of every value, assigning fresh ids to values the
// registry has not seen. Zero values are ignored. source is stored as
// first_seen for newly assigned values.
func (r *Registry) Resolve(ctx context.Context, source string, values []uint8) (map[uint8]uint8, error) {
	sorted := make([]uint8, 0, len(values))
	for _, v := range values {
		if v != 0 {
			sorted = append(sorted, v)
		}
	}
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var out map[uint8]uint8
	err := retryOnBusy(ctx, func() error {
		var err error
		out, err = r.resolveTx(ctx, source, sorted)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Registry) resolveTx(ctx context.Context, source string, values []uint8) (map[uint8]uint8, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin resolve tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	out := make(map[uint8]uint8, len(values))
	var missing []uint8
	for _, v := range values {
		var id int
		err := tx.QueryRowContext(ctx, "SELECT id FROM label_ids WHERE value = ?", int(v)).Scan(&id)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			missing = append(missing, v)
		case err != nil:
			return nil, fmt.Errorf("lookup value %d: %w", v, err)
		default:
			out[v] = uint8(id)
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	var next int
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) FROM label_ids").Scan(&next); err != nil {
		return nil, fmt.Errorf("read max id: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, v := range missing {
		next++
		if next > maxID {
			return nil, dataset.Wrap(dataset.ErrConfiguration, "registry", "assign id",
				fmt.Sprintf("id space exhausted at value %d", v), nil)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO label_ids (value, id, first_seen, created_at) VALUES (?, ?, ?, ?)",
			int(v), next, source, now,
		); err != nil {
			return nil, fmt.Errorf("insert value %d: %w", v, err)
		}
		out[v] = uint8(next)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit resolve: %w", err)
	}
	return out, nil
}

// Entries lists every mapping ordered by id.
func (r *Registry) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT value, id, first_seen, created_at FROM label_ids ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			value, id int
			firstSeen string
			created   string
		)
		if err := rows.Scan(&value, &id, &firstSeen, &created); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entry := Entry{Value: uint8(value), ID: uint8(id), FirstSeen: firstSeen}
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			entry.CreatedAt = ts
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
