// Package store archives timer ledgers in SQLite so sessions outlive the process.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"toolbox/internal/livetimer"
	"toolbox/internal/logging"
)

var (
	// ErrNotFound is returned when no session has the requested ID.
	ErrNotFound = errors.New("store: timer session not found")

	// ErrAmbiguousID is returned by ResolveID when a prefix matches several sessions.
	ErrAmbiguousID = errors.New("store: ambiguous session id prefix")

	// ErrEmptyID is returned by ResolveID for a blank prefix.
	ErrEmptyID = errors.New("store: empty session id prefix")
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Fixed-width UTC timestamps so text ordering matches time ordering.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// Session is an archived timer: its summary fields and full ledger.
type Session struct {
	ID         string
	Label      string
	CreatedAt  time.Time
	State      string
	Elapsed    time.Duration // excluding pauses
	TotalPause time.Duration
	Resets     int
	Entries    []livetimer.Entry
}

// SessionFromTimer captures t's current state without touching its ledger.
func SessionFromTimer(t *livetimer.Timer) Session {
	entries := t.History().Entries()
	s := Session{
		ID:         t.ID().String(),
		Label:      t.Label(),
		State:      t.State().String(),
		Elapsed:    t.Peek(),
		TotalPause: t.TotalPause(),
		Resets:     t.History().NumResets(),
		Entries:    entries,
	}
	if len(entries) > 0 {
		s.CreatedAt = entries[0].Time
	}
	return s
}

// History rebuilds the ledger as a livetimer.History.
func (s Session) History() *livetimer.History {
	h := livetimer.NewHistory(nil)
	h.Restore(s.Entries)
	return h
}

// Summary is one row of ListTimers.
type Summary struct {
	ID         string
	Label      string
	CreatedAt  time.Time
	State      string
	Elapsed    time.Duration
	EntryCount int
}

// Store manages the timer archive database.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// Open creates or opens the archive at dbPath.
func Open(dbPath string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "store open")
	defer timer.Stop()

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		logging.StoreError("failed to open database at %s: %v", dbPath, err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, dbPath: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Store("timer archive opened at %s", dbPath)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// migrate applies the embedded schema migrations.
func (s *Store) migrate() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		src.Close()
		return err
	}
	// m.Close would also close s.db.
	defer src.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	version, _, _ := m.Version()
	logging.StoreDebug("schema at version %d", version)
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeFormat, s)
}

// SaveTimer inserts or replaces a session and its entire ledger.
func (s *Store) SaveTimer(ctx context.Context, sess Session) error {
	timer := logging.StartTimer(logging.CategoryStore, "save timer")
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO timer_sessions (id, label, created_at, state, elapsed_ns, total_pause_ns, resets, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			state = excluded.state,
			elapsed_ns = excluded.elapsed_ns,
			total_pause_ns = excluded.total_pause_ns,
			resets = excluded.resets,
			updated_at = excluded.updated_at`,
		sess.ID, sess.Label, formatTime(sess.CreatedAt), sess.State,
		int64(sess.Elapsed), int64(sess.TotalPause), sess.Resets, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM timer_entries WHERE session_id = ?`, sess.ID); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO timer_entries (session_id, seq, at, action, since_last_ns, since_create_ns)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range sess.Entries {
		if _, err := stmt.ExecContext(ctx, sess.ID, i, formatTime(e.Time), string(e.Action),
			int64(e.SinceLast), int64(e.SinceCreate)); err != nil {
			return fmt.Errorf("failed to insert entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	logging.Store("saved session %s (%d entries)", sess.ID, len(sess.Entries))
	return nil
}

// ListTimers returns session summaries, newest first. limit <= 0 means all.
func (s *Store) ListTimers(ctx context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.label, s.created_at, s.state, s.elapsed_ns,
			(SELECT COUNT(*) FROM timer_entries e WHERE e.session_id = s.id)
		FROM timer_sessions s
		ORDER BY s.created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var created string
		var elapsed int64
		if err := rows.Scan(&sum.ID, &sum.Label, &created, &sum.State, &elapsed, &sum.EntryCount); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if sum.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("bad created_at for %s: %w", sum.ID, err)
		}
		sum.Elapsed = time.Duration(elapsed)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// LoadTimer returns the session with id and its ledger in order.
func (s *Store) LoadTimer(ctx context.Context, id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sess Session
	var created string
	var elapsed, pause int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, label, created_at, state, elapsed_ns, total_pause_ns, resets
		FROM timer_sessions WHERE id = ?`, id).
		Scan(&sess.ID, &sess.Label, &created, &sess.State, &elapsed, &pause, &sess.Resets)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	if sess.CreatedAt, err = parseTime(created); err != nil {
		return Session{}, fmt.Errorf("bad created_at for %s: %w", id, err)
	}
	sess.Elapsed = time.Duration(elapsed)
	sess.TotalPause = time.Duration(pause)

	rows, err := s.db.QueryContext(ctx, `
		SELECT at, action, since_last_ns, since_create_ns
		FROM timer_entries WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return Session{}, fmt.Errorf("failed to load entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var at, action string
		var sinceLast, sinceCreate int64
		if err := rows.Scan(&at, &action, &sinceLast, &sinceCreate); err != nil {
			return Session{}, fmt.Errorf("failed to scan entry: %w", err)
		}
		e := livetimer.Entry{SinceLast: time.Duration(sinceLast), SinceCreate: time.Duration(sinceCreate)}
		if e.Time, err = parseTime(at); err != nil {
			return Session{}, fmt.Errorf("bad entry time: %w", err)
		}
		if e.Action, err = livetimer.ParseAction(action); err != nil {
			return Session{}, err
		}
		sess.Entries = append(sess.Entries, e)
	}
	return sess, rows.Err()
}

// ResolveID expands a unique ID prefix to the full session ID.
func (s *Store) ResolveID(ctx context.Context, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", ErrEmptyID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM timer_sessions WHERE substr(id, 1, ?) = ? LIMIT 2`, len(prefix), prefix)
	if err != nil {
		return "", fmt.Errorf("failed to resolve id: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
	}
}

// DeleteTimer removes a session and its ledger.
func (s *Store) DeleteTimer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM timer_sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM timer_entries WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	logging.Store("deleted session %s", id)
	return nil
}
