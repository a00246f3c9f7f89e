// Package storage provides SQLite-backed persistence for the item
// collection, review sessions and the per-review log.
//
// Timestamps are stored as RFC3339Nano TEXT in UTC. Due-time filtering
// is never done in SQL; the scheduler owns the collection in memory and
// this package only loads and saves it.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jeanpaul/recall/internal/srs"
)

// ErrNotFound is returned when an update references a row that does not
// exist.
var ErrNotFound = errors.New("storage: item not found")

// Store wraps a SQLite database handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies
// connection pragmas. Parent directories are created.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
		`PRAGMA busy_timeout = 5000;`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("storage: %s: %w", strings.TrimSuffix(pragma, ";"), err)
		}
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

const itemColumns = `id, deck, question, answer, step, due_at, last_reviewed_at, recalled, forgot, history, created_at`

// Items loads the collection in insertion order. With deck names given,
// only items from those decks are returned.
func (s *Store) Items(ctx context.Context, decks ...string) ([]*srs.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items`
	args := make([]any, 0, len(decks))
	if len(decks) > 0 {
		query += ` WHERE deck IN (?` + strings.Repeat(",?", len(decks)-1) + `)`
		for _, d := range decks {
			args = append(args, d)
		}
	}
	query += ` ORDER BY id;`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: load items: %w", err)
	}
	defer rows.Close()

	var items []*srs.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: load items: %w", err)
	}
	return items, nil
}

// InsertItems persists new items in one transaction and writes the
// assigned row IDs back into them.
func (s *Store) InsertItems(ctx context.Context, items []*srs.Item) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertItemsTx(ctx, tx, items); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit insert: %w", err)
	}
	return nil
}

func insertItemsTx(ctx context.Context, tx *sql.Tx, items []*srs.Item) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (deck, question, answer, step, due_at, last_reviewed_at, recalled, forgot, history, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return fmt.Errorf("storage: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		res, err := stmt.ExecContext(ctx,
			it.Deck, it.Question, it.Answer, it.Step,
			formatTime(it.DueAt), nullableTime(it.LastReviewedAt),
			it.Recalled, it.Forgot, it.History, formatTime(it.CreatedAt))
		if err != nil {
			return fmt.Errorf("storage: insert item %q: %w", it.Question, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("storage: insert item %q: %w", it.Question, err)
		}
		it.ID = id
	}
	return nil
}

// Review describes one applied review for the log.
type Review struct {
	SessionID  string
	Outcome    srs.Outcome
	StepBefore int
	StepAfter  int
	At         time.Time
}

// RecordReview saves an item's post-review state and appends a log row,
// atomically. The item must already be persisted.
func (s *Store) RecordReview(ctx context.Context, item *srs.Item, rev Review) error {
	if item.ID == 0 {
		return fmt.Errorf("%w: item has no ID", ErrNotFound)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin review: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE items SET step = ?, due_at = ?, last_reviewed_at = ?, recalled = ?, forgot = ?, history = ?
		WHERE id = ?;`,
		item.Step, formatTime(item.DueAt), nullableTime(item.LastReviewedAt),
		item.Recalled, item.Forgot, item.History, item.ID)
	if err != nil {
		return fmt.Errorf("storage: update item %d: %w", item.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: update item %d: %w", item.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, item.ID)
	}

	var sessionID any
	if rev.SessionID != "" {
		sessionID = rev.SessionID
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO reviews (item_id, session_id, outcome, step_before, step_after, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?);`,
		item.ID, sessionID, rev.Outcome.String(), rev.StepBefore, rev.StepAfter, formatTime(rev.At)); err != nil {
		return fmt.Errorf("storage: log review for item %d: %w", item.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit review: %w", err)
	}
	return nil
}

// ReplaceItems wipes the collection (and its review log) and inserts the
// given items, all in one transaction. Used by backup restore.
func (s *Store) ReplaceItems(ctx context.Context, items []*srs.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reviews;`); err != nil {
		return fmt.Errorf("storage: clear reviews: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM items;`); err != nil {
		return fmt.Errorf("storage: clear items: %w", err)
	}
	if len(items) > 0 {
		if err := insertItemsTx(ctx, tx, items); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit replace: %w", err)
	}
	return nil
}

// Session summarizes one review session.
type Session struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Reviewed   int
	Recalled   int
}

// StartSession records a new session row and returns its ID.
func (s *Store) StartSession(ctx context.Context, startedAt time.Time) (string, error) {
	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at) VALUES (?, ?);`,
		id, formatTime(startedAt)); err != nil {
		return "", fmt.Errorf("storage: start session: %w", err)
	}
	return id, nil
}

// FinishSession stamps a session with its end time and totals.
func (s *Store) FinishSession(ctx context.Context, id string, finishedAt time.Time, reviewed, recalled int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET finished_at = ?, reviewed = ?, recalled = ? WHERE id = ?;`,
		formatTime(finishedAt), reviewed, recalled, id)
	if err != nil {
		return fmt.Errorf("storage: finish session %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: finish session %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: session %s", ErrNotFound, id)
	}
	return nil
}

// RecentSessions returns up to limit finished or running sessions,
// newest first.
func (s *Store) RecentSessions(ctx context.Context, limit int) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, reviewed, recalled
		FROM sessions ORDER BY started_at DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: load sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			sess     Session
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&sess.ID, &started, &finished, &sess.Reviewed, &sess.Recalled); err != nil {
			return nil, fmt.Errorf("storage: scan session: %w", err)
		}
		if sess.StartedAt, err = parseTime(started); err != nil {
			return nil, fmt.Errorf("storage: session %s started_at: %w", sess.ID, err)
		}
		if finished.Valid {
			t, err := parseTime(finished.String)
			if err != nil {
				return nil, fmt.Errorf("storage: session %s finished_at: %w", sess.ID, err)
			}
			sess.FinishedAt = &t
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: load sessions: %w", err)
	}
	return sessions, nil
}

// CountReviews returns the total number of logged reviews.
func (s *Store) CountReviews(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: count reviews: %w", err)
	}
	return n, nil
}

func scanItem(rows *sql.Rows) (*srs.Item, error) {
	var (
		it           srs.Item
		dueAt        string
		lastReviewed sql.NullString
		createdAt    string
	)
	if err := rows.Scan(&it.ID, &it.Deck, &it.Question, &it.Answer, &it.Step,
		&dueAt, &lastReviewed, &it.Recalled, &it.Forgot, &it.History, &createdAt); err != nil {
		return nil, fmt.Errorf("storage: scan item: %w", err)
	}
	var err error
	if it.DueAt, err = parseTime(dueAt); err != nil {
		return nil, fmt.Errorf("storage: item %d due_at: %w", it.ID, err)
	}
	if it.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("storage: item %d created_at: %w", it.ID, err)
	}
	if lastReviewed.Valid {
		t, err := parseTime(lastReviewed.String)
		if err != nil {
			return nil, fmt.Errorf("storage: item %d last_reviewed_at: %w", it.ID, err)
		}
		it.LastReviewedAt = &t
	}
	return &it, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
