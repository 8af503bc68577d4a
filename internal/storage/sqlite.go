package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hammamikhairi/focustrack/internal/domain"
	"github.com/hammamikhairi/focustrack/internal/logger"

	_ "modernc.org/sqlite"
)

// Compile-time interface checks.
var (
	_ domain.SessionSink    = (*GuestStore)(nil)
	_ domain.SessionHistory = (*GuestStore)(nil)
)

// GuestStore records sessions in a local SQLite file. It is what guests
// (no account) use; nothing ever leaves the machine.
type GuestStore struct {
	db  *sql.DB
	log *logger.Logger
}

// OpenGuestStore opens or creates the database at dbPath.
func OpenGuestStore(dbPath string, log *logger.Logger) (*GuestStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under the recorder.
	db.SetMaxOpenConns(1)

	store := &GuestStore{db: db, log: log}
	if err := store.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	log.Debug("guest store ready at %s", dbPath)
	return store, nil
}

// Close closes the database.
func (s *GuestStore) Close() error {
	return s.db.Close()
}

func (s *GuestStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  mode TEXT NOT NULL,
  duration_minutes INTEGER NOT NULL,
  start_time TEXT NOT NULL,
  end_time TEXT NOT NULL,
  tag TEXT,
  task_id TEXT,
  mood TEXT
);
CREATE INDEX IF NOT EXISTS sessions_end_time ON sessions(end_time);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

// Record inserts a session. A retried record with the same ID is ignored.
func (s *GuestStore) Record(ctx context.Context, session domain.CompletedSession) error {
	const stmt = `
INSERT INTO sessions (id, mode, duration_minutes, start_time, end_time, tag, task_id, mood)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING;
`
	_, err := s.db.ExecContext(ctx, stmt,
		session.ID,
		session.Mode.String(),
		session.DurationMinutes,
		formatTime(session.StartTime),
		formatTime(session.EndTime),
		nullString(session.Tag),
		nullString(session.TaskID),
		nullString(session.Mood),
	)
	if err != nil {
		return fmt.Errorf("insert session %s: %w", session.ID, err)
	}
	s.log.Debug("stored session %s locally", session.ID)
	return nil
}

// List returns up to limit sessions, newest first. limit <= 0 means all.
func (s *GuestStore) List(ctx context.Context, limit int) ([]domain.CompletedSession, error) {
	query := `
SELECT id, mode, duration_minutes, start_time, end_time, tag, task_id, mood
FROM sessions
ORDER BY end_time DESC, id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []domain.CompletedSession
	for rows.Next() {
		var (
			sess             domain.CompletedSession
			mode, start, end string
			tag, task, mood  sql.NullString
		)
		if err := rows.Scan(&sess.ID, &mode, &sess.DurationMinutes, &start, &end, &tag, &task, &mood); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if sess.Mode, err = domain.ParseMode(mode); err != nil {
			return nil, fmt.Errorf("session %s: %w", sess.ID, err)
		}
		if sess.StartTime, err = parseTime(start); err != nil {
			return nil, fmt.Errorf("session %s start: %w", sess.ID, err)
		}
		if sess.EndTime, err = parseTime(end); err != nil {
			return nil, fmt.Errorf("session %s end: %w", sess.ID, err)
		}
		sess.Tag, sess.TaskID, sess.Mood = tag.String, task.String, mood.String
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

// Totals aggregates sessions that ended at or after since.
func (s *GuestStore) Totals(ctx context.Context, since time.Time) ([]domain.ModeTotals, error) {
	const query = `
SELECT mode, COUNT(*), COALESCE(SUM(duration_minutes), 0)
FROM sessions
WHERE end_time >= ?
GROUP BY mode`

	rows, err := s.db.QueryContext(ctx, query, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("query totals: %w", err)
	}
	defer rows.Close()

	var out []domain.ModeTotals
	for rows.Next() {
		var (
			mode string
			t    domain.ModeTotals
		)
		if err := rows.Scan(&mode, &t.Count, &t.Minutes); err != nil {
			return nil, fmt.Errorf("scan totals: %w", err)
		}
		if t.Mode, err = domain.ParseMode(mode); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate totals: %w", err)
	}
	sortTotals(out)
	return out, nil
}

// Times are stored as fixed-width UTC text so string order is time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
