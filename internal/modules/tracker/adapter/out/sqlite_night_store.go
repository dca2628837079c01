package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sleeptrack/internal/modules/tracker/domain"
	apperrors "sleeptrack/internal/platform/errors"
	"sleeptrack/internal/platform/observable"

	_ "modernc.org/sqlite"
)

type SQLiteNightStore struct {
	db       *sql.DB
	watchers observable.Listeners[context.Context]
}

func NewSQLiteNightStore(dbPath string) (*SQLiteNightStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteNightStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteNightStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS nights (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  start_time_milli INTEGER NOT NULL,
  end_time_milli INTEGER NOT NULL,
  quality_rating INTEGER NOT NULL DEFAULT -1,
  notes TEXT NOT NULL DEFAULT ''
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create nights table: %w", err)
	}
	return nil
}

func (s *SQLiteNightStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteNightStore) Insert(ctx context.Context, night domain.Night) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO nights (start_time_milli, end_time_milli, quality_rating, notes)
VALUES (?, ?, ?, ?);
`, night.StartedAt.UnixMilli(), night.EndedAt.UnixMilli(), int(night.Quality), night.Notes)
	if err != nil {
		return 0, fmt.Errorf("insert night: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert night id: %w", err)
	}
	s.watchers.Notify(ctx)
	return id, nil
}

func (s *SQLiteNightStore) Update(ctx context.Context, night domain.Night) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE nights
SET start_time_milli = ?, end_time_milli = ?, quality_rating = ?, notes = ?
WHERE id = ?;
`, night.StartedAt.UnixMilli(), night.EndedAt.UnixMilli(), int(night.Quality), night.Notes, night.ID)
	if err != nil {
		return fmt.Errorf("update night %d: %w", night.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update night %d: %w", night.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("update night %d: %w", night.ID, apperrors.ErrNotFound)
	}
	s.watchers.Notify(ctx)
	return nil
}

func (s *SQLiteNightStore) Get(ctx context.Context, id int64) (domain.Night, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, start_time_milli, end_time_milli, quality_rating, notes
FROM nights
WHERE id = ?;
`, id)
	night, err := scanNight(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Night{}, fmt.Errorf("night %d: %w", id, apperrors.ErrNotFound)
		}
		return domain.Night{}, fmt.Errorf("get night %d: %w", id, err)
	}
	return night, nil
}

func (s *SQLiteNightStore) MostRecent(ctx context.Context) (domain.Night, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, start_time_milli, end_time_milli, quality_rating, notes
FROM nights
ORDER BY id DESC
LIMIT 1;
`)
	night, err := scanNight(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Night{}, false, nil
		}
		return domain.Night{}, false, fmt.Errorf("most recent night: %w", err)
	}
	return night, true, nil
}

func (s *SQLiteNightStore) AllDescending(ctx context.Context) ([]domain.Night, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, start_time_milli, end_time_milli, quality_rating, notes
FROM nights
ORDER BY id DESC;
`)
	if err != nil {
		return nil, fmt.Errorf("list nights: %w", err)
	}
	defer rows.Close()

	nights := []domain.Night{}
	for rows.Next() {
		night, err := scanNight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan night: %w", err)
		}
		nights = append(nights, night)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list nights: %w", err)
	}
	return nights, nil
}

func (s *SQLiteNightStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM nights`); err != nil {
		return fmt.Errorf("clear nights: %w", err)
	}
	s.watchers.Notify(ctx)
	return nil
}

func (s *SQLiteNightStore) Watch(fn func(ctx context.Context)) func() {
	return s.watchers.Add(fn)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNight(row rowScanner) (domain.Night, error) {
	var (
		night          domain.Night
		startMs, endMs int64
		quality        int
	)
	if err := row.Scan(&night.ID, &startMs, &endMs, &quality, &night.Notes); err != nil {
		return domain.Night{}, err
	}
	night.StartedAt = time.UnixMilli(startMs).UTC()
	night.EndedAt = time.UnixMilli(endMs).UTC()
	night.Quality = domain.Quality(quality)
	return night, nil
}
