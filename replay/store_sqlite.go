package replay

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a Store backed by a SQLite database. Pointing every service
// instance at the same database file (or any shared SQLite deployment) gives
// replay protection across instances behind a load balancer.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("could not open replay database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS replay (
			key         TEXT PRIMARY KEY,
			value       TEXT NOT NULL,
			expires_at  INTEGER NOT NULL
		);`,
	); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		return nil, fmt.Errorf("could not init replay table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT value FROM replay
		WHERE key=?1 AND expires_at>?2;`,
		key,
		time.Now().Unix(),
	)

	var value string
	err := row.Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("could not read replay record: %w", err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value string, expiresAt time.Time) error {
	// Lazy purge keeps the table from accumulating dead rows; there is no
	// background worker.
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM replay WHERE expires_at<=?1;`,
		time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("could not purge expired replay records: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO replay (key, value, expires_at)
		VALUES (?1, ?2, ?3)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			expires_at=excluded.expires_at;`,
		key,
		value,
		expiresAt.Unix(),
	); err != nil {
		return fmt.Errorf("could not write replay record: %w", err)
	}
	return nil
}
