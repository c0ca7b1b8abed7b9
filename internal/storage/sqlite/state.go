package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/wurkwurk/internal/storage"
)

const upsertState = "INSERT OR REPLACE INTO local_state (key, value, updated_at) VALUES (?, ?, ?)"

func (s *Store) GetState(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM local_state WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading state %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetState(key, value string) error {
	return s.SetStates(map[string]string{key: value})
}

func (s *Store) SetStates(values map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(upsertState)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for key, value := range values {
		if _, err := stmt.Exec(key, value, now); err != nil {
			return fmt.Errorf("writing state %s: %w", key, err)
		}
	}

	return tx.Commit()
}

func (s *Store) DeleteState(key string) error {
	if _, err := s.db.Exec("DELETE FROM local_state WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting state %s: %w", key, err)
	}
	return nil
}

// UpdateStates holds the database write lock from the first read to the
// commit. BEGIN IMMEDIATE takes it up front, so a second writer waits on
// busy_timeout instead of reading values that are about to change.
func (s *Store) UpdateStates(keys []string, fn storage.UpdateFunc) error {
	ctx := context.Background()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("locking state: %w", err)
	}
	done := false
	defer func() {
		if !done {
			_, _ = conn.ExecContext(ctx, "ROLLBACK")
		}
	}()

	current := make(map[string]string, len(keys))
	for _, key := range keys {
		var value string
		err := conn.QueryRowContext(ctx, "SELECT value FROM local_state WHERE key = ?", key).Scan(&value)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("reading state %s: %w", key, err)
		default:
			current[key] = value
		}
	}

	values, err := fn(current)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for key, value := range values {
		if _, err := conn.ExecContext(ctx, upsertState, key, value, now); err != nil {
			return fmt.Errorf("writing state %s: %w", key, err)
		}
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("committing state: %w", err)
	}
	done = true
	return nil
}
