package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	pq "github.com/lib/pq"

	"github.com/julianstephens/wurkwurk/internal/storage"
)

const upsertState = `
	INSERT INTO local_state (key, value, updated_at) VALUES ($1, $2, now())
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
`

// stateLock names the advisory lock held by UpdateStates. Row locks alone
// would not cover keys that do not exist yet.
const stateLock = "SELECT pg_advisory_xact_lock(hashtext('wurkwurk.local_state'))"

func (s *Store) GetState(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM local_state WHERE key = $1", key).Scan(&value)
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

	for key, value := range values {
		if _, err := stmt.Exec(key, value); err != nil {
			return fmt.Errorf("writing state %s: %w", key, err)
		}
	}

	return tx.Commit()
}

func (s *Store) DeleteState(key string) error {
	if _, err := s.db.Exec("DELETE FROM local_state WHERE key = $1", key); err != nil {
		return fmt.Errorf("deleting state %s: %w", key, err)
	}
	return nil
}

// UpdateStates runs the read and the write in one transaction that holds a
// transaction-scoped advisory lock, so writers of the same schema queue up.
func (s *Store) UpdateStates(keys []string, fn storage.UpdateFunc) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stateLock); err != nil {
		return fmt.Errorf("locking state: %w", err)
	}

	rows, err := tx.Query("SELECT key, value FROM local_state WHERE key = ANY($1)", pq.Array(keys))
	if err != nil {
		return fmt.Errorf("reading state: %w", err)
	}
	current := make(map[string]string, len(keys))
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			rows.Close()
			return fmt.Errorf("reading state: %w", err)
		}
		current[key] = value
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading state: %w", err)
	}

	values, err := fn(current)
	if err != nil {
		return err
	}
	for key, value := range values {
		if _, err := tx.Exec(upsertState, key, value); err != nil {
			return fmt.Errorf("writing state %s: %w", key, err)
		}
	}
	return tx.Commit()
}
