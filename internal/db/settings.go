package db

import (
	"database/sql"
	"errors"

	_ "github.com/lib/pq"
)

// GetSetting returns the stored value for a key, or "" when the key is
// absent.
func (s *pgStore) GetSetting(key string) (string, error) {
	var value string
	err := s.db.Get(&value, `
		SELECT value
		FROM settings
		WHERE key = $1
		`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (s *pgStore) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = now()
		`, key, value)
	return err
}
