package db

import (
	"database/sql"
	"errors"

	_ "github.com/lib/pq"

	"github.com/iqamah-app/iqamah/internal/model"
)

func (s *pgStore) GetProviderConfig(providerID string) (*model.ProviderConfig, error) {
	var cfg model.ProviderConfig
	err := s.db.QueryRow(`
		SELECT provider_id, settings
		FROM provider_configs
		WHERE provider_id = $1
		`, providerID).Scan(&cfg.ProviderID, (*[]byte)(&cfg.Settings))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *pgStore) ListProviderConfigs() ([]model.ProviderConfig, error) {
	rows, err := s.db.Query(`
		SELECT provider_id, settings
		FROM provider_configs
		ORDER BY provider_id
		`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []model.ProviderConfig
	for rows.Next() {
		var cfg model.ProviderConfig
		if err := rows.Scan(&cfg.ProviderID, (*[]byte)(&cfg.Settings)); err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

// SaveProviderConfig stores a provider's settings blob, one row per
// provider, latest write wins.
func (s *pgStore) SaveProviderConfig(cfg model.ProviderConfig) error {
	settings := cfg.Settings
	if len(settings) == 0 {
		settings = []byte("{}")
	}
	_, err := s.db.Exec(`
		INSERT INTO provider_configs (provider_id, settings, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (provider_id) DO UPDATE SET
			settings = EXCLUDED.settings,
			updated_at = now()
		`, cfg.ProviderID, []byte(settings))
	return err
}
