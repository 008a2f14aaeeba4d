package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"

	"github.com/iqamah-app/iqamah/internal/model"
)

func (s *pgStore) SaveMosque(m model.Mosque) error {
	_, err := s.db.Exec(`
		INSERT INTO mosques (id, name, address, city, country, latitude, longitude, is_favorite, last_accessed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			address = COALESCE(EXCLUDED.address, mosques.address),
			city = COALESCE(EXCLUDED.city, mosques.city),
			country = COALESCE(EXCLUDED.country, mosques.country),
			latitude = COALESCE(EXCLUDED.latitude, mosques.latitude),
			longitude = COALESCE(EXCLUDED.longitude, mosques.longitude)
		`, m.ID, m.Name, m.Address, m.City, m.Country, m.Latitude, m.Longitude, m.IsFavorite, m.LastAccessed)
	return err
}

func (s *pgStore) GetMosque(id string) (*model.Mosque, error) {
	var m model.Mosque
	err := s.db.Get(&m, `
		SELECT id, name, address, city, country, latitude, longitude, is_favorite, last_accessed
		FROM mosques
		WHERE id = $1
		`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *pgStore) ListFavoriteMosques() ([]model.Mosque, error) {
	var mosques []model.Mosque
	err := s.db.Select(&mosques, `
		SELECT id, name, address, city, country, latitude, longitude, is_favorite, last_accessed
		FROM mosques
		WHERE is_favorite
		ORDER BY name
		`)
	return mosques, err
}

func (s *pgStore) SetFavorite(id string, favorite bool) error {
	res, err := s.db.Exec(`
		UPDATE mosques
		SET is_favorite = $2
		WHERE id = $1
		`, id, favorite)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *pgStore) TouchMosque(id string, at time.Time) error {
	_, err := s.db.Exec(`
		UPDATE mosques
		SET last_accessed = $2
		WHERE id = $1
		`, id, at)
	return err
}
