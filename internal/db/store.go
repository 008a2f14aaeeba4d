// exposes a Store interface that is passed to services and API handlers
package db

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iqamah-app/iqamah/internal/model"
)

type Store interface {
	// mosque functions
	SaveMosque(m model.Mosque) error
	GetMosque(id string) (*model.Mosque, error)
	ListFavoriteMosques() ([]model.Mosque, error)
	SetFavorite(id string, favorite bool) error
	TouchMosque(id string, at time.Time) error

	// schedule cache functions
	SavePrayerTimes(schedule *model.PrayerSchedule) error
	GetPrayerTimes(mosqueID string, date time.Time) (*model.PrayerSchedule, error)

	// settings functions
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error

	// provider configuration functions
	GetProviderConfig(providerID string) (*model.ProviderConfig, error)
	ListProviderConfigs() ([]model.ProviderConfig, error)
	SaveProviderConfig(cfg model.ProviderConfig) error
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(db *sqlx.DB) Store {
	return &pgStore{db: db}
}
