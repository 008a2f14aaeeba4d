package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/iqamah-app/iqamah/internal/db"
	"github.com/iqamah-app/iqamah/internal/model"
)

// fakeStore is an in-memory db.Store for service tests.
type fakeStore struct {
	mosques   map[string]model.Mosque
	schedules map[string]*model.PrayerSchedule
	settings  map[string]string
	configs   map[string]model.ProviderConfig

	failSaveSchedule bool
	savedSchedules   int
}

var _ db.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		mosques:   make(map[string]model.Mosque),
		schedules: make(map[string]*model.PrayerSchedule),
		settings:  make(map[string]string),
		configs:   make(map[string]model.ProviderConfig),
	}
}

func scheduleKey(mosqueID string, date time.Time) string {
	return fmt.Sprintf("%s|%s", mosqueID, date.Format("2006-01-02"))
}

func (f *fakeStore) SaveMosque(m model.Mosque) error {
	f.mosques[m.ID] = m
	return nil
}

func (f *fakeStore) GetMosque(id string) (*model.Mosque, error) {
	m, ok := f.mosques[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (f *fakeStore) ListFavoriteMosques() ([]model.Mosque, error) {
	var out []model.Mosque
	for _, m := range f.mosques {
		if m.IsFavorite {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) SetFavorite(id string, favorite bool) error {
	m, ok := f.mosques[id]
	if !ok {
		return errors.New("no rows")
	}
	m.IsFavorite = favorite
	f.mosques[id] = m
	return nil
}

func (f *fakeStore) TouchMosque(id string, at time.Time) error {
	m, ok := f.mosques[id]
	if ok {
		m.LastAccessed = &at
		f.mosques[id] = m
	}
	return nil
}

func (f *fakeStore) SavePrayerTimes(schedule *model.PrayerSchedule) error {
	if f.failSaveSchedule {
		return errors.New("disk full")
	}
	f.savedSchedules++
	f.schedules[scheduleKey(schedule.MosqueID, schedule.Date)] = schedule
	return nil
}

func (f *fakeStore) GetPrayerTimes(mosqueID string, date time.Time) (*model.PrayerSchedule, error) {
	return f.schedules[scheduleKey(mosqueID, date)], nil
}

func (f *fakeStore) GetSetting(key string) (string, error) {
	return f.settings[key], nil
}

func (f *fakeStore) SetSetting(key, value string) error {
	f.settings[key] = value
	return nil
}

func (f *fakeStore) GetProviderConfig(providerID string) (*model.ProviderConfig, error) {
	cfg, ok := f.configs[providerID]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

func (f *fakeStore) ListProviderConfigs() ([]model.ProviderConfig, error) {
	var out []model.ProviderConfig
	for _, cfg := range f.configs {
		out = append(out, cfg)
	}
	return out, nil
}

func (f *fakeStore) SaveProviderConfig(cfg model.ProviderConfig) error {
	f.configs[cfg.ProviderID] = cfg
	return nil
}
