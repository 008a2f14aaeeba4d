package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iqamah-app/iqamah/internal/cache"
	"github.com/iqamah-app/iqamah/internal/model"
	"github.com/iqamah-app/iqamah/internal/provider"
)

// fakeChain stands in for the provider chain.
type fakeChain struct {
	schedule *model.PrayerSchedule
	mosques  []model.Mosque
	err      error
	calls    int
}

var _ provider.Provider = (*fakeChain)(nil)

func (f *fakeChain) ID() string                         { return "fake" }
func (f *fakeChain) Name() string                       { return "fake" }
func (f *fakeChain) Description() string                { return "fake" }
func (f *fakeChain) ConfigSchema() []model.ConfigField  { return nil }
func (f *fakeChain) Initialize(s json.RawMessage) error { return nil }

func (f *fakeChain) SearchMosques(ctx context.Context, query string, location *model.GeoLocation) ([]model.Mosque, error) {
	f.calls++
	return f.mosques, f.err
}

func (f *fakeChain) GetNearbyMosques(ctx context.Context, location model.GeoLocation, radiusKm float64) ([]model.Mosque, error) {
	f.calls++
	return f.mosques, f.err
}

func (f *fakeChain) GetPrayerTimes(ctx context.Context, mosqueID string, date *time.Time) (*model.PrayerSchedule, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.schedule, nil
}

func (f *fakeChain) TestConnection(ctx context.Context) (model.ProviderTestResult, error) {
	return model.ProviderTestResult{Success: true}, nil
}

func (f *fakeChain) GetMosqueDetails(ctx context.Context, mosqueID string) (model.Mosque, error) {
	f.calls++
	if f.err != nil {
		return model.Mosque{}, f.err
	}
	if len(f.mosques) > 0 {
		return f.mosques[0], nil
	}
	return model.Mosque{ID: mosqueID}, nil
}

func scheduleFixture(mosqueID string, date time.Time) *model.PrayerSchedule {
	at := func(h, m int) time.Time {
		return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, time.UTC)
	}
	return &model.PrayerSchedule{
		Date:     date,
		Fajr:     model.Prayer{Name: model.PrayerFajr, Adhan: at(5, 0)},
		Dhuhr:    model.Prayer{Name: model.PrayerDhuhr, Adhan: at(12, 0)},
		Asr:      model.Prayer{Name: model.PrayerAsr, Adhan: at(15, 0)},
		Maghrib:  model.Prayer{Name: model.PrayerMaghrib, Adhan: at(18, 0)},
		Isha:     model.Prayer{Name: model.PrayerIsha, Adhan: at(19, 30)},
		MosqueID: mosqueID,
	}
}

func newTestScheduleService(store *fakeStore, chain *fakeChain) *ScheduleService {
	registry := NewRegistry(store, cache.NewMemory(0))
	svc := NewScheduleService(store, registry)
	svc.buildChain = func(country string) provider.Provider { return chain }
	return svc
}

func TestParseDate(t *testing.T) {
	date, err := ParseDate("2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), date)

	_, err = ParseDate("02/03/2026")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDate))

	_, err = ParseDate("2026-13-40")
	assert.True(t, errors.Is(err, ErrInvalidDate))

	today, err := ParseDate("")
	require.NoError(t, err)
	assert.Equal(t, 0, today.Hour())
}

func TestSlugFromURL(t *testing.T) {
	slug, err := SlugFromURL("https://mawaqit.net/en/grande-mosquee-de-paris")
	require.NoError(t, err)
	assert.Equal(t, "grande-mosquee-de-paris", slug)

	slug, err = SlugFromURL("https://mawaqit.net/en/grande-mosquee-de-paris/")
	require.NoError(t, err)
	assert.Equal(t, "grande-mosquee-de-paris", slug)

	_, err = SlugFromURL("")
	assert.Error(t, err)
}

func TestGetPrayerTimes_CacheHit(t *testing.T) {
	store := newFakeStore()
	date, _ := ParseDate("2026-03-02")
	cached := scheduleFixture("m1", date)
	require.NoError(t, store.SavePrayerTimes(cached))

	chain := &fakeChain{}
	svc := newTestScheduleService(store, chain)

	got, err := svc.GetPrayerTimes(context.Background(), "m1", "", "2026-03-02", false)
	require.NoError(t, err)
	assert.Equal(t, "m1", got.MosqueID)

	// A cache hit never reaches the providers.
	assert.Equal(t, 0, chain.calls)
}

func TestGetPrayerTimes_MissFetchesAndCaches(t *testing.T) {
	store := newFakeStore()
	date, _ := ParseDate("2026-03-02")
	chain := &fakeChain{schedule: scheduleFixture("m1", date)}
	svc := newTestScheduleService(store, chain)

	got, err := svc.GetPrayerTimes(context.Background(), "m1", "", "2026-03-02", false)
	require.NoError(t, err)
	assert.Equal(t, "m1", got.MosqueID)
	assert.Equal(t, 1, chain.calls)
	assert.Equal(t, 1, store.savedSchedules)

	// Second lookup is served from the cache.
	_, err = svc.GetPrayerTimes(context.Background(), "m1", "", "2026-03-02", false)
	require.NoError(t, err)
	assert.Equal(t, 1, chain.calls)
}

func TestGetPrayerTimes_NonUTCLocalZone(t *testing.T) {
	karachi, err := time.LoadLocation("Asia/Karachi")
	require.NoError(t, err)
	restore := time.Local
	time.Local = karachi
	defer func() { time.Local = restore }()

	store := newFakeStore()
	date, _ := ParseDate("2026-03-02")

	// Providers stamp Date with the local midnight instant, which is the
	// previous calendar day once expressed in UTC.
	fetched := scheduleFixture("m1", date)
	fetched.Date = time.Date(2026, time.March, 2, 0, 0, 0, 0, karachi).UTC()
	chain := &fakeChain{schedule: fetched}
	svc := newTestScheduleService(store, chain)

	got, err := svc.GetPrayerTimes(context.Background(), "m1", "", "2026-03-02", false)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", got.Date.Format("2006-01-02"))

	// The row landed under the requested day, so the second lookup is a
	// cache hit.
	_, err = svc.GetPrayerTimes(context.Background(), "m1", "", "2026-03-02", false)
	require.NoError(t, err)
	assert.Equal(t, 1, chain.calls)

	stored, err := store.GetPrayerTimes("m1", date)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "2026-03-02", stored.Date.UTC().Format("2006-01-02"))
}

func TestGetPrayerTimes_ForceRefreshBypassesCache(t *testing.T) {
	store := newFakeStore()
	date, _ := ParseDate("2026-03-02")

	stale := scheduleFixture("m1", date)
	stale.MosqueName = "stale"
	require.NoError(t, store.SavePrayerTimes(stale))

	fresh := scheduleFixture("m1", date)
	fresh.MosqueName = "fresh"
	chain := &fakeChain{schedule: fresh}
	svc := newTestScheduleService(store, chain)

	got, err := svc.GetPrayerTimes(context.Background(), "m1", "", "2026-03-02", true)
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.MosqueName)
	assert.Equal(t, 1, chain.calls)

	// The stale row got overwritten.
	stored, err := store.GetPrayerTimes("m1", date)
	require.NoError(t, err)
	assert.Equal(t, "fresh", stored.MosqueName)
}

func TestGetPrayerTimes_CacheWriteFailureIsNonFatal(t *testing.T) {
	store := newFakeStore()
	store.failSaveSchedule = true
	date, _ := ParseDate("2026-03-02")
	chain := &fakeChain{schedule: scheduleFixture("m1", date)}
	svc := newTestScheduleService(store, chain)

	got, err := svc.GetPrayerTimes(context.Background(), "m1", "", "2026-03-02", false)
	require.NoError(t, err)
	assert.Equal(t, "m1", got.MosqueID)
}

func TestGetPrayerTimes_InvalidDate(t *testing.T) {
	store := newFakeStore()
	chain := &fakeChain{}
	svc := newTestScheduleService(store, chain)

	_, err := svc.GetPrayerTimes(context.Background(), "m1", "", "not-a-date", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDate))
	assert.Equal(t, 0, chain.calls)
}

func TestGetPrayerTimes_ChainExhausted(t *testing.T) {
	store := newFakeStore()
	chain := &fakeChain{err: provider.ServerError(503, "unavailable")}
	svc := newTestScheduleService(store, chain)

	_, err := svc.GetPrayerTimes(context.Background(), "m1", "", "2026-03-02", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2026-03-02")
	assert.Contains(t, err.Error(), "m1")
}
