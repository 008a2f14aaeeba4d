package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iqamah-app/iqamah/internal/db"
	"github.com/iqamah-app/iqamah/internal/model"
	"github.com/iqamah-app/iqamah/internal/provider"
)

// ErrInvalidDate marks a malformed date input. Distinct from provider and
// cache failures so the API layer can answer 400 instead of 502.
var ErrInvalidDate = errors.New("invalid date format, use YYYY-MM-DD")

// ParseDate validates a YYYY-MM-DD input against the caller's local
// calendar. An empty input means today.
func ParseDate(input string) (time.Time, error) {
	if input == "" {
		now := time.Now().In(time.Local)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	parsed, err := time.Parse("2006-01-02", input)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, input)
	}
	return parsed, nil
}

// ScheduleService resolves one day's prayer times for a mosque: persistent
// cache first, then the provider chain, with write-through on success.
type ScheduleService struct {
	store    db.Store
	registry *Registry

	// chain construction goes through this hook so tests can substitute
	// a canned provider
	buildChain func(country string) provider.Provider
}

func NewScheduleService(store db.Store, registry *Registry) *ScheduleService {
	return &ScheduleService{
		store:    store,
		registry: registry,
		buildChain: func(country string) provider.Provider {
			return registry.BuildChain(country)
		},
	}
}

// GetPrayerTimes returns the schedule for a mosque day. Cached rows are
// served as-is with no freshness check; forceRefresh skips the cache read
// and overwrites the row with whatever the chain returns. A failed cache
// write after successful resolution is logged and swallowed.
func (s *ScheduleService) GetPrayerTimes(ctx context.Context, mosqueID, country, dateInput string, forceRefresh bool) (*model.PrayerSchedule, error) {
	date, err := ParseDate(dateInput)
	if err != nil {
		return nil, err
	}

	if !forceRefresh {
		cached, err := s.store.GetPrayerTimes(mosqueID, date)
		if err != nil {
			log.Warn().Err(err).Str("mosque_id", mosqueID).Msg("schedule cache read failed")
		}
		if cached != nil {
			return cached, nil
		}
	}

	chain := s.buildChain(country)
	schedule, err := chain.GetPrayerTimes(ctx, mosqueID, &date)
	if err != nil {
		return nil, fmt.Errorf("no prayer times found for %s on %s: %w",
			mosqueID, date.Format("2006-01-02"), err)
	}

	s.cache(mosqueID, date, schedule)
	if touchErr := s.store.TouchMosque(mosqueID, time.Now().UTC()); touchErr != nil {
		log.Warn().Err(touchErr).Str("mosque_id", mosqueID).Msg("failed to touch mosque")
	}

	return schedule, nil
}

// cache writes a resolved schedule through to the store. The mosque row is
// upserted first so schedules for mosques that were never favorited still
// cache. Failures are logged and swallowed; the caller already has the
// schedule.
//
// Providers stamp Date with the localized midnight instant, which lands on
// the previous calendar day in UTC for zones east of Greenwich. The cache
// key is the requested day at UTC midnight, so Date is normalized to it
// here; reads and writes then agree in every timezone.
func (s *ScheduleService) cache(mosqueID string, date time.Time, schedule *model.PrayerSchedule) {
	schedule.Date = date

	name := schedule.MosqueName
	if name == "" {
		name = mosqueID
	}
	if saveErr := s.store.SaveMosque(model.NewMosque(mosqueID, name)); saveErr != nil {
		log.Warn().Err(saveErr).Str("mosque_id", mosqueID).Msg("failed to store mosque")
		return
	}
	if saveErr := s.store.SavePrayerTimes(schedule); saveErr != nil {
		log.Warn().Err(saveErr).
			Str("mosque_id", mosqueID).
			Str("date", schedule.Date.Format("2006-01-02")).
			Msg("failed to cache prayer times")
	}
}

// TodaySchedule is the cache-first lookup every prayer-state query starts
// from, keyed by the caller's local calendar date.
func (s *ScheduleService) TodaySchedule(ctx context.Context, mosqueID string) (*model.PrayerSchedule, error) {
	return s.GetPrayerTimes(ctx, mosqueID, "", "", false)
}

// SlugFromURL pulls the mosque slug out of a mawaqit page URL, e.g.
// https://mawaqit.net/en/mosque-name -> mosque-name. A trailing slash is
// tolerated.
func SlugFromURL(pageURL string) (string, error) {
	parts := strings.Split(strings.TrimSpace(pageURL), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i], nil
		}
	}
	return "", fmt.Errorf("invalid mawaqit URL: %q", pageURL)
}

// FetchByURL fetches a specific date's schedule straight from a mawaqit
// page URL, bypassing the persistent cache in both directions. The result
// is still written through so later lookups hit the cache.
func (s *ScheduleService) FetchByURL(ctx context.Context, pageURL, dateInput string) (*model.PrayerSchedule, error) {
	date, err := ParseDate(dateInput)
	if err != nil {
		return nil, err
	}

	slug, err := SlugFromURL(pageURL)
	if err != nil {
		return nil, err
	}

	log.Info().Str("slug", slug).Str("date", date.Format("2006-01-02")).Msg("fetching prayer times by URL")

	mawaqit := s.registry.newProvider(provider.IDMawaqit)
	if err := mawaqit.Initialize(nil); err != nil {
		return nil, fmt.Errorf("failed to initialize provider: %w", err)
	}

	schedule, err := mawaqit.GetPrayerTimes(ctx, slug, &date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prayer times: %w", err)
	}

	s.cache(slug, date, schedule)

	return schedule, nil
}
