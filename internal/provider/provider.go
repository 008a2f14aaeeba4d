// Package provider abstracts the external prayer-data sources: an official
// token-authenticated API, a community wrapper API, a generic HTML scraper
// and the Mawaqit integration, all behind one capability interface with a
// deterministic fallback chain on top.
package provider

import (
	"context"
	"encoding/json"
	"time"

	"github.com/iqamah-app/iqamah/internal/model"
)

// Provider identifiers.
const (
	IDMawaqit          = "mawaqit"
	IDOfficialAPI      = "official_api"
	IDCommunityWrapper = "community_wrapper"
	IDScraping         = "scraping"
)

// Provider is the capability set every prayer-data source implements. A
// source that structurally cannot support an operation returns an Error of
// KindOther with an explanatory message.
//
// Every network-bound call honors ctx; cancellation and timeouts surface as
// KindNetwork errors.
type Provider interface {
	ID() string
	Name() string
	Description() string

	// ConfigSchema describes the provider's settings for UI generation.
	ConfigSchema() []model.ConfigField

	// Initialize applies a stored settings blob.
	Initialize(settings json.RawMessage) error

	SearchMosques(ctx context.Context, query string, location *model.GeoLocation) ([]model.Mosque, error)
	GetNearbyMosques(ctx context.Context, location model.GeoLocation, radiusKm float64) ([]model.Mosque, error)
	GetPrayerTimes(ctx context.Context, mosqueID string, date *time.Time) (*model.PrayerSchedule, error)
	TestConnection(ctx context.Context) (model.ProviderTestResult, error)
	GetMosqueDetails(ctx context.Context, mosqueID string) (model.Mosque, error)
}
