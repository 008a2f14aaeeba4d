package provider

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iqamah-app/iqamah/internal/model"
)

// Chain runs an ordered list of providers, returning the first success.
// Every failure is soft: the chain moves on to the next provider and only
// surfaces the last error once all of them have failed.
type Chain struct {
	providers []Provider
}

var _ Provider = (*Chain)(nil)

func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

func (c *Chain) ID() string   { return "fallback" }
func (c *Chain) Name() string { return "Fallback Chain" }
func (c *Chain) Description() string {
	return "Tries configured providers in order until one succeeds"
}

// ConfigSchema is empty: the chain's configuration is the ordered provider
// list it was built with.
func (c *Chain) ConfigSchema() []model.ConfigField { return nil }

func (c *Chain) Initialize(settings json.RawMessage) error { return nil }

// Providers returns the chain members in order.
func (c *Chain) Providers() []Provider { return c.providers }

func (c *Chain) run(op string, call func(p Provider) error) error {
	if len(c.providers) == 0 {
		return OtherError("no providers available")
	}

	var lastErr error
	for _, p := range c.providers {
		err := call(p)
		if err == nil {
			return nil
		}
		log.Warn().
			Str("provider", p.ID()).
			Str("operation", op).
			Err(err).
			Msg("provider failed, trying next")
		lastErr = err
	}
	return lastErr
}

func (c *Chain) SearchMosques(ctx context.Context, query string, location *model.GeoLocation) ([]model.Mosque, error) {
	var out []model.Mosque
	err := c.run("search_mosques", func(p Provider) error {
		mosques, err := p.SearchMosques(ctx, query, location)
		if err != nil {
			return err
		}
		out = mosques
		return nil
	})
	return out, err
}

func (c *Chain) GetNearbyMosques(ctx context.Context, location model.GeoLocation, radiusKm float64) ([]model.Mosque, error) {
	var out []model.Mosque
	err := c.run("get_nearby_mosques", func(p Provider) error {
		mosques, err := p.GetNearbyMosques(ctx, location, radiusKm)
		if err != nil {
			return err
		}
		out = mosques
		return nil
	})
	return out, err
}

func (c *Chain) GetPrayerTimes(ctx context.Context, mosqueID string, date *time.Time) (*model.PrayerSchedule, error) {
	var out *model.PrayerSchedule
	err := c.run("get_prayer_times", func(p Provider) error {
		schedule, err := p.GetPrayerTimes(ctx, mosqueID, date)
		if err != nil {
			return err
		}
		out = schedule
		return nil
	})
	return out, err
}

func (c *Chain) GetMosqueDetails(ctx context.Context, mosqueID string) (model.Mosque, error) {
	var out model.Mosque
	err := c.run("get_mosque_details", func(p Provider) error {
		mosque, err := p.GetMosqueDetails(ctx, mosqueID)
		if err != nil {
			return err
		}
		out = mosque
		return nil
	})
	return out, err
}

// TestConnection is the one aggregating operation: every member is tested
// and the combined report succeeds only when all of them do.
func (c *Chain) TestConnection(ctx context.Context) (model.ProviderTestResult, error) {
	if len(c.providers) == 0 {
		return model.ProviderTestResult{
			Success: false,
			Message: "no providers available",
		}, nil
	}

	allOK := true
	messages := make([]string, 0, len(c.providers))

	for _, p := range c.providers {
		result, err := p.TestConnection(ctx)
		if err != nil {
			messages = append(messages, p.Name()+": Failed - "+err.Error())
			allOK = false
			continue
		}
		if !result.Success {
			allOK = false
		}
		messages = append(messages, p.Name()+": "+result.Message)
	}

	return model.ProviderTestResult{
		Success: allOK,
		Message: strings.Join(messages, "; "),
	}, nil
}
