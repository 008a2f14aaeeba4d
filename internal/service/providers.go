// Package service holds the application logic between the HTTP layer and
// the stores: provider chain assembly, schedule resolution with caching,
// mosque search merging and the prayer-state queries.
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/iqamah-app/iqamah/internal/cache"
	"github.com/iqamah-app/iqamah/internal/db"
	"github.com/iqamah-app/iqamah/internal/model"
	"github.com/iqamah-app/iqamah/internal/provider"
)

// Registry builds providers from their stored configurations and assembles
// the fallback chain.
type Registry struct {
	store     db.Store
	directory cache.Directory
}

func NewRegistry(store db.Store, directory cache.Directory) *Registry {
	return &Registry{store: store, directory: directory}
}

// newProvider returns a fresh, uninitialized provider instance.
func (r *Registry) newProvider(id string) provider.Provider {
	switch id {
	case provider.IDMawaqit:
		return provider.NewMawaqit(r.directory)
	case provider.IDOfficialAPI:
		return provider.NewOfficial()
	case provider.IDCommunityWrapper:
		return provider.NewCommunity()
	case provider.IDScraping:
		return provider.NewScraping()
	default:
		return nil
	}
}

// configured returns an initialized provider when a stored configuration
// exists for it, nil otherwise.
func (r *Registry) configured(id string) provider.Provider {
	cfg, err := r.store.GetProviderConfig(id)
	if err != nil {
		log.Warn().Err(err).Str("provider", id).Msg("failed to load provider config")
		return nil
	}
	if cfg == nil {
		return nil
	}

	p := r.newProvider(id)
	if p == nil {
		return nil
	}
	if err := p.Initialize(cfg.Settings); err != nil {
		log.Warn().Err(err).Str("provider", id).Msg("failed to initialize provider")
		return nil
	}
	return p
}

// BuildChain assembles the fallback chain: user-configured sources first in
// precedence order, Mawaqit always last as the zero-configuration fallback.
// A non-empty country overrides the Mawaqit default country for this chain.
func (r *Registry) BuildChain(country string) *provider.Chain {
	var members []provider.Provider

	if p := r.configured(provider.IDCommunityWrapper); p != nil {
		members = append(members, p)
	}
	if p := r.configured(provider.IDOfficialAPI); p != nil {
		members = append(members, p)
	}
	if p := r.configured(provider.IDScraping); p != nil {
		members = append(members, p)
	}

	mawaqit := provider.NewMawaqit(r.directory)
	settings := json.RawMessage(nil)
	if cfg, err := r.store.GetProviderConfig(provider.IDMawaqit); err == nil && cfg != nil {
		settings = cfg.Settings
	}
	if country != "" {
		settings = overrideCountry(settings, country)
	}
	if err := mawaqit.Initialize(settings); err != nil {
		log.Warn().Err(err).Msg("failed to initialize mawaqit provider")
	}
	members = append(members, mawaqit)

	return provider.NewChain(members...)
}

// overrideCountry rewrites default_country in a Mawaqit settings blob while
// keeping every other stored option.
func overrideCountry(settings json.RawMessage, country string) json.RawMessage {
	merged := map[string]any{}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &merged); err != nil {
			log.Warn().Err(err).Msg("ignoring malformed mawaqit settings")
			merged = map[string]any{}
		}
	}
	merged["default_country"] = country

	out, err := json.Marshal(merged)
	if err != nil {
		return settings
	}
	return out
}

// AvailableProviders lists every provider descriptor for UI configuration.
func (r *Registry) AvailableProviders() []model.ProviderInfo {
	ids := []string{
		provider.IDMawaqit,
		provider.IDOfficialAPI,
		provider.IDCommunityWrapper,
		provider.IDScraping,
	}

	infos := make([]model.ProviderInfo, 0, len(ids))
	for _, id := range ids {
		p := r.newProvider(id)
		infos = append(infos, model.ProviderInfo{
			ID:           p.ID(),
			Name:         p.Name(),
			Description:  p.Description(),
			ConfigSchema: p.ConfigSchema(),
		})
	}
	return infos
}

// ActiveProvider reports the provider that currently leads resolution: the
// highest-precedence configured one, or Mawaqit when nothing is configured.
func (r *Registry) ActiveProvider() model.ProviderInfo {
	for _, id := range []string{provider.IDCommunityWrapper, provider.IDOfficialAPI} {
		if cfg, err := r.store.GetProviderConfig(id); err == nil && cfg != nil {
			p := r.newProvider(id)
			return model.ProviderInfo{
				ID:           p.ID(),
				Name:         p.Name(),
				Description:  p.Description(),
				ConfigSchema: p.ConfigSchema(),
			}
		}
	}

	p := r.newProvider(provider.IDMawaqit)
	return model.ProviderInfo{
		ID:           p.ID(),
		Name:         p.Name(),
		Description:  p.Description(),
		ConfigSchema: p.ConfigSchema(),
	}
}

// TestProvider initializes a provider with the given settings and runs its
// connectivity test.
func (r *Registry) TestProvider(ctx context.Context, providerID string, settings json.RawMessage) (model.ProviderTestResult, error) {
	p := r.newProvider(providerID)
	if p == nil {
		return model.ProviderTestResult{}, fmt.Errorf("unknown provider: %s", providerID)
	}
	if err := p.Initialize(settings); err != nil {
		return model.ProviderTestResult{}, fmt.Errorf("failed to initialize: %w", err)
	}
	return p.TestConnection(ctx)
}

// SaveProviderConfig verifies the provider exists and the settings apply
// cleanly, then persists them.
func (r *Registry) SaveProviderConfig(providerID string, settings json.RawMessage) error {
	p := r.newProvider(providerID)
	if p == nil {
		return fmt.Errorf("unknown provider: %s", providerID)
	}
	if err := p.Initialize(settings); err != nil {
		return err
	}
	return r.store.SaveProviderConfig(model.ProviderConfig{
		ProviderID: providerID,
		Settings:   settings,
	})
}
