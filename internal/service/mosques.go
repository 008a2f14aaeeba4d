package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iqamah-app/iqamah/internal/db"
	"github.com/iqamah-app/iqamah/internal/model"
	"github.com/iqamah-app/iqamah/internal/provider"
)

// MosqueService handles mosque search, details and the favorites list.
type MosqueService struct {
	store    db.Store
	registry *Registry

	buildChain func(country string) provider.Provider
}

func NewMosqueService(store db.Store, registry *Registry) *MosqueService {
	return &MosqueService{
		store:    store,
		registry: registry,
		buildChain: func(country string) provider.Provider {
			return registry.BuildChain(country)
		},
	}
}

// Search runs the query through the provider chain and merges the results
// with locally favorited mosques: duplicate IDs are suppressed, favorites
// are flagged, and local matches still show up when every provider fails.
func (m *MosqueService) Search(ctx context.Context, query, country string) (model.MosqueSearchResult, error) {
	chain := m.buildChain(country)
	external, err := chain.SearchMosques(ctx, query, nil)
	if err != nil {
		// Soft-fail: favorites alone can still answer the search.
		external = nil
	}

	favorites, dbErr := m.store.ListFavoriteMosques()
	if dbErr != nil {
		return model.MosqueSearchResult{}, dbErr
	}

	q := strings.ToLower(query)
	results := external
	for _, fav := range favorites {
		matches := strings.Contains(strings.ToLower(fav.Name), q)
		if !matches && fav.City != nil {
			matches = strings.Contains(strings.ToLower(*fav.City), q)
		}
		if !matches {
			continue
		}
		duplicate := false
		for _, r := range results {
			if r.ID == fav.ID {
				duplicate = true
				break
			}
		}
		if !duplicate {
			results = append(results, fav)
		}
	}

	for i := range results {
		for _, fav := range favorites {
			if results[i].ID == fav.ID {
				results[i].IsFavorite = true
				break
			}
		}
	}

	return model.MosqueSearchResult{Mosques: results, Total: len(results)}, nil
}

// Nearby asks the chain for mosques within radiusKm of a location.
func (m *MosqueService) Nearby(ctx context.Context, location model.GeoLocation, radiusKm float64) ([]model.Mosque, error) {
	if radiusKm <= 0 {
		radiusKm = model.DefaultSearchRadius().Km
	}
	chain := m.buildChain("")
	return chain.GetNearbyMosques(ctx, location, radiusKm)
}

func (m *MosqueService) Favorites() ([]model.Mosque, error) {
	return m.store.ListFavoriteMosques()
}

// AddFavorite persists the mosque and flags it as a favorite.
func (m *MosqueService) AddFavorite(mosque model.Mosque) error {
	now := time.Now().UTC()
	mosque.IsFavorite = true
	mosque.LastAccessed = &now

	if err := m.store.SaveMosque(mosque); err != nil {
		return err
	}
	return m.store.SetFavorite(mosque.ID, true)
}

func (m *MosqueService) RemoveFavorite(mosqueID string) error {
	return m.store.SetFavorite(mosqueID, false)
}

// Details returns the stored mosque when known, otherwise asks the chain
// and persists what it learns.
func (m *MosqueService) Details(ctx context.Context, mosqueID string) (*model.Mosque, error) {
	stored, err := m.store.GetMosque(mosqueID)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		return stored, nil
	}

	chain := m.buildChain("")
	fetched, err := chain.GetMosqueDetails(ctx, mosqueID)
	if err != nil {
		return nil, err
	}
	if saveErr := m.store.SaveMosque(fetched); saveErr != nil {
		log.Warn().Err(saveErr).Str("mosque_id", mosqueID).Msg("failed to store mosque details")
	}
	return &fetched, nil
}
