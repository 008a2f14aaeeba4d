package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iqamah-app/iqamah/internal/cache"
	"github.com/iqamah-app/iqamah/internal/model"
	"github.com/iqamah-app/iqamah/internal/provider"
)

func newTestMosqueService(store *fakeStore, chain *fakeChain) *MosqueService {
	registry := NewRegistry(store, cache.NewMemory(0))
	svc := NewMosqueService(store, registry)
	svc.buildChain = func(country string) provider.Provider { return chain }
	return svc
}

func favoriteMosque(id, name string) model.Mosque {
	m := model.NewMosque(id, name)
	m.IsFavorite = true
	return m
}

func TestSearch_MergesExternalAndFavorites(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.SaveMosque(favoriteMosque("fav1", "Al Noor Center")))

	chain := &fakeChain{mosques: []model.Mosque{model.NewMosque("ext1", "Al Noor Mosque")}}
	svc := newTestMosqueService(store, chain)

	result, err := svc.Search(context.Background(), "noor", "")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)

	ids := map[string]bool{}
	for _, m := range result.Mosques {
		ids[m.ID] = m.IsFavorite
	}
	assert.Contains(t, ids, "ext1")
	assert.Contains(t, ids, "fav1")
	assert.True(t, ids["fav1"])
	assert.False(t, ids["ext1"])
}

func TestSearch_DeduplicatesByID(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.SaveMosque(favoriteMosque("m1", "Central Mosque")))

	// The provider returns the same mosque the user already favorited.
	chain := &fakeChain{mosques: []model.Mosque{model.NewMosque("m1", "Central Mosque")}}
	svc := newTestMosqueService(store, chain)

	result, err := svc.Search(context.Background(), "central", "")
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "m1", result.Mosques[0].ID)
	assert.True(t, result.Mosques[0].IsFavorite)
}

func TestSearch_ProviderFailureStillReturnsFavorites(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.SaveMosque(favoriteMosque("fav1", "Masjid Al Salam")))

	chain := &fakeChain{err: provider.NetworkError(nil, "connection refused")}
	svc := newTestMosqueService(store, chain)

	result, err := svc.Search(context.Background(), "salam", "")
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "fav1", result.Mosques[0].ID)
}

func TestFavoriteLifecycle(t *testing.T) {
	store := newFakeStore()
	chain := &fakeChain{}
	svc := newTestMosqueService(store, chain)

	require.NoError(t, svc.AddFavorite(model.NewMosque("m1", "Test Mosque")))

	favorites, err := svc.Favorites()
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.True(t, favorites[0].IsFavorite)
	assert.NotNil(t, favorites[0].LastAccessed)

	require.NoError(t, svc.RemoveFavorite("m1"))
	favorites, err = svc.Favorites()
	require.NoError(t, err)
	assert.Empty(t, favorites)
}

func TestDetails_StoredMosqueWins(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.SaveMosque(model.NewMosque("m1", "Stored Mosque")))

	chain := &fakeChain{mosques: []model.Mosque{model.NewMosque("m1", "Remote Mosque")}}
	svc := newTestMosqueService(store, chain)

	got, err := svc.Details(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "Stored Mosque", got.Name)
	assert.Equal(t, 0, chain.calls)
}

func TestDetails_FallsBackToChainAndPersists(t *testing.T) {
	store := newFakeStore()
	chain := &fakeChain{mosques: []model.Mosque{model.NewMosque("m2", "Remote Mosque")}}
	svc := newTestMosqueService(store, chain)

	got, err := svc.Details(context.Background(), "m2")
	require.NoError(t, err)
	assert.Equal(t, "Remote Mosque", got.Name)

	stored, err := store.GetMosque("m2")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Remote Mosque", stored.Name)
}
