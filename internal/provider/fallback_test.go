package provider

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iqamah-app/iqamah/internal/model"
)

// fakeProvider returns canned results or a fixed error for every operation.
type fakeProvider struct {
	id    string
	err   error
	calls int

	mosques  []model.Mosque
	schedule *model.PrayerSchedule
	test     model.ProviderTestResult
}

var _ Provider = (*fakeProvider)(nil)

func (f *fakeProvider) ID() string                                 { return f.id }
func (f *fakeProvider) Name() string                               { return f.id }
func (f *fakeProvider) Description() string                        { return "fake" }
func (f *fakeProvider) ConfigSchema() []model.ConfigField          { return nil }
func (f *fakeProvider) Initialize(settings json.RawMessage) error  { return nil }

func (f *fakeProvider) SearchMosques(ctx context.Context, query string, location *model.GeoLocation) ([]model.Mosque, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.mosques, nil
}

func (f *fakeProvider) GetNearbyMosques(ctx context.Context, location model.GeoLocation, radiusKm float64) ([]model.Mosque, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.mosques, nil
}

func (f *fakeProvider) GetPrayerTimes(ctx context.Context, mosqueID string, date *time.Time) (*model.PrayerSchedule, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.schedule, nil
}

func (f *fakeProvider) TestConnection(ctx context.Context) (model.ProviderTestResult, error) {
	f.calls++
	return f.test, nil
}

func (f *fakeProvider) GetMosqueDetails(ctx context.Context, mosqueID string) (model.Mosque, error) {
	f.calls++
	if f.err != nil {
		return model.Mosque{}, f.err
	}
	if len(f.mosques) > 0 {
		return f.mosques[0], nil
	}
	return model.Mosque{ID: mosqueID}, nil
}

func TestChain_FirstSuccessWins(t *testing.T) {
	broken := &fakeProvider{id: "a", err: NetworkError(nil, "connection refused")}
	working := &fakeProvider{id: "b", schedule: &model.PrayerSchedule{MosqueID: "m1"}}
	unused := &fakeProvider{id: "c", schedule: &model.PrayerSchedule{MosqueID: "m2"}}

	chain := NewChain(broken, working, unused)

	schedule, err := chain.GetPrayerTimes(context.Background(), "m1", nil)
	require.NoError(t, err)
	require.NotNil(t, schedule)
	assert.Equal(t, "m1", schedule.MosqueID)

	// The chain must stop at the first success.
	assert.Equal(t, 1, broken.calls)
	assert.Equal(t, 1, working.calls)
	assert.Equal(t, 0, unused.calls)
}

func TestChain_AllFailReturnsLastError(t *testing.T) {
	first := &fakeProvider{id: "a", err: NetworkError(nil, "connection refused")}
	last := &fakeProvider{id: "b", err: ServerError(503, "unavailable")}

	chain := NewChain(first, last)

	_, err := chain.GetPrayerTimes(context.Background(), "m1", nil)
	require.Error(t, err)

	perr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindServer, perr.Kind)
	assert.Equal(t, 503, perr.StatusCode)
}

func TestChain_EmptyChain(t *testing.T) {
	chain := NewChain()

	_, err := chain.GetPrayerTimes(context.Background(), "m1", nil)
	require.Error(t, err)

	perr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindOther, perr.Kind)
	assert.Contains(t, perr.Message, "no providers available")
}

func TestChain_SearchFallsThrough(t *testing.T) {
	broken := &fakeProvider{id: "a", err: ServerError(500, "boom")}
	working := &fakeProvider{id: "b", mosques: []model.Mosque{model.NewMosque("x", "Mosque X")}}

	chain := NewChain(broken, working)

	mosques, err := chain.SearchMosques(context.Background(), "x", nil)
	require.NoError(t, err)
	require.Len(t, mosques, 1)
	assert.Equal(t, "Mosque X", mosques[0].Name)
}

func TestChain_TestConnectionAggregates(t *testing.T) {
	down := &fakeProvider{id: "a", test: model.ProviderTestResult{Success: false, Message: "timeout"}}
	up := &fakeProvider{id: "b", test: model.ProviderTestResult{Success: true, Message: "ok"}}

	chain := NewChain(down, up)

	result, err := chain.TestConnection(context.Background())
	require.NoError(t, err)

	// Both members get tested; one failure fails the combined report.
	assert.Equal(t, 1, down.calls)
	assert.Equal(t, 1, up.calls)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "a: timeout")
	assert.Contains(t, result.Message, "b: ok")
}

func TestChain_TestConnectionAllUp(t *testing.T) {
	up1 := &fakeProvider{id: "a", test: model.ProviderTestResult{Success: true, Message: "ok"}}
	up2 := &fakeProvider{id: "b", test: model.ProviderTestResult{Success: true, Message: "ok"}}

	chain := NewChain(up1, up2)

	result, err := chain.TestConnection(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
}
