package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOfficialAgainst(t *testing.T, handler http.HandlerFunc) *Official {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewOfficial()
	require.NoError(t, p.Initialize(json.RawMessage(fmt.Sprintf(`{"api_token": "tok", "base_url": %q}`, srv.URL))))
	return p
}

func TestOfficialGetPrayerTimes(t *testing.T) {
	p := newOfficialAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{
			"fajr": "05:00", "fajr_iqama": "05:20",
			"dhuhr": "12:30", "dhuhr_iqama": "12:45",
			"asr": "15:45", "asr_iqama": "16:00",
			"maghrib": "18:20", "maghrib_iqama": "18:25",
			"isha": "19:50", "isha_iqama": "20:05"
		}`)
	})

	schedule, err := p.GetPrayerTimes(context.Background(), "m1", nil)
	require.NoError(t, err)
	assert.Equal(t, "m1", schedule.MosqueID)
	require.NotNil(t, schedule.Fajr.Iqama)
	assert.Nil(t, schedule.Jumuah)
}

func TestOfficialTokenMissing(t *testing.T) {
	p := NewOfficial()
	require.NoError(t, p.Initialize(nil))

	_, err := p.GetPrayerTimes(context.Background(), "m1", nil)
	perr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindInvalidConfig, perr.Kind)
}

func TestOfficialTestConnection(t *testing.T) {
	p := newOfficialAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/me", r.URL.Path)
		fmt.Fprint(w, `{"email": "user@example.com"}`)
	})

	result, err := p.TestConnection(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.NotNil(t, result.LatencyMs)
}

func TestOfficialTestConnection_Failure(t *testing.T) {
	p := newOfficialAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	result, err := p.TestConnection(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Success)
}
