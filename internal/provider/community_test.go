package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iqamah-app/iqamah/internal/model"
)

func newCommunityAgainst(t *testing.T, handler http.HandlerFunc) (*Community, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewCommunity()
	require.NoError(t, p.Initialize(json.RawMessage(fmt.Sprintf(`{"base_url": %q, "api_key": "secret"}`, srv.URL))))
	return p, srv
}

func TestCommunityGetPrayerTimes(t *testing.T) {
	p, _ := newCommunityAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mosques/m1/times", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		assert.Equal(t, "2026-03-06", r.URL.Query().Get("date"))

		fmt.Fprint(w, `{
			"date": "2026-03-06",
			"fajr": {"adhan": "05:00", "iqama": "05:20", "rakah_count": 2},
			"dhuhr": {"adhan": "12:30"},
			"asr": {"adhan": "15:45", "iqama": "16:00"},
			"maghrib": {"adhan": "18:20", "iqama": "18:25"},
			"isha": {"adhan": "19:50", "iqama": "20:05"},
			"jumuah": {"adhan": "13:00", "iqama": "13:30"}
		}`)
	})

	date := time.Date(2026, time.March, 6, 0, 0, 0, 0, time.Local)
	schedule, err := p.GetPrayerTimes(context.Background(), "m1", &date)
	require.NoError(t, err)

	assert.Equal(t, "m1", schedule.MosqueID)
	require.NotNil(t, schedule.Fajr.Iqama)
	require.NotNil(t, schedule.Fajr.CustomRakahCount)
	assert.Equal(t, 2, *schedule.Fajr.CustomRakahCount)

	// Dhuhr had no iqama in the payload.
	assert.Nil(t, schedule.Dhuhr.Iqama)

	// 2026-03-06 is a Friday, so the Jumuah entry stays.
	require.NotNil(t, schedule.Jumuah)
	assert.Equal(t, model.PrayerJumuah, schedule.Jumuah.Name)
}

func TestCommunityGetPrayerTimes_JumuahDroppedOffFriday(t *testing.T) {
	p, _ := newCommunityAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"date": "2026-03-02",
			"fajr": {"adhan": "05:00"},
			"dhuhr": {"adhan": "12:30"},
			"asr": {"adhan": "15:45"},
			"maghrib": {"adhan": "18:20"},
			"isha": {"adhan": "19:50"},
			"jumuah": {"adhan": "13:00"}
		}`)
	})

	// 2026-03-02 is a Monday.
	date := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.Local)
	schedule, err := p.GetPrayerTimes(context.Background(), "m1", &date)
	require.NoError(t, err)
	assert.Nil(t, schedule.Jumuah)
}

func TestCommunitySearchMosques(t *testing.T) {
	p, _ := newCommunityAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mosques/search", r.URL.Path)
		assert.Equal(t, "noor", r.URL.Query().Get("q"))
		fmt.Fprint(w, `[{"id": "m1", "name": "Al Noor", "city": "Lyon"}]`)
	})

	mosques, err := p.SearchMosques(context.Background(), "noor", nil)
	require.NoError(t, err)
	require.Len(t, mosques, 1)
	assert.Equal(t, "Al Noor", mosques[0].Name)
	require.NotNil(t, mosques[0].City)
	assert.Equal(t, "Lyon", *mosques[0].City)
}

func TestCommunityErrors(t *testing.T) {
	p, _ := newCommunityAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/mosques/gone/times":
			http.NotFound(w, r)
		case "/mosques/broken/times":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			fmt.Fprint(w, `not json`)
		}
	})

	_, err := p.GetPrayerTimes(context.Background(), "gone", nil)
	perr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, perr.Kind)

	_, err = p.GetPrayerTimes(context.Background(), "broken", nil)
	perr, ok = err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindServer, perr.Kind)
	assert.Equal(t, 500, perr.StatusCode)

	_, err = p.GetPrayerTimes(context.Background(), "garbage", nil)
	perr, ok = err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindParse, perr.Kind)
}

func TestCommunityNotConfigured(t *testing.T) {
	p := NewCommunity()
	require.NoError(t, p.Initialize(nil))

	_, err := p.GetPrayerTimes(context.Background(), "m1", nil)
	perr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindInvalidConfig, perr.Kind)

	result, err := p.TestConnection(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Success)
}
