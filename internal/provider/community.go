package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/iqamah-app/iqamah/internal/model"
)

// Community is the client for the community-maintained REST wrapper API. It
// needs a base URL; the API key is optional.
type Community struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	baseURL string
	apiKey  string
}

var _ Provider = (*Community)(nil)

func NewCommunity() *Community {
	return &Community{
		client:  newHTTPClient(),
		breaker: newBreaker(IDCommunityWrapper),
	}
}

func (p *Community) ID() string   { return IDCommunityWrapper }
func (p *Community) Name() string { return "Community Wrapper API" }
func (p *Community) Description() string {
	return "Community-provided REST API wrapper for prayer times data"
}

func (p *Community) ConfigSchema() []model.ConfigField {
	return []model.ConfigField{
		model.NewConfigField("base_url", "API Base URL", model.FieldURL).
			AsRequired().
			WithDescription("The base URL of the community API"),
		model.NewConfigField("api_key", "API Key", model.FieldPassword).
			WithDescription("Optional API key for authentication"),
	}
}

func (p *Community) Initialize(settings json.RawMessage) error {
	var cfg struct {
		BaseURL string `json:"base_url"`
		APIKey  string `json:"api_key"`
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &cfg); err != nil {
			return InvalidConfigError("malformed settings: %v", err)
		}
	}
	p.baseURL = strings.TrimRight(cfg.BaseURL, "/")
	p.apiKey = cfg.APIKey
	return nil
}

func (p *Community) get(ctx context.Context, path string, query url.Values) ([]byte, *Error) {
	if p.baseURL == "" {
		return nil, InvalidConfigError("provider not initialized: base URL missing")
	}

	u := p.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, NetworkError(err, "bad request for %s: %v", path, err)
	}
	if p.apiKey != "" {
		req.Header.Set("X-API-Key", p.apiKey)
	}

	return doRequest(ctx, p.client, p.breaker, req)
}

type communityMosque struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Address   *string  `json:"address"`
	City      *string  `json:"city"`
	Country   *string  `json:"country"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type communityPrayer struct {
	Adhan      string  `json:"adhan"`
	Iqama      *string `json:"iqama"`
	RakahCount *int    `json:"rakah_count"`
}

type communitySchedule struct {
	Date    string           `json:"date"`
	Fajr    communityPrayer  `json:"fajr"`
	Dhuhr   communityPrayer  `json:"dhuhr"`
	Asr     communityPrayer  `json:"asr"`
	Maghrib communityPrayer  `json:"maghrib"`
	Isha    communityPrayer  `json:"isha"`
	Jumuah  *communityPrayer `json:"jumuah"`
}

func (p *Community) mosques(body []byte) ([]model.Mosque, *Error) {
	var raw []communityMosque
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, ParseError(err, "failed to parse response: %v", err)
	}

	out := make([]model.Mosque, 0, len(raw))
	for _, m := range raw {
		out = append(out, model.Mosque{
			ID:        m.ID,
			Name:      m.Name,
			Address:   m.Address,
			City:      m.City,
			Country:   m.Country,
			Latitude:  m.Latitude,
			Longitude: m.Longitude,
		})
	}
	return out, nil
}

func (p *Community) SearchMosques(ctx context.Context, query string, _ *model.GeoLocation) ([]model.Mosque, error) {
	q := url.Values{}
	q.Set("q", query)

	body, perr := p.get(ctx, "/mosques/search", q)
	if perr != nil {
		return nil, perr
	}
	mosques, perr := p.mosques(body)
	if perr != nil {
		return nil, perr
	}
	return mosques, nil
}

func (p *Community) GetNearbyMosques(ctx context.Context, location model.GeoLocation, radiusKm float64) ([]model.Mosque, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", location.Latitude))
	q.Set("lng", fmt.Sprintf("%f", location.Longitude))
	q.Set("radius", fmt.Sprintf("%f", radiusKm))

	body, perr := p.get(ctx, "/mosques/nearby", q)
	if perr != nil {
		return nil, perr
	}
	mosques, perr := p.mosques(body)
	if perr != nil {
		return nil, perr
	}
	return mosques, nil
}

func (p *Community) GetPrayerTimes(ctx context.Context, mosqueID string, date *time.Time) (*model.PrayerSchedule, error) {
	q := url.Values{}
	if date != nil {
		q.Set("date", date.Format("2006-01-02"))
	}

	body, perr := p.get(ctx, "/mosques/"+mosqueID+"/times", q)
	if perr != nil {
		if perr.Kind == KindNotFound {
			return nil, NotFoundError("mosque %s not found", mosqueID)
		}
		return nil, perr
	}

	var raw communitySchedule
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, ParseError(err, "failed to parse times response: %v", err)
	}

	day := time.Now().In(time.Local)
	if date != nil {
		day = *date
	}
	if raw.Date != "" {
		if parsed, err := time.ParseInLocation("2006-01-02", raw.Date, time.Local); err == nil {
			day = parsed
		}
	}
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.Local)

	convert := func(name string, cp communityPrayer) model.Prayer {
		out := model.Prayer{
			Name:             name,
			Adhan:            parseClock(day, cp.Adhan, time.Local).UTC(),
			CustomRakahCount: cp.RakahCount,
		}
		if cp.Iqama != nil {
			iq := parseClock(day, *cp.Iqama, time.Local).UTC()
			out.Iqama = &iq
		}
		return out
	}

	now := time.Now().UTC()
	schedule := &model.PrayerSchedule{
		Date:     day.UTC(),
		Fajr:     convert(model.PrayerFajr, raw.Fajr),
		Dhuhr:    convert(model.PrayerDhuhr, raw.Dhuhr),
		Asr:      convert(model.PrayerAsr, raw.Asr),
		Maghrib:  convert(model.PrayerMaghrib, raw.Maghrib),
		Isha:     convert(model.PrayerIsha, raw.Isha),
		MosqueID: mosqueID,
		CachedAt: &now,
	}

	// Jumuah only exists on Fridays regardless of what the wrapper returns.
	if raw.Jumuah != nil && isFriday(day) {
		jumuah := convert(model.PrayerJumuah, *raw.Jumuah)
		schedule.Jumuah = &jumuah
	}

	return schedule, nil
}

func (p *Community) TestConnection(ctx context.Context) (model.ProviderTestResult, error) {
	start := time.Now()

	if p.baseURL == "" {
		return model.ProviderTestResult{
			Success: false,
			Message: "Not configured: base URL missing",
		}, nil
	}

	_, perr := p.get(ctx, "/health", nil)
	latency := time.Since(start).Milliseconds()
	if perr != nil {
		return model.ProviderTestResult{
			Success:   false,
			Message:   "Connection failed: " + perr.Error(),
			LatencyMs: &latency,
		}, nil
	}

	return model.ProviderTestResult{
		Success:   true,
		Message:   "Connection successful",
		LatencyMs: &latency,
	}, nil
}

func (p *Community) GetMosqueDetails(ctx context.Context, mosqueID string) (model.Mosque, error) {
	body, perr := p.get(ctx, "/mosques/"+mosqueID, nil)
	if perr != nil {
		if perr.Kind == KindNotFound {
			return model.Mosque{}, NotFoundError("mosque %s not found", mosqueID)
		}
		return model.Mosque{}, perr
	}

	var raw communityMosque
	if err := json.Unmarshal(body, &raw); err != nil {
		return model.Mosque{}, ParseError(err, "failed to parse mosque details: %v", err)
	}
	if raw.ID == "" {
		raw.ID = mosqueID
	}
	return model.Mosque{
		ID:        raw.ID,
		Name:      raw.Name,
		Address:   raw.Address,
		City:      raw.City,
		Country:   raw.Country,
		Latitude:  raw.Latitude,
		Longitude: raw.Longitude,
	}, nil
}
