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

const defaultOfficialBaseURL = "https://mawaqit.net/api"

// Official is the token-authenticated upstream API client.
type Official struct {
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
	baseURL  string
	apiToken string
}

var _ Provider = (*Official)(nil)

func NewOfficial() *Official {
	return &Official{
		client:  newHTTPClient(),
		breaker: newBreaker(IDOfficialAPI),
		baseURL: defaultOfficialBaseURL,
	}
}

func (p *Official) ID() string   { return IDOfficialAPI }
func (p *Official) Name() string { return "Mawaqit Official API" }
func (p *Official) Description() string {
	return "Direct access to the Mawaqit prayer times API (requires API token)"
}

func (p *Official) ConfigSchema() []model.ConfigField {
	return []model.ConfigField{
		model.NewConfigField("api_token", "API Token", model.FieldPassword).
			AsRequired().
			WithDescription("Your Mawaqit API token"),
		model.NewConfigField("base_url", "Base URL", model.FieldURL).
			WithDefault(defaultOfficialBaseURL).
			WithDescription("Optional: custom API base URL"),
	}
}

func (p *Official) Initialize(settings json.RawMessage) error {
	var cfg struct {
		APIToken string `json:"api_token"`
		BaseURL  string `json:"base_url"`
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &cfg); err != nil {
			return InvalidConfigError("malformed settings: %v", err)
		}
	}
	if cfg.APIToken != "" {
		p.apiToken = cfg.APIToken
	}
	if cfg.BaseURL != "" {
		p.baseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return nil
}

func (p *Official) token() (string, *Error) {
	if p.apiToken == "" {
		return "", InvalidConfigError("API token required")
	}
	return p.apiToken, nil
}

func (p *Official) get(ctx context.Context, path string, query url.Values) ([]byte, *Error) {
	token, perr := p.token()
	if perr != nil {
		return nil, perr
	}

	u := p.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, NetworkError(err, "bad request for %s: %v", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	return doRequest(ctx, p.client, p.breaker, req)
}

type officialMosque struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Address   *string  `json:"address"`
	City      *string  `json:"city"`
	Country   *string  `json:"country"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (m officialMosque) toModel() model.Mosque {
	return model.Mosque{
		ID:        m.ID,
		Name:      m.Name,
		Address:   m.Address,
		City:      m.City,
		Country:   m.Country,
		Latitude:  m.Latitude,
		Longitude: m.Longitude,
	}
}

func (p *Official) SearchMosques(ctx context.Context, query string, _ *model.GeoLocation) ([]model.Mosque, error) {
	q := url.Values{}
	q.Set("word", query)

	body, perr := p.get(ctx, "/mosques/search", q)
	if perr != nil {
		return nil, perr
	}

	var raw []officialMosque
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, ParseError(err, "failed to parse search response: %v", err)
	}

	mosques := make([]model.Mosque, 0, len(raw))
	for _, m := range raw {
		mosques = append(mosques, m.toModel())
	}
	return mosques, nil
}

func (p *Official) GetNearbyMosques(ctx context.Context, location model.GeoLocation, radiusKm float64) ([]model.Mosque, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", location.Latitude))
	q.Set("lon", fmt.Sprintf("%f", location.Longitude))
	q.Set("radius", fmt.Sprintf("%f", radiusKm))

	body, perr := p.get(ctx, "/mosques/nearby", q)
	if perr != nil {
		return nil, perr
	}

	var raw []officialMosque
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, ParseError(err, "failed to parse nearby response: %v", err)
	}

	mosques := make([]model.Mosque, 0, len(raw))
	for _, m := range raw {
		mosques = append(mosques, m.toModel())
	}
	return mosques, nil
}

func (p *Official) GetPrayerTimes(ctx context.Context, mosqueID string, date *time.Time) (*model.PrayerSchedule, error) {
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

	var payload map[string]*string
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, ParseError(err, "failed to parse times response: %v", err)
	}

	day := time.Now().In(time.Local)
	if date != nil {
		day = *date
	}
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.Local)

	prayer := func(name, adhanKey, iqamaKey string) model.Prayer {
		adhanClock := "00:00"
		if s := payload[adhanKey]; s != nil {
			adhanClock = *s
		}
		out := model.Prayer{
			Name:  name,
			Adhan: parseClock(day, adhanClock, time.Local).UTC(),
		}
		if s := payload[iqamaKey]; s != nil {
			iq := parseClock(day, *s, time.Local).UTC()
			out.Iqama = &iq
		}
		return out
	}

	now := time.Now().UTC()
	return &model.PrayerSchedule{
		Date:     day.UTC(),
		Fajr:     prayer(model.PrayerFajr, "fajr", "fajr_iqama"),
		Dhuhr:    prayer(model.PrayerDhuhr, "dhuhr", "dhuhr_iqama"),
		Asr:      prayer(model.PrayerAsr, "asr", "asr_iqama"),
		Maghrib:  prayer(model.PrayerMaghrib, "maghrib", "maghrib_iqama"),
		Isha:     prayer(model.PrayerIsha, "isha", "isha_iqama"),
		MosqueID: mosqueID,
		CachedAt: &now,
	}, nil
}

func (p *Official) TestConnection(ctx context.Context) (model.ProviderTestResult, error) {
	start := time.Now()

	if _, perr := p.token(); perr != nil {
		return model.ProviderTestResult{
			Success: false,
			Message: "Not configured: " + perr.Message,
		}, nil
	}

	_, perr := p.get(ctx, "/user/me", nil)
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

func (p *Official) GetMosqueDetails(ctx context.Context, mosqueID string) (model.Mosque, error) {
	body, perr := p.get(ctx, "/mosques/"+mosqueID, nil)
	if perr != nil {
		if perr.Kind == KindNotFound {
			return model.Mosque{}, NotFoundError("mosque %s not found", mosqueID)
		}
		return model.Mosque{}, perr
	}

	var raw officialMosque
	if err := json.Unmarshal(body, &raw); err != nil {
		return model.Mosque{}, ParseError(err, "failed to parse mosque details: %v", err)
	}
	if raw.ID == "" {
		raw.ID = mosqueID
	}
	return raw.toModel(), nil
}
