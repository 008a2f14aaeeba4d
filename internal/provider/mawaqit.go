package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/iqamah-app/iqamah/internal/cache"
	"github.com/iqamah-app/iqamah/internal/model"
)

const mawaqitBaseURL = "https://mawaqit.net"

// Mosque pages embed their full year of data as a JavaScript literal.
var confDataPattern = regexp.MustCompile(`let\s+confData\s*=\s*(\{[\s\S]+?\});`)

// Offsets applied when the iqama calendar has no entry for a day, in day
// order Fajr through Isha.
var defaultIqamaOffsets = []string{"+30", "+15", "+15", "+10", "+15"}

// Mawaqit scrapes mawaqit.net mosque pages. Each page carries a confData
// blob with today's times, a full year calendar and an iqama offset
// calendar. Country mosque listings come from the public map API.
//
// Scraped payloads go through the injected directory cache so repeated
// lookups within the hour do not refetch the page.
type Mawaqit struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker
	directory cache.Directory

	defaultCountry string
	useMosqueTZ    bool
}

var _ Provider = (*Mawaqit)(nil)

func NewMawaqit(directory cache.Directory) *Mawaqit {
	return &Mawaqit{
		client:         newHTTPClient(),
		breaker:        newBreaker(IDMawaqit),
		directory:      directory,
		defaultCountry: "FR",
	}
}

func (p *Mawaqit) ID() string   { return IDMawaqit }
func (p *Mawaqit) Name() string { return "Mawaqit" }
func (p *Mawaqit) Description() string {
	return "Official Mawaqit.net integration with full calendar support"
}

func (p *Mawaqit) ConfigSchema() []model.ConfigField {
	return []model.ConfigField{
		model.NewConfigField("default_country", "Default Country", model.FieldSelect).
			WithDescription("Default country to search in").
			WithDefault("FR").
			WithOptions("FR", "TN", "MA", "DZ", "US", "GB", "CA"),
		model.NewConfigField("use_mosque_timezone", "Use Mosque Timezone", model.FieldBoolean).
			WithDescription("Interpret times in the mosque's timezone instead of the local one"),
	}
}

func (p *Mawaqit) Initialize(settings json.RawMessage) error {
	var cfg struct {
		DefaultCountry    string `json:"default_country"`
		UseMosqueTimezone bool   `json:"use_mosque_timezone"`
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &cfg); err != nil {
			return InvalidConfigError("malformed settings: %v", err)
		}
	}
	if cfg.DefaultCountry != "" {
		p.defaultCountry = cfg.DefaultCountry
	}
	p.useMosqueTZ = cfg.UseMosqueTimezone
	return nil
}

type mawaqitMosque struct {
	Slug            string  `json:"slug"`
	Name            string  `json:"name"`
	Address         string  `json:"address"`
	City            string  `json:"city"`
	ZipCode         string  `json:"zipcode"`
	CountryFullName string  `json:"countryFullName"`
	Latitude        float64 `json:"lat"`
	Longitude       float64 `json:"lng"`
}

// mawaqitConfData mirrors the embedded page blob. Calendar and
// IqamaCalendar are month slices indexed 0..11; each month maps the day
// number (as a string) to [Fajr, Shuruq, Dhuhr, Asr, Maghrib, Isha] times
// and [Fajr..Isha] offsets respectively. Times holds today's five daily
// times without Shuruq.
type mawaqitConfData struct {
	Name          string                `json:"name"`
	Label         string                `json:"label"`
	CountryCode   string                `json:"countryCode"`
	Latitude      float64               `json:"latitude"`
	Longitude     float64               `json:"longitude"`
	URL           string                `json:"url"`
	Times         []string              `json:"times"`
	Shuruq        *string               `json:"shuruq"`
	Jumua         *string               `json:"jumua"`
	IqamaCalendar []map[string][]string `json:"iqamaCalendar"`
	Calendar      []map[string][]string `json:"calendar"`
	IqamaEnabled  *bool                 `json:"iqamaEnabled"`
	Timezone      string                `json:"timezone"`
}

func (c *mawaqitConfData) iqamaOn() bool {
	return c.IqamaEnabled == nil || *c.IqamaEnabled
}

func (p *Mawaqit) fetchCountryMosques(ctx context.Context, country string) ([]mawaqitMosque, *Error) {
	key := "mawaqit:country:" + country

	body, err := p.directory.GetOrFetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		url := fmt.Sprintf("%s/api/2.0/mosque/map/%s", mawaqitBaseURL, country)
		req, reqErr := http.NewRequest(http.MethodGet, url, nil)
		if reqErr != nil {
			return nil, NetworkError(reqErr, "bad request for %s: %v", url, reqErr)
		}
		data, perr := doRequest(ctx, p.client, p.breaker, req)
		if perr != nil {
			return nil, perr
		}
		return data, nil
	})
	if err != nil {
		return nil, asProviderError(err)
	}

	var mosques []mawaqitMosque
	if jsonErr := json.Unmarshal(body, &mosques); jsonErr != nil {
		p.directory.Invalidate(key)
		return nil, ParseError(jsonErr, "failed to parse mosque list: %v", jsonErr)
	}
	return mosques, nil
}

// scrapeMosquePage fetches the mosque page, extracts the confData blob and
// returns it parsed. The extracted JSON (not the raw page) is what gets
// cached.
func (p *Mawaqit) scrapeMosquePage(ctx context.Context, slug string) (*mawaqitConfData, *Error) {
	key := "mawaqit:mosque:" + slug

	body, err := p.directory.GetOrFetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		url := fmt.Sprintf("%s/en/%s", mawaqitBaseURL, slug)
		log.Debug().Str("url", url).Msg("scraping mosque page")

		req, reqErr := http.NewRequest(http.MethodGet, url, nil)
		if reqErr != nil {
			return nil, NetworkError(reqErr, "bad request for %s: %v", url, reqErr)
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

		html, perr := doRequest(ctx, p.client, p.breaker, req)
		if perr != nil {
			return nil, perr
		}

		m := confDataPattern.FindSubmatch(html)
		if m == nil {
			return nil, ParseError(nil, "could not find prayer times data (confData) in page")
		}
		return m[1], nil
	})
	if err != nil {
		return nil, asProviderError(err)
	}

	var conf mawaqitConfData
	if jsonErr := json.Unmarshal(body, &conf); jsonErr != nil {
		p.directory.Invalidate(key)
		return nil, ParseError(jsonErr, "failed to parse confData: %v", jsonErr)
	}
	return &conf, nil
}

// timesForDate resolves [Fajr, Shuruq, Dhuhr, Asr, Maghrib, Isha] plus the
// iqama offsets for a calendar day. Missing offsets fall back to the
// defaults; a missing calendar day is a parse failure.
func timesForDate(conf *mawaqitConfData, day time.Time) ([]string, []string, bool) {
	month := int(day.Month())
	dayKey := fmt.Sprintf("%d", day.Day())

	if month < 1 || month > len(conf.Calendar) {
		return nil, nil, false
	}
	times, ok := conf.Calendar[month-1][dayKey]
	if !ok {
		return nil, nil, false
	}

	offsets := defaultIqamaOffsets
	if month <= len(conf.IqamaCalendar) {
		if o, ok := conf.IqamaCalendar[month-1][dayKey]; ok {
			offsets = o
		}
	}
	return times, offsets, true
}

// todayTimes uses the page's "times" property, which is fresher than the
// calendar for the current day. It has five entries, so Shuruq is inserted
// from the shuruq field (or estimated an hour after Fajr) to match the
// calendar layout.
func todayTimes(conf *mawaqitConfData, today time.Time) ([]string, []string, bool) {
	if len(conf.Times) < 5 {
		return nil, nil, false
	}

	shuruq := ""
	if conf.Shuruq != nil {
		shuruq = *conf.Shuruq
	}
	if shuruq == "" {
		if est, ok := addClockMinutes(conf.Times[0], "+60"); ok {
			shuruq = est
		} else {
			shuruq = "06:00"
		}
	}

	expanded := make([]string, 0, 6)
	expanded = append(expanded, conf.Times[0], shuruq)
	expanded = append(expanded, conf.Times[1:]...)

	offsets := defaultIqamaOffsets
	month := int(today.Month())
	dayKey := fmt.Sprintf("%d", today.Day())
	if month >= 1 && month <= len(conf.IqamaCalendar) {
		if o, ok := conf.IqamaCalendar[month-1][dayKey]; ok {
			offsets = o
		}
	}
	return expanded, offsets, true
}

// location picks the timezone wall-clock times are interpreted in. Mawaqit
// pages show the mosque's local wall clock, so the default is the host
// timezone; use_mosque_timezone switches to the page's own zone.
func (p *Mawaqit) location(conf *mawaqitConfData) *time.Location {
	if p.useMosqueTZ && conf.Timezone != "" {
		if loc, err := time.LoadLocation(conf.Timezone); err == nil {
			return loc
		}
		log.Warn().Str("timezone", conf.Timezone).Msg("unknown mosque timezone, using local")
	}
	return time.Local
}

func (p *Mawaqit) convertMosque(m mawaqitMosque) model.Mosque {
	address := m.Address
	city := m.City
	country := m.CountryFullName
	lat := m.Latitude
	lng := m.Longitude
	return model.Mosque{
		ID:        m.Slug,
		Name:      m.Name,
		Address:   &address,
		City:      &city,
		Country:   &country,
		Latitude:  &lat,
		Longitude: &lng,
	}
}

func (p *Mawaqit) SearchMosques(ctx context.Context, query string, _ *model.GeoLocation) ([]model.Mosque, error) {
	mosques, perr := p.fetchCountryMosques(ctx, p.defaultCountry)
	if perr != nil {
		return nil, perr
	}

	q := strings.ToLower(query)
	out := make([]model.Mosque, 0)
	for _, m := range mosques {
		if strings.Contains(strings.ToLower(m.Name), q) ||
			strings.Contains(strings.ToLower(m.City), q) ||
			strings.Contains(strings.ToLower(m.Address), q) {
			out = append(out, p.convertMosque(m))
		}
	}
	return out, nil
}

func (p *Mawaqit) GetNearbyMosques(ctx context.Context, location model.GeoLocation, radiusKm float64) ([]model.Mosque, error) {
	mosques, perr := p.fetchCountryMosques(ctx, p.defaultCountry)
	if perr != nil {
		return nil, perr
	}

	out := make([]model.Mosque, 0)
	for _, m := range mosques {
		here := model.GeoLocation{Latitude: m.Latitude, Longitude: m.Longitude}
		if location.DistanceTo(here) <= radiusKm {
			out = append(out, p.convertMosque(m))
		}
	}
	return out, nil
}

func (p *Mawaqit) GetPrayerTimes(ctx context.Context, mosqueID string, date *time.Time) (*model.PrayerSchedule, error) {
	conf, perr := p.scrapeMosquePage(ctx, mosqueID)
	if perr != nil {
		return nil, perr
	}

	loc := p.location(conf)
	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	target := today
	if date != nil {
		d := date.In(loc)
		target = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	}

	var times, offsets []string
	var ok bool
	if target.Equal(today) {
		times, offsets, ok = todayTimes(conf, today)
		if !ok {
			times, offsets, ok = timesForDate(conf, target)
		}
	} else {
		times, offsets, ok = timesForDate(conf, target)
	}
	if !ok {
		return nil, ParseError(nil, "no prayer times found for %s", target.Format("2006-01-02"))
	}
	if len(times) < 6 {
		return nil, ParseError(nil, "invalid prayer times data: expected 6 times, got %d", len(times))
	}

	// times layout: [Fajr, Shuruq, Dhuhr, Asr, Maghrib, Isha]. Shuruq is
	// not a prayer and is skipped.
	adhans := []string{times[0], times[2], times[3], times[4], times[5]}
	names := []string{model.PrayerFajr, model.PrayerDhuhr, model.PrayerAsr, model.PrayerMaghrib, model.PrayerIsha}
	rakahs := []int{2, 4, 4, 3, 4}

	prayers := make([]model.Prayer, 5)
	for i := range names {
		rakah := rakahs[i]
		prayers[i] = model.Prayer{
			Name:             names[i],
			Adhan:            parseClock(target, adhans[i], loc).UTC(),
			CustomRakahCount: &rakah,
		}
		if conf.iqamaOn() && i < len(offsets) {
			if clock, ok := addClockMinutes(adhans[i], offsets[i]); ok {
				iq := parseClock(target, clock, loc).UTC()
				prayers[i].Iqama = &iq
			}
		}
	}

	cachedAt := time.Now().UTC()
	schedule := &model.PrayerSchedule{
		Date:       target.UTC(),
		Fajr:       prayers[0],
		Dhuhr:      prayers[1],
		Asr:        prayers[2],
		Maghrib:    prayers[3],
		Isha:       prayers[4],
		MosqueID:   mosqueID,
		MosqueName: conf.Name,
		CachedAt:   &cachedAt,
	}

	if isFriday(target) && conf.Jumua != nil && *conf.Jumua != "" {
		rakah := 2
		schedule.Jumuah = &model.Prayer{
			Name:             model.PrayerJumuah,
			Adhan:            parseClock(target, *conf.Jumua, loc).UTC(),
			CustomRakahCount: &rakah,
		}
	}

	return schedule, nil
}

func (p *Mawaqit) TestConnection(ctx context.Context) (model.ProviderTestResult, error) {
	start := time.Now()

	mosques, perr := p.fetchCountryMosques(ctx, p.defaultCountry)
	if perr != nil {
		return model.ProviderTestResult{
			Success: false,
			Message: "Connection failed: " + perr.Error(),
		}, nil
	}

	latency := time.Since(start).Milliseconds()
	return model.ProviderTestResult{
		Success:   true,
		Message:   fmt.Sprintf("Connected! Found %d mosques in %s", len(mosques), p.defaultCountry),
		LatencyMs: &latency,
	}, nil
}

func (p *Mawaqit) GetMosqueDetails(ctx context.Context, mosqueID string) (model.Mosque, error) {
	conf, perr := p.scrapeMosquePage(ctx, mosqueID)
	if perr != nil {
		return model.Mosque{}, perr
	}

	address := conf.URL
	city := conf.Label
	country := conf.CountryCode
	lat := conf.Latitude
	lng := conf.Longitude
	return model.Mosque{
		ID:        mosqueID,
		Name:      conf.Name,
		Address:   &address,
		City:      &city,
		Country:   &country,
		Latitude:  &lat,
		Longitude: &lng,
	}, nil
}

// asProviderError normalizes errors coming back through the cache layer,
// which returns plain error values.
func asProviderError(err error) *Error {
	if perr, ok := err.(*Error); ok {
		return perr
	}
	return NetworkError(err, "request failed: %v", err)
}
