package model

import "time"

// Canonical prayer names. The five dailies are listed in day order.
const (
	PrayerFajr    = "Fajr"
	PrayerDhuhr   = "Dhuhr"
	PrayerAsr     = "Asr"
	PrayerMaghrib = "Maghrib"
	PrayerIsha    = "Isha"
	PrayerJumuah  = "Jumuah"
)

// EngineConfig holds the tunables of the time-state engine.
type EngineConfig struct {
	RakahDurationSeconds    int64            `json:"rakah_duration_seconds"`
	StartLagSeconds         int64            `json:"start_lag_seconds"`
	BufferBeforeStartSecs   int64            `json:"buffer_before_start_seconds"`
	GraceSeconds            int64            `json:"grace_seconds"`
	PostPrayerDisplayMins   int64            `json:"post_prayer_display_minutes"`
	CatchUpMinutes          int64            `json:"catch_up_minutes"`
	DefaultRakahCounts      map[string]int   `json:"default_rakah_counts"`
}

// DefaultEngineConfig returns the stock tuning: 144s per rakah, 30s departure
// buffer, 60s grace, a 28 minute "recently finished" display window and a
// 3 minute catch-up window.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		RakahDurationSeconds:  144,
		StartLagSeconds:       0,
		BufferBeforeStartSecs: 30,
		GraceSeconds:          60,
		PostPrayerDisplayMins: 28,
		CatchUpMinutes:        3,
		DefaultRakahCounts: map[string]int{
			PrayerFajr:    2,
			PrayerDhuhr:   4,
			PrayerAsr:     4,
			PrayerMaghrib: 3,
			PrayerIsha:    4,
			PrayerJumuah:  2,
		},
	}
}

// Prayer is a single prayer entry in a day's schedule. Iqama, when present,
// is never before the adhan.
type Prayer struct {
	Name             string     `json:"name"`
	Adhan            time.Time  `json:"adhan"`
	Iqama            *time.Time `json:"iqama,omitempty"`
	CustomRakahCount *int       `json:"custom_rakah_count,omitempty"`
}

func (p Prayer) HasIqama() bool {
	return p.Iqama != nil
}

// RakahCount resolves the rakah count: explicit override, then the per-name
// default table, then 4.
func (p Prayer) RakahCount(defaults map[string]int) int {
	if p.CustomRakahCount != nil {
		return *p.CustomRakahCount
	}
	if n, ok := defaults[p.Name]; ok {
		return n
	}
	return 4
}

// PrayerSchedule is one day's schedule for a mosque. The five daily prayers
// are always present and non-decreasing by adhan time; Jumuah is set only
// when Date falls on a Friday.
type PrayerSchedule struct {
	Date       time.Time  `json:"date"`
	Fajr       Prayer     `json:"fajr"`
	Dhuhr      Prayer     `json:"dhuhr"`
	Asr        Prayer     `json:"asr"`
	Maghrib    Prayer     `json:"maghrib"`
	Isha       Prayer     `json:"isha"`
	Jumuah     *Prayer    `json:"jumuah,omitempty"`
	MosqueID   string     `json:"mosque_id,omitempty"`
	MosqueName string     `json:"mosque_name,omitempty"`
	CachedAt   *time.Time `json:"cached_at,omitempty"`
}

// DailyPrayers returns the five daily prayers in day order.
func (s *PrayerSchedule) DailyPrayers() []*Prayer {
	return []*Prayer{&s.Fajr, &s.Dhuhr, &s.Asr, &s.Maghrib, &s.Isha}
}

// PrayerByName returns the named prayer, or nil if the name is unknown or
// the schedule has no Jumuah entry.
func (s *PrayerSchedule) PrayerByName(name string) *Prayer {
	switch name {
	case PrayerFajr:
		return &s.Fajr
	case PrayerDhuhr:
		return &s.Dhuhr
	case PrayerAsr:
		return &s.Asr
	case PrayerMaghrib:
		return &s.Maghrib
	case PrayerIsha:
		return &s.Isha
	case PrayerJumuah:
		return s.Jumuah
	}
	return nil
}

// RakahStatus is the state of a communal prayer relative to "now".
type RakahStatus string

const (
	RakahNotAvailable     RakahStatus = "not_available"
	RakahNotStarted       RakahStatus = "not_started"
	RakahInProgress       RakahStatus = "in_progress"
	RakahRecentlyFinished RakahStatus = "recently_finished"
	RakahLikelyFinished   RakahStatus = "likely_finished"
)

// ArrivalStatus classifies a predicted arrival relative to the prayer window.
type ArrivalStatus string

const (
	ArrivalBeforeStart       ArrivalStatus = "before_start"
	ArrivalInProgress        ArrivalStatus = "in_progress"
	ArrivalAfterEstimatedEnd ArrivalStatus = "after_estimated_end"
	ArrivalIqamaUnavailable  ArrivalStatus = "iqama_unavailable"
)

// NextPrayerResult reports the upcoming (or between adhan and iqama, the
// current) prayer. Computed per query, never persisted.
type NextPrayerResult struct {
	Prayer             Prayer `json:"prayer"`
	TimeUntilAdhanSecs int64  `json:"time_until_adhan_secs"`
	TimeUntilIqamaSecs *int64 `json:"time_until_iqama_secs,omitempty"`
	IsTomorrow         bool   `json:"is_tomorrow"`
}

// RakahEstimate reports how far into its rakahs a congregation likely is.
type RakahEstimate struct {
	Status          RakahStatus `json:"status"`
	CurrentRakah    *int        `json:"current_rakah,omitempty"`
	TotalRakah      int         `json:"total_rakah"`
	ElapsedSecs     *int64      `json:"elapsed_secs,omitempty"`
	RemainingSecs   *int64      `json:"remaining_secs,omitempty"`
	Progress        float64     `json:"progress"`
	IsEstimate      bool        `json:"is_estimate"`
	EndedMinutesAgo *int64      `json:"ended_minutes_ago,omitempty"`
	CanStillCatch   bool        `json:"can_still_catch"`
}

// TravelPrediction reports whether a traveler will arrive in time.
type TravelPrediction struct {
	RecommendedLeaveTime time.Time     `json:"recommended_leave_time"`
	ArrivalTime          time.Time     `json:"arrival_time"`
	ArrivalRakah         *int          `json:"arrival_rakah,omitempty"`
	ArrivalStatus        ArrivalStatus `json:"arrival_status"`
	ShouldLeaveNow       bool          `json:"should_leave_now"`
	TimeUntilLeaveSecs   *int64        `json:"time_until_leave_secs,omitempty"`
	IsLate               bool          `json:"is_late"`
}

// PrayerCountdown is one row of the per-prayer countdown view.
type PrayerCountdown struct {
	PrayerName         string     `json:"prayer_name"`
	AdhanTime          time.Time  `json:"adhan_time"`
	IqamaTime          *time.Time `json:"iqama_time,omitempty"`
	TimeUntilAdhanSecs int64      `json:"time_until_adhan_secs"`
	TimeUntilIqamaSecs *int64     `json:"time_until_iqama_secs,omitempty"`
	IsActive           bool       `json:"is_active"`
}
