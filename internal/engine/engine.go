// Package engine computes where "now" falls in a day's prayer timeline.
// Every operation is a pure function of (schedule, config, now); the package
// performs no I/O and is safe for concurrent use on immutable inputs.
package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/iqamah-app/iqamah/internal/model"
)

// Engine evaluates prayer timelines under a fixed configuration.
type Engine struct {
	cfg model.EngineConfig
}

func New(cfg model.EngineConfig) *Engine {
	return &Engine{cfg: cfg}
}

func WithDefaults() *Engine {
	return &Engine{cfg: model.DefaultEngineConfig()}
}

func (e *Engine) Config() model.EngineConfig {
	return e.cfg
}

// NextPrayer returns the first daily prayer whose adhan is still ahead of
// now. Between a prayer's adhan and its iqama that prayer is returned with a
// zero adhan countdown. Once the whole day has passed, tomorrow's Fajr is
// synthesized at the same clock time with IsTomorrow set.
func (e *Engine) NextPrayer(schedule *model.PrayerSchedule, now time.Time) model.NextPrayerResult {
	for _, prayer := range schedule.DailyPrayers() {
		if prayer.Adhan.After(now) {
			return model.NextPrayerResult{
				Prayer:             *prayer,
				TimeUntilAdhanSecs: secondsUntil(now, prayer.Adhan),
				TimeUntilIqamaSecs: optSecondsUntil(now, prayer.Iqama),
			}
		}

		if prayer.Iqama != nil && now.After(prayer.Adhan) && now.Before(*prayer.Iqama) {
			return model.NextPrayerResult{
				Prayer:             *prayer,
				TimeUntilAdhanSecs: 0,
				TimeUntilIqamaSecs: optSecondsUntil(now, prayer.Iqama),
			}
		}
	}

	// Day exhausted: roll Fajr forward 24h, keeping the clock time.
	fajr := schedule.Fajr
	tomorrowAdhan := sameClockNextDay(now, fajr.Adhan)
	var tomorrowIqama *time.Time
	if fajr.Iqama != nil {
		iq := sameClockNextDay(now, *fajr.Iqama)
		tomorrowIqama = &iq
	}

	return model.NextPrayerResult{
		Prayer: model.Prayer{
			Name:             fajr.Name,
			Adhan:            tomorrowAdhan,
			Iqama:            tomorrowIqama,
			CustomRakahCount: fajr.CustomRakahCount,
		},
		TimeUntilAdhanSecs: secondsUntil(now, tomorrowAdhan),
		TimeUntilIqamaSecs: optSecondsUntil(now, tomorrowIqama),
		IsTomorrow:         true,
	}
}

// EstimateRakah places now inside one of five windows around the prayer:
// not started, in progress (including a short grace tail where the last
// rakah is pinned), recently finished (the wider post-display window, which
// wins the overlap with grace), or likely finished. Without an iqama no
// estimate is possible.
func (e *Engine) EstimateRakah(prayer *model.Prayer, now time.Time) model.RakahEstimate {
	totalRakah := prayer.RakahCount(e.cfg.DefaultRakahCounts)
	if !prayer.HasIqama() {
		return model.RakahEstimate{
			Status:     model.RakahNotAvailable,
			TotalRakah: totalRakah,
		}
	}

	prayerStart := prayer.Iqama.Add(time.Duration(e.cfg.StartLagSeconds) * time.Second)
	estimatedDuration := time.Duration(int64(totalRakah)*e.cfg.RakahDurationSeconds) * time.Second
	prayerEnd := prayerStart.Add(estimatedDuration)
	postWindowEnd := prayerEnd.Add(time.Duration(e.cfg.PostPrayerDisplayMins) * time.Minute)

	if now.Before(prayerStart) {
		remaining := secondsUntil(now, prayerStart)
		return model.RakahEstimate{
			Status:        model.RakahNotStarted,
			TotalRakah:    totalRakah,
			RemainingSecs: &remaining,
			IsEstimate:    true,
		}
	}

	if now.After(prayerEnd) && !now.After(postWindowEnd) {
		endedMinutesAgo := int64(math.Ceil(now.Sub(prayerEnd).Seconds() / 60.0))
		catchUpEnd := prayerEnd.Add(time.Duration(e.cfg.CatchUpMinutes) * time.Minute)
		elapsed := int64(now.Sub(prayerStart).Seconds())
		return model.RakahEstimate{
			Status:          model.RakahRecentlyFinished,
			CurrentRakah:    &totalRakah,
			TotalRakah:      totalRakah,
			ElapsedSecs:     &elapsed,
			Progress:        1.0,
			IsEstimate:      true,
			EndedMinutesAgo: &endedMinutesAgo,
			CanStillCatch:   !now.After(catchUpEnd),
		}
	}

	if now.After(postWindowEnd) {
		elapsed := int64(now.Sub(prayerStart).Seconds())
		return model.RakahEstimate{
			Status:       model.RakahLikelyFinished,
			CurrentRakah: &totalRakah,
			TotalRakah:   totalRakah,
			ElapsedSecs:  &elapsed,
			Progress:     1.0,
			IsEstimate:   true,
		}
	}

	elapsed := now.Sub(prayerStart)
	elapsedSecs := int64(elapsed.Seconds())

	rakah := elapsedSecs/e.cfg.RakahDurationSeconds + 1
	if rakah < 1 {
		rakah = 1
	}
	if rakah > int64(totalRakah) {
		rakah = int64(totalRakah)
	}
	currentRakah := int(rakah)

	progress := elapsed.Seconds() / estimatedDuration.Seconds()
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	var remaining *int64
	if prayerEnd.After(now) {
		r := secondsUntil(now, prayerEnd)
		remaining = &r
	} else {
		// Grace tail: congregation finishing up, pin to the last rakah.
		zero := int64(0)
		remaining = &zero
	}

	return model.RakahEstimate{
		Status:        model.RakahInProgress,
		CurrentRakah:  &currentRakah,
		TotalRakah:    totalRakah,
		ElapsedSecs:   &elapsedSecs,
		RemainingSecs: remaining,
		Progress:      progress,
		IsEstimate:    true,
	}
}

// TravelPrediction works out when to leave for a prayer given a travel time,
// and which rakah the traveler would walk in on.
func (e *Engine) TravelPrediction(prayer *model.Prayer, travelTimeSecs int64, now time.Time) model.TravelPrediction {
	travel := time.Duration(travelTimeSecs) * time.Second

	if !prayer.HasIqama() {
		return model.TravelPrediction{
			RecommendedLeaveTime: now,
			ArrivalTime:          now.Add(travel),
			ArrivalStatus:        model.ArrivalIqamaUnavailable,
		}
	}

	prayerStart := prayer.Iqama.Add(time.Duration(e.cfg.StartLagSeconds) * time.Second)
	desiredArrival := prayerStart.Add(-time.Duration(e.cfg.BufferBeforeStartSecs) * time.Second)
	recommendedLeave := desiredArrival.Add(-travel)
	arrival := now.Add(travel)

	totalRakah := prayer.RakahCount(e.cfg.DefaultRakahCounts)

	prediction := model.TravelPrediction{
		RecommendedLeaveTime: recommendedLeave,
		ArrivalTime:          arrival,
		ShouldLeaveNow:       !now.Before(recommendedLeave),
		IsLate:               now.After(prayerStart),
	}

	if arrival.Before(prayerStart) {
		zero := 0
		prediction.ArrivalRakah = &zero
		prediction.ArrivalStatus = model.ArrivalBeforeStart
	} else {
		arrivalElapsed := int64(arrival.Sub(prayerStart).Seconds())
		rawRakah := arrivalElapsed/e.cfg.RakahDurationSeconds + 1
		if rawRakah > int64(totalRakah) {
			prediction.ArrivalStatus = model.ArrivalAfterEstimatedEnd
		} else {
			arrivalRakah := int(rawRakah)
			if arrivalRakah < 1 {
				arrivalRakah = 1
			}
			prediction.ArrivalRakah = &arrivalRakah
			prediction.ArrivalStatus = model.ArrivalInProgress
		}
	}

	if now.Before(recommendedLeave) {
		untilLeave := secondsUntil(now, recommendedLeave)
		prediction.TimeUntilLeaveSecs = &untilLeave
	}

	return prediction
}

// Countdown returns seconds until the prayer's iqama, floored at zero, or
// nil when no iqama is recorded.
func (e *Engine) Countdown(prayer *model.Prayer, now time.Time) *int64 {
	if prayer.Iqama == nil {
		return nil
	}
	secs := secondsUntil(now, *prayer.Iqama)
	if now.After(*prayer.Iqama) {
		secs = 0
	}
	return &secs
}

// AllCountdowns returns a countdown row per daily prayer. A prayer is active
// exactly while its adhan has passed and its iqama has not.
func (e *Engine) AllCountdowns(schedule *model.PrayerSchedule, now time.Time) []model.PrayerCountdown {
	prayers := schedule.DailyPrayers()
	out := make([]model.PrayerCountdown, 0, len(prayers))

	for _, prayer := range prayers {
		untilAdhan := secondsUntil(now, prayer.Adhan)

		var untilIqama *int64
		if prayer.Iqama != nil {
			secs := secondsUntil(now, *prayer.Iqama)
			if now.After(*prayer.Iqama) {
				secs = 0
			}
			untilIqama = &secs
		}

		adhanPassed := untilAdhan <= 0
		if adhanPassed {
			untilAdhan = 0
		}

		out = append(out, model.PrayerCountdown{
			PrayerName:         prayer.Name,
			AdhanTime:          prayer.Adhan,
			IqamaTime:          prayer.Iqama,
			TimeUntilAdhanSecs: untilAdhan,
			TimeUntilIqamaSecs: untilIqama,
			IsActive:           adhanPassed && untilIqama != nil && *untilIqama > 0,
		})
	}

	return out
}

// FormatDuration renders seconds as "2h 5m", "5m 12s" or "42s".
func (e *Engine) FormatDuration(seconds int64) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// CurrentPrayer returns the daily prayer whose window now falls into, or nil
// before Fajr's adhan.
func (e *Engine) CurrentPrayer(schedule *model.PrayerSchedule, now time.Time) *model.Prayer {
	prayers := schedule.DailyPrayers()

	for i, prayer := range prayers {
		if !now.After(prayer.Adhan) {
			continue
		}
		if i+1 < len(prayers) {
			if now.Before(prayers[i+1].Adhan) {
				return prayer
			}
		} else {
			return prayer
		}
	}

	return nil
}

func secondsUntil(now, t time.Time) int64 {
	return int64(t.Sub(now).Seconds())
}

func optSecondsUntil(now time.Time, t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	secs := secondsUntil(now, *t)
	return &secs
}

// sameClockNextDay projects target's wall-clock time onto the day after now,
// truncated to the minute.
func sameClockNextDay(now, target time.Time) time.Time {
	tomorrow := now.Add(24 * time.Hour)
	return time.Date(
		tomorrow.Year(), tomorrow.Month(), tomorrow.Day(),
		target.Hour(), target.Minute(), 0, 0,
		target.Location(),
	)
}
