package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iqamah-app/iqamah/internal/engine"
	"github.com/iqamah-app/iqamah/internal/model"
)

// PrayerService answers the prayer-state queries: it selects today's
// schedule by the caller's local calendar date and hands UTC instants to
// the engine.
type PrayerService struct {
	schedules *ScheduleService
	engine    *engine.Engine
}

func NewPrayerService(schedules *ScheduleService, eng *engine.Engine) *PrayerService {
	return &PrayerService{schedules: schedules, engine: eng}
}

func (p *PrayerService) prayer(ctx context.Context, mosqueID, prayerName string) (*model.Prayer, error) {
	schedule, err := p.schedules.TodaySchedule(ctx, mosqueID)
	if err != nil {
		return nil, err
	}
	prayer := schedule.PrayerByName(prayerName)
	if prayer == nil {
		return nil, fmt.Errorf("prayer %s not found", prayerName)
	}
	return prayer, nil
}

func (p *PrayerService) NextPrayer(ctx context.Context, mosqueID string) (model.NextPrayerResult, error) {
	schedule, err := p.schedules.TodaySchedule(ctx, mosqueID)
	if err != nil {
		return model.NextPrayerResult{}, err
	}
	return p.engine.NextPrayer(schedule, time.Now().UTC()), nil
}

// CurrentPrayer reports the prayer whose window "now" falls into, nil
// before Fajr.
func (p *PrayerService) CurrentPrayer(ctx context.Context, mosqueID string) (*model.Prayer, error) {
	schedule, err := p.schedules.TodaySchedule(ctx, mosqueID)
	if err != nil {
		return nil, err
	}
	return p.engine.CurrentPrayer(schedule, time.Now().UTC()), nil
}

func (p *PrayerService) AllCountdowns(ctx context.Context, mosqueID string) ([]model.PrayerCountdown, error) {
	schedule, err := p.schedules.TodaySchedule(ctx, mosqueID)
	if err != nil {
		return nil, err
	}
	return p.engine.AllCountdowns(schedule, time.Now().UTC()), nil
}

func (p *PrayerService) Countdown(ctx context.Context, mosqueID, prayerName string) (*int64, error) {
	prayer, err := p.prayer(ctx, mosqueID, prayerName)
	if err != nil {
		return nil, err
	}
	return p.engine.Countdown(prayer, time.Now().UTC()), nil
}

func (p *PrayerService) EstimateRakah(ctx context.Context, mosqueID, prayerName string) (model.RakahEstimate, error) {
	prayer, err := p.prayer(ctx, mosqueID, prayerName)
	if err != nil {
		return model.RakahEstimate{}, err
	}
	return p.engine.EstimateRakah(prayer, time.Now().UTC()), nil
}

func (p *PrayerService) TravelPrediction(ctx context.Context, mosqueID, prayerName string, travelTimeSecs int64) (model.TravelPrediction, error) {
	prayer, err := p.prayer(ctx, mosqueID, prayerName)
	if err != nil {
		return model.TravelPrediction{}, err
	}
	return p.engine.TravelPrediction(prayer, travelTimeSecs, time.Now().UTC()), nil
}

func (p *PrayerService) FormatDuration(seconds int64) string {
	return p.engine.FormatDuration(seconds)
}
