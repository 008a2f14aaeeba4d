package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"

	"github.com/iqamah-app/iqamah/internal/db"
	"github.com/iqamah-app/iqamah/internal/model"
)

// Marks before iqama, in minutes, at which a reminder fires.
var reminderMarks = []int64{15, 10, 5, 2, 1}

// Scheduler runs the reminder loop: once a minute it walks the favorited
// mosques' cached schedules for today and publishes a reminder when an
// iqama is exactly at one of the marks. Reminders only read the schedule
// cache; the loop never triggers provider fetches.
type Scheduler struct {
	scheduler *gocron.Scheduler
	store     db.Store
	publisher Publisher
	now       func() time.Time

	mu      sync.Mutex
	sent    map[string]struct{}
	sentDay string
}

func NewScheduler(store db.Store, publisher Publisher) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		store:     store,
		publisher: publisher,
		now:       time.Now,
		sent:      make(map[string]struct{}),
	}
}

// Start schedules the minute tick and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Minute().Do(s.tick); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) enabled() bool {
	value, err := s.store.GetSetting("notification_enabled")
	if err != nil {
		log.Warn().Err(err).Msg("failed to read notification setting")
		return false
	}
	return value == "true"
}

func (s *Scheduler) tick() {
	if !s.enabled() {
		return
	}

	favorites, err := s.store.ListFavoriteMosques()
	if err != nil {
		log.Warn().Err(err).Msg("reminder loop: failed to list favorites")
		return
	}

	now := s.now().UTC()
	local := s.now().In(time.Local)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)

	// Sent markers only matter within the day they were issued.
	day := today.Format("2006-01-02")
	s.mu.Lock()
	if s.sentDay != day {
		s.sent = make(map[string]struct{})
		s.sentDay = day
	}
	s.mu.Unlock()

	for _, mosque := range favorites {
		schedule, err := s.store.GetPrayerTimes(mosque.ID, today)
		if err != nil {
			log.Warn().Err(err).Str("mosque_id", mosque.ID).Msg("reminder loop: schedule lookup failed")
			continue
		}
		if schedule == nil {
			continue
		}
		s.remind(mosque.ID, schedule, now)
	}
}

// remind publishes at most one reminder per (mosque, prayer, mark, day).
func (s *Scheduler) remind(mosqueID string, schedule *model.PrayerSchedule, now time.Time) {
	prayers := schedule.DailyPrayers()
	if schedule.Jumuah != nil {
		prayers = append(prayers, schedule.Jumuah)
	}

	for _, prayer := range prayers {
		if prayer.Iqama == nil || !prayer.Iqama.After(now) {
			continue
		}

		minutesLeft := int64(prayer.Iqama.Sub(now).Minutes())
		for _, mark := range reminderMarks {
			if minutesLeft != mark {
				continue
			}

			key := fmt.Sprintf("%s|%s|%d|%s", mosqueID, prayer.Name, mark, schedule.Date.Format("2006-01-02"))
			s.mu.Lock()
			_, already := s.sent[key]
			if !already {
				s.sent[key] = struct{}{}
			}
			s.mu.Unlock()
			if already {
				continue
			}

			err := s.publisher.PublishReminder(Reminder{
				MosqueID:    mosqueID,
				Prayer:      prayer.Name,
				Iqama:       *prayer.Iqama,
				MinutesLeft: mark,
			})
			if err != nil {
				log.Warn().Err(err).
					Str("mosque_id", mosqueID).
					Str("prayer", prayer.Name).
					Msg("failed to publish reminder")
			}
		}
	}
}
