package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"

	"github.com/iqamah-app/iqamah/internal/model"
)

// scheduleRow flattens one day's schedule into the prayer_times table shape.
type scheduleRow struct {
	MosqueID     string     `db:"mosque_id"`
	Date         time.Time  `db:"date"`
	FajrAdhan    time.Time  `db:"fajr_adhan"`
	FajrIqama    *time.Time `db:"fajr_iqama"`
	FajrRakah    *int       `db:"fajr_rakah"`
	DhuhrAdhan   time.Time  `db:"dhuhr_adhan"`
	DhuhrIqama   *time.Time `db:"dhuhr_iqama"`
	DhuhrRakah   *int       `db:"dhuhr_rakah"`
	AsrAdhan     time.Time  `db:"asr_adhan"`
	AsrIqama     *time.Time `db:"asr_iqama"`
	AsrRakah     *int       `db:"asr_rakah"`
	MaghribAdhan time.Time  `db:"maghrib_adhan"`
	MaghribIqama *time.Time `db:"maghrib_iqama"`
	MaghribRakah *int       `db:"maghrib_rakah"`
	IshaAdhan    time.Time  `db:"isha_adhan"`
	IshaIqama    *time.Time `db:"isha_iqama"`
	IshaRakah    *int       `db:"isha_rakah"`
	JumuahAdhan  *time.Time `db:"jumuah_adhan"`
	JumuahIqama  *time.Time `db:"jumuah_iqama"`
	JumuahRakah  *int       `db:"jumuah_rakah"`
	MosqueName   *string    `db:"mosque_name"`
	CachedAt     time.Time  `db:"cached_at"`
}

func rowFromSchedule(s *model.PrayerSchedule) scheduleRow {
	row := scheduleRow{
		MosqueID:     s.MosqueID,
		Date:         s.Date,
		FajrAdhan:    s.Fajr.Adhan,
		FajrIqama:    s.Fajr.Iqama,
		FajrRakah:    s.Fajr.CustomRakahCount,
		DhuhrAdhan:   s.Dhuhr.Adhan,
		DhuhrIqama:   s.Dhuhr.Iqama,
		DhuhrRakah:   s.Dhuhr.CustomRakahCount,
		AsrAdhan:     s.Asr.Adhan,
		AsrIqama:     s.Asr.Iqama,
		AsrRakah:     s.Asr.CustomRakahCount,
		MaghribAdhan: s.Maghrib.Adhan,
		MaghribIqama: s.Maghrib.Iqama,
		MaghribRakah: s.Maghrib.CustomRakahCount,
		IshaAdhan:    s.Isha.Adhan,
		IshaIqama:    s.Isha.Iqama,
		IshaRakah:    s.Isha.CustomRakahCount,
		CachedAt:     time.Now().UTC(),
	}
	if s.MosqueName != "" {
		name := s.MosqueName
		row.MosqueName = &name
	}
	if s.CachedAt != nil {
		row.CachedAt = *s.CachedAt
	}
	if s.Jumuah != nil {
		adhan := s.Jumuah.Adhan
		row.JumuahAdhan = &adhan
		row.JumuahIqama = s.Jumuah.Iqama
		row.JumuahRakah = s.Jumuah.CustomRakahCount
	}
	return row
}

func (r scheduleRow) toSchedule() *model.PrayerSchedule {
	prayer := func(name string, adhan time.Time, iqama *time.Time, rakah *int) model.Prayer {
		return model.Prayer{Name: name, Adhan: adhan, Iqama: iqama, CustomRakahCount: rakah}
	}

	cachedAt := r.CachedAt
	s := &model.PrayerSchedule{
		Date:     r.Date,
		Fajr:     prayer(model.PrayerFajr, r.FajrAdhan, r.FajrIqama, r.FajrRakah),
		Dhuhr:    prayer(model.PrayerDhuhr, r.DhuhrAdhan, r.DhuhrIqama, r.DhuhrRakah),
		Asr:      prayer(model.PrayerAsr, r.AsrAdhan, r.AsrIqama, r.AsrRakah),
		Maghrib:  prayer(model.PrayerMaghrib, r.MaghribAdhan, r.MaghribIqama, r.MaghribRakah),
		Isha:     prayer(model.PrayerIsha, r.IshaAdhan, r.IshaIqama, r.IshaRakah),
		MosqueID: r.MosqueID,
		CachedAt: &cachedAt,
	}
	if r.MosqueName != nil {
		s.MosqueName = *r.MosqueName
	}
	if r.JumuahAdhan != nil {
		j := prayer(model.PrayerJumuah, *r.JumuahAdhan, r.JumuahIqama, r.JumuahRakah)
		s.Jumuah = &j
	}
	return s
}

// SavePrayerTimes upserts one day's schedule. One row per (mosque_id, date);
// a refetch for the same day replaces the previous row.
func (s *pgStore) SavePrayerTimes(schedule *model.PrayerSchedule) error {
	row := rowFromSchedule(schedule)
	_, err := s.db.NamedExec(`
		INSERT INTO prayer_times (
			mosque_id, date,
			fajr_adhan, fajr_iqama, fajr_rakah,
			dhuhr_adhan, dhuhr_iqama, dhuhr_rakah,
			asr_adhan, asr_iqama, asr_rakah,
			maghrib_adhan, maghrib_iqama, maghrib_rakah,
			isha_adhan, isha_iqama, isha_rakah,
			jumuah_adhan, jumuah_iqama, jumuah_rakah,
			mosque_name, cached_at
		) VALUES (
			:mosque_id, :date,
			:fajr_adhan, :fajr_iqama, :fajr_rakah,
			:dhuhr_adhan, :dhuhr_iqama, :dhuhr_rakah,
			:asr_adhan, :asr_iqama, :asr_rakah,
			:maghrib_adhan, :maghrib_iqama, :maghrib_rakah,
			:isha_adhan, :isha_iqama, :isha_rakah,
			:jumuah_adhan, :jumuah_iqama, :jumuah_rakah,
			:mosque_name, :cached_at
		)
		ON CONFLICT (mosque_id, date) DO UPDATE SET
			fajr_adhan = EXCLUDED.fajr_adhan,
			fajr_iqama = EXCLUDED.fajr_iqama,
			fajr_rakah = EXCLUDED.fajr_rakah,
			dhuhr_adhan = EXCLUDED.dhuhr_adhan,
			dhuhr_iqama = EXCLUDED.dhuhr_iqama,
			dhuhr_rakah = EXCLUDED.dhuhr_rakah,
			asr_adhan = EXCLUDED.asr_adhan,
			asr_iqama = EXCLUDED.asr_iqama,
			asr_rakah = EXCLUDED.asr_rakah,
			maghrib_adhan = EXCLUDED.maghrib_adhan,
			maghrib_iqama = EXCLUDED.maghrib_iqama,
			maghrib_rakah = EXCLUDED.maghrib_rakah,
			isha_adhan = EXCLUDED.isha_adhan,
			isha_iqama = EXCLUDED.isha_iqama,
			isha_rakah = EXCLUDED.isha_rakah,
			jumuah_adhan = EXCLUDED.jumuah_adhan,
			jumuah_iqama = EXCLUDED.jumuah_iqama,
			jumuah_rakah = EXCLUDED.jumuah_rakah,
			mosque_name = EXCLUDED.mosque_name,
			cached_at = EXCLUDED.cached_at
		`, row)
	return err
}

// GetPrayerTimes returns the cached schedule for a mosque day, or nil when
// none is stored. Cached rows never expire; only a force refresh replaces
// them.
func (s *pgStore) GetPrayerTimes(mosqueID string, date time.Time) (*model.PrayerSchedule, error) {
	var row scheduleRow
	err := s.db.Get(&row, `
		SELECT mosque_id, date,
			fajr_adhan, fajr_iqama, fajr_rakah,
			dhuhr_adhan, dhuhr_iqama, dhuhr_rakah,
			asr_adhan, asr_iqama, asr_rakah,
			maghrib_adhan, maghrib_iqama, maghrib_rakah,
			isha_adhan, isha_iqama, isha_rakah,
			jumuah_adhan, jumuah_iqama, jumuah_rakah,
			mosque_name, cached_at
		FROM prayer_times
		WHERE mosque_id = $1 AND date = $2
		`, mosqueID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toSchedule(), nil
}
