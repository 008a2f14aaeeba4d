package provider

import (
	"strconv"
	"strings"
	"time"
)

// parseClock places an "HH:MM" wall-clock string on the given calendar day
// in loc. Malformed components fall back to zero, matching the lenient
// handling of upstream payloads elsewhere in this package.
func parseClock(day time.Time, clock string, loc *time.Location) time.Time {
	parts := strings.Split(strings.TrimSpace(clock), ":")

	hour := 0
	minute := 0
	if len(parts) > 0 {
		if h, err := strconv.Atoi(parts[0]); err == nil {
			hour = h
		}
	}
	if len(parts) > 1 {
		if m, err := strconv.Atoi(parts[1]); err == nil {
			minute = m
		}
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
}

// addClockMinutes shifts an "HH:MM" string by a "+NN" offset, wrapping at
// midnight, and returns the result as "HH:MM".
func addClockMinutes(clock, offset string) (string, bool) {
	mins, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(offset), "+"))
	if err != nil {
		return "", false
	}

	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) < 2 {
		return "", false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", false
	}

	total := hour*60 + minute + mins
	total %= 24 * 60
	if total < 0 {
		total += 24 * 60
	}

	return padClock(total/60, total%60), true
}

func padClock(hour, minute int) string {
	h := strconv.Itoa(hour)
	if hour < 10 {
		h = "0" + h
	}
	m := strconv.Itoa(minute)
	if minute < 10 {
		m = "0" + m
	}
	return h + ":" + m
}

// isFriday reports whether the day carries a Jumuah slot.
func isFriday(day time.Time) bool {
	return day.Weekday() == time.Friday
}
