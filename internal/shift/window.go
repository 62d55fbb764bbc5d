// Package shift maps calendar dates to the 17:00-03:00 trading window and back.
package shift

import (
	"fmt"
	"time"
)

const (
	DefaultTimezone = "Asia/Bangkok"
	DateLayout      = "2006-01-02"

	OpenHour  = 17
	CloseHour = 3
)

type Window struct {
	ShiftDate string    `json:"shift_date"`
	StartUTC  time.Time `json:"start_utc"`
	EndUTC    time.Time `json:"end_utc"`
}

func (w Window) Duration() time.Duration {
	return w.EndUTC.Sub(w.StartUTC)
}

// Contains reports whether t falls in [StartUTC, EndUTC).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.StartUTC) && t.Before(w.EndUTC)
}

// WindowForDate returns the shift opening at 17:00 local on date's calendar
// day in loc and closing at 03:00 local the next day. Boundaries are built
// from wall-clock values so zones with DST get the right instants.
func WindowForDate(date time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = fallbackLocation()
	}
	y, m, d := date.In(loc).Date()
	start := time.Date(y, m, d, OpenHour, 0, 0, 0, loc)
	end := time.Date(y, m, d+1, CloseHour, 0, 0, 0, loc)
	return Window{
		ShiftDate: start.Format(DateLayout),
		StartUTC:  start.UTC(),
		EndUTC:    end.UTC(),
	}
}

// WindowContaining returns the shift that is open at now, or the one that
// closed most recently when the restaurant is shut (03:00-17:00 local).
func WindowContaining(now time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = fallbackLocation()
	}
	local := now.In(loc)
	y, m, d := local.Date()
	day := time.Date(y, m, d, 12, 0, 0, 0, loc)
	if local.Hour() < OpenHour {
		day = time.Date(y, m, d-1, 12, 0, 0, 0, loc)
	}
	return WindowForDate(day, loc)
}

// ParseShiftDate parses a YYYY-MM-DD shift date in loc.
func ParseShiftDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = fallbackLocation()
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid shift date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// RecentDates lists the last n completed shift dates before now, newest
// first. It returns nil when n is not positive.
func RecentDates(now time.Time, loc *time.Location, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	if loc == nil {
		loc = fallbackLocation()
	}
	latest, _ := ParseShiftDate(WindowContaining(now, loc).ShiftDate, loc)
	// an open shift is not complete yet
	if WindowContaining(now, loc).Contains(now) {
		latest = latest.AddDate(0, 0, -1)
	}
	dates := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, latest.AddDate(0, 0, -i))
	}
	return dates
}

// LoadLocation resolves name, defaulting to Asia/Bangkok. Hosts without
// tzdata get a fixed UTC+7 zone for the default name.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		if name == DefaultTimezone {
			return fallbackLocation(), nil
		}
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}

func fallbackLocation() *time.Location {
	return time.FixedZone("ICT", 7*60*60)
}
