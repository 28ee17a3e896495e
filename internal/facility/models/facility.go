package models

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // facility timezones must resolve on hosts without zoneinfo

	id "visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

// Window is a daily visiting window. Empty Days means every day. From and To
// are "HH:MM" in the facility's timezone and both ends are inclusive.
type Window struct {
	Days []time.Weekday `json:"days,omitempty"`
	From string         `json:"from"`
	To   string         `json:"to"`
}

// Facility carries the admission configuration of one penitentiary unit.
type Facility struct {
	ID              id.FacilityID `json:"id"`
	Name            string        `json:"name"`
	MaxCapacity     int           `json:"max_capacity"`
	Timezone        string        `json:"timezone"`
	VisitingWindows []Window      `json:"visiting_windows"`
}

func (f *Facility) Validate() error {
	if f.ID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "facility id is required")
	}
	if strings.TrimSpace(f.Name) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "facility name is required")
	}
	if f.MaxCapacity <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "max capacity must be positive")
	}
	if _, err := time.LoadLocation(f.Timezone); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "unknown timezone "+f.Timezone)
	}
	for _, w := range f.VisitingWindows {
		if err := w.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Location returns the facility timezone, falling back to UTC.
func (f *Facility) Location() *time.Location {
	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Today is midnight of now's calendar day in the facility timezone.
func (f *Facility) Today(now time.Time) time.Time {
	return id.StartOfDay(now.In(f.Location()))
}

// WithinVisitingHours reports whether now falls inside any visiting window.
// A facility without windows never admits visits.
func (f *Facility) WithinVisitingHours(now time.Time) bool {
	local := now.In(f.Location())
	for _, w := range f.VisitingWindows {
		if w.contains(local) {
			return true
		}
	}
	return false
}

func (w Window) contains(t time.Time) bool {
	if len(w.Days) > 0 && !containsDay(w.Days, t.Weekday()) {
		return false
	}
	openHour, openMin, err := parseClock(w.From)
	if err != nil {
		return false
	}
	closeHour, closeMin, err := parseClock(w.To)
	if err != nil {
		return false
	}
	openTime := time.Date(t.Year(), t.Month(), t.Day(), openHour, openMin, 0, 0, t.Location())
	closeTime := time.Date(t.Year(), t.Month(), t.Day(), closeHour, closeMin, 0, 0, t.Location())
	return !t.Before(openTime) && !t.After(closeTime)
}

func (w Window) validate() error {
	fh, fm, err := parseClock(w.From)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid window start")
	}
	th, tm, err := parseClock(w.To)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid window end")
	}
	if th*60+tm < fh*60+fm {
		return dErrors.New(dErrors.CodeInvalidInput, "window ends before it starts")
	}
	return nil
}

func containsDay(days []time.Weekday, d time.Weekday) bool {
	for _, day := range days {
		if day == d {
			return true
		}
	}
	return false
}

func parseClock(s string) (hour, minute int, err error) {
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("clock %q out of range", s)
	}
	return hour, minute, nil
}
