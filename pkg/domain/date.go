package domain

import "time"

// StartOfDay truncates t to midnight in t's own location. A facility's
// "today" is built with it.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AgeOn returns the number of whole years between birth and day.
func AgeOn(birth, day time.Time) int {
	if birth.IsZero() || day.Before(birth) {
		return 0
	}
	years := day.Year() - birth.Year()
	if day.Month() < birth.Month() || (day.Month() == birth.Month() && day.Day() < birth.Day()) {
		years--
	}
	return years
}

// CalendarDate maps t to midnight UTC of the calendar day t shows in its own
// location. Stored dates (restriction windows, scheduled visits) compare with
// a facility-local "today" through it without timezone drift.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
