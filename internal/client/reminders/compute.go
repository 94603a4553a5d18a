package reminders

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
)

// Default reminder time, local.
const (
	DefaultHour   = 19
	DefaultMinute = 0
)

// Weekly is a repeating trigger: every Weekday at Hour:Minute local time.
type Weekly struct {
	Weekday time.Weekday
	Hour    int
	Minute  int
}

// Cron returns the trigger as a five-field cron spec.
func (w Weekly) Cron() string {
	return fmt.Sprintf("%d %d * * %d", w.Minute, w.Hour, int(w.Weekday))
}

// ComputeWeekly returns the trigger for a collection on dayOfWeek
// (0 = Sunday): the evening before, at hour:minute.
func ComputeWeekly(dayOfWeek, hour, minute int) Weekly {
	return Weekly{
		Weekday: time.Weekday(((dayOfWeek%7)+6) % 7),
		Hour:    hour,
		Minute:  minute,
	}
}

// ComputeOnce returns the instant one day before dateISO at hour:minute in
// now's location, or nil when that instant is not strictly after now.
// dateISO is YYYY-MM-DD or an RFC 3339 timestamp; a timestamp contributes
// the calendar date written in its own offset.
func ComputeOnce(dateISO string, hour, minute int, now time.Time) (*time.Time, error) {
	d, err := parseDate(dateISO, now.Location())
	if err != nil {
		return nil, err
	}
	at := time.Date(d.Year(), d.Month(), d.Day()-1, hour, minute, 0, 0, now.Location())
	if !at.After(now) {
		return nil, nil
	}
	return &at, nil
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err == nil {
		return d, nil
	}
	if ts, tsErr := time.Parse(time.RFC3339, s); tsErr == nil {
		return ts, nil
	}
	return time.Time{}, eris.Wrapf(err, "reminders: parse date %q", s)
}
