// Package calendar builds business-day grids from exchange calendars.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// Weekdays is the pseudo MIC for a plain Monday to Friday grid.
const Weekdays = "weekdays"

// maxDays bounds a single grid request.
const maxDays = 366 * 200

type Calendars struct{}

func New() *Calendars { return &Calendars{} }

// BusinessDays returns every business day of mic between from and to
// inclusive, as midnight UTC dates. Unknown MICs are an error.
func (Calendars) BusinessDays(mic string, from, to time.Time) ([]time.Time, error) {
	from, to = dateOf(from), dateOf(to)
	if to.Before(from) {
		return nil, nil
	}
	if to.Sub(from) > maxDays*24*time.Hour {
		return nil, fmt.Errorf("calendar range %s..%s too large", from.Format(time.DateOnly), to.Format(time.DateOnly))
	}

	isOpen, err := resolve(mic)
	if err != nil {
		return nil, err
	}
	var out []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if isOpen(d) {
			out = append(out, d)
		}
	}
	return out, nil
}

func resolve(mic string) (func(time.Time) bool, error) {
	mic = strings.ToLower(strings.TrimSpace(mic))
	if mic == "" || mic == Weekdays {
		return isWeekday, nil
	}
	cal := calendar.GetCalendar(mic)
	if cal == nil {
		return nil, fmt.Errorf("unknown exchange calendar %q", mic)
	}
	return func(d time.Time) bool {
		// noon local keeps the calendar day stable across offsets
		local := time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, cal.Loc)
		return cal.IsBusinessDay(local)
	}, nil
}

func isWeekday(d time.Time) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
