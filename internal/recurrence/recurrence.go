// Package recurrence decides which calendar events are visible in a given
// month of a given year, and on which day they are displayed.
//
// An event is visible in (month, year) when any of three rules holds:
//
//   - exact: the anchor falls in that month and year, whatever the recurrence;
//   - yearly: the event repeats yearly, the anchor month matches and the anchor
//     year is not after the target year;
//   - monthly: the event repeats monthly and the anchor is not after the
//     target month.
//
// The repeating rules are subject to Guard: a Feb 29 anchor only lands in a
// February that has 29 days.
package recurrence

import (
	"time"

	"github.com/Tomlord1122/dashboard-backend/internal/domain"
)

// Occurrence is an event as it appears in a queried month.
type Occurrence struct {
	Event       domain.CalendarEvent
	DisplayDate time.Time
}

func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysIn returns the number of days in month of year.
func DaysIn(month, year int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Guard reports whether an anchor day can recur into (month, year). Only a
// day-29 anchor queried against February is restricted, to leap years.
func Guard(month, year int, anchor time.Time) bool {
	if month == 2 && anchor.Day() == 29 {
		return IsLeap(year)
	}
	return true
}

func MatchesExact(ev domain.CalendarEvent, month, year int) bool {
	y, m, _ := ev.Anchor()
	return int(m) == month && y == year
}

func MatchesYearly(ev domain.CalendarEvent, month, year int) bool {
	if ev.Recurrence != domain.RecurrenceYearly {
		return false
	}
	y, m, _ := ev.Anchor()
	return int(m) == month && y <= year && Guard(month, year, ev.Date)
}

func MatchesMonthly(ev domain.CalendarEvent, month, year int) bool {
	if ev.Recurrence != domain.RecurrenceMonthly || !Guard(month, year, ev.Date) {
		return false
	}
	y, m, _ := ev.Anchor()
	return (y == year && int(m) <= month) || y < year
}

// Matches reports whether ev is visible in (month, year).
func Matches(ev domain.CalendarEvent, month, year int) bool {
	return MatchesExact(ev, month, year) ||
		MatchesYearly(ev, month, year) ||
		MatchesMonthly(ev, month, year)
}

// DisplayDate moves anchor into (month, year), keeping the day. A day past
// the end of the target month is clamped to its last day rather than rolling
// into the following month, so Jan 31 shows as Apr 30 in April.
func DisplayDate(anchor time.Time, month, year int) time.Time {
	day := min(anchor.Day(), DaysIn(month, year))
	return domain.AnchorDate(year, time.Month(month), day)
}

// Resolve returns the events visible in (month, year) in input order.
// month and year must already be validated by the caller.
func Resolve(events []domain.CalendarEvent, month, year int) []Occurrence {
	out := make([]Occurrence, 0)
	for _, ev := range events {
		if !Matches(ev, month, year) {
			continue
		}
		out = append(out, Occurrence{
			Event:       ev,
			DisplayDate: DisplayDate(ev.Date, month, year),
		})
	}
	return out
}
