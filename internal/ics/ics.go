// Package ics renders calendar events as an iCalendar (RFC 5545) feed.
//
// Each event becomes an all-day VEVENT on its anchor date. Yearly and monthly
// events carry an RRULE. Calendar clients apply RFC 5545 rules, which skip a
// month that has no such day (a monthly event on the 31st does not appear in
// April); the API's own month view shows it on the 30th instead.
package ics

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/Tomlord1122/dashboard-backend/internal/domain"
)

const ProductID = "-//Tomlord1122//dashboard-backend//EN"

// RRule returns the RRULE value for r, or "" when the event does not repeat.
func RRule(r domain.Recurrence) string {
	var opt rrule.ROption
	switch r {
	case domain.RecurrenceYearly:
		opt.Freq = rrule.YEARLY
	case domain.RecurrenceMonthly:
		opt.Freq = rrule.MONTHLY
	default:
		return ""
	}
	return opt.RRuleString()
}

// UID is the stable identifier of an event in the feed.
func UID(ev domain.CalendarEvent) string {
	return fmt.Sprintf("event-%d@dashboard", ev.ID)
}

// Encode writes events to w as one VCALENDAR. stamp is used as DTSTAMP.
func Encode(w io.Writer, events []domain.CalendarEvent, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)

	for _, ev := range events {
		year, month, day := ev.Anchor()
		start := domain.AnchorDate(year, month, day)

		vevent := cal.AddEvent(UID(ev))
		vevent.SetDtStampTime(stamp.UTC())
		vevent.SetSummary(ev.Name)
		if ev.Description != "" {
			vevent.SetDescription(ev.Description)
		}
		vevent.SetAllDayStartAt(start)
		vevent.SetAllDayEndAt(start.AddDate(0, 0, 1))
		if rule := RRule(ev.Recurrence); rule != "" {
			vevent.AddRrule(rule)
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}
