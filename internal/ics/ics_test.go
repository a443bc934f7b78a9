package ics

import (
	"bytes"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"

	"github.com/Tomlord1122/dashboard-backend/internal/domain"
	"github.com/Tomlord1122/dashboard-backend/internal/recurrence"
)

func TestRRule(t *testing.T) {
	assert.Equal(t, "FREQ=YEARLY", RRule(domain.RecurrenceYearly))
	assert.Equal(t, "FREQ=MONTHLY", RRule(domain.RecurrenceMonthly))
	assert.Empty(t, RRule(domain.RecurrenceNone))
}

func TestEncode(t *testing.T) {
	events := []domain.CalendarEvent{
		{ID: 1, Name: "Leap birthday", Date: domain.AnchorDate(2020, time.February, 29), Recurrence: domain.RecurrenceYearly},
		{ID: 2, Name: "Rent", Description: "transfer", Date: domain.AnchorDate(2023, time.January, 31), Recurrence: domain.RecurrenceMonthly},
		{ID: 3, Name: "Dentist", Date: domain.AnchorDate(2024, time.May, 2)},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, events, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)))

	cal, err := ical.ParseCalendar(&buf)
	require.NoError(t, err)
	vevents := cal.Events()
	require.Len(t, vevents, 3)

	prop := func(ev *ical.VEvent, p ical.ComponentProperty) string {
		if got := ev.GetProperty(p); got != nil {
			return got.Value
		}
		return ""
	}

	assert.Equal(t, "event-1@dashboard", prop(vevents[0], ical.ComponentPropertyUniqueId))
	assert.Equal(t, "Leap birthday", prop(vevents[0], ical.ComponentPropertySummary))
	assert.Equal(t, "20200229", prop(vevents[0], ical.ComponentPropertyDtStart))
	assert.Equal(t, "20200301", prop(vevents[0], ical.ComponentPropertyDtEnd))
	assert.Equal(t, "FREQ=YEARLY", prop(vevents[0], ical.ComponentPropertyRrule))

	assert.Equal(t, "transfer", prop(vevents[1], ical.ComponentPropertyDescription))
	assert.Equal(t, "FREQ=MONTHLY", prop(vevents[1], ical.ComponentPropertyRrule))

	assert.Empty(t, prop(vevents[2], ical.ComponentPropertyRrule))
	assert.Empty(t, prop(vevents[2], ical.ComponentPropertyDescription))
}

// Yearly leap-day events appear in exactly the same Februaries whether
// expanded by an RFC 5545 engine or by the month view.
func TestYearlyLeapDayAgreesWithRecurrenceRules(t *testing.T) {
	ev := domain.CalendarEvent{ID: 1, Date: domain.AnchorDate(2000, time.February, 29), Recurrence: domain.RecurrenceYearly}

	rule, err := rrule.StrToRRule(RRule(ev.Recurrence))
	require.NoError(t, err)
	rule.DTStart(ev.Date)

	occurrences := rule.Between(
		domain.AnchorDate(2000, time.January, 1),
		domain.AnchorDate(2101, time.January, 1),
		true,
	)
	expanded := make(map[int]bool, len(occurrences))
	for _, occ := range occurrences {
		expanded[occ.Year()] = true
	}

	for year := 2000; year <= 2100; year++ {
		matched := len(recurrence.Resolve([]domain.CalendarEvent{ev}, 2, year)) == 1
		assert.Equal(t, expanded[year], matched, "year %d", year)
	}
	assert.False(t, expanded[2100])
}

// Monthly events on the 31st diverge: the month view clamps, RFC 5545 skips.
func TestMonthlyShortMonthDivergence(t *testing.T) {
	ev := domain.CalendarEvent{ID: 1, Date: domain.AnchorDate(2023, time.January, 31), Recurrence: domain.RecurrenceMonthly}

	rule, err := rrule.StrToRRule(RRule(ev.Recurrence))
	require.NoError(t, err)
	rule.DTStart(ev.Date)

	april := rule.Between(domain.AnchorDate(2023, time.April, 1), domain.AnchorDate(2023, time.May, 1), true)
	assert.Empty(t, april)

	occ := recurrence.Resolve([]domain.CalendarEvent{ev}, 4, 2023)
	require.Len(t, occ, 1)
	assert.Equal(t, 30, occ[0].DisplayDate.Day())
}
