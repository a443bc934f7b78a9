package recurrence

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/dashboard-backend/internal/domain"
)

func event(id uint, year int, month time.Month, day int, r domain.Recurrence) domain.CalendarEvent {
	return domain.CalendarEvent{
		ID:         id,
		Date:       domain.AnchorDate(year, month, day),
		Name:       "event",
		Recurrence: r,
	}
}

type attempt struct {
	month, year int
	want        bool
}

func TestMatchesScenarios(t *testing.T) {
	tests := []struct {
		name     string
		ev       domain.CalendarEvent
		attempts []attempt
	}{
		{
			name: "yearly from 2025-02-01",
			ev:   event(1, 2025, time.February, 1, domain.RecurrenceYearly),
			attempts: []attempt{
				{2, 2025, true},
				{2, 2026, true},
				{1, 2025, false},
				{3, 2025, false},
				{2, 2024, false},
				{3, 2026, false},
			},
		},
		{
			name: "monthly from 2025-02-01",
			ev:   event(2, 2025, time.February, 1, domain.RecurrenceMonthly),
			attempts: []attempt{
				{2, 2025, true},
				{3, 2025, true},
				{3, 2026, true},
				{1, 2025, false},
				{12, 2024, false},
			},
		},
		{
			name: "yearly leap day",
			ev:   event(3, 2024, time.February, 29, domain.RecurrenceYearly),
			attempts: []attempt{
				{2, 2024, true},
				{2, 2025, false},
				{2, 2028, true},
				{2, 2100, false},
				{2, 2400, true},
			},
		},
		{
			name: "monthly from 2024-01-29",
			ev:   event(4, 2024, time.January, 29, domain.RecurrenceMonthly),
			attempts: []attempt{
				{1, 2024, true},
				{2, 2024, true},
				{1, 2025, true},
				{2, 2025, false},
				{3, 2025, true},
				{2, 2028, true},
				{12, 2023, false},
			},
		},
		{
			name: "no recurrence",
			ev:   event(5, 2025, time.July, 1, domain.RecurrenceNone),
			attempts: []attempt{
				{7, 2025, true},
				{7, 2026, false},
				{8, 2025, false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, a := range tt.attempts {
				assert.Equalf(t, a.want, Matches(tt.ev, a.month, a.year), "month=%d year=%d", a.month, a.year)
			}
		})
	}
}

func TestExactMatchIgnoresGuard(t *testing.T) {
	// A monthly leap-day anchor is always visible in its own month.
	ev := event(1, 2024, time.February, 29, domain.RecurrenceMonthly)
	assert.True(t, MatchesExact(ev, 2, 2024))
	assert.True(t, MatchesMonthly(ev, 2, 2024))
	assert.False(t, MatchesMonthly(ev, 2, 2025))
	assert.True(t, MatchesMonthly(ev, 3, 2025))
}

func TestPredicatesAreIndependent(t *testing.T) {
	yearly := event(1, 2020, time.May, 10, domain.RecurrenceYearly)
	assert.False(t, MatchesMonthly(yearly, 5, 2021))
	assert.True(t, MatchesYearly(yearly, 5, 2021))
	assert.False(t, MatchesExact(yearly, 5, 2021))

	monthly := event(2, 2020, time.May, 10, domain.RecurrenceMonthly)
	assert.False(t, MatchesYearly(monthly, 5, 2021))
	assert.True(t, MatchesMonthly(monthly, 6, 2021))
}

func TestGuard(t *testing.T) {
	leapDay := domain.AnchorDate(2024, time.February, 29)
	day28 := domain.AnchorDate(2024, time.February, 28)
	jan29 := domain.AnchorDate(2024, time.January, 29)

	assert.True(t, Guard(2, 2024, leapDay))
	assert.False(t, Guard(2, 2023, leapDay))
	assert.True(t, Guard(3, 2023, leapDay))
	assert.True(t, Guard(2, 2023, day28))
	assert.False(t, Guard(2, 1900, jan29))
	assert.True(t, Guard(2, 2000, jan29))
}

func TestIsLeap(t *testing.T) {
	for year, want := range map[int]bool{0: true, 1900: false, 2000: true, 2023: false, 2024: true} {
		assert.Equalf(t, want, IsLeap(year), "year %d", year)
	}
}

func TestDisplayDate(t *testing.T) {
	tests := []struct {
		name   string
		anchor time.Time
		month  int
		year   int
		want   time.Time
	}{
		{"same day", domain.AnchorDate(2025, time.February, 1), 3, 2026, domain.AnchorDate(2026, time.March, 1)},
		{"leap day", domain.AnchorDate(2024, time.February, 29), 2, 2028, domain.AnchorDate(2028, time.February, 29)},
		{"clamps 31 into 30-day month", domain.AnchorDate(2025, time.January, 31), 4, 2025, domain.AnchorDate(2025, time.April, 30)},
		{"clamps 30 into short february", domain.AnchorDate(2025, time.January, 30), 2, 2025, domain.AnchorDate(2025, time.February, 28)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DisplayDate(tt.anchor, tt.month, tt.year)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestResolve(t *testing.T) {
	events := []domain.CalendarEvent{
		event(1, 2025, time.January, 31, domain.RecurrenceMonthly),
		event(2, 2025, time.April, 2, domain.RecurrenceNone),
		event(3, 2024, time.April, 15, domain.RecurrenceYearly),
		event(4, 2025, time.May, 1, domain.RecurrenceMonthly),
	}

	got := Resolve(events, 4, 2025)
	require.Len(t, got, 3)
	assert.Equal(t, uint(1), got[0].Event.ID)
	assert.Equal(t, domain.AnchorDate(2025, time.April, 30), got[0].DisplayDate)
	assert.Equal(t, uint(2), got[1].Event.ID)
	assert.Equal(t, uint(3), got[2].Event.ID)
	assert.Equal(t, domain.AnchorDate(2025, time.April, 15), got[2].DisplayDate)

	assert.Empty(t, Resolve(nil, 1, 2025))
}

func TestResolveConcurrent(t *testing.T) {
	events := []domain.CalendarEvent{
		event(1, 2024, time.February, 29, domain.RecurrenceYearly),
		event(2, 2024, time.January, 29, domain.RecurrenceMonthly),
	}

	var wg sync.WaitGroup
	for year := 2024; year < 2040; year++ {
		wg.Add(1)
		go func(year int) {
			defer wg.Done()
			want := 0
			if IsLeap(year) {
				want = 2
			}
			assert.Len(t, Resolve(events, 2, year), want)
		}(year)
	}
	wg.Wait()
}
