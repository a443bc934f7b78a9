package domain

import "time"

// CalendarEvent is a standalone calendar entry. Date is the anchor date:
// only its year, month and day carry meaning and it is kept at UTC midnight.
type CalendarEvent struct {
	ID          uint       `gorm:"primaryKey"`
	Date        time.Time  `gorm:"type:date;not null;index"`
	Name        string     `gorm:"not null"`
	Description string     `gorm:"not null"`
	Recurrence  Recurrence `gorm:"column:reoccur_interval_type"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Anchor returns the anchor date's calendar components.
func (e CalendarEvent) Anchor() (year int, month time.Month, day int) {
	return e.Date.Date()
}

// AnchorDate builds the UTC-midnight anchor used to store an event.
func AnchorDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
