package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/Tomlord1122/dashboard-backend/internal/domain"
	"github.com/Tomlord1122/dashboard-backend/internal/ics"
	"github.com/Tomlord1122/dashboard-backend/internal/recurrence"
	"github.com/Tomlord1122/dashboard-backend/internal/repository"
)

const (
	msgEventNotFound = "No event exists by that id"

	maxYear = 9999
	// maxEpochMillis is 9999-12-31T23:59:59.999Z.
	maxEpochMillis = 253402300799999
	// maxOffsetMinutes bounds real-world UTC offsets (UTC+14 / UTC-14).
	maxOffsetMinutes = 14 * 60
)

// EventRequest carries a client-local timestamp. Time is epoch milliseconds
// and UTCOffset is in minutes with the sign of JavaScript's
// Date.getTimezoneOffset (positive west of UTC).
type EventRequest struct {
	Time         int64             `json:"time"`
	UTCOffset    int               `json:"utcOffset"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	IntervalType domain.Recurrence `json:"intervalType"`
}

type EventResponse struct {
	ID           uint              `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	IntervalType domain.Recurrence `json:"intervalType"`
	Date         string            `json:"date"`
}

type CalendarResponse struct {
	Events []EventResponse `json:"events"`
}

// CalendarService stores calendar events and expands them into month views.
type CalendarService interface {
	// Resolve returns every event that shows in the given month, dated on the
	// day it is displayed that month.
	Resolve(ctx context.Context, month, year int) (*CalendarResponse, error)
	CreateEvent(ctx context.Context, req EventRequest) (*EventResponse, error)
	GetEvent(ctx context.Context, id uint) (*EventResponse, error)
	UpdateEvent(ctx context.Context, id uint, req EventRequest) (*EventResponse, error)
	DeleteEvent(ctx context.Context, id uint) error
	// ExportICS writes all events as an iCalendar feed.
	ExportICS(ctx context.Context, w io.Writer) error
}

type calendarService struct {
	repo   repository.EventRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewCalendarService(repo repository.EventRepository, logger *slog.Logger) CalendarService {
	return &calendarService{
		repo:   repo,
		logger: logger.With("component", "calendar"),
		now:    time.Now,
	}
}

func (s *calendarService) Resolve(ctx context.Context, month, year int) (*CalendarResponse, error) {
	if month < 1 || month > 12 {
		return nil, validationError("month must be between 1 and 12")
	}
	if year < 0 || year > maxYear {
		return nil, validationError(fmt.Sprintf("year must be between 0 and %d", maxYear))
	}

	// Nothing anchored after the requested month can show in it.
	var (
		events []domain.CalendarEvent
		err    error
	)
	// Postgres dates start at year 1, so year 0 bounds fall back to a full scan.
	next := domain.AnchorDate(year, time.Month(month), 1).AddDate(0, 1, 0)
	if next.Year() < 1 || next.Year() > maxYear {
		events, err = s.repo.GetAll(ctx)
	} else {
		events, err = s.repo.FindAnchoredBefore(ctx, next)
	}
	if err != nil {
		return nil, s.internal("load events", err)
	}

	occurrences := recurrence.Resolve(events, month, year)
	slices.SortStableFunc(occurrences, func(a, b recurrence.Occurrence) int {
		if c := a.DisplayDate.Compare(b.DisplayDate); c != 0 {
			return c
		}
		return int(a.Event.ID) - int(b.Event.ID)
	})

	resp := &CalendarResponse{Events: make([]EventResponse, 0, len(occurrences))}
	for _, occ := range occurrences {
		resp.Events = append(resp.Events, toEventResponse(occ.Event, occ.DisplayDate))
	}
	return resp, nil
}

func (s *calendarService) CreateEvent(ctx context.Context, req EventRequest) (*EventResponse, error) {
	event, err := eventFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, s.internal("create event", err)
	}
	s.logger.Debug("event created", "event_id", event.ID, "date", event.Date.Format(time.DateOnly))
	resp := toEventResponse(*event, event.Date)
	return &resp, nil
}

func (s *calendarService) GetEvent(ctx context.Context, id uint) (*EventResponse, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.eventErr("get event", err)
	}
	resp := toEventResponse(*event, event.Date)
	return &resp, nil
}

func (s *calendarService) UpdateEvent(ctx context.Context, id uint, req EventRequest) (*EventResponse, error) {
	event, err := eventFromRequest(req)
	if err != nil {
		return nil, err
	}
	event.ID = id
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, s.eventErr("update event", err)
	}
	resp := toEventResponse(*event, event.Date)
	return &resp, nil
}

func (s *calendarService) DeleteEvent(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.eventErr("delete event", err)
	}
	return nil
}

func (s *calendarService) ExportICS(ctx context.Context, w io.Writer) error {
	events, err := s.repo.GetAll(ctx)
	if err != nil {
		return s.internal("load events", err)
	}
	return ics.Encode(w, events, s.now())
}

// AnchorFromClientTime converts a client timestamp and its UTC offset into
// the calendar date the client saw.
func AnchorFromClientTime(epochMillis int64, utcOffset int) (time.Time, error) {
	if epochMillis < 0 || epochMillis > maxEpochMillis {
		return time.Time{}, validationError("time is out of range")
	}
	if utcOffset < -maxOffsetMinutes || utcOffset > maxOffsetMinutes {
		return time.Time{}, validationError("utcOffset is out of range")
	}

	local := time.UnixMilli(epochMillis).UTC().Add(-time.Duration(utcOffset) * time.Minute)
	year, month, day := local.Date()
	if year < 0 || year > maxYear {
		return time.Time{}, validationError("date is out of range")
	}
	return domain.AnchorDate(year, month, day), nil
}

func eventFromRequest(req EventRequest) (*domain.CalendarEvent, error) {
	if req.Name == "" {
		return nil, validationError("name cannot be empty")
	}
	anchor, err := AnchorFromClientTime(req.Time, req.UTCOffset)
	if err != nil {
		return nil, err
	}
	return &domain.CalendarEvent{
		Date:        anchor,
		Name:        req.Name,
		Description: req.Description,
		Recurrence:  req.IntervalType,
	}, nil
}

func (s *calendarService) eventErr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFoundError(msgEventNotFound)
	}
	return s.internal(op, err)
}

func (s *calendarService) internal(op string, err error) error {
	s.logger.Error(op+" failed", "err", err)
	return fmt.Errorf("%s: %w", op, err)
}

func toEventResponse(event domain.CalendarEvent, date time.Time) EventResponse {
	return EventResponse{
		ID:           event.ID,
		Name:         event.Name,
		Description:  event.Description,
		IntervalType: event.Recurrence,
		Date:         date.Format(time.RFC3339),
	}
}
