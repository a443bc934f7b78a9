package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Tomlord1122/dashboard-backend/internal/domain"
)

// EventRepository defines the data operations for calendar events.
type EventRepository interface {
	Create(ctx context.Context, event *domain.CalendarEvent) error
	FindByID(ctx context.Context, id uint) (*domain.CalendarEvent, error)
	// GetAll returns every event ordered by anchor date, then id.
	GetAll(ctx context.Context) ([]domain.CalendarEvent, error)
	// FindAnchoredBefore returns the events whose anchor date is strictly
	// before the given date, ordered like GetAll.
	FindAnchoredBefore(ctx context.Context, before time.Time) ([]domain.CalendarEvent, error)
	Update(ctx context.Context, event *domain.CalendarEvent) error
	Delete(ctx context.Context, id uint) error
}

type gormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) EventRepository {
	return &gormEventRepository{db: db}
}

func (r *gormEventRepository) Create(ctx context.Context, event *domain.CalendarEvent) error {
	return translate(r.db.WithContext(ctx).Create(event).Error)
}

func (r *gormEventRepository) FindByID(ctx context.Context, id uint) (*domain.CalendarEvent, error) {
	var event domain.CalendarEvent
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, translate(err)
	}
	return &event, nil
}

func (r *gormEventRepository) GetAll(ctx context.Context) ([]domain.CalendarEvent, error) {
	var events []domain.CalendarEvent
	if err := r.db.WithContext(ctx).Order("date, id").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *gormEventRepository) FindAnchoredBefore(ctx context.Context, before time.Time) ([]domain.CalendarEvent, error) {
	var events []domain.CalendarEvent
	err := r.db.WithContext(ctx).
		Where("date < ?", before.Format(time.DateOnly)).
		Order("date, id").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Update overwrites every editable field of the event in place.
func (r *gormEventRepository) Update(ctx context.Context, event *domain.CalendarEvent) error {
	result := r.db.WithContext(ctx).
		Model(event).
		Select("Date", "Name", "Description", "Recurrence").
		Updates(event)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormEventRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.CalendarEvent{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type memoryEventRepository struct {
	mu     sync.RWMutex
	events map[uint]domain.CalendarEvent
	nextID uint
	now    func() time.Time
}

// NewMemoryEventRepository returns an empty in-memory EventRepository.
func NewMemoryEventRepository() EventRepository {
	return &memoryEventRepository{events: make(map[uint]domain.CalendarEvent), now: time.Now}
}

func (r *memoryEventRepository) Create(_ context.Context, event *domain.CalendarEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := r.now()
	event.ID = r.nextID
	event.CreatedAt, event.UpdatedAt = now, now
	r.events[event.ID] = *event
	return nil
}

func (r *memoryEventRepository) FindByID(_ context.Context, id uint) (*domain.CalendarEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	event, ok := r.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &event, nil
}

func (r *memoryEventRepository) GetAll(context.Context) ([]domain.CalendarEvent, error) {
	return r.filter(func(domain.CalendarEvent) bool { return true }), nil
}

func (r *memoryEventRepository) FindAnchoredBefore(_ context.Context, before time.Time) ([]domain.CalendarEvent, error) {
	return r.filter(func(e domain.CalendarEvent) bool { return e.Date.Before(before) }), nil
}

func (r *memoryEventRepository) filter(keep func(domain.CalendarEvent) bool) []domain.CalendarEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.CalendarEvent, 0, len(r.events))
	for _, e := range r.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b domain.CalendarEvent) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return int(a.ID) - int(b.ID)
	})
	return out
}

func (r *memoryEventRepository) Update(_ context.Context, event *domain.CalendarEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.events[event.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Date = event.Date
	stored.Name = event.Name
	stored.Description = event.Description
	stored.Recurrence = event.Recurrence
	stored.UpdatedAt = r.now()
	r.events[event.ID] = stored
	*event = stored
	return nil
}

func (r *memoryEventRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return ErrNotFound
	}
	delete(r.events, id)
	return nil
}
