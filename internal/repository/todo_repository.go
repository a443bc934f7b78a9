package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tomlord1122/dashboard-backend/internal/domain"
	"github.com/Tomlord1122/dashboard-backend/internal/ordering"
)

// TodoRepository defines the data operations for todo lists and their items.
//
// Item writes that touch positions go through WithinList, which serializes
// every writer of one list and commits all of fn's writes together.
type TodoRepository interface {
	CreateList(ctx context.Context, list *domain.TodoList) error
	FindListByID(ctx context.Context, id uint) (*domain.TodoList, error)
	GetAllLists(ctx context.Context) ([]domain.TodoList, error)
	UpdateList(ctx context.Context, list *domain.TodoList) error
	// DeleteList removes the list and, by cascade, its items.
	DeleteList(ctx context.Context, id uint) error

	// GetItems returns the items of a list ordered by position.
	GetItems(ctx context.Context, listID uint) ([]domain.TodoItem, error)
	// FindItem returns the item only if it belongs to listID.
	FindItem(ctx context.Context, listID, itemID uint) (*domain.TodoItem, error)

	// WithinList runs fn while holding the list's write lock. If fn returns
	// an error nothing it wrote is kept. ErrNotFound is returned when the
	// list does not exist.
	WithinList(ctx context.Context, listID uint, fn func(tx ListTx) error) error
}

// ListTx is the view of one locked list handed to WithinList callbacks.
type ListTx interface {
	ListID() uint
	Count() (int, error)
	FindItem(itemID uint) (*domain.TodoItem, error)
	CreateItem(item *domain.TodoItem) error
	SaveItem(item *domain.TodoItem) error
	DeleteItem(itemID uint) error
	// ShiftPositions applies shift to every item of the list except excludeID.
	ShiftPositions(shift ordering.Shift, excludeID uint) error
}

// gormTodoRepository implements TodoRepository using GORM
type gormTodoRepository struct {
	db *gorm.DB
}

// NewGormTodoRepository creates a new GORM todo repository
func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

func (r *gormTodoRepository) CreateList(ctx context.Context, list *domain.TodoList) error {
	return translate(r.db.WithContext(ctx).Omit("Items").Create(list).Error)
}

func (r *gormTodoRepository) FindListByID(ctx context.Context, id uint) (*domain.TodoList, error) {
	var list domain.TodoList
	if err := r.db.WithContext(ctx).First(&list, id).Error; err != nil {
		return nil, translate(err)
	}
	return &list, nil
}

func (r *gormTodoRepository) GetAllLists(ctx context.Context) ([]domain.TodoList, error) {
	var lists []domain.TodoList
	if err := r.db.WithContext(ctx).Order("id").Find(&lists).Error; err != nil {
		return nil, err
	}
	return lists, nil
}

// UpdateList writes the list's name.
func (r *gormTodoRepository) UpdateList(ctx context.Context, list *domain.TodoList) error {
	result := r.db.WithContext(ctx).Model(list).Select("Name").Updates(list)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormTodoRepository) DeleteList(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.TodoList{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormTodoRepository) GetItems(ctx context.Context, listID uint) ([]domain.TodoItem, error) {
	var items []domain.TodoItem
	err := r.db.WithContext(ctx).
		Where("list_id = ?", listID).
		Order("position").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *gormTodoRepository) FindItem(ctx context.Context, listID, itemID uint) (*domain.TodoItem, error) {
	return findItem(r.db.WithContext(ctx), listID, itemID)
}

// WithinList locks the list row with SELECT ... FOR UPDATE for the length of
// the transaction.
func (r *gormTodoRepository) WithinList(ctx context.Context, listID uint, fn func(tx ListTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var list domain.TodoList
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&list, listID).Error
		if err != nil {
			return translate(err)
		}
		return fn(&gormListTx{db: tx, listID: listID})
	})
}

type gormListTx struct {
	db     *gorm.DB
	listID uint
}

func (t *gormListTx) ListID() uint { return t.listID }

func (t *gormListTx) Count() (int, error) {
	var n int64
	err := t.db.Model(&domain.TodoItem{}).Where("list_id = ?", t.listID).Count(&n).Error
	return int(n), err
}

func (t *gormListTx) FindItem(itemID uint) (*domain.TodoItem, error) {
	return findItem(t.db, t.listID, itemID)
}

func (t *gormListTx) CreateItem(item *domain.TodoItem) error {
	item.ListID = t.listID
	return translate(t.db.Create(item).Error)
}

func (t *gormListTx) SaveItem(item *domain.TodoItem) error {
	result := t.db.Model(item).
		Where("list_id = ?", t.listID).
		Select("Name", "Completed", "CompletedOn", "Position").
		Updates(item)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *gormListTx) DeleteItem(itemID uint) error {
	result := t.db.Where("list_id = ?", t.listID).Delete(&domain.TodoItem{}, itemID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ShiftPositions issues one range UPDATE. Intermediate duplicates are
// tolerated by the deferred (list_id, position) constraint.
func (t *gormListTx) ShiftPositions(shift ordering.Shift, excludeID uint) error {
	if shift.Empty() {
		return nil
	}
	return t.db.Model(&domain.TodoItem{}).
		Where("list_id = ? AND id <> ? AND position BETWEEN ? AND ?", t.listID, excludeID, shift.From, shift.To).
		UpdateColumn("position", gorm.Expr("position + ?", shift.Delta)).Error
}

func findItem(db *gorm.DB, listID, itemID uint) (*domain.TodoItem, error) {
	var item domain.TodoItem
	if err := db.Where("list_id = ?", listID).First(&item, itemID).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}
