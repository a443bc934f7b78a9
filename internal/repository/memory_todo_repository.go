package repository

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Tomlord1122/dashboard-backend/internal/domain"
	"github.com/Tomlord1122/dashboard-backend/internal/ordering"
)

// memoryTodoRepository keeps lists in process memory. Each list carries its
// own mutex so writers of different lists never wait on each other. Writes
// made inside WithinList go to a staged copy that replaces the list's items
// only when the callback succeeds.
type memoryTodoRepository struct {
	mu         sync.RWMutex
	lists      map[uint]*memoryList
	nextListID uint
	nextItemID uint
	now        func() time.Time
}

type memoryList struct {
	lock  sync.Mutex
	list  domain.TodoList
	items map[uint]domain.TodoItem
}

// NewMemoryTodoRepository returns an empty in-memory TodoRepository.
func NewMemoryTodoRepository() TodoRepository {
	return &memoryTodoRepository{
		lists: make(map[uint]*memoryList),
		now:   time.Now,
	}
}

func (r *memoryTodoRepository) CreateList(_ context.Context, list *domain.TodoList) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextListID++
	now := r.now()
	list.ID = r.nextListID
	list.CreatedAt, list.UpdatedAt = now, now

	stored := *list
	stored.Items = nil
	r.lists[list.ID] = &memoryList{list: stored, items: make(map[uint]domain.TodoItem)}
	return nil
}

func (r *memoryTodoRepository) FindListByID(_ context.Context, id uint) (*domain.TodoList, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ml, ok := r.lists[id]
	if !ok {
		return nil, ErrNotFound
	}
	list := ml.list
	return &list, nil
}

func (r *memoryTodoRepository) GetAllLists(_ context.Context) ([]domain.TodoList, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lists := make([]domain.TodoList, 0, len(r.lists))
	for _, ml := range r.lists {
		lists = append(lists, ml.list)
	}
	slices.SortFunc(lists, func(a, b domain.TodoList) int { return int(a.ID) - int(b.ID) })
	return lists, nil
}

func (r *memoryTodoRepository) UpdateList(_ context.Context, list *domain.TodoList) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ml, ok := r.lists[list.ID]
	if !ok {
		return ErrNotFound
	}
	ml.list.Name = list.Name
	ml.list.UpdatedAt = r.now()
	list.CreatedAt, list.UpdatedAt = ml.list.CreatedAt, ml.list.UpdatedAt
	return nil
}

func (r *memoryTodoRepository) DeleteList(_ context.Context, id uint) error {
	r.mu.RLock()
	ml, ok := r.lists[id]
	r.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	// Wait for in-flight writers of this list to finish.
	ml.lock.Lock()
	defer ml.lock.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lists[id] != ml {
		return ErrNotFound
	}
	delete(r.lists, id)
	return nil
}

func (r *memoryTodoRepository) GetItems(_ context.Context, listID uint) ([]domain.TodoItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ml, ok := r.lists[listID]
	if !ok {
		return []domain.TodoItem{}, nil
	}
	return sortedItems(ml.items), nil
}

func (r *memoryTodoRepository) FindItem(_ context.Context, listID, itemID uint) (*domain.TodoItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ml, ok := r.lists[listID]
	if !ok {
		return nil, ErrNotFound
	}
	item, ok := ml.items[itemID]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (r *memoryTodoRepository) WithinList(ctx context.Context, listID uint, fn func(tx ListTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.RLock()
	ml, ok := r.lists[listID]
	r.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	ml.lock.Lock()
	defer ml.lock.Unlock()

	r.mu.RLock()
	if r.lists[listID] != ml {
		r.mu.RUnlock()
		return ErrNotFound
	}
	tx := &memoryListTx{repo: r, listID: listID, items: maps.Clone(ml.items)}
	r.mu.RUnlock()

	if err := fn(tx); err != nil {
		return err
	}
	if err := checkPositions(tx.items); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lists[listID] != ml {
		return ErrNotFound
	}
	ml.items = tx.items
	return nil
}

func (r *memoryTodoRepository) allocateItemID() uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextItemID++
	return r.nextItemID
}

type memoryListTx struct {
	repo   *memoryTodoRepository
	listID uint
	items  map[uint]domain.TodoItem
}

func (t *memoryListTx) ListID() uint { return t.listID }

func (t *memoryListTx) Count() (int, error) {
	return len(t.items), nil
}

func (t *memoryListTx) FindItem(itemID uint) (*domain.TodoItem, error) {
	item, ok := t.items[itemID]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (t *memoryListTx) CreateItem(item *domain.TodoItem) error {
	now := t.repo.now()
	item.ID = t.repo.allocateItemID()
	item.ListID = t.listID
	item.CreatedAt, item.UpdatedAt = now, now
	t.items[item.ID] = *item
	return nil
}

func (t *memoryListTx) SaveItem(item *domain.TodoItem) error {
	stored, ok := t.items[item.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Name = item.Name
	stored.Completed = item.Completed
	stored.CompletedOn = item.CompletedOn
	stored.Position = item.Position
	stored.UpdatedAt = t.repo.now()
	t.items[item.ID] = stored
	*item = stored
	return nil
}

func (t *memoryListTx) DeleteItem(itemID uint) error {
	if _, ok := t.items[itemID]; !ok {
		return ErrNotFound
	}
	delete(t.items, itemID)
	return nil
}

func (t *memoryListTx) ShiftPositions(shift ordering.Shift, excludeID uint) error {
	if shift.Empty() {
		return nil
	}
	for id, item := range t.items {
		if id == excludeID || !shift.Contains(item.Position) {
			continue
		}
		item.Position = shift.Apply(item.Position)
		t.items[id] = item
	}
	return nil
}

// checkPositions mirrors the deferred (list_id, position) unique constraint.
func checkPositions(items map[uint]domain.TodoItem) error {
	seen := make(map[int]uint, len(items))
	for id, item := range items {
		if other, dup := seen[item.Position]; dup {
			return fmt.Errorf("%w: items %d and %d share position %d", ErrDuplicate, other, id, item.Position)
		}
		if item.Position < 0 {
			return fmt.Errorf("item %d has negative position %d", id, item.Position)
		}
		seen[item.Position] = id
	}
	return nil
}

func sortedItems(items map[uint]domain.TodoItem) []domain.TodoItem {
	out := slices.Collect(maps.Values(items))
	slices.SortFunc(out, func(a, b domain.TodoItem) int { return a.Position - b.Position })
	return out
}
