package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Tomlord1122/dashboard-backend/internal/domain"
	"github.com/Tomlord1122/dashboard-backend/internal/ordering"
	"github.com/Tomlord1122/dashboard-backend/internal/repository"
)

const (
	msgListNotFound    = "No list exists by that id"
	msgItemNotFound    = "No item exists by that id"
	msgInvalidPosition = "Invalid position"
)

// CreateListRequest holds the data needed to create or rename a list.
type CreateListRequest struct {
	Name string `json:"name"`
}

type UpdateListRequest = CreateListRequest

// CreateItemRequest holds the data for appending an item to a list.
type CreateItemRequest struct {
	Name      string `json:"name"`
	Completed *bool  `json:"completed"`
}

// UpdateItemRequest holds a partial item update. Nil fields are left as they
// are; an empty name is ignored.
type UpdateItemRequest struct {
	Name      *string `json:"name"`
	Completed *bool   `json:"completed"`
	Position  *int    `json:"position"`
}

type ListSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ListsResponse struct {
	Lists []ListSummary `json:"lists"`
}

// ListResponse is a list with its items in position order.
type ListResponse struct {
	ID    uint           `json:"id"`
	Name  string         `json:"name"`
	Items []ItemResponse `json:"items"`
}

type ItemResponse struct {
	ID          uint    `json:"id"`
	ListID      uint    `json:"listID"`
	Name        string  `json:"name"`
	Completed   bool    `json:"completed"`
	CompletedOn *string `json:"completedOn"`
	Position    int     `json:"position"`
}

// TodoService manages todo lists and keeps each list's item positions dense.
type TodoService interface {
	CreateList(ctx context.Context, req CreateListRequest) (*ListSummary, error)
	GetLists(ctx context.Context) (*ListsResponse, error)
	GetList(ctx context.Context, listID uint) (*ListResponse, error)
	UpdateList(ctx context.Context, listID uint, req UpdateListRequest) (*ListResponse, error)
	// DeleteList removes the list together with its items.
	DeleteList(ctx context.Context, listID uint) error

	// AppendItem adds an item at the end of the list.
	AppendItem(ctx context.Context, listID uint, req CreateItemRequest) (*ItemResponse, error)
	GetItem(ctx context.Context, listID, itemID uint) (*ItemResponse, error)
	// UpdateItem applies name, completion and position changes as one unit.
	// Positions past the end are clamped to the last slot.
	UpdateItem(ctx context.Context, listID, itemID uint, req UpdateItemRequest) (*ItemResponse, error)
	MoveItem(ctx context.Context, listID, itemID uint, position int) (*ItemResponse, error)
	// DeleteItem removes the item and closes the gap it leaves.
	DeleteItem(ctx context.Context, listID, itemID uint) error
}

type todoService struct {
	repo   repository.TodoRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewTodoService(repo repository.TodoRepository, logger *slog.Logger) TodoService {
	return &todoService{
		repo:   repo,
		logger: logger.With("component", "todo"),
		now:    time.Now,
	}
}

func (s *todoService) CreateList(ctx context.Context, req CreateListRequest) (*ListSummary, error) {
	if req.Name == "" {
		return nil, validationError("name cannot be empty")
	}
	list := &domain.TodoList{Name: req.Name}
	if err := s.repo.CreateList(ctx, list); err != nil {
		return nil, s.internal("create list", err)
	}
	return &ListSummary{ID: list.ID, Name: list.Name}, nil
}

func (s *todoService) GetLists(ctx context.Context) (*ListsResponse, error) {
	lists, err := s.repo.GetAllLists(ctx)
	if err != nil {
		return nil, s.internal("get lists", err)
	}
	resp := &ListsResponse{Lists: make([]ListSummary, 0, len(lists))}
	for _, l := range lists {
		resp.Lists = append(resp.Lists, ListSummary{ID: l.ID, Name: l.Name})
	}
	return resp, nil
}

func (s *todoService) GetList(ctx context.Context, listID uint) (*ListResponse, error) {
	list, err := s.repo.FindListByID(ctx, listID)
	if err != nil {
		return nil, s.listErr("get list", err)
	}
	return s.listWithItems(ctx, list)
}

func (s *todoService) UpdateList(ctx context.Context, listID uint, req UpdateListRequest) (*ListResponse, error) {
	if req.Name == "" {
		return nil, validationError("name cannot be empty")
	}
	list := &domain.TodoList{ID: listID, Name: req.Name}
	if err := s.repo.UpdateList(ctx, list); err != nil {
		return nil, s.listErr("update list", err)
	}
	return s.listWithItems(ctx, list)
}

func (s *todoService) DeleteList(ctx context.Context, listID uint) error {
	if err := s.repo.DeleteList(ctx, listID); err != nil {
		return s.listErr("delete list", err)
	}
	s.logger.Debug("list deleted", "list_id", listID)
	return nil
}

func (s *todoService) AppendItem(ctx context.Context, listID uint, req CreateItemRequest) (*ItemResponse, error) {
	if req.Name == "" {
		return nil, validationError("name cannot be empty")
	}

	var created domain.TodoItem
	err := s.repo.WithinList(ctx, listID, func(tx repository.ListTx) error {
		count, err := tx.Count()
		if err != nil {
			return err
		}
		item := &domain.TodoItem{Name: req.Name, Position: ordering.AppendPosition(count)}
		if req.Completed != nil {
			item.SetCompleted(*req.Completed, s.now())
		}
		if err := tx.CreateItem(item); err != nil {
			return err
		}
		created = *item
		return nil
	})
	if err != nil {
		return nil, s.listErr("append item", err)
	}
	return toItemResponse(created), nil
}

func (s *todoService) GetItem(ctx context.Context, listID, itemID uint) (*ItemResponse, error) {
	if _, err := s.repo.FindListByID(ctx, listID); err != nil {
		return nil, s.listErr("get item", err)
	}
	item, err := s.repo.FindItem(ctx, listID, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError(msgItemNotFound)
		}
		return nil, s.internal("get item", err)
	}
	return toItemResponse(*item), nil
}

func (s *todoService) UpdateItem(ctx context.Context, listID, itemID uint, req UpdateItemRequest) (*ItemResponse, error) {
	var updated domain.TodoItem
	err := s.repo.WithinList(ctx, listID, func(tx repository.ListTx) error {
		item, err := tx.FindItem(itemID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundError(msgItemNotFound)
			}
			return err
		}
		// A missing list or item wins over a bad position; nothing is written yet.
		if req.Position != nil && *req.Position < 0 {
			return validationError(msgInvalidPosition)
		}

		if req.Name != nil && *req.Name != "" {
			item.Name = *req.Name
		}
		if req.Completed != nil {
			item.SetCompleted(*req.Completed, s.now())
		}

		if req.Position != nil && *req.Position != item.Position {
			count, err := tx.Count()
			if err != nil {
				return err
			}
			move, err := ordering.PlanMove(count, item.Position, *req.Position)
			if err != nil {
				return validationError(msgInvalidPosition)
			}
			if err := tx.ShiftPositions(move.Shift, item.ID); err != nil {
				return err
			}
			item.Position = move.To
		}

		if err := tx.SaveItem(item); err != nil {
			return err
		}
		updated = *item
		return nil
	})
	if err != nil {
		return nil, s.listErr("update item", err)
	}
	return toItemResponse(updated), nil
}

func (s *todoService) MoveItem(ctx context.Context, listID, itemID uint, position int) (*ItemResponse, error) {
	return s.UpdateItem(ctx, listID, itemID, UpdateItemRequest{Position: &position})
}

func (s *todoService) DeleteItem(ctx context.Context, listID, itemID uint) error {
	err := s.repo.WithinList(ctx, listID, func(tx repository.ListTx) error {
		item, err := tx.FindItem(itemID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundError(msgItemNotFound)
			}
			return err
		}
		count, err := tx.Count()
		if err != nil {
			return err
		}
		if err := tx.DeleteItem(item.ID); err != nil {
			return err
		}
		return tx.ShiftPositions(ordering.PlanDelete(count, item.Position), item.ID)
	})
	if err != nil {
		return s.listErr("delete item", err)
	}
	return nil
}

func (s *todoService) listWithItems(ctx context.Context, list *domain.TodoList) (*ListResponse, error) {
	items, err := s.repo.GetItems(ctx, list.ID)
	if err != nil {
		return nil, s.internal("get items", err)
	}
	resp := &ListResponse{ID: list.ID, Name: list.Name, Items: make([]ItemResponse, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, *toItemResponse(it))
	}
	return resp, nil
}

// listErr passes client errors through, maps a missing list to a not-found
// error and logs anything else.
func (s *todoService) listErr(op string, err error) error {
	switch {
	case isClientError(err):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return notFoundError(msgListNotFound)
	}
	return s.internal(op, err)
}

func (s *todoService) internal(op string, err error) error {
	s.logger.Error(op+" failed", "err", err)
	return fmt.Errorf("%s: %w", op, err)
}

func toItemResponse(item domain.TodoItem) *ItemResponse {
	resp := &ItemResponse{
		ID:        item.ID,
		ListID:    item.ListID,
		Name:      item.Name,
		Completed: item.Completed,
		Position:  item.Position,
	}
	if item.CompletedOn != nil {
		on := item.CompletedOn.UTC().Format(time.RFC3339)
		resp.CompletedOn = &on
	}
	return resp
}
