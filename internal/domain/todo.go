package domain

import "time"

type TodoList struct {
	ID        uint       `gorm:"primaryKey"`
	Name      string     `gorm:"not null"`
	Items     []TodoItem `gorm:"foreignKey:ListID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TodoItem belongs to exactly one TodoList. Position is the item's dense,
// zero-based rank within that list; (ListID, Position) is unique.
type TodoItem struct {
	ID          uint       `gorm:"primaryKey"`
	ListID      uint       `gorm:"not null;uniqueIndex:uq_todo_items_list_position"`
	Name        string     `gorm:"not null"`
	Completed   bool       `gorm:"not null"`
	CompletedOn *time.Time
	Position    int `gorm:"not null;uniqueIndex:uq_todo_items_list_position"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SetCompleted records a completion change. CompletedOn is stamped with now
// when the item becomes completed and cleared whenever it is not completed.
func (i *TodoItem) SetCompleted(completed bool, now time.Time) {
	if !completed {
		i.Completed = false
		i.CompletedOn = nil
		return
	}
	if !i.Completed || i.CompletedOn == nil {
		stamp := now
		i.CompletedOn = &stamp
	}
	i.Completed = true
}
