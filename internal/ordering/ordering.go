// Package ordering plans the position changes that keep a list's items
// densely ranked 0..n-1 across appends, moves and deletes.
//
// The planners are pure: they look only at the list size and the positions
// involved, and return the Shift a store must apply to the other items of the
// list. Stores apply the shift and the moved item's new position in a single
// transaction.
package ordering

import (
	"errors"
	"fmt"
	"slices"
)

var ErrPositionOutOfRange = errors.New("position out of range")

// Shift adds Delta to every position in the inclusive range [From, To].
type Shift struct {
	From  int
	To    int
	Delta int
}

func (s Shift) Empty() bool {
	return s.Delta == 0 || s.From > s.To
}

func (s Shift) Contains(position int) bool {
	return !s.Empty() && position >= s.From && position <= s.To
}

// Apply returns position after the shift.
func (s Shift) Apply(position int) int {
	if s.Contains(position) {
		return position + s.Delta
	}
	return position
}

// Move describes relocating one item from From to To.
type Move struct {
	From  int
	To    int
	Shift Shift
}

func (m Move) NoOp() bool {
	return m.From == m.To
}

// AppendPosition is the position of an item added to the end of a list of count items.
func AppendPosition(count int) int {
	return count
}

// PlanMove plans moving the item at current to requested in a list of count
// items. Negative requests are rejected; requests past the end are clamped to
// the last position.
func PlanMove(count, current, requested int) (Move, error) {
	if requested < 0 {
		return Move{}, fmt.Errorf("%w: %d", ErrPositionOutOfRange, requested)
	}

	maxPosition := max(count-1, 0)
	target := min(requested, maxPosition)

	m := Move{From: current, To: target}
	switch {
	case target > current:
		m.Shift = Shift{From: current + 1, To: target, Delta: -1}
	case target < current:
		m.Shift = Shift{From: target, To: current - 1, Delta: 1}
	}
	return m, nil
}

// PlanDelete plans closing the gap left by removing the item at position from
// a list that held count items.
func PlanDelete(count, position int) Shift {
	return Shift{From: position + 1, To: count - 1, Delta: -1}
}

// Dense reports whether positions is exactly {0, 1, ..., len(positions)-1}.
func Dense(positions []int) bool {
	sorted := slices.Clone(positions)
	slices.Sort(sorted)
	for i, p := range sorted {
		if p != i {
			return false
		}
	}
	return true
}
