package view

import (
	"fmt"
	"slices"
)

// Selection is a set of row ids that may only contain rows of the current filtered view
type Selection struct {
	ids map[int64]struct{}
}

func NewSelection() *Selection {
	return &Selection{ids: make(map[int64]struct{})}
}

// Select adds id if it is visible
func (s *Selection) Select(visible []int64, id int64) error {
	if !slices.Contains(visible, id) {
		return fmt.Errorf("row %d is not in the current view", id)
	}
	s.ids[id] = struct{}{}
	return nil
}

// Toggle flips id in or out of the selection
func (s *Selection) Toggle(visible []int64, id int64) error {
	if s.Contains(id) {
		delete(s.ids, id)
		return nil
	}
	return s.Select(visible, id)
}

// Unselect removes id; removing an unselected id is a no-op
func (s *Selection) Unselect(id int64) {
	delete(s.ids, id)
}

// SelectAll replaces the selection with every visible row
func (s *Selection) SelectAll(visible []int64) {
	s.Clear()
	for _, id := range visible {
		s.ids[id] = struct{}{}
	}
}

func (s *Selection) Clear() {
	clear(s.ids)
}

// Prune drops ids that are no longer visible, e.g. after a reload
func (s *Selection) Prune(visible []int64) {
	for id := range s.ids {
		if !slices.Contains(visible, id) {
			delete(s.ids, id)
		}
	}
}

func (s *Selection) Contains(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids in ascending order
func (s *Selection) IDs() []int64 {
	ids := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
