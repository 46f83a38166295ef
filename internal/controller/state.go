package controller

import (
	"slices"

	"github.com/todoflow-labs/todo-client/internal/dto"
)

// PageSize is the number of todos requested per page.
const PageSize = 10

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusError   Status = "error"
)

// PendingEdit is the todo loaded into the edit form. Index is the position of
// its counterpart in Items, or -1 for a todo that is being created.
type PendingEdit struct {
	Todo  dto.Todo
	Index int
}

// ViewState is a snapshot of everything a presentation adapter renders.
// Snapshots are deep copies and may be kept or mutated freely.
type ViewState struct {
	Items         []dto.Todo
	SortField     dto.SortField
	SortAscending bool
	Page          int
	PageSize      int
	ShowNext      bool
	ShowPrev      bool
	Pending       *PendingEdit
	Busy          bool
	LastError     string
	LastToggle    *ToggleOutcome
}

func initialState() ViewState {
	return ViewState{
		Items:         []dto.Todo{},
		SortField:     dto.SortByID,
		SortAscending: true,
		Page:          1,
		PageSize:      PageSize,
	}
}

// Status is derived: Loading while a request is in flight, Error while the
// last intent left a message behind, Idle otherwise.
func (s ViewState) Status() Status {
	switch {
	case s.Busy:
		return StatusLoading
	case s.LastError != "":
		return StatusError
	}
	return StatusIdle
}

func (s ViewState) SortOrder() dto.SortOrder {
	return dto.OrderOf(s.SortAscending)
}

// Editing reports whether the form holds an existing todo rather than a new one.
func (s ViewState) Editing() bool {
	return s.Pending != nil && s.Pending.Todo.HasID()
}

func (s ViewState) clone() ViewState {
	c := s
	c.Items = make([]dto.Todo, len(s.Items))
	for i, t := range s.Items {
		c.Items[i] = t.Clone()
	}
	if s.Pending != nil {
		c.Pending = &PendingEdit{Todo: s.Pending.Todo.Clone(), Index: s.Pending.Index}
	}
	if s.LastToggle != nil {
		t := *s.LastToggle
		c.LastToggle = &t
	}
	return c
}

// resolve finds the position of id, trusting index only when it still points
// at the same todo.
func (s ViewState) resolve(id int64, index int) (int, error) {
	if index >= 0 && index < len(s.Items) && s.Items[index].ID == id {
		return index, nil
	}
	if i := slices.IndexFunc(s.Items, func(t dto.Todo) bool { return t.ID == id }); i >= 0 {
		return i, nil
	}
	return -1, &StaleIndexError{ID: id, Index: index, Len: len(s.Items)}
}
