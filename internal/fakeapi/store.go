package fakeapi

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/todoflow-labs/todo-client/internal/dto"
)

// PageSize matches the page size the client expects.
const PageSize = 10

var ErrNotFound = errors.New("todo not found")

// Store is an in-memory todo table.
type Store struct {
	mu     sync.Mutex
	todos  map[int64]dto.Todo
	nextID int64
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{
		todos:  make(map[int64]dto.Todo),
		nextID: 1,
		now:    time.Now,
	}
}

// SetClock replaces the time source used for createdDate and completedDate.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) List(field dto.SortField, order dto.SortOrder, page int) ([]dto.Todo, error) {
	if page < 1 {
		return nil, fmt.Errorf("page must be >= 1, got %d", page)
	}
	less, err := comparator(field)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	all := slices.Collect(maps.Values(s.todos))
	s.mu.Unlock()

	slices.SortStableFunc(all, func(a, b dto.Todo) int {
		c := less(a, b)
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if order == dto.Descending {
			return -c
		}
		return c
	})

	start := (page - 1) * PageSize
	if start >= len(all) {
		return []dto.Todo{}, nil
	}
	end := min(start+PageSize, len(all))
	out := make([]dto.Todo, 0, end-start)
	for _, t := range all[start:end] {
		out = append(out, t.Clone())
	}
	return out, nil
}

func (s *Store) Get(id int64) (dto.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.todos[id]
	if !ok {
		return dto.Todo{}, ErrNotFound
	}
	return t.Clone(), nil
}

func (s *Store) Create(t dto.Todo) (dto.Todo, error) {
	if err := t.Validate(); err != nil {
		return dto.Todo{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t = t.Clone()
	t.ID = s.nextID
	s.nextID++
	if t.CreatedDate == nil {
		t.CreatedDate = dto.NewTimestamp(s.now())
	}
	t.CompletedDate = nil
	if t.Completed {
		t.CompletedDate = dto.NewTimestamp(s.now())
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	s.todos[t.ID] = t
	return t.Clone(), nil
}

// Update replaces the editable fields of an existing todo. completedDate
// follows the completed flag.
func (s *Store) Update(t dto.Todo) (dto.Todo, error) {
	if err := t.Validate(); err != nil {
		return dto.Todo{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.todos[t.ID]
	if !ok {
		return dto.Todo{}, ErrNotFound
	}
	cur.Title = t.Title
	cur.Description = t.Description
	cur.Tags = slices.Clone(t.Tags)
	if cur.Tags == nil {
		cur.Tags = []string{}
	}
	if t.CreatedDate != nil {
		cur.CreatedDate = dto.NewTimestamp(t.CreatedDate.Time)
	}
	s.setCompleted(&cur, t.Completed)
	s.todos[cur.ID] = cur
	return cur.Clone(), nil
}

func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.todos[id]; !ok {
		return ErrNotFound
	}
	delete(s.todos, id)
	return nil
}

func (s *Store) Toggle(id int64) (dto.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.todos[id]
	if !ok {
		return dto.Todo{}, ErrNotFound
	}
	s.setCompleted(&cur, !cur.Completed)
	s.todos[id] = cur
	return cur.Clone(), nil
}

func (s *Store) setCompleted(t *dto.Todo, completed bool) {
	switch {
	case completed && !t.Completed:
		t.CompletedDate = dto.NewTimestamp(s.now())
	case !completed:
		t.CompletedDate = nil
	}
	t.Completed = completed
}

func comparator(field dto.SortField) (func(a, b dto.Todo) int, error) {
	switch field {
	case dto.SortByID:
		return func(a, b dto.Todo) int { return cmp.Compare(a.ID, b.ID) }, nil
	case dto.SortByTitle:
		return func(a, b dto.Todo) int {
			return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}, nil
	case dto.SortByDescription:
		return func(a, b dto.Todo) int {
			return cmp.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description))
		}, nil
	case dto.SortByCompleted:
		return func(a, b dto.Todo) int { return compareBool(a.Completed, b.Completed) }, nil
	case dto.SortByCreatedDate:
		return func(a, b dto.Todo) int { return compareTimestamp(a.CreatedDate, b.CreatedDate) }, nil
	case dto.SortByCompletedDate:
		return func(a, b dto.Todo) int { return compareTimestamp(a.CompletedDate, b.CompletedDate) }, nil
	}
	return nil, fmt.Errorf("unknown sort field %q", field)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

// nil timestamps sort first
func compareTimestamp(a, b *dto.Timestamp) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(b.Time)
}
