package controller

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/todoflow-labs/todo-client/internal/dto"
	"github.com/todoflow-labs/todo-client/internal/logging"
	"github.com/todoflow-labs/todo-client/internal/metrics"
)

// Gateway is the REST boundary the controller drives. *gateway.Client
// satisfies it.
type Gateway interface {
	List(ctx context.Context, field dto.SortField, order dto.SortOrder, page int) ([]dto.Todo, error)
	Create(ctx context.Context, todo dto.Todo) (dto.Todo, error)
	Update(ctx context.Context, todo dto.Todo) (dto.Todo, error)
	Delete(ctx context.Context, id int64) error
	ToggleStatus(ctx context.Context, id int64) (dto.Todo, error)
}

type EventKind string

const (
	EventLoading          EventKind = "loading"
	EventLoaded           EventKind = "loaded"
	EventCreated          EventKind = "created"
	EventUpdated          EventKind = "updated"
	EventDeleted          EventKind = "deleted"
	EventToggleApplied    EventKind = "toggle_applied"
	EventToggleConfirmed  EventKind = "toggle_confirmed"
	EventToggleRolledBack EventKind = "toggle_rolled_back"
	EventEditBegan        EventKind = "edit_began"
	EventDraftChanged     EventKind = "draft_changed"
	EventEditCancelled    EventKind = "edit_cancelled"
	EventFailed           EventKind = "failed"
)

// Event is delivered to observers after every state transition.
type Event struct {
	Kind  EventKind
	State ViewState
	Err   error
}

// Controller owns the list view state of one mounted list. Intents that talk
// to the backend block until the response has been applied; only one of them
// may be in flight at a time.
type Controller struct {
	gw     Gateway
	logger *logging.Logger

	mu        sync.Mutex
	st        ViewState
	observers []observer
	nextObs   int
}

type observer struct {
	id int
	fn func(Event)
}

func New(gw Gateway, logger *logging.Logger) *Controller {
	return &Controller{
		gw:     gw,
		logger: logger,
		st:     initialState(),
	}
}

// State returns a snapshot of the current view state.
func (c *Controller) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.clone()
}

// Subscribe registers fn for every subsequent Event. Observers run on the
// goroutine that caused the transition, outside the controller lock.
func (c *Controller) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextObs
	c.nextObs++
	c.observers = append(c.observers, observer{id: id, fn: fn})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.observers = slices.DeleteFunc(c.observers, func(o observer) bool { return o.id == id })
	}
}

// Refresh reloads the current page with the current sort.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	field, order, page := c.st.SortField, c.st.SortOrder(), c.st.Page
	c.mu.Unlock()
	return c.Load(ctx, field, order, page)
}

// Load replaces the items with the requested page. Sort and page are only
// committed when the backend answers.
func (c *Controller) Load(ctx context.Context, field dto.SortField, order dto.SortOrder, page int) error {
	if page < 1 {
		return ErrInvalidPage
	}
	if order != dto.Ascending && order != dto.Descending {
		return fmt.Errorf("sort order must be asc or desc, got %q", order)
	}
	if err := c.begin(nil); err != nil {
		return err
	}
	return c.load(ctx, field, order, page)
}

// ChangeSort flips the direction when field is already the sort column and
// otherwise sorts ascending by field. Either way the list restarts at page 1
// and any pending edit is dropped.
func (c *Controller) ChangeSort(ctx context.Context, field dto.SortField) error {
	field, err := dto.ParseSortField(string(field))
	if err != nil {
		return err
	}
	var order dto.SortOrder
	err = c.begin(func(st *ViewState) {
		ascending := true
		if st.SortField == field {
			ascending = !st.SortAscending
		}
		order = dto.OrderOf(ascending)
		st.Pending = nil
	})
	if err != nil {
		return err
	}
	return c.load(ctx, field, order, 1)
}

// ChangePage moves delta pages. Moving before page 1 is a no-op.
func (c *Controller) ChangePage(ctx context.Context, delta int) error {
	c.mu.Lock()
	if c.st.Busy {
		c.mu.Unlock()
		return ErrBusy
	}
	target := c.st.Page + delta
	field, order := c.st.SortField, c.st.SortOrder()
	c.mu.Unlock()

	if target < 1 {
		c.logger.Debug().Int("target", target).Msg("ignoring page change before first page")
		return nil
	}
	if err := c.begin(func(st *ViewState) { st.Pending = nil }); err != nil {
		return err
	}
	return c.load(ctx, field, order, target)
}

// BeginEdit loads a copy of todo into the form. index is where the todo sits
// in the current items.
func (c *Controller) BeginEdit(todo dto.Todo, index int) error {
	if !todo.HasID() {
		return ErrMissingID
	}
	c.mu.Lock()
	c.st.Pending = &PendingEdit{Todo: todo.Clone(), Index: index}
	c.st.LastError = ""
	ev := c.eventLocked(EventEditBegan, nil)
	c.mu.Unlock()

	c.publish(ev)
	return nil
}

// SetDraft replaces the form content. The identity of the todo being edited
// (its id and index) cannot be changed through the draft; without an edit
// target the draft describes a new todo.
func (c *Controller) SetDraft(todo dto.Todo) {
	c.mu.Lock()
	draft := todo.Clone()
	index := -1
	if p := c.st.Pending; p != nil && p.Todo.HasID() {
		draft.ID = p.Todo.ID
		index = p.Index
	} else {
		draft.ID = 0
	}
	c.st.Pending = &PendingEdit{Todo: draft, Index: index}
	c.st.LastError = ""
	ev := c.eventLocked(EventDraftChanged, nil)
	c.mu.Unlock()

	c.publish(ev)
}

// CancelEdit clears the form and the last error.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	c.st.Pending = nil
	c.st.LastError = ""
	ev := c.eventLocked(EventEditCancelled, nil)
	c.mu.Unlock()

	c.publish(ev)
}

// ResetForm is CancelEdit under the name the form uses.
func (c *Controller) ResetForm() {
	c.CancelEdit()
}

// Save creates the draft when it has no id and updates it otherwise. A draft
// that fails validation never reaches the backend.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	if c.st.Busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.st.LastError = ""
	var draft dto.Todo
	index := -1
	if p := c.st.Pending; p != nil {
		draft, index = p.Todo.Clone(), p.Index
	}
	if err := draft.Validate(); err != nil {
		c.st.LastError = err.Error()
		ev := c.eventLocked(EventFailed, err)
		c.mu.Unlock()

		c.logger.Debug().Err(err).Msg("save rejected")
		c.publish(ev)
		return err
	}
	draft.Title = strings.TrimSpace(draft.Title)
	c.st.Busy = true
	field, order := c.st.SortField, c.st.SortOrder()
	ev := c.eventLocked(EventLoading, nil)
	c.mu.Unlock()
	c.publish(ev)

	if !draft.HasID() {
		return c.create(ctx, draft, field, order)
	}
	return c.update(ctx, draft, index)
}

func (c *Controller) create(ctx context.Context, draft dto.Todo, field dto.SortField, order dto.SortOrder) error {
	created, err := c.gw.Create(ctx, draft)
	if err != nil {
		return c.fail("create", err)
	}

	c.mu.Lock()
	c.st.Pending = nil
	onFirstPage := c.st.Page == 1
	if onFirstPage {
		c.st.Items = append([]dto.Todo{created.Clone()}, c.st.Items...)
	} else {
		c.st.Busy = false
	}
	ev := c.eventLocked(EventCreated, nil)
	c.mu.Unlock()

	c.logger.Info().Int64("id", created.ID).Msg("todo created")
	c.publish(ev)
	if !onFirstPage {
		return nil
	}
	// reload so the new todo lands where the backend sorts it. The todo is
	// saved either way; a failed reload only shows up in LastError.
	if err := c.load(ctx, field, order, 1); err != nil {
		c.logger.Warn().Err(err).Int64("id", created.ID).Msg("reload after create failed")
	}
	return nil
}

func (c *Controller) update(ctx context.Context, draft dto.Todo, index int) error {
	updated, err := c.gw.Update(ctx, draft)
	if err != nil {
		return c.fail("update", err)
	}

	c.mu.Lock()
	c.st.Busy = false
	if i, err := c.st.resolve(draft.ID, index); err == nil {
		c.st.Items[i] = updated.Clone()
	} else {
		c.logger.Warn().Err(err).Msg("updated todo not on the current page")
	}
	c.st.Pending = nil
	ev := c.eventLocked(EventUpdated, nil)
	c.mu.Unlock()

	c.logger.Info().Int64("id", updated.ID).Msg("todo updated")
	c.publish(ev)
	return nil
}

// Delete removes the todo once the backend confirms it. index is re-checked
// against id before it is used.
func (c *Controller) Delete(ctx context.Context, id int64, index int) error {
	if id == 0 {
		return ErrMissingID
	}
	if err := c.begin(nil); err != nil {
		return err
	}
	if err := c.gw.Delete(ctx, id); err != nil {
		return c.fail("delete", err)
	}

	c.mu.Lock()
	c.st.Busy = false
	if i, err := c.st.resolve(id, index); err == nil {
		c.st.Items = slices.Delete(c.st.Items, i, i+1)
		if p := c.st.Pending; p != nil && p.Todo.ID == id {
			c.st.Pending = nil
		}
	} else {
		c.logger.Warn().Err(err).Msg("deleted todo not on the current page")
	}
	ev := c.eventLocked(EventDeleted, nil)
	c.mu.Unlock()

	c.logger.Info().Int64("id", id).Msg("todo deleted")
	c.publish(ev)
	return nil
}

// ToggleStatus flips completed locally right away, then replaces the todo
// with the backend's answer. On failure the flag is restored to exactly the
// value it had before the flip.
func (c *Controller) ToggleStatus(ctx context.Context, todo dto.Todo) error {
	if !todo.HasID() {
		return ErrMissingID
	}

	c.mu.Lock()
	if c.st.Busy {
		c.mu.Unlock()
		return ErrBusy
	}
	i, err := c.st.resolve(todo.ID, -1)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	outcome := applyToggle(todo.ID, c.st.Items[i].Completed)
	c.st.Items[i].Completed = !outcome.Prior
	c.st.Busy = true
	c.st.LastError = ""
	c.st.LastToggle = outcome
	ev := c.eventLocked(EventToggleApplied, nil)
	c.mu.Unlock()
	c.publish(ev)

	toggled, gwErr := c.gw.ToggleStatus(ctx, todo.ID)

	c.mu.Lock()
	c.st.Busy = false
	i, resolveErr := c.st.resolve(todo.ID, i)
	if gwErr != nil {
		if prior, ok := outcome.rollback(); ok && resolveErr == nil {
			c.st.Items[i].Completed = prior
		}
		c.st.LastError = gwErr.Error()
		ev = c.eventLocked(EventToggleRolledBack, gwErr)
		c.mu.Unlock()

		c.logger.Error().Err(gwErr).Int64("id", todo.ID).Bool("restored", outcome.Prior).Msg("toggle failed, rolled back")
		c.publish(ev)
		return fmt.Errorf("toggle: %w", gwErr)
	}
	if outcome.confirm() && resolveErr == nil {
		c.st.Items[i] = toggled.Clone()
	}
	ev = c.eventLocked(EventToggleConfirmed, nil)
	c.mu.Unlock()

	c.logger.Info().Int64("id", todo.ID).Bool("completed", toggled.Completed).Msg("todo toggled")
	c.publish(ev)
	return nil
}

// begin marks the controller busy, clears the last error and applies mutate
// to the state, all under one lock.
func (c *Controller) begin(mutate func(st *ViewState)) error {
	c.mu.Lock()
	if c.st.Busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.st.Busy = true
	c.st.LastError = ""
	if mutate != nil {
		mutate(&c.st)
	}
	ev := c.eventLocked(EventLoading, nil)
	c.mu.Unlock()

	c.publish(ev)
	return nil
}

// load fetches one page and ends the busy period.
func (c *Controller) load(ctx context.Context, field dto.SortField, order dto.SortOrder, page int) error {
	items, err := c.gw.List(ctx, field, order, page)
	if err != nil {
		return c.fail("load", err)
	}
	if len(items) > PageSize {
		items = items[:PageSize]
	}

	c.mu.Lock()
	c.st.Busy = false
	c.st.Items = make([]dto.Todo, len(items))
	for i, t := range items {
		c.st.Items[i] = t.Clone()
	}
	c.st.SortField = field
	c.st.SortAscending = order == dto.Ascending
	c.st.Page = page
	c.st.ShowNext = len(items) == PageSize
	c.st.ShowPrev = page > 1
	ev := c.eventLocked(EventLoaded, nil)
	c.mu.Unlock()

	c.logger.Debug().Str("sortField", string(field)).Str("sortOrder", string(order)).Int("page", page).Int("count", len(items)).Msg("todos loaded")
	c.publish(ev)
	return nil
}

// fail ends the busy period with err as the last error. Items are left as
// they were before the intent.
func (c *Controller) fail(intent string, err error) error {
	c.mu.Lock()
	c.st.Busy = false
	c.st.LastError = err.Error()
	ev := c.eventLocked(EventFailed, err)
	c.mu.Unlock()

	c.logger.Error().Err(err).Str("intent", intent).Msg("todo request failed")
	c.publish(ev)
	return fmt.Errorf("%s: %w", intent, err)
}

func (c *Controller) eventLocked(kind EventKind, err error) Event {
	return Event{Kind: kind, State: c.st.clone(), Err: err}
}

func (c *Controller) publish(ev Event) {
	metrics.ControllerEvents.WithLabelValues(string(ev.Kind)).Inc()

	c.mu.Lock()
	observers := slices.Clone(c.observers)
	c.mu.Unlock()

	for _, o := range observers {
		o.fn(ev)
	}
}
