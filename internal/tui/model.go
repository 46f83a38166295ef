package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/todoflow-labs/todo-client/internal/controller"
	"github.com/todoflow-labs/todo-client/internal/dto"
	"github.com/todoflow-labs/todo-client/internal/ui"
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirmDelete
)

// form inputs, in tab order
const (
	inputTitle = iota
	inputDescription
	inputTags
	inputDate
	inputTime
	inputCount
)

var inputLabels = [inputCount]string{"Title", "Description", "Tags", "Date", "Time"}

type keyMap struct {
	Up, Down     key.Binding
	Toggle       key.Binding
	Edit, New    key.Binding
	Delete       key.Binding
	Next, Prev   key.Binding
	Refresh      key.Binding
	Quit         key.Binding
	Save, Cancel key.Binding
	NextField    key.Binding
	PrevField    key.Binding
	Confirm      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Toggle:    key.NewBinding(key.WithKeys("x", " "), key.WithHelp("x", "done")),
		Edit:      key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		New:       key.NewBinding(key.WithKeys("a", "n"), key.WithHelp("a", "add")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Next:      key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→", "next page")),
		Prev:      key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←", "prev page")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Save:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		NextField: key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		PrevField: key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Confirm:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
	}
}

// changedMsg tells the model the controller state moved.
type changedMsg struct{}

type intentDoneMsg struct {
	intent string
	err    error
}

// Model is the interactive presentation adapter over a list controller. It
// renders controller snapshots and turns keys into intents; it never edits
// the list itself.
type Model struct {
	ctx     context.Context
	ctrl    *controller.Controller
	changes chan struct{}
	keys    keyMap
	spinner spinner.Model

	mode    mode
	cursor  int
	form    dto.TodoForm
	inputs  []textinput.Model
	focus   int
	formErr string
	notice  string
}

func New(ctx context.Context, ctrl *controller.Controller) Model {
	m := Model{
		ctx:     ctx,
		ctrl:    ctrl,
		changes: make(chan struct{}, 1),
		keys:    defaultKeyMap(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		inputs:  make([]textinput.Model, inputCount),
	}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.CharLimit = 200
		m.inputs[i] = ti
	}
	m.inputs[inputTitle].CharLimit = dto.TitleMaxLen
	m.inputs[inputTitle].Placeholder = "What needs doing?"
	m.inputs[inputTags].Placeholder = "comma, separated"
	m.inputs[inputDate].Placeholder = "2006-01-02"
	m.inputs[inputTime].Placeholder = "15:04"
	return m
}

// Notify is the controller observer. It never blocks: pending
// notifications are coalesced.
func (m Model) Notify(controller.Event) {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}

func waitForChange(changes chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-changes
		return changedMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForChange(m.changes),
		m.spinner.Tick,
		m.intent("load", m.ctrl.Refresh),
	)
}

func (m Model) intent(name string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return intentDoneMsg{intent: name, err: fn(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		m.clampCursor()
		return m, waitForChange(m.changes)

	case intentDoneMsg:
		m.notice = ""
		switch {
		case errors.Is(msg.err, controller.ErrBusy):
			m.notice = "still working on the previous request"
		case msg.intent == "save" && msg.err == nil:
			m.closeForm()
		}
		m.clampCursor()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.ctrl.State()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(st.Items)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.New):
		m.ctrl.CancelEdit()
		return m, m.openForm(dto.TodoForm{})
	case key.Matches(msg, m.keys.Edit):
		todo, ok := m.selected(st)
		if !ok {
			return m, nil
		}
		if err := m.ctrl.BeginEdit(todo, m.cursor); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		return m, m.openForm(dto.FormFromTodo(todo))
	}

	// request-issuing actions are disabled while busy
	if st.Busy {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Toggle):
		if todo, ok := m.selected(st); ok {
			return m, m.intent("toggle", func(ctx context.Context) error {
				return m.ctrl.ToggleStatus(ctx, todo)
			})
		}
	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.selected(st); ok {
			m.mode = modeConfirmDelete
		}
	case key.Matches(msg, m.keys.Next):
		if st.ShowNext {
			m.cursor = 0
			return m, m.intent("page", func(ctx context.Context) error { return m.ctrl.ChangePage(ctx, 1) })
		}
	case key.Matches(msg, m.keys.Prev):
		if st.ShowPrev {
			m.cursor = 0
			return m, m.intent("page", func(ctx context.Context) error { return m.ctrl.ChangePage(ctx, -1) })
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.intent("load", m.ctrl.Refresh)
	default:
		if field, ok := sortKey(msg.String()); ok {
			m.cursor = 0
			return m, m.intent("sort", func(ctx context.Context) error { return m.ctrl.ChangeSort(ctx, field) })
		}
	}
	return m, nil
}

// sortKey maps "1".."6" to the sort columns.
func sortKey(s string) (dto.SortField, bool) {
	if len(s) != 1 || s[0] < '1' || int(s[0]-'1') >= len(dto.SortFields) {
		return "", false
	}
	return dto.SortFields[s[0]-'1'], true
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeList
	if !key.Matches(msg, m.keys.Confirm) {
		return m, nil
	}
	st := m.ctrl.State()
	todo, ok := m.selected(st)
	if !ok {
		return m, nil
	}
	index := m.cursor
	return m, m.intent("delete", func(ctx context.Context) error {
		return m.ctrl.Delete(ctx, todo.ID, index)
	})
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.ctrl.CancelEdit()
		m.closeForm()
		return m, nil
	case key.Matches(msg, m.keys.Save):
		todo, err := m.currentForm().ToTodo()
		if err != nil {
			m.formErr = err.Error()
			return m, nil
		}
		m.formErr = ""
		m.ctrl.SetDraft(todo)
		if m.ctrl.State().Busy {
			m.notice = "still working on the previous request"
			return m, nil
		}
		return m, m.intent("save", m.ctrl.Save)
	case key.Matches(msg, m.keys.NextField):
		return m, m.focusInput((m.focus + 1) % inputCount)
	case key.Matches(msg, m.keys.PrevField):
		return m, m.focusInput((m.focus + inputCount - 1) % inputCount)
	}

	if name, ok := tagKey(msg.String()); ok {
		f := m.currentForm()
		f.ToggleTag(name)
		m.inputs[inputTags].SetValue(f.Tags)
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// tagKey maps alt+1..alt+5 to the common tags.
func tagKey(s string) (string, bool) {
	n, found := strings.CutPrefix(s, "alt+")
	if !found || len(n) != 1 || n[0] < '1' || int(n[0]-'1') >= len(dto.CommonTags) {
		return "", false
	}
	return dto.CommonTags[n[0]-'1'], true
}

func (m *Model) openForm(f dto.TodoForm) tea.Cmd {
	m.mode = modeForm
	m.form = f
	m.formErr = ""
	values := [inputCount]string{f.Title, f.Description, f.Tags, f.CreatedDate, f.CreatedTime}
	for i := range m.inputs {
		m.inputs[i].SetValue(values[i])
		m.inputs[i].CursorEnd()
	}
	return m.focusInput(inputTitle)
}

func (m *Model) closeForm() {
	m.mode = modeList
	m.formErr = ""
	for i := range m.inputs {
		m.inputs[i].Blur()
		m.inputs[i].SetValue("")
	}
}

func (m *Model) focusInput(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

func (m Model) currentForm() dto.TodoForm {
	f := m.form
	f.Title = m.inputs[inputTitle].Value()
	f.Description = m.inputs[inputDescription].Value()
	f.Tags = m.inputs[inputTags].Value()
	f.CreatedDate = m.inputs[inputDate].Value()
	f.CreatedTime = m.inputs[inputTime].Value()
	return f
}

func (m Model) selected(st controller.ViewState) (dto.Todo, bool) {
	if m.cursor < 0 || m.cursor >= len(st.Items) {
		return dto.Todo{}, false
	}
	return st.Items[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.ctrl.State().Items)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) View() string {
	st := m.ctrl.State()

	var lines []string
	lines = append(lines, m.header(st), "")
	if len(st.Items) == 0 {
		lines = append(lines, ui.Muted.Render("No todos on this page."))
	}
	for i, todo := range st.Items {
		lines = append(lines, m.row(i, todo))
	}
	lines = append(lines, "", m.pager(st))

	if st.LastError != "" {
		lines = append(lines, ui.Error.Render("✖ "+st.LastError))
	}
	if m.notice != "" {
		lines = append(lines, ui.Pending.Render(m.notice))
	}

	switch m.mode {
	case modeForm:
		lines = append(lines, "", m.formView(st))
	case modeConfirmDelete:
		if todo, ok := m.selected(st); ok {
			lines = append(lines, "", ui.Error.Render(fmt.Sprintf("Delete %q? (y/N)", todo.Title)))
		}
	default:
		lines = append(lines, "", ui.Help.Render("a add • e edit • x done • d delete • 1-6 sort • ←/→ page • r reload • q quit"))
	}
	return ui.Panel(lines...)
}

func (m Model) header(st controller.ViewState) string {
	done := 0
	for _, t := range st.Items {
		if t.Completed {
			done++
		}
	}
	arrow := "↑"
	if !st.SortAscending {
		arrow = "↓"
	}
	h := fmt.Sprintf("%s   %s %d  %s %d   %s %s %s   page %d",
		ui.Title.Render("Todos"),
		ui.Success.Render("✔"), done,
		ui.Pending.Render("•"), len(st.Items)-done,
		ui.Accent.Render("sort"), st.SortField, arrow,
		st.Page,
	)
	if st.Busy {
		h += "  " + m.spinner.View()
	}
	return h
}

func (m Model) row(i int, todo dto.Todo) string {
	title := todo.Title
	if todo.Completed {
		title = ui.Done.Render(title)
	}
	line := fmt.Sprintf("%s %s", ui.Box(todo.Completed), title)
	if len(todo.Tags) > 0 {
		line += " " + ui.Tags(todo.Tags)
	}
	if todo.CompletedDate != nil {
		line += " " + ui.Muted.Render("done "+todo.CompletedDate.Format("2006-01-02 15:04"))
	}

	prefix := "  "
	if i == m.cursor && m.mode != modeForm {
		prefix = ui.Selected.Render("> ")
	}
	return prefix + line
}

func (m Model) pager(st controller.ViewState) string {
	prev, next := ui.Muted.Render("◀ prev"), ui.Muted.Render("next ▶")
	if st.ShowPrev {
		prev = ui.Accent.Render("◀ prev")
	}
	if st.ShowNext {
		next = ui.Accent.Render("next ▶")
	}
	return prev + "   " + next
}

func (m Model) formView(st controller.ViewState) string {
	title := "Add new todo"
	if st.Editing() {
		title = fmt.Sprintf("Edit todo #%d", st.Pending.Todo.ID)
	}
	lines := []string{ui.Title.Render(title)}
	for i, in := range m.inputs {
		lines = append(lines, fmt.Sprintf("%-12s %s", inputLabels[i], in.View()))
	}

	f := m.currentForm()
	var tags []string
	for i, name := range dto.CommonTags {
		label := fmt.Sprintf("alt+%d %s", i+1, name)
		if f.HasTag(name) {
			label = ui.Tag.Render(label)
		} else {
			label = ui.Muted.Render(label)
		}
		tags = append(tags, label)
	}
	lines = append(lines, strings.Join(tags, "  "))

	if m.formErr != "" {
		lines = append(lines, ui.Error.Render(m.formErr))
	}
	lines = append(lines, ui.Help.Render("enter save • tab next field • esc cancel"))
	return ui.Panel(lines...)
}

// Run starts the interactive list and blocks until the user quits.
func Run(ctx context.Context, ctrl *controller.Controller) error {
	m := New(ctx, ctrl)
	unsubscribe := ctrl.Subscribe(m.Notify)
	defer unsubscribe()

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
