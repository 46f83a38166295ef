package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/todoflow-labs/todo-client/internal/controller"
	"github.com/todoflow-labs/todo-client/internal/dto"
	"github.com/todoflow-labs/todo-client/internal/ui"
)

// Getter fetches a single todo for `show`.
type Getter interface {
	Get(ctx context.Context, id int64) (dto.Todo, error)
}

// Runner dispatches subcommands onto a list controller.
type Runner struct {
	ctrl   *controller.Controller
	getter Getter
	out    io.Writer
	errOut io.Writer
}

func NewRunner(ctrl *controller.Controller, getter Getter, out, errOut io.Writer) *Runner {
	return &Runner{ctrl: ctrl, getter: getter, out: out, errOut: errOut}
}

// pageFlags select the page an index-based subcommand works on.
type pageFlags struct {
	sort string
	desc bool
	page int
}

func (p *pageFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&p.sort, "sort", string(dto.SortByID), "sort column (id, title, description, completed, created_date, completed_date)")
	fs.BoolVar(&p.desc, "desc", false, "sort descending")
	fs.IntVar(&p.page, "page", 1, "1-based page number")
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func (r *Runner) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		r.PrintHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		r.PrintHelp()
		return 0
	case "ls":
		return r.doList(ctx, a)
	case "add":
		return r.doAdd(ctx, a)
	case "done":
		return r.doIndexed(ctx, "done", a, r.toggle)
	case "rm":
		return r.doIndexed(ctx, "rm", a, r.remove)
	case "show":
		return r.doShow(ctx, a)
	}

	r.fail("unknown subcommand: " + cmd)
	fmt.Fprintln(r.errOut)
	r.PrintHelp()
	return 2
}

func (r *Runner) PrintHelp() {
	fmt.Fprint(r.out, `todo - a client for the todo service

Usage:
  todo                    Open the interactive list
  todo <subcommand> [args]

Subcommands:
  ls [--sort F] [--desc] [--page N]     List one page of todos
  add [--tags a,b] <title...>           Add a new todo
  done [page flags] <index>             Toggle done for the 1-based index on the page
  rm [page flags] <index>               Delete the todo at the 1-based index on the page
  show <id>                             Show one todo in full

Examples:
  todo add --tags Work "Write report"
  todo ls --sort title --desc
  todo done 2
  todo rm --page 2 3
`)
}

func (r *Runner) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.errOut)
	return fs
}

func (r *Runner) doList(ctx context.Context, args []string) int {
	var pf pageFlags
	fs := r.flagSet("ls")
	pf.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if code := r.load(ctx, pf); code != 0 {
		return code
	}
	r.render()
	return 0
}

func (r *Runner) doAdd(ctx context.Context, args []string) int {
	fs := r.flagSet("add")
	tags := fs.String("tags", "", "comma-separated tags")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		r.fail("usage: todo add [--tags a,b] <title...>")
		return 2
	}

	r.ctrl.SetDraft(dto.Todo{
		Title: strings.Join(fs.Args(), " "),
		Tags:  dto.ParseTags(*tags),
	})
	if err := r.ctrl.Save(ctx); err != nil {
		var verr *dto.ValidationError
		if errors.As(err, &verr) {
			r.fail("add: " + verr.Error())
			return 2
		}
		r.fail("add: " + err.Error())
		return 1
	}
	r.ok("added")
	if st := r.ctrl.State(); st.LastError != "" {
		fmt.Fprintln(r.errOut, ui.Muted.Render("could not refresh the list: "+st.LastError))
	}
	return 0
}

func (r *Runner) doIndexed(ctx context.Context, name string, args []string, act func(context.Context, dto.Todo, int) error) int {
	var pf pageFlags
	fs := r.flagSet(name)
	pf.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		r.fail(fmt.Sprintf("usage: todo %s [page flags] <index>", name))
		return 2
	}
	n, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		r.fail(name + ": not a number: " + fs.Arg(0))
		return 2
	}
	if code := r.load(ctx, pf); code != 0 {
		return code
	}

	items := r.ctrl.State().Items
	if n < 1 || n > len(items) {
		r.fail(fmt.Sprintf("index out of range: have %d, got %d", len(items), n))
		fmt.Fprintln(r.errOut, ui.Muted.Render("Hint: run `todo ls` to see valid indexes"))
		return 2
	}
	if err := act(ctx, items[n-1], n-1); err != nil {
		r.fail(name + ": " + err.Error())
		return 1
	}
	return 0
}

func (r *Runner) toggle(ctx context.Context, todo dto.Todo, _ int) error {
	if err := r.ctrl.ToggleStatus(ctx, todo); err != nil {
		return err
	}
	if st := r.ctrl.State(); st.LastToggle != nil && st.LastToggle.Prior {
		r.ok("reopened")
	} else {
		r.ok("done")
	}
	return nil
}

func (r *Runner) remove(ctx context.Context, todo dto.Todo, index int) error {
	if err := r.ctrl.Delete(ctx, todo.ID, index); err != nil {
		return err
	}
	r.ok("removed")
	return nil
}

func (r *Runner) doShow(ctx context.Context, args []string) int {
	if len(args) != 1 {
		r.fail("usage: todo show <id>")
		return 2
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		r.fail("show: not an id: " + args[0])
		return 2
	}
	todo, err := r.getter.Get(ctx, id)
	if err != nil {
		r.fail("show: " + err.Error())
		return 1
	}

	lines := []string{
		fmt.Sprintf("%s %s", ui.Box(todo.Completed), ui.Title.Render(todo.Title)),
		"",
		field("id", strconv.FormatInt(todo.ID, 10)),
	}
	if todo.Description != "" {
		lines = append(lines, field("description", todo.Description))
	}
	if len(todo.Tags) > 0 {
		lines = append(lines, field("tags", ui.Tags(todo.Tags)))
	}
	if todo.CreatedDate != nil {
		lines = append(lines, field("created", todo.CreatedDate.Format("2006-01-02 15:04")))
	}
	if todo.CompletedDate != nil {
		lines = append(lines, field("completed", todo.CompletedDate.Format("2006-01-02 15:04")))
	}
	fmt.Fprintln(r.out, ui.Panel(lines...))
	return 0
}

func (r *Runner) load(ctx context.Context, pf pageFlags) int {
	sortField, err := dto.ParseSortField(pf.sort)
	if err != nil {
		r.fail(err.Error())
		return 2
	}
	if pf.page < 1 {
		r.fail(fmt.Sprintf("page must be at least 1, got %d", pf.page))
		return 2
	}
	if err := r.ctrl.Load(ctx, sortField, dto.OrderOf(!pf.desc), pf.page); err != nil {
		r.fail("load: " + err.Error())
		return 1
	}
	return 0
}

// -------------- rendering helpers --------------

func (r *Runner) render() {
	st := r.ctrl.State()
	done := 0
	for _, t := range st.Items {
		if t.Completed {
			done++
		}
	}

	header := fmt.Sprintf("%s  %s %d  %s %d  %s %s %s  page %d",
		ui.Title.Render("Todos"),
		ui.Success.Render("✔"), done,
		ui.Pending.Render("•"), len(st.Items)-done,
		ui.Accent.Render("sort"), st.SortField, st.SortOrder(),
		st.Page,
	)
	lines := []string{header, ""}
	if len(st.Items) == 0 {
		lines = append(lines, ui.Muted.Render("no items"))
	}
	for i, t := range st.Items {
		title := t.Title
		if rs := []rune(title); len(rs) > 80 {
			title = string(rs[:77]) + "..."
		}
		line := fmt.Sprintf("%s %s %s", ui.Muted.Render(fmt.Sprintf("%2d.", i+1)), ui.Box(t.Completed), title)
		if tags := ui.Tags(t.Tags); tags != "" {
			line += " " + tags
		}
		lines = append(lines, line)
	}

	var nav []string
	if st.ShowPrev {
		nav = append(nav, fmt.Sprintf("prev: --page %d", st.Page-1))
	}
	if st.ShowNext {
		nav = append(nav, fmt.Sprintf("next: --page %d", st.Page+1))
	}
	if len(nav) > 0 {
		lines = append(lines, "", ui.Muted.Render(strings.Join(nav, "  ")))
	}
	fmt.Fprintln(r.out, ui.Panel(lines...))
}

func field(name, value string) string {
	return fmt.Sprintf("%s %s", ui.Muted.Render(fmt.Sprintf("%-12s", name)), value)
}

func (r *Runner) ok(msg string) {
	fmt.Fprintln(r.out, ui.Success.Render("✔ "+msg))
}

func (r *Runner) fail(msg string) {
	fmt.Fprintln(r.errOut, ui.Error.Render("✖ "+msg))
}
