package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-runewidth"

	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/logging"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
	"github.com/idilsaglam/tada/internal/syncer"
	"github.com/idilsaglam/tada/internal/ui"
	"github.com/idilsaglam/tada/internal/view"
)

// Env is where a run writes.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer

	// Interactive mounts the view; defaults to view.Run.
	Interactive func(ctx context.Context, s *syncer.Syncer) error
}

func (e *Env) defaults() {
	if e.Stdout == nil {
		e.Stdout = os.Stdout
	}
	if e.Stderr == nil {
		e.Stderr = os.Stderr
	}
	if e.Interactive == nil {
		e.Interactive = func(ctx context.Context, s *syncer.Syncer) error { return view.Run(ctx, s) }
	}
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, cfg *config.Config, env Env) int {
	env.defaults()
	ui.SetTheme(cfg.Theme)
	ui.SetColorForcing(cfg.Color == config.ColorAlways, cfg.Color == config.ColorNever)

	cmd, a := "tui", args
	if len(args) > 0 {
		cmd, a = args[0], args[1:]
	}

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(env.Stdout)
		return 0

	case "tui":
		return doInteractive(ctx, cfg, env)

	case "ls":
		return withSyncer(cfg, env, func(s *syncer.Syncer) int { return doList(ctx, s, cfg, env) })

	case "add":
		if len(a) == 0 {
			ui.Fail(env.Stderr, "usage: todo add <task...>")
			return 2
		}
		task := strings.Join(a, " ")
		return withSyncer(cfg, env, func(s *syncer.Syncer) int { return doAdd(ctx, s, task, env) })

	case "done":
		id, code := parseID(env, "done", a)
		if code != 0 {
			return code
		}
		return withSyncer(cfg, env, func(s *syncer.Syncer) int { return doToggle(ctx, s, id, env) })

	case "rm":
		id, code := parseID(env, "rm", a)
		if code != 0 {
			return code
		}
		return withSyncer(cfg, env, func(s *syncer.Syncer) int { return doRemove(ctx, s, id, env) })
	}

	ui.Fail(env.Stderr, "unknown subcommand: "+cmd)
	fmt.Fprintln(env.Stderr)
	PrintHelp(env.Stderr)
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `todo - a tiny client for a remote Todo service

Usage:
  todo [flags] <subcommand> [args]

Subcommands:
  tui                Interactive list (default)
  ls                 List todos
  add <task...>      Add a new todo (task can be multiple words)
  done <id>          Toggle completion of todo <id>
  rm <id>            Delete todo <id>

Flags:
  -api <url>         Todo service base URL (default %s)
  -group             Group ls output by pending/done
  -theme <name>      classic, neon, mono
  -color <when>      auto, always, never (NO_COLOR also disables)
  -log-level <lvl>   debug, info, warn, error
  -log-format <fmt>  text, json, logfmt
  -log-file <path>   Diagnostic log for the interactive view

Examples:
  todo add "Buy milk"
  todo ls
  todo done 2
  todo rm 3
`, api.DefaultBaseURL)
}

func parseID(env Env, cmd string, a []string) (int, int) {
	if len(a) != 1 {
		ui.Fail(env.Stderr, "usage: todo "+cmd+" <id>")
		return 0, 2
	}
	n, err := strconv.Atoi(a[0])
	if err != nil {
		ui.Fail(env.Stderr, cmd+": not a number: "+a[0])
		return 0, 2
	}
	return n, 0
}

func newSyncer(cfg *config.Config, logger *log.Logger) (*syncer.Syncer, error) {
	client, err := api.New(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	return syncer.New(client, logger), nil
}

// withSyncer wires a syncer logging to stderr and runs fn with it.
func withSyncer(cfg *config.Config, env Env, fn func(*syncer.Syncer) int) int {
	logger := logging.New(env.Stderr, logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	s, err := newSyncer(cfg, logger)
	if err != nil {
		ui.Fail(env.Stderr, "config: "+err.Error())
		return 1
	}
	return fn(s)
}

// -------------- subcommand impls ----------------

// The interactive view owns the terminal, so diagnostics go to a file.
func doInteractive(ctx context.Context, cfg *config.Config, env Env) int {
	f, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		ui.Fail(env.Stderr, "log: "+err.Error())
		return 1
	}
	defer f.Close()

	logger := logging.New(f, logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Timestamp: true})
	s, err := newSyncer(cfg, logger)
	if err != nil {
		ui.Fail(env.Stderr, "config: "+err.Error())
		return 1
	}
	logger.Info("view mounted", "api", cfg.BaseURL)
	if err := env.Interactive(ctx, s); err != nil {
		ui.Fail(env.Stderr, "tui: "+err.Error())
		return 1
	}
	return 0
}

// load runs one List against a fresh state.
func load(ctx context.Context, s *syncer.Syncer, env Env) (*store.State, bool) {
	st := store.New()
	ev := s.List()(ctx)
	st.Apply(ev)
	if f, ok := ev.(store.Failed); ok {
		ui.Fail(env.Stderr, f.Error())
		return nil, false
	}
	return st, true
}

func doList(ctx context.Context, s *syncer.Syncer, cfg *config.Config, env Env) int {
	st, ok := load(ctx, s, env)
	if !ok {
		return 1
	}
	todos := st.Todos()

	// Header + progress
	d, p := st.Stats()
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(ui.Current().Title, "Todo List"),
		ui.C(ui.Current().Success, ui.Current().SymDone), d,
		ui.C(ui.Current().Pending, ui.Current().SymUnchecked), p,
		ui.C(ui.Current().Accent, "Total"), len(todos),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, ui.C(ui.Current().Muted, ui.ProgressBar(d, d+p, 28)))
	lines = append(lines, "")

	switch {
	case len(todos) == 0:
		lines = append(lines, ui.C(ui.Current().Muted, view.Placeholder))
	case cfg.Group:
		lines = append(lines, groupLines(todos)...)
	default:
		lines = append(lines, flatLines(todos)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(ui.Current().Muted, "Tip: add with `todo add \"Buy milk\"`"))
	ui.Panel(env.Stdout, lines)
	return 0
}

func doAdd(ctx context.Context, s *syncer.Syncer, task string, env Env) int {
	op := s.Create(task)
	if op == nil {
		ui.Fail(env.Stderr, "add: empty task")
		return 2
	}
	switch ev := op(ctx).(type) {
	case store.Created:
		ui.OK(env.Stdout, fmt.Sprintf("added #%d", ev.Todo.ID))
		return 0
	case store.Failed:
		ui.Fail(env.Stderr, ev.Error())
	}
	return 1
}

func doToggle(ctx context.Context, s *syncer.Syncer, id int, env Env) int {
	st, ok := load(ctx, s, env)
	if !ok {
		return 1
	}
	op := s.Toggle(st, id)
	if op == nil {
		ui.Fail(env.Stderr, fmt.Sprintf("no todo with id %d", id))
		fmt.Fprintln(env.Stderr, ui.Paint(env.Stderr, ui.Dim(), "Hint: run `todo ls` to see valid ids"))
		return 2
	}
	switch ev := op(ctx).(type) {
	case store.Toggled:
		state := "pending"
		if ev.Todo.Completed {
			state = "done"
		}
		ui.OK(env.Stdout, fmt.Sprintf("#%d %s", id, state))
		return 0
	case store.Failed:
		ui.Fail(env.Stderr, ev.Error())
	}
	return 1
}

func doRemove(ctx context.Context, s *syncer.Syncer, id int, env Env) int {
	switch ev := s.Delete(id)(ctx).(type) {
	case store.Deleted:
		ui.OK(env.Stdout, fmt.Sprintf("removed #%d", id))
		return 0
	case store.Failed:
		ui.Fail(env.Stderr, ev.Error())
	}
	return 1
}

// -------------- rendering helpers --------------

// maxTaskWidth is the display width a task may take in ls output.
const maxTaskWidth = 80

func flatLines(todos []model.Todo) []string {
	out := make([]string, 0, len(todos))
	for _, t := range todos {
		idx := fmt.Sprintf("#%-3d", t.ID)
		box := ui.Current().BoxUnchecked
		color := ui.Current().Muted
		task := runewidth.Truncate(t.Task, maxTaskWidth, "...")
		if t.Completed {
			box, color = ui.Current().BoxChecked, ui.Current().Success
			task = ui.C(ui.Current().Done, task)
		}
		out = append(out, fmt.Sprintf("%s %s %s",
			ui.C(ui.Dim(), idx), ui.C(color, box), task))
	}
	return out
}

func groupLines(todos []model.Todo) []string {
	var pend, done []model.Todo
	for _, t := range todos {
		if t.Completed {
			done = append(done, t)
		} else {
			pend = append(pend, t)
		}
	}
	var lines []string
	lines = append(lines, ui.C(ui.Current().Accent, "Pending"))
	if len(pend) == 0 {
		lines = append(lines, ui.C(ui.Current().Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(ui.Current().Accent, "Done"))
	if len(done) == 0 {
		lines = append(lines, ui.C(ui.Current().Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(done)...)
	}
	return lines
}
