// Package view is the interactive todo list (bubbletea).
//
// The model owns the store.State. Network calls run as tea.Cmds and their
// results come back as messages, so the state is only ever touched from
// Update, one response at a time, in arrival order.
package view

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
	"github.com/idilsaglam/tada/internal/syncer"
)

// row adapts a Todo to bubbles/list.Item
type row struct {
	todo model.Todo
}

func (r row) Title() string       { return r.todo.Task }
func (r row) Description() string { return "" }
func (r row) FilterValue() string { return r.todo.Task }

// syncedMsg carries the outcome of one sync operation back to Update.
type syncedMsg struct {
	ev store.Event
}

// Model is the TodoListView.
type Model struct {
	ctx   context.Context
	sync  *syncer.Syncer
	state *store.State

	list  list.Model
	input textinput.Model // bound to the draft text
	form  bool            // true while the input has focus

	status string // last failure, cleared by the next success
	width  int
	height int
}

// Custom delegate to control how rows render (single line)
type rowDelegate struct{}

func (d rowDelegate) Height() int                               { return 1 }
func (d rowDelegate) Spacing() int                              { return 0 }
func (d rowDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	r, ok := item.(row)
	if !ok {
		return
	}
	fmt.Fprintln(w, renderRow(r.todo, index == m.Index()))
}

// renderRow draws one todo: selection marker, check box, task text.
func renderRow(t model.Todo, selected bool) string {
	box := mutedStyle.Render(boxUnchecked)
	text := t.Task
	if t.Completed {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(t.Task)
	}
	prefix := "  "
	if selected {
		prefix = selectedStyle.Render(">") + " "
	}
	return prefix + box + " " + text
}

var (
	addBind     = key.NewBinding(key.WithKeys("a", "tab"), key.WithHelp("a", "add"))
	toggleBind  = key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle"))
	deleteBind  = key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete"))
	refreshBind = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
)

// New builds the view. Nothing is fetched until Init runs.
func New(ctx context.Context, s *syncer.Syncer) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	l := list.New(nil, rowDelegate{}, 76, 16)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.SetStatusBarItemName("todo", "todos")
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{addBind, toggleBind, deleteBind, refreshBind}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Add a new todo..."
	ti.CharLimit = 200

	m := Model{
		ctx:   ctx,
		sync:  s,
		state: store.New(),
		list:  l,
		input: ti,
	}
	m.refresh()
	return m
}

// State exposes the store for inspection.
func (m Model) State() *store.State { return m.state }

// Init lists the todos once per mount.
func (m Model) Init() tea.Cmd {
	return m.run(m.sync.List())
}

// run turns an Op into a Cmd; nil stays nil (nothing to send).
func (m Model) run(op syncer.Op) tea.Cmd {
	if op == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return syncedMsg{ev: op(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case syncedMsg:
		m.state.Apply(msg.ev)
		switch ev := msg.ev.(type) {
		case store.Failed:
			m.status = ev.Error()
		case store.Created:
			m.status = ""
			m.input.SetValue(m.state.Draft())
		default:
			m.status = ""
		}
		m.refresh()
		m.resize()
		return m, nil

	case tea.KeyMsg:
		if m.form {
			return m.updateForm(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	if m.form {
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// form mode: keystrokes edit the draft
func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		return m, m.run(m.sync.Create(m.state.Draft()))
	case "esc", "tab":
		m.form = false
		m.input.Blur()
		m.resize()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.state.Apply(store.DraftEdited{Text: m.input.Value()})
	return m, cmd
}

// list mode: keys act on the selected row
func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "a", "tab":
		m.form = true
		m.resize()
		cmd := m.input.Focus()
		return m, cmd
	case " ", "enter":
		if id, ok := m.selected(); ok {
			return m, m.run(m.sync.Toggle(m.state, id))
		}
		return m, nil
	case "d", "x":
		if id, ok := m.selected(); ok {
			return m, m.run(m.sync.Delete(id))
		}
		return m, nil
	case "r":
		return m, m.run(m.sync.List())
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) selected() (int, bool) {
	r, ok := m.list.SelectedItem().(row)
	if !ok {
		return 0, false
	}
	return r.todo.ID, true
}

// refresh projects the store into the list widget.
func (m *Model) refresh() {
	todos := m.state.Todos()
	items := make([]list.Item, 0, len(todos))
	for _, t := range todos {
		items = append(items, row{todo: t})
	}
	m.list.SetItems(items)
	if n := len(items); n > 0 && m.list.Index() >= n {
		m.list.Select(n - 1)
	}
	m.list.Title = header(m.state)
}

func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	// frame (2 border + 2 padding) and the form box (4 rows) around the list
	listHeight := m.height - 2 - 4
	if m.status != "" {
		listHeight--
	}
	if listHeight < 3 {
		listHeight = 3
	}
	m.list.SetSize(m.width-4, listHeight)
}

func (m Model) View() string {
	var b strings.Builder

	formTitle := "Add a new todo"
	if !m.form {
		formTitle += mutedStyle.Render("  (a to type, enter to add)")
	}
	b.WriteString(frameStyle.Render(formTitle + "\n" + m.input.View()))
	b.WriteString("\n")

	if m.state.Len() == 0 {
		b.WriteString(header(m.state) + "\n\n")
		b.WriteString(mutedStyle.Render(Placeholder))
	} else {
		b.WriteString(m.list.View())
	}

	if m.status != "" {
		b.WriteString("\n" + errorStyle.Render("✖ "+m.status))
	}
	return frameStyle.Render(b.String())
}

// header with live counts
func header(st *store.State) string {
	done, pending := st.Stats()
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Todo List"),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), pending,
		accentStyle.Render("Total"), st.Len(),
	)
}

// Run mounts the view on the terminal until the user quits.
func Run(ctx context.Context, s *syncer.Syncer, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(ctx, s), opts...)
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		// cancelled from outside: not a failure of the view
		return nil
	}
	return err
}
