package view

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
	"github.com/idilsaglam/tada/internal/stubserver"
	"github.com/idilsaglam/tada/internal/syncer"
)

var ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)

func plain(s string) string { return ansiRegexp.ReplaceAllString(s, "") }

var (
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// mount builds a sized view against a stub service and runs the initial list.
func mount(t *testing.T, seed ...model.Todo) (Model, *stubserver.Server) {
	t.Helper()
	stub := stubserver.New(nil, seed...)
	srv := httptest.NewServer(stub.Routes())
	t.Cleanup(srv.Close)

	client, err := api.New(srv.URL, api.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	m := New(context.Background(), syncer.New(client, nil))
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	m = deliver(t, m, m.Init())
	return m, stub
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

// press sends a key and returns the model plus the command it produced.
func press(t *testing.T, m Model, k tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(k)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

// deliver runs a sync command and feeds its result back into the model.
func deliver(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd, "expected a sync command")
	msg := cmd()
	_, ok := msg.(syncedMsg)
	require.True(t, ok, "expected syncedMsg, got %T", msg)
	return update(t, m, msg)
}

func TestRenderRow(t *testing.T) {
	assert.Equal(t, "  ☐ a", plain(renderRow(model.Todo{ID: 1, Task: "a"}, false)))
	assert.Equal(t, "  ☑ a", plain(renderRow(model.Todo{ID: 1, Task: "a", Completed: true}, false)))
	assert.Equal(t, "> ☐ a", plain(renderRow(model.Todo{ID: 1, Task: "a"}, true)))
}

func TestView_EndToEnd(t *testing.T) {
	m, stub := mount(t, model.Todo{ID: 1, Task: "a"})

	out := plain(m.View())
	assert.Contains(t, out, "☐ a")
	assert.NotContains(t, out, Placeholder)

	m, cmd := press(t, m, keySpace)
	m = deliver(t, m, cmd)
	out = plain(m.View())
	assert.Contains(t, out, "☑ a")
	assert.Equal(t, []model.Todo{{ID: 1, Task: "a", Completed: true}}, m.State().Todos())

	m, cmd = press(t, m, runes("d"))
	m = deliver(t, m, cmd)
	assert.Contains(t, plain(m.View()), Placeholder)
	assert.Empty(t, stub.Todos())
	assert.Equal(t, 3, stub.Requests())
}

func TestView_EmptyPlaceholder(t *testing.T) {
	m, _ := mount(t)
	out := plain(m.View())
	assert.Contains(t, out, Placeholder)
	assert.Contains(t, out, "Add a new todo")
}

func TestView_CreateFromForm(t *testing.T) {
	m, stub := mount(t, model.Todo{ID: 1, Task: "a"})

	m, _ = press(t, m, runes("a"))
	require.True(t, m.form)
	m, _ = press(t, m, runes("buy milk"))
	assert.Equal(t, "buy milk", m.State().Draft())

	m, cmd := press(t, m, keyEnter)
	m = deliver(t, m, cmd)

	assert.Equal(t, []model.Todo{{ID: 1, Task: "a"}, {ID: 2, Task: "buy milk"}}, m.State().Todos())
	assert.Equal(t, "", m.State().Draft())
	assert.Equal(t, "", m.input.Value())
	assert.Len(t, stub.Todos(), 2)
	assert.Contains(t, plain(m.View()), "☐ buy milk")
}

func TestView_CreateBlankSendsNothing(t *testing.T) {
	m, stub := mount(t)

	m, _ = press(t, m, runes("a"))
	m, _ = press(t, m, runes("   "))
	m, cmd := press(t, m, keyEnter)

	assert.Nil(t, cmd)
	assert.Equal(t, 1, stub.Requests())
	assert.Equal(t, "   ", m.State().Draft())
}

func TestView_EscKeepsDraft(t *testing.T) {
	m, _ := mount(t)

	m, _ = press(t, m, runes("a"))
	m, _ = press(t, m, runes("half"))
	m, _ = press(t, m, keyEsc)

	assert.False(t, m.form)
	assert.Equal(t, "half", m.State().Draft())
}

func TestView_DeleteSelected(t *testing.T) {
	m, _ := mount(t, model.Todo{ID: 1, Task: "a"}, model.Todo{ID: 2, Task: "b"}, model.Todo{ID: 3, Task: "c"})

	m, _ = press(t, m, keyDown)
	m, cmd := press(t, m, runes("d"))
	m = deliver(t, m, cmd)

	assert.Equal(t, []model.Todo{{ID: 1, Task: "a"}, {ID: 3, Task: "c"}}, m.State().Todos())
}

func TestView_FailureSurfacesAndKeepsState(t *testing.T) {
	m, stub := mount(t, model.Todo{ID: 1, Task: "a"})
	stub.FailWith(http.StatusInternalServerError)

	m, cmd := press(t, m, keySpace)
	m = deliver(t, m, cmd)

	assert.Equal(t, []model.Todo{{ID: 1, Task: "a"}}, m.State().Todos())
	out := plain(m.View())
	assert.Contains(t, out, "✖ toggle")
	assert.Contains(t, out, "☐ a")

	stub.FailWith(0)
	m, cmd = press(t, m, runes("r"))
	m = deliver(t, m, cmd)
	assert.NotContains(t, plain(m.View()), "✖")
}

func TestView_ToggleOnEmptyListSendsNothing(t *testing.T) {
	m, stub := mount(t)
	_, cmd := press(t, m, keySpace)
	assert.Nil(t, cmd)
	_, cmd = press(t, m, runes("d"))
	assert.Nil(t, cmd)
	assert.Equal(t, 1, stub.Requests())
}

func TestView_ResponsesApplyInArrivalOrder(t *testing.T) {
	m, _ := mount(t, model.Todo{ID: 1, Task: "a"})

	// Toggle twice before any answer: both read completed=false, both ask for true.
	m, first := press(t, m, keySpace)
	m, second := press(t, m, keySpace)
	msgA, msgB := first(), second()

	m = update(t, m, msgB)
	m = update(t, m, msgA)
	got, ok := m.State().Find(1)
	require.True(t, ok)
	assert.True(t, got.Completed)
}

func TestView_Quit(t *testing.T) {
	m, _ := mount(t)
	for _, k := range []tea.KeyMsg{runes("q"), keyEsc, {Type: tea.KeyCtrlC}} {
		_, cmd := press(t, m, k)
		require.NotNil(t, cmd, k.String())
		assert.Equal(t, tea.QuitMsg{}, cmd(), k.String())
	}
}

func TestView_EscInFormDoesNotQuit(t *testing.T) {
	m, _ := mount(t)
	m, _ = press(t, m, runes("a"))
	_, cmd := press(t, m, keyEsc)
	assert.Nil(t, cmd)
}

func TestView_ListFailureOnMount(t *testing.T) {
	stub := stubserver.New(nil, model.Todo{ID: 1, Task: "a"})
	stub.FailWith(http.StatusBadGateway)
	srv := httptest.NewServer(stub.Routes())
	defer srv.Close()
	client, err := api.New(srv.URL)
	require.NoError(t, err)

	m := New(context.Background(), syncer.New(client, nil))
	m = deliver(t, m, m.Init())

	assert.Equal(t, 0, m.State().Len())
	assert.Contains(t, plain(m.View()), Placeholder)
	assert.Contains(t, m.status, string(store.OpList))
}
