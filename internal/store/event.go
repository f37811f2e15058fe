package store

import "github.com/idilsaglam/tada/internal/model"

// Op names a sync operation.
type Op string

const (
	OpList   Op = "list"
	OpCreate Op = "create"
	OpToggle Op = "toggle"
	OpDelete Op = "delete"
)

// Event is something that happened and may change State.
type Event interface {
	apply(*State)
}

// Listed replaces the whole sequence with the server's.
type Listed struct {
	Todos []model.Todo
}

// Created appends the server-returned todo and clears the draft.
type Created struct {
	Todo model.Todo
}

// Toggled replaces the entry with ID by the server-returned todo.
type Toggled struct {
	ID   int
	Todo model.Todo
}

// Deleted drops the entry with ID.
type Deleted struct {
	ID int
}

// DraftEdited records a keystroke change of the draft text.
type DraftEdited struct {
	Text string
}

// Failed reports an operation that did not succeed. It never changes state.
type Failed struct {
	Op  Op
	ID  int // zero for list and create
	Err error
}

func (e Listed) apply(s *State) {
	todos := make([]model.Todo, len(e.Todos))
	copy(todos, e.Todos)
	s.todos = todos
}

func (e Created) apply(s *State) {
	s.todos = append(s.todos, e.Todo)
	s.draft = ""
}

// A toggle answer for an id that is gone (deleted meanwhile) is dropped.
func (e Toggled) apply(s *State) {
	for i := range s.todos {
		if s.todos[i].ID == e.ID {
			s.todos[i] = e.Todo
		}
	}
}

func (e Deleted) apply(s *State) {
	kept := make([]model.Todo, 0, len(s.todos))
	for _, t := range s.todos {
		if t.ID != e.ID {
			kept = append(kept, t)
		}
	}
	s.todos = kept
}

func (e DraftEdited) apply(s *State) { s.draft = e.Text }

func (Failed) apply(*State) {}

func (e Failed) Error() string {
	if e.Err == nil {
		return string(e.Op) + " failed"
	}
	return string(e.Op) + ": " + e.Err.Error()
}

func (e Failed) Unwrap() error { return e.Err }
