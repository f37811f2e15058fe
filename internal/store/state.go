// Package store holds the in-memory state of the todo view.
//
// State is owned by a single component and mutated only through Apply.
// Nothing here talks to the network; the sync layer produces the events.
package store

import "github.com/idilsaglam/tada/internal/model"

// State is the ordered todo sequence plus the pending draft text.
type State struct {
	todos []model.Todo
	draft string
}

// New returns an empty state.
func New() *State {
	return &State{todos: []model.Todo{}}
}

// Todos returns a copy of the todos in store order.
func (s *State) Todos() []model.Todo {
	out := make([]model.Todo, len(s.todos))
	copy(out, s.todos)
	return out
}

// Len is the number of todos.
func (s *State) Len() int { return len(s.todos) }

// Draft is the pending new-task text.
func (s *State) Draft() string { return s.draft }

// Find looks a todo up by id.
func (s *State) Find(id int) (model.Todo, bool) {
	for _, t := range s.todos {
		if t.ID == id {
			return t, true
		}
	}
	return model.Todo{}, false
}

// Apply reconciles one event into the state.
func (s *State) Apply(ev Event) {
	if ev == nil {
		return
	}
	ev.apply(s)
}

// Stats counts completed and pending todos.
func (s *State) Stats() (done, pending int) {
	for _, t := range s.todos {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
