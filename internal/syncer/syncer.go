// Package syncer turns user intents into single round trips against the
// Todo service and reports each outcome as a store.Event.
package syncer

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
)

// Service is the part of api.Client the sync layer needs.
type Service interface {
	List(ctx context.Context) ([]model.Todo, error)
	Create(ctx context.Context, task string) (model.Todo, error)
	SetCompleted(ctx context.Context, id int, completed bool) (model.Todo, error)
	Delete(ctx context.Context, id int) error
}

// Op is one pending network round trip. Running it performs exactly one
// request and returns the event to apply (store.Failed on any error).
type Op func(ctx context.Context) store.Event

// Syncer builds Ops. It holds no state of its own, so concurrent Ops
// are independent: nothing is deduplicated, serialized or retried.
type Syncer struct {
	svc    Service
	logger *log.Logger
}

// New wires a Syncer. A nil logger discards diagnostics.
func New(svc Service, logger *log.Logger) *Syncer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Syncer{svc: svc, logger: logger}
}

// List re-reads every todo.
func (s *Syncer) List() Op {
	return func(ctx context.Context) store.Event {
		ctx, rid := withRequestID(ctx)
		todos, err := s.svc.List(ctx)
		if err != nil {
			return s.failed(store.OpList, 0, rid, err)
		}
		s.logger.Debug("listed todos", "count", len(todos), "request_id", rid)
		return store.Listed{Todos: todos}
	}
}

// Create returns nil when task trims to empty: nothing is sent.
func (s *Syncer) Create(task string) Op {
	task = strings.TrimSpace(task)
	if task == "" {
		return nil
	}
	return func(ctx context.Context) store.Event {
		ctx, rid := withRequestID(ctx)
		t, err := s.svc.Create(ctx, task)
		if err != nil {
			return s.failed(store.OpCreate, 0, rid, err)
		}
		s.logger.Debug("created todo", "id", t.ID, "request_id", rid)
		return store.Created{Todo: t}
	}
}

// Toggle reads the current flag from st at call time and asks the server
// for its negation. Returns nil when id is not in st.
func (s *Syncer) Toggle(st *store.State, id int) Op {
	cur, ok := st.Find(id)
	if !ok {
		return nil
	}
	want := !cur.Completed
	return func(ctx context.Context) store.Event {
		ctx, rid := withRequestID(ctx)
		t, err := s.svc.SetCompleted(ctx, id, want)
		if err != nil {
			return s.failed(store.OpToggle, id, rid, err)
		}
		s.logger.Debug("toggled todo", "id", id, "completed", t.Completed, "request_id", rid)
		return store.Toggled{ID: id, Todo: t}
	}
}

// Delete removes id on the server; the local entry goes once confirmed.
func (s *Syncer) Delete(id int) Op {
	return func(ctx context.Context) store.Event {
		ctx, rid := withRequestID(ctx)
		if err := s.svc.Delete(ctx, id); err != nil {
			return s.failed(store.OpDelete, id, rid, err)
		}
		s.logger.Debug("deleted todo", "id", id, "request_id", rid)
		return store.Deleted{ID: id}
	}
}

func (s *Syncer) failed(op store.Op, id int, rid string, err error) store.Event {
	kv := []any{"op", op, "err", err, "request_id", rid}
	if id != 0 {
		kv = append(kv, "id", id)
	}
	s.logger.Error("sync operation failed", kv...)
	return store.Failed{Op: op, ID: id, Err: err}
}

func withRequestID(ctx context.Context) (context.Context, string) {
	rid := uuid.NewString()
	return api.WithRequestID(ctx, rid), rid
}
