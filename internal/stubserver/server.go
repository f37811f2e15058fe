// Package stubserver is an in-memory Todo service speaking the same HTTP
// contract as the real backend. It backs the tests and cmd/todo-stub.
package stubserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/idilsaglam/tada/internal/model"
)

const requestIDHeader = "X-Request-ID"

// Server keeps todos in memory. Safe for concurrent use.
type Server struct {
	logger *zap.Logger

	mu     sync.Mutex
	todos  []model.Todo
	nextID int

	requests atomic.Int64
	failWith atomic.Int64
}

// New returns a server seeded with todos. Seeded ids are kept; new ids
// continue after the highest one.
func New(logger *zap.Logger, seed ...model.Todo) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{logger: logger, nextID: 1}
	for _, t := range seed {
		s.todos = append(s.todos, t)
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
	return s
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.count)
	r.Use(s.injectFailure)

	r.Get("/todos", s.list)
	r.Post("/addtodo", s.create)
	r.Put("/todos/{id}/complete", s.complete)
	r.Delete("/deletetodo/{id}", s.delete)
	return r
}

// FailWith makes every following request answer with code. Zero restores
// normal behaviour.
func (s *Server) FailWith(code int) { s.failWith.Store(int64(code)) }

// Requests is the number of requests received so far.
func (s *Server) Requests() int { return int(s.requests.Load()) }

// Todos returns a snapshot of the stored todos.
func (s *Server) Todos() []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Todo, len(s.todos))
	copy(out, s.todos)
	return out
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", r.Header.Get(requestIDHeader)),
		)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if code := int(s.failWith.Load()); code != 0 {
			writeError(w, code, http.StatusText(code))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Todos())
}

type createRequest struct {
	Task      string `json:"task"`
	Completed bool   `json:"completed"`
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("failed to decode json", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Task) == "" {
		writeError(w, http.StatusBadRequest, "Task cannot be empty")
		return
	}

	s.mu.Lock()
	t := model.Todo{ID: s.nextID, Task: req.Task, Completed: req.Completed}
	s.nextID++
	s.todos = append(s.todos, t)
	s.mu.Unlock()

	s.logger.Info("todo added", zap.Int("id", t.ID))
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Todo added successfully",
		"todo":    t,
	})
}

type completeRequest struct {
	Completed *bool `json:"completed"`
}

func (s *Server) complete(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Completed == nil {
		writeError(w, http.StatusBadRequest, "Missing 'completed' field in request body")
		return
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Todo not found")
		return
	}
	s.todos[idx].Completed = *req.Completed
	t := s.todos[idx]
	s.mu.Unlock()

	s.logger.Info("todo updated", zap.Int("id", id), zap.Bool("completed", t.Completed))
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Todo updated successfully",
		"todo":    t,
	})
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Todo not found")
		return
	}
	s.todos = append(s.todos[:idx], s.todos[idx+1:]...)
	s.mu.Unlock()

	s.logger.Info("todo deleted", zap.Int("id", id))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Todo deleted successfully"})
}

// indexOf must be called with mu held.
func (s *Server) indexOf(id int) int {
	for i, t := range s.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func todoID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid todo id")
		return 0, false
	}
	return id, true
}
