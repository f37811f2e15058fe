// Package api talks to the remote Todo service over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/idilsaglam/tada/internal/model"
)

// DefaultBaseURL is where the Todo service listens unless configured otherwise.
const DefaultBaseURL = "http://localhost:8000"

// RequestIDHeader carries a per-request id so client and server logs line up.
const RequestIDHeader = "X-Request-ID"

var (
	// ErrTransport wraps failures to reach the service at all.
	ErrTransport = errors.New("transport failure")
	// ErrMalformed wraps success responses whose body could not be understood.
	ErrMalformed = errors.New("malformed response")
)

// StatusError is returned when the service answers outside the 2xx range.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Code)
}

// Client is a thin wrapper over the four Todo endpoints.
// No timeout is set; a stalled request stalls only its caller.
type Client struct {
	base *url.URL
	http *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying *http.Client (tests, custom transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New builds a client rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q: scheme and host required", baseURL)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	c := &Client{base: u, http: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service address this client targets.
func (c *Client) BaseURL() string { return c.base.String() }

type createRequest struct {
	Task      string `json:"task"`
	Completed bool   `json:"completed"`
}

type completeRequest struct {
	Completed bool `json:"completed"`
}

// todoEnvelope is the {"todo": ...} wrapper used by create and complete.
type todoEnvelope struct {
	Todo *model.Todo `json:"todo"`
}

// List fetches every todo in server order.
func (c *Client) List(ctx context.Context) ([]model.Todo, error) {
	var todos []model.Todo
	if err := c.do(ctx, http.MethodGet, []string{"todos"}, nil, &todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}

// Create asks the service to store a new, not yet completed task.
func (c *Client) Create(ctx context.Context, task string) (model.Todo, error) {
	var env todoEnvelope
	body := createRequest{Task: task, Completed: false}
	if err := c.do(ctx, http.MethodPost, []string{"addtodo"}, body, &env); err != nil {
		return model.Todo{}, err
	}
	return env.unwrap()
}

// SetCompleted sets the completion flag of todo id.
func (c *Client) SetCompleted(ctx context.Context, id int, completed bool) (model.Todo, error) {
	var env todoEnvelope
	path := []string{"todos", strconv.Itoa(id), "complete"}
	if err := c.do(ctx, http.MethodPut, path, completeRequest{Completed: completed}, &env); err != nil {
		return model.Todo{}, err
	}
	return env.unwrap()
}

// Delete removes todo id. Only the status is checked.
func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, []string{"deletetodo", strconv.Itoa(id)}, nil, nil)
}

func (e todoEnvelope) unwrap() (model.Todo, error) {
	if e.Todo == nil {
		return model.Todo{}, fmt.Errorf("%w: missing todo", ErrMalformed)
	}
	return *e.Todo, nil
}

// do performs one round trip. in is JSON-encoded when non-nil; out is decoded
// only for 2xx responses and only when non-nil.
func (c *Client) do(ctx context.Context, method string, path []string, in, out any) error {
	endpoint := c.base.JoinPath(path...)

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, RequestID(ctx))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, endpoint.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Method: method, Path: endpoint.Path, Code: resp.StatusCode}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrMalformed, method, endpoint.Path, err)
	}
	return nil
}

type requestIDKey struct{}

// WithRequestID pins the id sent in RequestIDHeader for requests made with ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id pinned on ctx, or a fresh one.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
