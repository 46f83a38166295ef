package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/todoflow-labs/todo-client/internal/dto"
	"github.com/todoflow-labs/todo-client/internal/logging"
	"github.com/todoflow-labs/todo-client/internal/metrics"
)

const maxBodyBytes = 4 << 20

// Client talks to the todo REST backend. It holds no mutable state and is
// safe for concurrent use.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *logging.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New returns a Client rooted at baseURL, e.g. http://localhost:8080/todo/api.
func New(baseURL string, logger *logging.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url %q must be http or https", baseURL)
	}
	c := &Client{
		base:   u,
		http:   &http.Client{},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List fetches one page of todos sorted by field in the given order.
func (c *Client) List(ctx context.Context, field dto.SortField, order dto.SortOrder, page int) ([]dto.Todo, error) {
	if order != dto.Ascending && order != dto.Descending {
		return nil, &Error{Op: opList, Message: fmt.Sprintf("Failed to load todos: invalid sort order %q", order)}
	}
	if page < 1 {
		return nil, &Error{Op: opList, Message: fmt.Sprintf("Failed to load todos: invalid page %d", page)}
	}
	q := url.Values{}
	q.Set("sortField", string(field))
	q.Set("sortOrder", string(order))
	q.Set("page", strconv.Itoa(page))

	var todos []dto.Todo
	if err := c.do(ctx, opList, http.MethodGet, c.base.JoinPath("todos"), q, nil, &todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []dto.Todo{}
	}
	return todos, nil
}

func (c *Client) Get(ctx context.Context, id int64) (dto.Todo, error) {
	var todo dto.Todo
	err := c.do(ctx, opGet, http.MethodGet, c.todoURL(id), nil, nil, &todo)
	return todo, err
}

// Create persists a todo that has no id yet and returns it with the
// server-assigned id.
func (c *Client) Create(ctx context.Context, todo dto.Todo) (dto.Todo, error) {
	if todo.HasID() {
		return dto.Todo{}, &Error{Op: opCreate, Message: "Failed to create todo: it already has an id"}
	}
	var created dto.Todo
	if err := c.do(ctx, opCreate, http.MethodPost, c.base.JoinPath("todos"), nil, todo, &created); err != nil {
		return dto.Todo{}, err
	}
	if !created.HasID() {
		c.contractViolation(opCreate, "created todo has no id")
		return dto.Todo{}, malformedError(opCreate, http.StatusOK)
	}
	return created, nil
}

func (c *Client) Update(ctx context.Context, todo dto.Todo) (dto.Todo, error) {
	if !todo.HasID() {
		return dto.Todo{}, &Error{Op: opUpdate, Message: "Failed to update todo: it has no id"}
	}
	var updated dto.Todo
	err := c.do(ctx, opUpdate, http.MethodPut, c.todoURL(todo.ID), nil, todo, &updated)
	return updated, err
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, opDelete, http.MethodDelete, c.todoURL(id), nil, nil, nil)
}

// ToggleStatus flips completed server-side. The server picks the new value,
// so two concurrent toggles cannot overwrite each other with stale targets.
func (c *Client) ToggleStatus(ctx context.Context, id int64) (dto.Todo, error) {
	var toggled dto.Todo
	err := c.do(ctx, opToggle, http.MethodPut, c.todoURL(id).JoinPath("toggle"), nil, struct{}{}, &toggled)
	return toggled, err
}

func (c *Client) todoURL(id int64) *url.URL {
	return c.base.JoinPath("todos", strconv.FormatInt(id, 10))
}

func (c *Client) do(ctx context.Context, op, method string, u *url.URL, q url.Values, in, out any) error {
	start := time.Now()
	defer func() {
		metrics.GatewayDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	if q != nil {
		u.RawQuery = q.Encode()
	}
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			c.logger.Error().Err(err).Str("op", op).Msg("failed to encode request")
			metrics.GatewayRequests.WithLabelValues(op, "invalid").Inc()
			return &Error{Op: op, Message: fmt.Sprintf("Failed to %s: invalid todo", verbs[op])}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		c.logger.Error().Err(err).Str("op", op).Msg("failed to build request")
		metrics.GatewayRequests.WithLabelValues(op, "transport").Inc()
		return transportError(op)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().Str("op", op).Str("method", method).Str("url", u.String()).Msg("gateway request")
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("op", op).Msg("gateway request failed")
		metrics.GatewayRequests.WithLabelValues(op, "transport").Inc()
		return transportError(op)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.logger.Error().Err(err).Str("op", op).Int("status", resp.StatusCode).Msg("failed to read response")
		metrics.GatewayRequests.WithLabelValues(op, "transport").Inc()
		return transportError(op)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := errorDetail(data)
		c.logger.Warn().Str("op", op).Int("status", resp.StatusCode).Str("detail", detail).Msg("gateway request rejected")
		metrics.GatewayRequests.WithLabelValues(op, "status").Inc()
		return statusError(op, resp.StatusCode, detail)
	}

	if out != nil {
		if len(bytes.TrimSpace(data)) == 0 {
			c.contractViolation(op, "empty body on success status")
			metrics.GatewayRequests.WithLabelValues(op, "malformed").Inc()
			return malformedError(op, resp.StatusCode)
		}
		if err := json.Unmarshal(data, out); err != nil {
			c.logger.Debug().Err(err).Str("op", op).Msg("decode failed")
			c.contractViolation(op, "undecodable body on success status")
			metrics.GatewayRequests.WithLabelValues(op, "malformed").Inc()
			return malformedError(op, resp.StatusCode)
		}
	}

	metrics.GatewayRequests.WithLabelValues(op, "success").Inc()
	return nil
}

// contractViolation flags a success status paired with an unusable body. It is
// surfaced as an error rather than treated as success.
func (c *Client) contractViolation(op, reason string) {
	c.logger.Warn().Str("op", op).Str("contract", "todo-api").Msgf("backend contract violation: %s", reason)
}

// errorDetail extracts {"error": "..."} or {"message": "..."} from an error body.
func errorDetail(data []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}
