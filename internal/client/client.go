package client

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
	"strings"
	"time"

	"todo-game/internal/analytics"
	"todo-game/internal/tasks"
)

// Platform is sent as X-Platform on every request.
const Platform = "tui"

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the API or a missing
// todo in a local store.
func IsNotFound(err error) bool {
	if errors.Is(err, tasks.ErrNotFound) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client talks to the todo REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessionID  string
	appVersion string
}

// New returns a client for the API rooted at baseURL, for example
// http://localhost:3001/api.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("client: invalid base url %q: %w", baseURL, err)
	}
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("client: base url is required")
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		sessionID:  strconv.FormatInt(time.Now().UnixNano(), 36),
	}, nil
}

// WithAppVersion makes the client report v in the X-App-Version header.
func (c *Client) WithAppVersion(v string) *Client {
	c.appVersion = v
	return c
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Platform", Platform)
	req.Header.Set("X-Session-Id", c.sessionID)
	if c.appVersion != "" {
		req.Header.Set("X-App-Version", c.appVersion)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &eb) == nil {
			apiErr.Message = eb.Error
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

func todoPath(id int) string {
	return "/todos/" + strconv.Itoa(id)
}

func (c *Client) List(ctx context.Context, q tasks.ListQuery) ([]tasks.Task, error) {
	var out []tasks.Task
	if err := c.do(ctx, http.MethodGet, "/todos", q.Values(), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []tasks.Task{}
	}
	return out, nil
}

func (c *Client) Stats(ctx context.Context) (tasks.Stats, error) {
	var st tasks.Stats
	err := c.do(ctx, http.MethodGet, "/stats", nil, nil, &st)
	return st, err
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, req tasks.CreateRequest) (tasks.Task, error) {
	var t tasks.Task
	err := c.do(ctx, http.MethodPost, "/todos", nil, req, &t)
	return t, err
}

func (c *Client) Update(ctx context.Context, id int, req tasks.UpdateRequest) (tasks.Task, error) {
	var t tasks.Task
	err := c.do(ctx, http.MethodPut, todoPath(id), nil, req, &t)
	return t, err
}

func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, todoPath(id), nil, nil, nil)
}

func (c *Client) Batch(ctx context.Context, req tasks.BatchRequest) (tasks.BatchResult, error) {
	var res tasks.BatchResult
	err := c.do(ctx, http.MethodPost, "/todos/batch", nil, req, &res)
	return res, err
}

// SendEvent reports a client event. Failures are returned but callers
// usually ignore them.
func (c *Client) SendEvent(ctx context.Context, ev analytics.ClientEvent) error {
	return c.do(ctx, http.MethodPost, "/events", nil, ev, nil)
}
