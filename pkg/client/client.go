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

	"github.com/mrshanahan/core-notes/pkg/todos"
)

// ErrRequestFailed is matched by every error caused by a non-2xx response.
var ErrRequestFailed = errors.New("request failed")

// RequestError describes a request the backend answered with a non-2xx status.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("failed %s request to %s: invalid status code: %d (response: %s)",
		e.Method, e.Path, e.StatusCode, e.Body)
}

func (e *RequestError) Unwrap() error {
	return ErrRequestFailed
}

// Client talks to the todos REST service rooted at URL.
type Client struct {
	URL        string
	HTTPClient *http.Client
	token      string
}

type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient. The client sets no timeout of
// its own; pass one here if you want it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.HTTPClient = hc
	}
}

func NewClient(url string, opts ...Option) *Client {
	c := &Client{URL: url, HTTPClient: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of c that authenticates with the given bearer token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) ListFavorited(ctx context.Context) ([]*todos.Todo, error) {
	return c.list(ctx, true)
}

func (c *Client) ListUnfavorited(ctx context.Context) ([]*todos.Todo, error) {
	return c.list(ctx, false)
}

func (c *Client) Create(ctx context.Context, draft todos.Draft) (*todos.Todo, error) {
	var todo *todos.Todo
	if err := c.invoke(ctx, http.MethodPost, "/todos", nil, draft, &todo); err != nil {
		return nil, err
	}
	return todo, nil
}

// Update sends a partial todo. The returned todo is nil when the backend
// answers with an empty body.
func (c *Client) Update(ctx context.Context, id int64, patch todos.Patch) (*todos.Todo, error) {
	var todo *todos.Todo
	if err := c.invoke(ctx, http.MethodPut, todoPath(id), nil, patch, &todo); err != nil {
		return nil, err
	}
	return todo, nil
}

func (c *Client) ToggleFavorite(ctx context.Context, id int64) (*todos.Todo, error) {
	var todo *todos.Todo
	if err := c.invoke(ctx, http.MethodPatch, todoPath(id)+"/favorite", nil, nil, &todo); err != nil {
		return nil, err
	}
	if todo == nil {
		return nil, fmt.Errorf("error toggling favorite for todo %d: empty response", id)
	}
	return todo, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.invoke(ctx, http.MethodDelete, todoPath(id), nil, nil, nil)
}

// Private functions

func (c *Client) list(ctx context.Context, favorited bool) ([]*todos.Todo, error) {
	query := url.Values{}
	query.Set("favorited", strconv.FormatBool(favorited))

	var list []*todos.Todo
	if err := c.invoke(ctx, http.MethodGet, "/todos", query, nil, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []*todos.Todo{}
	}
	return list, nil
}

func todoPath(id int64) string {
	return fmt.Sprintf("/todos/%d", id)
}

func (c *Client) invoke(ctx context.Context, method string, path string, query url.Values, payload any, out any) error {
	requestUrl, err := url.JoinPath(c.URL, path)
	if err != nil {
		return fmt.Errorf("error building URL path: %w", err)
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
		requestUrl += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("error JSON-encoding request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestUrl, body)
	if err != nil {
		return fmt.Errorf("error building API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("error invoking API: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := validateResponse(method, path, resp)
	if err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(respBytes)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("error JSON-decoding response body: %w", err)
	}
	return nil
}

func validateResponse(method string, path string, resp *http.Response) ([]byte, error) {
	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBytes)),
		}
	}

	return respBytes, nil
}
