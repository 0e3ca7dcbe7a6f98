// Package client is the data-access layer for tools consuming the
// larder API. Reads are retried with linear backoff; every failure is
// classified into a small set of user-facing categories so callers
// never surface a raw fault string.
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
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dukerupert/larder/internal/model"
)

const maxAttempts = 3

// Class buckets a failure for presentation.
type Class string

const (
	ClassOffline    Class = "offline"
	ClassNetwork    Class = "network"
	ClassValidation Class = "validation"
	ClassNotFound   Class = "not_found"
	ClassServer     Class = "server"
	ClassUnknown    Class = "unknown"
)

var userMessages = map[Class]string{
	ClassOffline:    "You appear to be offline. Check your connection and try again.",
	ClassNetwork:    "Could not reach the server. Please try again.",
	ClassValidation: "Please check your input and try again.",
	ClassNotFound:   "The requested item was not found.",
	ClassServer:     "The server ran into a problem. Please try again later.",
	ClassUnknown:    "Something went wrong. Please try again.",
}

// Error is a classified API failure. Message holds the server-supplied
// detail when one was returned; Violations the full validation list.
type Error struct {
	Class      Class
	Status     int
	Message    string
	Violations []string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Class, e.Message)
	}
	return string(e.Class)
}

// UserMessage returns the fixed presentation text for the error class.
func (e *Error) UserMessage() string {
	return userMessages[e.Class]
}

// Config configures a Client. Zero values get sensible defaults.
type Config struct {
	BaseURL string
	// HTTPClient defaults to a 10s-timeout client.
	HTTPClient *http.Client
	// Online reports connectivity; when it returns false the offline
	// class takes precedence over whatever actually failed.
	Online func() bool
	// RetryBase is the first retry delay; attempt n waits n times this.
	RetryBase time.Duration
}

type Client struct {
	baseURL   string
	http      *http.Client
	online    func() bool
	retryBase time.Duration
}

func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	retryBase := cfg.RetryBase
	if retryBase == 0 {
		retryBase = 500 * time.Millisecond
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		http:      httpClient,
		online:    cfg.Online,
		retryBase: retryBase,
	}
}

// ListOptions mirrors the list endpoint's query parameters; empty
// fields are omitted from the request.
type ListOptions struct {
	Search    string
	Category  string
	Priority  string
	Purchased string
	Sort      string
	Order     string
}

func (o ListOptions) query() string {
	params := url.Values{}
	set := func(key, val string) {
		if val != "" {
			params.Set(key, val)
		}
	}
	set("search", o.Search)
	set("category", o.Category)
	set("priority", o.Priority)
	set("purchased", o.Purchased)
	set("sort", o.Sort)
	set("order", o.Order)
	if len(params) == 0 {
		return ""
	}
	return "?" + params.Encode()
}

func (c *Client) GetItems(ctx context.Context, opts ListOptions) ([]model.Item, error) {
	var items []model.Item
	if err := c.getWithRetry(ctx, "/api/items"+opts.query(), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	var item model.Item
	if err := c.getWithRetry(ctx, fmt.Sprintf("/api/items/%d", id), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) GetStats(ctx context.Context) (*model.Stats, error) {
	var stats model.Stats
	if err := c.getWithRetry(ctx, "/api/items/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Mutations are single-attempt: retrying a write that may have landed
// risks duplicates, and the UI marks in-flight items instead.
func (c *Client) CreateItem(ctx context.Context, in model.ItemInput) (*model.Item, error) {
	var item model.Item
	if err := c.classify(c.do(ctx, http.MethodPost, "/api/items", in, &item)); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) UpdateItem(ctx context.Context, id int64, in model.ItemInput) (*model.Item, error) {
	var item model.Item
	err := c.classify(c.do(ctx, http.MethodPut, fmt.Sprintf("/api/items/%d", id), in, &item))
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	return c.classify(c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/items/%d", id), nil, nil))
}

// Health reports whether the server and its store are up.
func (c *Client) Health(ctx context.Context) error {
	return c.classify(c.do(ctx, http.MethodGet, "/api/health", nil, nil))
}

// getWithRetry performs a read with up to maxAttempts tries. Responses
// in the 400s are terminal; 500s and transport failures are retried
// after a linearly growing delay.
func (c *Client) getWithRetry(ctx context.Context, path string, out any) error {
	backoff := retry.WithMaxRetries(maxAttempts-1, linearBackoff(c.retryBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.do(ctx, http.MethodGet, path, nil, out)
		if err == nil {
			return nil
		}
		var apiErr *Error
		if errors.As(err, &apiErr) && (apiErr.Class == ClassServer || apiErr.Class == ClassNetwork) {
			return retry.RetryableError(err)
		}
		return err
	})
	return c.classify(err)
}

// linearBackoff waits base on the first retry, 2×base on the second,
// and so on.
func linearBackoff(base time.Duration) retry.Backoff {
	attempt := 0
	return retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return time.Duration(attempt) * base, false
	})
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Class: ClassUnknown, Message: err.Error()}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Class: ClassUnknown, Message: err.Error()}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Class: ClassNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error  string   `json:"error"`
			Errors []string `json:"errors"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return &Error{
			Class:      classForStatus(resp.StatusCode),
			Status:     resp.StatusCode,
			Message:    errBody.Error,
			Violations: errBody.Errors,
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Class: ClassUnknown, Message: err.Error()}
		}
	}
	return nil
}

func classForStatus(code int) Class {
	switch {
	case code == http.StatusNotFound:
		return ClassNotFound
	case code >= 400 && code < 500:
		return ClassValidation
	case code >= 500:
		return ClassServer
	}
	return ClassUnknown
}

// classify normalizes the last observed failure, letting the offline
// class win whenever the connectivity probe reports no connection.
func (c *Client) classify(err error) error {
	if err == nil {
		return nil
	}
	if c.online != nil && !c.online() {
		return &Error{Class: ClassOffline, Message: err.Error()}
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &Error{Class: ClassUnknown, Message: err.Error()}
}
