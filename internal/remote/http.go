package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cortex-os/cortex/internal/models"
)

// HTTPClient talks JSON over HTTP to the authoritative API.
type HTTPClient struct {
	base  string
	token string
	http  *http.Client
}

// NewHTTPClient creates a client for the API at baseURL. token may be empty
// when the remote runs without auth.
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		base:  strings.TrimRight(baseURL, "/"),
		token: token,
		http:  &http.Client{Timeout: timeout},
	}
}

// collectionPath maps an entity kind to its REST collection.
func collectionPath(kind models.EntityKind) (string, error) {
	switch kind {
	case models.KindNote:
		return "/notes", nil
	case models.KindTask:
		return "/tasks", nil
	case models.KindHabit:
		return "/habits", nil
	case models.KindHabitEntry:
		return "/habits/entries", nil
	case models.KindDecision:
		return "/decisions", nil
	}
	return "", NewError(KindFatal, "route "+string(kind), 0, fmt.Errorf("unknown entity kind %q", kind))
}

// Create posts a new entity and returns the authoritative id.
func (c *HTTPClient) Create(ctx context.Context, kind models.EntityKind, payload json.RawMessage) (*CreateResult, error) {
	path, err := collectionPath(kind)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, http.MethodPost, path, payload, "create "+string(kind))
	if err != nil {
		return nil, err
	}
	var envelope struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, NewError(KindFatal, "create "+string(kind), 0, fmt.Errorf("decode response: %w", err))
	}
	return &CreateResult{ID: envelope.ID, Body: body}, nil
}

// Update sends changed fields for an existing entity. Habit updates and
// decision outcome updates use their dedicated endpoints.
func (c *HTTPClient) Update(ctx context.Context, kind models.EntityKind, id string, payload json.RawMessage) error {
	var path string
	switch kind {
	case models.KindDecision:
		path = "/decisions/" + url.PathEscape(id) + "/outcome"
	default:
		base, err := collectionPath(kind)
		if err != nil {
			return err
		}
		path = base + "/" + url.PathEscape(id)
	}
	_, err := c.do(ctx, http.MethodPut, path, payload, "update "+string(kind))
	return err
}

// Delete removes an entity. Habits are archived rather than deleted.
func (c *HTTPClient) Delete(ctx context.Context, kind models.EntityKind, id string) error {
	if kind == models.KindHabit {
		_, err := c.do(ctx, http.MethodPost, "/habits/"+url.PathEscape(id)+"/archive", nil, "archive habit")
		return err
	}
	base, err := collectionPath(kind)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodDelete, base+"/"+url.PathEscape(id), nil, "delete "+string(kind))
	return err
}

// ListNotes fetches the authoritative note list for the pull pass.
func (c *HTTPClient) ListNotes(ctx context.Context, limit int) ([]models.Note, error) {
	if limit <= 0 {
		limit = 100
	}
	body, err := c.do(ctx, http.MethodGet, "/notes?limit="+strconv.Itoa(limit), nil, "list notes")
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Items []models.Note `json:"items"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, NewError(KindFatal, "list notes", 0, fmt.Errorf("decode response: %w", err))
	}
	return envelope.Items, nil
}

// TaskTree fetches the authoritative task tree for the pull pass.
func (c *HTTPClient) TaskTree(ctx context.Context) ([]models.TaskNode, error) {
	body, err := c.do(ctx, http.MethodGet, "/tasks/tree", nil, "task tree")
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Roots []models.TaskNode `json:"roots"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, NewError(KindFatal, "task tree", 0, fmt.Errorf("decode response: %w", err))
	}
	return envelope.Roots, nil
}

// Ping checks remote reachability.
func (c *HTTPClient) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil, "ping")
	return err
}

// do performs one request and classifies the outcome. Network failures and
// 5xx/429 responses are retryable; 404 is not-found; other 4xx are fatal.
func (c *HTTPClient) do(ctx context.Context, method, path string, payload []byte, op string) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reqBody)
	if err != nil {
		return nil, NewError(KindFatal, op, 0, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, NewError(KindRetryable, op, 0, err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 10<<20))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if readErr != nil {
			return nil, NewError(KindRetryable, op, resp.StatusCode, readErr)
		}
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewError(KindNotFound, op, resp.StatusCode, nil)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, NewError(KindRetryable, op, resp.StatusCode, nil)
	default:
		return nil, NewError(KindFatal, op, resp.StatusCode, nil)
	}
}

// Verify *HTTPClient satisfies Client at compile time.
var _ Client = (*HTTPClient)(nil)
