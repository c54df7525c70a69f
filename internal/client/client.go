package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/service"
)

// ErrLoggedOut is returned once a 401 could not be recovered by a token
// refresh. The caller must log in again.
var ErrLoggedOut = errors.New("session expired, login required")

// APIError is a non-2xx response decoded from the server's error shape.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client is a typed HTTP client for the taskboard API. Network failures are
// retried a fixed small number of times; a 401 triggers one automatic
// token-refresh-and-retry. The refresh token rides the cookie jar.
type Client struct {
	baseURL    string
	hc         *http.Client
	maxRetries int

	mu          sync.Mutex
	accessToken string
}

func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		baseURL:    baseURL,
		hc:         &http.Client{Jar: jar, Timeout: 30 * time.Second},
		maxRetries: 2,
	}, nil
}

func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

// LoggedIn reports whether the client holds an access token.
func (c *Client) LoggedIn() bool {
	return c.token() != ""
}

type authEnvelope struct {
	User        *model.User `json:"user"`
	AccessToken string      `json:"accessToken"`
}

func (c *Client) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	var out authEnvelope
	body := map[string]string{"email": email, "password": password}
	if name != "" {
		body["name"] = name
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &out); err != nil {
		return nil, err
	}
	c.setToken(out.AccessToken)
	return out.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	var out authEnvelope
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	c.setToken(out.AccessToken)
	return out.User, nil
}

// Refresh exchanges the refresh cookie for a new token pair.
func (c *Client) Refresh(ctx context.Context) error {
	var out authEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", nil, &out); err != nil {
		return err
	}
	c.setToken(out.AccessToken)
	return nil
}

func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.setToken("")
	return err
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var out struct {
		User *model.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var out struct {
		Categories []model.Category `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

func (c *Client) CreateCategory(ctx context.Context, name, description, color, icon string) (*model.Category, error) {
	var out struct {
		Category *model.Category `json:"category"`
	}
	body := map[string]string{"name": name, "description": description, "color": color, "icon": icon}
	if err := c.do(ctx, http.MethodPost, "/api/categories", body, &out); err != nil {
		return nil, err
	}
	return out.Category, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id string, updates map[string]interface{}) (*model.Category, error) {
	var out struct {
		Category *model.Category `json:"category"`
	}
	if err := c.do(ctx, http.MethodPatch, "/api/categories/"+id, updates, &out); err != nil {
		return nil, err
	}
	return out.Category, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/categories/"+id, nil, nil)
}

func (c *Client) ReorderCategories(ctx context.Context, categoryIDs []string) error {
	body := map[string]interface{}{"categoryIds": categoryIDs}
	return c.do(ctx, http.MethodPatch, "/api/categories/reorder", body, nil)
}

// TaskFilter narrows ListTasks. Nil pointer fields are omitted.
type TaskFilter struct {
	CategoryID string
	IsEOD      *bool
	Completed  *bool
}

func (c *Client) ListTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	query := url.Values{}
	if filter.CategoryID != "" {
		query.Set("categoryId", filter.CategoryID)
	}
	if filter.IsEOD != nil {
		query.Set("isEOD", fmt.Sprintf("%t", *filter.IsEOD))
	}
	if filter.Completed != nil {
		query.Set("completed", fmt.Sprintf("%t", *filter.Completed))
	}
	path := "/api/tasks"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var out struct {
		Tasks []model.Task `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, body map[string]interface{}) (*model.Task, error) {
	var out struct {
		Task *model.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/tasks", body, &out); err != nil {
		return nil, err
	}
	return out.Task, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*model.Task, error) {
	var out struct {
		Task *model.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+id, nil, &out); err != nil {
		return nil, err
	}
	return out.Task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, updates map[string]interface{}) (*model.Task, error) {
	var out struct {
		Task *model.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+id, updates, &out); err != nil {
		return nil, err
	}
	return out.Task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+id, nil, nil)
}

func (c *Client) ToggleComplete(ctx context.Context, id string) (*model.Task, error) {
	var out struct {
		Task *model.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+id+"/complete", nil, &out); err != nil {
		return nil, err
	}
	return out.Task, nil
}

func (c *Client) ToggleEOD(ctx context.Context, id string) (*model.Task, error) {
	var out struct {
		Task *model.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+id+"/eod", nil, &out); err != nil {
		return nil, err
	}
	return out.Task, nil
}

func (c *Client) ReorderTasks(ctx context.Context, taskIDs []string, categoryID string) error {
	body := map[string]interface{}{"taskIds": taskIDs}
	if categoryID != "" {
		body["categoryId"] = categoryID
	}
	return c.do(ctx, http.MethodPatch, "/api/tasks/reorder", body, nil)
}

func (c *Client) EODToday(ctx context.Context) (*service.EODTodayResult, error) {
	var out service.EODTodayResult
	if err := c.do(ctx, http.MethodGet, "/api/tasks/eod/today", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ClearOverdueEOD(ctx context.Context) (int64, error) {
	var out struct {
		ClearedCount int64 `json:"clearedCount"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/tasks/eod/clear-overdue", nil, &out); err != nil {
		return 0, err
	}
	return out.ClearedCount, nil
}

func (c *Client) StatsSummary(ctx context.Context) (*service.SummaryResult, error) {
	var out service.SummaryResult
	if err := c.do(ctx, http.MethodGet, "/api/stats/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) StatsEOD(ctx context.Context, rangeName string) (*service.EODDetailedStats, error) {
	var out struct {
		EODStats *service.EODDetailedStats `json:"eodStats"`
	}
	path := "/api/stats/eod"
	if rangeName != "" {
		path += "?range=" + url.QueryEscape(rangeName)
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.EODStats, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}

	// One refresh-and-retry on an expired access token; refresh failure
	// means the session is gone.
	if resp.StatusCode == http.StatusUnauthorized && path != "/api/auth/refresh" && path != "/api/auth/login" {
		resp.Body.Close()
		if err := c.Refresh(ctx); err != nil {
			c.setToken("")
			return ErrLoggedOut
		}
		resp, err = c.send(ctx, method, path, body)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Message: resp.Status}
		var wire struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&wire) == nil && wire.Error != "" {
			apiErr.Message = wire.Error
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// send issues the request, retrying transport-level failures.
func (c *Client) send(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.hc.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("request %s %s: %w", method, path, lastErr)
}
