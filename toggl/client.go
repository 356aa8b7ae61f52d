package toggl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"togglassistant/timeentry"
)

const (
	DefaultBaseURL = "https://api.track.toggl.com/api/v9"
	createdWith    = "togglassistant"
)

// Client defines the Toggl Track API operations used by the assistant.
type Client interface {
	ListEntries(ctx context.Context, start, end time.Time) ([]timeentry.Record, error)
	CreateEntry(ctx context.Context, record timeentry.Record) (int64, error)
	UpdateEntry(ctx context.Context, id int64, record timeentry.Record) (timeentry.Record, error)
	DeleteEntry(ctx context.Context, workspaceID, id int64) error
	GetRunningEntry(ctx context.Context) (*timeentry.Record, error)
	ListWorkspaces(ctx context.Context) ([]Workspace, error)
	ListProjects(ctx context.Context, workspaceID int64) ([]Project, error)
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	BaseURL    string
	APIToken   string
	UserAgent  string
	HTTPClient httpDoer
	Logger     *slog.Logger
}

type HTTPClient struct {
	baseURL    string
	apiToken   string
	userAgent  string
	httpClient httpDoer
	logger     *slog.Logger
}

func NewClient(cfg ClientConfig) (*HTTPClient, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	parsedBase, err := url.Parse(baseURL)
	if err != nil || parsedBase.Scheme == "" || parsedBase.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	apiToken := strings.TrimSpace(cfg.APIToken)
	if apiToken == "" {
		return nil, errors.New("api token is required")
	}

	doer := cfg.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &HTTPClient{
		baseURL:    baseURL,
		apiToken:   apiToken,
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		httpClient: doer,
		logger:     logger,
	}, nil
}

type Workspace struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Project struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"workspace_id"`
	Name        string `json:"name"`
	Active      bool   `json:"active"`
}

// APIError is returned for responses outside the 2xx range.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request %s %s failed with status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func (c *HTTPClient) ListEntries(ctx context.Context, start, end time.Time) ([]timeentry.Record, error) {
	query := url.Values{}
	query.Set("start_date", start.Format(time.RFC3339))
	query.Set("end_date", end.Format(time.RFC3339))

	var out []apiTimeEntry
	if err := c.doJSON(ctx, http.MethodGet, "/me/time_entries?"+query.Encode(), nil, &out); err != nil {
		return nil, err
	}

	records := make([]timeentry.Record, 0, len(out))
	for _, item := range out {
		records = append(records, item.toRecord())
	}
	return records, nil
}

func (c *HTTPClient) CreateEntry(ctx context.Context, record timeentry.Record) (int64, error) {
	if record.WorkspaceID <= 0 {
		return 0, errors.New("workspace id is required to create a time entry")
	}

	payload := fromRecord(record)
	payload.ID = 0
	payload.CreatedWith = createdWith

	path := fmt.Sprintf("/workspaces/%d/time_entries", record.WorkspaceID)
	var out apiTimeEntry
	if err := c.doJSON(ctx, http.MethodPost, path, payload, &out); err != nil {
		return 0, err
	}
	if out.ID <= 0 {
		return 0, fmt.Errorf("create time entry: response carries no id")
	}
	return out.ID, nil
}

func (c *HTTPClient) UpdateEntry(ctx context.Context, id int64, record timeentry.Record) (timeentry.Record, error) {
	if id <= 0 {
		return timeentry.Record{}, fmt.Errorf("cannot update time entry with local id %d", id)
	}

	payload := fromRecord(record)
	payload.ID = id

	path := fmt.Sprintf("/workspaces/%d/time_entries/%d", record.WorkspaceID, id)
	var out apiTimeEntry
	if err := c.doJSON(ctx, http.MethodPut, path, payload, &out); err != nil {
		return timeentry.Record{}, err
	}
	return out.toRecord(), nil
}

func (c *HTTPClient) DeleteEntry(ctx context.Context, workspaceID, id int64) error {
	if id <= 0 {
		return fmt.Errorf("cannot delete time entry with local id %d", id)
	}
	path := fmt.Sprintf("/workspaces/%d/time_entries/%d", workspaceID, id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// GetRunningEntry returns the currently running entry, or nil when no timer runs.
func (c *HTTPClient) GetRunningEntry(ctx context.Context) (*timeentry.Record, error) {
	var out *apiTimeEntry
	if err := c.doJSON(ctx, http.MethodGet, "/me/time_entries/current", nil, &out); err != nil {
		return nil, err
	}
	if out == nil || out.ID == 0 {
		return nil, nil
	}
	record := out.toRecord()
	return &record, nil
}

func (c *HTTPClient) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	var out []Workspace
	if err := c.doJSON(ctx, http.MethodGet, "/me/workspaces", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListProjects(ctx context.Context, workspaceID int64) ([]Project, error) {
	var out []Project
	path := fmt.Sprintf("/workspaces/%d/projects", workspaceID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, endpointPath string, body any, out any) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpointPath, bodyReader)
	if err != nil {
		return fmt.Errorf("create request %s %s: %w", method, endpointPath, err)
	}

	req.SetBasicAuth(c.apiToken, "api_token")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("toggl API request", "method", method, "path", endpointPath)
	started := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("toggl API transport error", "method", method, "path", endpointPath, "error", err)
		return fmt.Errorf("request %s %s failed: %w", method, endpointPath, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("toggl API response", "method", method, "path", endpointPath, "status", resp.StatusCode, "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			Method:     method,
			Path:       endpointPath,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(responseBody)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response %s %s: %w", method, endpointPath, err)
	}
	return nil
}
