// Package client talks to a running physiotrainer server over its REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/physiotrainer/internal/catalog"
	"github.com/claude/physiotrainer/internal/mcp"
	"github.com/claude/physiotrainer/internal/models"
	"github.com/claude/physiotrainer/internal/session"
)

const maxAttempts = 3

// HTTPClient implements mcp.DataSource by calling the REST API. Used for
// remote MCP mode where the binary runs locally (stdio) but the session
// lives on the server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	backoff    time.Duration
}

// Compile-time check: HTTPClient satisfies mcp.DataSource.
var _ mcp.DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		backoff:    time.Second,
	}
}

// WithBackoff sets the base delay between retries. Attempt n waits
// base * 2^(n-1).
func (c *HTTPClient) WithBackoff(base time.Duration) *HTTPClient {
	c.backoff = base
	return c
}

// get fetches path, retrying transport errors and 5xx responses up to three
// times with exponential backoff. 4xx responses are returned immediately.
func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff * time.Duration(1<<uint(attempt-1))):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("httpclient: create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("httpclient: %s: %w", path, err)
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("httpclient: read body: %w", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("httpclient: %s: %w: %s", path, catalog.ErrNotFound, bytes.TrimSpace(body))
		case resp.StatusCode < http.StatusInternalServerError:
			return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, bytes.TrimSpace(body))
		}
		lastErr = fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil, fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) Catalog(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := c.getJSON(ctx, "/api/v1/catalog", nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

func (c *HTTPClient) Exercise(ctx context.Context, category, exType, name string) (*models.Exercise, error) {
	params := url.Values{}
	params.Set("category", category)
	params.Set("type", exType)
	params.Set("name", name)

	var ex models.Exercise
	if err := c.getJSON(ctx, "/api/v1/exercise", params, &ex); err != nil {
		return nil, err
	}
	return &ex, nil
}

func (c *HTTPClient) DietPlan(ctx context.Context) ([]models.DietSection, error) {
	var plan []models.DietSection
	if err := c.getJSON(ctx, "/api/v1/diet", nil, &plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (c *HTTPClient) Reports(ctx context.Context) ([]models.ReportEntry, error) {
	var entries []models.ReportEntry
	if err := c.getJSON(ctx, "/api/v1/reports", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *HTTPClient) SessionStatus(ctx context.Context) (*session.Update, error) {
	var u session.Update
	if err := c.getJSON(ctx, "/api/v1/session", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ExportCSV copies the server's CSV report export to w.
func (c *HTTPClient) ExportCSV(ctx context.Context, w io.Writer) (int64, error) {
	body, err := c.get(ctx, "/api/v1/reports/export", nil)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(body)
	if err != nil {
		return int64(n), fmt.Errorf("writing export: %w", err)
	}
	return int64(n), nil
}
