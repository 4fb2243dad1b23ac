package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kain88-de/reviewr/internal/platform"
)

const serviceName = "GitLab"

// NewClient creates a client for the instance at baseURL
// (e.g. "https://gitlab.com").
func NewClient(token, baseURL string) *Client {
	return &Client{
		Token:      token,
		BaseURL:    strings.TrimSuffix(baseURL, "/") + DefaultAPIEndpoint,
		HTTPClient: platform.NewHTTPClient(),
	}
}

// WithHTTPClient returns a copy of the client using h.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	cp := *c
	cp.HTTPClient = h
	return &cp
}

// WithEndpoint returns a copy of the client using a custom API root.
func (c *Client) WithEndpoint(endpoint string) *Client {
	cp := *c
	cp.BaseURL = strings.TrimSuffix(endpoint, "/")
	return &cp
}

// buildURL returns the API URL for path with the given query parameters.
func (c *Client) buildURL(path string, params map[string]string) string {
	u := c.BaseURL + path
	if len(params) > 0 {
		v := url.Values{}
		for k, val := range params {
			v.Set(k, val)
		}
		u += "?" + v.Encode()
	}
	return u
}

// get performs an authenticated GET and returns body and headers.
func (c *Client) get(ctx context.Context, apiURL string) ([]byte, http.Header, error) {
	if c.Token == "" {
		return nil, nil, platform.ConfigError(serviceName, "gitlab token not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	return platform.DoWithHeader(c.HTTPClient, serviceName, req)
}

// fetchAll follows X-Next-Page until the last page or MaxPages.
func fetchAll[T any](ctx context.Context, c *Client, path string, params map[string]string) ([]T, error) {
	query := make(map[string]string, len(params)+2)
	for k, v := range params {
		query[k] = v
	}
	query["per_page"] = strconv.Itoa(MaxPageSize)

	var all []T
	page := 1
	for pages := 0; pages < MaxPages; pages++ {
		query["page"] = strconv.Itoa(page)
		apiURL := c.buildURL(path, query)

		body, header, err := c.get(ctx, apiURL)
		if err != nil {
			return nil, err
		}

		var batch []T
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, platform.ParseError(serviceName, apiURL, body, err)
		}
		all = append(all, batch...)

		next, err := strconv.Atoi(header.Get("X-Next-Page"))
		if err != nil || next <= page || len(batch) == 0 {
			break
		}
		page = next
	}
	return all, nil
}

// ListMergeRequests lists merge requests visible to the token.
func (c *Client) ListMergeRequests(ctx context.Context, params map[string]string) ([]MergeRequest, error) {
	mrs, err := fetchAll[MergeRequest](ctx, c, "/merge_requests", params)
	if err != nil {
		return nil, fmt.Errorf("list merge requests: %w", err)
	}
	return mrs, nil
}

// ListIssues lists issues visible to the token.
func (c *Client) ListIssues(ctx context.Context, params map[string]string) ([]Issue, error) {
	issues, err := fetchAll[Issue](ctx, c, "/issues", params)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	return issues, nil
}

// GetProject fetches a project by numeric id.
func (c *Client) GetProject(ctx context.Context, id int) (*Project, error) {
	apiURL := c.buildURL("/projects/"+strconv.Itoa(id), nil)
	body, _, err := c.get(ctx, apiURL)
	if err != nil {
		return nil, fmt.Errorf("get project %d: %w", id, err)
	}
	var p Project
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("get project %d: %w", id, platform.ParseError(serviceName, apiURL, body, err))
	}
	return &p, nil
}

// Probe performs the cheapest authenticated request available.
func (c *Client) Probe(ctx context.Context) error {
	_, _, err := c.get(ctx, c.buildURL("/projects", map[string]string{"simple": "true", "per_page": "1"}))
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	return nil
}
