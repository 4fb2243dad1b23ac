package jira

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kain88-de/reviewr/internal/platform"
)

const serviceName = "JIRA"

// Search paging.
const (
	// PageSize is the maxResults sent with each search request.
	PageSize = 50

	// MaxIssues bounds how many issues one category fetch collects.
	MaxIssues = 500
)

// searchFields is the set of fields requested in search queries.
var searchFields = []string{
	"summary", "status", "assignee", "reporter", "created", "updated",
	"resolutiondate", "project", "issuetype", "priority", "components",
}

// Client provides HTTP access to a Jira instance.
type Client struct {
	URL        string
	Username   string
	APIToken   string
	HTTPClient *http.Client

	// CustomFields maps display names to custom field ids
	// (e.g. "story_points" to "customfield_10016").
	CustomFields map[string]string
}

// NewClient creates a new Jira client.
func NewClient(url, username, apiToken string) *Client {
	return &Client{
		URL:        strings.TrimSuffix(url, "/"),
		Username:   username,
		APIToken:   apiToken,
		HTTPClient: platform.NewHTTPClient(),
	}
}

// WithHTTPClient returns a copy of the client using h.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	cp := *c
	cp.HTTPClient = h
	return &cp
}

func (c *Client) fields() string {
	fields := append([]string(nil), searchFields...)
	for _, id := range c.CustomFields {
		fields = append(fields, id)
	}
	return strings.Join(fields, ",")
}

func (c *Client) searchURL(jql string, startAt, maxResults int, fields string) string {
	params := url.Values{
		"jql":        {jql},
		"startAt":    {strconv.Itoa(startAt)},
		"maxResults": {strconv.Itoa(maxResults)},
	}
	if fields != "" {
		params.Set("fields", fields)
	}
	return fmt.Sprintf("%s/rest/api/3/search?%s", c.URL, params.Encode())
}

// SearchIssues queries Jira using JQL and returns up to limit matching
// issues, handling pagination.
func (c *Client) SearchIssues(ctx context.Context, jql string, limit int) ([]Issue, error) {
	var allIssues []Issue
	startAt := 0
	fields := c.fields()

	for len(allIssues) < limit {
		pageSize := min(PageSize, limit-len(allIssues))
		apiURL := c.searchURL(jql, startAt, pageSize, fields)

		body, err := c.doRequest(ctx, apiURL)
		if err != nil {
			return nil, fmt.Errorf("search issues: %w", err)
		}

		var result SearchResult
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("search issues: %w", platform.ParseError(serviceName, apiURL, body, err))
		}
		if len(c.CustomFields) > 0 {
			if err := c.decodeCustomFields(body, result.Issues); err != nil {
				return nil, fmt.Errorf("search issues: %w", platform.ParseError(serviceName, apiURL, body, err))
			}
		}

		allIssues = append(allIssues, result.Issues...)

		if len(result.Issues) == 0 || startAt+len(result.Issues) >= result.Total {
			break
		}
		startAt += len(result.Issues)
	}

	return allIssues, nil
}

// CountIssues returns the number of issues matching jql without fetching
// them (maxResults=0).
func (c *Client) CountIssues(ctx context.Context, jql string) (int, error) {
	apiURL := c.searchURL(jql, 0, 0, "")
	body, err := c.doRequest(ctx, apiURL)
	if err != nil {
		return 0, fmt.Errorf("count issues: %w", err)
	}
	var result SearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("count issues: %w", platform.ParseError(serviceName, apiURL, body, err))
	}
	return result.Total, nil
}

// Myself returns the authenticated user.
func (c *Client) Myself(ctx context.Context) (*UserField, error) {
	apiURL := c.URL + "/rest/api/3/myself"
	body, err := c.doRequest(ctx, apiURL)
	if err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}
	var user UserField
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("get current user: %w", platform.ParseError(serviceName, apiURL, body, err))
	}
	return &user, nil
}

// decodeCustomFields fills Issue.Custom from the raw search response.
func (c *Client) decodeCustomFields(body []byte, issues []Issue) error {
	var raw struct {
		Issues []struct {
			Fields map[string]json.RawMessage `json:"fields"`
		} `json:"issues"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return err
	}
	for i := range issues {
		if i >= len(raw.Issues) {
			break
		}
		issues[i].Custom = make(map[string]string, len(c.CustomFields))
		for name, id := range c.CustomFields {
			if v, ok := raw.Issues[i].Fields[id]; ok {
				issues[i].Custom[name] = customValue(v)
			}
		}
	}
	return nil
}

// customValue renders a custom field value: strings as-is, option and
// user objects by their value or name, anything else as raw JSON.
func customValue(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	var obj struct {
		Value       string `json:"value"`
		Name        string `json:"name"`
		DisplayName string `json:"displayName"`
	}
	if err := json.Unmarshal(v, &obj); err == nil {
		switch {
		case obj.Value != "":
			return obj.Value
		case obj.Name != "":
			return obj.Name
		case obj.DisplayName != "":
			return obj.DisplayName
		}
	}
	if string(v) == "null" {
		return ""
	}
	return string(v)
}

// doRequest executes an authenticated GET and returns the response body.
func (c *Client) doRequest(ctx context.Context, apiURL string) ([]byte, error) {
	if c.URL == "" {
		return nil, platform.ConfigError(serviceName, "jira URL not configured")
	}
	if c.APIToken == "" {
		return nil, platform.ConfigError(serviceName, "jira API token not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setAuth(req)

	return platform.Do(c.HTTPClient, serviceName, req)
}

// setAuth uses Basic auth with the API token when a username is set (Jira
// Cloud) and a Bearer personal access token otherwise (Jira Server/DC).
func (c *Client) setAuth(req *http.Request) {
	if c.Username != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.APIToken))
		req.Header.Set("Authorization", "Basic "+auth)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.APIToken)
	}
}
