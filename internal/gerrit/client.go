package gerrit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kain88-de/reviewr/internal/platform"
)

const serviceName = "Gerrit"

// Client provides HTTP access to a Gerrit instance.
type Client struct {
	URL        string
	Username   string
	Password   string
	HTTPClient *http.Client
}

// NewClient creates a new Gerrit client. password is the account's HTTP
// password, not its login password.
func NewClient(baseURL, username, password string) *Client {
	return &Client{
		URL:        strings.TrimSuffix(baseURL, "/"),
		Username:   username,
		Password:   password,
		HTTPClient: platform.NewHTTPClient(),
	}
}

// WithHTTPClient returns a copy of the client using h.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	cp := *c
	cp.HTTPClient = h
	return &cp
}

// buildURL returns the authenticated API URL for path.
func (c *Client) buildURL(path string, params url.Values) string {
	u := c.URL + AuthPrefix + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// QueryChanges runs a change search and returns at most limit changes.
func (c *Client) QueryChanges(ctx context.Context, query string, limit int) ([]ChangeInfo, error) {
	params := url.Values{
		"q": {query},
		"o": queryOptions,
		"n": {strconv.Itoa(limit)},
	}
	var changes []ChangeInfo
	if err := c.get(ctx, c.buildURL("/changes/", params), &changes); err != nil {
		return nil, fmt.Errorf("query changes: %w", err)
	}
	return changes, nil
}

// Self returns the authenticated account.
func (c *Client) Self(ctx context.Context) (*AccountInfo, error) {
	var acct AccountInfo
	if err := c.get(ctx, c.buildURL("/accounts/self", nil), &acct); err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &acct, nil
}

// get performs an authenticated GET and decodes the guarded JSON body.
func (c *Client) get(ctx context.Context, apiURL string, out any) error {
	if c.URL == "" {
		return platform.ConfigError(serviceName, "gerrit URL not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.Username, c.Password)

	body, err := platform.Do(c.HTTPClient, serviceName, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(stripXSSI(body), out); err != nil {
		return platform.ParseError(serviceName, apiURL, body, err)
	}
	return nil
}

// stripXSSI removes the ")]}'" guard line Gerrit puts before JSON.
func stripXSSI(body []byte) []byte {
	body = bytes.TrimLeft(body, " \t\r\n")
	body = bytes.TrimPrefix(body, []byte(XSSIPrefix))
	return bytes.TrimLeft(body, " \t\r\n")
}
