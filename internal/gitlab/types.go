// Package gitlab implements the GitLab adapter. One adapter is registered
// per configured instance, under the id "gitlab:<instance>".
package gitlab

import (
	"net/http"
	"strings"
)

// API configuration constants.
const (
	// DefaultAPIEndpoint is the GitLab API v4 endpoint suffix.
	DefaultAPIEndpoint = "/api/v4"

	// MaxPageSize is the maximum number of items to fetch per page.
	MaxPageSize = 100

	// MaxPages is the maximum number of pages to fetch before stopping.
	// This prevents infinite loops from malformed X-Next-Page headers.
	MaxPages = 1000
)

// Client provides methods to interact with the GitLab REST API.
type Client struct {
	Token      string       // GitLab personal access token
	BaseURL    string       // API root (e.g., "https://gitlab.com/api/v4")
	HTTPClient *http.Client // Optional custom HTTP client
}

// MergeRequest represents a merge request from the GitLab API.
type MergeRequest struct {
	ID           int    `json:"id"`  // Global merge request ID
	IID          int    `json:"iid"` // Project-scoped ID
	ProjectID    int    `json:"project_id"`
	Title        string `json:"title"`
	State        string `json:"state"` // "opened", "closed", "merged", "locked"
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	MergedAt     string `json:"merged_at,omitempty"`
	Author       *User  `json:"author,omitempty"`
	Assignee     *User  `json:"assignee,omitempty"`
	Reviewers    []User `json:"reviewers,omitempty"`
	MergedBy     *User  `json:"merged_by,omitempty"`
	TargetBranch string `json:"target_branch"`
	SourceBranch string `json:"source_branch"`
	WebURL       string `json:"web_url"`
}

// Issue represents an issue from the GitLab API.
type Issue struct {
	ID        int    `json:"id"`  // Global issue ID
	IID       int    `json:"iid"` // Project-scoped issue ID
	ProjectID int    `json:"project_id"`
	Title     string `json:"title"`
	State     string `json:"state"` // "opened", "closed"
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	Author    *User  `json:"author,omitempty"`
	Assignee  *User  `json:"assignee,omitempty"`
	WebURL    string `json:"web_url"`
}

// User represents a GitLab user.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

func usernameOf(u *User) string {
	if u == nil {
		return ""
	}
	return u.Username
}

// Project represents a GitLab project.
type Project struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	PathWithNamespace string `json:"path_with_namespace"`
	WebURL            string `json:"web_url"`
}

// DisplayName returns "name (path_with_namespace)".
func (p *Project) DisplayName() string {
	return p.Name + " (" + p.PathWithNamespace + ")"
}

// stateNames maps API states to display statuses.
var stateNames = map[string]string{
	"opened": "Open",
	"merged": "Merged",
	"closed": "Closed",
	"locked": "Locked",
}

// DisplayState returns the display status for an API state.
func DisplayState(state string) string {
	if s, ok := stateNames[state]; ok {
		return s
	}
	if state == "" {
		return ""
	}
	return strings.ToUpper(state[:1]) + state[1:]
}

// UsernameFromEmail returns the local part of an email address, which is
// the GitLab username by convention.
func UsernameFromEmail(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}
