// Package jira implements the Jira issue tracker adapter on top of the
// REST API v3 JQL search.
package jira

// Issue represents a Jira issue from the REST API.
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Self   string      `json:"self"`
	Fields IssueFields `json:"fields"`

	// Custom holds the raw values of configured custom fields, keyed by
	// their display name.
	Custom map[string]string `json:"-"`
}

// IssueFields contains the fields of a Jira issue.
type IssueFields struct {
	Summary        string        `json:"summary"`
	Status         *NamedField   `json:"status"`
	Priority       *NamedField   `json:"priority"`
	IssueType      *NamedField   `json:"issuetype"`
	Project        *ProjectField `json:"project"`
	Assignee       *UserField    `json:"assignee"`
	Reporter       *UserField    `json:"reporter"`
	Components     []NamedField  `json:"components"`
	Created        string        `json:"created"`
	Updated        string        `json:"updated"`
	ResolutionDate string        `json:"resolutiondate"`
}

// NamedField is any Jira object identified by id and name: statuses,
// priorities, issue types and components.
type NamedField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProjectField represents a Jira project.
type ProjectField struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// UserField represents a Jira user.
type UserField struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// SearchResult represents a Jira JQL search response.
type SearchResult struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}

func nameOf(f *NamedField) string {
	if f == nil {
		return ""
	}
	return f.Name
}
