// Package gerrit implements the Gerrit review platform adapter.
//
// Gerrit's REST API prefixes every JSON response with the XSSI guard
// ")]}'" and authenticates under the /a/ path prefix with HTTP Basic auth
// using the account's HTTP password.
package gerrit

import (
	"sort"
	"strings"
	"time"
)

// API configuration constants.
const (
	// AuthPrefix is prepended to every REST path so requests authenticate.
	AuthPrefix = "/a"

	// XSSIPrefix guards every JSON response body.
	XSSIPrefix = ")]}'"

	// DefaultLimit is the maximum number of changes per query.
	DefaultLimit = 100

	// timeLayout is the timestamp format of the REST API (always UTC).
	timeLayout = "2006-01-02 15:04:05.000000000"
)

// queryOptions ask for account details, label votes and review messages,
// which reviewer attribution needs.
var queryOptions = []string{"DETAILED_ACCOUNTS", "DETAILED_LABELS", "MESSAGES"}

// AccountInfo is a Gerrit account.
type AccountInfo struct {
	AccountID int    `json:"_account_id"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Username  string `json:"username,omitempty"`
}

// DisplayName returns the most readable identifier of the account.
func (a *AccountInfo) DisplayName() string {
	switch {
	case a == nil:
		return ""
	case a.Name != "":
		return a.Name
	case a.Email != "":
		return a.Email
	default:
		return a.Username
	}
}

// ApprovalInfo is one vote on a label.
type ApprovalInfo struct {
	AccountInfo
	Value int    `json:"value"`
	Date  string `json:"date,omitempty"`
}

// LabelInfo holds the votes on one label, e.g. Code-Review.
type LabelInfo struct {
	All []ApprovalInfo `json:"all,omitempty"`
}

// ChangeMessageInfo is a message on a change, e.g. a review comment.
type ChangeMessageInfo struct {
	ID      string       `json:"id"`
	Author  *AccountInfo `json:"author,omitempty"`
	Date    string       `json:"date"`
	Message string       `json:"message"`
	Tag     string       `json:"tag,omitempty"`
}

// IsAutogenerated reports whether Gerrit or a bot posted the message
// (tags like "autogenerated:gerrit:newPatchSet").
func (m ChangeMessageInfo) IsAutogenerated() bool {
	return strings.HasPrefix(m.Tag, "autogenerated:")
}

// ChangeInfo is a change as returned by the /changes/ endpoint.
type ChangeInfo struct {
	ID         string               `json:"id"`
	Project    string               `json:"project"`
	Branch     string               `json:"branch"`
	ChangeID   string               `json:"change_id"`
	Subject    string               `json:"subject"`
	Status     string               `json:"status"`
	Created    string               `json:"created"`
	Updated    string               `json:"updated"`
	Submitted  string               `json:"submitted,omitempty"`
	Insertions int                  `json:"insertions"`
	Deletions  int                  `json:"deletions"`
	Number     int                  `json:"_number"`
	Owner      AccountInfo          `json:"owner"`
	Labels     map[string]LabelInfo `json:"labels,omitempty"`
	Messages   []ChangeMessageInfo  `json:"messages,omitempty"`
}

// Reviewers returns the accounts other than the owner that voted on a
// label or left a review message, in order of first appearance.
func (c ChangeInfo) Reviewers() []AccountInfo {
	seen := map[int]bool{c.Owner.AccountID: true}
	var out []AccountInfo
	add := func(a AccountInfo) {
		if a.AccountID == 0 || seen[a.AccountID] {
			return
		}
		seen[a.AccountID] = true
		out = append(out, a)
	}
	for _, m := range c.Messages {
		if m.Author != nil && !m.IsAutogenerated() {
			add(*m.Author)
		}
	}
	for _, name := range sortedKeys(c.Labels) {
		for _, vote := range c.Labels[name].All {
			if vote.Value != 0 {
				add(vote.AccountInfo)
			}
		}
	}
	return out
}

// formatTime converts a Gerrit timestamp to RFC 3339. Unparseable values
// are returned unchanged.
func formatTime(s string) string {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return s
	}
	return t.UTC().Format(time.RFC3339)
}

func sortedKeys(m map[string]LabelInfo) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
