// Package activity defines the normalized activity schema shared by every
// platform adapter and the browser.
package activity

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category classifies an item's relationship to the person being reviewed.
// Categories are comparable values; two Other categories with the same name
// are equal and hash to the same map key.
type Category string

// Category constants
const (
	ChangesCreated  Category = "ChangesCreated"
	ChangesReviewed Category = "ChangesReviewed"
	ChangesMerged   Category = "ChangesMerged"
	ReviewsGiven    Category = "ReviewsGiven"
	ReviewsReceived Category = "ReviewsReceived"

	IssuesCreated   Category = "IssuesCreated"
	IssuesAssigned  Category = "IssuesAssigned"
	IssuesResolved  Category = "IssuesResolved"
	IssuesCommented Category = "IssuesCommented"

	MergeRequestsCreated  Category = "MergeRequestsCreated"
	MergeRequestsReviewed Category = "MergeRequestsReviewed"
	MergeRequestsMerged   Category = "MergeRequestsMerged"
	CommitsPushed         Category = "CommitsPushed"
)

const otherPrefix = "Other:"

// knownCategories lists the closed set in display order.
var knownCategories = []Category{
	ChangesCreated,
	ChangesReviewed,
	ChangesMerged,
	ReviewsGiven,
	ReviewsReceived,
	IssuesCreated,
	IssuesAssigned,
	IssuesResolved,
	IssuesCommented,
	MergeRequestsCreated,
	MergeRequestsReviewed,
	MergeRequestsMerged,
	CommitsPushed,
}

var displayNames = map[Category]string{
	ChangesCreated:        "Changes Created",
	ChangesReviewed:       "Changes Reviewed",
	ChangesMerged:         "Changes Merged",
	ReviewsGiven:          "Reviews Given",
	ReviewsReceived:       "Reviews Received",
	IssuesCreated:         "Issues Created",
	IssuesAssigned:        "Issues Assigned",
	IssuesResolved:        "Issues Resolved",
	IssuesCommented:       "Issues Commented",
	MergeRequestsCreated:  "Merge Requests Created",
	MergeRequestsReviewed: "Merge Requests Reviewed",
	MergeRequestsMerged:   "Merge Requests Merged",
	CommitsPushed:         "Commits Pushed",
}

var icons = map[Category]string{
	ChangesCreated:        "📝",
	ChangesReviewed:       "👀",
	ChangesMerged:         "✅",
	ReviewsGiven:          "👀",
	ReviewsReceived:       "📥",
	IssuesCreated:         "🎫",
	IssuesResolved:        "✅",
	IssuesAssigned:        "📌",
	IssuesCommented:       "💬",
	MergeRequestsCreated:  "🔀",
	MergeRequestsReviewed: "👀",
	MergeRequestsMerged:   "✅",
	CommitsPushed:         "⬆️",
}

var shortKeys = map[Category]rune{
	ChangesCreated:       'c',
	ChangesMerged:        'm',
	ReviewsGiven:         'g',
	ReviewsReceived:      'r',
	IssuesCreated:        'c',
	IssuesAssigned:       'a',
	IssuesResolved:       'r',
	MergeRequestsCreated: 'c',
	MergeRequestsMerged:  'm',
}

var titleCaser = cases.Title(language.English)

// Other returns the open-extension category with the given name.
func Other(name string) Category {
	return Category(otherPrefix + name)
}

// Known returns the closed category set in display order.
func Known() []Category {
	out := make([]Category, len(knownCategories))
	copy(out, knownCategories)
	return out
}

// IsOther reports whether c is an Other category.
func (c Category) IsOther() bool {
	return strings.HasPrefix(string(c), otherPrefix)
}

// OtherName returns the name of an Other category, or "" for known ones.
func (c Category) OtherName() string {
	if !c.IsOther() {
		return ""
	}
	return strings.TrimPrefix(string(c), otherPrefix)
}

// IsValid reports whether c belongs to the closed set or is a named Other.
func (c Category) IsValid() bool {
	if c.IsOther() {
		return c.OtherName() != ""
	}
	_, ok := displayNames[c]
	return ok
}

// DisplayName returns the human-readable label, e.g. "Changes Created".
func (c Category) DisplayName() string {
	if name, ok := displayNames[c]; ok {
		return name
	}
	if c.IsOther() {
		return titleCaser.String(c.OtherName())
	}
	return string(c)
}

// Icon returns the glyph shown next to the category in lists.
func (c Category) Icon() string {
	if icon, ok := icons[c]; ok {
		return icon
	}
	return "📄"
}

// ShortKey returns the single-letter mnemonic for the category.
func (c Category) ShortKey() rune {
	if k, ok := shortKeys[c]; ok {
		return k
	}
	return 'o'
}

func (c Category) String() string {
	return c.DisplayName()
}

// rank orders known categories by their position in the closed set and
// places every Other category after them.
func (c Category) rank() int {
	for i, k := range knownCategories {
		if k == c {
			return i
		}
	}
	return len(knownCategories)
}

// SortCategories orders categories in display order: the closed set first,
// then Other categories by name.
func SortCategories(cats []Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		ri, rj := cats[i].rank(), cats[j].rank()
		if ri != rj {
			return ri < rj
		}
		return cats[i] < cats[j]
	})
}
