package activity

import (
	"strings"
)

// Item is one normalized unit of activity: a change, ticket or merge request
// tagged with the category it was fetched under. Timestamps are kept as the
// ISO-8601 text returned by the service.
type Item struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Status   string            `json:"status"`
	Created  string            `json:"created"`
	Updated  string            `json:"updated"`
	URL      string            `json:"url"`
	Platform string            `json:"platform"`
	Category Category          `json:"category"`
	Project  string            `json:"project"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Meta returns a metadata value, or "" when absent.
func (i Item) Meta(key string) string {
	if i.Metadata == nil {
		return ""
	}
	return i.Metadata[key]
}

// Matches reports whether the item's title, project or id contains query,
// ignoring case. An empty query matches everything.
func (i Item) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(i.Title), q) ||
		strings.Contains(strings.ToLower(i.Project), q) ||
		strings.Contains(strings.ToLower(i.ID), q)
}

// Metrics holds aggregate counts for one platform.
// TotalItems is expected to equal the sum of ItemsByCategory.
type Metrics struct {
	TotalItems       int              `json:"total_items"`
	ItemsByCategory  map[Category]int `json:"items_by_category"`
	PlatformSpecific map[string]int   `json:"platform_specific,omitempty"`
}

// NewMetrics returns empty metrics with initialized maps.
func NewMetrics() Metrics {
	return Metrics{
		ItemsByCategory:  make(map[Category]int),
		PlatformSpecific: make(map[string]int),
	}
}

// Add records n items under c and keeps TotalItems in step.
func (m *Metrics) Add(c Category, n int) {
	if m.ItemsByCategory == nil {
		m.ItemsByCategory = make(map[Category]int)
	}
	m.ItemsByCategory[c] += n
	m.TotalItems += n
}

// Consistent reports whether TotalItems equals the per-category sum.
func (m Metrics) Consistent() bool {
	sum := 0
	for _, n := range m.ItemsByCategory {
		sum += n
	}
	return sum == m.TotalItems
}

// DetailedActivities maps each category to its items in service order
// (typically newest first).
type DetailedActivities struct {
	ItemsByCategory map[Category][]Item `json:"items_by_category"`
}

// NewDetailed returns an empty DetailedActivities.
func NewDetailed() DetailedActivities {
	return DetailedActivities{ItemsByCategory: make(map[Category][]Item)}
}

// Set stores items under c, replacing any previous list.
func (d *DetailedActivities) Set(c Category, items []Item) {
	if d.ItemsByCategory == nil {
		d.ItemsByCategory = make(map[Category][]Item)
	}
	d.ItemsByCategory[c] = items
}

// Has reports whether the platform produced category c.
func (d DetailedActivities) Has(c Category) bool {
	_, ok := d.ItemsByCategory[c]
	return ok
}

// Items returns the items of c in their original order.
func (d DetailedActivities) Items(c Category) []Item {
	return d.ItemsByCategory[c]
}

// Categories returns the categories present, in display order.
func (d DetailedActivities) Categories() []Category {
	cats := make([]Category, 0, len(d.ItemsByCategory))
	for c := range d.ItemsByCategory {
		cats = append(cats, c)
	}
	SortCategories(cats)
	return cats
}

// Total returns the number of items across all categories.
func (d DetailedActivities) Total() int {
	n := 0
	for _, items := range d.ItemsByCategory {
		n += len(items)
	}
	return n
}

// Search returns every item matching query, in category display order.
func (d DetailedActivities) Search(query string) []Item {
	var out []Item
	for _, c := range d.Categories() {
		for _, item := range d.ItemsByCategory[c] {
			if item.Matches(query) {
				out = append(out, item)
			}
		}
	}
	return out
}

// Metrics derives counts from the detailed item lists.
func (d DetailedActivities) Metrics() Metrics {
	m := NewMetrics()
	for c, items := range d.ItemsByCategory {
		m.Add(c, len(items))
	}
	return m
}
