// Package platform defines the capability contract every service adapter
// implements, and the Registry that fetches from all configured adapters
// concurrently.
package platform

import (
	"context"

	"github.com/kain88-de/reviewr/internal/activity"
)

// Platform is the interface every external review or tracking service
// adapter implements. Adapters differ in auth scheme, pagination and data
// shape; only their output is normalized.
type Platform interface {
	// ID returns the stable identifier, unique across the registry
	// (e.g. "gerrit", "jira", "gitlab:company").
	ID() string

	// Name returns the human-readable name (e.g. "Gerrit", "JIRA").
	Name() string

	// Icon returns the glyph shown next to the platform name.
	Icon() string

	// IsConfigured reports whether the adapter has usable local
	// configuration. It never performs network I/O.
	IsConfigured() bool

	// ActivityMetrics returns summary counts over the trailing window.
	ActivityMetrics(ctx context.Context, user string, days int) (activity.Metrics, error)

	// DetailedActivities returns full item lists, one fetch per category.
	DetailedActivities(ctx context.Context, user string, days int) (activity.DetailedActivities, error)

	// SearchItems returns items whose title, project or id contains query,
	// ignoring case.
	SearchItems(ctx context.Context, query, user string) ([]activity.Item, error)

	// TestConnection performs one lightweight probe and classifies the
	// outcome.
	TestConnection(ctx context.Context) (activity.ConnectionStatus, error)

	// ItemURL reconstructs the browser URL for an item.
	ItemURL(item activity.Item) string
}

// DefaultSearchDays is the lookback window used by SearchItems.
const DefaultSearchDays = 30

// SearchDetailed implements SearchItems for adapters that search over their
// own freshly fetched activities.
func SearchDetailed(ctx context.Context, p Platform, query, user string) ([]activity.Item, error) {
	d, err := p.DetailedActivities(ctx, user, DefaultSearchDays)
	if err != nil {
		return nil, err
	}
	return d.Search(query), nil
}
