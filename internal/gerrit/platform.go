package gerrit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/kain88-de/reviewr/internal/activity"
	"github.com/kain88-de/reviewr/internal/config"
	"github.com/kain88-de/reviewr/internal/errlog"
	"github.com/kain88-de/reviewr/internal/platform"
)

// PlatformID is the registry id of the Gerrit adapter.
const PlatformID = "gerrit"

// Platform adapts a Gerrit instance to platform.Platform.
type Platform struct {
	cfg    *config.GerritConfig
	client *Client
	report platform.Reporter
	logger *slog.Logger
	limit  int
}

var _ platform.Platform = (*Platform)(nil)

// New creates the Gerrit adapter. cfg may be nil, in which case the
// adapter reports itself as not configured.
func New(cfg *config.GerritConfig, errs *errlog.Log, logger *slog.Logger) *Platform {
	if cfg == nil {
		cfg = &config.GerritConfig{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("platform", PlatformID)
	return &Platform{
		cfg:    cfg,
		client: NewClient(cfg.URL, cfg.Username, cfg.HTTPPassword),
		report: platform.Reporter{PlatformID: PlatformID, Errors: errs, Logger: logger},
		logger: logger,
		limit:  DefaultLimit,
	}
}

// WithHTTPClient makes the adapter send requests through h.
func (p *Platform) WithHTTPClient(h *http.Client) *Platform {
	p.client = p.client.WithHTTPClient(h)
	return p
}

func (p *Platform) ID() string   { return PlatformID }
func (p *Platform) Name() string { return "Gerrit" }
func (p *Platform) Icon() string { return "🔍" }

func (p *Platform) IsConfigured() bool { return p.cfg.IsConfigured() }

// DetailedActivities fetches the user's changes, merged changes, reviews
// given and reviews received. The first failing query aborts the fetch.
func (p *Platform) DetailedActivities(ctx context.Context, user string, days int) (activity.DetailedActivities, error) {
	d := activity.NewDetailed()
	if !p.IsConfigured() {
		return d, p.report.Fail("get_detailed_activities", user,
			platform.ConfigError(serviceName, "gerrit_url, username and http_password are required"))
	}

	owned, err := p.query(ctx, "fetch_changes_created", user, fmt.Sprintf("owner:%s -age:%dd", user, days))
	if err != nil {
		return d, err
	}
	merged, err := p.query(ctx, "fetch_changes_merged", user, fmt.Sprintf("owner:%s status:merged -age:%dd", user, days))
	if err != nil {
		return d, err
	}
	given, err := p.query(ctx, "fetch_reviews_given", user, fmt.Sprintf("reviewer:%s -owner:%s -age:%dd", user, user, days))
	if err != nil {
		return d, err
	}

	d.Set(activity.ChangesCreated, p.toItems(owned, activity.ChangesCreated))
	d.Set(activity.ChangesMerged, p.toItems(merged, activity.ChangesMerged))
	d.Set(activity.ReviewsGiven, p.toItems(given, activity.ReviewsGiven))
	d.Set(activity.ReviewsReceived, p.reviewsReceived(owned))

	p.logger.Debug("fetched gerrit activities", "user", user, "days", days, "items", d.Total())
	return d, nil
}

// reviewsReceived keeps the owned changes that someone else reviewed.
func (p *Platform) reviewsReceived(owned []ChangeInfo) []activity.Item {
	items := []activity.Item{}
	for _, c := range owned {
		reviewers := c.Reviewers()
		if len(reviewers) == 0 {
			continue
		}
		names := make([]string, len(reviewers))
		for i := range reviewers {
			names[i] = reviewers[i].DisplayName()
		}
		item := p.toItem(c, activity.ReviewsReceived)
		item.Metadata["reviewers"] = strings.Join(names, ", ")
		items = append(items, item)
	}
	return items
}

func (p *Platform) query(ctx context.Context, operation, user, q string) ([]ChangeInfo, error) {
	var changes []ChangeInfo
	err := platform.Retry(ctx, func() error {
		var err error
		changes, err = p.client.QueryChanges(ctx, q, p.limit)
		return err
	})
	if err != nil {
		return nil, p.report.Fail(operation, user, err, "query", q)
	}
	return changes, nil
}

// ActivityMetrics derives counts from DetailedActivities and adds line
// statistics of the user's own changes.
func (p *Platform) ActivityMetrics(ctx context.Context, user string, days int) (activity.Metrics, error) {
	d, err := p.DetailedActivities(ctx, user, days)
	if err != nil {
		return activity.Metrics{}, err
	}
	m := d.Metrics()
	for _, item := range d.Items(activity.ChangesCreated) {
		ins, _ := strconv.Atoi(item.Meta("insertions"))
		del, _ := strconv.Atoi(item.Meta("deletions"))
		m.PlatformSpecific["insertions"] += ins
		m.PlatformSpecific["deletions"] += del
	}
	return m, nil
}

func (p *Platform) SearchItems(ctx context.Context, query, user string) ([]activity.Item, error) {
	return platform.SearchDetailed(ctx, p, query, user)
}

// TestConnection probes /a/accounts/self.
func (p *Platform) TestConnection(ctx context.Context) (activity.ConnectionStatus, error) {
	if !p.IsConfigured() {
		return activity.NotConfigured(), nil
	}
	_, err := p.client.Self(ctx)
	if err != nil {
		err = p.report.Fail("test_connection", "", err)
	}
	return platform.ClassifyConnection(err), nil
}

// ItemURL returns {base}/c/{project}/+/{number}.
func (p *Platform) ItemURL(item activity.Item) string {
	return p.changeURL(item.Project, item.ID)
}

func (p *Platform) changeURL(project, number string) string {
	return fmt.Sprintf("%s/c/%s/+/%s", p.client.URL, project, number)
}

func (p *Platform) toItems(changes []ChangeInfo, cat activity.Category) []activity.Item {
	items := make([]activity.Item, 0, len(changes))
	for _, c := range changes {
		items = append(items, p.toItem(c, cat))
	}
	return items
}

func (p *Platform) toItem(c ChangeInfo, cat activity.Category) activity.Item {
	id := strconv.Itoa(c.Number)
	return activity.Item{
		ID:       id,
		Title:    c.Subject,
		Status:   c.Status,
		Created:  formatTime(c.Created),
		Updated:  formatTime(c.Updated),
		URL:      p.changeURL(c.Project, id),
		Platform: PlatformID,
		Category: cat,
		Project:  c.Project,
		Metadata: map[string]string{
			"branch":     c.Branch,
			"owner":      c.Owner.DisplayName(),
			"change_id":  c.ChangeID,
			"insertions": strconv.Itoa(c.Insertions),
			"deletions":  strconv.Itoa(c.Deletions),
		},
	}
}
