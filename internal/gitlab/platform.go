package gitlab

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kain88-de/reviewr/internal/activity"
	"github.com/kain88-de/reviewr/internal/config"
	"github.com/kain88-de/reviewr/internal/errlog"
	"github.com/kain88-de/reviewr/internal/platform"
)

// IDPrefix prefixes the registry id of every GitLab instance.
const IDPrefix = "gitlab:"

// Item types recorded in the item_type metadata.
const (
	ItemMergeRequest = "merge_request"
	ItemIssue        = "issue"
)

var now = time.Now

// Platform adapts one GitLab instance to platform.Platform.
type Platform struct {
	instance string
	cfg      config.GitLabConfig
	client   *Client
	report   platform.Reporter
	logger   *slog.Logger

	mu       sync.Mutex
	projects map[int]projectInfo
}

// projectInfo is the cached result of a project lookup. path is empty
// when the lookup failed.
type projectInfo struct {
	name string
	path string
}

var _ platform.Platform = (*Platform)(nil)

// New creates the adapter for the instance configured under
// [platforms.gitlab.<instance>].
func New(instance string, cfg config.GitLabConfig, errs *errlog.Log, logger *slog.Logger) *Platform {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	id := IDPrefix + instance
	logger = logger.With("platform", id)
	return &Platform{
		instance: instance,
		cfg:      cfg,
		client:   NewClient(cfg.Token, cfg.URL),
		report:   platform.Reporter{PlatformID: id, Errors: errs, Logger: logger},
		logger:   logger,
		projects: make(map[int]projectInfo),
	}
}

// WithHTTPClient makes the adapter send requests through h.
func (p *Platform) WithHTTPClient(h *http.Client) *Platform {
	p.client = p.client.WithHTTPClient(h)
	return p
}

func (p *Platform) ID() string { return IDPrefix + p.instance }

// Name returns the configured display name, or "GitLab (<instance>)".
func (p *Platform) Name() string {
	if p.cfg.Name != "" {
		return p.cfg.Name
	}
	return "GitLab (" + p.instance + ")"
}

func (p *Platform) Icon() string { return "🦊" }

func (p *Platform) IsConfigured() bool { return p.cfg.IsConfigured() }

// fetchSpec describes the request behind one activity category.
type fetchSpec struct {
	category  activity.Category
	operation string
	fetch     func(ctx context.Context, username, since string) ([]activity.Item, error)
}

func (p *Platform) specs() []fetchSpec {
	return []fetchSpec{
		{activity.MergeRequestsCreated, "fetch_merge_requests_created", func(ctx context.Context, u, since string) ([]activity.Item, error) {
			return p.mergeRequests(ctx, activity.MergeRequestsCreated, windowParams(since, "author_username", u), "")
		}},
		{activity.MergeRequestsReviewed, "fetch_merge_requests_reviewed", func(ctx context.Context, u, since string) ([]activity.Item, error) {
			return p.mergeRequests(ctx, activity.MergeRequestsReviewed, windowParams(since, "reviewer_username", u), "")
		}},
		{activity.MergeRequestsMerged, "fetch_merge_requests_merged", func(ctx context.Context, u, since string) ([]activity.Item, error) {
			params := map[string]string{
				"state":         "merged",
				"updated_after": since,
				"scope":         "all",
				"order_by":      "updated_at",
				"sort":          "desc",
			}
			return p.mergeRequests(ctx, activity.MergeRequestsMerged, params, u)
		}},
		{activity.IssuesAssigned, "fetch_issues_assigned", func(ctx context.Context, u, since string) ([]activity.Item, error) {
			return p.issues(ctx, activity.IssuesAssigned, windowParams(since, "assignee_username", u))
		}},
		{activity.IssuesCreated, "fetch_issues_created", func(ctx context.Context, u, since string) ([]activity.Item, error) {
			return p.issues(ctx, activity.IssuesCreated, windowParams(since, "author_username", u))
		}},
	}
}

// windowParams are the query parameters shared by windowed listings.
func windowParams(since, userKey, username string) map[string]string {
	return map[string]string{
		userKey:         username,
		"created_after": since,
		"state":         "all",
		"scope":         "all",
		"order_by":      "created_at",
		"sort":          "desc",
	}
}

// DetailedActivities fetches every category. An API or parse failure in
// one category is logged and that category is left out; network and
// authentication failures abort the fetch since every other request would
// fail the same way.
func (p *Platform) DetailedActivities(ctx context.Context, user string, days int) (activity.DetailedActivities, error) {
	d := activity.NewDetailed()
	if !p.IsConfigured() {
		return d, p.report.Fail("get_detailed_activities", user,
			platform.ConfigError(serviceName, "url and token are required"))
	}

	username := UsernameFromEmail(user)
	since := now().AddDate(0, 0, -days).UTC().Format(time.RFC3339)

	for _, spec := range p.specs() {
		var items []activity.Item
		err := platform.Retry(ctx, func() error {
			var err error
			items, err = spec.fetch(ctx, username, since)
			return err
		})
		if err != nil {
			logged := p.report.Fail(spec.operation, user, err, "username", username, "since", since)
			switch platform.KindOf(err) {
			case platform.KindAPI, platform.KindParse:
				if ctx.Err() == nil {
					continue
				}
			}
			return d, logged
		}
		d.Set(spec.category, items)
	}

	p.logger.Debug("fetched gitlab activities", "user", username, "days", days, "items", d.Total())
	return d, nil
}

// mergeRequests lists merge requests as items of cat. When mergedBy is set
// only merge requests merged by that user are kept.
func (p *Platform) mergeRequests(ctx context.Context, cat activity.Category, params map[string]string, mergedBy string) ([]activity.Item, error) {
	mrs, err := p.client.ListMergeRequests(ctx, params)
	if err != nil {
		return nil, err
	}
	items := make([]activity.Item, 0, len(mrs))
	for _, mr := range mrs {
		if mergedBy != "" && usernameOf(mr.MergedBy) != mergedBy {
			continue
		}
		proj := p.project(ctx, mr.ProjectID)
		items = append(items, activity.Item{
			ID:       "mr-" + strconv.Itoa(mr.IID),
			Title:    mr.Title,
			Status:   DisplayState(mr.State),
			Created:  mr.CreatedAt,
			Updated:  mr.UpdatedAt,
			URL:      mr.WebURL,
			Platform: p.ID(),
			Category: cat,
			Project:  proj.name,
			Metadata: map[string]string{
				"author":              usernameOf(mr.Author),
				"item_type":           ItemMergeRequest,
				"iid":                 strconv.Itoa(mr.IID),
				"path_with_namespace": proj.path,
				"target_branch":       mr.TargetBranch,
				"source_branch":       mr.SourceBranch,
				"assignee":            usernameOf(mr.Assignee),
				"merged_by":           usernameOf(mr.MergedBy),
			},
		})
	}
	return items, nil
}

func (p *Platform) issues(ctx context.Context, cat activity.Category, params map[string]string) ([]activity.Item, error) {
	issues, err := p.client.ListIssues(ctx, params)
	if err != nil {
		return nil, err
	}
	items := make([]activity.Item, 0, len(issues))
	for _, is := range issues {
		proj := p.project(ctx, is.ProjectID)
		items = append(items, activity.Item{
			ID:       "issue-" + strconv.Itoa(is.IID),
			Title:    is.Title,
			Status:   DisplayState(is.State),
			Created:  is.CreatedAt,
			Updated:  is.UpdatedAt,
			URL:      is.WebURL,
			Platform: p.ID(),
			Category: cat,
			Project:  proj.name,
			Metadata: map[string]string{
				"author":              usernameOf(is.Author),
				"item_type":           ItemIssue,
				"iid":                 strconv.Itoa(is.IID),
				"path_with_namespace": proj.path,
				"assignee":            usernameOf(is.Assignee),
			},
		})
	}
	return items, nil
}

// project resolves and caches the display name and path of a project id.
// A failed lookup falls back to "Project ID: n" without failing the fetch.
func (p *Platform) project(ctx context.Context, id int) projectInfo {
	p.mu.Lock()
	info, ok := p.projects[id]
	p.mu.Unlock()
	if ok {
		return info
	}

	info = projectInfo{name: fmt.Sprintf("Project ID: %d", id)}
	if proj, err := p.client.GetProject(ctx, id); err != nil {
		p.logger.Debug("project lookup failed", "project_id", id, "error", err)
	} else {
		info = projectInfo{name: proj.DisplayName(), path: proj.PathWithNamespace}
	}

	p.mu.Lock()
	p.projects[id] = info
	p.mu.Unlock()
	return info
}

// ActivityMetrics derives counts from DetailedActivities and splits them
// by item type.
func (p *Platform) ActivityMetrics(ctx context.Context, user string, days int) (activity.Metrics, error) {
	d, err := p.DetailedActivities(ctx, user, days)
	if err != nil {
		return activity.Metrics{}, err
	}
	m := d.Metrics()
	for _, c := range d.Categories() {
		for _, item := range d.Items(c) {
			m.PlatformSpecific[item.Meta("item_type")]++
		}
	}
	return m, nil
}

func (p *Platform) SearchItems(ctx context.Context, query, user string) ([]activity.Item, error) {
	return platform.SearchDetailed(ctx, p, query, user)
}

// TestConnection probes /projects?simple=true&per_page=1.
func (p *Platform) TestConnection(ctx context.Context) (activity.ConnectionStatus, error) {
	if !p.IsConfigured() {
		return activity.NotConfigured(), nil
	}
	err := p.client.Probe(ctx)
	if err != nil {
		err = p.report.Fail("test_connection", "", err)
	}
	return platform.ClassifyConnection(err), nil
}

// ItemURL returns the item's web URL. Without one it is rebuilt from the
// project path and iid; the instance URL is the last resort.
func (p *Platform) ItemURL(item activity.Item) string {
	if item.URL != "" {
		return item.URL
	}
	base := strings.TrimSuffix(p.cfg.URL, "/")
	path, iid := item.Meta("path_with_namespace"), item.Meta("iid")
	if path == "" || iid == "" {
		return p.cfg.URL
	}
	kind := "merge_requests"
	if item.Meta("item_type") == ItemIssue {
		kind = "issues"
	}
	return base + "/" + path + "/-/" + kind + "/" + iid
}
