package jira

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kain88-de/reviewr/internal/activity"
	"github.com/kain88-de/reviewr/internal/config"
	"github.com/kain88-de/reviewr/internal/errlog"
	"github.com/kain88-de/reviewr/internal/platform"
)

// PlatformID is the registry id of the Jira adapter.
const PlatformID = "jira"

// categoryQuery describes the JQL behind one activity category.
type categoryQuery struct {
	category  activity.Category
	operation string
	jql       func(email string, days int) string
}

var categoryQueries = []categoryQuery{
	{
		category:  activity.IssuesCreated,
		operation: "fetch_issues_created",
		jql: func(e string, n int) string {
			return fmt.Sprintf(`reporter = "%s" AND created >= -%dd`, e, n)
		},
	},
	{
		category:  activity.IssuesResolved,
		operation: "fetch_issues_resolved",
		jql: func(e string, n int) string {
			return fmt.Sprintf(`assignee = "%s" AND resolved >= -%dd`, e, n)
		},
	},
	{
		category:  activity.IssuesAssigned,
		operation: "fetch_issues_assigned",
		jql: func(e string, _ int) string {
			return fmt.Sprintf(`assignee = "%s" AND resolution = Unresolved`, e)
		},
	},
	{
		category:  activity.IssuesCommented,
		operation: "fetch_issues_commented",
		jql: func(e string, n int) string {
			return fmt.Sprintf(`issue in updatedBy("%s", "-%dd") AND reporter != "%s"`, e, n, e)
		},
	},
}

var categoryOrder = map[activity.Category]string{
	activity.IssuesCreated:   "created DESC",
	activity.IssuesResolved:  "resolved DESC",
	activity.IssuesAssigned:  "updated DESC",
	activity.IssuesCommented: "updated DESC",
}

// Platform adapts a Jira instance to platform.Platform.
type Platform struct {
	cfg    *config.JiraConfig
	client *Client
	report platform.Reporter
	logger *slog.Logger
}

var _ platform.Platform = (*Platform)(nil)

// New creates the Jira adapter. cfg may be nil, in which case the adapter
// reports itself as not configured.
func New(cfg *config.JiraConfig, errs *errlog.Log, logger *slog.Logger) *Platform {
	if cfg == nil {
		cfg = &config.JiraConfig{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("platform", PlatformID)
	client := NewClient(cfg.URL, cfg.Username, cfg.APIToken)
	client.CustomFields = cfg.CustomFields
	return &Platform{
		cfg:    cfg,
		client: client,
		report: platform.Reporter{PlatformID: PlatformID, Errors: errs, Logger: logger},
		logger: logger,
	}
}

// WithHTTPClient makes the adapter send requests through h.
func (p *Platform) WithHTTPClient(h *http.Client) *Platform {
	p.client = p.client.WithHTTPClient(h)
	return p
}

func (p *Platform) ID() string   { return PlatformID }
func (p *Platform) Name() string { return "JIRA" }
func (p *Platform) Icon() string { return "🎫" }

func (p *Platform) IsConfigured() bool { return p.cfg.IsConfigured() }

// buildJQL appends the project filter and ordering to a category condition.
func (p *Platform) buildJQL(q categoryQuery, email string, days int) string {
	jql := q.jql(email, days)
	if len(p.cfg.ProjectFilter) > 0 {
		quoted := make([]string, len(p.cfg.ProjectFilter))
		for i, key := range p.cfg.ProjectFilter {
			quoted[i] = fmt.Sprintf("%q", key)
		}
		jql += " AND project in (" + strings.Join(quoted, ", ") + ")"
	}
	return jql + " ORDER BY " + categoryOrder[q.category]
}

func (p *Platform) notConfigured(operation, user string) error {
	return p.report.Fail(operation, user,
		platform.ConfigError(serviceName, "jira_url and api_token are required"))
}

// DetailedActivities runs one JQL search per category. The first failing
// search aborts the fetch.
func (p *Platform) DetailedActivities(ctx context.Context, user string, days int) (activity.DetailedActivities, error) {
	d := activity.NewDetailed()
	if !p.IsConfigured() {
		return d, p.notConfigured("get_detailed_activities", user)
	}

	for _, q := range categoryQueries {
		jql := p.buildJQL(q, user, days)
		var issues []Issue
		err := platform.Retry(ctx, func() error {
			var err error
			issues, err = p.client.SearchIssues(ctx, jql, MaxIssues)
			return err
		})
		if err != nil {
			return d, p.report.Fail(q.operation, user, err, "jql", jql)
		}

		items := make([]activity.Item, 0, len(issues))
		for _, issue := range issues {
			items = append(items, p.toItem(issue, q.category))
		}
		d.Set(q.category, items)
	}

	p.logger.Debug("fetched jira activities", "user", user, "days", days, "items", d.Total())
	return d, nil
}

// ActivityMetrics counts issues per category with maxResults=0 searches,
// without downloading them.
func (p *Platform) ActivityMetrics(ctx context.Context, user string, days int) (activity.Metrics, error) {
	m := activity.NewMetrics()
	if !p.IsConfigured() {
		return m, p.notConfigured("get_activity_metrics", user)
	}

	for _, q := range categoryQueries {
		jql := p.buildJQL(q, user, days)
		var n int
		err := platform.Retry(ctx, func() error {
			var err error
			n, err = p.client.CountIssues(ctx, jql)
			return err
		})
		if err != nil {
			return activity.Metrics{}, p.report.Fail("count_"+strings.TrimPrefix(q.operation, "fetch_"), user, err, "jql", jql)
		}
		m.Add(q.category, n)
	}
	return m, nil
}

func (p *Platform) SearchItems(ctx context.Context, query, user string) ([]activity.Item, error) {
	return platform.SearchDetailed(ctx, p, query, user)
}

// TestConnection probes /rest/api/3/myself.
func (p *Platform) TestConnection(ctx context.Context) (activity.ConnectionStatus, error) {
	if !p.IsConfigured() {
		return activity.NotConfigured(), nil
	}
	_, err := p.client.Myself(ctx)
	if err != nil {
		err = p.report.Fail("test_connection", "", err)
	}
	return platform.ClassifyConnection(err), nil
}

// ItemURL returns {base}/browse/{KEY}.
func (p *Platform) ItemURL(item activity.Item) string {
	return IssueURL(p.client.URL, item.ID)
}

func (p *Platform) toItem(issue Issue, cat activity.Category) activity.Item {
	f := issue.Fields
	var project, projectName string
	if f.Project != nil {
		project = f.Project.Key
		projectName = f.Project.Name
	}
	assignee := "Unassigned"
	if f.Assignee != nil && f.Assignee.DisplayName != "" {
		assignee = f.Assignee.DisplayName
	}
	components := make([]string, 0, len(f.Components))
	for _, c := range f.Components {
		components = append(components, c.Name)
	}

	meta := map[string]string{
		"issue_type": nameOf(f.IssueType),
		"project":    projectName,
		"status":     nameOf(f.Status),
		"assignee":   assignee,
		"priority":   nameOf(f.Priority),
		"components": strings.Join(components, ", "),
	}
	if f.ResolutionDate != "" {
		meta["resolved"] = formatTimestamp(f.ResolutionDate)
	}
	for name, value := range issue.Custom {
		meta[name] = value
	}

	return activity.Item{
		ID:       issue.Key,
		Title:    f.Summary,
		Status:   nameOf(f.Status),
		Created:  formatTimestamp(f.Created),
		Updated:  formatTimestamp(f.Updated),
		URL:      IssueURL(p.client.URL, issue.Key),
		Platform: PlatformID,
		Category: cat,
		Project:  project,
		Metadata: meta,
	}
}
