package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kain88-de/reviewr/internal/activity"
	"github.com/kain88-de/reviewr/internal/debug"
	"github.com/kain88-de/reviewr/internal/platform"
	"github.com/kain88-de/reviewr/internal/timeparsing"
	"github.com/kain88-de/reviewr/internal/tui/browser"
)

var reviewCmd = &cobra.Command{
	Use:     "review [name]",
	GroupID: "review",
	Short:   "Fetch and browse an employee's activity",
	Long: `Fetch an employee's activity from every configured platform concurrently
and browse it in the terminal.

A platform that fails is reported and left out; the others are still
shown. The window defaults to ui_preferences.default_time_period_days.

Examples:
  reviewr review "Jane Doe"
  reviewr review "Jane Doe" --days 90
  reviewr review --since "last monday"
  reviewr review "Jane Doe" --since -2w --no-tui`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		noTUI, _ := cmd.Flags().GetBool("no-tui")
		days := resolveDays(cmd)

		store := employeeStore()
		name := resolveEmployeeName(store, args, "Select employee to review")
		emp := loadEmployee(store, name)
		if emp.CommitterEmail == "" {
			FatalErrorWithHint(fmt.Sprintf("employee %q has no committer email", name),
				fmt.Sprintf("set one with 'reviewr edit %q'", name))
		}

		fetchID := uuid.NewString()
		log := logger.With("fetch_id", fetchID)
		reg := buildRegistry(cfg, errLog, log)
		configured := reg.ConfiguredAdapters()
		if len(configured) == 0 {
			FatalErrorWithHint("no platforms configured",
				"add a [platforms.gerrit], [platforms.jira] or [platforms.gitlab.<name>] section to "+paths.Config())
		}

		log.Info("review started", "employee", name, "days", days, "platforms", len(configured))
		debug.PrintNormal("Fetching %d days of activity for %s...\n", days, emp.Name)
		results := fetchWithProgress(rootCtx, reg, emp.CommitterEmail, days, os.Stderr)
		debug.PrintNormal("%s\n", fetchSummary(len(results), len(configured)))
		if rootCtx.Err() != nil {
			WarnError("fetch interrupted, showing partial results")
		}

		if noTUI {
			writeMetricsReport(os.Stdout, reg, results, cfg.UIPreferences)
			return
		}

		err := browser.Run(browser.Options{
			EmployeeName:   emp.Name,
			EmployeeEmail:  emp.CommitterEmail,
			Platforms:      platformInfos(configured),
			Activities:     results,
			PreferredOrder: cfg.UIPreferences.PreferredPlatformOrder,
			ShowIcons:      cfg.UIPreferences.ShowPlatformIcons,
			Theme:          cfg.UIPreferences.Theme,
			ItemURL: func(item activity.Item) string {
				if p := reg.Get(item.Platform); p != nil {
					return p.ItemURL(item)
				}
				return item.URL
			},
			Logger: log,
		})
		if err != nil {
			FatalError("browser: %v", err)
		}
	},
}

// resolveDays returns the review window from --since, --days or the
// configured default, in that order.
func resolveDays(cmd *cobra.Command) int {
	if since, _ := cmd.Flags().GetString("since"); since != "" {
		if cmd.Flags().Changed("days") {
			FatalError("--since and --days cannot be combined")
		}
		days, err := timeparsing.SinceDays(since, time.Now())
		if err != nil {
			FatalError("%v", err)
		}
		return days
	}
	if cmd.Flags().Changed("days") {
		days, _ := cmd.Flags().GetInt("days")
		if days <= 0 {
			FatalError("--days must be positive, got %d", days)
		}
		return days
	}
	return cfg.UIPreferences.DefaultTimePeriodDays
}

// fetchWithProgress runs the registry fetch and prints one line per
// progress event to w.
func fetchWithProgress(ctx context.Context, reg *platform.Registry, user string, days int, w io.Writer) map[string]activity.DetailedActivities {
	names := make(map[string]string)
	for _, p := range reg.ConfiguredAdapters() {
		names[p.ID()] = p.Name()
	}

	progress := platform.NewProgressChannel(len(names))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range progress {
			if line := progressLine(ev, names[ev.PlatformID]); line != "" && !debug.IsQuiet() {
				fmt.Fprintln(w, line)
			}
		}
	}()

	results := reg.FetchAllWithProgress(ctx, user, days, progress)
	close(progress)
	<-done
	return results
}

func init() {
	reviewCmd.Flags().Int("days", 0, "Number of days to look back (default: ui_preferences.default_time_period_days)")
	reviewCmd.Flags().String("since", "", "Start of the window: -2w, 2024-01-31 or natural language like \"last monday\"")
	reviewCmd.Flags().Bool("no-tui", false, "Print a metrics report instead of opening the browser")
	rootCmd.AddCommand(reviewCmd)
}
