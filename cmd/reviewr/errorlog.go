package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kain88-de/reviewr/internal/errlog"
	"github.com/kain88-de/reviewr/internal/ui"
)

var errorsCmd = &cobra.Command{
	Use:     "errors",
	GroupID: "setup",
	Short:   "Show recorded platform failures",
	Long: `Show the failures recorded in the error log, newest first.

Every failed platform request is appended to error.log in the data
directory with its error type, request URL, status code and a snippet of
the response body.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		platformID, _ := cmd.Flags().GetString("platform")
		asJSON, _ := cmd.Flags().GetBool("json")

		records, err := errLog.ReadRecent(limit, platformID)
		if err != nil {
			FatalError("%v", err)
		}
		if asJSON {
			if records == nil {
				records = []errlog.Record{}
			}
			if err := writeJSON(os.Stdout, records); err != nil {
				FatalError("encoding JSON: %v", err)
			}
			return
		}
		if len(records) == 0 {
			fmt.Println(ui.RenderPass("No errors recorded."))
			return
		}
		for _, r := range records {
			writeRecord(os.Stdout, r)
		}
	},
}

var errorsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize failures per platform",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("format")

		stats, err := errLog.Stats()
		if err != nil {
			FatalError("%v", err)
		}
		switch format {
		case "table":
			fmt.Print(formatStatsTable(stats))
		case "json":
			if err := writeJSON(os.Stdout, stats); err != nil {
				FatalError("encoding JSON: %v", err)
			}
		case "yaml":
			if err := writeYAML(os.Stdout, stats); err != nil {
				FatalError("encoding YAML: %v", err)
			}
		default:
			FatalError("unknown format %q (available: table, json, yaml)", format)
		}
	},
}

var errorsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the error log",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := errLog.Clear(); err != nil {
			FatalError("%v", err)
		}
		logger.Info("error log cleared")
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Cleared error log\n", green("✓"))
	},
}

var errorsFollowCmd = &cobra.Command{
	Use:   "follow",
	Short: "Print failures as they are recorded",
	Long:  `Print every failure appended to the error log until interrupted with Ctrl-C.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		banner := ui.RenderMuted(fmt.Sprintf("Following %s (Ctrl-C to stop)", errLog.Path))
		fmt.Fprintln(os.Stderr, banner)
		err := errLog.Follow(rootCtx, func(r errlog.Record) {
			writeRecord(os.Stdout, r)
		})
		if err != nil {
			FatalError("%v", err)
		}
	},
}

// writeRecord prints one record: a headline followed by the request
// details that are present.
func writeRecord(w io.Writer, r errlog.Record) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(w, "%s %s %s/%s: %s\n", ui.RenderMuted(r.Timestamp), red(r.ErrorType), r.PlatformID, r.Operation, r.ErrorMessage)
	if r.User != nil {
		fmt.Fprintf(w, "    user: %s\n", *r.User)
	}
	if r.RequestURL != nil {
		if r.StatusCode != nil {
			fmt.Fprintf(w, "    request: %s (%d)\n", *r.RequestURL, *r.StatusCode)
		} else {
			fmt.Fprintf(w, "    request: %s\n", *r.RequestURL)
		}
	}
	if r.ResponseBody != nil && *r.ResponseBody != "" {
		fmt.Fprintf(w, "    response: %s\n", ui.Truncate(strings.TrimSpace(*r.ResponseBody), 200))
	}
}

// formatStatsTable renders per-platform totals with the error types
// sorted by name.
func formatStatsTable(stats map[string]*errlog.Stats) string {
	if len(stats) == 0 {
		return "No errors recorded.\n"
	}
	ids := make([]string, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	fmt.Fprintf(&b, "%-24s %6s  %-25s %s\n", "PLATFORM", "TOTAL", "LAST ERROR", "TYPES")
	for _, id := range ids {
		s := stats[id]
		types := make([]string, 0, len(s.ErrorTypes))
		for t, n := range s.ErrorTypes {
			types = append(types, fmt.Sprintf("%s=%d", t, n))
		}
		sort.Strings(types)
		fmt.Fprintf(&b, "%-24s %6d  %-25s %s\n", id, s.TotalErrors, s.LastErrorTime, strings.Join(types, ", "))
	}
	return b.String()
}

func init() {
	errorsCmd.Flags().Int("limit", 20, "Maximum number of records to show (-1 for all)")
	errorsCmd.Flags().String("platform", "", "Only show failures of this platform id")
	errorsCmd.Flags().Bool("json", false, "Output in JSON format")
	errorsStatsCmd.Flags().String("format", "table", "Output format: table, json or yaml")

	errorsCmd.AddCommand(errorsStatsCmd)
	errorsCmd.AddCommand(errorsClearCmd)
	errorsCmd.AddCommand(errorsFollowCmd)
	rootCmd.AddCommand(errorsCmd)
}
