package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/kain88-de/reviewr/internal/activity"
	"github.com/kain88-de/reviewr/internal/config"
	"github.com/kain88-de/reviewr/internal/platform"
	"github.com/kain88-de/reviewr/internal/ui"
)

// writeJSON writes v as indented JSON for the --json and --format json
// outputs.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// progressLine formats a progress event, or returns "" for events that
// print nothing.
func progressLine(ev platform.Progress, name string) string {
	if name == "" {
		name = ev.PlatformID
	}
	switch ev.Kind {
	case platform.ProgressStarted:
		return fmt.Sprintf("  … %s", name)
	case platform.ProgressCompleted:
		if ev.Success {
			green := color.New(color.FgGreen).SprintFunc()
			return fmt.Sprintf("  %s %s: %d items", green("✓"), name, ev.Items)
		}
		red := color.New(color.FgRed).SprintFunc()
		reason := "failed"
		if ev.Err != nil {
			reason = ev.Err.Error()
			if errors.Is(ev.Err, context.Canceled) {
				reason = "cancelled"
			}
		}
		return fmt.Sprintf("  %s %s: %s", red("✗"), name, reason)
	}
	return ""
}

func fetchSummary(succeeded, configured int) string {
	return fmt.Sprintf("Fetched activity from %d of %d platforms", succeeded, configured)
}

// writeMetricsReport prints per-platform category counts in display
// order. Platforms whose fetch failed are listed as unavailable.
func writeMetricsReport(w io.Writer, reg *platform.Registry, results map[string]activity.DetailedActivities, prefs config.UIPreferences) {
	var ids []string
	for _, id := range orderedIDs(reg, prefs.PreferredPlatformOrder) {
		if p := reg.Get(id); p != nil && p.IsConfigured() {
			ids = append(ids, id)
		}
	}

	for i, id := range ids {
		if i > 0 {
			fmt.Fprintln(w)
		}
		p := reg.Get(id)
		label := p.Name()
		if prefs.ShowPlatformIcons {
			label = p.Icon() + " " + label
		}
		fmt.Fprintln(w, ui.RenderHeader(label))

		d, ok := results[id]
		if !ok {
			fmt.Fprintf(w, "  %s\n", ui.RenderFail("unavailable, see 'reviewr errors --platform "+id+"'"))
			continue
		}
		m := d.Metrics()
		cats := d.Categories()
		if len(cats) == 0 {
			fmt.Fprintf(w, "  %s\n", ui.RenderMuted("No activity"))
			continue
		}
		width := 0
		for _, c := range cats {
			width = max(width, len(c.DisplayName()))
		}
		for _, c := range cats {
			fmt.Fprintf(w, "  %s %-*s %4d\n", c.Icon(), width, c.DisplayName(), m.ItemsByCategory[c])
		}
		fmt.Fprintf(w, "  %s\n", ui.RenderMuted(strings.Repeat("-", width+7)))
		fmt.Fprintf(w, "  %-*s %4d\n", width+2, "Total", m.TotalItems)
	}
}
