package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kain88-de/reviewr/internal/activity"
	"github.com/kain88-de/reviewr/internal/platform"
	"github.com/kain88-de/reviewr/internal/ui"
)

var testConnectionsCmd = &cobra.Command{
	Use:     "test-connections",
	GroupID: "setup",
	Short:   "Check the connection to every platform",
	Long: `Probe every platform known to the configuration with one lightweight
authenticated request and print its status.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		reg := buildRegistry(cfg, errLog, logger)
		statuses := reg.TestAllConnections(rootCtx)
		writeConnections(cmd.OutOrStdout(), reg, statuses, cfg.UIPreferences.PreferredPlatformOrder)
	},
}

// writeConnections prints one status line per registered platform in
// display order.
func writeConnections(w io.Writer, reg *platform.Registry, statuses map[string]activity.ConnectionStatus, preferred []string) {
	fmt.Fprintln(w, ui.RenderHeader("Platform connections"))
	fmt.Fprintln(w, ui.RenderSeparator())
	for _, id := range orderedIDs(reg, preferred) {
		p := reg.Get(id)
		status, ok := statuses[id]
		if !ok {
			status = activity.NotConfigured()
		}
		fmt.Fprintf(w, "%-28s %s\n", p.Icon()+" "+p.Name(), ui.RenderConnection(status))
	}
}

func init() {
	rootCmd.AddCommand(testConnectionsCmd)
}
