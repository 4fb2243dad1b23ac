package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kain88-de/reviewr/internal/config"
	"github.com/kain88-de/reviewr/internal/debug"
	"github.com/kain88-de/reviewr/internal/errlog"
	"github.com/kain88-de/reviewr/internal/telemetry"
)

var (
	dataPathFlag string
	verboseFlag  bool // Enable verbose/debug output
	quietFlag    bool // Suppress non-essential output

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc

	paths   config.Paths
	cfg     *config.Config
	errLog  *errlog.Log
	logger  = slog.New(slog.DiscardHandler)
	logFile *os.File
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dataPathFlag, "data-path", "", "Data directory (default: $REVIEWR_DATA_PATH or ~/.reviewr)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")

	rootCmd.Flags().BoolP("version", "V", false, "Print version information")

	rootCmd.AddGroup(&cobra.Group{ID: "employees", Title: "Employees & Notes:"})
	rootCmd.AddGroup(&cobra.Group{ID: "review", Title: "Review:"})
	rootCmd.AddGroup(&cobra.Group{ID: "setup", Title: "Setup & Diagnostics:"})
}

var rootCmd = &cobra.Command{
	Use:   "reviewr",
	Short: "reviewr - Multi-platform activity review",
	Long: `Collect a colleague's review and tracking activity from Gerrit, JIRA and
GitLab, browse it in the terminal and keep notes alongside.`,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			printVersion()
			return
		}
		_ = cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		debug.SetVerbose(verboseFlag)
		debug.SetQuiet(quietFlag)

		dir, err := config.ResolveDataDir(dataPathFlag)
		if err != nil {
			FatalError("%v", err)
		}
		paths = config.Paths{Root: dir}
		if err := paths.Ensure(); err != nil {
			FatalErrorWithHint(err.Error(), "pass a writable directory with --data-path")
		}
		setupLogging()

		cfg, err = config.Load(dir)
		if err != nil {
			FatalErrorWithHint(err.Error(), "fix or remove "+paths.Config())
		}
		errLog = errlog.Open(dir)

		var telemetryOut io.Writer = io.Discard
		if logFile != nil {
			telemetryOut = logFile
		}
		if err := telemetry.Init(rootCtx, "reviewr", Version, telemetryOut); err != nil {
			WarnError("telemetry disabled: %v", err)
		}
		debug.Logf("data directory: %s\n", dir)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		telemetry.Shutdown(ctx)
		cancel()

		if logFile != nil {
			_ = logFile.Close()
		}
		if rootCancel != nil {
			rootCancel()
		}
	},
}

// setupLogging points the package logger at reviewr.log. The terminal is
// left to the TUI, so a log file that cannot be opened only disables logging.
func setupLogging() {
	f, err := os.OpenFile(paths.LogFile(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304 - path inside the data directory
	if err != nil {
		WarnError("cannot open log file: %v", err)
		return
	}
	logFile = f
	logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: debug.LogLevel()}))
}

func main() {
	rootCmd.InitDefaultHelpCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
