package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kain88-de/reviewr/internal/config"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "setup",
	Short:   "Manage configuration settings",
	Long: `Read and change the settings stored in config.toml.

Platform credentials are edited in config.toml directly or overridden
through the environment (REVIEWR_PLATFORMS_JIRA_API_TOKEN, ...).

Keys:
  allowed_domains                            comma-separated evidence domains
  ui_preferences.default_time_period_days    default review window
  ui_preferences.show_platform_icons         true | false
  ui_preferences.preferred_platform_order    comma-separated platform ids
  ui_preferences.theme                       Default | Dark | Light | HighContrast

Examples:
  reviewr config set allowed_domains "example.com,gitlab.example.com"
  reviewr config set ui_preferences.theme Dark
  reviewr config get ui_preferences.default_time_period_days
  reviewr config list`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		value, err := cfg.Get(args[0])
		if err != nil {
			FatalError("%v", err)
		}
		fmt.Println(value)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		key, value := args[0], args[1]
		if err := cfg.Set(key, value); err != nil {
			if errors.Is(err, config.ErrInvalidKey) {
				FatalErrorWithHint(err.Error(), "see 'reviewr config --help' for the available keys")
			}
			FatalError("%v", err)
		}
		if err := config.Save(paths.Root, cfg); err != nil {
			FatalError("saving config: %v", err)
		}
		logger.Info("config updated", "key", key)

		stored, _ := cfg.Get(key)
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Set %s = %s\n", green("✓"), key, stored)
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		for _, key := range config.Keys {
			value, _ := cfg.Get(key)
			fmt.Printf("%s = %s\n", key, value)
		}
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}
