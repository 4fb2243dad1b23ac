// Package config loads and saves reviewr's unified configuration file,
// config.toml, and knows the layout of the data directory.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// CurrentVersion is the config file format version written by Save.
const CurrentVersion = 1

// Themes accepted by ui_preferences.theme.
const (
	ThemeDefault      = "Default"
	ThemeDark         = "Dark"
	ThemeLight        = "Light"
	ThemeHighContrast = "HighContrast"
)

// Themes lists the valid theme names.
var Themes = []string{ThemeDefault, ThemeDark, ThemeLight, ThemeHighContrast}

// GerritConfig holds the settings of the Gerrit adapter.
type GerritConfig struct {
	URL          string `toml:"gerrit_url" mapstructure:"gerrit_url"`
	Username     string `toml:"username" mapstructure:"username"`
	HTTPPassword string `toml:"http_password" mapstructure:"http_password"`
}

// IsConfigured reports whether every required field is set.
func (c *GerritConfig) IsConfigured() bool {
	return c != nil && c.URL != "" && c.Username != "" && c.HTTPPassword != ""
}

// JiraConfig holds the settings of the Jira adapter.
type JiraConfig struct {
	URL           string            `toml:"jira_url" mapstructure:"jira_url"`
	Username      string            `toml:"username" mapstructure:"username"`
	APIToken      string            `toml:"api_token" mapstructure:"api_token"`
	ProjectFilter []string          `toml:"project_filter,omitempty" mapstructure:"project_filter"`
	CustomFields  map[string]string `toml:"custom_fields,omitempty" mapstructure:"custom_fields"`
}

// IsConfigured reports whether the URL and token are set. Username is
// optional: without it the token is sent as a Bearer personal access token.
func (c *JiraConfig) IsConfigured() bool {
	return c != nil && c.URL != "" && c.APIToken != ""
}

// GitLabConfig holds the settings of one GitLab instance.
type GitLabConfig struct {
	Name  string `toml:"name" mapstructure:"name"`
	URL   string `toml:"url" mapstructure:"url"`
	Token string `toml:"token" mapstructure:"token"`
}

// IsConfigured reports whether the instance has a URL and a token.
func (c GitLabConfig) IsConfigured() bool {
	return c.URL != "" && c.Token != ""
}

// Platforms groups per-service settings. A nil or absent section means the
// service is not configured.
type Platforms struct {
	Gerrit *GerritConfig           `toml:"gerrit,omitempty" mapstructure:"gerrit"`
	Jira   *JiraConfig             `toml:"jira,omitempty" mapstructure:"jira"`
	GitLab map[string]GitLabConfig `toml:"gitlab,omitempty" mapstructure:"gitlab"`
}

// GlobalSettings holds settings shared by every command.
type GlobalSettings struct {
	AllowedDomains []string `toml:"allowed_domains" mapstructure:"allowed_domains"`
}

// UIPreferences holds browser and report preferences.
type UIPreferences struct {
	DefaultTimePeriodDays  int      `toml:"default_time_period_days" mapstructure:"default_time_period_days"`
	ShowPlatformIcons      bool     `toml:"show_platform_icons" mapstructure:"show_platform_icons"`
	PreferredPlatformOrder []string `toml:"preferred_platform_order" mapstructure:"preferred_platform_order"`
	Theme                  string   `toml:"theme" mapstructure:"theme"`
}

// Config is the content of config.toml.
type Config struct {
	Version        int            `toml:"version" mapstructure:"version"`
	Platforms      Platforms      `toml:"platforms" mapstructure:"platforms"`
	GlobalSettings GlobalSettings `toml:"global_settings" mapstructure:"global_settings"`
	UIPreferences  UIPreferences  `toml:"ui_preferences" mapstructure:"ui_preferences"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		UIPreferences: UIPreferences{
			DefaultTimePeriodDays:  30,
			ShowPlatformIcons:      true,
			PreferredPlatformOrder: []string{"gerrit", "jira"},
			Theme:                  ThemeDefault,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("version", d.Version)
	v.SetDefault("ui_preferences.default_time_period_days", d.UIPreferences.DefaultTimePeriodDays)
	v.SetDefault("ui_preferences.show_platform_icons", d.UIPreferences.ShowPlatformIcons)
	v.SetDefault("ui_preferences.preferred_platform_order", d.UIPreferences.PreferredPlatformOrder)
	v.SetDefault("ui_preferences.theme", d.UIPreferences.Theme)
}

// Load reads config.toml from the data directory. A missing file yields the
// defaults. Any key present in the file or the defaults can be overridden
// through the environment: platforms.jira.api_token is read from
// REVIEWR_PLATFORMS_JIRA_API_TOKEN.
func Load(dataDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix("REVIEWR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	path := Paths{Root: dataDir}.Config()
	data, err := os.ReadFile(path) // #nosec G304 - path inside the data directory
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes cfg to config.toml in the data directory, replacing the file
// atomically.
func Save(dataDir string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Version == 0 {
		cfg.Version = CurrentVersion
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	path := Paths{Root: dataDir}.Config()
	tmp, err := os.CreateTemp(dataDir, ".config-*.toml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("chmod config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// Validate checks values that Load and Set cannot coerce.
func (c *Config) Validate() error {
	for _, d := range c.GlobalSettings.AllowedDomains {
		if err := ValidateDomain(d); err != nil {
			return err
		}
	}
	if c.UIPreferences.DefaultTimePeriodDays <= 0 {
		return fmt.Errorf("ui_preferences.default_time_period_days must be positive, got %d", c.UIPreferences.DefaultTimePeriodDays)
	}
	if !validTheme(c.UIPreferences.Theme) {
		return fmt.Errorf("unknown theme %q (available: %v)", c.UIPreferences.Theme, Themes)
	}
	return nil
}

func validTheme(name string) bool {
	for _, t := range Themes {
		if t == name {
			return true
		}
	}
	return false
}

// HasAnyPlatform reports whether at least one service section is usable.
func (c *Config) HasAnyPlatform() bool {
	if c.Platforms.Gerrit.IsConfigured() || c.Platforms.Jira.IsConfigured() {
		return true
	}
	for _, gl := range c.Platforms.GitLab {
		if gl.IsConfigured() {
			return true
		}
	}
	return false
}

// Paths resolves the files of a data directory.
type Paths struct {
	Root string
}

func (p Paths) Config() string    { return filepath.Join(p.Root, "config.toml") }
func (p Paths) ErrorLog() string  { return filepath.Join(p.Root, "error.log") }
func (p Paths) LogFile() string   { return filepath.Join(p.Root, "reviewr.log") }
func (p Paths) Employees() string { return filepath.Join(p.Root, "employees") }
func (p Paths) Notes() string     { return filepath.Join(p.Root, "notes") }

// Ensure creates the data directory and its subdirectories.
func (p Paths) Ensure() error {
	for _, dir := range []string{p.Root, p.Employees(), p.Notes()} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// ResolveDataDir returns the data directory: flag if set, then
// REVIEWR_DATA_PATH, then ~/.reviewr.
func ResolveDataDir(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("REVIEWR_DATA_PATH"); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".reviewr"), nil
}
