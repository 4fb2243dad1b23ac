package config

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidKey is returned by Get and Set for keys that are not settable.
var ErrInvalidKey = errors.New("invalid config key")

// Settable keys.
const (
	KeyAllowedDomains         = "allowed_domains"
	KeyDefaultTimePeriodDays  = "ui_preferences.default_time_period_days"
	KeyShowPlatformIcons      = "ui_preferences.show_platform_icons"
	KeyPreferredPlatformOrder = "ui_preferences.preferred_platform_order"
	KeyTheme                  = "ui_preferences.theme"
)

// Keys lists the keys accepted by Get and Set.
var Keys = []string{
	KeyAllowedDomains,
	KeyDefaultTimePeriodDays,
	KeyShowPlatformIcons,
	KeyPreferredPlatformOrder,
	KeyTheme,
}

// Get returns the value of key formatted for display. Lists are
// comma-separated.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case KeyAllowedDomains:
		return strings.Join(c.GlobalSettings.AllowedDomains, ","), nil
	case KeyDefaultTimePeriodDays:
		return strconv.Itoa(c.UIPreferences.DefaultTimePeriodDays), nil
	case KeyShowPlatformIcons:
		return strconv.FormatBool(c.UIPreferences.ShowPlatformIcons), nil
	case KeyPreferredPlatformOrder:
		return strings.Join(c.UIPreferences.PreferredPlatformOrder, ","), nil
	case KeyTheme:
		return c.UIPreferences.Theme, nil
	default:
		return "", fmt.Errorf("%w %q (available: %v)", ErrInvalidKey, key, Keys)
	}
}

// Set parses value and assigns it to key. cfg is left untouched when value
// is invalid.
func (c *Config) Set(key, value string) error {
	switch key {
	case KeyAllowedDomains:
		domains := splitList(value)
		for i, d := range domains {
			d = strings.ToLower(d)
			if err := ValidateDomain(d); err != nil {
				return err
			}
			domains[i] = d
		}
		c.GlobalSettings.AllowedDomains = domains
	case KeyDefaultTimePeriodDays:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive number of days, got %q", key, value)
		}
		c.UIPreferences.DefaultTimePeriodDays = n
	case KeyShowPlatformIcons:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s must be true or false, got %q", key, value)
		}
		c.UIPreferences.ShowPlatformIcons = b
	case KeyPreferredPlatformOrder:
		c.UIPreferences.PreferredPlatformOrder = splitList(value)
	case KeyTheme:
		theme := strings.TrimSpace(value)
		if !validTheme(theme) {
			return fmt.Errorf("unknown theme %q (available: %v)", theme, Themes)
		}
		c.UIPreferences.Theme = theme
	default:
		return fmt.Errorf("%w %q (available: %v)", ErrInvalidKey, key, Keys)
	}
	return nil
}

func splitList(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var domainChars = regexp.MustCompile(`^[A-Za-z0-9.-]+$`)

// ValidateDomain checks an allowed_domains entry: letters, digits, dots and
// hyphens only, no leading or trailing dot or hyphen, and no doubled dots
// or hyphens.
func ValidateDomain(domain string) error {
	switch {
	case domain == "":
		return errors.New("domain must not be empty")
	case !domainChars.MatchString(domain):
		return fmt.Errorf("invalid domain %q: only letters, digits, '.' and '-' are allowed", domain)
	case strings.HasPrefix(domain, ".") || strings.HasPrefix(domain, "-") ||
		strings.HasSuffix(domain, ".") || strings.HasSuffix(domain, "-"):
		return fmt.Errorf("invalid domain %q: must not start or end with '.' or '-'", domain)
	case strings.Contains(domain, "..") || strings.Contains(domain, "--"):
		return fmt.Errorf("invalid domain %q: consecutive '.' or '-'", domain)
	}
	return nil
}
