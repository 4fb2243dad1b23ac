// Package timeparsing turns the --since expression of the review command
// into a search window.
//
// Expressions are tried in layers:
//  1. Compact duration (-6h, 2w, +1d)
//  2. Absolute timestamp (RFC3339, date-only)
//  3. Natural language (yesterday, last monday, 3 weeks ago)
package timeparsing

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// compactDurationRe matches [+-]?(\d+)([hdwmy]), e.g. -6h, 2w, +1y.
var compactDurationRe = regexp.MustCompile(`^([+-]?)(\d+)([hdwmy])$`)

// ParseCompactDuration applies a compact duration to now. Units are h
// (hours), d (days), w (weeks), m (months) and y (years); an unsigned
// amount is positive.
func ParseCompactDuration(s string, now time.Time) (time.Time, error) {
	matches := compactDurationRe.FindStringSubmatch(s)
	if matches == nil {
		return time.Time{}, fmt.Errorf("not a compact duration: %q", s)
	}
	amount, err := strconv.Atoi(matches[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid duration amount: %q", matches[2])
	}
	if matches[1] == "-" {
		amount = -amount
	}
	return applyDuration(now, amount, matches[3]), nil
}

func applyDuration(base time.Time, amount int, unit string) time.Time {
	switch unit {
	case "h":
		return base.Add(time.Duration(amount) * time.Hour)
	case "d":
		return base.AddDate(0, 0, amount)
	case "w":
		return base.AddDate(0, 0, amount*7)
	case "m":
		return base.AddDate(0, amount, 0)
	case "y":
		return base.AddDate(amount, 0, 0)
	default:
		return base
	}
}

// IsCompactDuration returns true if the string matches compact duration syntax.
func IsCompactDuration(s string) bool {
	return compactDurationRe.MatchString(s)
}

var parser = newParser()

func newParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParseNaturalLanguage parses English expressions relative to now.
func ParseNaturalLanguage(s string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, fmt.Errorf("empty time expression")
	}
	r, err := parser.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", s, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("not a recognized time expression: %q", s)
	}
	return r.Time, nil
}

// ParseRelativeTime parses s with each layer in turn.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if IsCompactDuration(s) {
		return ParseCompactDuration(s, now)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return t, nil
	}
	if t, err := ParseNaturalLanguage(s, now); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("cannot parse time expression %q (try -2w, 2024-01-31 or \"last monday\")", s)
}

// SinceDays converts a --since expression into the number of days to look
// back from now, rounded up and at least one. An unsigned compact duration
// counts backwards, so "2w" and "-2w" are the same window.
func SinceDays(expr string, now time.Time) (int, error) {
	expr = strings.TrimSpace(expr)
	t, err := ParseRelativeTime(expr, now)
	if err != nil {
		return 0, err
	}
	if t.After(now) && IsCompactDuration(expr) && !strings.HasPrefix(expr, "+") {
		t = now.Add(now.Sub(t))
	}
	if t.After(now) {
		return 0, fmt.Errorf("--since %q is in the future", expr)
	}
	return DaysSince(t, now), nil
}

// DaysSince returns the whole days between t and now, rounded up, with a
// minimum of one.
func DaysSince(t, now time.Time) int {
	days := int(math.Ceil(now.Sub(t).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}
