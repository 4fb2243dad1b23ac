package ui

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short text unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"truncate with ellipsis", "hello world", 8, "hello..."},
		{"very short maxLen", "hello world", 3, "..."},
		{"empty string", "", 10, ""},
		{"unicode chars", "héllo wörld", 8, "héllo..."},
		{"title limit", strings.Repeat("a", 61), 60, strings.Repeat("a", 57) + "..."},
		{"title at limit", strings.Repeat("a", 60), 60, strings.Repeat("a", 60)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestRenderMarkdownFallsBackWithoutColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	in := "# Notes for Jane\n"
	if got := RenderMarkdown(in); got != in {
		t.Errorf("RenderMarkdown() = %q, want input unchanged", got)
	}
}

func TestRenderMarkdownWraps(t *testing.T) {
	got := renderMarkdown("# Notes for Jane\n\n- Evidence: https://example.com/c/1\n", 80)
	if !strings.Contains(got, "Notes for Jane") || !strings.Contains(got, "Evidence") {
		t.Errorf("rendered markdown lost content: %q", got)
	}
}
