package ui

import (
	"github.com/charmbracelet/glamour"
)

// maxReadableWidth caps the wrap width of rendered markdown.
const maxReadableWidth = 100

// RenderMarkdown renders markdown with glamour, wrapping at the terminal
// width. The input is returned unchanged when colors are disabled or
// rendering fails.
func RenderMarkdown(markdown string) string {
	if !ShouldUseColor() {
		return markdown
	}
	return renderMarkdown(markdown, min(TerminalWidth(), maxReadableWidth))
}

func renderMarkdown(markdown string, width int) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markdown
	}
	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return rendered
}
