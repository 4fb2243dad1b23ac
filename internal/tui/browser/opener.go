package browser

import (
	"io"
	"sync"

	"github.com/pkg/browser"
)

// Opener opens an item URL outside the terminal.
type Opener interface {
	Open(url string) error
}

var silenceOnce sync.Once

// silenceBrowserOutput discards output of launched commands so it cannot
// corrupt the TUI. The package writers are set once; Open runs from
// concurrent tea.Cmd goroutines.
func silenceBrowserOutput() {
	silenceOnce.Do(func() {
		browser.Stdout = io.Discard
		browser.Stderr = io.Discard
	})
}

// SystemOpener opens URLs in the default web browser.
type SystemOpener struct{}

// NewSystemOpener returns an opener whose launched commands write nowhere.
func NewSystemOpener() SystemOpener {
	silenceBrowserOutput()
	return SystemOpener{}
}

func (SystemOpener) Open(url string) error {
	silenceBrowserOutput()
	return browser.OpenURL(url)
}
