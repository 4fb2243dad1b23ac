package ui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"
)

// PagerOptions controls pager behavior
type PagerOptions struct {
	// NoPager disables the pager (--no-pager).
	NoPager bool
}

func shouldUsePager(opts PagerOptions) bool {
	if opts.NoPager || os.Getenv("REVIEWR_NO_PAGER") != "" {
		return false
	}
	return IsTerminal()
}

// pagerCommand checks REVIEWR_PAGER, then PAGER, defaulting to "less".
func pagerCommand() string {
	if pager := os.Getenv("REVIEWR_PAGER"); pager != "" {
		return pager
	}
	if pager := os.Getenv("PAGER"); pager != "" {
		return pager
	}
	return "less"
}

func terminalHeight() int {
	_, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return height
}

// ToPager pipes content to a pager when stdout is a terminal and the
// content does not fit on screen; otherwise it prints directly.
func ToPager(content string, opts PagerOptions) error {
	if !shouldUsePager(opts) {
		fmt.Print(content)
		return nil
	}
	if h := terminalHeight(); h > 0 && strings.Count(content, "\n")+1 <= h-1 {
		fmt.Print(content)
		return nil
	}

	parts := strings.Fields(pagerCommand())
	if len(parts) == 0 {
		fmt.Print(content)
		return nil
	}
	cmd := exec.Command(parts[0], parts[1:]...) // #nosec G204 - pager command is user-configurable
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	if os.Getenv("LESS") == "" {
		cmd.Env = append(cmd.Env, "LESS=-RFX")
	}
	return cmd.Run()
}
