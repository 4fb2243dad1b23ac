// Package notes manages the per-employee markdown notes files under
// <data>/notes.
//
// Opening a note creates it with a dated header on first use and, when the
// clipboard holds a URL from an allowed domain, appends it as an evidence
// line before handing the file to $EDITOR.
package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"github.com/kain88-de/reviewr/internal/employee"
)

// DefaultEditor is used when $EDITOR is unset.
const DefaultEditor = "vim"

// ErrNoNotes is returned by Read when no notes exist for an employee.
var ErrNoNotes = errors.New("no notes found")

// Clipboard reads the system clipboard.
type Clipboard interface {
	ReadAll() (string, error)
}

// SystemClipboard reads the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) ReadAll() (string, error) { return clipboard.ReadAll() }

// Service opens and reads notes files in Dir.
type Service struct {
	Dir            string
	AllowedDomains []string
	Clipboard      Clipboard
	Logger         *slog.Logger

	// RunEditor opens path in an editor. Defaults to running $EDITOR
	// attached to the terminal.
	RunEditor func(ctx context.Context, path string) error

	now func() time.Time
}

// New returns a service using the system clipboard and $EDITOR.
func New(dir string, allowedDomains []string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		Dir:            dir,
		AllowedDomains: allowedDomains,
		Clipboard:      SystemClipboard{},
		Logger:         logger,
		RunEditor:      runEditor,
		now:            time.Now,
	}
}

// Path returns the notes file of an employee.
func (s *Service) Path(name string) string {
	return filepath.Join(s.Dir, name+".md")
}

// Header is written to a new notes file.
func Header(name string, day time.Time) string {
	return fmt.Sprintf("# Notes for %s\n\n## %s\n\n", name, day.Format("2006-01-02"))
}

// Prepare creates the notes file if needed and appends clipboard evidence.
// It returns the file path.
func (s *Service) Prepare(name string) (string, error) {
	if err := employee.ValidateName(name); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return "", fmt.Errorf("create notes directory: %w", err)
	}
	path := s.Path(name)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		s.Logger.Info("creating notes file", "employee", name, "path", path)
		if err := os.WriteFile(path, []byte(Header(name, s.now())), 0o600); err != nil {
			return "", fmt.Errorf("create notes file: %w", err)
		}
	}

	if evidence, ok := s.clipboardEvidence(); ok {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600) // #nosec G304 - name validated above
		if err != nil {
			return "", fmt.Errorf("open notes file: %w", err)
		}
		_, werr := fmt.Fprintf(f, "- Evidence: %s\n", evidence)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return "", fmt.Errorf("append evidence: %w", werr)
		}
	}
	return path, nil
}

// Open prepares the notes file and opens it in the editor.
func (s *Service) Open(ctx context.Context, name string) error {
	path, err := s.Prepare(name)
	if err != nil {
		return err
	}
	s.Logger.Info("opening notes", "path", path)
	if err := s.RunEditor(ctx, path); err != nil {
		return fmt.Errorf("run editor: %w", err)
	}
	return nil
}

// Read returns the notes of an employee.
func (s *Service) Read(name string) (string, error) {
	if err := employee.ValidateName(name); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w for %s", ErrNoNotes, name)
	}
	if err != nil {
		return "", fmt.Errorf("read notes: %w", err)
	}
	return string(data), nil
}

// clipboardEvidence returns the clipboard content when it is an http(s)
// URL whose host is allowed.
func (s *Service) clipboardEvidence() (string, bool) {
	if s.Clipboard == nil {
		return "", false
	}
	text, err := s.Clipboard.ReadAll()
	if err != nil {
		s.Logger.Debug("clipboard unavailable", "error", err)
		return "", false
	}
	text = strings.TrimSpace(text)
	u, err := url.Parse(text)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		s.Logger.Debug("clipboard content is not a URL, skipping evidence")
		return "", false
	}
	if !IsDomainAllowed(u.Hostname(), s.AllowedDomains) {
		s.Logger.Warn("clipboard URL domain not allowed", "domain", u.Hostname(), "allowed", s.AllowedDomains)
		return "", false
	}
	s.Logger.Info("adding evidence URL from clipboard", "url", text)
	return text, true
}

// IsDomainAllowed reports whether domain equals an allowed domain or is a
// subdomain of one. An empty list allows every domain.
func IsDomainAllowed(domain string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	domain = strings.ToLower(domain)
	for _, d := range allowed {
		d = strings.ToLower(d)
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}

// editorCommand splits $EDITOR, which may carry arguments ("code -w").
func editorCommand() []string {
	if parts := strings.Fields(os.Getenv("EDITOR")); len(parts) > 0 {
		return parts
	}
	return []string{DefaultEditor}
}

func runEditor(ctx context.Context, path string) error {
	args := editorCommand()
	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...) // #nosec G204 - editor is user-configured
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
