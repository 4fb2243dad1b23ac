// Package employee stores the people being reviewed, one TOML file per
// employee under <data>/employees.
package employee

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"
)

// MaxNameLength bounds an employee name in bytes.
const MaxNameLength = 255

const (
	fileExt      = ".toml"
	lockFileName = ".employees.lock"
)

var (
	// ErrNotFound is returned when no file exists for an employee.
	ErrNotFound = errors.New("employee not found")
	// ErrExists is returned by Add when the employee is already stored.
	ErrExists = errors.New("employee already exists")
	// ErrInvalidName is returned for names that cannot be used as file names.
	ErrInvalidName = errors.New("invalid employee name")
)

// Employee is one stored person.
type Employee struct {
	Name           string `toml:"name"`
	Title          string `toml:"title"`
	CommitterEmail string `toml:"committer_email,omitempty"`
}

// Store reads and writes employee files in Dir.
type Store struct {
	Dir string
}

// NewStore returns the store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// ValidateName rejects empty names, names containing any of
// / \ : * ? " < > | and names longer than MaxNameLength bytes.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if strings.ContainsAny(name, `/\:*?"<>|`) {
		return fmt.Errorf(`%w: name contains invalid characters (/, \, :, *, ?, ", <, >, |)`, ErrInvalidName)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name longer than %d bytes", ErrInvalidName, MaxNameLength)
	}
	return nil
}

func (e Employee) validate() error {
	if err := ValidateName(e.Name); err != nil {
		return err
	}
	if strings.TrimSpace(e.Title) == "" {
		return errors.New("title cannot be empty")
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.Dir, name+fileExt)
}

// List returns the sorted names of all stored employees. A missing
// directory yields an empty list.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read employees directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), fileExt))
	}
	sort.Strings(names)
	return names, nil
}

// Exists reports whether a file is stored for name.
func (s *Store) Exists(name string) bool {
	if ValidateName(name) != nil {
		return false
	}
	_, err := os.Stat(s.path(name))
	return err == nil
}

// Get loads one employee.
func (s *Store) Get(name string) (*Employee, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(name)) // #nosec G304 - name validated above
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read employee %s: %w", name, err)
	}
	var e Employee
	if _, err := toml.Decode(string(data), &e); err != nil {
		return nil, fmt.Errorf("invalid employee file format for %s: %w", name, err)
	}
	return &e, nil
}

// Add stores a new employee.
func (s *Store) Add(e Employee) error {
	if err := e.validate(); err != nil {
		return err
	}
	return s.withLock(func() error {
		if _, err := os.Stat(s.path(e.Name)); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, e.Name)
		}
		return s.write(e)
	})
}

// Update replaces the employee stored as oldName with e. When the name
// changes the old file is removed.
func (s *Store) Update(oldName string, e Employee) error {
	if err := ValidateName(oldName); err != nil {
		return err
	}
	if err := e.validate(); err != nil {
		return err
	}
	return s.withLock(func() error {
		if _, err := os.Stat(s.path(oldName)); errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, oldName)
		}
		if oldName != e.Name {
			if _, err := os.Stat(s.path(e.Name)); err == nil {
				return fmt.Errorf("%w: %s", ErrExists, e.Name)
			}
		}
		if err := s.write(e); err != nil {
			return err
		}
		if oldName != e.Name {
			if err := os.Remove(s.path(oldName)); err != nil {
				return fmt.Errorf("remove old employee file: %w", err)
			}
		}
		return nil
	})
}

// withLock runs fn holding the directory's exclusive write lock.
func (s *Store) withLock(fn func() error) error {
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return fmt.Errorf("create employees directory: %w", err)
	}
	lock := flock.New(filepath.Join(s.Dir, lockFileName))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire employee lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()
	return fn()
}

func (s *Store) write(e Employee) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(e); err != nil {
		return fmt.Errorf("encode employee: %w", err)
	}
	if err := os.WriteFile(s.path(e.Name), buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write employee %s: %w", e.Name, err)
	}
	return nil
}
