package employee

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"John Doe", false},
		{"Jürgen Müller", false},
		{"", true},
		{"   ", true},
		{"a/b", true},
		{`a\b`, true},
		{"a:b", true},
		{"a*b", true},
		{"a?b", true},
		{`a"b`, true},
		{"a<b", true},
		{"a>b", true},
		{"a|b", true},
		{strings.Repeat("x", MaxNameLength), false},
		{strings.Repeat("x", MaxNameLength+1), true},
	}
	for _, tt := range tests {
		err := ValidateName(tt.name)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidName, "name %q", tt.name)
		} else {
			assert.NoError(t, err, "name %q", tt.name)
		}
	}
}

func TestAddGet(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "employees"))

	require.NoError(t, s.Add(Employee{Name: "John Doe", Title: "Engineer", CommitterEmail: "john@example.com"}))

	e, err := s.Get("John Doe")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", e.Name)
	assert.Equal(t, "Engineer", e.Title)
	assert.Equal(t, "john@example.com", e.CommitterEmail)

	info, err := os.Stat(filepath.Join(s.Dir, "John Doe.toml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	err = s.Add(Employee{Name: "John Doe", Title: "Engineer"})
	assert.ErrorIs(t, err, ErrExists)
}

func TestAddRejectsEmptyTitle(t *testing.T) {
	s := NewStore(t.TempDir())
	assert.Error(t, s.Add(Employee{Name: "John", Title: "  "}))
	assert.False(t, s.Exists("John"))
}

func TestGetMissing(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.Get("Nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetOptionalEmail(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "Jane.toml"), []byte("name = \"Jane\"\ntitle = \"Lead\"\n"), 0o600))

	e, err := s.Get("Jane")
	require.NoError(t, err)
	assert.Empty(t, e.CommitterEmail)
}

func TestGetMalformed(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "Bad.toml"), []byte("name = "), 0o600))

	_, err := s.Get("Bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid employee file format")
}

func TestList(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing"))
	names, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	for _, n := range []string{"Zoe", "Adam", "Mia"} {
		require.NoError(t, s.Add(Employee{Name: n, Title: "Engineer"}))
	}
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "README.md"), []byte("x"), 0o600))

	names, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Adam", "Mia", "Zoe"}, names)
}

func TestUpdateRename(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Add(Employee{Name: "John Doe", Title: "Engineer"}))

	require.NoError(t, s.Update("John Doe", Employee{Name: "John Smith", Title: "Senior Engineer"}))

	assert.False(t, s.Exists("John Doe"))
	assert.True(t, s.Exists("John Smith"))
	e, err := s.Get("John Smith")
	require.NoError(t, err)
	assert.Equal(t, "Senior Engineer", e.Title)
}

func TestUpdateSameName(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Add(Employee{Name: "John Doe", Title: "Engineer"}))

	require.NoError(t, s.Update("John Doe", Employee{Name: "John Doe", Title: "Senior Engineer", CommitterEmail: "jd@example.com"}))

	e, err := s.Get("John Doe")
	require.NoError(t, err)
	assert.Equal(t, "Senior Engineer", e.Title)
	assert.Equal(t, "jd@example.com", e.CommitterEmail)
}

func TestUpdateErrors(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Add(Employee{Name: "A", Title: "Engineer"}))
	require.NoError(t, s.Add(Employee{Name: "B", Title: "Engineer"}))

	assert.ErrorIs(t, s.Update("Missing", Employee{Name: "C", Title: "x"}), ErrNotFound)
	assert.ErrorIs(t, s.Update("A", Employee{Name: "B", Title: "x"}), ErrExists)
	assert.ErrorIs(t, s.Update("A", Employee{Name: "a/b", Title: "x"}), ErrInvalidName)
}
