// Package selector provides the interactive employee picker and the
// add/edit employee form.
package selector

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/kain88-de/reviewr/internal/employee"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("cancelled")

// ErrNoEmployees is returned by SelectEmployee for an empty list.
var ErrNoEmployees = errors.New("no employees found, add one with 'reviewr add'")

func run(form *huh.Form) error {
	err := form.WithTheme(huh.ThemeDracula()).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCancelled
	}
	return err
}

func employeeOptions(names []string) []huh.Option[string] {
	opts := make([]huh.Option[string], len(names))
	for i, n := range names {
		opts[i] = huh.NewOption(n, n)
	}
	return opts
}

// SelectEmployee asks the user to pick one of names.
func SelectEmployee(title string, names []string) (string, error) {
	if len(names) == 0 {
		return "", ErrNoEmployees
	}
	var choice string
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(title).
			Options(employeeOptions(names)...).
			Filtering(true).
			Value(&choice),
	))
	if err := run(form); err != nil {
		return "", err
	}
	return choice, nil
}

func validateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("title is required")
	}
	return nil
}

// validateEmail accepts an empty value; the committer email is optional.
func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := mail.ParseAddress(s); err != nil || !strings.Contains(s, "@") {
		return fmt.Errorf("%q is not a valid email address", s)
	}
	return nil
}

// newEmployeeForm binds the fields of e to a form.
func newEmployeeForm(e *employee.Employee, heading string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(heading),
			huh.NewInput().
				Title("Name").
				Description("Used as the file name of the employee and the notes").
				Value(&e.Name).
				Validate(employee.ValidateName),
			huh.NewInput().
				Title("Title").
				Placeholder("e.g., Senior Engineer").
				Value(&e.Title).
				Validate(validateTitle),
			huh.NewInput().
				Title("Committer Email").
				Description("Identity used to query Gerrit, Jira and GitLab (optional)").
				Placeholder("name@example.com").
				Value(&e.CommitterEmail).
				Validate(validateEmail),
		),
	)
}

// EmployeeForm shows the add/edit form prefilled with initial and returns
// the entered values.
func EmployeeForm(heading string, initial employee.Employee) (employee.Employee, error) {
	e := initial
	if err := run(newEmployeeForm(&e, heading)); err != nil {
		return employee.Employee{}, err
	}
	e.Name = strings.TrimSpace(e.Name)
	e.Title = strings.TrimSpace(e.Title)
	e.CommitterEmail = strings.TrimSpace(e.CommitterEmail)
	return e, nil
}
