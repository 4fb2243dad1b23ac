package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kain88-de/reviewr/internal/employee"
	"github.com/kain88-de/reviewr/internal/tui/selector"
)

func employeeStore() *employee.Store {
	return employee.NewStore(paths.Employees())
}

// resolveEmployeeName returns args[0] or asks the user to pick one of the
// stored employees.
func resolveEmployeeName(store *employee.Store, args []string, prompt string) string {
	if len(args) > 0 {
		return args[0]
	}
	names, err := store.List()
	if err != nil {
		FatalError("%v", err)
	}
	name, err := selector.SelectEmployee(prompt, names)
	switch {
	case errors.Is(err, selector.ErrNoEmployees):
		FatalErrorWithHint("no employees found", "add one with 'reviewr add <name>'")
	case errors.Is(err, selector.ErrCancelled):
		FatalError("cancelled")
	case err != nil:
		FatalError("%v", err)
	}
	return name
}

// loadEmployee reads an employee or exits with a hint.
func loadEmployee(store *employee.Store, name string) *employee.Employee {
	e, err := store.Get(name)
	switch {
	case errors.Is(err, employee.ErrNotFound):
		FatalErrorWithHint(fmt.Sprintf("employee %q not found", name), "list employees with 'reviewr list'")
	case err != nil:
		FatalError("%v", err)
	}
	return e
}

func runForm(heading string, initial employee.Employee) employee.Employee {
	e, err := selector.EmployeeForm(heading, initial)
	if errors.Is(err, selector.ErrCancelled) {
		FatalError("cancelled")
	}
	if err != nil {
		FatalError("%v", err)
	}
	return e
}

var addCmd = &cobra.Command{
	Use:     "add [name]",
	GroupID: "employees",
	Short:   "Add an employee",
	Long: `Add an employee to review.

With --title the employee is stored directly; otherwise a form asks for
the missing fields.

Examples:
  reviewr add
  reviewr add "Jane Doe" --title "Senior Engineer" --email jane@example.com`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		title, _ := cmd.Flags().GetString("title")
		email, _ := cmd.Flags().GetString("email")

		e := employee.Employee{Title: title, CommitterEmail: email}
		if len(args) > 0 {
			e.Name = args[0]
		}
		if e.Name == "" || e.Title == "" {
			e = runForm("Add employee", e)
		}

		store := employeeStore()
		if err := store.Add(e); err != nil {
			if errors.Is(err, employee.ErrExists) {
				FatalErrorWithHint(err.Error(), fmt.Sprintf("edit it with 'reviewr edit %q'", e.Name))
			}
			FatalError("%v", err)
		}
		logger.Info("employee added", "name", e.Name)

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Added employee %s\n", green("✓"), e.Name)
	},
}

var editCmd = &cobra.Command{
	Use:     "edit [name]",
	GroupID: "employees",
	Short:   "Edit an employee",
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := employeeStore()
		name := resolveEmployeeName(store, args, "Select employee to edit")
		current := loadEmployee(store, name)

		updated := runForm("Edit employee", *current)
		if err := store.Update(name, updated); err != nil {
			FatalError("%v", err)
		}
		logger.Info("employee updated", "name", name, "new_name", updated.Name)

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Updated employee %s\n", green("✓"), updated.Name)
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	GroupID: "employees",
	Short:   "List employees",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store := employeeStore()
		names, err := store.List()
		if err != nil {
			FatalError("%v", err)
		}
		if len(names) == 0 {
			fmt.Println("No employees found.")
			fmt.Println("Add one with: reviewr add <name>")
			return
		}

		employees := make([]*employee.Employee, 0, len(names))
		for _, name := range names {
			e, err := store.Get(name)
			if err != nil {
				WarnError("skipping %s: %v", name, err)
				continue
			}
			employees = append(employees, e)
		}
		fmt.Print(formatEmployees(employees))
	},
}

// formatEmployees renders one line per employee: name, title and the
// committer email when set.
func formatEmployees(employees []*employee.Employee) string {
	cyan := color.New(color.FgCyan).SprintFunc()
	var b strings.Builder
	for _, e := range employees {
		fmt.Fprintf(&b, "%s - %s", cyan(e.Name), e.Title)
		if e.CommitterEmail != "" {
			fmt.Fprintf(&b, " <%s>", e.CommitterEmail)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func init() {
	addCmd.Flags().String("title", "", "Job title")
	addCmd.Flags().String("email", "", "Committer email used to query the platforms")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(listCmd)
}
