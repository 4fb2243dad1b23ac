package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kain88-de/reviewr/internal/notes"
	"github.com/kain88-de/reviewr/internal/ui"
)

func notesService() *notes.Service {
	return notes.New(paths.Notes(), cfg.GlobalSettings.AllowedDomains, logger)
}

var notesCmd = &cobra.Command{
	Use:     "notes [name]",
	GroupID: "employees",
	Short:   "Open an employee's notes in $EDITOR",
	Long: `Open the notes of an employee in $EDITOR (default: vim).

The notes file is created with a dated header on first use. When the
clipboard holds a URL from one of the allowed_domains it is appended as
an evidence line before the editor opens.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := employeeStore()
		name := resolveEmployeeName(store, args, "Select employee")
		if !store.Exists(name) {
			FatalErrorWithHint(fmt.Sprintf("employee %q not found", name), fmt.Sprintf("add it with 'reviewr add %q'", name))
		}
		if err := notesService().Open(rootCtx, name); err != nil {
			FatalErrorWithHint(err.Error(), "set $EDITOR to an installed editor")
		}
	},
}

var notesShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Render an employee's notes",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		noPager, _ := cmd.Flags().GetBool("no-pager")

		name := resolveEmployeeName(employeeStore(), args, "Select employee")
		content, err := notesService().Read(name)
		if errors.Is(err, notes.ErrNoNotes) {
			FatalErrorWithHint(err.Error(), fmt.Sprintf("start them with 'reviewr notes %q'", name))
		}
		if err != nil {
			FatalError("%v", err)
		}
		if err := ui.ToPager(ui.RenderMarkdown(content), ui.PagerOptions{NoPager: noPager}); err != nil {
			FatalError("%v", err)
		}
	},
}

func init() {
	notesShowCmd.Flags().Bool("no-pager", false, "Print directly instead of using a pager")
	notesCmd.AddCommand(notesShowCmd)
	rootCmd.AddCommand(notesCmd)
}
