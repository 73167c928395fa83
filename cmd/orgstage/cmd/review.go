package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"orgstage/internal/adapters/tui"
	"orgstage/internal/application/commands"
	"orgstage/internal/domain"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Browse flagged entries interactively",
	Long: `Open an interactive list of every entry flagged from the staged
copy. Selecting an entry copies its location (file.org::Heading) to the
clipboard for jumping to it in an editor.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := tui.NewApp(func() ([]domain.FlaggedEntry, error) {
			return commands.ListFlagged(store)
		})

		p := tea.NewProgram(app, tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}
