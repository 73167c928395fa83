package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"orgstage/internal/adapters/tui"
	"orgstage/internal/application/commands"
	"orgstage/internal/domain"
)

var pullReview bool

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Ingest staged captures and change requests",
	Long: `Move the staged capture file into the canonical inbox and apply the
change requests it contains. Plain captures are filed for manual refiling;
requests that fail stay in the inbox with an error annotation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		apply := commands.NewApplyCommand(store, index, cfg)
		pull := commands.NewPullCommand(store, area, cfg, apply)

		res, err := pull.Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(res.Summary())
		for _, path := range res.Flagged {
			fmt.Printf("flagged: %s\n", store.LinkName(path))
		}

		if pullReview && len(res.Flagged) > 0 {
			app := tui.NewApp(func() ([]domain.FlaggedEntry, error) {
				return commands.ListFlagged(store)
			})
			p := tea.NewProgram(app, tea.WithAltScreen())
			_, err = p.Run()
			return err
		}
		return nil
	},
}

func init() {
	pullCmd.Flags().BoolVar(&pullReview, "review", false, "open the review view when entries were flagged")
	rootCmd.AddCommand(pullCmd)
}
