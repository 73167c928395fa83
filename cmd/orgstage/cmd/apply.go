package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"orgstage/internal/application/commands"
)

var (
	applyFrom int
	applyTo   int
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Re-apply pending inbox change requests",
	Long: `Re-run the request pass over the canonical inbox without touching
the staging directory. Useful after resolving a conflict by hand: entries
that now apply cleanly are consumed, the rest stay annotated.

By default the whole inbox is processed; --from and --to restrict the pass
to a byte range.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		apply := commands.NewApplyCommand(store, index, cfg)

		res, err := apply.Execute(cmd.Context(), applyFrom, applyTo)
		if err != nil {
			return err
		}
		fmt.Println(res.Summary())
		return nil
	},
}

func init() {
	applyCmd.Flags().IntVar(&applyFrom, "from", -1, "start of the inbox byte range to process")
	applyCmd.Flags().IntVar(&applyTo, "to", -1, "end of the inbox byte range to process")
	rootCmd.AddCommand(applyCmd)
}
