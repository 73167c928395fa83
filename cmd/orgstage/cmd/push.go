package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"orgstage/internal/adapters/agenda"
	"orgstage/internal/application/commands"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Export the document set to the staging directory",
	Long: `Export every canonical document to the staging directory, together
with the generated index document, the flattened agenda view, an empty
capture file and the digest manifest.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := agenda.NewEngine(store, cfg.Agendas, cfg.IsDone)
		push := commands.NewPushCommand(store, index, area, eng, cfg)

		res, err := push.Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("staged %d documents (%d files) to %s\n",
			res.Documents, len(res.Manifest), area.Root())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
}
