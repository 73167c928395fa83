package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"orgstage/internal/application/commands"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize the sync state",
	RunE: func(cmd *cobra.Command, args []string) error {
		status := commands.NewStatusCommand(store, area, cfg)

		st, err := status.Execute(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("documents:        %d\n", st.Documents)
		fmt.Printf("staged files:     %d\n", len(st.Manifest))
		fmt.Printf("pending requests: %d\n", st.PendingRequests)
		fmt.Printf("pending captures: %d\n", st.PendingCaptures)
		fmt.Printf("flagged entries:  %d\n", len(st.Flagged))
		for _, f := range st.Flagged {
			fmt.Printf("  %s::%s\n", f.File, f.Heading)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
