package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"orgstage/internal/adapters/orgfile"
	"orgstage/internal/adapters/sqlite"
	"orgstage/internal/adapters/staging"
	"orgstage/internal/config"
	"orgstage/internal/ports"
)

var (
	configPath string
	dirFlag    string
	stagingDir string

	cfg   *config.Config
	store ports.DocumentStore
	index ports.IdentifierIndex
	area  ports.StagingArea
)

var rootCmd = &cobra.Command{
	Use:   "orgstage",
	Short: "Sync outline documents with a disconnected staging directory",
	Long: `orgstage keeps a set of outline documents in sync with a staging
directory consumed by a disconnected client.

"push" exports a digest-tracked mirror of the documents together with a
generated index and a flattened agenda view. "pull" ingests captured notes
and change requests staged by the client, applying edits back to the
canonical files with compare-and-swap semantics.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dirFlag != "" {
			cfg.Dir = config.ExpandHome(dirFlag)
		}
		if stagingDir != "" {
			cfg.StagingDir = config.ExpandHome(stagingDir)
		}
		if cfg.Dir == "" {
			return fmt.Errorf("no document directory configured (set dir in the config file, ORGSTAGE_DIR or --dir)")
		}

		store = orgfile.NewStore(cfg.Dir, cfg.Files, cfg.InboxFile, cfg.AllKeywords())
		area = staging.NewArea(cfg.StagingDir, config.ManifestFile, digestAlgorithm())

		idx := sqlite.NewIndex(cfg.Dir)
		if err := idx.Open(); err != nil {
			return err
		}
		index = idx
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if index != nil {
			return index.Close()
		}
		return nil
	},
}

func digestAlgorithm() staging.Algorithm {
	alg, err := staging.ParseAlgorithm(cfg.Digest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using sha256\n", err)
		return staging.SHA256
	}
	return alg
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "path to the config file")
	rootCmd.PersistentFlags().StringVarP(&dirFlag, "dir", "d", "", "canonical document directory (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&stagingDir, "staging", "s", "", "staging directory (overrides config)")
}
