package cmd

import (
	"fmt"

	"github.com/brogergvhs/mangapdf/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the config profiles of mangapdf",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, used, err := config.LoadMerged(config.Options{
			IgnoreConfig: flagIgnoreConfig,
			Debug:        flagDebug,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Loaded config from:\n  %s\n\n", used)
		cfg.Print(out)

		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(out, "\nThis config has problems:\n%v\n", err)
		}

		return nil
	},
}

func init() {
	configCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "answer yes to confirmations")
	rootCmd.AddCommand(configCmd)
}
