package cmd

import (
	"fmt"

	"github.com/brogergvhs/mangapdf/internal/config"

	"github.com/spf13/cobra"
)

var configResetCmd = &cobra.Command{
	Use:   "reset [label]",
	Short: "Reset the current or specified config to default values",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label, err := labelOrActive(args)
		if err != nil {
			return err
		}

		if !confirm(fmt.Sprintf("Overwrite config %q with defaults", label)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}

		path, err := config.ResetConfig(label)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Reset config: %s\n", path)
		return nil
	},
}

// labelOrActive returns the label given on the command line, or the active one.
func labelOrActive(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	label, err := config.CurrentLabel()
	if err != nil {
		return "", fmt.Errorf("failed to get current config label: %w", err)
	}

	return label, nil
}

func init() {
	configCmd.AddCommand(configResetCmd)
}
