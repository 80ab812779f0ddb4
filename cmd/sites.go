package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/brogergvhs/mangapdf/internal/providers"

	"github.com/spf13/cobra"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the supported sites",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 4, ' ', 0)
		_, _ = fmt.Fprintln(w, "SITE\tMATCHES HOSTS CONTAINING")

		for _, s := range providers.Default().Sites() {
			_, _ = fmt.Fprintf(w, "%s\t%s\n", s.Name, s.Token)
		}

		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(sitesCmd)
}
