package cli

import (
	"fmt"
	"text/tabwriter"

	"codeberg.org/forgeui/server/internal/technology"
	"github.com/spf13/cobra"
)

func (a *App) technologiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "technologies",
		Short: "List supported technologies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)

			fmt.Fprintln(w, "ID\tNAME\tFILE\tPREVIEW") //nolint:errcheck // flushed below

			for _, info := range technology.All() {
				kind := "document"
				if info.Native {
					kind = "sandbox"
				}

				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.ID, info.Name, info.ID.Filename(), kind) //nolint:errcheck // flushed below
			}

			return w.Flush()
		},
	}
}
