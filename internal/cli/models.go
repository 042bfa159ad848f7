package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

const modelsTimeout = 10 * time.Second

func (a *App) modelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List models offered by the generation service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := a.client()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), modelsTimeout)
			defer cancel()

			models, err := client.ListModels(ctx)
			if err != nil {
				return fmt.Errorf("failed to list models from %s: %w", client.BaseURL(), err)
			}

			if len(models) == 0 {
				fmt.Fprintf(a.Err, "no models available at %s\n", client.BaseURL()) //nolint:errcheck // best-effort notice
				return nil
			}

			w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)

			fmt.Fprintln(w, "NAME\tSIZE\tMODIFIED") //nolint:errcheck // flushed below

			for _, m := range models {
				fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, humanSize(m.Size), m.ModifiedAt) //nolint:errcheck // flushed below
			}

			return w.Flush()
		},
	}
}

func humanSize(n int64) string {
	if n <= 0 {
		return "-"
	}

	const unit = 1024

	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
