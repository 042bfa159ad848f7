package cli

import (
	"encoding/json"
	"fmt"

	"codeberg.org/forgeui/server/internal/extractor"
	"codeberg.org/forgeui/server/internal/normalizer"
	"codeberg.org/forgeui/server/internal/technology"
	"github.com/spf13/cobra"
)

func (a *App) extractCommand() *cobra.Command {
	var (
		tech   string
		asJSON bool
		out    string
	)

	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract component code from a model response",
		Long:  "Reads a model response from a file or stdin and prints the isolated, normalized component code.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := technology.Parse(tech)
			if err != nil {
				return err
			}

			raw, err := a.readInput(args)
			if err != nil {
				return err
			}

			snippet := normalizer.Normalize(extractor.Extract(raw, t))

			if snippet.Fallback() {
				fmt.Fprintln(a.Err, "warning: no code pattern matched, using the response as is") //nolint:errcheck // best-effort notice
			}

			if asJSON {
				enc := json.NewEncoder(a.Out)
				enc.SetIndent("", "  ")

				return enc.Encode(struct {
					extractor.Snippet
					Fallback bool `json:"fallback"`
				}{snippet, snippet.Fallback()})
			}

			return a.writeOutput(out, snippet.Text)
		},
	}

	cmd.Flags().StringVarP(&tech, "technology", "t", string(technology.Default), "target technology")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print code with match details as JSON")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the code to a file instead of stdout")

	return cmd
}
