package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"codeberg.org/forgeui/server/internal/generator"
	"codeberg.org/forgeui/server/internal/technology"
	"github.com/spf13/cobra"
)

func (a *App) generateCommand() *cobra.Command {
	var (
		req      generator.Request
		tech     string
		out      string
		document string
		quiet    bool
	)

	cmd := &cobra.Command{
		Use:   "generate <prompt...>",
		Short: "Generate a component and stream the response",
		Long: "Streams a component from the configured generation service to stdout, " +
			"then extracts the code and builds its preview.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := a.client()
			if err != nil {
				return err
			}

			req.Prompt = strings.Join(args, " ")
			req.Technology = technology.Technology(tech)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			ctx, cancel := context.WithTimeout(ctx, cfg.GenerationTimeout)
			defer cancel()

			stream := a.Out
			if quiet {
				stream = io.Discard
			}

			gen := generator.New(client, a.router(), cfg.LLM.Model)

			result, err := gen.Run(ctx, req, func(fragment string) {
				io.WriteString(stream, fragment) //nolint:errcheck,gosec // terminal streaming
			})
			if err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintln(a.Out) //nolint:errcheck // terminal streaming
			}

			fmt.Fprintf(a.Err, "model %s, %s, match %s\n", result.Entry.Model, result.Entry.Technology, result.Snippet.Match) //nolint:errcheck // best-effort notice

			if result.Snippet.Fallback() {
				fmt.Fprintln(a.Err, "warning: no code pattern matched, using the response as is") //nolint:errcheck // best-effort notice
			}

			if result.PreviewErr != nil {
				fmt.Fprintf(a.Err, "preview failed: %v\n", result.PreviewErr) //nolint:errcheck // best-effort notice
			}

			if out != "" {
				if err := a.writeOutput(out, result.Code); err != nil {
					return err
				}
			}

			if document != "" && result.Document != "" {
				if err := a.writeOutput(document, result.Document); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&tech, "technology", "t", string(technology.Default), "target technology")
	cmd.Flags().StringVarP(&req.Model, "model", "m", "", "model name (defaults to the configured model)")
	cmd.Flags().Float64Var(&req.Temperature, "temperature", 0, "sampling temperature between 0.1 and 1.0")
	cmd.Flags().Float64Var(&req.TopP, "top-p", 0, "nucleus sampling threshold")
	cmd.Flags().IntVar(&req.MaxTokens, "max-tokens", 0, "maximum tokens to generate")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the extracted code to a file")
	cmd.Flags().StringVar(&document, "document", "", "write the preview document to a file")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not stream the response")

	return cmd
}
