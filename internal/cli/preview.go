package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/forgeui/server/internal/extractor"
	"codeberg.org/forgeui/server/internal/normalizer"
	"codeberg.org/forgeui/server/internal/preview"
	"codeberg.org/forgeui/server/internal/technology"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// quiet period after the last write before a rebuild
const watchDebounce = 200 * time.Millisecond

type previewOptions struct {
	tech    technology.Technology
	out     string
	frame   bool
	extract bool
}

func (a *App) previewCommand() *cobra.Command {
	var (
		tech  string
		opts  previewOptions
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Render a preview document for component code",
		Long: "Builds the preview for component code and prints the displayable HTML document. " +
			"React components are compiled and rendered in the sandbox; other technologies get a synthesized document. " +
			"With --watch the file is rebuilt on every change until interrupted.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := technology.Parse(tech)
			if err != nil {
				return err
			}

			opts.tech = t

			if !watch {
				code, err := a.readInput(args)
				if err != nil {
					return err
				}

				return a.renderPreview(a.router(), code, opts)
			}

			if len(args) == 0 || args[0] == "-" {
				return errors.New("--watch needs a file argument")
			}

			if opts.out == "" {
				return errors.New("--watch needs --out")
			}

			return a.watchPreview(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&tech, "technology", "t", string(technology.Default), "target technology")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write the document to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.frame, "frame", false, "wrap the document in a sandboxed iframe")
	cmd.Flags().BoolVar(&opts.extract, "extract", false, "treat the input as a raw model response and extract code first")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "rebuild whenever the file changes")

	return cmd
}

// builds the document for code and writes it out. a failed build still
// writes an error panel document so a watching browser shows the failure
func (a *App) renderPreview(router *preview.Router, code string, opts previewOptions) error {
	if opts.extract {
		code = extractor.Extract(code, opts.tech).Text
	}

	code = normalizer.Normalize(extractor.Snippet{Text: code, Technology: opts.tech}).Text

	doc, err := buildDocument(router, code, opts.tech)
	if err != nil {
		if doc == "" {
			doc = preview.ErrorDocument("Preview failed", err.Error())
		}

		if opts.out != "" {
			if werr := a.writeOutput(opts.out, frame(doc, opts.frame)); werr != nil {
				return werr
			}
		}

		return fmt.Errorf("preview failed: %w", err)
	}

	return a.writeOutput(opts.out, frame(doc, opts.frame))
}

func buildDocument(router *preview.Router, code string, tech technology.Technology) (string, error) {
	p, err := router.Build(code, tech)
	if err != nil {
		return "", err
	}

	return router.Document(p)
}

func frame(doc string, wrap bool) string {
	if wrap {
		return preview.Frame(doc)
	}

	return doc
}

// rebuilds the preview on every change to path until ctx ends
func (a *App) watchPreview(ctx context.Context, path string, opts previewOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck // shutdown

	// editors often replace files on save, so watch the directory
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	router := a.router()

	rebuild := func() {
		data, err := os.ReadFile(abs)
		if err != nil {
			fmt.Fprintf(a.Err, "read %s: %v\n", path, err) //nolint:errcheck // best-effort notice
			return
		}

		if err := a.renderPreview(router, string(data), opts); err != nil {
			fmt.Fprintln(a.Err, err) //nolint:errcheck // best-effort notice
			return
		}

		fmt.Fprintf(a.Err, "%s rebuilt %s\n", time.Now().Format(time.TimeOnly), opts.out) //nolint:errcheck // best-effort notice
	}

	rebuild()

	fmt.Fprintf(a.Err, "watching %s (ctrl+c to stop)\n", path) //nolint:errcheck // best-effort notice

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}

			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}

			pending = timer.C

		case <-pending:
			pending = nil
			rebuild()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			fmt.Fprintf(a.Err, "watch error: %v\n", err) //nolint:errcheck // best-effort notice
		}
	}
}
