package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dusk-indust/excerpt/internal/export"
	"github.com/dusk-indust/excerpt/internal/selector"
	"github.com/dusk-indust/excerpt/internal/watch"
)

type selectOptions struct {
	mode   string
	as     string
	json   bool
	render bool
	watch  bool
}

func newSelectCmd(app *cli) *cobra.Command {
	var opts selectOptions

	cmd := &cobra.Command{
		Use:   "select FILE [SELECTOR...]",
		Short: "Print the regions of FILE matched by selectors",
		Long: `Print the union of the regions of FILE matched by the selectors, in
file order. Use - as FILE to read standard input together with --as to
name its type. Arguments may hold several comma-separated selectors and
may reference configured presets as @name.

Selectors:
  lines:1-10,20-    line ranges (1-based, inclusive)
  def:name          functions named name, decorators included
  class:Name        a class, or class:Name.method for one method
  section:Heading   a Markdown section and its subsections
  pattern:/regex/   every line the regex matches
  path:a.b[0]       a JSON or YAML value, re-serialized`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runSelect(cmd, args[0], args[1:], opts)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", "", "full or interface (default from config, else full)")
	cmd.Flags().StringVar(&opts.as, "as", "", "file name used as the type hint, for stdin input")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print a JSON result record")
	cmd.Flags().BoolVar(&opts.render, "render", false, "render the output as Markdown in the terminal")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-run the selection whenever FILE changes")
	return cmd
}

func (app *cli) runSelect(cmd *cobra.Command, file string, args []string, opts selectOptions) error {
	render := opts.render || app.cfg.Render
	if opts.json && render {
		return errors.New("--json and --render cannot be combined")
	}

	mode := app.cfg.DefaultMode()
	if opts.mode != "" {
		m, err := selector.ParseMode(opts.mode)
		if err != nil {
			return err
		}
		mode = m
	}

	var sels []string
	for _, arg := range args {
		sels = append(sels, selector.SplitSelectors(arg)...)
	}
	sels, err := app.cfg.ExpandPresets(sels)
	if err != nil {
		return err
	}

	hint := opts.as
	if hint == "" && file != "-" {
		hint = file
	}

	engine := app.cfg.NewEngine()
	once := func() error {
		content, err := app.readSource(file)
		if err != nil {
			return err
		}
		text, err := engine.Select(content, sels, hint, mode)
		app.logger.Debug("select",
			zap.String("file", file),
			zap.Strings("selectors", sels),
			zap.String("mode", string(mode)),
			zap.Bool("ok", err == nil),
		)
		return app.printSelection(cmd, file, hint, sels, mode, text, err, opts.json, render)
	}

	if !opts.watch {
		return once()
	}
	if file == "-" {
		return errors.New("--watch needs a file path, not stdin")
	}
	out := cmd.OutOrStdout()
	return watch.New(app.logger, 0).Run(cmd.Context(), file, func() error {
		fmt.Fprintf(out, "\n--- %s ---\n", file)
		if err := once(); err != nil && !errors.Is(err, errReported) {
			return err
		}
		return nil
	})
}

func (app *cli) readSource(file string) (string, error) {
	if file == "-" {
		data, err := io.ReadAll(app.stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", file, err)
	}
	return string(data), nil
}

// printSelection writes a selection or its error. Selection errors are
// printed to stderr (or inside the JSON record) and returned as errReported.
func (app *cli) printSelection(
	cmd *cobra.Command,
	file, hint string,
	sels []string,
	mode selector.Mode,
	text string,
	selErr error,
	asJSON, render bool,
) error {
	out := cmd.OutOrStdout()

	if asJSON {
		if err := export.WriteJSON(out, export.NewResult("", file, sels, mode, text, selErr).WithFileType(hint)); err != nil {
			return err
		}
		if selErr != nil {
			return errReported
		}
		return nil
	}

	if selErr != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), export.FormatError(displayName(file), selErr))
		return errReported
	}

	if render {
		ft := selector.DetectFileType(hint)
		source := text
		if ft != selector.FileMarkdown {
			source = export.FencedCode(text, ft)
		}
		rendered, err := export.RenderMarkdown(source, 0)
		if err != nil {
			return err
		}
		fmt.Fprint(out, rendered)
		return nil
	}

	fmt.Fprint(out, text)
	if text != "" && !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(out)
	}
	return nil
}

func displayName(file string) string {
	if file == "-" {
		return ""
	}
	return file
}
