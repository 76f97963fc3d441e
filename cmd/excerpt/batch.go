package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dusk-indust/excerpt/internal/batch"
	"github.com/dusk-indust/excerpt/internal/export"
)

func newBatchCmd(app *cli) *cobra.Command {
	var (
		asJSON bool
		quiet  bool
	)

	cmd := &cobra.Command{
		Use:   "batch MANIFEST",
		Short: "Run every selection job listed in a manifest",
		Long: `Run the jobs of a YAML or JSON manifest concurrently:

  jobs:
    - name: api
      file: src/app.py
      selectors: [class:Server, def:main]
      mode: interface
    - file: README.md
      selectors: "section:Install"

Relative file paths resolve against the manifest's directory. A failing job
does not stop the others; the command exits 1 if any job failed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifestPath := args[0]
			m, err := batch.LoadManifest(manifestPath)
			if err != nil {
				return err
			}

			var onProgress func(batch.ProgressEvent)
			if !quiet {
				onProgress = batch.NewProgressPrinter(cmd.ErrOrStderr(), len(m.Jobs)).Report
			}

			runner := batch.NewRunner(app.cfg.NewEngine(),
				batch.WithConcurrency(app.cfg.Workers()),
				batch.WithPresets(app.cfg.ExpandPresets),
				batch.WithProgress(onProgress),
				batch.WithLogger(app.logger),
			)
			results, runErr := runner.Run(cmd.Context(), m.Jobs)

			summary := export.NewBatchExport(manifestPath, results)
			app.logger.Info("batch complete",
				zap.String("manifest", manifestPath),
				zap.Int("succeeded", summary.Succeeded),
				zap.Int("failed", summary.Failed),
			)

			if asJSON {
				if err := export.WriteJSON(cmd.OutOrStdout(), summary); err != nil {
					return err
				}
			} else {
				printResults(cmd, summary.Results)
			}

			if runErr != nil {
				return runErr
			}
			if summary.Failed > 0 {
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print all results as one JSON document")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print progress to stderr")
	return cmd
}

func printResults(cmd *cobra.Command, results []export.Result) {
	out := cmd.OutOrStdout()
	theme := export.NewTheme()
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "==> %s (%s) <==\n", r.Name, r.File)
		if r.Failed() {
			line := theme.Error.Render("error: " + r.Error)
			if r.Selector != "" {
				line += " " + theme.Selector.Render("["+r.Selector+"]")
			}
			fmt.Fprintln(out, line)
			continue
		}
		fmt.Fprint(out, r.Text)
		if r.Text != "" && !strings.HasSuffix(r.Text, "\n") {
			fmt.Fprintln(out)
		}
	}
}
