package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/excerpt/internal/export"
	"github.com/dusk-indust/excerpt/internal/pyast"
	"github.com/dusk-indust/excerpt/internal/selector"
)

func newInterfaceCmd(app *cli) *cobra.Command {
	var mermaid bool

	cmd := &cobra.Command{
		Use:   "interface FILE",
		Short: "Print the public interface of a Python file",
		Long: `Print the signatures, decorators and docstrings of every public class
and function in a Python file, with bodies replaced by "...". With
--mermaid, print a Mermaid diagram of its classes and functions instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			content, err := app.readSource(file)
			if err != nil {
				return err
			}

			if mermaid {
				mod, err := pyast.NewParser().Parse([]byte(content))
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), export.FormatError(displayName(file), err))
					return errReported
				}
				fmt.Fprint(cmd.OutOrStdout(), export.GenerateMermaid(displayName(file), mod))
				return nil
			}

			text, err := app.cfg.NewEngine().Select(content, nil, file, selector.ModeInterface)
			return app.printSelection(cmd, file, file, nil, selector.ModeInterface, text, err, false, false)
		},
	}

	cmd.Flags().BoolVar(&mermaid, "mermaid", false, "print a Mermaid structure diagram")
	return cmd
}
