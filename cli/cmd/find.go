package cmd

import (
	"fmt"

	"github.com/FollowTheProcess/pyscout/cli/app"
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

func buildFindCmd() *cobra.Command {
	app := app.New()
	var (
		system bool
		best   bool
	)

	findCmd := &cobra.Command{
		Use:   "find [request]",
		Args:  cobra.MaximumNArgs(1),
		Short: "Find a python interpreter.",
		Long: heredoc.Doc(`

		Find a python interpreter.

		The request may be a version ("3", "3.12", "3.12.1"), an
		implementation ("pypy", "pypy@3.8"), the path of an interpreter
		or environment directory, or the name of an executable to look
		up on $PATH. No request at all means any python will do.

		Discovery stops at the first match, honouring the source order:
		active environment, discovered environment, managed toolchains,
		$PATH, then the py launcher.
		`),
		Example: heredoc.Doc(`

		# Any python
		$ pyscout find

		# CPython 3.12, or the nearest thing to it
		$ pyscout find cpython@3.12 --best

		# Ignore virtual environments
		$ pyscout find 3.11 --system
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			request := ""
			if len(args) == 1 {
				request = args[0]
			}
			if err := app.Find(request, system, best); err != nil {
				return fmt.Errorf("cannot find interpreter: %w", err)
			}
			return nil
		},
	}

	findCmd.Flags().BoolVar(&system, "system", false, "Ignore virtual environments")
	findCmd.Flags().BoolVar(&best, "best", false, "Fall back to the closest matching interpreter")

	return findCmd
}
