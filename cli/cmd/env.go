package cmd

import (
	"fmt"

	"github.com/FollowTheProcess/pyscout/cli/app"
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

func buildEnvCmd() *cobra.Command {
	app := app.New()
	var (
		python string
		system bool
	)

	envCmd := &cobra.Command{
		Use:   "env",
		Args:  cobra.NoArgs,
		Short: "Show the resolved python environment.",
		Long: heredoc.Doc(`

		Show the resolved python environment.

		An environment is an interpreter together with the prefix it
		installs into. Without flags the active or discovered virtual
		environment wins, falling back to the system interpreter.
		`),
		Example: heredoc.Doc(`

		# Whatever environment is in effect here
		$ pyscout env

		# The environment of a specific interpreter
		$ pyscout env --python 3.12

		# Skip virtual environments entirely
		$ pyscout env --system
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Env(python, system); err != nil {
				return fmt.Errorf("cannot resolve environment: %w", err)
			}
			return nil
		},
	}

	envCmd.Flags().StringVarP(&python, "python", "p", "", "Interpreter request to resolve the environment for")
	envCmd.Flags().BoolVar(&system, "system", false, "Ignore virtual environments")

	return envCmd
}
