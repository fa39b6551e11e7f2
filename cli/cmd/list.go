package cmd

import (
	"fmt"

	"github.com/FollowTheProcess/pyscout/cli/app"
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

func buildListCmd() *cobra.Command {
	app := app.New()
	var system bool

	listCmd := &cobra.Command{
		Use:   "list",
		Args:  cobra.NoArgs,
		Short: "List all found python interpreters.",
		Long: heredoc.Doc(`

		List all found python interpreters.

		The list command will run pyscout's interpreter finder over every
		enabled source and simply report back the list of interpreters it
		has found, their versions and their paths.

		Interpreters are shown in discovery order, so the first line is
		what an unqualified find would resolve to. Broken interpreters
		(those that cannot report their own metadata) are skipped.
		`),
		Example: heredoc.Doc(`

		$ pyscout list
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.List(system); err != nil {
				return fmt.Errorf("cannot list interpreters: %w", err)
			}
			return nil
		},
	}

	listCmd.Flags().BoolVar(&system, "system", false, "Ignore virtual environments")

	return listCmd
}
