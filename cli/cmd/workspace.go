package cmd

import (
	"fmt"

	"github.com/FollowTheProcess/pyscout/cli/app"
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

func buildWorkspaceCmd() *cobra.Command {
	app := app.New()

	workspaceCmd := &cobra.Command{
		Use:   "workspace [dir]",
		Args:  cobra.MaximumNArgs(1),
		Short: "Show the workspace around a project.",
		Long: heredoc.Doc(`

		Show the workspace around a project.

		Finds the pyproject.toml at the given directory (the current
		directory by default) and works out the workspace it belongs
		to: either its own manifest declares one, or the nearest
		ancestor manifest does and its exclude globs do not match this
		project. The ancestor's member globs are not checked for this.

		Reports the project root, the workspace root, every member
		package with its location, and any workspace-level source
		overrides.
		`),
		Example: heredoc.Doc(`

		# The workspace around the current directory
		$ pyscout workspace

		# The workspace around some member package
		$ pyscout workspace packages/bird-feeder
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			if err := app.Workspace(dir); err != nil {
				return fmt.Errorf("cannot resolve workspace: %w", err)
			}
			return nil
		},
	}

	return workspaceCmd
}
