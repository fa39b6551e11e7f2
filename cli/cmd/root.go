// Package cmd implements the pyscout CLI
package cmd

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

var (
	version = "dev" // pyscout version, set at compile time by ldflags
	commit  = ""    // pyscout version's commit hash, set at compile time by ldflags
)

func BuildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pyscout <command> [flags]",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Short:         "Find python interpreters and project workspaces.",
		Long: heredoc.Doc(`

		Find python interpreters and project workspaces.

		pyscout is the discovery core of a python package management
		toolchain 🐍

		Given a request like "3.12", "pypy@3.8" or "./bin/python" it finds
		a matching interpreter by looking in a few different places:

		1) An activated virtual environment
		2) A virtual environment in the current or parent directories
		3) Installed managed toolchains
		4) Python executables on $PATH
		5) The Windows py launcher (where it exists)

		Each place is only consulted once the previous one is exhausted,
		so the first match wins and nothing slower ever runs.

		It also resolves the project enclosing a directory and the
		multi-package workspace the project belongs to.
		`),
		Example: heredoc.Doc(`

		# Find any python
		$ pyscout find

		# Find a specific version
		$ pyscout find 3.12

		# Find a pypy 3.8, settling for the closest match
		$ pyscout find pypy@3.8 --best

		# List everything discoverable
		$ pyscout list

		# Show the workspace around the current directory
		$ pyscout workspace
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Attach child commands
	rootCmd.AddCommand(
		buildVersionCmd(),
		buildFindCmd(),
		buildListCmd(),
		buildWorkspaceCmd(),
		buildEnvCmd(),
	)

	return rootCmd
}

func buildVersionCmd() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Args:  cobra.NoArgs,
		Short: "Show pyscout's version info.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pyscout version: %s\n", version)
			fmt.Printf("commit: %s\n", commit)
		},
	}

	return versionCmd
}
