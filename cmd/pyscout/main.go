/*
pyscout is the interpreter discovery and workspace resolution core of a
python package management toolchain.

It finds the python interpreter a request most likely means by looking in
a few different places, in order:

1) An activated virtual environment
2) A virtual environment in the current or parent directories
3) Installed managed toolchains
4) Python executables on $PATH
5) The Windows py launcher (where it exists)

If pyscout reaches the end of the list without finding a matching
interpreter, it will exit with an error message.

It also resolves the project enclosing a directory and the multi-package
workspace that project belongs to.
*/
package main

import (
	"fmt"
	"os"

	"github.com/FollowTheProcess/pyscout/cli/cmd"
	"github.com/fatih/color"
)

func main() {
	rootCmd := cmd.BuildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		title := color.New(color.FgRed).Add(color.Bold)
		msg := color.New(color.FgWhite).Add(color.Bold)
		fmt.Fprintf(os.Stderr, "%s: %s\n", title.Sprint("error"), msg.Sprint(err))
		os.Exit(1)
	}
}
