// Command typerel decides structural relations between type descriptors.
package main

import (
	"os"

	"github.com/roach88/typerel/internal/cli"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI and maps the result to a process exit code. Commands
// write their own diagnostics, so only the code is taken from the error.
func run(args []string) int {
	cmd := cli.NewRootCommand()
	cmd.SetArgs(args)
	return cli.GetExitCode(cmd.Execute())
}
