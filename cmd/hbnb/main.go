// Command hbnb is the object console.
package main

import (
	"os"

	"github.com/hbnb/console/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		cli.ReportError(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
