// Command macrorun runs the two-step Excel macro workflow.
package main

import (
	"os"

	"github.com/custodia-labs/macrorun/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
