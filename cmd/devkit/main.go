package main

import (
	"fmt"
	"os"

	"github.com/spec-kit/storefront-devkit/internal/cli/command"
)

func main() {
	// Errors created with cli.Exit print and exit inside Run.
	if err := command.App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(command.ExitFailure)
	}
}
