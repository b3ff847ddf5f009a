// Package main provides the coredrain CLI entrypoint.
//
// coredrain simulates a microcontroller's post-crash boot: it classifies
// the reset cause, locates the captured coredump image, streams it to a
// collector over the configured transport, and erases it on success.
//
// Usage:
//
//	coredrain <command> [options]
//
// Exit codes for run:
//   - 0: success, or nothing to upload
//   - 1: upload failed (image kept for the next boot)
//   - 2: configuration error
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/emberware/coredrain/cli/cmd"
	"github.com/emberware/coredrain/types"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := &cli.App{
		Name:    "coredrain",
		Usage:   "Coredump upload agent and simulator",
		Version: fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		Commands: []*cli.Command{
			cmd.RunCommand(),
			cmd.InfoCommand(),
			cmd.InjectCommand(),
			cmd.VersionCommand(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		// cli.Exit errors carry their own code and were printed by the
		// framework; anything else is unexpected.
		if _, ok := err.(cli.ExitCoder); !ok {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if coder, ok := err.(cli.ExitCoder); ok {
		return coder.ExitCode()
	}
	return 1
}
