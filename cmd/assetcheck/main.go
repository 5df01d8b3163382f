// Command assetcheck validates dynamic asset files and loads them headlessly
// through a loading phase, the way a game would at start-up.
//
// Usage:
//
//	assetcheck [global options] validate FILE...
//	assetcheck [global options] load [--watch] FILE...
//
// Exit codes for load:
//   - 0: every key resolved
//   - 1: the loading phase failed
//   - 2: timed out or interrupted
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	app := newApp(cfg)
	app.ExitErrHandler = exitErrHandler

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func newApp(cfg config) *cli.App {
	return &cli.App{
		Name:  "assetcheck",
		Usage: "Validate and load dynamic asset files",
		Flags: globalFlags(cfg),
		Commands: []*cli.Command{
			validateCommand(),
			loadCommand(cfg),
		},
	}
}

// exitErrHandler keeps the exit codes of cli.Exit errors.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
