package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/jkoelker/ifwatch/cmd/ifwatch/commands"
)

const exitFailure = 1

func main() {
	cmd := &cli.Command{
		Name:            "ifwatch",
		Usage:           "List network interfaces and watch them for changes",
		HideHelpCommand: true,
		DefaultCommand:  "list",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the configuration file (YAML or JSON)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "Log level: debug, info, warn, error",
			},
		},
		Commands: []*cli.Command{
			commands.List(),
			commands.Watch(),
			commands.Config(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailure)
	}
}
