package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"sigs.k8s.io/yaml"

	"github.com/jkoelker/ifwatch/pkg/config"
)

const sampleConfigPerm = 0o600

func Config() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration helpers",
		Commands: []*cli.Command{
			{
				Name:  "default",
				Usage: "Print a sample configuration (YAML)",
				Action: func(_ context.Context, _ *cli.Command) error {
					if err := printDefaultConfig(os.Stdout); err != nil {
						return cli.Exit(err.Error(), exitFailure)
					}

					return nil
				},
			},
			{
				Name:  "write",
				Usage: "Write a sample configuration (YAML) to a path",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Value: "ifwatch.yaml",
						Usage: "Output path for the sample configuration",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					if err := writeDefaultConfig(cmd.String("out")); err != nil {
						return cli.Exit(err.Error(), exitFailure)
					}

					return nil
				},
			},
		},
	}
}

func printDefaultConfig(out io.Writer) error {
	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}

	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	return nil
}

func writeDefaultConfig(path string) error {
	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}

	if err := os.WriteFile(path, data, sampleConfigPerm); err != nil {
		return fmt.Errorf("write default config to %s: %w", path, err)
	}

	return nil
}
