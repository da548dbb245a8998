package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/jkoelker/ifwatch/pkg/config"
	"github.com/jkoelker/ifwatch/pkg/iflist"
)

func List() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Print the host's interfaces and their addresses",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Emit JSON instead of a table",
			},
			&cli.BoolFlag{
				Name:  "loopback",
				Usage: "Include loopback interfaces",
			},
			&cli.StringFlag{
				Name:  "family",
				Usage: `Restrict output to an address family: "4", "6" or "all"`,
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if err := runList(cmd, os.Stdout); err != nil {
				return cli.Exit(err.Error(), exitFailure)
			}

			return nil
		},
	}
}

func runList(cmd *cli.Command, out io.Writer) error {
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	if cmd.Bool("loopback") {
		cfg.List.Loopback = true
	}

	if family := cmd.String("family"); family != "" {
		cfg.List.Family = family
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	entries, err := iflist.Interfaces()
	if err != nil {
		return fmt.Errorf("enumerate interfaces: %w", err)
	}

	entries = iflist.Filter(entries, func(entry iflist.Interface) bool {
		return keepEntry(cfg, entry)
	})

	if cmd.Bool("json") {
		return writeJSON(out, entries)
	}

	return writeTable(out, entries)
}

func keepEntry(cfg *config.Config, entry iflist.Interface) bool {
	if !cfg.List.Loopback && entry.IsLoopback() {
		return false
	}

	switch cfg.List.Family {
	case config.Family4:
		return entry.IsIPv4()
	case config.Family6:
		return entry.IsIPv6()
	default:
		return true
	}
}

func writeJSON(out io.Writer, entries []iflist.Interface) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(entries); err != nil {
		return fmt.Errorf("encode interfaces: %w", err)
	}

	return nil
}

func writeTable(out io.Writer, entries []iflist.Interface) error {
	const padding = 2

	writer := tabwriter.NewWriter(out, 0, 0, padding, ' ', 0)
	fmt.Fprintln(writer, "NAME\tINDEX\tADDRESS\tBROADCAST/PEER\tFLAGS")

	for _, entry := range entries {
		secondary := ""

		switch {
		case entry.Peer.IsValid():
			secondary = entry.Peer.String()
		case entry.Broadcast.IsValid():
			secondary = entry.Broadcast.String()
		}

		address := ""
		if entry.Addr.IsValid() {
			address = entry.Addr.String()
		}

		fmt.Fprintf(
			writer,
			"%s\t%d\t%s\t%s\t%s\n",
			entry.Name,
			entry.Index,
			address,
			secondary,
			entry.Flags,
		)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush interface table: %w", err)
	}

	return nil
}
