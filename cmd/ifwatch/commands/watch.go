package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/jkoelker/ifwatch/pkg/config"
	"github.com/jkoelker/ifwatch/pkg/ifmon"
)

func Watch() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Watch for interface changes and log them",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "poll",
				Usage: "Use repeated one-shot waits instead of an event subscription",
			},
			&cli.BoolFlag{
				Name:  "oneshot",
				Usage: "Exit after the first reported change",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := runWatch(ctx, cmd); err != nil && !errors.Is(err, context.Canceled) {
				return cli.Exit(err.Error(), exitFailure)
			}

			return nil
		},
	}
}

type watchOptions struct {
	cfg     *config.Config
	log     *slog.Logger
	oneshot bool
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd.String("log-level"))
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		logger.Error("failed to load config", "path", cmd.String("config"), "err", err)

		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := watchOptions{cfg: cfg, log: logger, oneshot: cmd.Bool("oneshot")}

	if cmd.Bool("poll") {
		return pollChanges(ctx, opts)
	}

	return watchChanges(ctx, opts)
}

// pollChanges drives the one-shot change waiter in a loop. It is the only
// watch strategy available on platforms without a subscription monitor.
func pollChanges(ctx context.Context, opts watchOptions) error {
	for {
		waitCtx, cancel := context.WithTimeout(ctx, opts.cfg.Watch.PollTimeout)
		err := ifmon.WaitForChange(waitCtx)
		cancel()

		switch {
		case err == nil:
			opts.log.Info("interface list changed")

			if opts.oneshot {
				return nil
			}

			// Coalesce bursts of notifications before rearming.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.cfg.Watch.Debounce):
			}
		case errors.Is(err, ifmon.ErrTimeout):
			if ctx.Err() != nil {
				return ctx.Err()
			}
		case errors.Is(err, context.Canceled):
			return ctx.Err()
		default:
			return fmt.Errorf("wait for interface change: %w", err)
		}
	}
}

func logEvent(log *slog.Logger, event ifmon.Event) {
	attrs := []any{"op", event.Op.String(), "ifindex", event.IfIndex}

	if event.IfName != "" {
		attrs = append(attrs, "ifname", event.IfName)
	}

	if event.Addr.IsValid() {
		attrs = append(attrs, "addr", event.Addr.String())
	}

	if event.Op == ifmon.LinkUpdated {
		attrs = append(attrs, "up", event.Up)
	}

	log.Info("interface change", attrs...)
}
