package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

// startCommand returns a CLI command that polls the watched Safe and
// notifies every transaction lifecycle change.
//
// Usage example:
//
//	safewatch start
//
// The process runs until it receives an interrupt (SIGINT or SIGTERM) or ctx
// is canceled.
func startCommand(setup SetupFunc) *cli.Command {
	return &cli.Command{
		Name:        "start",
		Description: "Starts polling the Safe transaction index and sending notifications.",
		Usage:       "Runs the watcher. Terminates gracefully on Ctrl+C or termination signals.",
		Action: withDeps(setup, func(ctx context.Context, c *cli.Command, deps Deps) error {
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := deps.Watcher.Start(ctx); err != nil {
				return err
			}
			defer deps.Watcher.Close()

			<-ctx.Done()
			return nil
		}),
	}
}
