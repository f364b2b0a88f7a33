package cli

import (
	"context"
	"io"
	"os"

	"github.com/gabapcia/safewatch/internal/safetx"
	"github.com/gabapcia/safewatch/internal/safewatch"

	"github.com/urfave/cli/v3"
)

// Deps are the services the commands operate on.
type Deps struct {
	Watcher safewatch.Service
	Index   safetx.Index
}

// ReleaseFunc frees what a SetupFunc acquired.
type ReleaseFunc func()

// SetupFunc builds the command dependencies. It runs only once a command
// action is about to execute, so help and usage errors never need a
// configured environment.
type SetupFunc func(ctx context.Context) (Deps, ReleaseFunc, error)

// Run initializes and executes the safewatch CLI application.
//
// It registers all available commands:
//
//   - `start`: Polls the watched Safe until interrupted.
//   - `list`: Prints the latest (or every) transaction of the Safe.
//   - `show`: Prints the normalized detail of one transaction.
//   - `notify`: Sends one lifecycle event through the notifiers.
func Run(ctx context.Context, setup SetupFunc) error {
	return newApp(setup, os.Stdout).Run(ctx, os.Args)
}

func newApp(setup SetupFunc, out io.Writer) *cli.Command {
	return &cli.Command{
		EnableShellCompletion: true,
		Name:                  "safewatch",
		Description:           "Command-line interface for watching a Safe multisig and its transactions.",
		Usage:                 "safewatch [command] [flags]",
		Writer:                out,
		Commands: []*cli.Command{
			startCommand(setup),
			listCommand(setup),
			showCommand(setup),
			notifyCommand(setup),
		},
	}
}

// withDeps runs action with freshly built dependencies and releases them
// afterwards.
func withDeps(setup SetupFunc, action func(ctx context.Context, c *cli.Command, deps Deps) error) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		deps, release, err := setup(ctx)
		if err != nil {
			return err
		}
		defer release()

		return action(ctx, c, deps)
	}
}
