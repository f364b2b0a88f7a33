package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabapcia/safewatch/internal/safetx"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/urfave/cli/v3"
)

// ErrMissingTxHash is returned when a command needs a safeTxHash argument.
var ErrMissingTxHash = errors.New("missing safeTxHash argument")

// listCommand returns a CLI command that prints the transactions of the Safe.
//
// Usage example:
//
//	safewatch list --all
func listCommand(setup SetupFunc) *cli.Command {
	return &cli.Command{
		Name:        "list",
		Description: "Lists the transactions of the Safe, newest first.",
		Usage:       "Prints the first page of transactions, or the full history with --all.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Page through the complete transaction history",
			},
		},
		Action: withDeps(setup, func(ctx context.Context, c *cli.Command, deps Deps) error {
			var txs []safetx.TxSummary
			if c.Bool("all") {
				txs = deps.Index.FetchAll(ctx)
			} else {
				txs = deps.Index.FetchLatest(ctx)
			}

			renderSummaries(c.Root().Writer, txs)
			return nil
		}),
	}
}

// showCommand returns a CLI command that prints one normalized transaction.
//
// Usage example:
//
//	safewatch show 0xabc...
func showCommand(setup SetupFunc) *cli.Command {
	return &cli.Command{
		Name:        "show",
		Description: "Shows the normalized detail of one transaction.",
		Usage:       "Fetches a transaction by its safeTxHash.",
		ArgsUsage:   "<safeTxHash>",
		Action: func(ctx context.Context, c *cli.Command) error {
			hash := c.Args().First()
			if hash == "" {
				return ErrMissingTxHash
			}

			return withDeps(setup, func(ctx context.Context, c *cli.Command, deps Deps) error {
				detail, err := deps.Index.FetchDetailed(ctx, hash)
				if err != nil {
					return err
				}

				renderDetail(c.Root().Writer, detail)
				return nil
			})(ctx, c)
		},
	}
}

// notifyCommand returns a CLI command that sends one event for a transaction
// through every configured notifier.
//
// Usage example:
//
//	safewatch notify --type executed 0xabc...
func notifyCommand(setup SetupFunc) *cli.Command {
	return &cli.Command{
		Name:        "notify",
		Description: "Sends a lifecycle notification for one transaction.",
		Usage:       "Fetches a transaction and notifies it with the given event type.",
		ArgsUsage:   "<safeTxHash>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "type",
				Usage:    "Event type (" + eventTypeNames() + ")",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			hash := c.Args().First()
			if hash == "" {
				return ErrMissingTxHash
			}

			eventType, err := safetx.ParseEventType(c.String("type"))
			if err != nil {
				return err
			}

			return withDeps(setup, func(ctx context.Context, _ *cli.Command, deps Deps) error {
				return deps.Watcher.Notify(ctx, eventType, hash)
			})(ctx, c)
		},
	}
}

func eventTypeNames() string {
	names := make([]string, len(safetx.EventTypes))
	for i, t := range safetx.EventTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func renderSummaries(w io.Writer, txs []safetx.TxSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Nonce", "SafeTxHash", "Signatures", "Executed"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignCenter},
	})

	for _, tx := range txs {
		t.AppendRow(table.Row{
			tx.Nonce,
			tx.SafeTxHash,
			fmt.Sprintf("%d/%d", tx.Confirmations, tx.ConfirmationsRequired),
			yesNo(tx.IsExecuted),
		})
	}

	t.AppendFooter(table.Row{"", "", "Total", len(txs)})
	t.Render()
}

func renderDetail(w io.Writer, tx safetx.TxDetail[string]) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendRows([]table.Row{
		{"SafeTxHash", tx.SafeTxHash},
		{"Nonce", tx.Nonce},
		{"To", tx.To},
		{"Operation", tx.Operation},
		{"Proposer", tx.Proposer},
		{"Signatures", fmt.Sprintf("%d/%d", tx.Signed(), tx.ConfirmationsRequired)},
		{"Signed by", strings.Join(tx.Confirmations, "\n")},
		{"Executed", yesNo(tx.IsExecuted)},
	})
	t.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
