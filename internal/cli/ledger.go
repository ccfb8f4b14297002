package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// LedgerOptions holds flags for the ledger command.
type LedgerOptions struct {
	*RootOptions
	StoreOptions
}

// LedgerRow is one ledger entry as printed by the ledger command.
type LedgerRow struct {
	Seq       int64  `json:"seq"`
	Kind      string `json:"kind"`
	Payload   string `json:"payload"`
	AppliedAt string `json:"applied_at"`
	ID        string `json:"id"`
}

// NewLedgerCommand creates the ledger command.
func NewLedgerCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LedgerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ledger <class-id>",
		Short: "Print a class's override ledger in seq order",
		Long: `Print every override recorded for a class (cancellations, chain shifts and
extra sessions) in the order they were applied.

Examples:
  cadence ledger 0192d7a4-... --db ./cadence.db
  cadence ledger 0192d7a4-... --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedger(opts, args[0], cmd)
		},
	}
	addStoreFlags(cmd, &opts.StoreOptions)

	return cmd
}

func runLedger(opts *LedgerOptions, classID string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	svc, closeDB, err := openService(opts.RootOptions, &opts.StoreOptions, cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	entries, err := svc.Entries(context.Background(), classID)
	if err != nil {
		return commandError("failed to read ledger", err)
	}

	rows := make([]LedgerRow, len(entries))
	for i, e := range entries {
		rows[i] = LedgerRow{Seq: e.Seq, Kind: e.Kind, Payload: e.Payload, AppliedAt: e.AppliedAt, ID: e.ID}
	}

	if opts.Format == "json" {
		return f.Success(rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(f.Writer, "Ledger is empty.")
		return nil
	}
	for _, r := range rows {
		fmt.Fprintf(f.Writer, "%4d  %-6s  %s  %s\n", r.Seq, r.Kind, r.AppliedAt, r.Payload)
		f.VerboseLog("      id %s", r.ID)
	}
	return nil
}
