package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cadence/internal/classes"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	StoreOptions
	ClassID string // optional - specific class only
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Classes          []classes.Report `json:"classes"`
	TotalClasses     int              `json:"total_classes"`
	AllDeterministic bool             `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay class ledgers and verify determinism",
		Long: `Replay every class ledger to verify that materialization is deterministic and
that the schedule invariants hold.

Each class is materialized twice from its stored ledger and the canonical JSON
of both runs is compared. The regular session count, index density and date
order are checked as well.

Exit codes:
  0 - All classes replay cleanly
  1 - Verification failed (problems detected)
  2 - Command error (database not found, unknown class, etc.)

Examples:
  cadence replay --db ./cadence.db
  cadence replay --db ./cadence.db --class 0192d7a4-...
  cadence replay --db ./cadence.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	addStoreFlags(cmd, &opts.StoreOptions)
	cmd.Flags().StringVar(&opts.ClassID, "class", "", "replay specific class only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	f := newFormatter(opts.RootOptions, cmd)

	clock, err := opts.clock()
	if err != nil {
		return err
	}
	svc, closeDB, err := openService(opts.RootOptions, &opts.StoreOptions, cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	// Get class IDs to process
	var classIDs []string
	if opts.ClassID != "" {
		classIDs = []string{opts.ClassID}
	} else {
		list, err := svc.List(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list classes", err)
		}
		for _, c := range list {
			classIDs = append(classIDs, c.ID)
		}
	}

	result := ReplayResult{
		Classes:          make([]classes.Report, 0, len(classIDs)),
		TotalClasses:     len(classIDs),
		AllDeterministic: true,
	}

	now := clock.Now()
	for _, id := range classIDs {
		report, err := svc.Verify(ctx, id, now)
		if err != nil {
			return commandError(fmt.Sprintf("failed to replay class %s", id), err)
		}
		result.Classes = append(result.Classes, report)
		if !report.OK() {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		outputReplayText(f, result)
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "replay verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as human-readable text.
func outputReplayText(f *OutputFormatter, result ReplayResult) {
	w := f.Writer

	if result.TotalClasses == 0 {
		fmt.Fprintln(w, "No classes found in database.")
		return
	}

	for _, r := range result.Classes {
		status := "✓"
		if !r.OK() {
			status = "✗"
		}
		fmt.Fprintf(w, "%s %s: %d entries, %d sessions\n", status, r.ClassID, r.Entries, r.Sessions)
		for _, p := range r.Problems {
			fmt.Fprintf(w, "    - %s\n", p)
		}
	}

	fmt.Fprintln(w)
	if result.AllDeterministic {
		fmt.Fprintf(w, "All %d class(es) replay deterministically.\n", result.TotalClasses)
	} else {
		fmt.Fprintln(w, "Replay verification FAILED.")
	}
}
