package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/cadence/internal/classes"
	"github.com/roach88/cadence/internal/schedule"
)

// MutateOptions holds flags shared by the shift, cancel and extra commands.
type MutateOptions struct {
	*RootOptions
	StoreOptions
	Note string // extra only
}

const mutateExitCodes = `
Exit codes:
  0 - Change recorded
  1 - Change rejected (locked session, invalid shift, unknown session)
  2 - Command error (invalid arguments, database error)`

// NewShiftCommand creates the shift command.
func NewShiftCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MutateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "shift <class-id> <index> <date-time>",
		Short: "Move a session and every later session by the same number of days",
		Long: `Move session <index> to the calendar day of <date-time> and every later
regular session by the same number of days. The session time of the class is
kept.
` + mutateExitCodes + `

Examples:
  cadence shift 0192d7a4-... 3 2024-01-10T18:30 --db ./cadence.db`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("invalid session index %q", args[1]), err)
			}
			return runMutation(opts.RootOptions, &opts.StoreOptions, cmd, args[0],
				func(ctx context.Context, svc *classes.Service, loc *time.Location) (classes.Result, error) {
					to, err := schedule.ParseDateTime(args[2], loc)
					if err != nil {
						return classes.Result{}, commandError("invalid date-time", err)
					}
					return svc.UpdateScheduleChain(ctx, args[0], index, to)
				})
		},
	}
	addStoreFlags(cmd, &opts.StoreOptions)

	return cmd
}

// NewCancelCommand creates the cancel command.
func NewCancelCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MutateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cancel <class-id> <date>",
		Short: "Cancel the session on a date",
		Long: `Cancel the session held on <date> (YYYY-MM-DD). A cancelled regular session
is replaced by one more occurrence at the end of the course; a cancelled extra
session is simply removed.
` + mutateExitCodes + `

Examples:
  cadence cancel 0192d7a4-... 2024-01-05 --db ./cadence.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(opts.RootOptions, &opts.StoreOptions, cmd, args[0],
				func(ctx context.Context, svc *classes.Service, _ *time.Location) (classes.Result, error) {
					return svc.CancelClassSession(ctx, args[0], args[1])
				})
		},
	}
	addStoreFlags(cmd, &opts.StoreOptions)

	return cmd
}

// NewExtraCommand creates the extra command.
func NewExtraCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MutateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "extra <class-id> <date-time>",
		Short: "Add a one-off session",
		Long: `Add a session at a fixed date and time. Extra sessions do not count toward
the class's session total and are never moved by shifts.
` + mutateExitCodes + `

Examples:
  cadence extra 0192d7a4-... "2024-01-06 10:00" --note "make-up" --db ./cadence.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(opts.RootOptions, &opts.StoreOptions, cmd, args[0],
				func(ctx context.Context, svc *classes.Service, loc *time.Location) (classes.Result, error) {
					at, err := schedule.ParseDateTime(args[1], loc)
					if err != nil {
						return classes.Result{}, commandError("invalid date-time", err)
					}
					return svc.AddExtraSession(ctx, args[0], at, opts.Note)
				})
		},
	}
	addStoreFlags(cmd, &opts.StoreOptions)
	cmd.Flags().StringVar(&opts.Note, "note", "", "note shown with the session")

	return cmd
}

type mutation func(ctx context.Context, svc *classes.Service, loc *time.Location) (classes.Result, error)

// runMutation opens the service, resolves the class location used to read
// date arguments, and reports the mutator result.
func runMutation(root *RootOptions, storeOpts *StoreOptions, cmd *cobra.Command, classID string, fn mutation) error {
	ctx := context.Background()
	f := newFormatter(root, cmd)

	svc, closeDB, err := openService(root, storeOpts, cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	// An unknown class still goes through the mutator, which reports NOT_FOUND.
	loc := time.UTC
	class, err := svc.Load(ctx, classID)
	switch {
	case err == nil:
		loc = class.Config.Loc()
	case !schedule.IsNotFound(err):
		return commandError("failed to load class", err)
	}

	res, err := fn(ctx, svc, loc)
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return err
		}
		return WrapExitError(ExitCommandError, "failed to record change", err)
	}
	return f.Mutation(res)
}
