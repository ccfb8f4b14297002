package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/cadence/internal/classes"
	"github.com/roach88/cadence/internal/schedule"
)

// SessionsOptions holds flags for the sessions command.
type SessionsOptions struct {
	*RootOptions
	StoreOptions
	Month string // YYYY-MM calendar window
}

// NewSessionsCommand creates the sessions command.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sessions <class-id>",
		Short: "Show a class's materialized sessions",
		Long: `Materialize a class's sessions from its pattern and ledger.

With --month the output is limited to the calendar view of that month: from
seven days before the first of the month to seven days after its end.

Examples:
  cadence sessions 0192d7a4-... --db ./cadence.db
  cadence sessions 0192d7a4-... --month 2024-02
  cadence sessions 0192d7a4-... --now 2024-01-09T00:00:00Z --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions(opts, args[0], cmd)
		},
	}

	addStoreFlags(cmd, &opts.StoreOptions)
	cmd.Flags().StringVar(&opts.Month, "month", "", "limit output to a calendar month, YYYY-MM")

	return cmd
}

func runSessions(opts *SessionsOptions, classID string, cmd *cobra.Command) error {
	ctx := context.Background()
	f := newFormatter(opts.RootOptions, cmd)

	svc, closeDB, err := openService(opts.RootOptions, &opts.StoreOptions, cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	class, err := svc.Load(ctx, classID)
	if err != nil {
		return commandError("failed to load class", err)
	}
	sessions, err := svc.Sessions(ctx, classID)
	if err != nil {
		return commandError("failed to materialize sessions", err)
	}

	if opts.Month != "" {
		month, err := time.ParseInLocation("2006-01", opts.Month, class.Config.Loc())
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("invalid --month %q: expected YYYY-MM", opts.Month), err)
		}
		from, to := schedule.MonthWindow(month.Year(), month.Month(), class.Config.Loc())
		sessions = schedule.Window(sessions, from, to)
	}

	if opts.Format == "json" {
		return f.Success(classes.SessionsValue(sessions))
	}

	printSessions(f, class, sessions)
	return nil
}

func printSessions(f *OutputFormatter, class classes.Class, sessions []schedule.Session) {
	fmt.Fprintf(f.Writer, "%s (%s)\n", class.Name, class.Pattern())
	if len(sessions) == 0 {
		fmt.Fprintln(f.Writer, "No sessions in range.")
		return
	}
	for _, s := range sessions {
		flags := ""
		if s.IsLocked {
			flags += " [locked]"
		}
		if s.IsExtra {
			flags += " [extra]"
			if s.Note != "" {
				flags += " " + s.Note
			}
		}
		fmt.Fprintf(f.Writer, "%3d  %s%s\n", s.Index, s.Date.Format("Mon 2006-01-02 15:04"), flags)
	}
}
