package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/cadence/internal/schedule"
)

// ProjectOptions holds flags for the project command.
type ProjectOptions struct {
	*RootOptions
	Pattern  string
	Start    string
	Sessions int
	Timezone string
}

// Projection is the output of the project command.
type Projection struct {
	Pattern  string `json:"pattern"`
	Start    string `json:"start"`
	Sessions int    `json:"sessions"`
	EndDate  string `json:"end_date"`
}

func (p Projection) String() string {
	return fmt.Sprintf("%s from %s, %d sessions: ends %s", p.Pattern, p.Start, p.Sessions, p.EndDate)
}

// NewProjectCommand creates the project command.
func NewProjectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProjectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project the end date of a planned class",
		Long: `Compute the date of the last session for a weekday pattern, a start date and
a session count, without creating anything.

Examples:
  cadence project --pattern "T2 / T4 / T6 • 18:30" --start 2024-01-01 --sessions 6
  cadence project --pattern "CN • 09:00" --start 2024-03-03 --sessions 10 --tz Asia/Ho_Chi_Minh`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProject(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Pattern, "pattern", "", `weekday pattern, e.g. "T2 / T4 / T6 • 18:30" (required)`)
	cmd.Flags().StringVar(&opts.Start, "start", "", "first candidate date, YYYY-MM-DD (required)")
	cmd.Flags().IntVar(&opts.Sessions, "sessions", 0, "number of sessions (required)")
	cmd.Flags().StringVar(&opts.Timezone, "tz", "UTC", "IANA time zone of the class")
	_ = cmd.MarkFlagRequired("pattern")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("sessions")

	return cmd
}

func runProject(opts *ProjectOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	loc, err := time.LoadLocation(opts.Timezone)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("unknown time zone %q", opts.Timezone), err)
	}
	start, err := schedule.ParseDate(opts.Start, loc)
	if err != nil {
		return commandError("invalid start date", err)
	}

	end, err := schedule.RecalculateSchedule(opts.Pattern, start, opts.Sessions)
	if err != nil {
		_ = f.Error(string(schedule.CodeOf(err)), err.Error(), nil)
		return WrapExitError(ExitCommandError, "projection failed", err)
	}

	pattern, _ := schedule.ParsePattern(opts.Pattern)
	return f.Success(Projection{
		Pattern:  pattern.String(),
		Start:    schedule.DateKey(start),
		Sessions: opts.Sessions,
		EndDate:  end,
	})
}
