package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cadence/internal/catalog"
	"github.com/roach88/cadence/internal/classes"
	"github.com/roach88/cadence/internal/schedule"
)

// NewClassCommand creates the class command group.
func NewClassCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "class",
		Short: "Create and list classes",
	}
	cmd.AddCommand(NewClassCreateCommand(rootOpts))
	cmd.AddCommand(NewClassListCommand(rootOpts))
	return cmd
}

// ClassCreateOptions holds flags for the class create command.
type ClassCreateOptions struct {
	*RootOptions
	StoreOptions
	Name     string
	Pattern  string
	Start    string
	Sessions int
	Timezone string
	Catalog  string
}

// ClassSummary describes a stored class.
type ClassSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Pattern      string `json:"pattern"`
	Start        string `json:"start"`
	Sessions     int    `json:"sessions"`
	Timezone     string `json:"timezone"`
	ProjectedEnd string `json:"projected_end"`
	Version      int64  `json:"version"`
}

func (s ClassSummary) String() string {
	return fmt.Sprintf("%s  %-24s %s  from %s  %d sessions  ends %s  (%s, v%d)",
		s.ID, s.Name, s.Pattern, s.Start, s.Sessions, s.ProjectedEnd, s.Timezone, s.Version)
}

func summarize(c classes.Class) ClassSummary {
	end, _ := c.ProjectedEnd()
	return ClassSummary{
		ID:           c.ID,
		Name:         c.Name,
		Pattern:      c.Pattern(),
		Start:        schedule.DateKey(c.Config.StartDate),
		Sessions:     c.Config.TargetSessionCount,
		Timezone:     c.Timezone,
		ProjectedEnd: schedule.DateKey(end),
		Version:      c.Version,
	}
}

// NewClassCreateCommand creates the class create command.
func NewClassCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClassCreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a class from flags or a CUE catalog",
		Long: `Create one class from flags, or every class defined in a directory of CUE
catalog files.

Exit codes:
  0 - Classes created
  2 - Invalid input or database error

Examples:
  cadence class create --db ./cadence.db --name "Evening English" \
    --pattern "T2 / T4 / T6 • 18:30" --start 2024-01-01 --sessions 24
  cadence class create --db ./cadence.db --catalog ./classes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassCreate(opts, cmd)
		},
	}

	addStoreFlags(cmd, &opts.StoreOptions)
	cmd.Flags().StringVar(&opts.Name, "name", "", "class name")
	cmd.Flags().StringVar(&opts.Pattern, "pattern", "", `weekday pattern, e.g. "T2 / T4 / T6 • 18:30"`)
	cmd.Flags().StringVar(&opts.Start, "start", "", "first candidate date, YYYY-MM-DD")
	cmd.Flags().IntVar(&opts.Sessions, "sessions", 0, "number of sessions")
	cmd.Flags().StringVar(&opts.Timezone, "tz", "", "IANA time zone (default UTC)")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "directory of CUE class definitions")
	cmd.MarkFlagsMutuallyExclusive("catalog", "name")
	cmd.MarkFlagsMutuallyExclusive("catalog", "pattern")

	return cmd
}

func runClassCreate(opts *ClassCreateOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	f := newFormatter(opts.RootOptions, cmd)

	var requests []classes.CreateRequest
	if opts.Catalog != "" {
		result, errs := catalog.LoadDir(opts.Catalog, catalog.LoadModeCollectAll)
		if len(errs) > 0 {
			msgs := make([]string, len(errs))
			for i, e := range errs {
				msgs[i] = e.Error()
			}
			_ = f.Error(catalogErrorCode(errs[0]), "catalog has errors", msgs)
			return NewExitError(ExitCommandError, fmt.Sprintf("catalog has %d error(s):\n  %s",
				len(errs), strings.Join(msgs, "\n  ")))
		}
		for _, spec := range result.Classes {
			requests = append(requests, spec.Request())
		}
	} else {
		requests = append(requests, classes.CreateRequest{
			Name:      opts.Name,
			Pattern:   opts.Pattern,
			StartDate: opts.Start,
			Sessions:  opts.Sessions,
			Timezone:  opts.Timezone,
		})
	}

	svc, closeDB, err := openService(opts.RootOptions, &opts.StoreOptions, cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	created := make([]ClassSummary, 0, len(requests))
	for _, req := range requests {
		c, err := svc.CreateClass(ctx, req)
		if err != nil {
			return commandError(fmt.Sprintf("failed to create class %q", req.Name), err)
		}
		created = append(created, summarize(c))
		f.VerboseLog("created %s (%s)", c.ID, c.Name)
	}

	if opts.Format == "json" {
		return f.Success(created)
	}
	for _, s := range created {
		fmt.Fprintln(f.Writer, s)
	}
	return nil
}

func catalogErrorCode(err error) string {
	var le *catalog.LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return catalog.ErrCodeGeneric
}

// ClassListOptions holds flags for the class list command.
type ClassListOptions struct {
	*RootOptions
	StoreOptions
}

// NewClassListCommand creates the class list command.
func NewClassListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClassListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List classes, oldest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassList(opts, cmd)
		},
	}
	addStoreFlags(cmd, &opts.StoreOptions)

	return cmd
}

func runClassList(opts *ClassListOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	svc, closeDB, err := openService(opts.RootOptions, &opts.StoreOptions, cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	list, err := svc.List(context.Background())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list classes", err)
	}

	summaries := make([]ClassSummary, len(list))
	for i, c := range list {
		summaries[i] = summarize(c)
	}

	if opts.Format == "json" {
		return f.Success(summaries)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(f.Writer, "No classes found.")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintln(f.Writer, s)
	}
	return nil
}
