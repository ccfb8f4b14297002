package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/cadence/internal/classes"
	"github.com/roach88/cadence/internal/store"
)

// DatabaseEnv names the environment variable read when --db is not given.
const DatabaseEnv = "CADENCE_DB"

// StoreOptions holds the flags shared by commands that open the database.
type StoreOptions struct {
	Database string
	Now      string // RFC 3339 override of the wall clock
}

// addStoreFlags registers --db and --now on cmd.
func addStoreFlags(cmd *cobra.Command, opts *StoreOptions) {
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default $"+DatabaseEnv+")")
	cmd.Flags().StringVar(&opts.Now, "now", "", "evaluate locks at this RFC 3339 time instead of the wall clock")
}

// resolveDatabase returns the --db value, falling back to $CADENCE_DB.
func (o *StoreOptions) resolveDatabase() (string, error) {
	if o.Database != "" {
		return o.Database, nil
	}
	if db := os.Getenv(DatabaseEnv); db != "" {
		return db, nil
	}
	return "", NewExitError(ExitCommandError, "no database: pass --db or set "+DatabaseEnv)
}

// clock returns the clock selected by --now.
func (o *StoreOptions) clock() (classes.Clock, error) {
	if o.Now == "" {
		return classes.SystemClock{}, nil
	}
	now, err := time.Parse(time.RFC3339, o.Now)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("invalid --now %q", o.Now), err)
	}
	return classes.ClockFunc(func() time.Time { return now }), nil
}

// openService opens the database and builds a class service over it.
// The returned function closes the database.
func openService(root *RootOptions, opts *StoreOptions, cmd *cobra.Command) (*classes.Service, func(), error) {
	path, err := opts.resolveDatabase()
	if err != nil {
		return nil, nil, err
	}
	clock, err := opts.clock()
	if err != nil {
		return nil, nil, err
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	svc := classes.NewService(st,
		classes.WithClock(clock),
		classes.WithLogger(newLogger(root, cmd)),
	)
	return svc, func() { st.Close() }, nil
}

// newLogger writes text logs to stderr. --verbose lowers the level to Debug;
// otherwise only warnings and errors are shown.
func newLogger(root *RootOptions, cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if root.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
