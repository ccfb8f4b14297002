package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cadence/internal/catalog"
)

// ValidationError is one problem found in a catalog.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool              `json:"valid"`
	Classes []string          `json:"classes"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <catalog-dir>",
		Short: "Validate a CUE class catalog without creating classes",
		Long: `Validate the CUE class definitions in a directory.

Every class is compiled and checked (pattern, start date, session count,
time zone, duplicate names) and all problems are reported at once.

Exit codes:
  0 - Catalog is valid
  1 - Catalog has errors
  2 - Command error (directory not found, no CUE files)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	loadResult, loadErrors := catalog.LoadDir(dir, catalog.LoadModeCollectAll)

	// Directory not found, no files, CUE build failure
	if loadResult == nil && len(loadErrors) > 0 {
		code := catalogErrorCode(loadErrors[0])
		_ = f.Error(code, loadErrors[0].Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load catalog", loadErrors[0])
	}

	f.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, dir)

	result := ValidationResult{Valid: len(loadErrors) == 0, Classes: []string{}}
	for _, spec := range loadResult.Classes {
		result.Classes = append(result.Classes, spec.Key)
	}
	for _, err := range loadErrors {
		result.Errors = append(result.Errors, toValidationError(err))
	}

	if result.Valid {
		if opts.Format == "json" {
			return f.Success(result)
		}
		fmt.Fprintf(f.Writer, "✓ Catalog valid: %d class(es)\n", len(result.Classes))
		return nil
	}

	if opts.Format == "json" {
		if err := f.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    result.Errors[0].Code,
				Message: fmt.Sprintf("%d validation error(s)", len(result.Errors)),
			},
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(f.Writer, "✗ %d validation error(s):\n", len(result.Errors))
		for _, e := range result.Errors {
			if e.Line > 0 {
				fmt.Fprintf(f.Writer, "  %s:%d: [%s] %s\n", e.File, e.Line, e.Code, e.Message)
			} else {
				fmt.Fprintf(f.Writer, "  [%s] %s\n", e.Code, e.Message)
			}
		}
	}
	return NewExitError(ExitFailure, "catalog has errors")
}

func toValidationError(err error) ValidationError {
	var le *catalog.LoadError
	if !errors.As(err, &le) {
		return ValidationError{Code: catalog.ErrCodeGeneric, Message: err.Error()}
	}
	v := ValidationError{Code: le.Code, Message: le.Message}
	if le.Pos.IsValid() {
		v.File = le.Pos.Filename()
		v.Line = le.Pos.Line()
	}
	return v
}
