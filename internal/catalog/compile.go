package catalog

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/go-playground/validator/v10"

	"github.com/roach88/cadence/internal/classes"
	"github.com/roach88/cadence/internal/schedule"
)

// ClassSpec is one compiled catalog entry.
type ClassSpec struct {
	// Key is the field label under "class".
	Key       string
	Name      string `validate:"required,max=200"`
	Pattern   string `validate:"required"`
	StartDate string `validate:"required,datetime=2006-01-02"`
	Sessions  int    `validate:"gt=0"`
	Timezone  string `validate:"omitempty,timezone"`

	// Pos is the position of the class struct in its CUE file.
	Pos token.Pos
}

// Request converts the class definition into a creation request.
func (s ClassSpec) Request() classes.CreateRequest {
	return classes.CreateRequest{
		Name:      s.Name,
		Pattern:   s.Pattern,
		StartDate: s.StartDate,
		Sessions:  s.Sessions,
		Timezone:  s.Timezone,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// fieldNames maps ClassSpec struct fields to their CUE labels for error reporting.
var fieldNames = map[string]string{
	"Name":      "name",
	"Pattern":   "pattern",
	"StartDate": "start",
	"Sessions":  "sessions",
	"Timezone":  "timezone",
}

// CompileClass parses a CUE value into a ClassSpec.
//
// The CUE value should be the class struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`class: yoga: { ... }`)
//	spec, err := CompileClass(v.LookupPath(cue.ParsePath("class.yoga")))
func CompileClass(v cue.Value) (*ClassSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ClassSpec{Pos: v.Pos()}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Key = labels[len(labels)-1].String()
	}

	var err error
	if spec.Name, err = lookupString(v, "name", true); err != nil {
		return nil, err
	}
	if spec.StartDate, err = lookupString(v, "start", true); err != nil {
		return nil, err
	}
	if spec.Timezone, err = lookupString(v, "timezone", false); err != nil {
		return nil, err
	}

	sessionsVal := v.LookupPath(cue.ParsePath("sessions"))
	if !sessionsVal.Exists() {
		return nil, &CompileError{Field: "sessions", Message: "sessions is required", Pos: v.Pos()}
	}
	n, err := sessionsVal.Int64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	spec.Sessions = int(n)

	if spec.Pattern, err = compilePattern(v); err != nil {
		return nil, err
	}

	if err := validate.Struct(spec); err != nil {
		return nil, validationError(v, err)
	}

	return spec, nil
}

// compilePattern reads either pattern, or days plus time, and returns the
// canonical pattern string.
func compilePattern(v cue.Value) (string, error) {
	patternVal := v.LookupPath(cue.ParsePath("pattern"))
	daysVal := v.LookupPath(cue.ParsePath("days"))

	var raw string
	switch {
	case patternVal.Exists() && daysVal.Exists():
		return "", &CompileError{
			Field:   "pattern",
			Message: "give either pattern or days/time, not both",
			Pos:     patternVal.Pos(),
		}

	case patternVal.Exists():
		s, err := patternVal.String()
		if err != nil {
			return "", formatCUEError(err)
		}
		raw = s

	case daysVal.Exists():
		var days []string
		if err := daysVal.Decode(&days); err != nil {
			return "", formatCUEError(err)
		}
		clock, err := lookupString(v, "time", true)
		if err != nil {
			return "", err
		}
		raw = strings.Join(days, " / ") + " " + schedule.PatternSeparator + " " + clock

	default:
		return "", &CompileError{Field: "pattern", Message: "pattern (or days and time) is required", Pos: v.Pos()}
	}

	p, err := schedule.ParsePattern(raw)
	if err != nil {
		pos := patternVal.Pos()
		if !patternVal.Exists() {
			pos = daysVal.Pos()
		}
		return "", &CompileError{Field: "pattern", Message: messageOf(err), Pos: pos}
	}
	return p.String(), nil
}

func lookupString(v cue.Value, field string, required bool) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		if required {
			return "", &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
		}
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// validationError reports the first failed validator rule at the position of
// its CUE field.
func validationError(v cue.Value, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &CompileError{Field: "class", Message: err.Error(), Pos: v.Pos()}
	}
	fe := verrs[0]
	field := fieldNames[fe.StructField()]
	pos := v.Pos()
	if fv := v.LookupPath(cue.ParsePath(field)); fv.Exists() {
		pos = fv.Pos()
	}
	return &CompileError{
		Field:   field,
		Message: fmt.Sprintf("%s fails %q", field, ruleOf(fe)),
		Pos:     pos,
	}
}

func ruleOf(fe validator.FieldError) string {
	if fe.Param() != "" {
		return fe.Tag() + "=" + fe.Param()
	}
	return fe.Tag()
}

// messageOf strips the error code prefix from schedule errors.
func messageOf(err error) string {
	var se *schedule.Error
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}

// CompileError is a catalog compile failure with its CUE source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
