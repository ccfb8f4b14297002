package schedule

import "time"

// DateLayout is the ISO calendar-date layout used for cancellation keys and output.
const DateLayout = "2006-01-02"

// Config is the recurrence configuration owned by a class record.
type Config struct {
	// Weekdays on which sessions occur. Must be non-empty.
	Weekdays WeekdaySet

	// SessionTime is applied to every occurrence.
	SessionTime TimeOfDay

	// StartDate is the calendar date of the first candidate day (inclusive).
	StartDate time.Time

	// TargetSessionCount is the number of held sessions the course must reach.
	TargetSessionCount int

	// Location interprets dates and times. Nil means UTC.
	Location *time.Location
}

// NewConfig builds a Config from a parsed pattern.
func NewConfig(p Pattern, start time.Time, count int, loc *time.Location) Config {
	return Config{
		Weekdays:           p.Weekdays,
		SessionTime:        p.SessionTime,
		StartDate:          start,
		TargetSessionCount: count,
		Location:           loc,
	}
}

// Pattern returns the weekday pattern of the configuration.
func (c Config) Pattern() Pattern {
	return Pattern{Weekdays: c.Weekdays, SessionTime: c.SessionTime}
}

// Loc returns the configured location, defaulting to UTC.
func (c Config) Loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// Validate checks that a recurrence walk exists for the configuration.
func (c Config) Validate() error {
	if c.Weekdays.Len() == 0 {
		return NewInvalidScheduleError("weekday set is empty")
	}
	if c.TargetSessionCount <= 0 {
		return NewInvalidScheduleError("target session count must be positive, got %d", c.TargetSessionCount)
	}
	if c.SessionTime.Hour < 0 || c.SessionTime.Hour > 23 || c.SessionTime.Minute < 0 || c.SessionTime.Minute > 59 {
		return NewInvalidScheduleError("session time %s is out of range", c.SessionTime)
	}
	if c.StartDate.IsZero() {
		return NewInvalidScheduleError("start date is required")
	}
	return nil
}

// Occurrence is one entry of the canonical sequence.
type Occurrence struct {
	Index int
	Date  time.Time
}

// Generate produces the canonical sequence: it walks calendar days forward
// from the start date and assigns the next index to every day whose weekday is
// in the pattern and whose ISO date is not in skip, stopping once
// TargetSessionCount indices have been assigned.
//
// skip is finite and the weekday set is non-empty, so the walk always terminates.
func Generate(cfg Config, skip map[string]bool) ([]Occurrence, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	loc := cfg.Loc()
	day := DateOf(cfg.StartDate, loc)
	out := make([]Occurrence, 0, cfg.TargetSessionCount)

	for len(out) < cfg.TargetSessionCount {
		if cfg.Weekdays.Has(day.Weekday()) && !skip[DateKey(day)] {
			out = append(out, Occurrence{
				Index: len(out) + 1,
				Date:  At(day, cfg.SessionTime),
			})
		}
		day = day.AddDate(0, 0, 1)
	}

	return out, nil
}

// DateOf truncates t to midnight of its calendar date in loc.
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// At returns the instant on day's calendar date at the given time of day.
func At(day time.Time, tod TimeOfDay) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, tod.Hour, tod.Minute, 0, 0, day.Location())
}

// DateKey formats the calendar date of t (in t's location) as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, NewInvalidScheduleError("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// DaysBetween returns the number of calendar days from a to b, comparing the
// calendar dates of both instants in loc. Times of day are ignored.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// dateTimeLayouts are the accepted inputs of ParseDateTime, most specific first.
var dateTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	DateLayout,
}

// ParseDateTime parses an RFC 3339 timestamp, or a local "YYYY-MM-DDTHH:MM",
// "YYYY-MM-DD HH:MM" or "YYYY-MM-DD" wall time interpreted in loc.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, NewInvalidScheduleError("invalid date-time %q: expected RFC 3339 or YYYY-MM-DDTHH:MM", s)
}
