package schedule

import (
	"math/bits"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// WeekdaySet is a set of weekdays stored as a bitmask indexed by time.Weekday.
type WeekdaySet uint8

// weekdayTokens maps time.Weekday to its pattern token (Mon=T2 ... Sat=T7, Sun=CN).
var weekdayTokens = [7]string{
	time.Sunday:    "CN",
	time.Monday:    "T2",
	time.Tuesday:   "T3",
	time.Wednesday: "T4",
	time.Thursday:  "T5",
	time.Friday:    "T6",
	time.Saturday:  "T7",
}

// weekOrder is the display order of a pattern: Monday first, Sunday last.
var weekOrder = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// PatternSeparator separates the weekday list from the session time.
const PatternSeparator = "•"

// NewWeekdaySet builds a set from the given days.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.Add(d)
	}
	return s
}

// Add returns a copy of the set with d included.
func (s WeekdaySet) Add(d time.Weekday) WeekdaySet {
	return s | 1<<uint(d)
}

// Has reports whether d is in the set.
func (s WeekdaySet) Has(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

// Len returns the number of days in the set.
func (s WeekdaySet) Len() int {
	return bits.OnesCount8(uint8(s))
}

// Days returns the members in Monday-first order.
func (s WeekdaySet) Days() []time.Weekday {
	days := make([]time.Weekday, 0, s.Len())
	for _, d := range weekOrder {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

// String renders the set as slash-joined tokens, e.g. "T2 / T4 / T6".
func (s WeekdaySet) String() string {
	days := s.Days()
	tokens := make([]string, len(days))
	for i, d := range days {
		tokens[i] = weekdayTokens[d]
	}
	return strings.Join(tokens, " / ")
}

// TimeOfDay is an hour:minute wall-clock time.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// String renders the time as "HH:MM".
func (t TimeOfDay) String() string {
	return pad2(t.Hour) + ":" + pad2(t.Minute)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// ParseTimeOfDay parses "HH:MM" (24-hour clock).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return TimeOfDay{}, NewInvalidScheduleError("session time %q must be HH:MM", s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, NewInvalidScheduleError("session time %q has an invalid hour", s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, NewInvalidScheduleError("session time %q has an invalid minute", s)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// ParseWeekdays parses a slash-joined token list such as "T2 / T4 / T6".
// Tokens are case-insensitive and duplicates collapse. An empty result is an
// INVALID_SCHEDULE error.
func ParseWeekdays(s string) (WeekdaySet, error) {
	var set WeekdaySet
	for _, raw := range strings.Split(s, "/") {
		token := strings.ToUpper(strings.TrimSpace(raw))
		if token == "" {
			continue
		}
		d, ok := lookupToken(token)
		if !ok {
			return 0, NewInvalidScheduleError("unknown weekday token %q", token)
		}
		set = set.Add(d)
	}
	if set.Len() == 0 {
		return 0, NewInvalidScheduleError("weekday pattern %q is empty", s)
	}
	return set, nil
}

func lookupToken(token string) (time.Weekday, bool) {
	for d, t := range weekdayTokens {
		if t == token {
			return time.Weekday(d), true
		}
	}
	return 0, false
}

// Pattern is the weekday list and session time entered on the class form.
type Pattern struct {
	Weekdays    WeekdaySet
	SessionTime TimeOfDay
}

// ParsePattern parses the class-form encoding "T2 / T4 / T6 • 18:30".
// The input is NFC-normalized first so composed and decomposed forms of the
// same text parse identically.
func ParsePattern(s string) (Pattern, error) {
	normalized := norm.NFC.String(strings.TrimSpace(s))
	days, clock, ok := strings.Cut(normalized, PatternSeparator)
	if !ok {
		return Pattern{}, NewInvalidScheduleError("pattern %q is missing the %q session time", s, PatternSeparator)
	}
	weekdays, err := ParseWeekdays(days)
	if err != nil {
		return Pattern{}, err
	}
	tod, err := ParseTimeOfDay(clock)
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{Weekdays: weekdays, SessionTime: tod}, nil
}

// String renders the pattern in its canonical form.
func (p Pattern) String() string {
	return p.Weekdays.String() + " " + PatternSeparator + " " + p.SessionTime.String()
}
