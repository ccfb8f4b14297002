package schedule

import "time"

// ProjectEndDate returns the date of the last session of the canonical
// sequence with no cancellations. This is the planned end date shown when a
// class is created; it uses the same walk as GenerateClassSessions, so the two
// agree for a class with an empty ledger.
func ProjectEndDate(cfg Config) (time.Time, error) {
	occ, err := Generate(cfg, nil)
	if err != nil {
		return time.Time{}, err
	}
	return occ[len(occ)-1].Date, nil
}

// RecalculateSchedule projects the ISO end date for a class-form pattern such
// as "T2 / T4 / T6 • 18:30", a start date and a session count. Dates are
// interpreted in start's location.
func RecalculateSchedule(pattern string, start time.Time, count int) (string, error) {
	p, err := ParsePattern(pattern)
	if err != nil {
		return "", err
	}
	end, err := ProjectEndDate(NewConfig(p, start, count, start.Location()))
	if err != nil {
		return "", err
	}
	return DateKey(end), nil
}
