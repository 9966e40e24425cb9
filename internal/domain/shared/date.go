package shared

import "time"

// LocalDate truncates t to midnight of its calendar date in loc.
// Reports and due dates are always computed on local calendar dates, never UTC dates.
func LocalDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// DateKey formats a calendar date as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// SameDate reports whether a and b fall on the same calendar date in loc.
func SameDate(a, b time.Time, loc *time.Location) bool {
	return LocalDate(a, loc).Equal(LocalDate(b, loc))
}

// ParseLocalDate parses a YYYY-MM-DD string as midnight in loc.
func ParseLocalDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, NewDomainError("INVALID_DATE", "Dates must be formatted as YYYY-MM-DD")
	}
	return t, nil
}

// LocalDateRange turns inclusive YYYY-MM-DD bounds into a half-open [from, to)
// instant range in loc. Empty bounds are returned as nil.
func LocalDateRange(from, to string, loc *time.Location) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if from != "" {
		t, err := ParseLocalDate(from, loc)
		if err != nil {
			return nil, nil, err
		}
		start = &t
	}
	if to != "" {
		t, err := ParseLocalDate(to, loc)
		if err != nil {
			return nil, nil, err
		}
		t = t.AddDate(0, 0, 1)
		end = &t
	}
	if start != nil && end != nil && !start.Before(*end) {
		return nil, nil, NewDomainError("INVALID_DATE_RANGE", "The start date must not be after the end date")
	}
	return start, end, nil
}
