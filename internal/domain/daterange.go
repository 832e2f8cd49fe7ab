package domain

import (
	"fmt"
	"time"
)

// DateRange is a half-open interval of calendar days [Start, End).
// Start is the first night, End is the checkout day, so two ranges where one
// ends on the day the other starts do not overlap.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange truncates both bounds to UTC midnight and validates that End
// is strictly after Start.
func NewDateRange(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: truncateDay(start), End: truncateDay(end)}
	if dr.Start.IsZero() || dr.End.IsZero() {
		return DateRange{}, fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}
	if !dr.End.After(dr.Start) {
		return DateRange{}, fmt.Errorf("%w: end date must be after start date", ErrValidation)
	}
	return dr, nil
}

// Overlaps reports whether [s1,e1) and [s2,e2) share at least one day:
// s1 < e2 and s2 < e1.
func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.Start.Before(other.End) && other.Start.Before(dr.End)
}

// Nights returns the number of nights covered by the range.
func (dr DateRange) Nights() int {
	return int(dr.End.Sub(dr.Start).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
