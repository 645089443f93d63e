package dca

import (
	"fmt"
	"iter"
)

// Range represents a range of dates.
type Range struct{ From, To Date }

// NewRange creates a new date range. If 'from' is after 'to', they are swapped.
func NewRange(from, to Date) Range {
	if from.After(to) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days returns an iterator that yields each date within the range, inclusive.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From; !d.After(r.To); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Periods returns an iterator that yields each sequential calendar period of
// frequency f that contains at least one day within the range r.
func (r Range) Periods(f Frequency) iter.Seq[Range] {
	return func(yield func(Range) bool) {
		for current := r.From; !current.After(r.To); {
			periodRange := f.Range(current)
			if !yield(periodRange) {
				return
			}
			// Move to the day after the end of the yielded period to start the next iteration.
			current = periodRange.To.Add(1)
		}
	}
}

// Frequency returns the frequency of this range if it is exactly one calendar period.
func (r Range) Frequency() (f Frequency, ok bool) {
	for _, f := range Frequencies {
		if f.Range(r.From) == r {
			return f, true
		}
	}
	return 0, false
}

// Identifier compute a unique identifier for the Range.
// If the range is a calendar period, use a short insightful name.
func (r Range) Identifier() string {
	f, ok := r.Frequency()
	if !ok {
		return fmt.Sprintf("%s_%s", r.From, r.To)
	}

	switch f {
	case Monthly:
		return r.From.Format("2006-01")
	case Quarterly:
		return fmt.Sprintf("%d-Q%d", r.From.Year(), (r.From.Month()-1)/3+1)
	case SemiAnnual:
		return fmt.Sprintf("%d-H%d", r.From.Year(), (r.From.Month()-1)/6+1)
	default:
		return r.From.Format("2006")
	}
}

func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }
