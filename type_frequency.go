package dca

import (
	"fmt"
	"strings"
)

// Frequency is the contribution frequency of a plan.
//
// Each frequency is also a calendar period: contributions land on the first
// trading day of a month, quarter, half-year or year.
type Frequency int

const (
	Monthly Frequency = iota + 1
	Quarterly
	SemiAnnual
	Annual
)

// Frequencies lists every valid frequency.
var Frequencies = []Frequency{Monthly, Quarterly, SemiAnnual, Annual}

func (f Frequency) String() string {
	switch f {
	case Monthly:
		return "monthly"
	case Quarterly:
		return "quarterly"
	case SemiAnnual:
		return "semiannual"
	case Annual:
		return "annual"
	default:
		return fmt.Sprintf("Frequency(%d)", int(f))
	}
}

// Name returns the singular noun for the period (e.g., "month", "quarter").
func (f Frequency) Name() string {
	switch f {
	case Monthly:
		return "month"
	case Quarterly:
		return "quarter"
	case SemiAnnual:
		return "half-year"
	case Annual:
		return "year"
	default:
		return "period"
	}
}

// Months returns the length of the period in months, or 0 for an invalid frequency.
func (f Frequency) Months() int {
	switch f {
	case Monthly:
		return 1
	case Quarterly:
		return 3
	case SemiAnnual:
		return 6
	case Annual:
		return 12
	default:
		return 0
	}
}

// Valid reports whether f is one of the enumerated frequencies.
func (f Frequency) Valid() bool { return f.Months() > 0 }

// Range returns the calendar period of frequency f containing the date d.
func (f Frequency) Range(d Date) Range {
	return Range{From: d.StartOf(f), To: d.EndOf(f)}
}

// ParseFrequency parses both the long names and the short codes "M", "Q", "6M" and "Y".
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "month", "monthly":
		return Monthly, nil
	case "q", "quarter", "quarterly":
		return Quarterly, nil
	case "6m", "semiannual", "semi-annual", "half-year", "halfyearly":
		return SemiAnnual, nil
	case "y", "year", "yearly", "annual", "annually":
		return Annual, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFrequency, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Frequency) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFrequency, int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Frequency) UnmarshalText(text []byte) error {
	v, err := ParseFrequency(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
