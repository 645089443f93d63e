package dca

import (
	"errors"
	"testing"
)

func TestAllocation_Validate(t *testing.T) {
	testCases := []struct {
		name       string
		allocation Allocation
		wantErr    bool
	}{
		{"single", Allocation{{"SPY", 1}}, false},
		{"split", Allocation{{"SPY", 0.6}, {"BND", 0.4}}, false},
		{"within tolerance", Allocation{{"SPY", 0.6}, {"BND", 0.4009}}, false},
		{"thirds", EqualWeight("A", "B", "C"), false},
		{"zero weight", Allocation{{"SPY", 1}, {"BND", 0}}, false},
		{"over", Allocation{{"SPY", 0.6}, {"BND", 0.402}}, true},
		{"under", Allocation{{"SPY", 0.5}, {"BND", 0.4}}, true},
		{"negative", Allocation{{"SPY", 1.2}, {"BND", -0.2}}, true},
		{"duplicate", Allocation{{"SPY", 0.5}, {"SPY", 0.5}}, true},
		{"empty ticker", Allocation{{"", 1}}, true},
		{"empty", nil, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.allocation.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidAllocation) {
				t.Errorf("Validate() error = %v, want ErrInvalidAllocation", err)
			}
		})
	}
}

func TestParseAllocation(t *testing.T) {
	a, err := ParseAllocation("spy=0.6, BND=0.4")
	if err != nil {
		t.Fatalf("ParseAllocation() error = %v", err)
	}
	want := Allocation{{"SPY", 0.6}, {"BND", 0.4}}
	if len(a) != len(want) || a[0] != want[0] || a[1] != want[1] {
		t.Errorf("ParseAllocation() = %v, want %v", a, want)
	}
	if got := a.String(); got != "SPY=0.6,BND=0.4" {
		t.Errorf("String() = %q, want %q", got, "SPY=0.6,BND=0.4")
	}

	for _, input := range []string{"SPY", "SPY=x", "SPY=0.5", ""} {
		if _, err := ParseAllocation(input); !errors.Is(err, ErrInvalidAllocation) {
			t.Errorf("ParseAllocation(%q) error = %v, want ErrInvalidAllocation", input, err)
		}
	}
}

func TestPlan_Validate(t *testing.T) {
	valid := flatPlan(Asset{"A", 1})
	testCases := []struct {
		name string
		edit func(*Plan)
		want error
	}{
		{"valid", func(*Plan) {}, nil},
		{"negative initial", func(p *Plan) { p.Initial = -1 }, ErrInvalidPlan},
		{"negative periodic", func(p *Plan) { p.Periodic = -1 }, ErrInvalidPlan},
		{"nothing", func(p *Plan) { p.Initial, p.Periodic = 0, 0 }, ErrInvalidPlan},
		{"periodic only", func(p *Plan) { p.Initial = 0 }, nil},
		{"no start", func(p *Plan) { p.Start = Date{} }, ErrInvalidPlan},
		{"zero years", func(p *Plan) { p.Years = 0 }, ErrInvalidPlan},
		{"frequency", func(p *Plan) { p.Frequency = 0 }, ErrUnknownFrequency},
		{"allocation", func(p *Plan) { p.Allocation = Allocation{{"A", 0.5}} }, ErrInvalidAllocation},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.edit(&p)
			err := p.Validate()
			if tc.want == nil && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("Validate() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestPlan_Money(t *testing.T) {
	p := flatPlan()
	if got := p.Money(1234.5); !got.Equal(USD(1234.5)) {
		t.Errorf("Money() = %v, want %v", got, USD(1234.5))
	}
	p.Currency = "EUR"
	if got := p.Money(1).Currency(); got != "EUR" {
		t.Errorf("Money().Currency() = %q, want EUR", got)
	}
}
