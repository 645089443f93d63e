package dca

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// growing returns a price growing linearly by rate per day from 10.
func growing(rate float64) func(Date) float64 {
	origin := NewDate(2019, 12, 31)
	return func(d Date) float64 { return 10 + rate*float64(origin.DaysTo(d)) }
}

func searchMarket() Memory {
	from, to := NewDate(2019, 12, 31), NewDate(2021, 1, 1)
	return Memory{
		"SLOW": NewPriceSeries(weekdays(from, to, growing(0.001)), 0),
		"FAST": NewPriceSeries(weekdays(from, to, growing(0.05)), 0),
		"MID":  NewPriceSeries(weekdays(from, to, growing(0.01)), 0),
		"FLAT": NewPriceSeries(weekdays(from, to, flat(10)), 0),
		"DOWN": NewPriceSeries(weekdays(from, to, growing(-0.01)), 0),
		"OLD":  NewPriceSeries(weekdays(NewDate(2010, 1, 1), NewDate(2011, 1, 1), flat(10)), 0),
	}
}

var searchCatalog = []Candidate{
	{"slow", "SLOW"},
	{"missing", "GONE"},
	{"fast", "FAST"},
	{"flat", "FLAT"},
	{"too old", "OLD"},
	{"mid", "MID"},
	{"down", "DOWN"},
}

func TestSearch(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	res, err := Search(context.Background(), searchMarket(), flatPlan(), SearchOptions{TopN: 2, Catalog: searchCatalog, Log: &log})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	var ranked []string
	for _, s := range res.Ranking {
		ranked = append(ranked, s.Ticker)
	}
	if got, want := strings.Join(ranked, ","), "FAST,MID,SLOW,FLAT,DOWN"; got != want {
		t.Errorf("ranking = %s, want %s", got, want)
	}

	var skipped []string
	for _, s := range res.Skipped {
		skipped = append(skipped, s.Ticker)
		if s.Err == nil {
			t.Errorf("skipped %s without error", s.Ticker)
		}
	}
	if got, want := strings.Join(skipped, ","), "GONE,OLD"; got != want {
		t.Errorf("skipped = %s, want %s", got, want)
	}
	if !errors.Is(res.Skipped[1].Err, ErrNoContributions) {
		t.Errorf("OLD skipped with %v, want ErrNoContributions", res.Skipped[1].Err)
	}
	if !strings.Contains(buf.String(), `"ticker":"GONE"`) {
		t.Errorf("skipped candidate not logged: %s", buf.String())
	}

	if got := res.Composition.String(); got != "FAST=0.5,MID=0.5" {
		t.Errorf("composition = %s, want FAST=0.5,MID=0.5", got)
	}
	if res.Result == nil || len(res.Result.Assets) != 2 {
		t.Fatalf("optimized result = %+v, want two assets", res.Result)
	}
	if got := res.Result.Terminal().Invested; got != 2200 {
		t.Errorf("optimized invested = %v, want 2200", got)
	}
}

func TestSearch_Ties(t *testing.T) {
	md := Memory{"X": flatSeries(), "Y": flatSeries(), "Z": flatSeries()}
	catalog := []Candidate{{"z", "Z"}, {"x", "X"}, {"y", "Y"}}
	res, err := Search(context.Background(), md, flatPlan(), SearchOptions{TopN: 2, Catalog: catalog})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got := res.Composition.String(); got != "Z=0.5,X=0.5" {
		t.Errorf("composition = %s, want the catalog order Z=0.5,X=0.5", got)
	}
}

func TestSearch_NoCandidates(t *testing.T) {
	_, err := Search(context.Background(), Memory{}, flatPlan(), SearchOptions{})
	if !errors.Is(err, ErrNoCandidates) {
		t.Errorf("Search() error = %v, want ErrNoCandidates", err)
	}
	bad := flatPlan()
	bad.Years = 0
	if _, err := Search(context.Background(), searchMarket(), bad, SearchOptions{}); !errors.Is(err, ErrInvalidPlan) {
		t.Errorf("Search(invalid plan) error = %v, want ErrInvalidPlan", err)
	}
}

func TestDefaultCatalog(t *testing.T) {
	if len(DefaultCatalog) != 14 {
		t.Errorf("len(DefaultCatalog) = %d, want 14", len(DefaultCatalog))
	}
	seen := make(map[string]bool)
	for _, c := range DefaultCatalog {
		if seen[c.Ticker] {
			t.Errorf("duplicate ticker %s", c.Ticker)
		}
		seen[c.Ticker] = true
	}
}
