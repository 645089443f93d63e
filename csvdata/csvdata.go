// Package csvdata reads price histories from a directory of CSV files.
//
// Each ticker has a <TICKER>.csv file with a header line naming at least a
// Date and a Close column, as exported by Yahoo Finance. Other columns are
// ignored. An optional fees.csv file with Ticker and Fee columns gives the
// expense ratio of each ticker.
package csvdata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/etnz/dca"
	"github.com/shopspring/decimal"
)

// FeesFile is the name of the optional expense ratio file.
const FeesFile = "fees.csv"

// Dir implements dca.MarketData on a directory.
type Dir struct {
	Path string
}

// Prices implements dca.MarketData.
func (d Dir) Prices(ctx context.Context, ticker string, r dca.Range) (dca.PriceSeries, error) {
	f, err := os.Open(filepath.Join(d.Path, strings.ToUpper(ticker)+".csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	closes, err := ReadCloses(f)
	if err != nil {
		return nil, fmt.Errorf("cannot read prices of %s: %w", ticker, err)
	}
	fee, err := d.Fee(ticker)
	if err != nil {
		return nil, err
	}
	// previous closes are derived on the whole file before cutting
	return dca.NewPriceSeries(closes, fee).Between(r), nil
}

// Fee returns the expense ratio of ticker, 0 when unknown.
func (d Dir) Fee(ticker string) (float64, error) {
	f, err := os.Open(filepath.Join(d.Path, FeesFile))
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer f.Close()

	rows, cols, err := read(f, "Ticker", "Fee")
	if err != nil {
		return 0, fmt.Errorf("cannot read %s: %w", FeesFile, err)
	}
	for _, row := range rows {
		if !strings.EqualFold(row[cols[0]], ticker) {
			continue
		}
		fee, err := strconv.ParseFloat(strings.TrimSpace(row[cols[1]]), 64)
		if err != nil || fee < 0 {
			return 0, fmt.Errorf("invalid fee %q for %s", row[cols[1]], ticker)
		}
		return fee, nil
	}
	return 0, nil
}

// ReadCloses reads the Date and Close columns of a CSV file.
//
// Rows with an empty or "null" close are skipped, and closes are rounded to
// the cent.
func ReadCloses(r io.Reader) ([]dca.Close, error) {
	rows, cols, err := read(r, "Date", "Close")
	if err != nil {
		return nil, err
	}
	closes := make([]dca.Close, 0, len(rows))
	for i, row := range rows {
		value := strings.TrimSpace(row[cols[1]])
		if value == "" || strings.EqualFold(value, "null") {
			continue
		}
		day, err := dca.ParseDate(row[cols[0]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		v, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid close %q: %w", i+2, value, err)
		}
		closes = append(closes, dca.Close{Date: day, Value: v.Round(2).InexactFloat64()})
	}
	return closes, nil
}

// read returns the data rows of a CSV file, and the index of the named columns.
func read(r io.Reader, names ...string) ([][]string, []int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("missing header: %w", err)
	}
	cols := make([]int, len(names))
	for i, name := range names {
		cols[i] = -1
		for j, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				cols[i] = j
				break
			}
		}
		if cols[i] < 0 {
			return nil, nil, fmt.Errorf("missing %s column in header %v", name, header)
		}
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	width := 0
	for _, c := range cols {
		width = max(width, c+1)
	}
	for i, row := range rows {
		if len(row) < width {
			return nil, nil, fmt.Errorf("line %d: %d fields, want at least %d", i+2, len(row), width)
		}
	}
	return rows, cols, nil
}
