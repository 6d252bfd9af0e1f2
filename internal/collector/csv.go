package collector

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"StockScreener/internal/model"
)

const (
	colDate     = "Date"
	colOpen     = "Open"
	colHigh     = "High"
	colLow      = "Low"
	colClose    = "Close"
	colAdjClose = "Adj Close"
	colVolume   = "Volume"
)

var requiredColumns = []string{colDate, colClose, colVolume}

// ParseCSV reads a Yahoo-style history export (header row first) into a series.
// Rows Yahoo marks with "null" prices (holidays) are skipped.
func ParseCSV(symbol string, interval model.Interval, r io.Reader) (*model.Series, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input", model.ErrParse)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %w", model.ErrParse, err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", model.ErrParse, name)
		}
	}

	var rows []model.Quote
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", model.ErrParse, err)
		}
		line, _ := cr.FieldPos(0)

		if hasNull(rec, cols) {
			continue
		}
		q, err := parseRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", model.ErrParse, line, err)
		}
		rows = append(rows, q)
	}

	return model.NewSeries(symbol, interval, rows)
}

func hasNull(rec []string, cols map[string]int) bool {
	for _, name := range []string{colOpen, colHigh, colLow, colClose, colAdjClose, colVolume} {
		if i, ok := cols[name]; ok && i < len(rec) && strings.EqualFold(strings.TrimSpace(rec[i]), "null") {
			return true
		}
	}
	return false
}

func parseRow(rec []string, cols map[string]int) (model.Quote, error) {
	var q model.Quote

	field := func(name string) (string, bool) {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return "", false
		}
		return strings.TrimSpace(rec[i]), true
	}

	raw, _ := field(colDate)
	date, err := time.ParseInLocation(model.DateLayout, raw, time.UTC)
	if err != nil {
		return q, fmt.Errorf("date %q: %w", raw, err)
	}
	q.Date = date

	prices := []struct {
		name     string
		dst      *decimal.Decimal
		required bool
	}{
		{colOpen, &q.Open, false},
		{colHigh, &q.High, false},
		{colLow, &q.Low, false},
		{colClose, &q.Close, true},
		{colAdjClose, &q.AdjClose, false},
	}
	for _, p := range prices {
		raw, ok := field(p.name)
		if !ok || (raw == "" && !p.required) {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return q, fmt.Errorf("%s %q: %w", p.name, raw, err)
		}
		*p.dst = d
	}

	raw, _ = field(colVolume)
	if q.Volume, err = parseVolume(raw); err != nil {
		return q, fmt.Errorf("%s %q: %w", colVolume, raw, err)
	}
	return q, nil
}

// parseVolume accepts plain integers and the "1234.0" form pandas writes for float columns.
func parseVolume(raw string) (int64, error) {
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, err
	}
	return d.IntPart(), nil
}
