package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day layout used by Yahoo CSV exports and config dates.
const DateLayout = "2006-01-02"

// Quote represents a single daily (or weekly/monthly) observation.
type Quote struct {
	Date     time.Time
	Open     decimal.Decimal
	High     decimal.Decimal
	Low      decimal.Decimal
	Close    decimal.Decimal
	AdjClose decimal.Decimal
	Volume   int64
}

// MovingAverage is a derived column aligned with the rows of a Series.
// Valid[i] is false while the trailing window is not yet filled.
type MovingAverage struct {
	Window int
	Values []float64
	Valid  []bool
}

// Name returns the column name, e.g. "MA50".
func (m MovingAverage) Name() string {
	return fmt.Sprintf("MA%d", m.Window)
}

// Defined returns the number of rows holding a value.
func (m MovingAverage) Defined() int {
	n := 0
	for _, ok := range m.Valid {
		if ok {
			n++
		}
	}
	return n
}

// Last returns the most recent defined value.
func (m MovingAverage) Last() (float64, bool) {
	for i := len(m.Valid) - 1; i >= 0; i-- {
		if m.Valid[i] {
			return m.Values[i], true
		}
	}
	return 0, false
}

// Series holds the quote rows of one symbol plus any derived columns.
// A Series is treated as immutable: derivations return a new Series.
type Series struct {
	Symbol   string
	Interval Interval
	Rows     []Quote
	Averages map[string]MovingAverage
}

// NewSeries sorts rows by date and rejects duplicate dates.
func NewSeries(symbol string, interval Interval, rows []Quote) (*Series, error) {
	sorted := make([]Quote, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Date.Equal(sorted[i-1].Date) {
			return nil, fmt.Errorf("%w: duplicate date %s", ErrParse, sorted[i].Date.Format(DateLayout))
		}
	}
	return &Series{Symbol: symbol, Interval: interval, Rows: sorted}, nil
}

func (s *Series) Len() int { return len(s.Rows) }

// Closes returns the closing prices in row order.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = r.Close.InexactFloat64()
	}
	return out
}

func (s *Series) Volumes() []float64 {
	out := make([]float64, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = float64(r.Volume)
	}
	return out
}

func (s *Series) Dates() []time.Time {
	out := make([]time.Time, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = r.Date
	}
	return out
}

// Tail returns the last n rows.
func (s *Series) Tail(n int) []Quote {
	if n >= len(s.Rows) {
		return s.Rows
	}
	if n <= 0 {
		return nil
	}
	return s.Rows[len(s.Rows)-n:]
}

// Between returns a new Series restricted to rows dated within [start, end].
func (s *Series) Between(start, end time.Time) *Series {
	rows := make([]Quote, 0, len(s.Rows))
	for _, r := range s.Rows {
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		rows = append(rows, r)
	}
	return &Series{Symbol: s.Symbol, Interval: s.Interval, Rows: rows}
}

// Average looks up a derived column by name.
func (s *Series) Average(name string) (MovingAverage, bool) {
	ma, ok := s.Averages[name]
	return ma, ok
}

// WithMovingAverage returns a copy of s carrying ma as an extra column.
// The receiver is left untouched.
func (s *Series) WithMovingAverage(ma MovingAverage) *Series {
	averages := make(map[string]MovingAverage, len(s.Averages)+1)
	for k, v := range s.Averages {
		averages[k] = v
	}
	averages[ma.Name()] = ma
	return &Series{
		Symbol:   s.Symbol,
		Interval: s.Interval,
		Rows:     s.Rows,
		Averages: averages,
	}
}
