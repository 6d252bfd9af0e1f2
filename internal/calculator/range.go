package calculator

import (
	"errors"
	"math"

	"StockScreener/internal/model"
)

// Summary condenses a series for logging and run history.
type Summary struct {
	Rows      int
	LastClose float64
	High      float64
	Low       float64
	Position  float64 // 0.0 ~ 1.0
	Averages  map[string]float64
}

// CalculateRange returns the highest high and lowest low over all rows.
// Rows without high/low (files that only carry Close) fall back to the close.
func CalculateRange(rows []model.Quote) (high, low float64, err error) {
	if len(rows) == 0 {
		return 0, 0, errors.New("no rows provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, r := range rows {
		c := r.Close.InexactFloat64()
		h, l := r.High.InexactFloat64(), r.Low.InexactFloat64()
		if h == 0 {
			h = c
		}
		if l == 0 {
			l = c
		}
		if h > high {
			high = h
		}
		if l < low {
			low = l
		}
	}
	return high, low, nil
}

// CalculatePosition returns where the current price sits within the range (0.0~1.0).
func CalculatePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}

// Summarize computes range statistics and the latest value of each derived average.
func Summarize(s *model.Series) (*Summary, error) {
	high, low, err := CalculateRange(s.Rows)
	if err != nil {
		return nil, err
	}
	sum := &Summary{
		Rows:      s.Len(),
		LastClose: s.Rows[s.Len()-1].Close.InexactFloat64(),
		High:      high,
		Low:       low,
		Averages:  make(map[string]float64, len(s.Averages)),
	}
	if sum.Position, err = CalculatePosition(sum.LastClose, high, low); err != nil {
		return nil, err
	}
	for name, ma := range s.Averages {
		if v, ok := ma.Last(); ok {
			sum.Averages[name] = v
		}
	}
	return sum, nil
}
