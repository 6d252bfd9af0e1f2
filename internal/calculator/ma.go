package calculator

import (
	"errors"

	"StockScreener/internal/model"
)

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// MovingAverage computes the trailing mean of closes for every row.
// Rows before the window is filled are left undefined.
func MovingAverage(closes []float64, window int) (model.MovingAverage, error) {
	if window <= 0 {
		return model.MovingAverage{}, errors.New("window must be positive")
	}
	ma := model.MovingAverage{
		Window: window,
		Values: make([]float64, len(closes)),
		Valid:  make([]bool, len(closes)),
	}
	for i := window - 1; i < len(closes); i++ {
		v, err := CalculateSMA(closes[:i+1], window)
		if err != nil {
			return model.MovingAverage{}, err
		}
		ma.Values[i] = v
		ma.Valid[i] = true
	}
	return ma, nil
}

// Derive returns a copy of s carrying the MA<window> column over closing prices.
func Derive(s *model.Series, window int) (*model.Series, error) {
	ma, err := MovingAverage(s.Closes(), window)
	if err != nil {
		return nil, err
	}
	return s.WithMovingAverage(ma), nil
}
