package calculator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScreener/internal/model"
)

func seriesFromCloses(t *testing.T, closes ...float64) *model.Series {
	t.Helper()
	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]model.Quote, len(closes))
	for i, c := range closes {
		rows[i] = model.Quote{
			Date:   start.AddDate(0, 0, i),
			Close:  decimal.NewFromFloat(c),
			Volume: int64(1000 * (i + 1)),
		}
	}
	s, err := model.NewSeries("TEST", model.IntervalDaily, rows)
	require.NoError(t, err)
	return s
}

func TestCalculateSMA(t *testing.T) {
	v, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 2)
	require.NoError(t, err)
	assert.Equal(t, 4.5, v)

	_, err = CalculateSMA([]float64{1, 2}, 3)
	assert.Error(t, err)

	_, err = CalculateSMA([]float64{1, 2}, 0)
	assert.Error(t, err)
}

func TestMovingAverage_Scenario(t *testing.T) {
	ma, err := MovingAverage([]float64{10, 20, 30, 40, 50}, 3)
	require.NoError(t, err)

	assert.Equal(t, "MA3", ma.Name())
	assert.Equal(t, []bool{false, false, true, true, true}, ma.Valid)
	assert.Equal(t, []float64{20, 30, 40}, ma.Values[2:])
	assert.Equal(t, 3, ma.Defined())
}

func TestMovingAverage_DefinedCount(t *testing.T) {
	closes := []float64{3.5, 1.25, 8, 13, 2.75, 6, 9.5, 4, 11, 7}
	for w := 1; w <= len(closes)+2; w++ {
		for n := 0; n <= len(closes); n++ {
			ma, err := MovingAverage(closes[:n], w)
			require.NoError(t, err)

			want := n - w + 1
			if want < 0 {
				want = 0
			}
			assert.Equal(t, want, ma.Defined(), "w=%d n=%d", w, n)

			for i := 0; i < n; i++ {
				if i < w-1 {
					assert.False(t, ma.Valid[i], "w=%d n=%d i=%d", w, n, i)
					continue
				}
				require.True(t, ma.Valid[i], "w=%d n=%d i=%d", w, n, i)
				sum := 0.0
				for j := i - w + 1; j <= i; j++ {
					sum += closes[j]
				}
				assert.InDelta(t, sum/float64(w), ma.Values[i], 1e-9)
			}
		}
	}
}

func TestMovingAverage_WindowBoundaries(t *testing.T) {
	closes := []float64{2, 4, 6, 8}

	whole, err := MovingAverage(closes, len(closes))
	require.NoError(t, err)
	assert.Equal(t, 1, whole.Defined())
	v, ok := whole.Last()
	require.True(t, ok)
	assert.Equal(t, 5.0, v)

	tooLong, err := MovingAverage(closes, len(closes)+1)
	require.NoError(t, err)
	assert.Equal(t, 0, tooLong.Defined())
	_, ok = tooLong.Last()
	assert.False(t, ok)

	_, err = MovingAverage(closes, 0)
	assert.Error(t, err)
	_, err = MovingAverage(closes, -3)
	assert.Error(t, err)
}

func TestDerive_DoesNotMutateInput(t *testing.T) {
	s := seriesFromCloses(t, 10, 20, 30, 40, 50)

	with3, err := Derive(s, 3)
	require.NoError(t, err)
	with2, err := Derive(with3, 2)
	require.NoError(t, err)

	assert.Empty(t, s.Averages)
	assert.Len(t, with3.Averages, 1)
	assert.Len(t, with2.Averages, 2)

	_, ok := with3.Average("MA2")
	assert.False(t, ok)
	ma3, ok := with2.Average("MA3")
	require.True(t, ok)
	assert.Equal(t, []float64{20, 30, 40}, ma3.Values[2:])
}

func TestDerive_Idempotent(t *testing.T) {
	s := seriesFromCloses(t, 101.5, 99.25, 100.75, 103, 98.5, 97.25, 104)

	first, err := Derive(s, 4)
	require.NoError(t, err)
	second, err := Derive(s, 4)
	require.NoError(t, err)

	assert.Equal(t, first.Averages["MA4"], second.Averages["MA4"])
}

func TestDerive_InvalidWindow(t *testing.T) {
	s := seriesFromCloses(t, 1, 2, 3)
	_, err := Derive(s, 0)
	assert.Error(t, err)
}
