package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2018, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestNewSeries_SortsAndRejectsDuplicates(t *testing.T) {
	rows := []Quote{
		{Date: day(3), Close: decimal.NewFromInt(3)},
		{Date: day(1), Close: decimal.NewFromInt(1)},
		{Date: day(2), Close: decimal.NewFromInt(2)},
	}
	s, err := NewSeries("X", IntervalDaily, rows)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, s.Closes())
	assert.Equal(t, day(3), rows[0].Date, "input slice must not be reordered")

	_, err = NewSeries("X", IntervalDaily, append(rows, Quote{Date: day(2)}))
	assert.ErrorIs(t, err, ErrParse)
}

func TestSeries_TailAndBetween(t *testing.T) {
	var rows []Quote
	for d := 1; d <= 10; d++ {
		rows = append(rows, Quote{Date: day(d), Close: decimal.NewFromInt(int64(d)), Volume: int64(d * 100)})
	}
	s, err := NewSeries("X", IntervalDaily, rows)
	require.NoError(t, err)

	assert.Len(t, s.Tail(5), 5)
	assert.Equal(t, day(6), s.Tail(5)[0].Date)
	assert.Len(t, s.Tail(50), 10)
	assert.Empty(t, s.Tail(0))

	b := s.Between(day(4), day(6))
	assert.Equal(t, []float64{4, 5, 6}, b.Closes())
	assert.Equal(t, []float64{400, 500, 600}, b.Volumes())
	assert.Equal(t, []time.Time{day(4), day(5), day(6)}, b.Dates())
	assert.Equal(t, 10, s.Len())
}

func TestSeries_WithMovingAverage(t *testing.T) {
	s, err := NewSeries("X", IntervalDaily, []Quote{{Date: day(1)}, {Date: day(2)}})
	require.NoError(t, err)

	ma := MovingAverage{Window: 2, Values: []float64{0, 1.5}, Valid: []bool{false, true}}
	with := s.WithMovingAverage(ma)

	assert.Nil(t, s.Averages)
	got, ok := with.Average("MA2")
	require.True(t, ok)
	assert.Equal(t, 1, got.Defined())
	v, ok := got.Last()
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)
}

func TestParseInterval(t *testing.T) {
	tests := map[string]Interval{
		"1d": IntervalDaily, "daily": IntervalDaily, " Weekly ": IntervalWeekly,
		"1wk": IntervalWeekly, "1mo": IntervalMonthly, "MONTHLY": IntervalMonthly,
	}
	for in, want := range tests {
		got, err := ParseInterval(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseInterval("1h")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRequest_Validate(t *testing.T) {
	ok := Request{Symbol: "EVO.ST", Interval: IntervalDaily, Start: day(1), End: day(2)}
	assert.NoError(t, ok.Validate())

	noDates := Request{Symbol: "EVO.ST", Interval: IntervalDaily}
	assert.NoError(t, noDates.Validate())
	assert.False(t, noDates.HasRange())

	bad := []Request{
		{Interval: IntervalDaily},
		{Symbol: "X", Interval: "5m"},
		{Symbol: "X", Interval: IntervalDaily, Start: day(1)},
		{Symbol: "X", Interval: IntervalDaily, Start: day(3), End: day(2)},
	}
	for _, r := range bad {
		assert.ErrorIs(t, r.Validate(), ErrInvalidRequest)
	}

	d, err := ParseDate("2018-09-01")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, d.Location())
	_, err = ParseDate("2018/09/01")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
