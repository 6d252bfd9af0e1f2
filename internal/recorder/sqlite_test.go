package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSQLiteRecorder_RecordRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "runs.db")
	rec, err := NewSQLiteRecorder(path, zap.NewNop())
	require.NoError(t, err)
	defer rec.Close()

	ma50 := 101.25
	require.NoError(t, rec.RecordRun(&RunEvent{
		Symbol:    "EVO.ST",
		Source:    "yahoo",
		Interval:  "1d",
		Start:     time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2018, 9, 1, 0, 0, 0, 0, time.UTC),
		Rows:      170,
		LastClose: 102.5,
		High:      110,
		Low:       90,
		MA50:      &ma50,
		ChartPath: "charts/EVO.ST.png",
	}))
	require.NoError(t, rec.RecordRun(&RunEvent{Symbol: "EVO.ST", Source: "yahoo", Err: "fetch failed"}))
	require.NoError(t, rec.RecordRun(&RunEvent{Symbol: "AAPL", Source: "file"}))

	n, err := rec.CountRuns("EVO.ST")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var (
		start string
		ma    float64
		ma200 *float64
	)
	err = rec.db.QueryRow(`SELECT start_date, ma50, ma200 FROM runs WHERE symbol = ? AND error = ''`, "EVO.ST").
		Scan(&start, &ma, &ma200)
	require.NoError(t, err)
	assert.Equal(t, "2018-01-01", start)
	assert.Equal(t, 101.25, ma)
	assert.Nil(t, ma200)
}

func TestSQLiteRecorder_ReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	rec, err := NewSQLiteRecorder(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, rec.RecordRun(&RunEvent{Symbol: "AAPL"}))
	require.NoError(t, rec.Close())

	rec, err = NewSQLiteRecorder(path, zap.NewNop())
	require.NoError(t, err)
	defer rec.Close()

	n, err := rec.CountRuns("AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NewNoopRecorder()
	assert.NoError(t, rec.RecordRun(&RunEvent{Symbol: "AAPL"}))
	assert.NoError(t, rec.Close())
}
