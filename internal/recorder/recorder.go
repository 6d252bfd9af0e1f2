package recorder

import "time"

// RunEvent describes one pipeline run. Quote rows themselves are never stored.
type RunEvent struct {
	Symbol    string
	Source    string
	Interval  string
	Start     time.Time // zero when the run had no date range
	End       time.Time
	Rows      int
	LastClose float64
	High      float64
	Low       float64
	MA50      *float64 // nil when not derived or undefined
	MA200     *float64
	ChartPath string
	Err       string // empty on success
}

// Recorder persists run history for later inspection.
type Recorder interface {
	RecordRun(evt *RunEvent) error
	Close() error
}
