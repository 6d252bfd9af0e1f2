package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"StockScreener/internal/calculator"
	"StockScreener/internal/chart"
	"StockScreener/internal/model"
	"StockScreener/internal/recorder"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Rows  []model.Quote
	Err   error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Series(_ context.Context, req model.Request) (*model.Series, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Rows != nil {
		return model.NewSeries(req.Symbol, req.Interval, m.Rows)
	}
	return model.NewSeries(req.Symbol, req.Interval, generateMockRows(m.Price, req))
}

func nextBar(t time.Time, interval model.Interval) time.Time {
	switch interval {
	case model.IntervalWeekly:
		return t.AddDate(0, 0, 7)
	case model.IntervalMonthly:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// generateMockRows covers the request range, or the last 300 days when none is given.
func generateMockRows(basePrice float64, req model.Request) []model.Quote {
	start, end := req.Start, req.End
	if !req.HasRange() {
		end = time.Now().UTC().Truncate(24 * time.Hour)
		start = end.AddDate(0, 0, -299)
	}
	var dates []time.Time
	for d := start; !d.After(end); d = nextBar(d, req.Interval) {
		dates = append(dates, d)
	}

	count := len(dates)
	rows := make([]model.Quote, count)
	for i, d := range dates {
		p := decimal.NewFromFloat(basePrice * (1 + float64(i-count/2)*0.001)).Round(4)
		rows[i] = model.Quote{
			Date:     d,
			Open:     p.Mul(decimal.NewFromFloat(0.999)).Round(4),
			High:     p.Mul(decimal.NewFromFloat(1.005)).Round(4),
			Low:      p.Mul(decimal.NewFromFloat(0.995)).Round(4),
			Close:    p,
			AdjClose: p,
			Volume:   1000000,
		}
	}
	return rows
}

// ChartRenderer draws a series to its sink and returns where it went.
type ChartRenderer interface {
	Render(s *model.Series, opts chart.Options) (string, error)
}

// Result is the outcome of one pipeline run.
type Result struct {
	Series    *model.Series
	Summary   *calculator.Summary
	ChartPath string
}

// Collector orchestrates fetching, indicator derivation, charting and recording.
type Collector struct {
	Fetcher  Fetcher
	Chart    ChartRenderer
	Recorder recorder.Recorder
	Options  chart.Options
	Logger   *zap.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, renderer ChartRenderer, rec recorder.Recorder, opts chart.Options, logger *zap.Logger) *Collector {
	return &Collector{
		Fetcher:  fetcher,
		Chart:    renderer,
		Recorder: rec,
		Options:  opts,
		Logger:   logger,
	}
}

const tailRows = 5

// Run fetches the requested series, derives the enabled averages, renders the
// chart and records the run. Failures are recorded as well and returned as-is.
func (c *Collector) Run(ctx context.Context, req model.Request) (*Result, error) {
	res, err := c.run(ctx, req)
	c.record(req, res, err)
	return res, err
}

func (c *Collector) run(ctx context.Context, req model.Request) (*Result, error) {
	s, err := c.Fetcher.Series(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch series: %w", err)
	}
	if s.Len() == 0 {
		return nil, fmt.Errorf("fetch series: %w for %s", model.ErrNoData, req.Symbol)
	}

	for _, w := range c.Options.Windows() {
		if s, err = calculator.Derive(s, w); err != nil {
			return nil, fmt.Errorf("derive MA%d: %w", w, err)
		}
	}
	c.logTail(s)

	summary, err := calculator.Summarize(s)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	res := &Result{Series: s, Summary: summary}

	if res.ChartPath, err = c.Chart.Render(s, c.Options); err != nil {
		return res, fmt.Errorf("render chart: %w", err)
	}

	fields := []zap.Field{
		zap.String("symbol", s.Symbol),
		zap.Int("rows", summary.Rows),
		zap.Float64("last_close", summary.LastClose),
		zap.Float64("high", summary.High),
		zap.Float64("low", summary.Low),
		zap.Float64("position", summary.Position),
	}
	for name, v := range summary.Averages {
		fields = append(fields, zap.Float64(name, v))
	}
	c.Logger.Info("run complete", fields...)
	return res, nil
}

func (c *Collector) logTail(s *model.Series) {
	for _, q := range s.Tail(tailRows) {
		c.Logger.Info("quote",
			zap.String("date", q.Date.Format(model.DateLayout)),
			zap.String("open", q.Open.String()),
			zap.String("high", q.High.String()),
			zap.String("low", q.Low.String()),
			zap.String("close", q.Close.String()),
			zap.Int64("volume", q.Volume),
		)
	}
}

func (c *Collector) record(req model.Request, res *Result, runErr error) {
	evt := &recorder.RunEvent{
		Symbol:   req.Symbol,
		Source:   c.Fetcher.Name(),
		Interval: string(req.Interval),
		Start:    req.Start,
		End:      req.End,
	}
	if res != nil {
		evt.ChartPath = res.ChartPath
		if sum := res.Summary; sum != nil {
			evt.Rows = sum.Rows
			evt.LastClose = sum.LastClose
			evt.High = sum.High
			evt.Low = sum.Low
			if v, ok := sum.Averages["MA50"]; ok {
				evt.MA50 = &v
			}
			if v, ok := sum.Averages["MA200"]; ok {
				evt.MA200 = &v
			}
		}
	}
	if runErr != nil {
		evt.Err = runErr.Error()
	}
	if err := c.Recorder.RecordRun(evt); err != nil {
		c.Logger.Error("record run", zap.String("symbol", req.Symbol), zap.Error(err))
	}
}
