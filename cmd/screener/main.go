package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"StockScreener/internal/chart"
	"StockScreener/internal/collector"
	"StockScreener/internal/config"
	"StockScreener/internal/logger"
	"StockScreener/internal/model"
	"StockScreener/internal/recorder"
	"StockScreener/internal/scheduler"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("screener failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	req, err := cfg.Request()
	if err != nil {
		return err
	}

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Source {
	case config.SourceFile:
		fetcher = collector.NewFileFetcher(cfg.DataSource.BaseDir, log)
	case config.SourceMock:
		fetcher = &collector.MockFetcher{Price: 100}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy, cfg.DataSource.Timeout, log)
	}
	log.Info("data source", zap.String("source", fetcher.Name()), zap.String("symbol", req.Symbol))

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	opts := chart.Options{ShowMA50: cfg.Chart.ShowMA50, ShowMA200: cfg.Chart.ShowMA200}
	col := collector.NewCollector(fetcher, chart.NewRenderer(cfg.Chart.Output, log), rec, opts, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	job := func(ctx context.Context) error {
		_, err := col.Run(ctx, req)
		return err
	}

	if cfg.Schedule.RefreshCron == "" {
		return job(ctx)
	}
	return serve(ctx, cfg.Schedule.RefreshCron, job, req, log)
}

// serve runs the pipeline once and then on every cron tick until a shutdown
// signal arrives.
func serve(ctx context.Context, spec string, job scheduler.Job, req model.Request, log *zap.Logger) error {
	sched := scheduler.NewScheduler(ctx, job, log)
	if err := sched.Register(spec); err != nil {
		return err
	}
	if err := sched.RunNow(); err != nil {
		log.Error("initial run failed", zap.String("symbol", req.Symbol), zap.Error(err))
	}
	sched.Start()

	log.Info("screener is running, press Ctrl+C to stop")
	<-ctx.Done()

	log.Info("shutdown signal received, stopping")
	sched.Stop()
	return nil
}
