package collector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"StockScreener/internal/model"
)

// FileFetcher loads previously downloaded CSV exports from a base directory.
type FileFetcher struct {
	BaseDir string
	Logger  *zap.Logger
}

func NewFileFetcher(baseDir string, logger *zap.Logger) *FileFetcher {
	return &FileFetcher{BaseDir: baseDir, Logger: logger}
}

func (f *FileFetcher) Name() string { return "file" }

// Load parses BaseDir/filename in full.
func (f *FileFetcher) Load(symbol, filename string, interval model.Interval) (*model.Series, error) {
	path := filepath.Join(f.BaseDir, filename)
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", model.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	s, err := ParseCSV(symbol, interval, file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	f.Logger.Info("quotes loaded", zap.String("path", path), zap.Int("rows", s.Len()))
	return s, nil
}

// Series loads the request's file (the symbol when no file is named) and,
// when the request carries dates, keeps only rows inside them.
func (f *FileFetcher) Series(_ context.Context, req model.Request) (*model.Series, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	name := req.File
	if name == "" {
		name = req.Symbol
	}
	s, err := f.Load(req.Symbol, name, req.Interval)
	if err != nil {
		return nil, err
	}
	if req.HasRange() {
		s = s.Between(req.Start, req.End)
	}
	return s, nil
}
