package collector

import (
	"context"

	"StockScreener/internal/model"
)

// Fetcher defines the interface for obtaining a quote series.
type Fetcher interface {
	Series(ctx context.Context, req model.Request) (*model.Series, error)
	Name() string
}
