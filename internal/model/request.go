package model

import (
	"fmt"
	"strings"
	"time"
)

// Interval is the sampling interval accepted by the download endpoint.
type Interval string

const (
	IntervalDaily   Interval = "1d"
	IntervalWeekly  Interval = "1wk"
	IntervalMonthly Interval = "1mo"
)

// ParseInterval accepts the endpoint codes as well as "daily", "weekly" and "monthly".
func ParseInterval(s string) (Interval, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1d", "daily":
		return IntervalDaily, nil
	case "1wk", "weekly":
		return IntervalWeekly, nil
	case "1mo", "monthly":
		return IntervalMonthly, nil
	}
	return "", fmt.Errorf("%w: unsupported interval %q", ErrInvalidRequest, s)
}

// ParseDate parses a yyyy-mm-dd calendar day as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: %w", ErrInvalidRequest, s, err)
	}
	return t, nil
}

// Request describes which rows to fetch.
type Request struct {
	Symbol   string
	Interval Interval
	Start    time.Time
	End      time.Time
	// File names the local CSV for file-backed fetchers. Empty means the symbol.
	File string
}

// HasRange reports whether both dates are set.
func (r Request) HasRange() bool {
	return !r.Start.IsZero() && !r.End.IsZero()
}

// Validate checks the request is well formed. Dates are optional, but when
// given they must both be set and ordered.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Symbol) == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidRequest)
	}
	if _, err := ParseInterval(string(r.Interval)); err != nil {
		return err
	}
	if r.Start.IsZero() != r.End.IsZero() {
		return fmt.Errorf("%w: start and end dates must be given together", ErrInvalidRequest)
	}
	if r.HasRange() && r.End.Before(r.Start) {
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidRequest,
			r.End.Format(DateLayout), r.Start.Format(DateLayout))
	}
	return nil
}
