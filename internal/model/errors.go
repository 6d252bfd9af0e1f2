package model

import "errors"

var (
	// ErrTokenNotFound is returned when the quote page carries no crumb.
	ErrTokenNotFound = errors.New("crumb not found in quote page")

	// ErrFetch is returned for transport failures, timeouts and non-200 responses.
	ErrFetch = errors.New("fetch failed")

	// ErrParse is returned for malformed CSV content or an unexpected column layout.
	ErrParse = errors.New("malformed quote data")

	// ErrFileNotFound is returned when a local quote file does not exist.
	ErrFileNotFound = errors.New("quote file not found")

	// ErrNoData is returned when a source yields no quotes for the request.
	ErrNoData = errors.New("no quotes")

	// ErrInvalidRequest is returned for bad symbols, intervals or date ranges.
	ErrInvalidRequest = errors.New("invalid request")
)
