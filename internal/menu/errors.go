package menu

import "errors"

// Sentinel errors for classifying resolution and extraction failures.
var (
	// ErrSourceUnavailable covers network/HTTP failures and exhaustion of every
	// resolution strategy.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrMalformedSource means a fetched document did not have the expected shape.
	ErrMalformedSource = errors.New("malformed source")
	// ErrNotFoundForDate means the source was consulted but has nothing for the date.
	ErrNotFoundForDate = errors.New("not found for date")
)
