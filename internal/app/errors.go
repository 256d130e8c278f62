package service

import "errors"

// Sentinel errors returned by the service.
var (
	// ErrAggregateView is returned when a row query names the location
	// counts view; use Locations instead.
	ErrAggregateView = errors.New("view has no record rows")
	// ErrExportTooLarge is returned when an export exceeds the row limit.
	ErrExportTooLarge = errors.New("export too large")
)
