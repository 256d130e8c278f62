package dataset

import "errors"

// Sentinel kinds for dataset errors.
var (
	ErrDatasetUnavailable = errors.New("dataset unavailable")
	ErrMissingColumn      = errors.New("dataset missing required column")
	ErrEmptyDataset       = errors.New("dataset has no header row")
	ErrNotLoaded          = errors.New("dataset not loaded")
)
