package services

import "errors"

// Survey service errors
var (
	ErrDatasetNotLoaded = errors.New("survey dataset not loaded")
	ErrColumnNotFound   = errors.New("survey column not found")
	ErrNoNumericData    = errors.New("no numeric data")
)
