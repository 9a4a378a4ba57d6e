package repository

import "errors"

// Sentinel kinds for snapshot store errors.
var (
	ErrNotLoaded  = errors.New("no dataset loaded")
	ErrNilDataset = errors.New("nil dataset")
)
