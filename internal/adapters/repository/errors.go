package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrUnknownDriver = errors.New("unknown storage driver")
	ErrOpen          = errors.New("open store")
)
