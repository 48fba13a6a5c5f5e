package ingest

import "errors"

// Sentinel kinds for ingestion errors.
var (
	ErrReadFile    = errors.New("read data file")
	ErrInvalidData = errors.New("invalid data")
	ErrWriteFile   = errors.New("write data file")
)
