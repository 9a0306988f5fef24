package models

import "errors"

// Custom errors
var (
	ErrInvalidConfiguration = errors.New("invalid value bet configuration")
	ErrSnapshotNotFound     = errors.New("race snapshot not found")
)
