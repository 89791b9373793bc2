package repository

import "errors"

var (
	// ErrUnsupportedFormat indicates bytes no registered decoder understands
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrImageTooLarge indicates dimensions beyond the decode budget
	ErrImageTooLarge = errors.New("image dimensions too large")
)
