package service

import "errors"

var (
	// ErrNoFiles is returned when an upload request carries no files
	ErrNoFiles = errors.New("no files uploaded")

	// ErrTooManyFiles is returned when a batch exceeds the configured file count
	ErrTooManyFiles = errors.New("too many files in batch")

	// ErrFileTooLarge is returned for a file larger than the configured size limit
	ErrFileTooLarge = errors.New("file exceeds maximum size")

	// ErrNoKeys is returned when a signing request carries no keys
	ErrNoKeys = errors.New("no keys provided")
)
