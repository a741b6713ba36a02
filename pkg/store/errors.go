package store

import "errors"

var (
	// Validation errors
	ErrSecretExists = errors.New("secret with this name already exists")
	ErrNoSelector   = errors.New("no secret or name provided")
	ErrInvalidDir   = errors.New("invalid store directory")

	// File system errors
	ErrFailedToCreateDirectory = errors.New("failed to create directory")
	ErrFailedToReadFile        = errors.New("failed to read secrets file")
	ErrFailedToWriteFile       = errors.New("failed to write secrets file")
	ErrInvalidFile             = errors.New("secrets file is not valid JSON")
)
