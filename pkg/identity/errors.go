package identity

import "errors"

var (
	ErrInvalidUUID         = errors.New("invalid identity UUID")
	ErrIdentityNotFound    = errors.New("identity file not found")
	ErrFailedToGenerate    = errors.New("failed to generate identity")
	ErrFailedToReadFile    = errors.New("failed to read identity file")
	ErrFailedToWriteFile   = errors.New("failed to write identity file")
	ErrIdentityFileIsEmpty = errors.New("identity file is empty")
)
