package totp

import "errors"

var (
	ErrInvalidSecret             = errors.New("invalid base32 secret")
	ErrMissingSecret             = errors.New("missing secret")
	ErrMissingAccountName        = errors.New("missing account name")
	ErrInvalidTime               = errors.New("time is before the Unix epoch")
	ErrFailedToGenerateSecretKey = errors.New("failed to generate TOTP secret key")
)
