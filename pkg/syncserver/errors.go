package syncserver

import "errors"

var (
	ErrStorage          = errors.New("storage failure")
	ErrMissingUserHash  = errors.New("missing X-User-Hash header")
	ErrInvalidBody      = errors.New("invalid request body")
	ErrMissingEncSecret = errors.New("enc_secret is required")
	ErrRateLimited      = errors.New("too many requests")
	ErrUnknownStorage   = errors.New("unknown storage kind")
	ErrStart            = errors.New("failed to start sync server")
	ErrShutdown         = errors.New("failed to shutdown sync server gracefully")
)
