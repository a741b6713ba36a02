package open2fa

import "errors"

var (
	// ErrNoIdentity is returned by remote operations before an identity exists.
	ErrNoIdentity = errors.New("remote capabilities are not initialized")
	// ErrNoMatch is returned when no local secret matches a remote delete.
	ErrNoMatch = errors.New("no matching local secret")

	ErrInvalidConfig = errors.New("invalid configuration")
)
