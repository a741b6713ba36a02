// Package remote is the HTTP client for the open2fa sync endpoint.
//
// All calls go to <base URL>/totps and identify the caller with the
// X-User-Hash header carrying the public id derived from the user's UUID.
// Secrets only ever travel encrypted:
//
//	POST   {"totps": [{"name": ..., "enc_secret": ...}]} -> {"totps": [...]}
//	GET                                                  -> {"totps": [...]}
//	DELETE {"totps": [{"name": ..., "enc_secret": ...}]} -> {"deleted": n}
//
// Any non-200 status or transport failure is returned as *Error, which
// matches ErrRemote under errors.Is. Nothing is retried.
package remote
