// Package totp implements the one-time password engine: RFC 6238 time-based codes
// computed with the RFC 4226 HMAC-SHA1 dynamic truncation.
//
// The engine is a pure function of its inputs. Generate takes a base32 secret, an
// interval length and a moment in time and returns a Code carrying the six digit
// code plus the timing metadata needed to render a countdown (interval index,
// seconds until the next code, interval length). Nothing is cached between calls,
// so callers decide whether an unchanged code needs to be redrawn.
//
// # Usage
//
//	code, err := totp.Generate("JBSWY3DPEHPK3PXP", totp.DefaultPeriod, time.Now())
//	if err != nil {
//	    // errors.Is(err, totp.ErrInvalidSecret) for malformed base32
//	}
//	fmt.Printf("%s (%.0fs left)\n", code.Code, code.SecondsUntilNext)
//
// Secrets are decoded case-insensitively. Padding may be left off, but the length
// must be a multiple of 8 either way, so a 10 character secret is rejected.
//
// Two helpers support onboarding: GenerateSecretKey creates a fresh 160-bit secret
// and GetTOTPURI builds an otpauth:// URI understood by authenticator apps.
//
// # See Also
//
//   - RFC 4226 – HMAC-Based One-Time Password (HOTP) Algorithm
//   - RFC 6238 – Time-Based One-Time Password (TOTP) Algorithm
package totp
