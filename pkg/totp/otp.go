package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultDigits    = 6      // Standard 6-digit TOTP codes
	DefaultPeriod    = 30     // 30-second validity window (RFC 6238 standard)
	DefaultAlgorithm = "SHA1" // HMAC-SHA1 algorithm (RFC 6238 standard)
)

// Code is a single generated one-time password together with its timing metadata.
// Values are produced by Generate and never mutated afterwards.
type Code struct {
	Code             string    // Exactly DefaultDigits ASCII digits, zero-padded
	GeneratedAt      time.Time // Moment the code was computed for
	Interval         uint64    // Number of whole intervals since the Unix epoch
	SecondsUntilNext float64   // Time left until Interval increments, in (0, IntervalLength]
	IntervalLength   int       // Step size in seconds
}

// NextAt returns the moment the next code becomes current.
func (c Code) NextAt() time.Time {
	return time.Unix(int64(c.Interval+1)*int64(c.IntervalLength), 0)
}

func (c Code) String() string {
	return c.Code
}

// URIParams contains the parameters for otpauth URI generation
type URIParams struct {
	Secret      string // Base32-encoded TOTP secret key (required)
	AccountName string // Label shown in authenticator apps (required)
	Issuer      string // Service name, optional for imported secrets
	Period      int    // Code validity period in seconds (optional, defaults to 30)
}

// Validate ensures the URI parameters carry a usable secret and label.
func (p URIParams) Validate() error {
	if strings.TrimSpace(p.Secret) == "" {
		return ErrMissingSecret
	}
	if _, err := DecodeSecret(p.Secret); err != nil {
		return err
	}
	if strings.TrimSpace(p.AccountName) == "" {
		return ErrMissingAccountName
	}
	return nil
}

// DecodeSecret decodes a base32 secret case-insensitively.
// Surrounding whitespace is ignored. Padding may be omitted, but the secret
// must still have a length that is a multiple of 8, as with padded input.
func DecodeSecret(secret string) ([]byte, error) {
	s := strings.ToUpper(strings.TrimSpace(secret))
	if s == "" {
		return nil, ErrMissingSecret
	}
	if len(s)%8 != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of 8", ErrInvalidSecret, len(s))
	}

	enc := base32.StdEncoding
	if !strings.Contains(s, "=") {
		enc = enc.WithPadding(base32.NoPadding)
	}

	key, err := enc.DecodeString(s)
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	if len(key) == 0 {
		return nil, ErrInvalidSecret
	}
	return key, nil
}

// Generate computes the TOTP code for secret at the given moment.
// intervalLength values below 1 fall back to DefaultPeriod.
// The result depends only on the arguments, so equal inputs always yield equal codes.
func Generate(secret string, intervalLength int, now time.Time) (Code, error) {
	if intervalLength < 1 {
		intervalLength = DefaultPeriod
	}

	key, err := DecodeSecret(secret)
	if err != nil {
		return Code{}, err
	}

	unix := now.Unix()
	if unix < 0 {
		return Code{}, ErrInvalidTime
	}

	step := uint64(intervalLength)
	interval := uint64(unix) / step
	elapsed := float64(uint64(unix)%step) + float64(now.Nanosecond())/float64(time.Second)
	code := GenerateHOTP(key, interval, DefaultDigits)

	return Code{
		Code:             fmt.Sprintf("%0*d", DefaultDigits, code),
		GeneratedAt:      now,
		Interval:         interval,
		SecondsUntilNext: float64(intervalLength) - elapsed,
		IntervalLength:   intervalLength,
	}, nil
}

// GenerateHOTP implements RFC 4226 HMAC-based One-Time Password algorithm.
// The algorithm converts a counter value into a numeric code using HMAC-SHA1.
func GenerateHOTP(key []byte, counter uint64, digits int) int {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation (RFC 4226): use last 4 bits as offset into hash
	offset := sum[len(sum)-1] & 0x0f
	value := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return int(value % uint32(math.Pow10(digits)))
}

// GenerateSecretKey generates a new Base32-encoded secret key for TOTP.
func GenerateSecretKey() (string, error) {
	secret := make([]byte, 20) // 160-bit secret (RFC 4226 recommendation for cryptographic strength)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecretKey, err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret), nil
}

// GetTOTPURI creates a properly encoded TOTP URI for use with authenticator apps.
// The URI format follows the Key Uri Format specification:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func GetTOTPURI(params URIParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}
	if params.Period == 0 {
		params.Period = DefaultPeriod
	}

	label := url.PathEscape(params.AccountName)
	if params.Issuer != "" {
		label = url.PathEscape(params.Issuer) + ":" + label
	}

	query := url.Values{}
	query.Set("secret", strings.ToUpper(strings.TrimSpace(params.Secret)))
	if params.Issuer != "" {
		query.Set("issuer", params.Issuer)
	}
	query.Set("algorithm", DefaultAlgorithm)
	query.Set("digits", fmt.Sprintf("%d", DefaultDigits))
	query.Set("period", fmt.Sprintf("%d", params.Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}
