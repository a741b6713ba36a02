package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/cc-d/open2fa/pkg/totp"
)

// Secret is one stored TOTP secret. Code holds the most recently generated
// code and is refreshed by Store.Generate.
type Secret struct {
	Secret string
	Name   string
	Code   totp.Code
}

// NewSecret validates secret by generating its first code at now.
func NewSecret(secret, name string, interval int, now time.Time) (*Secret, error) {
	code, err := totp.Generate(secret, interval, now)
	if err != nil {
		return nil, fmt.Errorf("secret %q: %w", Truncate(secret), err)
	}
	return &Secret{Secret: secret, Name: name, Code: code}, nil
}

// Is reports whether s holds exactly the (secret, name) pair.
// Names are compared literally, without case or whitespace folding.
func (s Secret) Is(secret, name string) bool {
	return s.Secret == secret && s.Name == name
}

// Refresh regenerates the cached code for now.
func (s *Secret) Refresh(interval int, now time.Time) error {
	code, err := totp.Generate(s.Secret, interval, now)
	if err != nil {
		return fmt.Errorf("secret %q: %w", s.Name, err)
	}
	s.Code = code
	return nil
}

// Selector picks secrets by exact name or exact secret. A secret matches when
// either non-empty field equals the corresponding value.
type Selector struct {
	Name   string
	Secret string
}

// IsEmpty reports whether neither field is set.
func (sel Selector) IsEmpty() bool {
	return sel.Name == "" && sel.Secret == ""
}

// Match applies the selector with OR semantics.
func (sel Selector) Match(s Secret) bool {
	if sel.Secret != "" && s.Secret == sel.Secret {
		return true
	}
	return sel.Name != "" && s.Name == sel.Name
}

// Truncate shortens a secret for display: "JBSWY3DPEHPK3PXP" becomes "J...P".
func Truncate(secret string) string {
	if len(secret) < 3 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:1] + "..." + secret[len(secret)-1:]
}
