package identity

import (
	"crypto/sha256"
	"errors"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

const (
	// KeySize is the length of the derived AES-128 key.
	KeySize = 16
	// FileName is the identity file kept next to secrets.json.
	FileName = "open2fa.uuid"
)

// Identity is the remote-sync identity derived from a user UUID.
// The zero value means "no identity"; use IsZero to check.
type Identity struct {
	id       uuid.UUID
	publicID string
	key      [KeySize]byte
}

// Derive computes the identity of id: SHA-256 over the 16 UUID bytes, the first
// half base58-encoded as the public lookup id, the second half as the AES key.
// The same UUID always derives the same identity.
func Derive(id uuid.UUID) Identity {
	sum := sha256.Sum256(id[:])

	ident := Identity{
		id:       id,
		publicID: base58.Encode(sum[:KeySize]),
	}
	copy(ident.key[:], sum[KeySize:])
	return ident
}

// Parse derives the identity from a textual UUID. Both the dashed form and
// 32 bare hex digits are accepted.
func Parse(s string) (Identity, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Identity{}, errors.Join(ErrInvalidUUID, err)
	}
	return Derive(id), nil
}

// New derives an identity from a fresh random (version 4) UUID.
func New() (Identity, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return Identity{}, errors.Join(ErrFailedToGenerate, err)
	}
	return Derive(id), nil
}

// UUID returns the source UUID. It must never be sent to the remote.
func (i Identity) UUID() uuid.UUID { return i.id }

// PublicID returns the base58 lookup id that is safe to transmit.
func (i Identity) PublicID() string { return i.publicID }

// Key returns a copy of the derived AES-128 key.
func (i Identity) Key() []byte {
	k := make([]byte, KeySize)
	copy(k, i.key[:])
	return k
}

// EncodedKey returns the key as base58, used for display only.
func (i Identity) EncodedKey() string { return base58.Encode(i.key[:]) }

// IsZero reports whether i holds no identity.
func (i Identity) IsZero() bool { return i.publicID == "" }

// String never exposes the UUID or the key.
func (i Identity) String() string {
	if i.IsZero() {
		return "Identity(none)"
	}
	return "Identity(" + i.publicID + ")"
}
