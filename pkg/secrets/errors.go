package secrets

import "errors"

var (
	// Key validation errors
	ErrInvalidKey = errors.New("invalid key: must be 16 bytes")

	// Encryption/decryption errors
	ErrEncryptionFailed  = errors.New("encryption failed")
	ErrDecryptionFailed  = errors.New("decryption failed")
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
	ErrInvalidPadding    = errors.New("invalid PKCS#7 padding")
)
