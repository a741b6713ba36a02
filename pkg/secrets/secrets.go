package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/mr-tron/base58"
)

// KeySize is the required key length (AES-128).
const KeySize = 16

// IV is the fixed initialization vector shared by every message. It is not a
// secret; confidentiality rests on the per-user key. Changing it changes the
// ciphertext format and breaks compatibility with stored remote secrets.
var IV = [aes.BlockSize]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'a', 'b', 'c', 'd', 'e', 'f'}

// Encrypt encrypts plaintext with AES-128-CBC and PKCS#7 padding.
// Returns base58-encoded ciphertext.
func Encrypt(plaintext string, key []byte) (string, error) {
	ciphertext, err := EncryptBytes([]byte(plaintext), key)
	if err != nil {
		return "", err
	}
	return base58.Encode(ciphertext), nil
}

// Decrypt decodes base58 ciphertext and decrypts it back to a UTF-8 string.
// Any malformed input or wrong key surfaces as ErrDecryptionFailed.
func Decrypt(ciphertext string, key []byte) (string, error) {
	if ciphertext == "" {
		return "", errors.Join(ErrDecryptionFailed, ErrInvalidCiphertext)
	}
	raw, err := base58.Decode(ciphertext)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, ErrInvalidCiphertext, err)
	}

	plain, err := DecryptBytes(raw, key)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(plain) {
		return "", errors.Join(ErrDecryptionFailed, errors.New("plaintext is not valid UTF-8"))
	}
	return string(plain), nil
}

// EncryptBytes encrypts raw bytes. Output length is the padded input length.
func EncryptBytes(data, key []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, errors.Join(ErrEncryptionFailed, ErrInvalidKey)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	buf := pad(append([]byte(nil), data...), aes.BlockSize)
	cipher.NewCBCEncrypter(block, IV[:]).CryptBlocks(buf, buf)
	return buf, nil
}

// DecryptBytes reverses EncryptBytes.
func DecryptBytes(data, key []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, errors.Join(ErrDecryptionFailed, ErrInvalidKey)
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, errors.Join(ErrDecryptionFailed, ErrInvalidCiphertext,
			fmt.Errorf("length %d is not a positive multiple of %d", len(data), aes.BlockSize))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}

	buf := append([]byte(nil), data...)
	cipher.NewCBCDecrypter(block, IV[:]).CryptBlocks(buf, buf)

	plain, err := unpad(buf, aes.BlockSize)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	return plain, nil
}
