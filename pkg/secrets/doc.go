// Package secrets encrypts TOTP secrets before they leave the machine.
//
// The codec is AES-128 in CBC mode with PKCS#7 padding and a fixed, public
// initialization vector (IV). Ciphertext travels as base58 text, which is URL
// safe and easy to transcribe. The 16-byte key comes from pkg/identity and is
// unique per user.
//
// # Design note
//
// Reusing one IV for every message under the same key means equal plaintexts
// produce equal ciphertexts. The sync service relies on this: it de-duplicates
// and deletes stored secrets by comparing ciphertext. The threat model is an
// opaque blob on someone else's server, not high-security storage. Moving to a
// random per-message IV would change the wire format and the server's matching
// rules together.
//
// # Usage
//
//	ct, err := secrets.Encrypt("JBSWY3DPEHPK3PXP", ident.Key())
//	if err != nil {
//	    return err
//	}
//	plain, err := secrets.Decrypt(ct, ident.Key())
//
// # Error Handling
//
// Decryption failures of any kind (bad base58, truncated ciphertext, wrong key,
// broken padding) wrap ErrDecryptionFailed. Use errors.Is to match.
package secrets
