// Package identity derives the remote-sync identity of a user from a UUID.
//
// A single 128-bit UUID is the only secret a user has to keep. From it the
// package derives, with one SHA-256 over the raw UUID bytes:
//
//   - the public id: base58 of the first 16 digest bytes, sent to the sync
//     service as the lookup key (X-User-Hash);
//   - the encryption key: the last 16 digest bytes, an AES-128 key that never
//     leaves the machine.
//
// Derivation is a pure function of the UUID, so the same UUID on two machines
// reads and writes the same remote secrets.
//
// # Usage
//
//	ident, err := identity.Parse("4a26e0f1-d580-48c1-8832-4c29ae463101")
//	if err != nil {
//	    return err
//	}
//	req.Header.Set("X-User-Hash", ident.PublicID())
//	ct, err := secrets.Encrypt(plain, ident.Key())
//
// The UUID is persisted as plain text in open2fa.uuid (see Save and Load) with
// 0600 permissions.
package identity
