// Package open2fa manages TOTP secrets on the local machine and keeps an
// optional encrypted copy on a remote sync service.
//
// A Manager owns the secrets.json store in the base directory and, once an
// identity exists, talks to <api url>/totps. The identity is a random UUID
// kept in open2fa.uuid (or supplied through OPEN2FA_UUID); it derives both
// the public id sent as X-User-Hash and the AES key that encrypts every
// secret before it leaves the machine. The server never sees the UUID, the
// key, or a plaintext secret.
//
//	cfg, err := open2fa.LoadConfig()
//	if err != nil {
//		return err
//	}
//	m, err := open2fa.New(cfg, open2fa.WithConfirm(askYesNo))
//	if err != nil {
//		return err
//	}
//	m, status, err := m.Init()
//	if err != nil {
//		return err
//	}
//	pushed, err := m.Push(ctx, open2fa.Filter{})
//
// Local operations (Add, Remove, Generate) never touch the network. Remote
// operations (Push, Pull, Delete) issue a single request each, return
// ErrNoIdentity before Init, and surface failures as *remote.Error without
// retrying.
package open2fa
