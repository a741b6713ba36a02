// Package syncserver is a reference implementation of the open2fa sync
// endpoint.
//
// It serves the contract consumed by package remote:
//
//	POST   /totps  store each {name, enc_secret} pair, reply with all pairs of the user
//	GET    /totps  reply with all pairs of the user
//	DELETE /totps  remove the given pairs, reply {"deleted": n}
//	GET    /health storage healthcheck
//
// Every /totps request must carry X-User-Hash. The server only ever sees
// ciphertext and the public id derived from the user's UUID; it cannot
// decrypt anything it stores.
//
// Storage is pluggable: MemoryStorage for tests and single-process use,
// RedisStorage (one set per user) and PostgresStorage (table totps, goose
// migrations embedded in the binary).
package syncserver
