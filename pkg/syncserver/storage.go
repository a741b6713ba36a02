package syncserver

import (
	"context"

	"github.com/cc-d/open2fa/pkg/remote"
)

// Storage keeps encrypted secrets per user hash. A record is identified by
// its (name, enc_secret) pair; a null name and an empty name are the same.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Put stores every pair not stored yet for user.
	Put(ctx context.Context, user string, items []remote.TOTP) error
	// List returns the pairs stored for user, oldest first where the backend
	// keeps order.
	List(ctx context.Context, user string) ([]remote.TOTP, error)
	// Delete removes the given pairs and returns how many records went away.
	Delete(ctx context.Context, user string, items []remote.TOTP) (int, error)
	// Healthcheck reports whether the backend is reachable.
	Healthcheck(ctx context.Context) error
}

// Storage kinds accepted by Config.Storage.
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

type pairKey struct {
	name      string
	encSecret string
}

func keyOf(t remote.TOTP) pairKey {
	return pairKey{name: t.DisplayName(), encSecret: t.EncSecret}
}
