package syncserver

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/cc-d/open2fa/pkg/remote"
	redisx "github.com/cc-d/open2fa/pkg/redis"
)

// RedisStorage keeps one set per user under <prefix>totps:<user>. Members
// are the JSON encoding of each pair, so SADD and SREM give pair semantics.
type RedisStorage struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStorage(client redis.UniversalClient, prefix string) *RedisStorage {
	return &RedisStorage{client: client, prefix: prefix}
}

func (s *RedisStorage) key(user string) string {
	return s.prefix + "totps:" + user
}

func (s *RedisStorage) Put(ctx context.Context, user string, items []remote.TOTP) error {
	if len(items) == 0 {
		return nil
	}
	members, err := encodeMembers(items)
	if err != nil {
		return err
	}
	if err := s.client.SAdd(ctx, s.key(user), members...).Err(); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (s *RedisStorage) List(ctx context.Context, user string) ([]remote.TOTP, error) {
	members, err := s.client.SMembers(ctx, s.key(user)).Result()
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}

	out := make([]remote.TOTP, 0, len(members))
	for _, m := range members {
		var t remote.TOTP
		if err := json.Unmarshal([]byte(m), &t); err != nil {
			return nil, errors.Join(ErrStorage, err)
		}
		out = append(out, t)
	}
	// Sets are unordered.
	slices.SortFunc(out, func(a, b remote.TOTP) int {
		return cmp.Or(
			cmp.Compare(a.DisplayName(), b.DisplayName()),
			cmp.Compare(a.EncSecret, b.EncSecret),
		)
	})
	return out, nil
}

func (s *RedisStorage) Delete(ctx context.Context, user string, items []remote.TOTP) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	members, err := encodeMembers(items)
	if err != nil {
		return 0, err
	}
	n, err := s.client.SRem(ctx, s.key(user), members...).Result()
	if err != nil {
		return 0, errors.Join(ErrStorage, err)
	}
	return int(n), nil
}

func (s *RedisStorage) Healthcheck(ctx context.Context) error {
	return redisx.Healthcheck(s.client)(ctx)
}

// encodeMembers normalizes names before encoding so "" and null collide.
func encodeMembers(items []remote.TOTP) ([]any, error) {
	out := make([]any, 0, len(items))
	for _, it := range items {
		data, err := json.Marshal(remote.NewTOTP(it.DisplayName(), it.EncSecret))
		if err != nil {
			return nil, errors.Join(ErrStorage, err)
		}
		out = append(out, string(data))
	}
	return out, nil
}
