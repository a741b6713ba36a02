package syncserver

import (
	"context"
	"slices"
	"sync"

	"github.com/cc-d/open2fa/pkg/remote"
)

// MemoryStorage keeps everything in process memory. Data is lost on restart.
type MemoryStorage struct {
	mu    sync.RWMutex
	users map[string][]remote.TOTP
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{users: make(map[string][]remote.TOTP)}
}

func (s *MemoryStorage) Put(_ context.Context, user string, items []remote.TOTP) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.users[user]
	for _, it := range items {
		k := keyOf(it)
		if slices.ContainsFunc(stored, func(t remote.TOTP) bool { return keyOf(t) == k }) {
			continue
		}
		stored = append(stored, remote.NewTOTP(k.name, k.encSecret))
	}
	s.users[user] = stored
	return nil
}

func (s *MemoryStorage) List(_ context.Context, user string) ([]remote.TOTP, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users[user]), nil
}

func (s *MemoryStorage) Delete(_ context.Context, user string, items []remote.TOTP) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.users[user]
	before := len(stored)
	for _, it := range items {
		k := keyOf(it)
		stored = slices.DeleteFunc(stored, func(t remote.TOTP) bool { return keyOf(t) == k })
	}
	if len(stored) == 0 {
		delete(s.users, user)
	} else {
		s.users[user] = stored
	}
	return before - len(stored), nil
}

func (s *MemoryStorage) Healthcheck(context.Context) error { return nil }
