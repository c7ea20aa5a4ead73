package middleware

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// InMemoryIdempotencyStore keeps responses in a go-cache with per-entry expiry.
type InMemoryIdempotencyStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

type pendingResponse struct{}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	cleanup := ttl / 2
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &InMemoryIdempotencyStore{cache: cache.New(ttl, cleanup), ttl: ttl}
}

// Reserve relies on cache.Add failing when the key already exists.
func (s *InMemoryIdempotencyStore) Reserve(_ context.Context, key string) (bool, error) {
	return s.cache.Add(key, pendingResponse{}, reservationTTL(s.ttl)) == nil, nil
}

func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	if _, pending := s.cache.Get(key); pending {
		s.cache.Delete(key)
	}
	return nil
}

func (s *InMemoryIdempotencyStore) Get(_ context.Context, key string) (*CachedResponse, bool, error) {
	v, found := s.cache.Get(key)
	if !found {
		return nil, false, nil
	}
	response, ok := v.(*CachedResponse)
	return response, ok, nil
}

func (s *InMemoryIdempotencyStore) Set(_ context.Context, key string, response *CachedResponse) error {
	s.cache.Set(key, response, cache.DefaultExpiration)
	return nil
}

// Stop drops all entries. The janitor goroutine exits once the cache is collected.
func (s *InMemoryIdempotencyStore) Stop() error {
	s.cache.Flush()
	return nil
}
