package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Alias1177/Recommender/models"
)

// SurfacedTTL keeps a day's marker around long enough to cover time zones
const SurfacedTTL = 48 * time.Hour

// RedisStore implements models.SurfacedStore on Redis with expiring keys
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to addr and checks the connection
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{client: client, prefix: "recommender"}, nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// WasSurfaced reports whether ticker already has a marker for day
func (s *RedisStore) WasSurfaced(ctx context.Context, ticker string, day string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(ticker, day)).Result()
	if err != nil {
		return false, fmt.Errorf("checking surfaced %s: %w", ticker, err)
	}
	return n > 0, nil
}

// MarkSurfaced stores rec under the day's marker unless one already exists
func (s *RedisStore) MarkSurfaced(ctx context.Context, ticker string, day string, rec models.FinalRecommendation) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding recommendation: %w", err)
	}
	if err := s.client.SetNX(ctx, s.key(ticker, day), data, SurfacedTTL).Err(); err != nil {
		return fmt.Errorf("marking surfaced %s: %w", ticker, err)
	}
	return nil
}

func (s *RedisStore) key(ticker, day string) string {
	return fmt.Sprintf("%s:surfaced:%s:%s", s.prefix, day, ticker)
}

// MemoryStore is a process-local SurfacedStore, used when no Redis or
// Postgres is configured
type MemoryStore struct {
	mu   sync.RWMutex
	days map[string]models.FinalRecommendation
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{days: make(map[string]models.FinalRecommendation)}
}

// WasSurfaced reports whether ticker was marked for day
func (s *MemoryStore) WasSurfaced(_ context.Context, ticker string, day string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.days[day+"/"+ticker]
	return ok, nil
}

// MarkSurfaced records rec for ticker on day, keeping the first record
func (s *MemoryStore) MarkSurfaced(_ context.Context, ticker string, day string, rec models.FinalRecommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := day + "/" + ticker
	if _, ok := s.days[key]; !ok {
		s.days[key] = rec
	}
	return nil
}

// Get returns the recommendation recorded for ticker on day
func (s *MemoryStore) Get(ticker, day string) (models.FinalRecommendation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.days[day+"/"+ticker]
	return rec, ok
}
