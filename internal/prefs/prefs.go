// Package prefs implements the user-preference stores: in-process memory
// and Redis.
package prefs

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/andreiashu/safemap"
)

// DefaultPrefix namespaces preference keys in Redis.
const DefaultPrefix = "safemap:pref:"

// Memory is a map-backed store. The zero value is ready to use.
type Memory struct {
	mu sync.RWMutex
	m  map[string]string
}

var _ safemap.PreferenceStore = (*Memory)(nil)

func (s *Memory) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *Memory) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = make(map[string]string)
	}
	s.m[key] = value
	return nil
}

// Redis stores preferences as plain string keys under a prefix.
type Redis struct {
	client *redis.Client
	prefix string
}

var _ safemap.PreferenceStore = (*Redis)(nil)

// NewRedis wraps client. An empty prefix means DefaultPrefix.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (s *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Redis) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}

// OpenRedis returns a client for addr, or nil when addr is empty.
func OpenRedis(addr, pass string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

// Open returns the Redis store when a reachable server is configured and
// the memory store otherwise.
func Open(ctx context.Context, l *slog.Logger, addr, pass string, db int) safemap.PreferenceStore {
	client := OpenRedis(addr, pass, db)
	if client == nil {
		return &Memory{}
	}
	if err := client.Ping(ctx).Err(); err != nil {
		l.Warn("redis_unavailable", "addr", addr, "err", err)
		client.Close()
		return &Memory{}
	}
	l.Debug("redis_connected", "addr", addr, "db", db)
	return NewRedis(client, "")
}
