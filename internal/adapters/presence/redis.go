// Package presence mirrors the hub's online set into Redis so other
// services can read it. The hub itself never reads it back.
package presence

import (
	"context"
	"sync"
	"time"

	"github.com/dkeye/Kairos/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type kv interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisMirror keeps user:<id>:online alive with a TTL while the user is online.
type RedisMirror struct {
	rdb kv
	ttl time.Duration

	mu     sync.Mutex
	online map[domain.UserID]struct{}
}

func NewRedisMirror(rdb *redis.Client, ttl time.Duration) *RedisMirror {
	return newMirror(rdb, ttl)
}

func newMirror(rdb kv, ttl time.Duration) *RedisMirror {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &RedisMirror{rdb: rdb, ttl: ttl, online: make(map[domain.UserID]struct{})}
}

func Key(uid domain.UserID) string { return "user:" + string(uid) + ":online" }

func (m *RedisMirror) Online(ctx context.Context, uid domain.UserID) error {
	m.mu.Lock()
	m.online[uid] = struct{}{}
	m.mu.Unlock()
	return m.rdb.Set(ctx, Key(uid), "1", m.ttl).Err()
}

func (m *RedisMirror) Offline(ctx context.Context, uid domain.UserID) error {
	m.mu.Lock()
	delete(m.online, uid)
	m.mu.Unlock()
	return m.rdb.Del(ctx, Key(uid)).Err()
}

// Run refreshes the TTL of every online user until ctx is done.
func (m *RedisMirror) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.ttl * 2 / 3)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.refresh(ctx)
		}
	}
}

func (m *RedisMirror) refresh(ctx context.Context) {
	m.mu.Lock()
	users := make([]domain.UserID, 0, len(m.online))
	for uid := range m.online {
		users = append(users, uid)
	}
	m.mu.Unlock()

	for _, uid := range users {
		if err := m.rdb.Set(ctx, Key(uid), "1", m.ttl).Err(); err != nil {
			log.Warn().Err(err).Str("module", "presence").Str("user", string(uid)).Msg("ttl refresh")
		}
	}
}
