package presence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKV struct {
	mu   sync.Mutex
	keys map[string]time.Duration
	sets int
	fail bool
}

func (f *fakeKV) Set(_ context.Context, key string, _ any, exp time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return redis.NewStatusResult("", errors.New("connection refused"))
	}
	f.keys[key] = exp
	f.sets++
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeKV) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.keys, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (f *fakeKV) setCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets
}

func TestMirrorOnlineOffline(t *testing.T) {
	kv := &fakeKV{keys: map[string]time.Duration{}}
	m := newMirror(kv, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, m.Online(ctx, "alice"))
	assert.Equal(t, 30*time.Second, kv.keys["user:alice:online"])

	require.NoError(t, m.Offline(ctx, "alice"))
	assert.NotContains(t, kv.keys, "user:alice:online")
}

func TestMirrorRefreshesWhileOnline(t *testing.T) {
	kv := &fakeKV{keys: map[string]time.Duration{}}
	m := newMirror(kv, 30*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, m.Online(ctx, "alice"))
	go func() { _ = m.Run(ctx) }()

	assert.Eventually(t, func() bool { return kv.setCount() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestMirrorSurfacesErrors(t *testing.T) {
	m := newMirror(&fakeKV{keys: map[string]time.Duration{}, fail: true}, time.Second)
	assert.Error(t, m.Online(context.Background(), "alice"))
}
