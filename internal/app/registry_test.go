package app

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dkeye/Kairos/internal/core"
	"github.com/dkeye/Kairos/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopSignal struct{}

func (nopSignal) TrySend(core.Frame) error { return nil }
func (nopSignal) Close()                   {}

func attach(r *Registry, id string) core.ConnID {
	cid := core.ConnID(id)
	r.Attach(core.NewSession(cid, nopSignal{}))
	return cid
}

func TestRegistryLastLoginWins(t *testing.T) {
	r := NewRegistry()
	c1 := attach(r, "c1")
	c2 := attach(r, "c2")
	alice := domain.User{ID: "alice", DisplayName: "Alice"}

	_, replaced, ok := r.Register(c1, alice)
	require.True(t, ok)
	assert.False(t, replaced)

	prev, replaced, ok := r.Register(c2, alice)
	require.True(t, ok)
	assert.True(t, replaced)
	assert.Equal(t, c1, prev)

	s, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, c2, s.ID())

	_, bound := r.UserOf(c1)
	assert.False(t, bound, "displaced connection keeps no user")

	// The displaced socket going away must not log alice out.
	_, ok = r.Unregister(c1)
	assert.False(t, ok)
	_, ok = r.Lookup("alice")
	assert.True(t, ok)

	u, ok := r.Unregister(c2)
	require.True(t, ok)
	assert.Equal(t, alice, u)
	_, ok = r.Lookup("alice")
	assert.False(t, ok)
}

func TestRegistryRegisterRequiresAttach(t *testing.T) {
	r := NewRegistry()
	_, _, ok := r.Register("ghost", domain.User{ID: "u"})
	assert.False(t, ok)
	assert.Empty(t, r.OnlineUsers())
}

func TestRegistryConcurrentLoginsKeepOneConnPerUser(t *testing.T) {
	r := NewRegistry()
	var conns []core.ConnID
	for i := 0; i < 32; i++ {
		conns = append(conns, attach(r, fmt.Sprintf("c%d", i)))
	}
	var wg sync.WaitGroup
	for i, cid := range conns {
		i, cid := i, cid
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Register(cid, domain.User{ID: "bob"})
			if i%3 == 0 {
				r.Unregister(cid)
			}
		}()
	}
	wg.Wait()

	bound := 0
	for _, cid := range conns {
		if u, ok := r.UserOf(cid); ok {
			assert.Equal(t, domain.UserID("bob"), u.ID)
			bound++
		}
	}
	assert.LessOrEqual(t, bound, 1)
	if s, ok := r.Lookup("bob"); ok {
		u, ok := r.UserOf(s.ID())
		require.True(t, ok)
		assert.Equal(t, domain.UserID("bob"), u.ID)
	}
}

func TestRegistrySnapshots(t *testing.T) {
	r := NewRegistry()
	c1 := attach(r, "c1")
	c2 := attach(r, "c2")
	attach(r, "c3")
	r.Register(c1, domain.User{ID: "bob"})
	r.Register(c2, domain.User{ID: "alice"})

	assert.Equal(t, []domain.UserID{"alice", "bob"}, r.OnlineUsers())
	assert.Len(t, r.LoggedIn(), 2)
	assert.Equal(t, 3, r.ConnCount())

	r.Unregister(c1)
	r.Detach(c1)
	assert.Equal(t, 2, r.ConnCount())
	_, ok := r.Session(c1)
	assert.False(t, ok)
}
