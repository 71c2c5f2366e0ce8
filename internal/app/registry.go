package app

import (
	"slices"
	"sync"

	"github.com/dkeye/Kairos/internal/core"
	"github.com/dkeye/Kairos/internal/domain"
	"github.com/rs/zerolog/log"
)

type regEntry struct {
	Session core.Session
	User    *domain.User // nil until login
}

// Registry maps live sockets to users. At most one connection is bound
// to a user id at any time; a newer login replaces the older binding.
type Registry struct {
	mu    sync.RWMutex
	conns map[core.ConnID]*regEntry
	users map[domain.UserID]core.ConnID
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[core.ConnID]*regEntry),
		users: make(map[domain.UserID]core.ConnID),
	}
}

func (r *Registry) Attach(s core.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[s.ID()] = &regEntry{Session: s}
	log.Debug().Str("module", "app.registry").Str("conn", string(s.ID())).Msg("attached")
}

// Detach forgets the socket. The user binding must already be gone.
func (r *Registry) Detach(cid core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, cid)
	log.Debug().Str("module", "app.registry").Str("conn", string(cid)).Msg("detached")
}

func (r *Registry) Session(cid core.ConnID) (core.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[cid]; ok {
		return e.Session, true
	}
	return nil, false
}

// Register binds u to cid. If another connection held u, it is unbound and
// returned as prev. ok is false when cid is not attached.
func (r *Registry) Register(cid core.ConnID, u domain.User) (prev core.ConnID, replaced, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, found := r.conns[cid]
	if !found {
		return "", false, false
	}
	if old, held := r.users[u.ID]; held && old != cid {
		if oe, live := r.conns[old]; live {
			oe.User = nil
		}
		prev, replaced = old, true
	}
	r.users[u.ID] = cid
	e.User = &u
	log.Info().Str("module", "app.registry").Str("conn", string(cid)).Str("user", string(u.ID)).Bool("replaced", replaced).Msg("registered")
	return prev, replaced, true
}

// Unregister unbinds the user held by cid. The user entry is only removed
// when it still points at cid.
func (r *Registry) Unregister(cid core.ConnID) (domain.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[cid]
	if !ok || e.User == nil {
		return domain.User{}, false
	}
	u := *e.User
	e.User = nil
	if r.users[u.ID] == cid {
		delete(r.users, u.ID)
	}
	log.Info().Str("module", "app.registry").Str("conn", string(cid)).Str("user", string(u.ID)).Msg("unregistered")
	return u, true
}

func (r *Registry) Lookup(uid domain.UserID) (core.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cid, ok := r.users[uid]
	if !ok {
		return nil, false
	}
	e, ok := r.conns[cid]
	if !ok {
		return nil, false
	}
	return e.Session, true
}

func (r *Registry) UserOf(cid core.ConnID) (domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[cid]
	if !ok || e.User == nil {
		return domain.User{}, false
	}
	return *e.User, true
}

func (r *Registry) OnlineUsers() []domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.UserID, 0, len(r.users))
	for uid := range r.users {
		out = append(out, uid)
	}
	slices.Sort(out)
	return out
}

type RegSnap struct {
	Session core.Session
	User    domain.User
}

// LoggedIn returns every connection currently bound to a user.
func (r *Registry) LoggedIn() []RegSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RegSnap, 0, len(r.users))
	for _, cid := range r.users {
		if e, ok := r.conns[cid]; ok && e.User != nil {
			out = append(out, RegSnap{Session: e.Session, User: *e.User})
		}
	}
	return out
}

func (r *Registry) ConnCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
