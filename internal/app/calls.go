package app

import (
	"sync"
	"time"

	"github.com/dkeye/Kairos/internal/core"
	"github.com/dkeye/Kairos/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Call is a snapshot of one call session.
type Call struct {
	ID           string
	RoomID       domain.RoomID
	IsGroup      bool
	State        domain.CallState
	Caller       core.ConnID
	Callee       core.ConnID
	CallerUser   domain.User
	CalleeUser   domain.User
	Participants []core.ConnID
}

type callSession struct {
	Call
	members map[core.ConnID]struct{}
	timer   *time.Timer
}

func (s *callSession) snapshot() Call {
	c := s.Call
	c.Participants = make([]core.ConnID, 0, len(s.members))
	for cid := range s.members {
		c.Participants = append(c.Participants, cid)
	}
	return c
}

// CallBook owns every call session: 1:1 calls by call id, mesh calls by room.
// A session with zero participants is discarded.
type CallBook struct {
	mu     sync.Mutex
	direct map[string]*callSession
	groups map[domain.RoomID]*callSession
}

func NewCallBook() *CallBook {
	return &CallBook{
		direct: make(map[string]*callSession),
		groups: make(map[domain.RoomID]*callSession),
	}
}

// StartDirect opens a ringing 1:1 call.
func (b *CallBook) StartDirect(caller, callee core.ConnID, callerU, calleeU domain.User) Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := "call_" + uuid.NewString()
	s := &callSession{
		Call: Call{
			ID:         id,
			RoomID:     domain.RoomID(id),
			State:      domain.CallRinging,
			Caller:     caller,
			Callee:     callee,
			CallerUser: callerU,
			CalleeUser: calleeU,
		},
		members: map[core.ConnID]struct{}{caller: {}},
	}
	b.direct[id] = s
	log.Info().Str("module", "app.calls").Str("call", id).Str("caller", string(caller)).Str("callee", string(callee)).Msg("ringing")
	return s.snapshot()
}

func (b *CallBook) Direct(id string) (Call, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.direct[id]
	if !ok {
		return Call{}, false
	}
	return s.snapshot(), true
}

// DirectOf returns the 1:1 call cid takes part in, as caller or callee.
func (b *CallBook) DirectOf(cid core.ConnID) (Call, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.direct {
		if s.Caller == cid || s.Callee == cid {
			return s.snapshot(), true
		}
	}
	return Call{}, false
}

// RingingFor returns the call currently ringing at callee.
func (b *CallBook) RingingFor(callee core.ConnID) (Call, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.direct {
		if s.Callee == callee && s.State == domain.CallRinging {
			return s.snapshot(), true
		}
	}
	return Call{}, false
}

// Advance moves a 1:1 call from one state to the next. It fails when the
// call is gone or is not in the expected state.
func (b *CallBook) Advance(id string, from, to domain.CallState) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.direct[id]
	if !ok || s.State != from {
		return false
	}
	s.State = to
	if to == domain.CallConnecting || to == domain.CallActive {
		s.members[s.Callee] = struct{}{}
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
	}
	log.Info().Str("module", "app.calls").Str("call", id).Str("from", from.String()).Str("to", to.String()).Msg("state")
	return true
}

// ArmTimer attaches a ring timer to a ringing call. It is stopped on any
// state change or teardown.
func (b *CallBook) ArmTimer(id string, d time.Duration, fire func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.direct[id]
	if !ok || s.State != domain.CallRinging {
		return
	}
	s.timer = time.AfterFunc(d, fire)
}

// EndDirect removes a 1:1 call. Only the first caller gets ok=true.
func (b *CallBook) EndDirect(id string) (Call, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.direct[id]
	if !ok {
		return Call{}, false
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	delete(b.direct, id)
	s.State = domain.CallEnded
	log.Info().Str("module", "app.calls").Str("call", id).Msg("ended")
	return s.snapshot(), true
}

// JoinGroup adds cid to the mesh session of room, creating it on first join.
// The returned peers are the participants present before cid joined.
func (b *CallBook) JoinGroup(room domain.RoomID, cid core.ConnID) (peers []core.ConnID, added bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.groups[room]
	if !ok {
		s = &callSession{
			Call:    Call{ID: string(room), RoomID: room, IsGroup: true, State: domain.CallConnecting},
			members: make(map[core.ConnID]struct{}),
		}
		b.groups[room] = s
		log.Info().Str("module", "app.calls").Str("room", string(room)).Msg("mesh session created")
	}
	for p := range s.members {
		if p != cid {
			peers = append(peers, p)
		}
	}
	if _, in := s.members[cid]; in {
		return peers, false
	}
	s.members[cid] = struct{}{}
	if len(s.members) > 1 {
		s.State = domain.CallActive
	}
	return peers, true
}

// LeaveGroup removes cid from the mesh session of room and returns who is left.
func (b *CallBook) LeaveGroup(room domain.RoomID, cid core.ConnID) (remaining []core.ConnID, removed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.groups[room]
	if !ok {
		return nil, false
	}
	if _, in := s.members[cid]; !in {
		return nil, false
	}
	delete(s.members, cid)
	for p := range s.members {
		remaining = append(remaining, p)
	}
	switch len(s.members) {
	case 0:
		delete(b.groups, room)
		log.Info().Str("module", "app.calls").Str("room", string(room)).Msg("mesh session discarded")
	case 1:
		s.State = domain.CallConnecting
	}
	return remaining, true
}

func (b *CallBook) Group(room domain.RoomID) (Call, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.groups[room]
	if !ok {
		return Call{}, false
	}
	return s.snapshot(), true
}

// Counts reports live 1:1 calls and mesh sessions.
func (b *CallBook) Counts() (direct, mesh int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.direct), len(b.groups)
}
