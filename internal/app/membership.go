package app

import (
	"sync"

	"github.com/dkeye/Kairos/internal/core"
	"github.com/dkeye/Kairos/internal/domain"
	"github.com/rs/zerolog/log"
)

// Membership tracks which connections belong to which rooms, both ways.
type Membership struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomID]map[core.ConnID]struct{}
	byConn map[core.ConnID]map[domain.RoomID]struct{}
}

func NewMembership() *Membership {
	return &Membership{
		rooms:  make(map[domain.RoomID]map[core.ConnID]struct{}),
		byConn: make(map[core.ConnID]map[domain.RoomID]struct{}),
	}
}

// Join adds cid to room. Joining twice is a no-op and returns false.
func (m *Membership) Join(cid core.ConnID, room domain.RoomID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	members := m.rooms[room]
	if members == nil {
		members = make(map[core.ConnID]struct{})
		m.rooms[room] = members
	}
	if _, ok := members[cid]; ok {
		return false
	}
	members[cid] = struct{}{}
	rooms := m.byConn[cid]
	if rooms == nil {
		rooms = make(map[domain.RoomID]struct{})
		m.byConn[cid] = rooms
	}
	rooms[room] = struct{}{}
	log.Debug().Str("module", "app.membership").Str("conn", string(cid)).Str("room", string(room)).Msg("joined")
	return true
}

func (m *Membership) Leave(cid core.ConnID, room domain.RoomID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaveLocked(cid, room)
}

func (m *Membership) leaveLocked(cid core.ConnID, room domain.RoomID) bool {
	members, ok := m.rooms[room]
	if !ok {
		return false
	}
	if _, ok := members[cid]; !ok {
		return false
	}
	delete(members, cid)
	if len(members) == 0 {
		delete(m.rooms, room)
	}
	if rooms, ok := m.byConn[cid]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(m.byConn, cid)
		}
	}
	log.Debug().Str("module", "app.membership").Str("conn", string(cid)).Str("room", string(room)).Msg("left")
	return true
}

// LeaveAll removes cid from every room and returns the rooms it was in.
func (m *Membership) LeaveAll(cid core.ConnID) []domain.RoomID {
	m.mu.Lock()
	defer m.mu.Unlock()
	rooms := make([]domain.RoomID, 0, len(m.byConn[cid]))
	for room := range m.byConn[cid] {
		rooms = append(rooms, room)
	}
	for _, room := range rooms {
		m.leaveLocked(cid, room)
	}
	return rooms
}

func (m *Membership) MembersOf(room domain.RoomID) []core.ConnID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.ConnID, 0, len(m.rooms[room]))
	for cid := range m.rooms[room] {
		out = append(out, cid)
	}
	return out
}

func (m *Membership) RoomsOf(cid core.ConnID) []domain.RoomID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.RoomID, 0, len(m.byConn[cid]))
	for room := range m.byConn[cid] {
		out = append(out, room)
	}
	return out
}

func (m *Membership) Contains(room domain.RoomID, cid core.ConnID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.rooms[room][cid]
	return ok
}

// CallRoomOf returns the call room cid is in, if any.
func (m *Membership) CallRoomOf(cid core.ConnID) (domain.RoomID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for room := range m.byConn[cid] {
		if room.IsCall() {
			return room, true
		}
	}
	return "", false
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"memberCount"`
}

func (m *Membership) List() []RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RoomInfo, 0, len(m.rooms))
	for id, members := range m.rooms {
		out = append(out, RoomInfo{ID: id, MemberCount: len(members)})
	}
	return out
}
