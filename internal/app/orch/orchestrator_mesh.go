package orch

import (
	"github.com/dkeye/Kairos/internal/core"
	"github.com/dkeye/Kairos/internal/domain"
	"github.com/dkeye/Kairos/internal/metrics"
	"github.com/dkeye/Kairos/internal/protocol"
	"github.com/rs/zerolog/log"
)

// JoinCallRoom puts the connection into a group's mesh call and replies with
// the participants already there. The joiner then signals each of them.
// A connection is in at most one call room; joining another leaves the first.
func (o *Orchestrator) JoinCallRoom(cid core.ConnID, ev protocol.JoinCallRoom) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	u, ok := o.Registry.UserOf(cid)
	if !ok {
		return core.ErrNotLoggedIn
	}
	room := domain.NormalizeCallRoom(ev.RoomID)
	if cur, ok := o.Rooms.CallRoomOf(cid); ok && cur != room {
		o.leaveCallLocked(cid, u.ID, cur)
	}

	o.Rooms.Join(cid, room)
	peers, added := o.Calls.JoinGroup(room, cid)
	if added {
		metrics.MeshParticipants.Inc()
	}

	ps := make([]protocol.Participant, 0, len(peers))
	for _, p := range peers {
		ps = append(ps, o.participant(p))
	}
	o.send(cid, protocol.NewRoomParticipants(room, ps))
	log.Info().Str("module", "orch").Str("conn", string(cid)).Str("room", string(room)).Int("peers", len(peers)).Msg("joined call room")
	return nil
}

// RelaySignal forwards an offer from the sender to another participant of
// the same call room as peer_joined. Unknown targets are dropped.
func (o *Orchestrator) RelaySignal(cid core.ConnID, ev protocol.RelaySignal) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	room, target, ok := o.signalRoute(cid, core.ConnID(ev.Target))
	if !ok {
		return nil
	}
	o.sendTo(target, protocol.NewPeerJoined(room, o.participant(cid), ev.Signal))
	return nil
}

// RelayReturnSignal completes a pairwise handshake back to its origin.
func (o *Orchestrator) RelayReturnSignal(cid core.ConnID, ev protocol.RelayReturnSignal) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	room, origin, ok := o.signalRoute(cid, core.ConnID(ev.Origin))
	if !ok {
		return nil
	}
	o.sendTo(origin, protocol.NewReturnSignal(room, o.participant(cid), ev.Signal))
	return nil
}

func (o *Orchestrator) LeaveCallRoom(cid core.ConnID, ev protocol.LeaveCallRoom) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	u, _ := o.Registry.UserOf(cid)
	o.leaveCallLocked(cid, u.ID, domain.NormalizeCallRoom(ev.RoomID))
	return nil
}

// signalRoute resolves the peer of a relay. Both ends must still share the
// sender's call room.
func (o *Orchestrator) signalRoute(from, to core.ConnID) (domain.RoomID, core.Session, bool) {
	if from == to {
		return "", nil, false
	}
	room, ok := o.Rooms.CallRoomOf(from)
	if !ok || !o.Rooms.Contains(room, to) {
		log.Debug().Str("module", "orch").Str("from", string(from)).Str("to", string(to)).Err(core.ErrInvalidSignalTarget).Msg("signal dropped")
		return "", nil, false
	}
	s, ok := o.Registry.Session(to)
	if !ok {
		log.Debug().Str("module", "orch").Str("to", string(to)).Err(core.ErrInvalidSignalTarget).Msg("signal dropped")
		return "", nil, false
	}
	return room, s, true
}

// leaveCallLocked removes cid from a call room and sends exactly one
// peer_left to each remaining participant.
func (o *Orchestrator) leaveCallLocked(cid core.ConnID, uid domain.UserID, room domain.RoomID) {
	if !o.Rooms.Leave(cid, room) {
		return
	}
	remaining, removed := o.Calls.LeaveGroup(room, cid)
	if !removed {
		return
	}
	metrics.MeshParticipants.Dec()
	out := protocol.NewPeerLeft(room, string(cid), uid)
	for _, p := range remaining {
		o.send(p, out)
	}
	log.Info().Str("module", "orch").Str("conn", string(cid)).Str("room", string(room)).Int("remaining", len(remaining)).Msg("left call room")
}

func (o *Orchestrator) participant(cid core.ConnID) protocol.Participant {
	p := protocol.Participant{ConnID: string(cid)}
	if u, ok := o.Registry.UserOf(cid); ok {
		p.UserID = u.ID
		p.DisplayName = u.DisplayName
	}
	return p
}
