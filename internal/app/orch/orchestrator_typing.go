package orch

import (
	"github.com/dkeye/Kairos/internal/core"
	"github.com/dkeye/Kairos/internal/domain"
	"github.com/dkeye/Kairos/internal/protocol"
)

// NotifyTyping relays typing and stop_typing. Advisory only: nothing is
// stored and the sender never gets its own signal back.
func (o *Orchestrator) NotifyTyping(cid core.ConnID, ev protocol.Typing) error {
	from, ok := o.Registry.UserOf(cid)
	if !ok {
		return core.ErrNotLoggedIn
	}
	out := protocol.NewTyping(from.ID, ev.Target, ev.IsGroup, ev.Stop)

	if !ev.IsGroup {
		target := domain.UserID(ev.Target)
		if target == from.ID {
			return nil
		}
		if s, ok := o.Registry.Lookup(target); ok {
			o.sendTo(s, out)
		}
		return nil
	}

	room := domain.GroupRoom(domain.GroupID(ev.Target))
	if !o.Rooms.Contains(room, cid) {
		return nil
	}
	for _, member := range o.Rooms.MembersOf(room) {
		if member != cid {
			o.send(member, out)
		}
	}
	return nil
}
