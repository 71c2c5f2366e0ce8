package orch

import (
	"context"
	"fmt"

	"github.com/dkeye/Kairos/internal/core"
	"github.com/dkeye/Kairos/internal/domain"
	"github.com/dkeye/Kairos/internal/metrics"
	"github.com/dkeye/Kairos/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Login binds a user identity to the connection. The group list is read
// before any state changes, so a gateway failure leaves nothing half done.
// A prior connection of the same user is displaced and told so.
func (o *Orchestrator) Login(ctx context.Context, cid core.ConnID, ev protocol.Login) error {
	u, err := domain.NewUser(ev.UserID, ev.DisplayName)
	if err != nil {
		return err
	}

	pctx, cancel := o.persistCtx(ctx)
	done := metrics.ObservePersist("list_groups")
	groups, err := o.Store.ListGroupsOf(pctx, u.ID)
	done(err)
	cancel()
	if err != nil {
		return fmt.Errorf("list groups of %s: %w: %v", u.ID, core.ErrPersistence, err)
	}

	o.mu.Lock()
	var switched []domain.UserID
	if cur, ok := o.Registry.UserOf(cid); ok && cur.ID != u.ID {
		o.logoutLocked(cid, cur)
		switched = append(switched, cur.ID)
	}
	_, wasOnline := o.Registry.Lookup(u.ID)
	prev, replaced, ok := o.Registry.Register(cid, *u)
	if !ok {
		o.mu.Unlock()
		o.mirror(ctx, switched...)
		return core.ErrConnClosed
	}
	if replaced {
		o.releaseLocked(prev, *u, domain.ReasonDisconnected)
		o.send(prev, protocol.NewSessionReplaced(u.ID))
		log.Info().Str("module", "orch").Str("user", string(u.ID)).Str("prev", string(prev)).Msg("session replaced")
	}
	for _, g := range groups {
		o.Rooms.Join(cid, domain.GroupRoom(g))
	}

	o.send(cid, protocol.NewLoggedIn(string(cid), *u))
	o.send(cid, protocol.NewOnlineUsers(o.Registry.OnlineUsers()))
	if !wasOnline {
		o.broadcastLoggedIn(cid, protocol.NewUserStatus(u.ID, true))
	}
	metrics.OnlineUsers.Set(float64(len(o.Registry.OnlineUsers())))
	o.mu.Unlock()

	log.Info().Str("module", "orch").Str("conn", string(cid)).Str("user", string(u.ID)).Int("groups", len(groups)).Msg("logged in")
	o.mirror(ctx, append(switched, u.ID)...)
	return nil
}

// JoinGroupRoom adds the connection to the live room of a group the user
// durably belongs to. Joining twice is a no-op.
func (o *Orchestrator) JoinGroupRoom(ctx context.Context, cid core.ConnID, ev protocol.JoinGroupRoom) error {
	u, ok := o.Registry.UserOf(cid)
	if !ok {
		return core.ErrNotLoggedIn
	}
	gid := domain.GroupID(ev.GroupID)

	pctx, cancel := o.persistCtx(ctx)
	done := metrics.ObservePersist("is_group_member")
	member, err := o.Store.IsGroupMember(pctx, gid, u.ID)
	done(err)
	cancel()
	if err != nil {
		return fmt.Errorf("membership of %s in %s: %w: %v", u.ID, gid, core.ErrPersistence, err)
	}
	if !member {
		return fmt.Errorf("%s in %s: %w", u.ID, gid, core.ErrNotGroupMember)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	// The connection may have logged out or been displaced meanwhile.
	if cur, ok := o.Registry.UserOf(cid); !ok || cur.ID != u.ID {
		return core.ErrNotLoggedIn
	}
	o.Rooms.Join(cid, domain.GroupRoom(gid))
	o.send(cid, protocol.NewGroupJoined(gid))
	return nil
}

func (o *Orchestrator) OnlineUsers() []domain.UserID {
	return o.Registry.OnlineUsers()
}

// AttachGroup joins the live connections of members to a newly created group.
func (o *Orchestrator) AttachGroup(gid domain.GroupID, members []domain.UserID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, uid := range members {
		s, ok := o.Registry.Lookup(uid)
		if !ok {
			continue
		}
		if o.Rooms.Join(s.ID(), domain.GroupRoom(gid)) {
			o.sendTo(s, protocol.NewGroupJoined(gid))
		}
	}
}

// OnDisconnect tears down everything the connection held: every room,
// every call and its presence. Safe to call more than once.
func (o *Orchestrator) OnDisconnect(ctx context.Context, cid core.ConnID) {
	o.mu.Lock()
	if _, ok := o.Registry.Session(cid); !ok {
		o.mu.Unlock()
		return
	}
	u, loggedIn := o.Registry.UserOf(cid)
	if loggedIn {
		o.logoutLocked(cid, u)
	} else {
		o.releaseLocked(cid, domain.User{}, domain.ReasonDisconnected)
	}
	o.Registry.Detach(cid)
	o.mu.Unlock()

	metrics.Connections.Dec()
	log.Info().Str("module", "orch").Str("conn", string(cid)).Str("user", string(u.ID)).Msg("disconnected")
	if loggedIn {
		o.mirror(ctx, u.ID)
	}
}

// logoutLocked releases the connection's rooms and calls, unbinds the user
// and tells everybody else it went offline.
func (o *Orchestrator) logoutLocked(cid core.ConnID, u domain.User) {
	o.releaseLocked(cid, u, domain.ReasonDisconnected)
	if _, ok := o.Registry.Unregister(cid); !ok {
		return
	}
	o.broadcastLoggedIn(cid, protocol.NewUserStatus(u.ID, false))
	metrics.OnlineUsers.Set(float64(len(o.Registry.OnlineUsers())))
}

// releaseLocked removes cid from every room, notifying remaining call peers
// once, and ends any 1:1 call it takes part in.
func (o *Orchestrator) releaseLocked(cid core.ConnID, u domain.User, reason string) {
	for _, room := range o.Rooms.RoomsOf(cid) {
		if room.IsCall() {
			o.leaveCallLocked(cid, u.ID, room)
			continue
		}
		o.Rooms.Leave(cid, room)
	}
	for {
		c, ok := o.Calls.DirectOf(cid)
		if !ok {
			break
		}
		o.endDirectLocked(c.ID, cid, reason)
	}
}

// mirror writes the current registry state of each user to the presence
// mirror. Writes for one user are serialized and re-read the registry under
// that lock, so the last write always matches the hub.
func (o *Orchestrator) mirror(ctx context.Context, uids ...domain.UserID) {
	for _, uid := range uids {
		o.mirrorOne(ctx, uid)
	}
}

func (o *Orchestrator) mirrorOne(ctx context.Context, uid domain.UserID) {
	unlock := o.presenceLocks.Lock(string(uid))
	defer unlock()

	pctx, cancel := o.persistCtx(ctx)
	defer cancel()
	_, online := o.Registry.Lookup(uid)
	var err error
	if online {
		err = o.presence().Online(pctx, uid)
	} else {
		err = o.presence().Offline(pctx, uid)
	}
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("user", string(uid)).Bool("online", online).Msg("presence mirror")
	}
}
