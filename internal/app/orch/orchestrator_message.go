package orch

import (
	"context"
	"fmt"
	"time"

	"github.com/dkeye/Kairos/internal/core"
	"github.com/dkeye/Kairos/internal/domain"
	"github.com/dkeye/Kairos/internal/metrics"
	"github.com/dkeye/Kairos/internal/protocol"
	"github.com/rs/zerolog/log"
)

// SendDirect persists a message between the sender and ev.TargetID, then
// delivers it to the target's live connection (if any) and acks the sender.
// Nothing is delivered unless the message is durable.
func (o *Orchestrator) SendDirect(ctx context.Context, cid core.ConnID, ev protocol.DirectMessage) error {
	sender, ok := o.Registry.UserOf(cid)
	if !ok {
		return core.ErrNotLoggedIn
	}
	target := domain.UserID(ev.TargetID)
	if target == sender.ID {
		return fmt.Errorf("message to self: %w", core.ErrInvalidTarget)
	}
	d := domain.Draft{SenderID: sender.ID, Text: ev.Text, MediaType: domain.MediaType(ev.MediaType), MediaRef: ev.MediaRef}
	if err := d.Validate(); err != nil {
		return err
	}

	u1, u2 := domain.PairKey(sender.ID, target)
	unlock := o.convLocks.Lock("dm:" + string(u1) + ":" + string(u2))
	defer unlock()

	pctx, cancel := o.persistCtx(ctx)
	defer cancel()

	done := metrics.ObservePersist("get_or_create_conversation")
	conv, err := o.Store.GetOrCreateConversation(pctx, sender.ID, target)
	done(err)
	if err != nil {
		return fmt.Errorf("conversation %s/%s: %w: %v", u1, u2, core.ErrPersistence, err)
	}

	done = metrics.ObservePersist("append_message")
	msg, err := o.Store.AppendMessage(pctx, conv.ID, d)
	done(err)
	if err != nil {
		return fmt.Errorf("append to %s: %w: %v", conv.ID, core.ErrPersistence, err)
	}

	done = metrics.ObservePersist("update_conversation_preview")
	err = o.Store.UpdateConversationPreview(pctx, conv.ID, domain.Preview(msg.MediaType, msg.Text), msg.CreatedAt)
	done(err)
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("conversation", conv.ID).Msg("preview update failed")
	}

	if s, ok := o.Registry.Lookup(target); ok {
		o.sendTo(s, protocol.NewDirectMessage(target, *msg))
	} else {
		log.Debug().Str("module", "orch").Str("target", string(target)).Str("message", msg.ID).Msg("target offline, persisted only")
	}
	o.send(cid, protocol.NewMessageAck(ev.ClientRef, target, *msg))
	metrics.MessagesRouted.WithLabelValues("direct").Inc()

	o.publish(conv.ID, msg)
	return nil
}

// SendGroup persists a group message and fans it out to every other
// connection currently in the group room. The sender must be in the room.
func (o *Orchestrator) SendGroup(ctx context.Context, cid core.ConnID, ev protocol.GroupMessage) error {
	sender, ok := o.Registry.UserOf(cid)
	if !ok {
		return core.ErrNotLoggedIn
	}
	gid := domain.GroupID(ev.GroupID)
	room := domain.GroupRoom(gid)
	if !o.Rooms.Contains(room, cid) {
		return fmt.Errorf("group %s: %w", gid, core.ErrNotInRoom)
	}
	d := domain.Draft{SenderID: sender.ID, Text: ev.Text, MediaType: domain.MediaType(ev.MediaType), MediaRef: ev.MediaRef}
	if err := d.Validate(); err != nil {
		return err
	}

	unlock := o.convLocks.Lock("group:" + string(gid))
	defer unlock()

	pctx, cancel := o.persistCtx(ctx)
	defer cancel()

	done := metrics.ObservePersist("append_group_message")
	msg, err := o.Store.AppendGroupMessage(pctx, gid, d)
	done(err)
	if err != nil {
		return fmt.Errorf("append to group %s: %w: %v", gid, core.ErrPersistence, err)
	}

	done = metrics.ObservePersist("update_group_preview")
	err = o.Store.UpdateGroupPreview(pctx, gid, domain.Preview(msg.MediaType, msg.Text), msg.CreatedAt)
	done(err)
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("group", string(gid)).Msg("preview update failed")
	}

	out := protocol.NewGroupMessage(*msg)
	for _, member := range o.Rooms.MembersOf(room) {
		if member == cid {
			continue
		}
		o.send(member, out)
	}
	o.send(cid, protocol.NewMessageAck(ev.ClientRef, "", *msg))
	metrics.MessagesRouted.WithLabelValues("group").Inc()

	o.publish(string(gid), msg)
	return nil
}

func (o *Orchestrator) publish(key string, msg *domain.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := o.events().Publish(ctx, msg); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("key", key).Str("message", msg.ID).Msg("publish failed")
	}
}
