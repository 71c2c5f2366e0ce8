package orch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dkeye/Kairos/internal/core"
	"github.com/dkeye/Kairos/internal/core/mock"
	"github.com/dkeye/Kairos/internal/domain"
	"github.com/dkeye/Kairos/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recPublisher struct {
	mu   sync.Mutex
	msgs []*domain.Message
}

func (p *recPublisher) Publish(_ context.Context, m *domain.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, m)
	return nil
}

func TestSendDirectToOfflineUserPersistsOnly(t *testing.T) {
	st := newStore(t)
	o := newOrch(st)
	pub := &recPublisher{}
	o.Events = pub
	a := login(t, o, "ca", "alice")

	err := o.SendDirect(context.Background(), a.cid, protocol.DirectMessage{TargetID: "bob", Text: "hi", ClientRef: "r1"})
	require.NoError(t, err)

	acks := a.sig.of(protocol.TypeMessageAck)
	require.Len(t, acks, 1)
	assert.NotEmpty(t, acks[0]["id"])
	assert.Equal(t, "r1", acks[0]["clientRef"])
	assert.Equal(t, domain.StatusSent, acks[0]["status"])
	assert.Empty(t, a.sig.of(protocol.TypeDirectMessage))

	hist, err := st.History(context.Background(), "bob", "alice", 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "hi", hist[0].Text)
	assert.Equal(t, acks[0]["id"], hist[0].ID)

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, hist[0].ID, pub.msgs[0].ID)
}

func TestSendDirectDeliversAndUpdatesPreview(t *testing.T) {
	st := newStore(t)
	o := newOrch(st)
	a := login(t, o, "ca", "alice")
	b := login(t, o, "cb", "bob")

	require.NoError(t, o.SendDirect(context.Background(), a.cid, protocol.DirectMessage{
		TargetID: "bob", MediaType: string(domain.MediaAudio), MediaRef: "/uploads/v.webm",
	}))

	got := b.sig.of(protocol.TypeDirectMessage)
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0]["senderId"])
	assert.Equal(t, "bob", got[0]["targetId"])
	assert.Equal(t, "audio", got[0]["mediaType"])
	assert.Empty(t, b.sig.of(protocol.TypeMessageAck))

	list, err := st.ListConversations(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "🎤 Voice Message", list[0].LastMessage)
}

func TestSendDirectValidation(t *testing.T) {
	o := newOrch(newStore(t))
	a := login(t, o, "ca", "alice")
	ctx := context.Background()

	assert.ErrorIs(t, o.SendDirect(ctx, a.cid, protocol.DirectMessage{TargetID: "alice", Text: "me"}), core.ErrInvalidTarget)
	assert.ErrorIs(t, o.SendDirect(ctx, a.cid, protocol.DirectMessage{TargetID: "bob"}), domain.ErrEmptyMessage)
	assert.ErrorIs(t, o.SendDirect(ctx, a.cid, protocol.DirectMessage{TargetID: "bob", Text: "x", MediaType: "gif"}), domain.ErrUnknownMediaType)

	anon := connect(o, "anon")
	assert.ErrorIs(t, o.SendDirect(ctx, anon.cid, protocol.DirectMessage{TargetID: "bob", Text: "x"}), core.ErrNotLoggedIn)
}

func TestConcurrentFirstMessagesShareOneConversation(t *testing.T) {
	st := newStore(t)
	o := newOrch(st)
	a := login(t, o, "ca", "alice")
	b := login(t, o, "cb", "bob")
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, o.SendDirect(ctx, a.cid, protocol.DirectMessage{TargetID: "bob", Text: fmt.Sprintf("a%d", i)}))
		}(i)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, o.SendDirect(ctx, b.cid, protocol.DirectMessage{TargetID: "alice", Text: fmt.Sprintf("b%d", i)}))
		}(i)
	}
	wg.Wait()

	for _, who := range [][2]domain.UserID{{"alice", "bob"}, {"bob", "alice"}} {
		hist, err := st.History(ctx, who[0], who[1], 0)
		require.NoError(t, err)
		assert.Len(t, hist, 2*n)
	}
	list, err := st.ListConversations(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// Live delivery order equals persisted order.
	hist, err := st.History(ctx, "alice", "bob", 0)
	require.NoError(t, err)
	var fromAlice []string
	for _, m := range hist {
		if m.SenderID == "alice" {
			fromAlice = append(fromAlice, m.ID)
		}
	}
	var delivered []string
	for _, ev := range b.sig.of(protocol.TypeDirectMessage) {
		delivered = append(delivered, ev["id"].(string))
	}
	assert.Equal(t, fromAlice, delivered)
}

func TestSendGroupFansOutToRoomOnly(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	g, err := st.CreateGroup(ctx, "team", "alice", []domain.UserID{"bob"})
	require.NoError(t, err)

	o := newOrch(st)
	a := login(t, o, "ca", "alice")
	b := login(t, o, "cb", "bob")
	c := login(t, o, "cc", "carol")

	require.NoError(t, o.SendGroup(ctx, a.cid, protocol.GroupMessage{GroupID: string(g.ID), Text: "hello team", ClientRef: "x"}))

	got := b.sig.of(protocol.TypeGroupMessage)
	require.Len(t, got, 1)
	assert.Equal(t, "hello team", got[0]["text"])
	assert.Equal(t, string(g.ID), got[0]["groupId"])
	assert.Empty(t, a.sig.of(protocol.TypeGroupMessage))
	assert.Len(t, a.sig.of(protocol.TypeMessageAck), 1)
	assert.Empty(t, c.sig.of(protocol.TypeGroupMessage))

	err = o.SendGroup(ctx, c.cid, protocol.GroupMessage{GroupID: string(g.ID), Text: "let me in"})
	assert.ErrorIs(t, err, core.ErrNotInRoom)

	hist, err := st.GroupHistory(ctx, g.ID, 0)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestPersistenceFailureAbortsFanOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := mock.NewMockPersistence(ctrl)
	p.EXPECT().ListGroupsOf(gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)
	p.EXPECT().GetOrCreateConversation(gomock.Any(), domain.UserID("alice"), domain.UserID("bob")).
		Return(&core.Conversation{ID: "conv-1"}, nil)
	p.EXPECT().AppendMessage(gomock.Any(), "conv-1", gomock.Any()).Return(nil, errors.New("disk full"))

	o := newOrch(p)
	a := login(t, o, "ca", "alice")
	b := login(t, o, "cb", "bob")

	err := o.SendDirect(context.Background(), a.cid, protocol.DirectMessage{TargetID: "bob", Text: "lost", ClientRef: "r9"})
	assert.ErrorIs(t, err, core.ErrPersistence)
	assert.Equal(t, "persistence_failure", core.Code(err))
	assert.Empty(t, b.sig.of(protocol.TypeDirectMessage))
	assert.Empty(t, a.sig.of(protocol.TypeMessageAck))
}

func TestPreviewFailureStillDelivers(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := mock.NewMockPersistence(ctrl)
	p.EXPECT().ListGroupsOf(gomock.Any(), gomock.Any()).Return([]domain.GroupID{"g1"}, nil).Times(2)
	p.EXPECT().AppendGroupMessage(gomock.Any(), domain.GroupID("g1"), gomock.Any()).
		Return(&domain.Message{ID: "m1", GroupID: "g1", SenderID: "alice", Text: "yo", MediaType: domain.MediaText}, nil)
	p.EXPECT().UpdateGroupPreview(gomock.Any(), domain.GroupID("g1"), "yo", gomock.Any()).Return(errors.New("timeout"))

	o := newOrch(p)
	a := login(t, o, "ca", "alice")
	b := login(t, o, "cb", "bob")

	require.NoError(t, o.SendGroup(context.Background(), a.cid, protocol.GroupMessage{GroupID: "g1", Text: "yo"}))
	assert.Len(t, b.sig.of(protocol.TypeGroupMessage), 1)
	assert.Len(t, a.sig.of(protocol.TypeMessageAck), 1)
}

func TestLoginFailsWhenGroupsUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := mock.NewMockPersistence(ctrl)
	p.EXPECT().ListGroupsOf(gomock.Any(), domain.UserID("alice")).Return(nil, errors.New("db down"))

	o := newOrch(p)
	c := connect(o, "ca")
	err := o.Login(context.Background(), c.cid, protocol.Login{UserID: "alice"})
	assert.ErrorIs(t, err, core.ErrPersistence)
	_, ok := o.Registry.Lookup("alice")
	assert.False(t, ok)
	assert.Empty(t, c.sig.of(protocol.TypeLoggedIn))
}

func TestTypingNeverEchoedNorStored(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := mock.NewMockPersistence(ctrl)
	p.EXPECT().ListGroupsOf(gomock.Any(), gomock.Any()).Return([]domain.GroupID{"g1"}, nil).Times(3)

	o := newOrch(p)
	a := login(t, o, "ca", "alice")
	b := login(t, o, "cb", "bob")
	c := login(t, o, "cc", "carol")

	require.NoError(t, o.NotifyTyping(a.cid, protocol.Typing{Target: "bob"}))
	require.NoError(t, o.NotifyTyping(a.cid, protocol.Typing{Target: "bob", Stop: true}))
	require.NoError(t, o.NotifyTyping(a.cid, protocol.Typing{Target: "g1", IsGroup: true}))

	assert.Len(t, b.sig.of(protocol.TypeTyping), 2)
	assert.Len(t, b.sig.of(protocol.TypeStopTyping), 1)
	assert.Len(t, c.sig.of(protocol.TypeTyping), 1)
	assert.Equal(t, "alice", c.sig.of(protocol.TypeTyping)[0]["fromId"])
	assert.Empty(t, a.sig.of(protocol.TypeTyping))
	assert.Empty(t, a.sig.of(protocol.TypeStopTyping))
}
