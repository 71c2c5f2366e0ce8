package signal

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Kairos/internal/app"
	"github.com/dkeye/Kairos/internal/app/orch"
	"github.com/dkeye/Kairos/internal/core"
	"github.com/dkeye/Kairos/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore keeps nothing; enough for presence, typing and calls.
type memStore struct{ core.Persistence }

func (memStore) ListGroupsOf(context.Context, domain.UserID) ([]domain.GroupID, error) {
	return nil, nil
}

func newServer(t *testing.T, opts Options) (*orch.Orchestrator, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	o := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    app.NewMembership(),
		Calls:    app.NewCallBook(),
		Store:    memStore{},
		Policy:   app.SimplePolicy{},
	}
	ctl := NewSignalWSController(o, opts)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		if sub := c.Query("as"); sub != "" {
			c.Set(SubjectKey, sub)
		}
		ctl.HandleSignal(context.Background(), c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return o, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

// next reads frames until one of the given type arrives.
func next(t *testing.T, ws *websocket.Conn, typ string) map[string]any {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var m map[string]any
		require.NoError(t, ws.ReadJSON(&m))
		if m["type"] == typ {
			return m
		}
	}
}

func TestSocketPingAndBadFrames(t *testing.T) {
	_, url := newServer(t, Options{})
	ws := dial(t, url)

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "ping"}))
	next(t, ws, "pong")

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "teleport"}))
	assert.Equal(t, "unknown_type", next(t, ws, "error")["error"])

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "direct_message"}))
	assert.Equal(t, "bad_payload", next(t, ws, "error")["error"])

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "typing", "target": "bob"}))
	assert.Equal(t, "not_logged_in", next(t, ws, "error")["error"])
}

func TestSocketLoginTypingAndDisconnect(t *testing.T) {
	o, url := newServer(t, Options{})
	alice := dial(t, url)
	bob := dial(t, url)

	require.NoError(t, alice.WriteJSON(map[string]any{"type": "login", "userId": "alice", "displayName": "Alice"}))
	next(t, alice, "logged_in")
	require.NoError(t, bob.WriteJSON(map[string]any{"type": "login", "userId": "bob"}))
	next(t, bob, "online_users")
	st := next(t, alice, "user_status")
	assert.Equal(t, "bob", st["userId"])

	require.NoError(t, alice.WriteJSON(map[string]any{"type": "typing", "target": "bob"}))
	assert.Equal(t, "alice", next(t, bob, "typing")["fromId"])

	require.NoError(t, bob.Close())
	off := next(t, alice, "user_status")
	assert.Equal(t, "offline", off["status"])
	require.Eventually(t, func() bool { return o.Registry.ConnCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestSocketRateLimitsMessages(t *testing.T) {
	_, url := newServer(t, Options{RateLimit: 1, RateInterval: time.Minute})
	ws := dial(t, url)

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "login", "userId": "alice"}))
	next(t, ws, "logged_in")

	// First event passes the limiter and fails on self-targeting.
	require.NoError(t, ws.WriteJSON(map[string]any{"type": "direct_message", "targetId": "alice", "text": "x", "clientRef": "1"}))
	assert.Equal(t, "invalid_target", next(t, ws, "error")["error"])

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "direct_message", "targetId": "alice", "text": "x", "clientRef": "2"}))
	e := next(t, ws, "error")
	assert.Equal(t, codeRateLimited, e["error"])
	assert.Equal(t, "2", e["ref"])
}

func TestSocketLoginMustMatchSubject(t *testing.T) {
	o, url := newServer(t, Options{})
	ws := dial(t, url+"?as=alice")

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "login", "userId": "bob"}))
	e := next(t, ws, "error")
	assert.Equal(t, "identity_mismatch", e["error"])
	assert.Equal(t, "bob", e["ref"])
	assert.Empty(t, o.OnlineUsers())

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "login", "userId": "alice"}))
	next(t, ws, "logged_in")
	assert.Equal(t, []domain.UserID{"alice"}, o.OnlineUsers())
}
