package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Kairos/internal/app"
	"github.com/dkeye/Kairos/internal/app/orch"
	"github.com/dkeye/Kairos/internal/config"
	"github.com/dkeye/Kairos/internal/domain"
	"github.com/dkeye/Kairos/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T, jwtSecret string) (http.Handler, *orch.Orchestrator) {
	t.Helper()
	st, err := store.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	o := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    app.NewMembership(),
		Calls:    app.NewCallBook(),
		Store:    st,
		Policy:   app.SimplePolicy{},
	}
	cfg := &config.Config{
		Mode:       "test",
		Secret:     "test-secret",
		StaticPath: t.TempDir(),
		PingPeriod: time.Minute,
		Auth:       config.AuthConfig{JWTSecret: jwtSecret},
	}
	return SetupRouter(context.Background(), cfg, o, st), o
}

func get(h http.Handler, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthzSetsClientCookie(t *testing.T) {
	h, _ := newRouter(t, "")
	w := get(h, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "KairosSessions=")
}

func TestMetricsExposed(t *testing.T) {
	h, _ := newRouter(t, "")
	w := get(h, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "kairos_ws_connections")
}

func TestRoomsListsLiveRooms(t *testing.T) {
	h, o := newRouter(t, "")
	o.Rooms.Join("c1", domain.GroupRoom("g1"))

	w := get(h, "/api/rooms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Rooms []app.RoomInfo `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Rooms, 1)
	assert.Equal(t, 1, body.Rooms[0].MemberCount)
}

func TestWebSocketRequiresToken(t *testing.T) {
	const secret = "jwt-secret"
	h, _ := newRouter(t, secret)

	w := get(h, "/api/ws", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	bad, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice"}).SignedString([]byte("other"))
	require.NoError(t, err)
	w = get(h, "/api/ws?token="+bad, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	good, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	// A valid token reaches the upgrader, which rejects a plain GET.
	w = get(h, "/api/ws", http.Header{"Authorization": {"Bearer " + good}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebSocketLoginPinnedToTokenSubject(t *testing.T) {
	const secret = "jwt-secret"
	h, _ := newRouter(t, secret)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?token=" + token
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	read := func() map[string]any {
		require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
		var m map[string]any
		require.NoError(t, ws.ReadJSON(&m))
		return m
	}

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "login", "userId": "bob"}))
	e := read()
	assert.Equal(t, "error", e["type"])
	assert.Equal(t, "identity_mismatch", e["error"])

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "login", "userId": "alice"}))
	assert.Equal(t, "logged_in", read()["type"])
}
