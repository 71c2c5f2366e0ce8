package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dkeye/Kairos/internal/adapters/rtc"
	"github.com/dkeye/Kairos/internal/domain"
	"github.com/dkeye/Kairos/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHub struct {
	online   []domain.UserID
	attached map[domain.GroupID][]domain.UserID
}

func (f *fakeHub) OnlineUsers() []domain.UserID { return f.online }
func (f *fakeHub) AttachGroup(g domain.GroupID, m []domain.UserID) {
	f.attached[g] = m
}

func setup(t *testing.T) (*gin.Engine, *store.Store, *fakeHub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st, err := store.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	hub := &fakeHub{online: []domain.UserID{"alice"}, attached: map[domain.GroupID][]domain.UserID{}}
	h := &Handlers{Store: st, Hub: hub, RTC: rtc.Configuration(nil)}
	r := gin.New()
	h.Register(r.Group("/api"))
	return r, st, hub
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPresenceAndRTCConfig(t *testing.T) {
	r, _, _ := setup(t)

	w := do(r, http.MethodGet, "/api/presence", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"users":["alice"]}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/rtc/config", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stun:stun.l.google.com:19302")
}

func TestCreateGroupAndHistory(t *testing.T) {
	r, st, hub := setup(t)

	w := do(r, http.MethodPost, "/api/groups", CreateGroupRequest{Name: "team", AdminID: "alice", Members: []string{"bob", ""}})
	require.Equal(t, http.StatusCreated, w.Code)
	var g store.GroupInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &g))
	assert.ElementsMatch(t, []domain.UserID{"alice", "bob"}, hub.attached[g.ID])

	_, err := st.AppendGroupMessage(context.Background(), g.ID, domain.Draft{SenderID: "bob", Text: "hey", MediaType: domain.MediaText})
	require.NoError(t, err)

	w = do(r, http.MethodGet, "/api/groups/"+string(g.ID)+"/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var msgs []domain.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "hey", msgs[0].Text)

	w = do(r, http.MethodPost, "/api/groups", map[string]any{"members": []string{"x"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDirectHistoryAndConversations(t *testing.T) {
	r, st, _ := setup(t)
	ctx := context.Background()
	conv, err := st.GetOrCreateConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	_, err = st.AppendMessage(ctx, conv.ID, domain.Draft{SenderID: "alice", Text: "hi", MediaType: domain.MediaText})
	require.NoError(t, err)

	w := do(r, http.MethodGet, "/api/messages/bob/alice?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"text":"hi"`)

	w = do(r, http.MethodGet, "/api/conversations/alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"otherUserId":"bob"`)
}
