package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dkeye/Kairos/internal/domain"
	"github.com/dkeye/Kairos/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// HistoryStore is the read side of the gateway plus group creation.
type HistoryStore interface {
	History(ctx context.Context, a, b domain.UserID, limit int) ([]domain.Message, error)
	GroupHistory(ctx context.Context, groupID domain.GroupID, limit int) ([]domain.Message, error)
	ListConversations(ctx context.Context, uid domain.UserID) ([]store.ConversationSummary, error)
	CreateGroup(ctx context.Context, name string, admin domain.UserID, members []domain.UserID) (*store.GroupInfo, error)
}

// Hub is the slice of the live hub the REST surface needs.
type Hub interface {
	OnlineUsers() []domain.UserID
	AttachGroup(gid domain.GroupID, members []domain.UserID)
}

type Handlers struct {
	Store HistoryStore
	Hub   Hub
	RTC   webrtc.Configuration
}

type CreateGroupRequest struct {
	Name    string   `json:"name" binding:"required,max=100"`
	AdminID string   `json:"adminId" binding:"required"`
	Members []string `json:"members"`
}

func (h *Handlers) Register(api *gin.RouterGroup) {
	api.GET("/presence", h.presence)
	api.GET("/rtc/config", h.rtcConfig)
	api.GET("/conversations/:userId", h.conversations)
	api.GET("/messages/:user1/:user2", h.directHistory)
	api.GET("/groups/:groupId/messages", h.groupHistory)
	api.POST("/groups", h.createGroup)
}

func (h *Handlers) presence(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"users": h.Hub.OnlineUsers()})
}

// rtcConfig answers in the shape of a browser RTCConfiguration.
func (h *Handlers) rtcConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"iceServers":         h.RTC.ICEServers,
		"iceTransportPolicy": h.RTC.ICETransportPolicy.String(),
	})
}

func (h *Handlers) conversations(c *gin.Context) {
	list, err := h.Store.ListConversations(c.Request.Context(), domain.UserID(c.Param("userId")))
	if err != nil {
		serverError(c, "list conversations", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) directHistory(c *gin.Context) {
	msgs, err := h.Store.History(c.Request.Context(), domain.UserID(c.Param("user1")), domain.UserID(c.Param("user2")), limitParam(c))
	if err != nil {
		serverError(c, "history", err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *Handlers) groupHistory(c *gin.Context) {
	msgs, err := h.Store.GroupHistory(c.Request.Context(), domain.GroupID(c.Param("groupId")), limitParam(c))
	if err != nil {
		serverError(c, "group history", err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *Handlers) createGroup(c *gin.Context) {
	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid group"})
		return
	}
	members := make([]domain.UserID, 0, len(req.Members))
	for _, m := range req.Members {
		if m != "" {
			members = append(members, domain.UserID(m))
		}
	}
	g, err := h.Store.CreateGroup(c.Request.Context(), req.Name, domain.UserID(req.AdminID), members)
	if err != nil {
		serverError(c, "create group", err)
		return
	}
	h.Hub.AttachGroup(g.ID, g.Members)
	c.JSON(http.StatusCreated, g)
}

func limitParam(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return n
}

func serverError(c *gin.Context, op string, err error) {
	log.Error().Err(err).Str("module", "transport.http").Str("op", op).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": op + " failed"})
}
