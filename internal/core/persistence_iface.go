package core

import (
	"context"
	"time"

	"github.com/dkeye/Kairos/internal/domain"
)

//go:generate mockgen -destination=mock/persistence_mock.go -package=mock github.com/dkeye/Kairos/internal/core Persistence

type Conversation struct {
	ID          string        `json:"id"`
	User1ID     domain.UserID `json:"user1Id"`
	User2ID     domain.UserID `json:"user2Id"`
	LastMessage string        `json:"lastMessage"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Persistence is the durable store the hub writes through.
// Implementations must be safe for concurrent use, and
// GetOrCreateConversation must never create two rows for one pair.
type Persistence interface {
	GetOrCreateConversation(ctx context.Context, a, b domain.UserID) (*Conversation, error)
	AppendMessage(ctx context.Context, conversationID string, d domain.Draft) (*domain.Message, error)
	AppendGroupMessage(ctx context.Context, groupID domain.GroupID, d domain.Draft) (*domain.Message, error)
	UpdateConversationPreview(ctx context.Context, conversationID, preview string, at time.Time) error
	UpdateGroupPreview(ctx context.Context, groupID domain.GroupID, preview string, at time.Time) error
	ListGroupsOf(ctx context.Context, userID domain.UserID) ([]domain.GroupID, error)
	IsGroupMember(ctx context.Context, groupID domain.GroupID, userID domain.UserID) (bool, error)
}
