package store

import (
	"time"

	"github.com/dkeye/Kairos/internal/core"
	"github.com/dkeye/Kairos/internal/domain"
)

// Conversation pairs two users. User1ID <= User2ID, so the unique index
// holds one row per pair regardless of who wrote first.
type Conversation struct {
	ID          string `gorm:"primaryKey;size:36"`
	User1ID     string `gorm:"size:64;not null;uniqueIndex:idx_conversations_pair"`
	User2ID     string `gorm:"size:64;not null;uniqueIndex:idx_conversations_pair"`
	LastMessage string
	CreatedAt   time.Time
	UpdatedAt   time.Time `gorm:"index"`
}

// Message rows are ordered by Seq, which also fixes delivery order.
type Message struct {
	Seq            uint64    `gorm:"primaryKey;autoIncrement"`
	ID             string    `gorm:"size:36;uniqueIndex;not null"`
	ConversationID string    `gorm:"size:36;index;not null"`
	SenderID       string    `gorm:"size:64;not null"`
	Text           string    `gorm:"type:text"`
	Type           string    `gorm:"size:20;default:text"`
	MediaURL       string    `gorm:"type:text"`
	Status         string    `gorm:"size:20;default:sent"`
	CreatedAt      time.Time `gorm:"index"`
}

type Group struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"size:100;not null"`
	AdminID     string `gorm:"size:64"`
	LastMessage string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type GroupMember struct {
	GroupID  string `gorm:"primaryKey;size:36"`
	UserID   string `gorm:"primaryKey;size:64;index"`
	JoinedAt time.Time
}

type GroupMessage struct {
	Seq       uint64    `gorm:"primaryKey;autoIncrement"`
	ID        string    `gorm:"size:36;uniqueIndex;not null"`
	GroupID   string    `gorm:"size:36;index;not null"`
	SenderID  string    `gorm:"size:64;not null"`
	Text      string    `gorm:"type:text"`
	Type      string    `gorm:"size:20;default:text"`
	MediaURL  string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index"`
}

func (c *Conversation) toCore() *core.Conversation {
	return &core.Conversation{
		ID:          c.ID,
		User1ID:     domain.UserID(c.User1ID),
		User2ID:     domain.UserID(c.User2ID),
		LastMessage: c.LastMessage,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (m *Message) toDomain() domain.Message {
	return domain.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       domain.UserID(m.SenderID),
		Text:           m.Text,
		MediaType:      domain.MediaType(m.Type),
		MediaRef:       m.MediaURL,
		Status:         m.Status,
		CreatedAt:      m.CreatedAt,
	}
}

func (m *GroupMessage) toDomain() domain.Message {
	return domain.Message{
		ID:        m.ID,
		GroupID:   domain.GroupID(m.GroupID),
		SenderID:  domain.UserID(m.SenderID),
		Text:      m.Text,
		MediaType: domain.MediaType(m.Type),
		MediaRef:  m.MediaURL,
		Status:    domain.StatusSent,
		CreatedAt: m.CreatedAt,
	}
}

// ConversationSummary is one sidebar row for a user.
type ConversationSummary struct {
	ConversationID string        `json:"conversationId"`
	OtherUserID    domain.UserID `json:"otherUserId"`
	LastMessage    string        `json:"lastMessage"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

type GroupInfo struct {
	ID          domain.GroupID  `json:"id"`
	Name        string          `json:"name"`
	AdminID     domain.UserID   `json:"adminId"`
	LastMessage string          `json:"lastMessage"`
	Members     []domain.UserID `json:"members"`
	CreatedAt   time.Time       `json:"createdAt"`
}
