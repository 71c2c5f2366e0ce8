package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/Kairos/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *Store) AppendMessage(ctx context.Context, conversationID string, d domain.Draft) (*domain.Message, error) {
	row := Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       string(d.SenderID),
		Text:           d.Text,
		Type:           string(d.MediaType),
		MediaURL:       d.MediaRef,
		Status:         domain.StatusSent,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	m := row.toDomain()
	return &m, nil
}

// History returns the newest messages between a and b, oldest first.
func (s *Store) History(ctx context.Context, a, b domain.UserID, limit int) ([]domain.Message, error) {
	u1, u2 := domain.PairKey(a, b)
	db := s.db.WithContext(ctx)

	var conv Conversation
	err := db.Where("user1_id = ? AND user2_id = ?", string(u1), string(u2)).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []domain.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	var rows []Message
	if err := db.Where("conversation_id = ?", conv.ID).
		Order("seq DESC").
		Limit(historyLimit(limit)).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	out := make([]domain.Message, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func historyLimit(limit int) int {
	if limit <= 0 || limit > defaultHistoryLimit {
		return defaultHistoryLimit
	}
	return limit
}
