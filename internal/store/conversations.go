package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Kairos/internal/core"
	"github.com/dkeye/Kairos/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const conversationAttempts = 3

// GetOrCreateConversation returns the single conversation of a pair,
// creating it when missing. Concurrent callers for the same pair race on the
// unique pair index; the loser re-reads the winner's row.
func (s *Store) GetOrCreateConversation(ctx context.Context, a, b domain.UserID) (*core.Conversation, error) {
	u1, u2 := domain.PairKey(a, b)
	db := s.db.WithContext(ctx)

	for attempt := 1; attempt <= conversationAttempts; attempt++ {
		var row Conversation
		err := db.Where("user1_id = ? AND user2_id = ?", string(u1), string(u2)).First(&row).Error
		if err == nil {
			return row.toCore(), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find conversation: %w", err)
		}

		row = Conversation{
			ID:          uuid.NewString(),
			User1ID:     string(u1),
			User2ID:     string(u2),
			LastMessage: domain.ConversationStartPreview,
		}
		err = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user1_id"}, {Name: "user2_id"}},
			DoNothing: true,
		}).Create(&row).Error
		switch {
		case err == nil, errors.Is(err, gorm.ErrDuplicatedKey):
			// Either ours landed or somebody else's did; the next read decides.
			log.Debug().Str("module", "store").Str("user1", string(u1)).Str("user2", string(u2)).Int("attempt", attempt).Msg("conversation insert settled")
		default:
			return nil, fmt.Errorf("create conversation: %w", err)
		}
	}
	return nil, fmt.Errorf("create conversation %s/%s: gave up after %d attempts", u1, u2, conversationAttempts)
}

func (s *Store) UpdateConversationPreview(ctx context.Context, conversationID, preview string, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]any{"last_message": preview, "updated_at": at})
	if res.Error != nil {
		return fmt.Errorf("update conversation preview: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update conversation preview %s: %w", conversationID, gorm.ErrRecordNotFound)
	}
	return nil
}

// ListConversations returns the sidebar of uid, most recent first.
func (s *Store) ListConversations(ctx context.Context, uid domain.UserID) ([]ConversationSummary, error) {
	var rows []Conversation
	err := s.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", string(uid), string(uid)).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	out := make([]ConversationSummary, 0, len(rows))
	for _, r := range rows {
		other := r.User1ID
		if other == string(uid) {
			other = r.User2ID
		}
		out = append(out, ConversationSummary{
			ConversationID: r.ID,
			OtherUserID:    domain.UserID(other),
			LastMessage:    r.LastMessage,
			UpdatedAt:      r.UpdatedAt,
		})
	}
	return out, nil
}
