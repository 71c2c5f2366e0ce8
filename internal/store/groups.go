package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Kairos/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrGroupNotFound = errors.New("group not found")

// CreateGroup stores a group and its members; the admin is always a member.
func (s *Store) CreateGroup(ctx context.Context, name string, admin domain.UserID, members []domain.UserID) (*GroupInfo, error) {
	g := Group{
		ID:          uuid.NewString(),
		Name:        name,
		AdminID:     string(admin),
		LastMessage: domain.GroupStartPreview,
	}
	all := append([]domain.UserID{admin}, members...)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&g).Error; err != nil {
			return err
		}
		for _, uid := range all {
			if err := addMember(tx, g.ID, uid); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	uniq, err := s.GroupMembers(ctx, domain.GroupID(g.ID))
	if err != nil {
		return nil, err
	}
	return &GroupInfo{
		ID:          domain.GroupID(g.ID),
		Name:        g.Name,
		AdminID:     admin,
		LastMessage: g.LastMessage,
		Members:     uniq,
		CreatedAt:   g.CreatedAt,
	}, nil
}

func (s *Store) AddGroupMember(ctx context.Context, groupID domain.GroupID, uid domain.UserID) error {
	var n int64
	db := s.db.WithContext(ctx)
	if err := db.Model(&Group{}).Where("id = ?", string(groupID)).Count(&n).Error; err != nil {
		return fmt.Errorf("add group member: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("add group member %s: %w", groupID, ErrGroupNotFound)
	}
	if err := addMember(db, string(groupID), uid); err != nil {
		return fmt.Errorf("add group member: %w", err)
	}
	return nil
}

func addMember(db *gorm.DB, groupID string, uid domain.UserID) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&GroupMember{GroupID: groupID, UserID: string(uid), JoinedAt: time.Now().UTC()}).Error
}

func (s *Store) GroupMembers(ctx context.Context, groupID domain.GroupID) ([]domain.UserID, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&GroupMember{}).
		Where("group_id = ?", string(groupID)).
		Order("user_id").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("group members: %w", err)
	}
	out := make([]domain.UserID, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.UserID(id))
	}
	return out, nil
}

func (s *Store) ListGroupsOf(ctx context.Context, uid domain.UserID) ([]domain.GroupID, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&GroupMember{}).
		Where("user_id = ?", string(uid)).
		Pluck("group_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	out := make([]domain.GroupID, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.GroupID(id))
	}
	return out, nil
}

func (s *Store) IsGroupMember(ctx context.Context, groupID domain.GroupID, uid domain.UserID) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&GroupMember{}).
		Where("group_id = ? AND user_id = ?", string(groupID), string(uid)).
		Count(&n).Error; err != nil {
		return false, fmt.Errorf("is group member: %w", err)
	}
	return n > 0, nil
}

func (s *Store) AppendGroupMessage(ctx context.Context, groupID domain.GroupID, d domain.Draft) (*domain.Message, error) {
	row := GroupMessage{
		ID:       uuid.NewString(),
		GroupID:  string(groupID),
		SenderID: string(d.SenderID),
		Text:     d.Text,
		Type:     string(d.MediaType),
		MediaURL: d.MediaRef,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("append group message: %w", err)
	}
	m := row.toDomain()
	return &m, nil
}

func (s *Store) UpdateGroupPreview(ctx context.Context, groupID domain.GroupID, preview string, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&Group{}).
		Where("id = ?", string(groupID)).
		Updates(map[string]any{"last_message": preview, "updated_at": at})
	if res.Error != nil {
		return fmt.Errorf("update group preview: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update group preview %s: %w", groupID, ErrGroupNotFound)
	}
	return nil
}

// GroupHistory returns the newest messages of a group, oldest first.
func (s *Store) GroupHistory(ctx context.Context, groupID domain.GroupID, limit int) ([]domain.Message, error) {
	var rows []GroupMessage
	if err := s.db.WithContext(ctx).
		Where("group_id = ?", string(groupID)).
		Order("seq DESC").
		Limit(historyLimit(limit)).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("group history: %w", err)
	}
	out := make([]domain.Message, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}
