package store

import (
	"context"
	"fmt"
	"time"

	"linktrack-platform/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 被动遥测写入: 这些表不参与归因，失败只影响统计完整性
// 调用方（追踪服务、活动关联器）负责记录日志并继续

// TrackUser 记录一次用户交互，存在则刷新快照并累加计数
func (s *Store) TrackUser(ctx context.Context, user *model.TrackedUser) error {
	user.LastSeen = time.Now()
	user.InteractionCount = 1
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"username":          user.Username,
			"first_name":        user.FirstName,
			"last_name":         user.LastName,
			"language_code":     user.LanguageCode,
			"last_seen":         user.LastSeen,
			"interaction_count": gorm.Expr("interaction_count + 1"),
		}),
	}).Create(user).Error
	if err != nil {
		return fmt.Errorf("记录用户遥测失败: %w", err)
	}
	return nil
}

// GetTrackedUser 按用户 ID 读取遥测档案
func (s *Store) GetTrackedUser(ctx context.Context, userID int64) (*model.TrackedUser, error) {
	var user model.TrackedUser
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询用户遥测失败: %w", err)
	}
	return &user, nil
}

// SaveGroup 记录/刷新群组信息
func (s *Store) SaveGroup(ctx context.Context, group *model.TrackedGroup) error {
	group.LastSeen = time.Now()
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "chat_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"chat_type":   group.ChatType,
			"title":       group.Title,
			"handle":      group.Handle,
			"description": group.Description,
			"last_seen":   group.LastSeen,
		}),
	}).Create(group).Error
	if err != nil {
		return fmt.Errorf("记录群组遥测失败: %w", err)
	}
	return nil
}

// SaveMember 记录/刷新群组成员，按消息累加计数
func (s *Store) SaveMember(ctx context.Context, member *model.GroupMember) error {
	member.LastSeen = time.Now()
	member.MessageCount = 1
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "chat_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"username":      member.Username,
			"first_name":    member.FirstName,
			"last_name":     member.LastName,
			"last_seen":     member.LastSeen,
			"message_count": gorm.Expr("message_count + 1"),
		}),
	}).Create(member).Error
	if err != nil {
		return fmt.Errorf("记录成员遥测失败: %w", err)
	}
	return nil
}

// GetMember 读取群组成员档案
func (s *Store) GetMember(ctx context.Context, chatID, userID int64) (*model.GroupMember, error) {
	var member model.GroupMember
	err := s.db.WithContext(ctx).Where("chat_id = ? AND user_id = ?", chatID, userID).First(&member).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询成员遥测失败: %w", err)
	}
	return &member, nil
}
