package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"linktrack-platform/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertLink 插入或整行覆盖 link_id 对应的记录
// 除点击计数外，链接属性没有部分更新路径，所有变更都是整行替换
func (s *Store) UpsertLink(ctx context.Context, link *model.TrackedLink) error {
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(link).Error; err != nil {
		return fmt.Errorf("保存链接失败: %w", err)
	}
	return nil
}

// GetLink 按 link_id 查询链接，不存在返回 ErrNotFound
func (s *Store) GetLink(ctx context.Context, linkID string) (*model.TrackedLink, error) {
	var link model.TrackedLink
	if err := s.db.WithContext(ctx).Where("link_id = ?", linkID).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询链接失败: %w", err)
	}
	return &link, nil
}

// LinkIDExists 检查 link_id 是否已被占用，用于创建时的冲突重试
func (s *Store) LinkIDExists(ctx context.Context, linkID string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.TrackedLink{}).
		Where("link_id = ?", linkID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("查询链接是否存在失败: %w", err)
	}
	return count > 0, nil
}

// ListLinksByOwner 列出某个所有者的全部链接
func (s *Store) ListLinksByOwner(ctx context.Context, ownerID uint) ([]model.TrackedLink, error) {
	var links []model.TrackedLink
	if err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&links).Error; err != nil {
		return nil, fmt.Errorf("查询链接列表失败: %w", err)
	}
	return links, nil
}

// IncrementClick 原子地把点击计数加一
// link_id 不存在时静默跳过，调用方应当已经校验过存在性
func (s *Store) IncrementClick(ctx context.Context, linkID string) error {
	if err := s.db.WithContext(ctx).Model(&model.TrackedLink{}).
		Where("link_id = ?", linkID).
		Update("click_count", gorm.Expr("click_count + 1")).Error; err != nil {
		return fmt.Errorf("更新点击计数失败: %w", err)
	}
	return nil
}

// DeleteLinkCascade 级联删除: 先删活动记录，再删点击明细，最后删链接本身
// 按这个顺序执行，事务中途失败也不会留下指向已消失链接的孤儿行
func (s *Store) DeleteLinkCascade(ctx context.Context, linkID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("link_id = ?", linkID).Delete(&model.ActivityRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("link_id = ?", linkID).Delete(&model.ClickEvent{}).Error; err != nil {
			return err
		}
		return tx.Where("link_id = ?", linkID).Delete(&model.TrackedLink{}).Error
	})
	if err != nil {
		return fmt.Errorf("级联删除链接失败: %w", err)
	}
	return nil
}

// LinksClickedByUserInChat 找出绑定到指定会话、且该用户点击过的全部链接
// 会话匹配规则: 数字 ID 精确匹配，或用户名忽略大小写匹配，两者取或
// 这样群组改名后依然能靠数字 ID 命中，反之亦然
func (s *Store) LinksClickedByUserInChat(ctx context.Context, actorID, chatID int64, chatHandle string) ([]model.TrackedLink, error) {
	chatHandle = strings.TrimPrefix(chatHandle, "@")

	q := s.db.WithContext(ctx).Model(&model.TrackedLink{}).
		Distinct("links.*").
		Joins("INNER JOIN click_events ON click_events.link_id = links.link_id").
		Where("click_events.clicker_id = ?", actorID)

	switch {
	case chatHandle != "" && chatID != 0:
		q = q.Where("links.target_chat_id = ? OR LOWER(links.target_chat_handle) = LOWER(?)", chatID, chatHandle)
	case chatHandle != "":
		q = q.Where("LOWER(links.target_chat_handle) = LOWER(?)", chatHandle)
	case chatID != 0:
		q = q.Where("links.target_chat_id = ?", chatID)
	default:
		// 没有任何会话标识，无从匹配
		return nil, nil
	}

	var links []model.TrackedLink
	if err := q.Find(&links).Error; err != nil {
		return nil, fmt.Errorf("查询用户点击过的链接失败: %w", err)
	}
	return links, nil
}

// OwnerTotals 所有者维度的汇总统计
type OwnerTotals struct {
	TotalLinks    int64 `json:"total_links"`
	TotalClicks   int64 `json:"total_clicks"`
	TotalActivity int64 `json:"total_activity"`
}

// CountOwnerTotals 统计某个所有者的链接数、总点击数和总活动数
func (s *Store) CountOwnerTotals(ctx context.Context, ownerID uint) (*OwnerTotals, error) {
	var totals OwnerTotals
	db := s.db.WithContext(ctx)

	if err := db.Model(&model.TrackedLink{}).
		Where("owner_id = ?", ownerID).Count(&totals.TotalLinks).Error; err != nil {
		return nil, fmt.Errorf("统计链接数失败: %w", err)
	}
	if err := db.Model(&model.TrackedLink{}).
		Where("owner_id = ?", ownerID).
		Select("COALESCE(SUM(click_count), 0)").Scan(&totals.TotalClicks).Error; err != nil {
		return nil, fmt.Errorf("统计点击数失败: %w", err)
	}
	if err := db.Model(&model.ActivityRecord{}).
		Joins("INNER JOIN links ON links.link_id = activity_records.link_id").
		Where("links.owner_id = ?", ownerID).Count(&totals.TotalActivity).Error; err != nil {
		return nil, fmt.Errorf("统计活动数失败: %w", err)
	}
	return &totals, nil
}
