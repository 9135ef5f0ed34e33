package store

import (
	"context"
	"fmt"
	"time"

	"linktrack-platform/internal/model"

	"gorm.io/gorm"
)

// RecordClick 在一个事务内完成两件事: 链接计数加一、追加一条点击明细
// 两者必须同时生效或同时失败，计数器和明细表不允许出现分叉
func (s *Store) RecordClick(ctx context.Context, linkID string, event model.ClickEvent) (*model.ClickEvent, error) {
	event.LinkID = linkID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.TrackedLink{}).
			Where("link_id = ?", linkID).
			Update("click_count", gorm.Expr("click_count + 1")).Error; err != nil {
			return err
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, fmt.Errorf("记录点击失败: %w", err)
	}
	return &event, nil
}

// RosterRow 去重后的访客行: 按 clicker_id 分组，取最早一次点击
type RosterRow struct {
	ClickerID    int64     `json:"clicker_id"`
	FirstName    string    `json:"first_name"`
	Username     string    `json:"username"`
	LanguageCode string    `json:"language_code"`
	FirstClick   time.Time `json:"first_click"`
}

// RosterByLink 查询某条链接的去重访客名单，按首次点击时间倒序
func (s *Store) RosterByLink(ctx context.Context, linkID string) ([]RosterRow, error) {
	var rows []RosterRow
	if err := s.db.WithContext(ctx).Model(&model.ClickEvent{}).
		Select("clicker_id, first_name, username, language_code, MIN(timestamp) AS first_click").
		Where("link_id = ?", linkID).
		Group("clicker_id").
		Order("first_click DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询访客名单失败: %w", err)
	}
	return rows, nil
}

// SourceCount 按来源标签统计的点击数
type SourceCount struct {
	Source string `json:"source"`
	Count  int64  `json:"count"`
}

// SourceCounts 按来源标签分组统计点击数，无标签归入 "None"，按数量倒序
func (s *Store) SourceCounts(ctx context.Context, linkID string) ([]SourceCount, error) {
	var counts []SourceCount
	if err := s.db.WithContext(ctx).Model(&model.ClickEvent{}).
		Select("COALESCE(NULLIF(source, ''), 'None') AS source, COUNT(*) AS count").
		Where("link_id = ?", linkID).
		Group("COALESCE(NULLIF(source, ''), 'None')").
		Order("count DESC").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("统计来源失败: %w", err)
	}
	return counts, nil
}

// CountClicks 某条链接的点击事件总数（不去重）
func (s *Store) CountClicks(ctx context.Context, linkID string) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.ClickEvent{}).
		Where("link_id = ?", linkID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计点击数失败: %w", err)
	}
	return count, nil
}

// CountUniqueClickers 某条链接的去重访客数
func (s *Store) CountUniqueClickers(ctx context.Context, linkID string) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.ClickEvent{}).
		Where("link_id = ?", linkID).
		Distinct("clicker_id").Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计去重访客数失败: %w", err)
	}
	return count, nil
}

// ClickEventsByLink 某条链接的全部点击明细，按时间倒序
func (s *Store) ClickEventsByLink(ctx context.Context, linkID string) ([]model.ClickEvent, error) {
	var events []model.ClickEvent
	if err := s.db.WithContext(ctx).
		Where("link_id = ?", linkID).
		Order("timestamp DESC").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("查询点击明细失败: %w", err)
	}
	return events, nil
}
