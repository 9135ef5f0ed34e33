package store

import (
	"context"
	"fmt"

	"linktrack-platform/internal/model"
)

// AppendActivity 追加一条活动记录，写入后只读
func (s *Store) AppendActivity(ctx context.Context, record *model.ActivityRecord) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("写入活动记录失败: %w", err)
	}
	return nil
}

// ActivityByLink 某条链接的全部活动记录，按时间倒序
func (s *Store) ActivityByLink(ctx context.Context, linkID string) ([]model.ActivityRecord, error) {
	var records []model.ActivityRecord
	if err := s.db.WithContext(ctx).
		Where("link_id = ?", linkID).
		Order("timestamp DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("查询活动记录失败: %w", err)
	}
	return records, nil
}

// CountActivity 统计活动记录数，actorID 为 0 时统计整条链接
func (s *Store) CountActivity(ctx context.Context, linkID string, actorID int64) (int64, error) {
	q := s.db.WithContext(ctx).Model(&model.ActivityRecord{}).Where("link_id = ?", linkID)
	if actorID != 0 {
		q = q.Where("actor_id = ?", actorID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计活动记录失败: %w", err)
	}
	return count, nil
}
