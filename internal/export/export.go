package export

import (
	"context"
	"sync"
	"time"

	"linktrack-platform/internal/model"
	"linktrack-platform/internal/platform"
	"linktrack-platform/internal/store"

	"go.uber.org/zap"
)

// 成员状态兜底值
const (
	statusUnknown   = "Unknown"
	statusNotJoined = "Not Joined"
)

// previewCap 活动导出中消息预览的长度上限
const previewCap = 100

// Aggregator 导出聚合器: 在链接、点击、活动三份数据上做纯读取的报表
type Aggregator struct {
	store      *store.Store
	membership platform.MembershipChecker
	workers    int
	logger     *zap.SugaredLogger
}

// New 创建聚合器，workers 限制成员状态查询的并发扇出
func New(st *store.Store, membership platform.MembershipChecker, workers int, logger *zap.SugaredLogger) *Aggregator {
	if workers <= 0 {
		workers = 1
	}
	return &Aggregator{
		store:      st,
		membership: membership,
		workers:    workers,
		logger:     logger.Named("export"),
	}
}

// RosterRow 名单报表的一行: 每个点击过的用户一行，取首次点击时间
type RosterRow struct {
	UserID        int64     `json:"user_id"`
	FirstName     string    `json:"first_name"`
	Username      string    `json:"username"`
	Language      string    `json:"language"`
	FirstClick    time.Time `json:"first_click"`
	JoinStatus    string    `json:"join_status"`
	ActivityCount int64     `json:"activity_count"`
}

// Roster 生成去重访客名单，附带成员状态和活动计数
// 成员状态查询是大名单下的主要耗时来源，用有界并发扇出压平延迟；
// 单个查询失败记为 "Not Joined"，超时未完成记为 "Unknown"，不拖垮整个报表
func (a *Aggregator) Roster(ctx context.Context, link *model.TrackedLink) ([]RosterRow, error) {
	base, err := a.store.RosterByLink(ctx, link.LinkID)
	if err != nil {
		return nil, err
	}

	rows := make([]RosterRow, len(base))
	sem := make(chan struct{}, a.workers)
	var wg sync.WaitGroup

	for i, entry := range base {
		rows[i] = RosterRow{
			UserID:     entry.ClickerID,
			FirstName:  entry.FirstName,
			Username:   entry.Username,
			Language:   entry.LanguageCode,
			FirstClick: entry.FirstClick,
			JoinStatus: statusUnknown,
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, userID int64) {
			defer wg.Done()
			defer func() { <-sem }()

			if a.membership != nil {
				status, err := a.membership.MemberStatus(ctx, link.TargetReference, userID)
				switch {
				case err != nil && ctx.Err() != nil:
					rows[i].JoinStatus = statusUnknown
				case err != nil:
					rows[i].JoinStatus = statusNotJoined
				case status != "":
					rows[i].JoinStatus = status
				}
			}

			count, err := a.store.CountActivity(ctx, link.LinkID, userID)
			if err != nil {
				a.logger.Warnf("统计用户 %d 活动数失败: %v", userID, err)
				return
			}
			rows[i].ActivityCount = count
		}(i, entry.ClickerID)
	}
	wg.Wait()

	return rows, nil
}

// Summary 汇总报表
type Summary struct {
	Target      string              `json:"target"`
	TotalClicks int64               `json:"total_clicks"`
	UniqueUsers int64               `json:"unique_users"`
	Sources     []store.SourceCount `json:"sources"`
}

// BuildSummary 生成汇总报表: 总点击（不去重）、去重访客数、来源分布（倒序）
func (a *Aggregator) BuildSummary(ctx context.Context, link *model.TrackedLink) (*Summary, error) {
	total, err := a.store.CountClicks(ctx, link.LinkID)
	if err != nil {
		return nil, err
	}
	unique, err := a.store.CountUniqueClickers(ctx, link.LinkID)
	if err != nil {
		return nil, err
	}
	sources, err := a.store.SourceCounts(ctx, link.LinkID)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Target:      link.TargetReference,
		TotalClicks: total,
		UniqueUsers: unique,
		Sources:     sources,
	}, nil
}

// Activity 某条链接的全部活动记录，按时间倒序
func (a *Aggregator) Activity(ctx context.Context, link *model.TrackedLink) ([]model.ActivityRecord, error) {
	return a.store.ActivityByLink(ctx, link.LinkID)
}
