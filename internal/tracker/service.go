package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"linktrack-platform/internal/linkid"
	"linktrack-platform/internal/model"
	"linktrack-platform/internal/platform"
	"linktrack-platform/internal/store"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	// ErrInvalidTarget 输入中提取不出有效的目标引用
	ErrInvalidTarget = errors.New("invalid target reference")
	// ErrCodeExhausted 连续多次生成的短码都发生冲突
	ErrCodeExhausted = errors.New("could not allocate a unique link id")
)

// maxCodeAttempts 创建链接时短码冲突的最大重试次数
const maxCodeAttempts = 10

// Service 追踪链接的核心服务: 创建、点击记录、列表、删除
type Service struct {
	store       *store.Store
	resolver    platform.ChatResolver
	redis       *redis.Client
	botUsername string
	cacheTTL    time.Duration
	logger      *zap.SugaredLogger
}

// NewService 创建追踪服务实例
func NewService(
	st *store.Store,
	resolver platform.ChatResolver,
	redisClient *redis.Client,
	botUsername string,
	cacheTTL time.Duration,
	logger *zap.SugaredLogger,
) *Service {
	return &Service{
		store:       st,
		resolver:    resolver,
		redis:       redisClient,
		botUsername: botUsername,
		cacheTTL:    cacheTTL,
		logger:      logger.Named("tracker"),
	}
}

// CreateLink 创建一条追踪链接
// 流程: 提取目标 -> 解析会话绑定 -> 生成短码（冲突则换码重试）-> 落库
// 会话解析失败只降级为未绑定链接，不阻塞创建
func (s *Service) CreateLink(ctx context.Context, ownerID uint, rawTarget, alias string) (*model.TrackedLink, error) {
	target := linkid.ExtractTarget(rawTarget)
	normalized := linkid.NormalizeTarget(target)
	if normalized == "" {
		return nil, ErrInvalidTarget
	}

	var binding platform.ChatBinding
	if s.resolver != nil {
		resolved, err := s.resolver.ResolveChat(ctx, target)
		if err != nil {
			s.logger.Warnf("解析目标会话失败，链接将不带会话绑定: %v", err)
		} else {
			binding = resolved
		}
	}

	// 生成短码并检查冲突，最多尝试 maxCodeAttempts 次
	var linkID, code string
	allocated := false
	for i := 0; i < maxCodeAttempts; i++ {
		c, err := linkid.NewCode()
		if err != nil {
			return nil, fmt.Errorf("生成短码失败: %w", err)
		}
		candidate := linkid.Build(normalized, c)
		exists, err := s.store.LinkIDExists(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if !exists {
			linkID, code = candidate, c
			allocated = true
			break
		}
	}
	if !allocated {
		s.logger.Warnf("已尝试 %d 次生成短码，目标 %s 均冲突", maxCodeAttempts, normalized)
		return nil, ErrCodeExhausted
	}

	link := &model.TrackedLink{
		LinkID:           linkID,
		OwnerID:          ownerID,
		TargetReference:  target,
		Code:             code,
		Alias:            alias,
		TargetChatID:     binding.ChatID,
		TargetChatHandle: binding.Handle,
	}
	if err := s.store.UpsertLink(ctx, link); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, linkID)
	return link, nil
}

// ClickResult 点击处理结果: 命中的链接和网关应当展示的目标地址
type ClickResult struct {
	Link      *model.TrackedLink `json:"link"`
	TargetURL string             `json:"target_url"`
}

// HandleClick 处理一次深链点击
// 载荷格式 target-code[-source]，前两段定位链接，剩余部分作为来源标签
func (s *Service) HandleClick(ctx context.Context, payload string, clicker platform.UserInfo) (*ClickResult, error) {
	target, code, source, err := linkid.Parse(payload)
	if err != nil {
		return nil, err
	}
	linkID := target + linkid.Separator + code

	link, err := s.lookupLink(ctx, linkID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.RecordClick(ctx, linkID, model.ClickEvent{
		ClickerID:    clicker.ID,
		FirstName:    clicker.FirstName,
		LastName:     clicker.LastName,
		Username:     clicker.Username,
		LanguageCode: clicker.LanguageCode,
		Source:       source,
	}); err != nil {
		return nil, err
	}

	// 被动遥测，失败不影响点击记录
	if err := s.store.TrackUser(ctx, &model.TrackedUser{
		UserID:       clicker.ID,
		Username:     clicker.Username,
		FirstName:    clicker.FirstName,
		LastName:     clicker.LastName,
		LanguageCode: clicker.LanguageCode,
		IsBot:        clicker.IsBot,
	}); err != nil {
		s.logger.Warnf("记录用户遥测失败: %v", err)
	}

	return &ClickResult{Link: link, TargetURL: TargetURL(link)}, nil
}

// ListLinks 列出所有者的全部链接
func (s *Service) ListLinks(ctx context.Context, ownerID uint) ([]model.TrackedLink, error) {
	return s.store.ListLinksByOwner(ctx, ownerID)
}

// GetOwnedLink 查询链接并校验所有权
// 所有权不匹配返回 ErrAccessDenied，调用方不应向请求者泄露链接是否存在
func (s *Service) GetOwnedLink(ctx context.Context, ownerID uint, linkID string) (*model.TrackedLink, error) {
	link, err := s.store.GetLink(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link.OwnerID != ownerID {
		return nil, store.ErrAccessDenied
	}
	return link, nil
}

// DeleteLink 校验所有权后级联删除链接及其全部点击/活动数据
func (s *Service) DeleteLink(ctx context.Context, ownerID uint, linkID string) error {
	if _, err := s.GetOwnedLink(ctx, ownerID, linkID); err != nil {
		return err
	}
	if err := s.store.DeleteLinkCascade(ctx, linkID); err != nil {
		return err
	}
	s.invalidateCache(ctx, linkID)
	return nil
}

// OwnerStats 所有者维度的汇总统计
func (s *Service) OwnerStats(ctx context.Context, ownerID uint) (*store.OwnerTotals, error) {
	return s.store.CountOwnerTotals(ctx, ownerID)
}

// DeepLink 生成发给用户的深链地址
func (s *Service) DeepLink(linkID string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", s.botUsername, linkID)
}

// TargetURL 链接目标的展示地址: 完整 URL 原样返回，用户名拼成 t.me 地址
func TargetURL(link *model.TrackedLink) string {
	if strings.Contains(link.TargetReference, "://") {
		return link.TargetReference
	}
	return "https://t.me/" + link.TargetReference
}

// lookupLink 点击热路径的链接查询，优先走 Redis 缓存
func (s *Service) lookupLink(ctx context.Context, linkID string) (*model.TrackedLink, error) {
	cacheKey := "link:" + linkID
	if s.redis != nil {
		if val, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var cached model.TrackedLink
			if json.Unmarshal([]byte(val), &cached) == nil {
				return &cached, nil
			}
		}
	}

	link, err := s.store.GetLink(ctx, linkID)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(link); err == nil {
			s.redis.Set(ctx, cacheKey, data, s.cacheTTL)
		}
	}
	return link, nil
}

func (s *Service) invalidateCache(ctx context.Context, linkID string) {
	if s.redis != nil {
		s.redis.Del(ctx, "link:"+linkID)
	}
}
