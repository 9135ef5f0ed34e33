package correlator

import (
	"context"

	"linktrack-platform/internal/model"
	"linktrack-platform/internal/platform"
	"linktrack-platform/internal/store"

	"go.uber.org/zap"
)

// Correlator 群组流量的被动监听器
// 把群内发言关联回当初把该用户带进来的那条追踪链接
type Correlator struct {
	store  *store.Store
	logger *zap.SugaredLogger
}

// New 创建关联器实例
func New(st *store.Store, logger *zap.SugaredLogger) *Correlator {
	return &Correlator{store: st, logger: logger.Named("correlator")}
}

// HandleMessage 处理一条群组消息
// 匹配条件: 链接绑定的会话与消息会话一致（数字 ID 或忽略大小写的用户名），
// 且发言者此前点击过该链接。命中几条就写几条活动记录。
// 任何错误只记日志不外抛，关联失败绝不影响消息链路
func (c *Correlator) HandleMessage(ctx context.Context, msg platform.IncomingMessage) {
	if msg.From == nil || msg.From.IsBot {
		return
	}

	// 被动遥测: 群组与成员档案
	if err := c.store.TrackUser(ctx, &model.TrackedUser{
		UserID:       msg.From.ID,
		Username:     msg.From.Username,
		FirstName:    msg.From.FirstName,
		LastName:     msg.From.LastName,
		LanguageCode: msg.From.LanguageCode,
	}); err != nil {
		c.logger.Warnf("记录用户遥测失败: %v", err)
	}
	if msg.ChatID != 0 {
		if err := c.store.SaveGroup(ctx, &model.TrackedGroup{
			ChatID:      msg.ChatID,
			ChatType:    msg.ChatType,
			Title:       msg.ChatTitle,
			Handle:      msg.ChatHandle,
			Description: msg.Description,
		}); err != nil {
			c.logger.Warnf("记录群组遥测失败: %v", err)
		}
		if err := c.store.SaveMember(ctx, &model.GroupMember{
			ChatID:    msg.ChatID,
			UserID:    msg.From.ID,
			Username:  msg.From.Username,
			FirstName: msg.From.FirstName,
			LastName:  msg.From.LastName,
		}); err != nil {
			c.logger.Warnf("记录成员遥测失败: %v", err)
		}
	}

	text := msg.BodyText()
	if text == "" {
		return
	}
	if msg.ChatID == 0 && msg.ChatHandle == "" {
		// 没有任何会话标识，无法关联
		return
	}

	links, err := c.store.LinksClickedByUserInChat(ctx, msg.From.ID, msg.ChatID, msg.ChatHandle)
	if err != nil {
		c.logger.Errorf("查询匹配链接失败: %v", err)
		return
	}

	for _, link := range links {
		record := &model.ActivityRecord{
			LinkID:      link.LinkID,
			ActorID:     msg.From.ID,
			Username:    msg.From.Username,
			ChatID:      msg.ChatID,
			ChatTitle:   msg.ChatTitle,
			ChatHandle:  msg.ChatHandle,
			OwnerCode:   link.Code,
			MessageText: truncate(text, model.MessageTextCap),
			MessageRef:  msg.MessageID,
		}
		if err := c.store.AppendActivity(ctx, record); err != nil {
			c.logger.Errorf("写入活动记录失败 link=%s: %v", link.LinkID, err)
		}
	}
}

// truncate 按字符（rune）截断，避免把多字节字符切坏
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
