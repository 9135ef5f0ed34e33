package platform

import (
	"context"
)

// 外部协作者边界: 会话解析与成员状态查询由机器人网关代劳
// 这里只定义接口和传输对象，不关心网关背后是哪个消息平台

// ChatBinding 创建链接时解析出的目标会话身份，解析一次后缓存在链接行里
type ChatBinding struct {
	ChatID int64  `json:"chat_id"`
	Handle string `json:"handle"`
}

// UserInfo 消息平台侧的用户身份快照
type UserInfo struct {
	ID           int64  `json:"id" binding:"required"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Username     string `json:"username"`
	LanguageCode string `json:"language_code"`
	IsBot        bool   `json:"is_bot"`
}

// IncomingMessage 网关转发过来的群组/频道消息
type IncomingMessage struct {
	From        *UserInfo `json:"from"`
	ChatID      int64     `json:"chat_id"`
	ChatHandle  string    `json:"chat_handle"`
	ChatTitle   string    `json:"chat_title"`
	ChatType    string    `json:"chat_type"`
	Description string    `json:"description"`
	MessageID   int64     `json:"message_id"`
	Text        string    `json:"text"`
	Caption     string    `json:"caption"`
}

// BodyText 活动正文: 优先消息文本，其次媒体说明
func (m *IncomingMessage) BodyText() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}

// ChatResolver 把目标用户名解析为稳定的会话身份
// 对频道返回其关联讨论组的身份
type ChatResolver interface {
	ResolveChat(ctx context.Context, target string) (ChatBinding, error)
}

// MembershipChecker 查询用户在目标会话中的成员状态
type MembershipChecker interface {
	MemberStatus(ctx context.Context, chatRef string, userID int64) (string, error)
}
