package model

import (
	"time"
)

// 被动遥测表: 与归因核心无关，仅记录机器人看到的用户/群组/成员

// TrackedUser 与机器人交互过的用户
type TrackedUser struct {
	UserID           int64     `gorm:"primarykey" json:"user_id"`
	Username         string    `gorm:"size:100;index" json:"username"`
	FirstName        string    `gorm:"size:100" json:"first_name"`
	LastName         string    `gorm:"size:100" json:"last_name"`
	LanguageCode     string    `gorm:"size:10" json:"language_code"`
	IsBot            bool      `gorm:"default:false" json:"is_bot"`
	FirstSeen        time.Time `gorm:"autoCreateTime" json:"first_seen"`
	LastSeen         time.Time `json:"last_seen"`
	InteractionCount int64     `gorm:"default:0" json:"interaction_count"`
}

func (TrackedUser) TableName() string {
	return "users"
}

// TrackedGroup 机器人出现过的群组/频道
type TrackedGroup struct {
	ChatID      int64     `gorm:"primarykey" json:"chat_id"`
	ChatType    string    `gorm:"size:20" json:"chat_type"`
	Title       string    `gorm:"size:255" json:"title"`
	Handle      string    `gorm:"size:100" json:"handle"`
	Description string    `gorm:"type:text" json:"description"`
	AddedAt     time.Time `gorm:"autoCreateTime" json:"added_at"`
	LastSeen    time.Time `json:"last_seen"`
}

func (TrackedGroup) TableName() string {
	return "groups"
}

// GroupMember 群组成员（被动记录，按消息计数）
type GroupMember struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	ChatID       int64     `gorm:"not null;uniqueIndex:idx_chat_user" json:"chat_id"`
	UserID       int64     `gorm:"not null;uniqueIndex:idx_chat_user" json:"user_id"`
	Username     string    `gorm:"size:100" json:"username"`
	FirstName    string    `gorm:"size:100" json:"first_name"`
	LastName     string    `gorm:"size:100" json:"last_name"`
	FirstSeen    time.Time `gorm:"autoCreateTime" json:"first_seen"`
	LastSeen     time.Time `json:"last_seen"`
	MessageCount int64     `gorm:"default:0" json:"message_count"`
}

func (GroupMember) TableName() string {
	return "members"
}
