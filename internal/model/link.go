package model

import (
	"time"
)

// TrackedLink 追踪链接模型
// link_id 为复合主键: <规范化目标>-<短码>，由 linkid 包生成
type TrackedLink struct {
	LinkID           string    `gorm:"primarykey;size:64" json:"link_id"`
	OwnerID          uint      `gorm:"not null;index" json:"owner_id"`
	TargetReference  string    `gorm:"size:255;not null" json:"target_reference"`
	Code             string    `gorm:"size:10;not null" json:"code"`
	Alias            string    `gorm:"size:100" json:"alias,omitempty"`
	TargetChatID     int64     `gorm:"default:0" json:"target_chat_id,omitempty"`
	TargetChatHandle string    `gorm:"size:100" json:"target_chat_handle,omitempty"`
	ClickCount       int64     `gorm:"default:0" json:"click_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName 指定表名
func (TrackedLink) TableName() string {
	return "links"
}

// HasChatBinding 创建时是否解析到了目标群组/频道
func (l *TrackedLink) HasChatBinding() bool {
	return l.TargetChatID != 0 || l.TargetChatHandle != ""
}
