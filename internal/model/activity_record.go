package model

import (
	"time"
)

// MessageTextCap 活动消息正文的存储上限（字符数）
const MessageTextCap = 500

// ActivityRecord 群内活动记录
// 前置条件: actor_id 在 timestamp 之前对同一 link_id 至少有一条 ClickEvent
type ActivityRecord struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	LinkID      string    `gorm:"size:64;not null;index" json:"link_id"`
	ActorID     int64     `gorm:"not null;index" json:"actor_id"`
	Username    string    `gorm:"size:100" json:"username"`
	ChatID      int64     `gorm:"not null" json:"chat_id"`
	ChatTitle   string    `gorm:"size:255" json:"chat_title"`
	ChatHandle  string    `gorm:"size:100" json:"chat_handle"`
	OwnerCode   string    `gorm:"size:10" json:"owner_code"`
	MessageText string    `gorm:"size:500" json:"message_text"`
	MessageRef  int64     `json:"message_ref"`
	Timestamp   time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

func (ActivityRecord) TableName() string {
	return "activity_records"
}
