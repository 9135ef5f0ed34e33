package model

import (
	"time"
)

// ClickEvent 点击事件明细，写入后不可变
// 同一用户可能多次点击，导出时按 clicker_id 分组去重
type ClickEvent struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	LinkID       string    `gorm:"size:64;not null;index" json:"link_id"`
	ClickerID    int64     `gorm:"not null;index" json:"clicker_id"`
	FirstName    string    `gorm:"size:100" json:"first_name"`
	LastName     string    `gorm:"size:100" json:"last_name"`
	Username     string    `gorm:"size:100" json:"username"`
	LanguageCode string    `gorm:"size:10" json:"language_code"`
	Source       string    `gorm:"size:100" json:"source,omitempty"`
	Timestamp    time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

func (ClickEvent) TableName() string {
	return "click_events"
}
