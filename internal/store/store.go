package store

import (
	"errors"

	"gorm.io/gorm"
)

// 错误分类: 调用方据此区分不可重试的业务失败和底层存储失败
var (
	// ErrNotFound 链接不存在
	ErrNotFound = errors.New("link not found")
	// ErrAccessDenied 操作者不是链接所有者
	ErrAccessDenied = errors.New("access denied")
)

// Store 归因数据的唯一持久化入口
// 所有实体只存在于数据库中，每次读取都重新查询，不在内存里保留权威副本
type Store struct {
	db *gorm.DB
}

// New 创建 Store 实例
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}
