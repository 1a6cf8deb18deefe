package store

import (
	"gorm.io/gorm"
)

// Store 账本存储，所有实体的唯一持有者。状态变更一律走CAS接口，
// 其余组件以此为唯一事实来源。
type Store struct {
	db *gorm.DB
}

// New 创建账本存储
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB 返回底层连接（任务层分页查询使用）
func (s *Store) DB() *gorm.DB {
	return s.db
}
