package model

import (
	"time"

	"gorm.io/datatypes"
)

// 会话持久化使用的固定 key
const (
	SessionKeyToken = "access_token"
	SessionKeyUser  = "user"
)

// SessionRecord sqlite 会话存储的一行 (key-value)
type SessionRecord struct {
	Key       string         `gorm:"column:session_key;primaryKey;size:64"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (SessionRecord) TableName() string {
	return "client_session"
}
