package repository

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sku_dash_v1/internal/model"
)

// ==================== SessionRepository 会话持久化 ====================

// StoredSession 持久化的原始会话数据，未经校验
type StoredSession struct {
	Token string
	User  []byte // 原始 JSON
}

// SessionRepository 会话持久化接口
// 持久化格式对上层透明，上层只关心 token 与 user 两个固定 key
type SessionRepository interface {
	// Load 读取会话，两个 key 都不存在时返回 (nil, nil)
	Load(ctx context.Context) (*StoredSession, error)
	// Save 原子写入 token 与 user，替换旧会话
	Save(ctx context.Context, token string, user []byte) error
	// Clear 删除 token 与 user
	Clear(ctx context.Context) error
}

// ==================== sqlite 实现 ====================

type sqlSessionRepository struct {
	db *gorm.DB
}

// NewSQLSessionRepository 创建 sqlite 会话仓库
// db 需已迁移 model.SessionRecord
func NewSQLSessionRepository(db *gorm.DB) SessionRepository {
	return &sqlSessionRepository{db: db}
}

// Load 读取会话
func (r *sqlSessionRepository) Load(ctx context.Context) (*StoredSession, error) {
	var rows []model.SessionRecord
	err := r.db.WithContext(ctx).
		Where("session_key IN ?", []string{model.SessionKeyToken, model.SessionKeyUser}).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	stored := &StoredSession{}
	for _, row := range rows {
		switch row.Key {
		case model.SessionKeyToken:
			// token 以 JSON 字符串形式保存，解析失败按缺失处理
			var token string
			if err := json.Unmarshal(row.Value, &token); err == nil {
				stored.Token = token
			}
		case model.SessionKeyUser:
			stored.User = []byte(row.Value)
		}
	}
	return stored, nil
}

// Save 在一个事务内 upsert 两个 key
func (r *sqlSessionRepository) Save(ctx context.Context, token string, user []byte) error {
	tokenJSON, err := json.Marshal(token)
	if err != nil {
		return err
	}
	rows := []model.SessionRecord{
		{Key: model.SessionKeyToken, Value: datatypes.JSON(tokenJSON)},
		{Key: model.SessionKeyUser, Value: datatypes.JSON(user)},
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rows).Error
	})
}

// Clear 删除会话
func (r *sqlSessionRepository) Clear(ctx context.Context) error {
	err := r.db.WithContext(ctx).
		Where("session_key IN ?", []string{model.SessionKeyToken, model.SessionKeyUser}).
		Delete(&model.SessionRecord{}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
