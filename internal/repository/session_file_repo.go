package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"sku_dash_v1/internal/model"
)

// SessionFileName 会话文件名
const SessionFileName = "session.json"

// ==================== 文件实现 ====================

type fileSessionRepository struct {
	fs   afero.Fs
	path string
}

// NewFileSessionRepository 创建文件会话仓库
// dir: 会话目录；fs 为 nil 时使用真实文件系统
func NewFileSessionRepository(fs afero.Fs, dir string) SessionRepository {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &fileSessionRepository{
		fs:   fs,
		path: filepath.Join(dir, SessionFileName),
	}
}

// Load 读取会话文件，文件不存在时返回 (nil, nil)
// 文件内容损坏时返回空会话，由上层判定无效并清除
func (r *fileSessionRepository) Load(_ context.Context) (*StoredSession, error) {
	data, err := afero.ReadFile(r.fs, r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return &StoredSession{}, nil
	}

	stored := &StoredSession{User: doc[model.SessionKeyUser]}
	if raw, ok := doc[model.SessionKeyToken]; ok {
		var token string
		if err := json.Unmarshal(raw, &token); err == nil {
			stored.Token = token
		}
	}
	return stored, nil
}

// Save 先写临时文件再 rename，读者只会看到旧文件或新文件
func (r *fileSessionRepository) Save(_ context.Context, token string, user []byte) error {
	doc := map[string]json.RawMessage{
		model.SessionKeyUser: user,
	}
	tokenJSON, err := json.Marshal(token)
	if err != nil {
		return err
	}
	doc[model.SessionKeyToken] = tokenJSON

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := r.fs.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp := filepath.Join(dir, "."+SessionFileName+"."+uuid.NewString())
	if err := afero.WriteFile(r.fs, tmp, data, 0o600); err != nil {
		_ = r.fs.Remove(tmp)
		return fmt.Errorf("write session file: %w", err)
	}
	if err := r.fs.Rename(tmp, r.path); err != nil {
		_ = r.fs.Remove(tmp)
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Clear 删除会话文件
func (r *fileSessionRepository) Clear(_ context.Context) error {
	err := r.fs.Remove(r.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
