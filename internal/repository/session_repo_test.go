package repository

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sku_dash_v1/internal/model"
)

// ==================== 测试辅助 ====================

func setupSessionTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.SessionRecord{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return db
}

// 两种实现跑同一套用例
func sessionRepos(t *testing.T) map[string]SessionRepository {
	return map[string]SessionRepository{
		"sqlite": NewSQLSessionRepository(setupSessionTestDB(t)),
		"file":   NewFileSessionRepository(afero.NewMemMapFs(), "/cfg/skudash"),
	}
}

const testUserJSON = `{"id":"u-1","username":"alice","email":"a@x.io","role":"brand_user"}`

// ==================== 单元测试 ====================

func TestSessionRepository_LoadEmpty(t *testing.T) {
	for name, repo := range sessionRepos(t) {
		t.Run(name, func(t *testing.T) {
			stored, err := repo.Load(context.Background())
			require.NoError(t, err)
			assert.Nil(t, stored)
		})
	}
}

func TestSessionRepository_SaveLoadClear(t *testing.T) {
	ctx := context.Background()

	for name, repo := range sessionRepos(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, repo.Save(ctx, "tok-1", []byte(testUserJSON)))

			stored, err := repo.Load(ctx)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, "tok-1", stored.Token)
			assert.JSONEq(t, testUserJSON, string(stored.User))

			// 再次保存替换旧会话
			require.NoError(t, repo.Save(ctx, "tok-2", []byte(`{"id":"u-2","username":"bob","role":"merch_ops"}`)))
			stored, err = repo.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, "tok-2", stored.Token)
			assert.Contains(t, string(stored.User), "bob")

			require.NoError(t, repo.Clear(ctx))
			stored, err = repo.Load(ctx)
			require.NoError(t, err)
			assert.Nil(t, stored)

			// 重复清除不报错
			assert.NoError(t, repo.Clear(ctx))
		})
	}
}

func TestFileSessionRepository_CorruptFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg/session.json", []byte("{not json"), 0o600))

	repo := NewFileSessionRepository(fs, "/cfg")
	stored, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Empty(t, stored.Token)
	assert.Empty(t, stored.User)
}

func TestFileSessionRepository_NoTempLeftBehind(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo := NewFileSessionRepository(fs, "/cfg")

	require.NoError(t, repo.Save(context.Background(), "tok", []byte(testUserJSON)))

	entries, err := afero.ReadDir(fs, "/cfg")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, SessionFileName, entries[0].Name())
}
