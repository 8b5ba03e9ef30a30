package service

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sku_dash_v1/internal/model"
	"sku_dash_v1/internal/repository"
	"sku_dash_v1/pkg/database"
)

// ==================== 测试辅助 ====================

const sessionDir = "/home/test/.config/skudash"

func newFileStore(fs afero.Fs) (*SessionStore, repository.SessionRepository) {
	repo := repository.NewFileSessionRepository(fs, sessionDir)
	return NewSessionStore(repo, nil), repo
}

func newSQLStore(t *testing.T) (*SessionStore, repository.SessionRepository) {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", &model.SessionRecord{})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	repo := repository.NewSQLSessionRepository(db)
	return NewSessionStore(repo, nil), repo
}

func validSession() *model.Session {
	return &model.Session{
		Token:     "tok-1",
		TokenType: "bearer",
		User:      model.User{ID: "u-1", Username: "alice", Email: "alice@example.com", Role: model.RoleBrandUser},
	}
}

// ==================== Restore ====================

func TestSessionStore_RestoreEmpty(t *testing.T) {
	store, _ := newFileStore(afero.NewMemMapFs())

	assert.Nil(t, store.Restore(context.Background()))
	assert.Equal(t, LoggedOut, store.State())
	assert.Empty(t, store.Token())
}

func TestSessionStore_RestoreAcrossRestart(t *testing.T) {
	fs := afero.NewMemMapFs()
	first, _ := newFileStore(fs)
	require.NoError(t, first.Establish(context.Background(), validSession()))

	second, _ := newFileStore(fs)
	got := second.Restore(context.Background())

	require.NotNil(t, got)
	assert.Equal(t, "tok-1", got.Token)
	assert.Equal(t, "alice", got.User.Username)
	assert.Equal(t, LoggedIn, second.State())
}

func TestSessionStore_RestoreDiscardsInvalidData(t *testing.T) {
	tests := []struct {
		name  string
		token string
		user  string
	}{
		{"用户不是 JSON", "tok", `not json`},
		{"缺少 id", "tok", `{"username":"alice","role":"brand_user"}`},
		{"缺少用户名", "tok", `{"id":"u-1","role":"brand_user"}`},
		{"未知角色", "tok", `{"id":"u-1","username":"alice","role":"admin"}`},
		{"缺少 token", "", `{"id":"u-1","username":"alice","role":"brand_user"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, repo := newSQLStore(t)
			require.NoError(t, repo.Save(context.Background(), tt.token, []byte(tt.user)))

			assert.Nil(t, store.Restore(context.Background()))
			assert.Equal(t, LoggedOut, store.State())

			// 存储被清空
			stored, err := repo.Load(context.Background())
			require.NoError(t, err)
			assert.Nil(t, stored)
		})
	}
}

func TestSessionStore_RestoreAcceptsNumericID(t *testing.T) {
	store, repo := newFileStore(afero.NewMemMapFs())
	require.NoError(t, repo.Save(context.Background(), "tok", []byte(`{"id":42,"username":"bob","email":"b@x.io","role":"merch_ops"}`)))

	got := store.Restore(context.Background())

	require.NotNil(t, got)
	assert.Equal(t, model.ID("42"), got.User.ID)
	assert.Equal(t, model.RoleMerchOps, store.User().Role)
}

// ==================== Establish / Clear ====================

func TestSessionStore_EstablishRejectsInvalid(t *testing.T) {
	store, repo := newFileStore(afero.NewMemMapFs())

	bad := validSession()
	bad.User.Role = "admin"
	assert.ErrorIs(t, store.Establish(context.Background(), bad), ErrInvalidSession)

	noToken := validSession()
	noToken.Token = ""
	assert.ErrorIs(t, store.Establish(context.Background(), noToken), ErrInvalidSession)

	assert.Equal(t, LoggedOut, store.State())
	stored, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestSessionStore_SubscribeAndClear(t *testing.T) {
	store, repo := newFileStore(afero.NewMemMapFs())

	var seen []*model.Session
	unsubscribe := store.Subscribe(func(s *model.Session) { seen = append(seen, s) })

	require.NoError(t, store.Establish(context.Background(), validSession()))
	require.NoError(t, store.Clear(context.Background()))
	// 已登出时再次清除不重复通知
	require.NoError(t, store.Clear(context.Background()))

	require.Len(t, seen, 2)
	assert.Equal(t, "tok-1", seen[0].Token)
	assert.Nil(t, seen[1])
	assert.Equal(t, LoggedOut, store.State())

	stored, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stored)

	unsubscribe()
	require.NoError(t, store.Establish(context.Background(), validSession()))
	assert.Len(t, seen, 2)
}

func TestSessionStore_CurrentIsACopy(t *testing.T) {
	store, _ := newFileStore(afero.NewMemMapFs())
	require.NoError(t, store.Establish(context.Background(), validSession()))

	cur := store.Current()
	cur.Token = "mutated"
	cur.User.Username = "mallory"

	assert.Equal(t, "tok-1", store.Token())
	assert.Equal(t, "alice", store.User().Username)
}
