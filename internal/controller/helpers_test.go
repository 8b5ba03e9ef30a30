package controller

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"sku_dash_v1/internal/api/dto"
	"sku_dash_v1/internal/model"
	"sku_dash_v1/internal/repository"
	"sku_dash_v1/internal/service"
	"sku_dash_v1/internal/testserver"
	"sku_dash_v1/pkg/net"
	"sku_dash_v1/pkg/utils"
)

// ==================== 测试辅助 ====================

type env struct {
	fake    *testserver.Server
	fs      afero.Fs
	store   *service.SessionStore
	gateway net.Gateway
	auth    *service.AuthService
	skus    *service.SKUService
	notes   *service.NoteService
}

func setupEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	fake := testserver.New(testserver.Options{Seed: true})
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	fs := afero.NewMemMapFs()
	store := service.NewSessionStore(repository.NewFileSessionRepository(fs, "/cfg"), nil)
	gw := net.NewGateway(utils.NewAPIClient(utils.ClientOptions{BaseURL: srv.URL}, nil), store, nil)
	return &env{
		fake:    fake,
		fs:      fs,
		store:   store,
		gateway: gw,
		auth:    service.NewAuthService(gw, store, nil),
		skus:    service.NewSKUService(gw),
		notes:   service.NewNoteService(gw),
	}
}

func (e *env) login(t *testing.T, username string) {
	t.Helper()
	_, err := e.auth.Login(context.Background(), &dto.LoginRequest{Username: username, Password: testserver.DemoPassword})
	require.NoError(t, err)
}

func skuIDs(skus []model.SKU) []string {
	out := make([]string, 0, len(skus))
	for _, s := range skus {
		out = append(out, string(s.ID))
	}
	return out
}

// recordingNav 记录页面跳转
type recordingNav struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNav) ToLogin(reason string) { n.add("login:" + reason) }

func (n *recordingNav) ToDashboard(u *model.User) { n.add("dashboard:" + u.Username) }

func (n *recordingNav) ToDetail(skuID string) { n.add("detail:" + skuID) }

func (n *recordingNav) add(ev string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNav) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	copy(out, n.events)
	return out
}

func (n *recordingNav) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.events) == 0 {
		return ""
	}
	return n.events[len(n.events)-1]
}
