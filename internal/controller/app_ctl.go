package controller

import (
	"context"

	"go.uber.org/zap"

	"sku_dash_v1/internal/api/dto"
	"sku_dash_v1/internal/model"
)

// Navigator 视图切换，由前端实现
type Navigator interface {
	ToLogin(reason string)
	ToDashboard(user *model.User)
	ToDetail(skuID string)
}

// Sessions 顶层控制器对会话的依赖
type Sessions interface {
	Restore(ctx context.Context) *model.Session
	Current() *model.Session
}

// Authenticator 登录 / 注册 / 登出
type Authenticator interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Logout(ctx context.Context) error
}

// UnauthorizedSource Gateway 的会话失效信号
type UnauthorizedSource interface {
	Unauthorized() <-chan struct{}
}

// ReasonSessionExpired 401 后跳转登录的提示
const ReasonSessionExpired = "session expired, please log in again"

// AppController 顶层控制器
// 唯一消费 Unauthorized 信号的地方，负责登录态和页面切换
type AppController struct {
	sessions Sessions
	auth     Authenticator
	signal   UnauthorizedSource
	nav      Navigator
	log      *zap.Logger
}

func NewAppController(sessions Sessions, auth Authenticator, signal UnauthorizedSource, nav Navigator, logger *zap.Logger) *AppController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppController{
		sessions: sessions,
		auth:     auth,
		signal:   signal,
		nav:      nav,
		log:      logger.Named("app"),
	}
}

// Start 恢复会话并进入首页，同时开始监听会话失效
// ctx 结束时停止监听
func (a *AppController) Start(ctx context.Context) *model.Session {
	session := a.sessions.Restore(ctx)
	if session == nil {
		a.nav.ToLogin("")
	} else {
		a.nav.ToDashboard(&session.User)
	}

	go a.watch(ctx)
	return session
}

// watch 401 -> 登录页
func (a *AppController) watch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.signal.Unauthorized():
			// 信号发出后用户已重新登录：这是旧信号
			if a.sessions.Current() != nil {
				a.log.Debug("ignoring unauthorized signal, already logged in again")
				continue
			}
			a.log.Info("session invalidated, redirecting to login")
			a.nav.ToLogin(ReasonSessionExpired)
		}
	}
}

// Login 登录成功后进入看板
func (a *AppController) Login(ctx context.Context, req *dto.LoginRequest) error {
	resp, err := a.auth.Login(ctx, req)
	if err != nil {
		return err
	}
	a.nav.ToDashboard(&resp.User)
	return nil
}

// Register 注册成功后进入看板
func (a *AppController) Register(ctx context.Context, req *dto.RegisterRequest) error {
	resp, err := a.auth.Register(ctx, req)
	if err != nil {
		return err
	}
	a.nav.ToDashboard(&resp.User)
	return nil
}

// Logout 登出并回到登录页
func (a *AppController) Logout(ctx context.Context) error {
	err := a.auth.Logout(ctx)
	a.nav.ToLogin("")
	return err
}

// OpenSKU 进入详情页
func (a *AppController) OpenSKU(skuID string) {
	a.nav.ToDetail(skuID)
}
