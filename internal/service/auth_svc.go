package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"sku_dash_v1/internal/api/dto"
	"sku_dash_v1/pkg/net"
)

// AuthService 登录 / 注册 / 登出
// 成功时把会话交给 SessionStore；失败时会话状态保持 LoggedOut
type AuthService struct {
	gateway  net.Gateway
	sessions *SessionStore
	validate *validator.Validate
	log      *zap.Logger
}

// NewAuthService 工厂方法
func NewAuthService(gateway net.Gateway, sessions *SessionStore, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		gateway:  gateway,
		sessions: sessions,
		validate: validator.New(),
		log:      logger.Named("auth"),
	}
}

// Login 账号密码登录
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	// 1. 本地校验，不合法的输入不发请求
	if err := s.check(req); err != nil {
		return nil, err
	}

	// 2. 调用远端
	var resp dto.AuthResponse
	res := s.gateway.Send(ctx, &net.Call{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   req,
		Result: &resp,
	})
	if !res.OK() {
		return nil, fmt.Errorf("login: %w", res.AsError())
	}

	// 3. 建立会话
	if err := s.sessions.Establish(ctx, resp.Session()); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &resp, nil
}

// Register 注册并直接登录
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}

	var resp dto.AuthResponse
	res := s.gateway.Send(ctx, &net.Call{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body:   req,
		Result: &resp,
	})
	if !res.OK() {
		return nil, fmt.Errorf("register: %w", res.AsError())
	}

	if err := s.sessions.Establish(ctx, resp.Session()); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &resp, nil
}

// Logout 登出 (仅本地清除，远端无对应接口)
func (s *AuthService) Logout(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// check 结构体校验，错误以 validation 类型返回，调用方就近展示
func (s *AuthService) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &net.APIError{Kind: net.KindValidation, Err: err}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return &net.APIError{Kind: net.KindValidation, Detail: strings.Join(msgs, "; ")}
}
