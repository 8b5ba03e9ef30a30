package dto

import "sku_dash_v1/internal/model"

// ==================== 登录 ====================

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required" validate:"required,max=50"`
	Password string `json:"password" binding:"required" validate:"required,max=100"`
}

// ==================== 注册 ====================

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string     `json:"username" binding:"required" validate:"required,min=3,max=50"`
	Email    string     `json:"email" binding:"required" validate:"required,email"`
	Password string     `json:"password" binding:"required" validate:"required,min=6,max=100"`
	Role     model.Role `json:"role" binding:"required" validate:"required,oneof=brand_user merch_ops"`
}

// ==================== 响应 ====================

// AuthResponse 登录/注册成功响应
type AuthResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        model.User `json:"user"`
}

// Session 转换为客户端会话
func (r *AuthResponse) Session() *model.Session {
	return &model.Session{
		Token:     r.AccessToken,
		TokenType: r.TokenType,
		User:      r.User,
	}
}
