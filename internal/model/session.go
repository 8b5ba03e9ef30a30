package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session 客户端会话 (token + 用户)
// 一个进程内最多存在一个，由 SessionStore 独占
type Session struct {
	Token     string `json:"access_token"`
	TokenType string `json:"token_type"`
	User      User   `json:"user"`
}

// ExpiresAt 读取 token 中的 exp 声明，仅用于展示
// token 不是 JWT 或没有 exp 时返回 false；这里不做签名校验，会话状态也不依赖它
func (s *Session) ExpiresAt() (time.Time, bool) {
	if s == nil || s.Token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
