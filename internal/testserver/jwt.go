package testserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"sku_dash_v1/internal/model"
)

// ==================== JWT 配置 ====================

// JWTConfig 签发参数
type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL time.Duration
	Issuer         string
}

// DefaultJWTConfig 默认配置
func DefaultJWTConfig() JWTConfig {
	return JWTConfig{
		SecretKey:      "skudash-mock-secret",
		AccessTokenTTL: 2 * time.Hour,
		Issuer:         "skudash-mock",
	}
}

// ==================== Claims 定义 ====================

// UserClaims 用户声明
type UserClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// issueToken 生成 Access Token
func (s *Server) issueToken(u *account) (string, error) {
	now := s.now()
	claims := &UserClaims{
		UserID:   u.ID,
		Username: u.Username,
		Role:     string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwt.Issuer,
			Subject:   "access",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwt.AccessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwt.SecretKey))
}

// parseToken 解析并校验 Token
func (s *Server) parseToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwt.SecretKey), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// ==================== Gin 中间件 ====================

const ctxKeyClaims = "claims"

// requireAuth Bearer 认证，失败时返回 401
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 解析 Bearer Token
		parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortDetail(c, http.StatusUnauthorized, "Not authenticated")
			return
		}

		// 2. 已吊销
		if s.revoked(parts[1]) {
			abortDetail(c, http.StatusUnauthorized, "Token has been revoked")
			return
		}

		// 3. 校验签名与有效期
		claims, err := s.parseToken(parts[1])
		if err != nil || claims.Subject != "access" {
			abortDetail(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		c.Set(ctxKeyClaims, claims)
		c.Next()
	}
}

// requireRole 角色校验，失败时返回 403
func requireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsOf(c)
		for _, r := range roles {
			if claims != nil && claims.Role == string(r) {
				c.Next()
				return
			}
		}
		abortDetail(c, http.StatusForbidden, "Insufficient permissions")
	}
}

func claimsOf(c *gin.Context) *UserClaims {
	if v, ok := c.Get(ctxKeyClaims); ok {
		return v.(*UserClaims)
	}
	return nil
}
