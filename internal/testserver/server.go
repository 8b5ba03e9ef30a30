// Package testserver 远端 SKU 服务的内存实现
// 与真实服务保持相同的路由、JSON 结构和 FastAPI 风格的错误体，供测试和本地联调使用
package testserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sku_dash_v1/internal/model"
)

// Options 服务参数
type Options struct {
	JWT    JWTConfig
	Now    func() time.Time
	Logger *zap.Logger
	// Seed 为 true 时预置演示账号和 SKU
	Seed bool
	// LoginCooldown 登录失败后同一用户名的冷却时间，0 表示不限制
	LoginCooldown time.Duration
}

type account struct {
	ID           string
	Username     string
	Email        string
	Role         model.Role
	PasswordHash []byte
}

func (a *account) public() model.User {
	return model.User{ID: model.ID(a.ID), Username: a.Username, Email: a.Email, Role: a.Role}
}

// failure 注入的一次性失败
type failure struct {
	status int
	detail string
}

// Server 内存版远端服务
type Server struct {
	engine *gin.Engine
	jwt    JWTConfig
	now    func() time.Time
	log    *zap.Logger

	throttle *cooldown

	mu        sync.Mutex
	accounts  map[string]*account // username -> account
	skus      []model.SKU
	notes     []model.Note
	revokes   map[string]struct{}
	revokeAll bool
	failures  map[string][]failure // route -> 待触发的失败
	hits      map[string]int       // route -> 请求次数
	auths     []string             // 每个请求携带的 Authorization 头
}

// New 工厂方法
func New(opts Options) *Server {
	if opts.JWT.SecretKey == "" {
		opts.JWT = DefaultJWTConfig()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Server{
		jwt:      opts.JWT,
		now:      opts.Now,
		log:      opts.Logger.Named("mockapi"),
		accounts: make(map[string]*account),
		revokes:  make(map[string]struct{}),
		failures: make(map[string][]failure),
		hits:     make(map[string]int),
		throttle: &cooldown{interval: opts.LoginCooldown, now: opts.Now},
	}
	if opts.Seed {
		s.seed()
	}
	s.engine = s.routes()
	return s
}

// Handler 供 httptest.NewServer 或 http.Server 使用
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ==================== 路由 ====================

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.record(), s.inject())

	auth := r.Group("/auth")
	{
		auth.POST("/login", s.login)
		auth.POST("/register", s.register)
	}

	authed := r.Group("", s.requireAuth())
	{
		authed.GET("/skus", s.listSKUs)
		authed.GET("/skus/:id", s.getSKU)
		authed.GET("/skus/:id/notes", s.listNotes)
		authed.POST("/notes", requireRole(model.RoleBrandUser), s.createNote)
		authed.PUT("/notes/:id", requireRole(model.RoleBrandUser), s.updateNote)
		authed.DELETE("/notes/:id", requireRole(model.RoleBrandUser), s.deleteNote)
	}
	return r
}

// record 统计每条路由的请求次数
func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.Request.Method + " " + c.FullPath()
		s.mu.Lock()
		s.hits[route]++
		s.auths = append(s.auths, c.GetHeader("Authorization"))
		s.mu.Unlock()
		c.Next()
	}
}

// inject 触发预先注入的失败
func (s *Server) inject() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.Request.Method + " " + c.FullPath()
		s.mu.Lock()
		queue := s.failures[route]
		var f *failure
		if len(queue) > 0 {
			f = &queue[0]
			s.failures[route] = queue[1:]
		}
		s.mu.Unlock()

		if f != nil {
			s.log.Debug("injected failure", zap.String("route", route), zap.Int("status", f.status))
			abortDetail(c, f.status, f.detail)
			return
		}
		c.Next()
	}
}

// ==================== 测试钩子 ====================

// FailNext 让 route (例如 "GET /skus/:id") 的下一次请求返回 status
func (s *Server) FailNext(route string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if detail == "" {
		detail = http.StatusText(status)
	}
	s.failures[route] = append(s.failures[route], failure{status: status, detail: detail})
}

// Revoke 吊销单个 token
func (s *Server) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revokes[token] = struct{}{}
}

// RevokeAll 吊销目前签发的所有 token (模拟服务端会话失效)
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revokeAll = true
}

func (s *Server) revoked(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revokeAll {
		return true
	}
	_, ok := s.revokes[token]
	return ok
}

// Hits route 被请求的次数
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// TotalHits 全部请求次数
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.hits {
		n += v
	}
	return n
}

// AuthHeaders 按顺序返回每个请求的 Authorization 头
func (s *Server) AuthHeaders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.auths))
	copy(out, s.auths)
	return out
}

// ==================== 响应辅助 ====================

func abortDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// abortValidation FastAPI 422 的数组结构
func abortValidation(c *gin.Context, field, msg string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
		"detail": []gin.H{{"loc": []string{"body", field}, "msg": msg, "type": "value_error"}},
	})
}
