package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"sku_dash_v1/internal/model"
	"sku_dash_v1/internal/repository"
)

// SessionState 会话状态机
// LoggedOut --(登录/注册成功)--> LoggedIn --(登出 | 401)--> LoggedOut
type SessionState int

const (
	LoggedOut SessionState = iota
	LoggedIn
)

func (s SessionState) String() string {
	if s == LoggedIn {
		return "logged_in"
	}
	return "logged_out"
}

// ErrInvalidSession 会话数据不完整
var ErrInvalidSession = errors.New("invalid session")

// SessionStore 会话的唯一持有者
// 只有它可以修改持久化的 token + user；其他组件通过 Token()/Current() 按需读取
type SessionStore struct {
	repo     repository.SessionRepository
	validate *validator.Validate
	log      *zap.Logger

	mu      sync.RWMutex
	current *model.Session

	subMu       sync.Mutex
	subscribers map[int]func(*model.Session)
	nextSubID   int
}

// NewSessionStore 工厂方法
func NewSessionStore(repo repository.SessionRepository, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{
		repo:        repo,
		validate:    validator.New(),
		log:         logger.Named("session"),
		subscribers: make(map[int]func(*model.Session)),
	}
}

// Restore 进程启动时恢复会话
// 持久化数据结构不合法时丢弃并返回 nil：宁可退回未登录，也不使用损坏的会话
func (s *SessionStore) Restore(ctx context.Context) *model.Session {
	// 1. 读取
	stored, err := s.repo.Load(ctx)
	if err != nil {
		s.log.Warn("load session failed, starting logged out", zap.Error(err))
		return nil
	}
	if stored == nil {
		return nil
	}

	// 2. 校验
	session, err := s.decode(stored)
	if err != nil {
		s.log.Warn("discarding persisted session", zap.Error(err))
		if err := s.repo.Clear(ctx); err != nil {
			s.log.Error("clear invalid session failed", zap.Error(err))
		}
		return nil
	}

	// 3. 生效
	s.mu.Lock()
	s.current = session
	s.mu.Unlock()
	s.notify(session)

	return cloneSession(session)
}

// Establish 写入新会话，整体替换旧会话
func (s *SessionStore) Establish(ctx context.Context, session *model.Session) error {
	if session == nil || session.Token == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidSession)
	}
	if err := s.validate.Struct(&session.User); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	userJSON, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	// 持久化失败时内存状态保持不变
	if err := s.repo.Save(ctx, session.Token, userJSON); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	next := cloneSession(session)
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	s.log.Info("session established",
		zap.String("user", session.User.Username), zap.String("role", string(session.User.Role)))
	s.notify(next)
	return nil
}

// Clear 删除会话
// 内存状态无论持久化是否成功都会清空，避免继续携带已失效的 token
func (s *SessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	had := s.current != nil
	s.current = nil
	s.mu.Unlock()

	err := s.repo.Clear(ctx)
	if had {
		s.log.Info("session cleared")
		s.notify(nil)
	}
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Token 当前 token，未登录时为空
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Current 当前会话副本
func (s *SessionStore) Current() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSession(s.current)
}

// User 当前用户副本
func (s *SessionStore) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	u := s.current.User
	return &u
}

// State 当前状态
func (s *SessionStore) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return LoggedOut
	}
	return LoggedIn
}

// Subscribe 订阅会话变化，回调参数为 nil 表示已登出
// 返回取消订阅函数
func (s *SessionStore) Subscribe(fn func(*model.Session)) func() {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

func (s *SessionStore) notify(session *model.Session) {
	s.subMu.Lock()
	fns := make([]func(*model.Session), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(cloneSession(session))
	}
}

// decode 把持久化数据还原成会话
func (s *SessionStore) decode(stored *repository.StoredSession) (*model.Session, error) {
	if stored.Token == "" {
		return nil, fmt.Errorf("%w: missing token", ErrInvalidSession)
	}
	if len(stored.User) == 0 {
		return nil, fmt.Errorf("%w: missing user", ErrInvalidSession)
	}

	var user model.User
	if err := json.Unmarshal(stored.User, &user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if err := s.validate.Struct(&user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	return &model.Session{Token: stored.Token, TokenType: "bearer", User: user}, nil
}

func cloneSession(s *model.Session) *model.Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
