package testserver

import (
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== 登录冷却 ====================

// cooldown 按 key 记录最近一次失败，冷却期内拒绝
type cooldown struct {
	interval time.Duration
	now      func() time.Time
	last     sync.Map // key -> time.Time
}

// check 返回剩余冷却时间，0 表示放行
func (c *cooldown) check(key string) time.Duration {
	if c == nil || c.interval <= 0 {
		return 0
	}
	v, ok := c.last.Load(key)
	if !ok {
		return 0
	}
	elapsed := c.now().Sub(v.(time.Time))
	if elapsed >= c.interval {
		c.last.Delete(key)
		return 0
	}
	return c.interval - elapsed
}

// mark 记录一次失败
func (c *cooldown) mark(key string) {
	if c == nil || c.interval <= 0 {
		return
	}
	c.last.Store(key, c.now())
}

// reset 成功后清除
func (c *cooldown) reset(key string) {
	if c == nil {
		return
	}
	c.last.Delete(key)
}

// loginThrottle 同一用户名登录失败后，冷却期内的登录直接返回 429
func (s *Server) loginThrottle(username string, c *gin.Context) bool {
	wait := s.throttle.check(username)
	if wait <= 0 {
		return true
	}
	c.Header("Retry-After", fmt.Sprint(int(math.Ceil(wait.Seconds()))))
	abortDetail(c, http.StatusTooManyRequests, "Too many failed login attempts, try again later")
	return false
}
