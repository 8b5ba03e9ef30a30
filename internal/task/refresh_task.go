package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultRefreshSpec 未配置时的刷新周期
const DefaultRefreshSpec = "@every 30s"

// Refresher 可重复执行的刷新动作 (看板)
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshTask 定时刷新看板
// 上一轮尚未结束时跳过本轮，刷新失败只记录，保留已展示的数据
type RefreshTask struct {
	target  Refresher
	spec    string
	timeout time.Duration
	cron    *cron.Cron
	log     *zap.Logger

	mu       sync.Mutex
	onResult func(error)
	started  bool
}

// NewRefreshTask spec 支持秒级表达式和 @every 描述符
func NewRefreshTask(target Refresher, spec string, timeout time.Duration, logger *zap.Logger) *RefreshTask {
	if spec == "" {
		spec = DefaultRefreshSpec
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("refresh")
	cl := cronLogger{log.Sugar()}
	return &RefreshTask{
		target:  target,
		spec:    spec,
		timeout: timeout,
		log:     log,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}
}

// OnResult 每轮结束后回调 (nil 表示成功)
func (t *RefreshTask) OnResult(fn func(error)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onResult = fn
}

// Start 立即执行一次，随后按周期执行
func (t *RefreshTask) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return nil
	}

	// 1. 注册周期任务
	if _, err := t.cron.AddFunc(t.spec, func() { t.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid refresh spec %q: %w", t.spec, err)
	}

	// 2. 首次执行
	go t.RunOnce(ctx)

	t.cron.Start()
	t.started = true
	t.log.Info("refresh task started", zap.String("spec", t.spec))
	return nil
}

// Stop 停止调度并等待进行中的一轮结束
func (t *RefreshTask) Stop() {
	t.mu.Lock()
	started := t.started
	t.started = false
	t.mu.Unlock()
	if !started {
		return
	}
	<-t.cron.Stop().Done()
	t.log.Info("refresh task stopped")
}

// RunOnce 执行一轮刷新
func (t *RefreshTask) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	runCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	err := t.target.Refresh(runCtx)
	if err != nil {
		t.log.Warn("refresh failed", zap.Error(err), zap.Duration("cost", time.Since(start)))
	} else {
		t.log.Debug("refresh done", zap.Duration("cost", time.Since(start)))
	}

	t.mu.Lock()
	fn := t.onResult
	t.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// cronLogger 把 cron 的日志接到 zap
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
