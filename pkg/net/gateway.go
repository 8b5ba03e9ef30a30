package net

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// TokenStore Gateway 对会话的全部依赖：按请求读取 token，401 时清除
// Gateway 自己不保存 token 副本
type TokenStore interface {
	Token() string
	Clear(ctx context.Context) error
}

// Outcome 调用结果类型
type Outcome int

const (
	OutcomeOK           Outcome = iota
	OutcomeUnauthorized         // 会话已被清除，调用方应跳转登录
	OutcomeError                // 其他失败，原样透传
)

// Result 单次调用的结果
type Result struct {
	Outcome    Outcome
	StatusCode int
	Err        error // OutcomeOK 时为 nil
}

// OK 是否成功
func (r Result) OK() bool {
	return r.Outcome == OutcomeOK
}

// Call 单次远端调用的描述
type Call struct {
	Method string
	Path   string
	Query  map[string]string
	Body   any
	Result any  // 成功时解码到这里，可为 nil
	Auth   bool // 需要登录的接口
}

// Gateway 所有远端调用的唯一出口 (通用组件)
type Gateway interface {
	// Send 发送请求
	// 401 时无条件清除会话并发出 Unauthorized 信号，与具体接口无关
	Send(ctx context.Context, call *Call) Result

	// Unauthorized 会话失效信号，由顶层控制器订阅
	Unauthorized() <-chan struct{}
}

// restyGateway 是 Gateway 接口的具体实现
// 除了只读访问 TokenStore 外不持有可变状态，并发请求之间互不影响
type restyGateway struct {
	client *resty.Client
	tokens TokenStore
	signal chan struct{}
	log    *zap.Logger
}

var _ Gateway = (*restyGateway)(nil)

func NewGateway(client *resty.Client, tokens TokenStore, logger *zap.Logger) Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &restyGateway{
		client: client,
		tokens: tokens,
		signal: make(chan struct{}, 1),
		log:    logger.Named("gateway"),
	}
}

func (g *restyGateway) Unauthorized() <-chan struct{} {
	return g.signal
}

// Send 发送请求 (不重试、不限流、不缓存)
func (g *restyGateway) Send(ctx context.Context, call *Call) Result {
	// 1. 读取当前 token
	token := g.tokens.Token()

	// 2. 未登录时需要鉴权的请求直接拦截，不发往远端
	if call.Auth && token == "" {
		g.raiseUnauthorized()
		return Result{
			Outcome: OutcomeUnauthorized,
			Err:     &APIError{Kind: KindUnauthorized, Err: ErrNoSession},
		}
	}

	// 3. 组装请求
	req := BuildRequest(ctx, g.client, token)
	if len(call.Query) > 0 {
		req.SetQueryParams(call.Query)
	}
	if call.Body != nil {
		req.SetBody(call.Body)
	}
	if call.Result != nil {
		req.SetResult(call.Result)
	}

	// 4. 发送
	resp, err := req.Execute(call.Method, call.Path)
	if err != nil {
		g.log.Warn("request failed",
			zap.String("method", call.Method), zap.String("path", call.Path), zap.Error(err))
		return Result{
			Outcome: OutcomeError,
			Err:     &APIError{Kind: KindTransport, Err: err},
		}
	}

	code := resp.StatusCode()
	detail := ""
	if body, ok := resp.Error().(*ErrorBody); ok {
		detail = body.Message()
	}

	// 5. 401：清除会话并通知顶层控制器
	if code == http.StatusUnauthorized {
		g.log.Info("session rejected by remote, clearing",
			zap.String("method", call.Method), zap.String("path", call.Path))
		if err := g.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
			g.log.Error("clear session failed", zap.Error(err))
		}
		g.raiseUnauthorized()
		return Result{
			Outcome:    OutcomeUnauthorized,
			StatusCode: code,
			Err:        &APIError{Kind: KindUnauthorized, StatusCode: code, Detail: detail, Err: ErrUnauthorized},
		}
	}

	// 6. 其他失败原样透传
	if resp.IsError() || code >= http.StatusMultipleChoices {
		if detail == "" {
			detail = http.StatusText(code)
		}
		return Result{
			Outcome:    OutcomeError,
			StatusCode: code,
			Err:        &APIError{Kind: kindFromStatus(code), StatusCode: code, Detail: detail},
		}
	}

	return Result{Outcome: OutcomeOK, StatusCode: code}
}

// raiseUnauthorized 非阻塞发送信号，已有未消费信号时合并
func (g *restyGateway) raiseUnauthorized() {
	select {
	case g.signal <- struct{}{}:
	default:
	}
}

// AsError 便捷方法：把 Result 转成 error
func (r Result) AsError() error {
	if r.OK() {
		return nil
	}
	if r.Err != nil {
		return r.Err
	}
	return errors.New("request failed")
}
