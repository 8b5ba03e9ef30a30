package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// ClientOptions API 客户端参数
type ClientOptions struct {
	BaseURL   string
	Timeout   time.Duration
	Debug     bool
	UserAgent string
}

// NewAPIClient 创建一个配置好超时、编解码和调试模式的 Resty 客户端
// 它是全系统统一的网络请求入口，只应交给 Gateway 使用
func NewAPIClient(opts ClientOptions, logger *zap.Logger) *resty.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "skudash/1.0"
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetDebug(opts.Debug). // 调试开关由配置控制
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Content-Type", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		SetRetryCount(0) // 重试策略不在这一层

	if logger != nil {
		client.SetLogger(logger.Named("resty").Sugar())
	}

	return client
}
