package net

import (
	"context"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// BuildRequest 通用请求构建器
// 职责：统一封装鉴权头 (Authorization: Bearer) 和标准头 (Accept, X-Request-ID)
// token 为空时不带任何凭证
func BuildRequest(ctx context.Context, client *resty.Client, token string) *resty.Request {
	req := client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("X-Request-ID", uuid.NewString()).
		SetError(&ErrorBody{})

	if token != "" {
		req.SetAuthToken(token)
	}

	return req
}
