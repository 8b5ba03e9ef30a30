package net

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// ==================== 错误分类 ====================

// Kind 远端失败的分类
type Kind int

const (
	KindTransport    Kind = iota // 网络层失败 (连接被拒、超时)
	KindValidation               // 400 / 422
	KindForbidden                // 403
	KindNotFound                 // 404
	KindUnauthorized             // 401 或本地无会话
	KindServer                   // 5xx 及其他非 2xx
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindValidation:
		return "validation"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "server"
	}
}

var (
	// ErrUnauthorized 远端返回 401
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoSession 需要鉴权的请求在未登录时被拦截，未发出
	ErrNoSession = errors.New("no active session")
)

// APIError 透传给调用方的远端错误
type APIError struct {
	Kind       Kind
	StatusCode int
	Detail     string // 远端 detail 字段
	Err        error  // 底层错误 (网络错误 / 哨兵错误)
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString("api ")
	b.WriteString(e.Kind.String())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " [%d]", e.StatusCode)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// KindOf 提取错误分类，非 APIError 视为网络层错误
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindTransport
}

// IsUnauthorized 是否需要重新登录
func IsUnauthorized(err error) bool {
	return err != nil && KindOf(err) == KindUnauthorized
}

// kindFromStatus 状态码 -> 分类
func kindFromStatus(code int) Kind {
	switch {
	case code == http.StatusUnauthorized:
		return KindUnauthorized
	case code == http.StatusForbidden:
		return KindForbidden
	case code == http.StatusNotFound:
		return KindNotFound
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindServer
	}
}

// ==================== 错误体解析 ====================

// ErrorBody 远端错误体，detail 可能是字符串，也可能是校验错误数组
type ErrorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// Message 提取可读信息
func (b *ErrorBody) Message() string {
	if b == nil || len(b.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(b.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(b.Detail, &items); err == nil && len(items) > 0 {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if len(it.Loc) > 0 {
				msgs = append(msgs, fmt.Sprintf("%v: %s", it.Loc[len(it.Loc)-1], it.Msg))
			} else {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return string(b.Detail)
}
