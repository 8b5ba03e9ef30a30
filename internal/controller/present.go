package controller

import (
	"errors"

	"sku_dash_v1/internal/autosave"
	"sku_dash_v1/pkg/net"
)

// Display 错误的展示方式
type Display int

const (
	DisplayNone     Display = iota
	DisplayInline           // 就近展示在输入框/按钮旁
	DisplayFullView         // 整个视图替换为错误页 (例如 SKU 不存在)
	DisplayRedirect         // 会话失效，回到登录
	DisplayRetry            // 网络/服务端失败，提示重试，已加载的数据保留
)

func (d Display) String() string {
	switch d {
	case DisplayInline:
		return "inline"
	case DisplayFullView:
		return "full_view"
	case DisplayRedirect:
		return "redirect"
	case DisplayRetry:
		return "retry"
	default:
		return "none"
	}
}

// Presentation 错误对应的展示
type Presentation struct {
	Display Display
	Message string
}

// Present 错误 -> 展示方式
func Present(err error) Presentation {
	if err == nil {
		return Presentation{}
	}

	// 1. 本地规则拒绝 (未发请求)
	switch {
	case errors.Is(err, autosave.ErrReadOnly),
		errors.Is(err, autosave.ErrNotAuthor),
		errors.Is(err, autosave.ErrEmptyContent),
		errors.Is(err, autosave.ErrNotConfirmed):
		return Presentation{Display: DisplayInline, Message: rootMessage(err)}
	case errors.Is(err, autosave.ErrNoteNotFound):
		return Presentation{Display: DisplayFullView, Message: rootMessage(err)}
	}

	// 2. 远端错误
	var apiErr *net.APIError
	if !errors.As(err, &apiErr) {
		return Presentation{Display: DisplayRetry, Message: err.Error()}
	}
	msg := apiErr.Detail
	if msg == "" {
		msg = apiErr.Error()
	}
	switch apiErr.Kind {
	case net.KindUnauthorized:
		return Presentation{Display: DisplayRedirect, Message: "session expired, please log in again"}
	case net.KindValidation, net.KindForbidden:
		return Presentation{Display: DisplayInline, Message: msg}
	case net.KindNotFound:
		return Presentation{Display: DisplayFullView, Message: msg}
	default:
		return Presentation{Display: DisplayRetry, Message: msg}
	}
}

// rootMessage 去掉包装前缀，只保留最内层的哨兵错误信息
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
