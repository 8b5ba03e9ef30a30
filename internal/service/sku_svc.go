package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"sku_dash_v1/internal/api/dto"
	"sku_dash_v1/internal/model"
	"sku_dash_v1/pkg/net"
)

// SKUService SKU 查询
type SKUService struct {
	gateway net.Gateway
}

// NewSKUService 工厂方法
func NewSKUService(gateway net.Gateway) *SKUService {
	return &SKUService{gateway: gateway}
}

// ListSKUs 拉取 SKU 列表
// state 为 nil 时不带任何查询参数，由本地视图引擎完成筛选和排序
func (s *SKUService) ListSKUs(ctx context.Context, state *model.ViewState) ([]model.SKU, error) {
	call := &net.Call{
		Method: http.MethodGet,
		Path:   "/skus",
		Auth:   true,
	}
	if state != nil {
		call.Query = dto.SKUQuery(*state)
	}

	var skus []model.SKU
	call.Result = &skus
	res := s.gateway.Send(ctx, call)
	if !res.OK() {
		return nil, fmt.Errorf("list skus: %w", res.AsError())
	}
	return skus, nil
}

// GetSKU 拉取单个 SKU
func (s *SKUService) GetSKU(ctx context.Context, id string) (*model.SKU, error) {
	var sku *model.SKU
	res := s.gateway.Send(ctx, &net.Call{
		Method: http.MethodGet,
		Path:   "/skus/" + url.PathEscape(id),
		Result: &sku,
		Auth:   true,
	})
	if !res.OK() {
		return nil, fmt.Errorf("get sku %s: %w", id, res.AsError())
	}
	// 远端对不存在的 id 可能返回 200 + null
	if sku == nil {
		return nil, fmt.Errorf("get sku %s: %w", id,
			&net.APIError{Kind: net.KindNotFound, StatusCode: http.StatusNotFound, Detail: "SKU not found"})
	}
	return sku, nil
}
