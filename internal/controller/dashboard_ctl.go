package controller

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"sku_dash_v1/internal/model"
	"sku_dash_v1/internal/view"
)

// SKULister 看板需要的远端能力
type SKULister interface {
	ListSKUs(ctx context.Context, state *model.ViewState) ([]model.SKU, error)
}

// DashboardController SKU 看板
// serverSide 为 true 时每次视图状态变化都带参数重新拉取；否则只拉取一次，本地计算
// 两种方式都会在本地再套一次 ComputeView，展示顺序一致
type DashboardController struct {
	skus       SKULister
	serverSide bool
	guard      view.Guard
	log        *zap.Logger

	mu      sync.RWMutex
	state   model.ViewState
	raw     []model.SKU
	view    view.View
	loaded  bool
	lastErr error
}

func NewDashboardController(skus SKULister, serverSide bool, logger *zap.Logger) *DashboardController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardController{
		skus:       skus,
		serverSide: serverSide,
		state:      model.DefaultViewState(),
		log:        logger.Named("dashboard"),
	}
}

// DashboardSnapshot 渲染所需的全部数据
type DashboardSnapshot struct {
	State   model.ViewState
	View    view.View
	Loaded  bool
	LastErr error
}

// Snapshot 当前快照
func (c *DashboardController) Snapshot() DashboardSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return DashboardSnapshot{
		State:   c.state,
		View:    view.View{Visible: model.CloneSKUs(c.view.Visible), Stats: c.view.Stats},
		Loaded:  c.loaded,
		LastErr: c.lastErr,
	}
}

// State 当前视图状态
func (c *DashboardController) State() model.ViewState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// ==================== 视图状态 ====================

// SetSearch 修改搜索词
func (c *DashboardController) SetSearch(ctx context.Context, search string) error {
	return c.Apply(ctx, func(s *model.ViewState) { s.Search = search })
}

// SetFilter 修改筛选
func (c *DashboardController) SetFilter(ctx context.Context, filter model.FilterType) error {
	return c.Apply(ctx, func(s *model.ViewState) { s.FilterType = filter })
}

// SetSort 指定排序字段和方向
func (c *DashboardController) SetSort(ctx context.Context, field model.SortField, order model.SortOrder) error {
	return c.Apply(ctx, func(s *model.ViewState) {
		s.SortField = field
		s.SortOrder = order
	})
}

// ToggleSort 点击表头：同一字段切换方向，新字段从升序开始
func (c *DashboardController) ToggleSort(ctx context.Context, field model.SortField) error {
	return c.Apply(ctx, func(s *model.ViewState) {
		if s.SortField == field {
			s.SortOrder = s.SortOrder.Toggle()
			return
		}
		s.SortField = field
		s.SortOrder = model.SortAsc
	})
}

// Apply 修改视图状态并刷新
func (c *DashboardController) Apply(ctx context.Context, mutate func(*model.ViewState)) error {
	c.mu.Lock()
	mutate(&c.state)
	state := c.state

	// 本地模式：已有数据时直接重算，不发请求，也不作废进行中的刷新
	if !c.serverSide && c.loaded {
		c.view = view.ComputeView(c.raw, state)
		c.mu.Unlock()
		return nil
	}
	ticket := c.guard.Begin()
	c.mu.Unlock()

	return c.fetch(ctx, state, ticket)
}

// Refresh 按当前状态重新拉取
func (c *DashboardController) Refresh(ctx context.Context) error {
	c.mu.Lock()
	state := c.state
	ticket := c.guard.Begin()
	c.mu.Unlock()

	return c.fetch(ctx, state, ticket)
}

// fetch 拉取并在票据仍有效时采用结果
// 失败时保留上一次的数据
func (c *DashboardController) fetch(ctx context.Context, state model.ViewState, ticket view.Ticket) error {
	var query *model.ViewState
	if c.serverSide {
		query = &state
	}

	raw, err := c.skus.ListSKUs(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.guard.Current(ticket) {
		c.log.Debug("discarding stale sku list", zap.Uint64("ticket", uint64(ticket)))
		return nil
	}
	if err != nil {
		c.lastErr = err
		return err
	}

	c.raw = raw
	c.loaded = true
	c.lastErr = nil
	// 用最新状态重算：本地模式下拉取期间状态可能已被改过
	c.view = view.ComputeView(raw, c.state)
	return nil
}
