package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sku_dash_v1/internal/autosave"
	"sku_dash_v1/internal/model"
	"sku_dash_v1/internal/view"
)

// ErrNotOpen 尚未打开任何 SKU
var ErrNotOpen = errors.New("no sku opened")

// SKUGetter 详情页需要的 SKU 接口
type SKUGetter interface {
	GetSKU(ctx context.Context, id string) (*model.SKU, error)
}

// NoteSource 详情页需要的备注接口
type NoteSource interface {
	ListNotes(ctx context.Context, skuID string) ([]model.Note, error)
	autosave.NoteAPI
}

// UserSource 当前登录用户
type UserSource interface {
	User() *model.User
}

// DetailOptions 自动保存参数
type DetailOptions struct {
	Delay     time.Duration
	Scheduler autosave.Scheduler
	OnEvent   func(autosave.Event)
}

// DetailController SKU 详情页：指标、销售曲线、备注和自动保存
// 同一时间只有一个打开的 SKU，切换时丢弃上一个的草稿和迟到的结果
type DetailController struct {
	skus  SKUGetter
	notes NoteSource
	users UserSource
	opts  DetailOptions
	log   *zap.Logger
	guard view.Guard

	mu       sync.RWMutex
	skuID    string
	actor    *model.User
	sku      *model.SKU
	notebook *autosave.Notebook
	engine   *autosave.Engine
	lastErr  error
}

func NewDetailController(skus SKUGetter, notes NoteSource, users UserSource, opts DetailOptions, logger *zap.Logger) *DetailController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DetailController{
		skus:  skus,
		notes: notes,
		users: users,
		opts:  opts,
		log:   logger.Named("detail"),
	}
}

// Open 打开 SKU 详情
// SKU 和备注并行拉取；SKU 失败时整页报错，备注失败时 SKU 照常展示
// 再次打开当前 SKU 等同于 Refresh，草稿和已加载的数据都保留
func (c *DetailController) Open(ctx context.Context, skuID string) error {
	// 1. 关闭上一个编辑器，草稿直接丢弃
	c.mu.Lock()
	if c.skuID == skuID && c.sku != nil {
		c.mu.Unlock()
		return c.Refresh(ctx)
	}
	if c.engine != nil {
		c.engine.Close()
		c.engine = nil
	}
	c.skuID = skuID
	c.actor = c.users.User()
	c.sku = nil
	c.notebook = nil
	c.lastErr = nil
	ticket := c.guard.Begin()
	c.mu.Unlock()

	// 2. 并行拉取，互不取消
	res := c.load(ctx, skuID)

	// 3. 期间切换过 SKU：结果作废
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.guard.Current(ticket) {
		c.log.Debug("discarding stale detail load", zap.String("sku_id", skuID))
		return nil
	}
	if res.skuErr != nil {
		c.lastErr = res.skuErr
		return res.skuErr
	}

	c.sku = res.sku
	c.notebook = autosave.NewNotebook(skuID, c.actor, c.notes, res.notes)
	c.engine = autosave.NewEngine(context.WithoutCancel(ctx), skuID, c.notes, c.notebook, autosave.Options{
		Delay:     c.opts.Delay,
		Scheduler: c.opts.Scheduler,
		OnEvent:   c.opts.OnEvent,
		Logger:    c.log,
	})
	if res.notesErr != nil {
		c.lastErr = res.notesErr
		return res.notesErr
	}
	return nil
}

// Refresh 重新拉取当前 SKU
// 只替换拉取成功的部分；失败时保留已展示的 SKU 和备注，错误记到 LastErr
// 编辑器和草稿不受影响
func (c *DetailController) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.sku == nil {
		skuID := c.skuID
		c.mu.Unlock()
		if skuID == "" {
			return ErrNotOpen
		}
		// 首次加载失败过：按新打开处理
		return c.reopen(ctx, skuID)
	}
	skuID := c.skuID
	ticket := c.guard.Begin()
	c.mu.Unlock()

	res := c.load(ctx, skuID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.guard.Current(ticket) {
		c.log.Debug("discarding stale detail refresh", zap.String("sku_id", skuID))
		return nil
	}
	if res.skuErr == nil {
		c.sku = res.sku
	}
	if res.notesErr == nil && c.notebook != nil {
		c.notebook.Reset(res.notes)
	}
	c.lastErr = errors.Join(res.skuErr, res.notesErr)
	return c.lastErr
}

// reopen 清掉当前 SKU 后重新打开
func (c *DetailController) reopen(ctx context.Context, skuID string) error {
	c.mu.Lock()
	c.skuID = ""
	c.mu.Unlock()
	return c.Open(ctx, skuID)
}

// detailLoad 一次并行拉取的结果，两部分各自成败
type detailLoad struct {
	sku      *model.SKU
	notes    []model.Note
	skuErr   error
	notesErr error
}

// load 并行拉取 SKU 和备注，互不取消
func (c *DetailController) load(ctx context.Context, skuID string) detailLoad {
	var (
		res detailLoad
		g   errgroup.Group
	)
	g.Go(func() error {
		res.sku, res.skuErr = c.skus.GetSKU(ctx, skuID)
		return res.skuErr
	})
	g.Go(func() error {
		res.notes, res.notesErr = c.notes.ListNotes(ctx, skuID)
		return res.notesErr
	})
	_ = g.Wait()
	return res
}

// Close 离开详情页
func (c *DetailController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.guard.Begin()
	if c.engine != nil {
		c.engine.Close()
		c.engine = nil
	}
	c.skuID = ""
	c.sku = nil
	c.notebook = nil
}

// ==================== 备注 ====================

// CanAuthor 当前用户能否新建备注
func (c *DetailController) CanAuthor() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.actor != nil && c.actor.Role.CanAuthorNotes()
}

// Type 备注输入框内容变化
func (c *DetailController) Type(content string) error {
	eng, err := c.writableEngine()
	if err != nil {
		return err
	}
	eng.Change(content)
	return nil
}

// SaveNow 手动保存
func (c *DetailController) SaveNow(ctx context.Context) error {
	eng, err := c.writableEngine()
	if err != nil {
		return err
	}
	return eng.SaveNow(ctx)
}

// EditNote 修改自己的备注
func (c *DetailController) EditNote(ctx context.Context, id, content string) (*model.Note, error) {
	nb, err := c.openNotebook()
	if err != nil {
		return nil, err
	}
	return nb.Edit(ctx, id, content)
}

// DeleteNote 删除自己的备注，需要 confirm 确认
func (c *DetailController) DeleteNote(ctx context.Context, id string, confirm func(model.Note) bool) error {
	nb, err := c.openNotebook()
	if err != nil {
		return err
	}
	return nb.Delete(ctx, id, confirm)
}

// CheckNote 当前用户能否修改该备注 (不发请求)
func (c *DetailController) CheckNote(id string) (model.Note, error) {
	nb, err := c.openNotebook()
	if err != nil {
		return model.Note{}, err
	}
	return nb.CanModify(id)
}

func (c *DetailController) writableEngine() (*autosave.Engine, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.engine == nil {
		return nil, ErrNotOpen
	}
	if c.actor == nil || !c.actor.Role.CanAuthorNotes() {
		return nil, autosave.ErrReadOnly
	}
	return c.engine, nil
}

func (c *DetailController) openNotebook() (*autosave.Notebook, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.notebook == nil {
		return nil, ErrNotOpen
	}
	return c.notebook, nil
}

// ==================== 快照 ====================

// DetailSnapshot 渲染所需的全部数据
type DetailSnapshot struct {
	SKUID     string
	SKU       *model.SKU
	Notes     []model.Note
	Draft     autosave.Draft
	State     autosave.State
	SaveErr   error
	LastErr   error
	CanAuthor bool
}

// Snapshot 当前快照
func (c *DetailController) Snapshot() DetailSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := DetailSnapshot{
		SKUID:     c.skuID,
		LastErr:   c.lastErr,
		CanAuthor: c.actor != nil && c.actor.Role.CanAuthorNotes(),
	}
	if c.sku != nil {
		sku := c.sku.Clone()
		snap.SKU = &sku
	}
	if c.notebook != nil {
		snap.Notes = c.notebook.List()
	}
	if c.engine != nil {
		snap.Draft = c.engine.Draft()
		snap.State = c.engine.State()
		snap.SaveErr = c.engine.LastError()
	}
	return snap
}
