package autosave

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"sku_dash_v1/internal/model"
)

// DefaultDelay 最后一次输入到自动保存的静默时间
const DefaultDelay = 2 * time.Second

// State 编辑器状态
type State int

const (
	Idle State = iota
	Editing
	PendingSave
	Saving
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Editing:
		return "editing"
	case PendingSave:
		return "pending_save"
	case Saving:
		return "saving"
	default:
		return "unknown"
	}
}

// event 状态机输入
type event int

const (
	evChange      event = iota // 内容变为非空
	evClear                    // 内容被清空
	evTimerFire                // 定时器到期且内容有效
	evTimerBlank               // 定时器到期但内容只有空白
	evSaveNow                  // 手动保存
	evSaveOK                   // 保存成功，草稿未再变化
	evSaveOKDirty              // 保存成功，保存期间草稿又被修改
	evSaveFail                 // 保存失败
	evClose                    // 离开详情页
)

// transitions 合法转换表，表外的组合视为忽略
// Idle/Editing 收到 evChange 时经过 Editing 立即进入 PendingSave (同时布置定时器)
var transitions = map[State]map[event]State{
	Idle: {
		evChange:  PendingSave,
		evClear:   Idle,
		evSaveNow: Saving,
		evClose:   Idle,
	},
	Editing: {
		evChange:  PendingSave,
		evClear:   Idle,
		evSaveNow: Saving,
		evClose:   Idle,
	},
	PendingSave: {
		evChange:     PendingSave,
		evClear:      Idle,
		evTimerFire:  Saving,
		evTimerBlank: Idle,
		evSaveNow:    Saving,
		evClose:      Idle,
	},
	Saving: {
		evSaveOK:      Idle,
		evSaveOKDirty: PendingSave,
		evSaveFail:    Editing,
		evClose:       Idle,
	},
}

// ErrClosed 编辑器已关闭
var ErrClosed = errors.New("autosave: editor closed")

// NoteCreator 保存草稿需要的远端能力
type NoteCreator interface {
	CreateNote(ctx context.Context, skuID, content string) (*model.Note, error)
}

// Draft 未保存的草稿，只存在于内存
type Draft struct {
	Content  string
	Dirty    bool
	InFlight bool
}

// Event 状态变化通知
type Event struct {
	State State
	Note  *model.Note // 保存成功时
	Err   error       // 保存失败时
}

// Options 引擎参数
type Options struct {
	Delay     time.Duration
	Scheduler Scheduler
	OnEvent   func(Event)
	Logger    *zap.Logger
}

// Engine 单个 SKU 详情页的备注自动保存
type Engine struct {
	baseCtx context.Context
	skuID   string
	api     NoteCreator
	notes   *Notebook
	delay   time.Duration
	sched   Scheduler
	onEvent func(Event)
	log     *zap.Logger

	mu       sync.Mutex
	state    State
	draft    Draft
	inflight string // 正在保存的原始草稿
	lastErr  error
	timer    Timer
	timerSeq uint64
	closed   bool
}

// NewEngine 工厂方法
// ctx 用于定时器触发的保存，手动保存使用调用方传入的 ctx
func NewEngine(ctx context.Context, skuID string, api NoteCreator, notes *Notebook, opts Options) *Engine {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		baseCtx: ctx,
		skuID:   skuID,
		api:     api,
		notes:   notes,
		delay:   opts.Delay,
		sched:   opts.Scheduler,
		onEvent: opts.OnEvent,
		log:     opts.Logger.Named("autosave").With(zap.String("sku_id", skuID)),
	}
}

// State 当前状态
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Draft 草稿快照
func (e *Engine) Draft() Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// LastError 最近一次保存失败的原因，成功后清空
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Notes 本详情页的备注集合
func (e *Engine) Notes() *Notebook {
	return e.notes
}

// Change 输入框内容变化
func (e *Engine) Change(content string) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.draft.Content = content
	e.draft.Dirty = content != ""

	// 保存中只记录内容，结束时再决定下一步
	if e.state == Saving {
		e.mu.Unlock()
		return
	}

	if content == "" {
		e.stopTimer()
		e.fire(evClear)
	} else {
		e.fire(evChange)
		e.arm()
	}
	ev := Event{State: e.state}
	e.mu.Unlock()
	e.emit(ev)
}

// SaveNow 立即保存，取消待触发的定时器
// 保存中或内容为空时不做任何事
func (e *Engine) SaveNow(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if e.state == Saving || strings.TrimSpace(e.draft.Content) == "" {
		e.mu.Unlock()
		return nil
	}
	e.stopTimer()
	content := e.beginSave(evSaveNow)
	e.mu.Unlock()
	e.emit(Event{State: Saving})

	return e.save(ctx, content)
}

// Close 离开详情页：取消定时器，丢弃草稿，不做保存
// 之后到达的保存结果一律丢弃
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.stopTimer()
	e.fire(evClose)
	e.closed = true
	e.draft = Draft{}
	e.inflight = ""
}

// ==================== 内部 ====================

// fire 按转换表迁移状态，调用方需持有锁
func (e *Engine) fire(ev event) {
	next, ok := transitions[e.state][ev]
	if !ok {
		e.log.Debug("ignored transition", zap.Stringer("state", e.state), zap.Int("event", int(ev)))
		return
	}
	e.state = next
}

// arm 重新布置防抖定时器，调用方需持有锁
func (e *Engine) arm() {
	e.stopTimer()
	seq := e.timerSeq
	e.timer = e.sched.AfterFunc(e.delay, func() { e.onTimer(seq) })
}

// stopTimer 取消定时器并作废已触发但尚未拿到锁的回调
func (e *Engine) stopTimer() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.timerSeq++
}

// beginSave 进入 Saving，返回要提交的内容，调用方需持有锁
func (e *Engine) beginSave(ev event) string {
	e.fire(ev)
	e.draft.InFlight = true
	e.inflight = e.draft.Content
	return strings.TrimSpace(e.draft.Content)
}

func (e *Engine) onTimer(seq uint64) {
	e.mu.Lock()
	if e.closed || seq != e.timerSeq || e.state != PendingSave {
		e.mu.Unlock()
		return
	}
	e.timer = nil

	// 1. 只有空白：不发请求，回到 Idle
	if strings.TrimSpace(e.draft.Content) == "" {
		e.fire(evTimerBlank)
		e.mu.Unlock()
		e.emit(Event{State: Idle})
		return
	}

	// 2. 自动保存
	content := e.beginSave(evTimerFire)
	e.mu.Unlock()
	e.emit(Event{State: Saving})

	if err := e.save(e.baseCtx, content); err != nil {
		e.log.Warn("autosave failed", zap.Error(err))
	}
}

// save 在锁外发请求，结果回来后再加锁合并
func (e *Engine) save(ctx context.Context, content string) error {
	note, err := e.api.CreateNote(ctx, e.skuID, content)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		e.log.Debug("discarding save result of closed editor", zap.Error(err))
		return err
	}
	e.draft.InFlight = false
	submitted := e.inflight
	e.inflight = ""

	if err != nil {
		e.lastErr = err
		e.fire(evSaveFail)
		ev := Event{State: e.state, Err: err}
		e.mu.Unlock()
		e.emit(ev)
		return err
	}

	e.lastErr = nil
	e.notes.Append(*note)
	if e.draft.Content == submitted || strings.TrimSpace(e.draft.Content) == "" {
		e.draft = Draft{}
		e.fire(evSaveOK)
	} else {
		e.fire(evSaveOKDirty)
		e.arm()
	}
	ev := Event{State: e.state, Note: note}
	e.mu.Unlock()
	e.emit(ev)
	return nil
}

func (e *Engine) emit(ev Event) {
	if e.onEvent != nil {
		e.onEvent(ev)
	}
}
