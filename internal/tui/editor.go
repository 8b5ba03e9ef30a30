// Package tui SKU 详情页的交互式备注编辑器
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"

	"sku_dash_v1/internal/autosave"
	"sku_dash_v1/internal/controller"
	"sku_dash_v1/internal/model"
	"sku_dash_v1/internal/view"
)

// ==================== 消息 ====================

type autosaveMsg struct{ ev autosave.Event }

type saveDoneMsg struct{ err error }

type noteOpMsg struct {
	verb    string
	content string
	err     error
}

// ==================== Model ====================

// Model 编辑器状态
// 自动保存事件来自定时器 goroutine，经 events 通道转成 tea.Msg
type Model struct {
	ctx     context.Context
	detail  *controller.DetailController
	events  <-chan autosave.Event
	input   textinput.Model
	cursor  int // 选中的备注
	confirm string
	status  string
	err     error
	width   int
}

// NewModel detail 需已经 Open；events 为 DetailOptions.OnEvent 写入的通道
func NewModel(ctx context.Context, detail *controller.DetailController, events <-chan autosave.Event) *Model {
	ti := textinput.New()
	ti.Placeholder = "Write a note..."
	ti.CharLimit = 2000
	ti.Prompt = "> "
	ti.Focus()

	return &Model{
		ctx:    ctx,
		detail: detail,
		events: events,
		input:  ti,
		width:  80,
	}
}

// EventSink 生成 DetailOptions.OnEvent 和对应的通道
// 通道满时丢弃旧事件，界面只关心最新状态
func EventSink() (func(autosave.Event), <-chan autosave.Event) {
	ch := make(chan autosave.Event, 16)
	return func(ev autosave.Event) {
		select {
		case ch <- ev:
		default:
		}
	}, ch
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent())
}

func (m *Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case ev := <-m.events:
			return autosaveMsg{ev}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case autosaveMsg:
		m.onAutosave(msg.ev)
		cmds = append(cmds, m.waitForEvent())

	case saveDoneMsg:
		m.err = msg.err
		m.syncInput()

	case noteOpMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = "note " + msg.verb
		} else if msg.content != "" && m.input.Value() == "" {
			// 修改失败：把文字放回输入框，不写入草稿
			m.input.SetValue(msg.content)
		}

	case tea.KeyPressMsg:
		if m.handleKey(msg, &cmds) {
			return m, tea.Batch(cmds...)
		}
		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
		// 光标移动等不改内容的按键不重置自动保存计时
		if m.input.Value() != before {
			if err := m.detail.Type(m.input.Value()); err != nil {
				m.err = err
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// handleKey 处理快捷键，返回 true 表示已消费
func (m *Model) handleKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) bool {
	// 删除确认
	if m.confirm != "" {
		id := m.confirm
		m.confirm = ""
		if msg.String() == "y" {
			*cmds = append(*cmds, m.deleteCmd(id))
		} else {
			m.status = "delete cancelled"
		}
		return true
	}

	switch msg.String() {
	case "ctrl+c", "esc":
		// 离开时丢弃未保存的草稿
		m.detail.Close()
		*cmds = append(*cmds, tea.Quit)
		return true
	case "ctrl+s":
		*cmds = append(*cmds, m.saveCmd())
		return true
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return true
	case "down":
		if m.cursor < len(m.detail.Snapshot().Notes)-1 {
			m.cursor++
		}
		return true
	case "ctrl+d":
		if id, ok := m.selectedModifiable(); ok {
			m.confirm = id
		}
		return true
	case "ctrl+e":
		// 用输入框内容替换选中的备注
		id, ok := m.selectedModifiable()
		if !ok {
			return true
		}
		content := m.input.Value()
		// 这段文字用于修改，不再作为新备注自动保存
		m.input.SetValue("")
		if err := m.detail.Type(""); err != nil {
			m.err = err
			return true
		}
		*cmds = append(*cmds, m.editCmd(id, content))
		return true
	}
	return false
}

// selectedModifiable 选中的备注能否由当前用户修改，不能时记录原因
func (m *Model) selectedModifiable() (string, bool) {
	notes := m.detail.Snapshot().Notes
	if m.cursor >= len(notes) {
		return "", false
	}
	id := string(notes[m.cursor].ID)
	if _, err := m.detail.CheckNote(id); err != nil {
		m.err = err
		return "", false
	}
	return id, true
}

func (m *Model) saveCmd() tea.Cmd {
	return func() tea.Msg {
		return saveDoneMsg{err: m.detail.SaveNow(m.ctx)}
	}
}

func (m *Model) editCmd(id, content string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.detail.EditNote(m.ctx, id, content)
		return noteOpMsg{verb: "updated", content: content, err: err}
	}
}

func (m *Model) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		err := m.detail.DeleteNote(m.ctx, id, func(model.Note) bool { return true })
		return noteOpMsg{verb: "deleted", err: err}
	}
}

func (m *Model) onAutosave(ev autosave.Event) {
	switch {
	case ev.Err != nil:
		m.err = ev.Err
	case ev.Note != nil:
		m.err = nil
		m.status = "note saved"
		m.syncInput()
	}
}

// syncInput 保存成功且草稿已清空时清空输入框
func (m *Model) syncInput() {
	if m.detail.Snapshot().Draft.Content == "" && m.input.Value() != "" {
		m.input.SetValue("")
	}
}

// ==================== 渲染 ====================

func (m *Model) View() string {
	snap := m.detail.Snapshot()
	var b strings.Builder

	if snap.SKU == nil {
		b.WriteString(errorStyle.Render(controller.Present(snap.LastErr).Message))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(RenderSKU(snap.SKU))
	b.WriteString("\n")

	// 备注
	b.WriteString(titleStyle.Render(fmt.Sprintf("Notes (%d)", len(snap.Notes))))
	b.WriteString("\n")
	for i, n := range snap.Notes {
		marker := "  "
		if i == m.cursor {
			marker = "▸ "
		}
		line := marker + n.Content
		if snap.CanAuthor && m.isMine(n) {
			line = mineStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.confirm != "" {
		b.WriteString(warningStyle.Render("Delete this note? (y/N)"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	// 输入
	if snap.CanAuthor {
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(statusText(snap.State, snap.Draft.InFlight)))
		b.WriteString("\n")
	} else {
		b.WriteString(labelStyle.Render("notes are read-only for your role"))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(controller.Present(m.err).Message))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(okStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("ctrl+s save • ↑/↓ select • ctrl+e replace selected • ctrl+d delete • esc quit"))
	return b.String()
}

// isMine 复用 Notebook 的权限规则
func (m *Model) isMine(n model.Note) bool {
	_, err := m.detail.CheckNote(string(n.ID))
	return err == nil
}

// RenderSKU 指标、徽标和销售曲线
func RenderSKU(sku *model.SKU) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(sku.Name))
	b.WriteString(labelStyle.Render("  " + string(sku.ID)))
	b.WriteString("\n")
	b.WriteString(kv("Sales", view.FormatCurrency(sku.Sales)))
	b.WriteString("   ")
	b.WriteString(kv("Return", Badge(view.ReturnBadge(sku.ReturnPercentage), view.FormatPercent(sku.ReturnPercentage))))
	b.WriteString("   ")
	b.WriteString(kv("Content", Badge(view.ContentBadge(sku.ContentScore), fmt.Sprintf("%.1f/10 %s", sku.ContentScore, Stars(sku.ContentScore)))))
	b.WriteString("\n")

	if len(sku.SalesData) > 0 {
		values := make([]float64, 0, len(sku.SalesData))
		for _, p := range sku.SalesData {
			values = append(values, p.Sales)
		}
		first, last := sku.SalesData[0], sku.SalesData[len(sku.SalesData)-1]
		b.WriteString(kv("Monthly sales", fmt.Sprintf("%s %s → %s", Sparkline(values), first.Date, last.Date)))
		b.WriteString("\n")
	}
	return b.String()
}
