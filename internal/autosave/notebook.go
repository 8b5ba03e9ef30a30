package autosave

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"sku_dash_v1/internal/model"
)

var (
	ErrReadOnly     = errors.New("notes are read-only for this role")
	ErrNotAuthor    = errors.New("only the author can modify this note")
	ErrNoteNotFound = errors.New("note not found")
	ErrNotConfirmed = errors.New("delete not confirmed")
	ErrEmptyContent = errors.New("note content is required")
)

// NoteModifier 修改/删除备注的远端能力
type NoteModifier interface {
	UpdateNote(ctx context.Context, id, content string) (*model.Note, error)
	DeleteNote(ctx context.Context, id string) error
}

// NoteAPI 详情页用到的全部备注接口
type NoteAPI interface {
	NoteCreator
	NoteModifier
}

// Notebook 单个 SKU 的备注集合
// 所有结果按 note id 合并，互不覆盖
type Notebook struct {
	skuID string
	actor *model.User
	api   NoteModifier

	mu    sync.RWMutex
	notes []model.Note
}

// NewNotebook 工厂方法，initial 保持远端顺序
func NewNotebook(skuID string, actor *model.User, api NoteModifier, initial []model.Note) *Notebook {
	nb := &Notebook{skuID: skuID, actor: actor, api: api}
	for _, n := range initial {
		nb.Append(n)
	}
	return nb
}

// SKUID 所属 SKU
func (nb *Notebook) SKUID() string { return nb.skuID }

// List 副本
func (nb *Notebook) List() []model.Note {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	out := make([]model.Note, len(nb.notes))
	copy(out, nb.notes)
	return out
}

// Len 条数
func (nb *Notebook) Len() int {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	return len(nb.notes)
}

// Get 按 id 查找
func (nb *Notebook) Get(id string) (model.Note, bool) {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	if i := nb.index(id); i >= 0 {
		return nb.notes[i], true
	}
	return model.Note{}, false
}

// Append 追加；id 已存在时原位替换
func (nb *Notebook) Append(n model.Note) {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	if i := nb.index(string(n.ID)); i >= 0 {
		nb.notes[i] = n
		return
	}
	nb.notes = append(nb.notes, n)
}

// Reset 用远端的最新列表整体替换 (刷新成功时)
func (nb *Notebook) Reset(notes []model.Note) {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	nb.notes = nb.notes[:0:0]
	for _, n := range notes {
		if i := nb.index(string(n.ID)); i >= 0 {
			nb.notes[i] = n
			continue
		}
		nb.notes = append(nb.notes, n)
	}
}

// replace 只更新仍然存在的条目，已删除的不复活
func (nb *Notebook) replace(n model.Note) bool {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	if i := nb.index(string(n.ID)); i >= 0 {
		nb.notes[i] = n
		return true
	}
	return false
}

func (nb *Notebook) remove(id string) {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	if i := nb.index(id); i >= 0 {
		nb.notes = append(nb.notes[:i], nb.notes[i+1:]...)
	}
}

// index 调用方需持有锁
func (nb *Notebook) index(id string) int {
	for i := range nb.notes {
		if string(nb.notes[i].ID) == id {
			return i
		}
	}
	return -1
}

// CanModify 当前用户能否修改/删除该备注
// 只有作者本人且角色为 brand_user 才可以；merch_ops 只读
func (nb *Notebook) CanModify(id string) (model.Note, error) {
	if nb.actor == nil || !nb.actor.Role.CanAuthorNotes() {
		return model.Note{}, ErrReadOnly
	}
	note, ok := nb.Get(id)
	if !ok {
		return model.Note{}, ErrNoteNotFound
	}
	if !note.AuthoredBy(nb.actor) {
		return note, ErrNotAuthor
	}
	return note, nil
}

// Edit 修改备注内容，权限不满足时不发请求
func (nb *Notebook) Edit(ctx context.Context, id, content string) (*model.Note, error) {
	// 1. 权限
	if _, err := nb.CanModify(id); err != nil {
		return nil, err
	}

	// 2. 内容
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	// 3. 远端
	updated, err := nb.api.UpdateNote(ctx, id, content)
	if err != nil {
		return nil, fmt.Errorf("edit note %s: %w", id, err)
	}
	nb.replace(*updated)
	return updated, nil
}

// Delete 删除备注，confirm 返回 false 时不发请求
func (nb *Notebook) Delete(ctx context.Context, id string, confirm func(model.Note) bool) error {
	note, err := nb.CanModify(id)
	if err != nil {
		return err
	}
	if confirm == nil || !confirm(note) {
		return ErrNotConfirmed
	}
	if err := nb.api.DeleteNote(ctx, id); err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	nb.remove(id)
	return nil
}
