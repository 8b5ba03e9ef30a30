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

// NoteService 备注的远端操作
// 权限判断由调用方 (autosave.Notebook) 在发请求前完成，这里只负责传输
type NoteService struct {
	gateway net.Gateway
}

// NewNoteService 工厂方法
func NewNoteService(gateway net.Gateway) *NoteService {
	return &NoteService{gateway: gateway}
}

// ListNotes SKU 下的全部备注，保持远端返回顺序
func (s *NoteService) ListNotes(ctx context.Context, skuID string) ([]model.Note, error) {
	var notes []model.Note
	res := s.gateway.Send(ctx, &net.Call{
		Method: http.MethodGet,
		Path:   "/skus/" + url.PathEscape(skuID) + "/notes",
		Result: &notes,
		Auth:   true,
	})
	if !res.OK() {
		return nil, fmt.Errorf("list notes: %w", res.AsError())
	}
	return notes, nil
}

// CreateNote 新建备注
func (s *NoteService) CreateNote(ctx context.Context, skuID, content string) (*model.Note, error) {
	var note model.Note
	res := s.gateway.Send(ctx, &net.Call{
		Method: http.MethodPost,
		Path:   "/notes",
		Body:   &dto.CreateNoteRequest{SKUID: skuID, Content: content},
		Result: &note,
		Auth:   true,
	})
	if !res.OK() {
		return nil, fmt.Errorf("create note: %w", res.AsError())
	}
	return &note, nil
}

// UpdateNote 修改备注内容
// 远端约定 content 走查询参数
func (s *NoteService) UpdateNote(ctx context.Context, id, content string) (*model.Note, error) {
	var note model.Note
	res := s.gateway.Send(ctx, &net.Call{
		Method: http.MethodPut,
		Path:   "/notes/" + url.PathEscape(id),
		Query:  map[string]string{"content": content},
		Result: &note,
		Auth:   true,
	})
	if !res.OK() {
		return nil, fmt.Errorf("update note: %w", res.AsError())
	}
	return &note, nil
}

// DeleteNote 删除备注
func (s *NoteService) DeleteNote(ctx context.Context, id string) error {
	res := s.gateway.Send(ctx, &net.Call{
		Method: http.MethodDelete,
		Path:   "/notes/" + url.PathEscape(id),
		Auth:   true,
	})
	if !res.OK() {
		return fmt.Errorf("delete note: %w", res.AsError())
	}
	return nil
}
