package dto

// CreateNoteRequest 新建备注
type CreateNoteRequest struct {
	SKUID   string `json:"sku_id" binding:"required"`
	Content string `json:"content" binding:"required"`
}
