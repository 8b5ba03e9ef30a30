package model

// Note SKU 备注
// 由 brand_user 创建，只有作者本人可以编辑/删除
type Note struct {
	ID        ID     `json:"id"`
	SKUID     ID     `json:"sku_id"`
	UserID    ID     `json:"user_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// AuthoredBy 备注是否由该用户创建
// 远端未返回作者时一律视为非本人
func (n *Note) AuthoredBy(u *User) bool {
	if n == nil || u == nil || n.UserID == "" {
		return false
	}
	return n.UserID == u.ID
}
