package model

import (
	"bytes"
	"strconv"

	"github.com/goccy/go-json"
)

// Role 用户角色，决定是否可以编写备注
type Role string

const (
	RoleBrandUser Role = "brand_user" // 品牌方用户：可新建/编辑/删除自己的备注
	RoleMerchOps  Role = "merch_ops"  // 运营：备注只读
)

// Valid 是否为已知角色
func (r Role) Valid() bool {
	return r == RoleBrandUser || r == RoleMerchOps
}

// CanAuthorNotes 是否允许编写备注
func (r Role) CanAuthorNotes() bool {
	return r == RoleBrandUser
}

// ID 远端返回的标识
// 远端服务对同一字段有时返回字符串 (uuid)，有时返回数字，这里统一成字符串
type ID string

// UnmarshalJSON 同时接受 "abc" 和 123 两种写法
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// User 当前登录用户
// 角色在会话期间不可变
type User struct {
	ID       ID     `json:"id" validate:"required"`
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"`
	Role     Role   `json:"role" validate:"required,oneof=brand_user merch_ops"`
}
