package testserver

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"sku_dash_v1/internal/model"
)

// DemoPassword 演示账号的统一密码
const DemoPassword = "password123"

// AddUser 新增账号，返回公开信息
func (s *Server) AddUser(username, email, password string, role model.Role) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	acc := &account{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	}
	s.mu.Lock()
	s.accounts[username] = acc
	s.mu.Unlock()
	return acc.public(), nil
}

// AddSKU 追加 SKU，保持插入顺序
func (s *Server) AddSKU(sku model.SKU) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skus = append(s.skus, sku)
}

// AddNote 直接写入备注 (不经过鉴权)
func (s *Server) AddNote(note model.Note) model.Note {
	if note.ID == "" {
		note.ID = model.ID(uuid.NewString())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, note)
	return note
}

// Notes 某个 SKU 的备注副本
func (s *Server) Notes(skuID string) []model.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Note
	for _, n := range s.notes {
		if string(n.SKUID) == skuID {
			out = append(out, n)
		}
	}
	return out
}

// seed 演示数据
func (s *Server) seed() {
	for _, u := range []struct {
		name string
		role model.Role
	}{
		{"brand_demo", model.RoleBrandUser},
		{"ops_demo", model.RoleMerchOps},
	} {
		if _, err := s.AddUser(u.name, u.name+"@example.com", DemoPassword, u.role); err != nil {
			s.log.Sugar().Warnf("seed user %s: %v", u.name, err)
		}
	}

	now := s.now()
	history := make([]model.SalesDataPoint, 0, 12)
	for m := 0; m < 12; m++ {
		history = append(history, model.SalesDataPoint{
			Month: fmt.Sprintf("Month %d", m+1),
			Sales: float64(2000 + 150*m),
			Date:  now.AddDate(0, m-11, 0).Format("2006-01"),
		})
	}

	for _, sku := range []model.SKU{
		{ID: "SKU-001", Name: "Ceramic Pour-Over Set", Sales: 48210.5, ReturnPercentage: 3.2, ContentScore: 8.7},
		{ID: "SKU-002", Name: "Bamboo Cutting Board", Sales: 12890, ReturnPercentage: 11.4, ContentScore: 6.1},
		{ID: "SKU-003", Name: "Linen Apron", Sales: 7350.25, ReturnPercentage: 6.8, ContentScore: 4.2},
		{ID: "SKU-004", Name: "Cast Iron Skillet", Sales: 91200, ReturnPercentage: 1.9, ContentScore: 9.3},
		{ID: "SKU-005", Name: "Glass Storage Jars", Sales: 15600, ReturnPercentage: 14.2, ContentScore: 3.8},
	} {
		sku.CreatedAt = now.Format(time.RFC3339)
		sku.SalesData = history
		s.AddSKU(sku)
	}
}
