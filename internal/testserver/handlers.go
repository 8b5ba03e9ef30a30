package testserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"sku_dash_v1/internal/api/dto"
	"sku_dash_v1/internal/model"
	"sku_dash_v1/internal/view"
)

// ==================== Auth ====================

func (s *Server) login(c *gin.Context) {
	// 1. 参数
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBind(c, err)
		return
	}

	// 2. 冷却期内不校验
	if !s.loginThrottle(req.Username, c) {
		return
	}

	// 3. 校验密码
	s.mu.Lock()
	acc := s.accounts[req.Username]
	s.mu.Unlock()
	if acc == nil || bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(req.Password)) != nil {
		s.throttle.mark(req.Username)
		abortDetail(c, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	s.throttle.reset(req.Username)

	s.respondToken(c, acc)
}

func (s *Server) register(c *gin.Context) {
	// 1. 参数
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBind(c, err)
		return
	}
	if !req.Role.Valid() {
		abortValidation(c, "role", "role must be brand_user or merch_ops")
		return
	}

	// 2. 唯一性
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, err.Error())
		return
	}
	s.mu.Lock()
	for _, a := range s.accounts {
		if a.Username == req.Username || a.Email == req.Email {
			s.mu.Unlock()
			abortDetail(c, http.StatusBadRequest, "Username or email already registered")
			return
		}
	}
	acc := &account{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		Role:         req.Role,
		PasswordHash: hash,
	}
	s.accounts[acc.Username] = acc
	s.mu.Unlock()

	s.respondToken(c, acc)
}

func (s *Server) respondToken(c *gin.Context, acc *account) {
	token, err := s.issueToken(acc)
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, dto.AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        acc.public(),
	})
}

// ==================== SKU ====================

// listSKUs 服务端同样使用 view.ComputeView，保证两端排序一致
func (s *Server) listSKUs(c *gin.Context) {
	state := model.ViewState{
		Search:     c.Query("search"),
		FilterType: model.FilterType(c.Query("filter_type")),
		SortField:  model.SortField(c.Query("sort_by")),
		SortOrder:  model.SortOrder(c.DefaultQuery("sort_order", string(model.SortAsc))),
	}

	s.mu.Lock()
	raw := make([]model.SKU, len(s.skus))
	copy(raw, s.skus)
	s.mu.Unlock()

	c.JSON(http.StatusOK, view.ComputeView(raw, state).Visible)
}

func (s *Server) getSKU(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sku := range s.skus {
		if string(sku.ID) == id {
			c.JSON(http.StatusOK, sku)
			return
		}
	}
	abortDetail(c, http.StatusNotFound, "SKU not found")
}

// ==================== Notes ====================

func (s *Server) listNotes(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	out := make([]model.Note, 0)
	for _, n := range s.notes {
		if string(n.SKUID) == id {
			out = append(out, n)
		}
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, out)
}

func (s *Server) createNote(c *gin.Context) {
	var req dto.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBind(c, err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		abortValidation(c, "content", "content must not be blank")
		return
	}

	now := s.now().Format("2006-01-02T15:04:05.000000")
	note := model.Note{
		ID:        model.ID(uuid.NewString()),
		SKUID:     model.ID(req.SKUID),
		UserID:    model.ID(claimsOf(c).UserID),
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.notes = append(s.notes, note)
	s.mu.Unlock()

	c.JSON(http.StatusOK, note)
}

func (s *Server) updateNote(c *gin.Context) {
	content, ok := c.GetQuery("content")
	if !ok {
		abortValidation(c, "content", "field required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i, status := s.ownedNote(c.Param("id"), claimsOf(c))
	if status != http.StatusOK {
		abortDetail(c, status, http.StatusText(status))
		return
	}
	s.notes[i].Content = content
	s.notes[i].UpdatedAt = s.now().Format("2006-01-02T15:04:05.000000")
	c.JSON(http.StatusOK, s.notes[i])
}

func (s *Server) deleteNote(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, status := s.ownedNote(c.Param("id"), claimsOf(c))
	if status != http.StatusOK {
		abortDetail(c, status, http.StatusText(status))
		return
	}
	s.notes = append(s.notes[:i], s.notes[i+1:]...)
	c.JSON(http.StatusOK, gin.H{"message": "Note deleted successfully"})
}

// ownedNote 查找备注并校验作者，调用方需持有锁
func (s *Server) ownedNote(id string, claims *UserClaims) (int, int) {
	for i := range s.notes {
		if string(s.notes[i].ID) != id {
			continue
		}
		if claims == nil || string(s.notes[i].UserID) != claims.UserID {
			return i, http.StatusForbidden
		}
		return i, http.StatusOK
	}
	return -1, http.StatusNotFound
}

// abortBind 把 gin 的绑定错误转换成 422
func abortBind(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		abortValidation(c, strings.ToLower(fe.Field()), "field "+fe.Tag())
		return
	}
	abortValidation(c, "body", err.Error())
}
