package autosave

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"sku_dash_v1/internal/model"
)

func seedNotes() []model.Note {
	return []model.Note{
		{ID: "n1", SKUID: "sku-1", UserID: "u-1", Content: "mine"},
		{ID: "n2", SKUID: "sku-1", UserID: "u-2", Content: "someone else"},
		{ID: "n3", SKUID: "sku-1", Content: "unknown author"},
	}
}

func always(model.Note) bool { return true }

// ==================== 权限 ====================

func TestNotebook_CanModify(t *testing.T) {
	merch := &model.User{ID: "u-1", Username: "ops", Role: model.RoleMerchOps}

	tests := []struct {
		name    string
		actor   *model.User
		id      string
		wantErr error
	}{
		{"作者本人", brandUser, "n1", nil},
		{"他人备注", brandUser, "n2", ErrNotAuthor},
		{"缺少作者", brandUser, "n3", ErrNotAuthor},
		{"不存在", brandUser, "n9", ErrNoteNotFound},
		{"运营只读 (即使 id 相同)", merch, "n1", ErrReadOnly},
		{"未登录", nil, "n1", ErrReadOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nb := NewNotebook("sku-1", tt.actor, nil, seedNotes())
			_, err := nb.CanModify(tt.id)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNotebook_RejectedBeforeAnyRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := NewMockNoteAPI(ctrl)
	// 没有 EXPECT：任何请求都会让测试失败
	nb := NewNotebook("sku-1", brandUser, api, seedNotes())

	_, err := nb.Edit(context.Background(), "n2", "hijack")
	assert.ErrorIs(t, err, ErrNotAuthor)

	err = nb.Delete(context.Background(), "n2", always)
	assert.ErrorIs(t, err, ErrNotAuthor)

	asked := false
	err = nb.Delete(context.Background(), "n1", func(model.Note) bool { asked = true; return false })
	assert.True(t, asked)
	assert.ErrorIs(t, err, ErrNotConfirmed)

	_, err = nb.Edit(context.Background(), "n1", "   ")
	assert.ErrorIs(t, err, ErrEmptyContent)

	assert.Equal(t, 3, nb.Len())
}

// ==================== 修改 / 删除 ====================

func TestNotebook_EditReplacesInPlace(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := NewMockNoteAPI(ctrl)
	api.EXPECT().UpdateNote(gomock.Any(), "n1", "updated").
		Return(&model.Note{ID: "n1", SKUID: "sku-1", UserID: "u-1", Content: "updated"}, nil)

	nb := NewNotebook("sku-1", brandUser, api, seedNotes())
	got, err := nb.Edit(context.Background(), "n1", "  updated  ")

	require.NoError(t, err)
	assert.Equal(t, "updated", got.Content)
	list := nb.List()
	require.Len(t, list, 3)
	assert.Equal(t, "updated", list[0].Content)
	assert.Equal(t, "someone else", list[1].Content)
}

func TestNotebook_DeleteRemovesOnSuccessOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := NewMockNoteAPI(ctrl)
	boom := errors.New("forbidden")
	gomock.InOrder(
		api.EXPECT().DeleteNote(gomock.Any(), "n1").Return(boom),
		api.EXPECT().DeleteNote(gomock.Any(), "n1").Return(nil),
	)

	nb := NewNotebook("sku-1", brandUser, api, seedNotes())

	err := nb.Delete(context.Background(), "n1", always)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, nb.Len())

	require.NoError(t, nb.Delete(context.Background(), "n1", always))
	_, ok := nb.Get("n1")
	assert.False(t, ok)
	assert.Equal(t, 2, nb.Len())
}

func TestNotebook_AppendMergesByID(t *testing.T) {
	nb := NewNotebook("sku-1", brandUser, nil, seedNotes())

	nb.Append(model.Note{ID: "n2", Content: "refreshed"})
	nb.Append(model.Note{ID: "n4", Content: "new"})

	list := nb.List()
	require.Len(t, list, 4)
	assert.Equal(t, "refreshed", list[1].Content)
	assert.Equal(t, model.ID("n4"), list[3].ID)
}

// ==================== 并发 ====================

func TestNotebook_ConcurrentEditAndDeleteMergeByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := NewMockNoteAPI(ctrl)

	const n = 20
	initial := make([]model.Note, 0, n)
	for i := range n {
		initial = append(initial, model.Note{ID: model.ID(fmt.Sprintf("n%02d", i)), UserID: "u-1", Content: "v0"})
	}

	api.EXPECT().UpdateNote(gomock.Any(), gomock.Any(), "v1").
		DoAndReturn(func(_ context.Context, id, content string) (*model.Note, error) {
			return &model.Note{ID: model.ID(id), UserID: "u-1", Content: content}, nil
		}).
		Times(n / 2)
	api.EXPECT().DeleteNote(gomock.Any(), gomock.Any()).Return(nil).Times(n / 2)

	nb := NewNotebook("sku-1", brandUser, api, initial)

	var wg conc.WaitGroup
	for i := range n {
		id := fmt.Sprintf("n%02d", i)
		if i%2 == 0 {
			wg.Go(func() {
				_, err := nb.Edit(context.Background(), id, "v1")
				assert.NoError(t, err)
			})
		} else {
			wg.Go(func() {
				assert.NoError(t, nb.Delete(context.Background(), id, always))
			})
		}
	}
	wg.Wait()

	list := nb.List()
	require.Len(t, list, n/2)
	for i, note := range list {
		assert.Equal(t, model.ID(fmt.Sprintf("n%02d", i*2)), note.ID)
		assert.Equal(t, "v1", note.Content)
	}
}

func TestNotebook_ResetReplacesList(t *testing.T) {
	nb := NewNotebook("sku-1", brandUser, nil, seedNotes())
	before := nb.List()

	nb.Reset([]model.Note{
		{ID: "n2", SKUID: "sku-1", UserID: "u-2", Content: "edited remotely"},
		{ID: "n4", SKUID: "sku-1", UserID: "u-1", Content: "new"},
		{ID: "n4", SKUID: "sku-1", UserID: "u-1", Content: "new, again"},
	})

	got := nb.List()
	require.Len(t, got, 2)
	assert.Equal(t, "edited remotely", got[0].Content)
	assert.Equal(t, "new, again", got[1].Content)
	assert.Len(t, before, 3)
	assert.Equal(t, "mine", before[0].Content)
}
