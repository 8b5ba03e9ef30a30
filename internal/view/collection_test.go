package view

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sku_dash_v1/internal/model"
)

// ==================== 测试辅助 ====================

func names(skus []model.SKU) []string {
	out := make([]string, 0, len(skus))
	for _, s := range skus {
		out = append(out, s.Name)
	}
	return out
}

func sampleSKUs() []model.SKU {
	return []model.SKU{
		{ID: "sku-3", Name: "Blue Mug", Sales: 1200, ReturnPercentage: 12.5, ContentScore: 7.1},
		{ID: "sku-1", Name: "red mug", Sales: 800, ReturnPercentage: 3, ContentScore: 4.2},
		{ID: "sku-2", Name: "Desk Lamp", Sales: 5000, ReturnPercentage: 10, ContentScore: 9.5},
		{ID: "sku-5", Name: "Mug Warmer", Sales: 300, ReturnPercentage: 10.5, ContentScore: 5},
		{ID: "sku-4", Name: "Chair", Sales: 5000, ReturnPercentage: 6, ContentScore: 4.99},
	}
}

// ==================== 场景 ====================

func TestComputeView_SortDescStableOnTie(t *testing.T) {
	raw := []model.SKU{
		{Name: "A", Sales: 100},
		{Name: "B", Sales: 300},
		{Name: "C", Sales: 300},
	}
	state := model.ViewState{SortField: model.SortBySales, SortOrder: model.SortDesc}

	v := ComputeView(raw, state)

	assert.Equal(t, []string{"B", "C", "A"}, names(v.Visible))
	assert.Equal(t, 700.0, v.Stats.TotalSales)
	assert.Equal(t, 3, v.Stats.Count)
}

func TestComputeView_HighReturnIsStrict(t *testing.T) {
	raw := []model.SKU{
		{Name: "exactly ten", ReturnPercentage: 10},
		{Name: "ten and a half", ReturnPercentage: 10.5},
	}
	v := ComputeView(raw, model.ViewState{FilterType: model.FilterHighReturn})

	assert.Equal(t, []string{"ten and a half"}, names(v.Visible))
}

func TestComputeView_Filters(t *testing.T) {
	tests := []struct {
		name  string
		state model.ViewState
		want  []string
	}{
		{"无筛选保持输入顺序", model.ViewState{}, []string{"Blue Mug", "red mug", "Desk Lamp", "Mug Warmer", "Chair"}},
		{"搜索忽略大小写", model.ViewState{Search: "MUG"}, []string{"Blue Mug", "red mug", "Mug Warmer"}},
		{"高退货", model.ViewState{FilterType: model.FilterHighReturn}, []string{"Blue Mug", "Mug Warmer"}},
		{"低内容分 (<5 严格)", model.ViewState{FilterType: model.FilterLowContent}, []string{"red mug", "Chair"}},
		{"搜索 + 筛选", model.ViewState{Search: "mug", FilterType: model.FilterLowContent}, []string{"red mug"}},
		{"无匹配", model.ViewState{Search: "sofa"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ComputeView(sampleSKUs(), tt.state)
			assert.Equal(t, tt.want, names(v.Visible))
		})
	}
}

func TestComputeView_SortFields(t *testing.T) {
	tests := []struct {
		name  string
		field model.SortField
		order model.SortOrder
		want  []string
	}{
		{"名称升序 (字典序，大小写敏感)", model.SortByName, model.SortAsc, []string{"Blue Mug", "Chair", "Desk Lamp", "Mug Warmer", "red mug"}},
		{"id 升序", model.SortByID, model.SortAsc, []string{"red mug", "Desk Lamp", "Blue Mug", "Chair", "Mug Warmer"}},
		{"销售额升序，平局保持输入顺序", model.SortBySales, model.SortAsc, []string{"Mug Warmer", "red mug", "Blue Mug", "Desk Lamp", "Chair"}},
		{"销售额降序，平局保持输入顺序", model.SortBySales, model.SortDesc, []string{"Desk Lamp", "Chair", "Blue Mug", "red mug", "Mug Warmer"}},
		{"退货率降序", model.SortByReturnPercentage, model.SortDesc, []string{"Blue Mug", "Mug Warmer", "Desk Lamp", "Chair", "red mug"}},
		{"内容分升序", model.SortByContentScore, model.SortAsc, []string{"red mug", "Chair", "Mug Warmer", "Blue Mug", "Desk Lamp"}},
		{"未知字段不排序", model.SortField("color"), model.SortAsc, []string{"Blue Mug", "red mug", "Desk Lamp", "Mug Warmer", "Chair"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ComputeView(sampleSKUs(), model.ViewState{SortField: tt.field, SortOrder: tt.order})
			assert.Equal(t, tt.want, names(v.Visible))
		})
	}
}

func TestComputeView_EmptyAndNil(t *testing.T) {
	for _, raw := range [][]model.SKU{nil, {}} {
		v := ComputeView(raw, model.ViewState{Search: "x", SortField: model.SortBySales})
		assert.Empty(t, v.Visible)
		assert.Equal(t, 0, v.Stats.Count)
		assert.Equal(t, 0.0, v.Stats.AvgReturnPercentage)
		assert.Equal(t, 0.0, v.Stats.AvgContentScore)
		assert.Equal(t, SeverityOK, v.Stats.ReturnSeverity)
		assert.Equal(t, SeverityCritical, v.Stats.ContentSeverity)
	}
}

func TestComputeView_DoesNotMutateInput(t *testing.T) {
	raw := sampleSKUs()
	before := names(raw)

	ComputeView(raw, model.ViewState{SortField: model.SortByName, SortOrder: model.SortDesc})

	assert.Equal(t, before, names(raw))
}

// ==================== 性质 ====================

// 随机集合上验证：可见集合是原集合的子序列、恰好包含满足条件的元素、按比较器有序且平局稳定；
// 汇总只反映可见集合；两次调用结果一致
func TestComputeView_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	fields := []model.SortField{model.SortByID, model.SortByName, model.SortBySales, model.SortByReturnPercentage, model.SortByContentScore}
	filters := []model.FilterType{model.FilterNone, model.FilterHighReturn, model.FilterLowContent}
	searches := []string{"", "a", "MUG", "zz"}
	words := []string{"mug", "Lamp", "chair", "Mat", "sofa"}

	for round := 0; round < 200; round++ {
		n := rng.IntN(12)
		raw := make([]model.SKU, n)
		for i := range raw {
			raw[i] = model.SKU{
				ID:               model.ID(words[rng.IntN(len(words))]),
				Name:             words[rng.IntN(len(words))] + " " + words[rng.IntN(len(words))],
				Sales:            float64(rng.IntN(4) * 100), // 刻意制造平局
				ReturnPercentage: float64(rng.IntN(5)) * 5,
				ContentScore:     float64(rng.IntN(4)) * 2.5,
			}
		}
		state := model.ViewState{
			Search:     searches[rng.IntN(len(searches))],
			FilterType: filters[rng.IntN(len(filters))],
			SortField:  fields[rng.IntN(len(fields))],
			SortOrder:  []model.SortOrder{model.SortAsc, model.SortDesc}[rng.IntN(2)],
		}

		v := ComputeView(raw, state)

		// 1. 恰好包含满足条件的元素
		want := 0
		for i := range raw {
			if Match(&raw[i], toLower(state.Search), state.FilterType) {
				want++
			}
		}
		require.Len(t, v.Visible, want)

		// 2. 有序且平局保持输入顺序：用原始下标检查
		idx := indexOf(raw, v.Visible)
		compare := comparator(state.SortField)
		for i := 1; i < len(v.Visible); i++ {
			c := compare(&v.Visible[i-1], &v.Visible[i])
			if state.SortOrder == model.SortDesc {
				c = -c
			}
			require.LessOrEqual(t, c, 0, "round %d: out of order at %d", round, i)
			if c == 0 {
				require.Less(t, idx[i-1], idx[i], "round %d: tie reordered at %d", round, i)
			}
		}

		// 3. 汇总只统计可见集合
		var sum float64
		for _, s := range v.Visible {
			sum += s.Sales
		}
		require.Equal(t, sum, v.Stats.TotalSales)

		// 4. 幂等
		require.Equal(t, v, ComputeView(raw, state))
	}
}

// indexOf 为可见元素找回原始下标 (按出现顺序匹配，处理重复值)
func indexOf(raw, visible []model.SKU) []int {
	used := make([]bool, len(raw))
	out := make([]int, 0, len(visible))
	for _, v := range visible {
		for i := range raw {
			if !used[i] && raw[i].ID == v.ID && raw[i].Name == v.Name && raw[i].Sales == v.Sales &&
				raw[i].ReturnPercentage == v.ReturnPercentage && raw[i].ContentScore == v.ContentScore {
				used[i] = true
				out = append(out, i)
				break
			}
		}
	}
	return out
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}
