// Package view 看板的派生视图：筛选、排序、汇总
// 纯函数，不持有状态；同样的输入永远得到同样的输出
package view

import (
	"cmp"
	"slices"
	"strings"

	"sku_dash_v1/internal/model"
)

// 看板筛选阈值 (严格比较)
// 注意与 badge.go 中的展示阈值不同，两者有意分开
const (
	HighReturnThreshold = 10.0 // return_percentage > 10
	LowContentThreshold = 5.0  // content_score < 5
)

// View 一次计算的结果
type View struct {
	Visible []model.SKU
	Stats   Aggregates
}

// ComputeView 根据视图状态计算可见集合与汇总
// 1. 筛选：名称包含搜索词 (忽略大小写) 且满足筛选类型
// 2. 稳定排序：相等的 key 保持输入顺序
// 3. 汇总：只统计可见集合
func ComputeView(raw []model.SKU, state model.ViewState) View {
	visible := Filter(raw, state)
	SortStable(visible, state.SortField, state.SortOrder)
	return View{
		Visible: visible,
		Stats:   Aggregate(visible),
	}
}

// Filter 返回满足筛选条件的子序列 (新切片，不修改 raw)
func Filter(raw []model.SKU, state model.ViewState) []model.SKU {
	needle := strings.ToLower(state.Search)
	out := make([]model.SKU, 0, len(raw))
	for _, sku := range raw {
		if Match(&sku, needle, state.FilterType) {
			out = append(out, sku)
		}
	}
	return out
}

// Match 单个 SKU 是否可见，needle 需已转小写
func Match(sku *model.SKU, needle string, filter model.FilterType) bool {
	if needle != "" && !strings.Contains(strings.ToLower(sku.Name), needle) {
		return false
	}
	switch filter {
	case model.FilterHighReturn:
		return sku.ReturnPercentage > HighReturnThreshold
	case model.FilterLowContent:
		return sku.ContentScore < LowContentThreshold
	default:
		return true
	}
}

// SortStable 原地稳定排序
// 字符串字段 (id, name) 按字典序，其余按数值；desc 反转比较结果
// 未知字段或空字段保持原顺序
func SortStable(skus []model.SKU, field model.SortField, order model.SortOrder) {
	compare := comparator(field)
	if compare == nil {
		return
	}
	if order == model.SortDesc {
		slices.SortStableFunc(skus, func(a, b model.SKU) int { return -compare(&a, &b) })
		return
	}
	slices.SortStableFunc(skus, func(a, b model.SKU) int { return compare(&a, &b) })
}

func comparator(field model.SortField) func(a, b *model.SKU) int {
	switch field {
	case model.SortByID:
		return func(a, b *model.SKU) int { return strings.Compare(string(a.ID), string(b.ID)) }
	case model.SortByName:
		return func(a, b *model.SKU) int { return strings.Compare(a.Name, b.Name) }
	case model.SortBySales:
		return func(a, b *model.SKU) int { return cmp.Compare(a.Sales, b.Sales) }
	case model.SortByReturnPercentage:
		return func(a, b *model.SKU) int { return cmp.Compare(a.ReturnPercentage, b.ReturnPercentage) }
	case model.SortByContentScore:
		return func(a, b *model.SKU) int { return cmp.Compare(a.ContentScore, b.ContentScore) }
	default:
		return nil
	}
}
