package dto

import "sku_dash_v1/internal/model"

// SKUQuery 列表查询参数 (search / filter_type / sort_by / sort_order)
// 空值不下发
func SKUQuery(state model.ViewState) map[string]string {
	q := make(map[string]string, 4)
	if state.Search != "" {
		q["search"] = state.Search
	}
	if state.FilterType != model.FilterNone {
		q["filter_type"] = string(state.FilterType)
	}
	if state.SortField != model.SortByNone {
		q["sort_by"] = string(state.SortField)
		order := state.SortOrder
		if order == "" {
			order = model.SortAsc
		}
		q["sort_order"] = string(order)
	}
	return q
}
