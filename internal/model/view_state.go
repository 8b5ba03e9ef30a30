package model

// FilterType 看板筛选类型
type FilterType string

const (
	FilterNone       FilterType = ""
	FilterHighReturn FilterType = "high_return" // 退货率 > 10
	FilterLowContent FilterType = "low_content" // 内容分 < 5
)

// SortField 可排序字段
type SortField string

const (
	SortByNone             SortField = ""
	SortByID               SortField = "id"
	SortByName             SortField = "name"
	SortBySales            SortField = "sales"
	SortByReturnPercentage SortField = "return_percentage"
	SortByContentScore     SortField = "content_score"
)

// Valid 是否为已知字段 (空值表示保持输入顺序)
func (f SortField) Valid() bool {
	switch f {
	case SortByNone, SortByID, SortByName, SortBySales, SortByReturnPercentage, SortByContentScore:
		return true
	}
	return false
}

// SortOrder 排序方向
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Toggle 反转方向
func (o SortOrder) Toggle() SortOrder {
	if o == SortDesc {
		return SortAsc
	}
	return SortDesc
}

// ViewState 看板视图状态，只由用户交互修改
type ViewState struct {
	Search     string     `json:"search"`
	FilterType FilterType `json:"filter_type"`
	SortField  SortField  `json:"sort_by"`
	SortOrder  SortOrder  `json:"sort_order"`
}

// DefaultViewState 默认：不过滤，按名称升序
func DefaultViewState() ViewState {
	return ViewState{
		FilterType: FilterNone,
		SortField:  SortByName,
		SortOrder:  SortAsc,
	}
}
