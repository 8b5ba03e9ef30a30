package model

// SalesDataPoint 单月销售数据 (图表用)
type SalesDataPoint struct {
	Month string  `json:"month"`
	Sales float64 `json:"sales"`
	Date  string  `json:"date"` // 形如 2025-01
}

// SKU 库存单元及其绩效指标
// 一次拉取内视为只读快照，权威数据在服务端
type SKU struct {
	ID               ID               `json:"id"`
	Name             string           `json:"name"`
	Sales            float64          `json:"sales"`
	ReturnPercentage float64          `json:"return_percentage"` // 0-100
	ContentScore     float64          `json:"content_score"`     // 0-10
	UserID           string           `json:"user_id"`
	CreatedAt        string           `json:"created_at"`
	SalesData        []SalesDataPoint `json:"sales_data"`
}

// Clone 深拷贝，SalesData 不与原值共享底层数组
func (s SKU) Clone() SKU {
	if s.SalesData != nil {
		s.SalesData = append([]SalesDataPoint(nil), s.SalesData...)
	}
	return s
}

// CloneSKUs 逐个深拷贝
func CloneSKUs(skus []SKU) []SKU {
	out := make([]SKU, len(skus))
	for i := range skus {
		out[i] = skus[i].Clone()
	}
	return out
}
