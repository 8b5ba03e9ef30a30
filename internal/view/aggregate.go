package view

import "sku_dash_v1/internal/model"

// Severity 三档严重程度
type Severity string

const (
	SeverityOK       Severity = "ok"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Aggregates 可见集合的汇总
type Aggregates struct {
	Count               int
	TotalSales          float64
	AvgReturnPercentage float64 // 空集合为 0
	AvgContentScore     float64 // 空集合为 0
	ReturnSeverity      Severity
	ContentSeverity     Severity
}

// Aggregate 统计给定集合
func Aggregate(skus []model.SKU) Aggregates {
	agg := Aggregates{Count: len(skus)}

	var sumReturn, sumContent float64
	for i := range skus {
		agg.TotalSales += skus[i].Sales
		sumReturn += skus[i].ReturnPercentage
		sumContent += skus[i].ContentScore
	}
	if agg.Count > 0 {
		agg.AvgReturnPercentage = sumReturn / float64(agg.Count)
		agg.AvgContentScore = sumContent / float64(agg.Count)
	}

	agg.ReturnSeverity = ReturnSeverity(agg.AvgReturnPercentage)
	agg.ContentSeverity = ContentSeverity(agg.AvgContentScore)
	return agg
}

// ReturnSeverity 退货率：>10 critical，>5 warning
func ReturnSeverity(pct float64) Severity {
	switch {
	case pct > 10:
		return SeverityCritical
	case pct > 5:
		return SeverityWarning
	default:
		return SeverityOK
	}
}

// ContentSeverity 内容分：>=8 ok，>=6 warning
func ContentSeverity(score float64) Severity {
	switch {
	case score >= 8:
		return SeverityOK
	case score >= 6:
		return SeverityWarning
	default:
		return SeverityCritical
	}
}
