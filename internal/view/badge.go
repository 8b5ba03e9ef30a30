package view

import "math"

// 单个 SKU 的徽章使用展示阈值
// 内容分徽章在 <6 时就是 critical，而筛选 low_content 用的是 <5

// ReturnBadge 退货率徽章
func ReturnBadge(pct float64) Severity {
	return ReturnSeverity(pct)
}

// ContentBadge 内容分徽章
func ContentBadge(score float64) Severity {
	return ContentSeverity(score)
}

// ContentStars 五星制星级：四舍五入后截断到 [0,5]
func ContentStars(score float64) int {
	stars := int(math.Round(score))
	if stars < 0 {
		return 0
	}
	if stars > 5 {
		return 5
	}
	return stars
}
