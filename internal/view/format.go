package view

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency 美元金额，千分位两位小数：$12,345.60
func FormatCurrency(v float64) string {
	if v < 0 {
		return "-" + printer.Sprintf("$%.2f", -v)
	}
	return printer.Sprintf("$%.2f", v)
}

// FormatCompactCurrency 紧凑写法，最多一位小数：$1.2M / $950K / $120
func FormatCompactCurrency(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	units := []struct {
		div    float64
		suffix string
	}{
		{1e12, "T"},
		{1e9, "B"},
		{1e6, "M"},
		{1e3, "K"},
	}
	for _, u := range units {
		if v >= u.div {
			return sign + "$" + trimOneDecimal(v/u.div) + u.suffix
		}
	}
	return sign + "$" + trimOneDecimal(v)
}

// FormatPercent 一位小数百分比
func FormatPercent(v float64) string {
	return printer.Sprintf("%.1f%%", v)
}

// trimOneDecimal 保留一位小数，去掉多余的 .0
func trimOneDecimal(v float64) string {
	r := math.Round(v*10) / 10
	if r == math.Trunc(r) {
		return printer.Sprintf("%.0f", r)
	}
	return printer.Sprintf("%.1f", r)
}
