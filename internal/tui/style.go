package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"

	"sku_dash_v1/internal/autosave"
	"sku_dash_v1/internal/view"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	mineStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// Badge 按严重程度着色
func Badge(sev view.Severity, text string) string {
	switch sev {
	case view.SeverityOK:
		return okStyle.Render(text)
	case view.SeverityWarning:
		return warningStyle.Render(text)
	default:
		return criticalStyle.Render(text)
	}
}

// Stars 内容分星级
func Stars(score float64) string {
	n := view.ContentStars(score)
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

// statusText 自动保存状态提示
func statusText(state autosave.State, inFlight bool) string {
	switch state {
	case autosave.PendingSave:
		return "unsaved changes, autosaving..."
	case autosave.Saving:
		return "saving..."
	case autosave.Editing:
		return "not saved, press ctrl+s to retry"
	default:
		if inFlight {
			return "saving..."
		}
		return "all changes saved"
	}
}

// Sparkline 月度销量的简易柱状图
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	bars := []rune("▁▂▃▄▅▆▇█")
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	var b strings.Builder
	for _, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(bars)-1))
		}
		b.WriteRune(bars[idx])
	}
	return b.String()
}

func kv(label string, value any) string {
	return labelStyle.Render(label+": ") + fmt.Sprint(value)
}
