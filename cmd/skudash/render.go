package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"sku_dash_v1/internal/controller"
	"sku_dash_v1/internal/model"
	"sku_dash_v1/internal/tui"
	"sku_dash_v1/internal/view"
)

// severityMark 表格里不着色 (会破坏对齐)，用符号区分
var severityMark = map[view.Severity]string{
	view.SeverityOK:       "",
	view.SeverityWarning:  " !",
	view.SeverityCritical: " !!",
}

// renderDashboard 汇总卡片 + SKU 表格
func renderDashboard(w io.Writer, snap controller.DashboardSnapshot) {
	stats := snap.View.Stats

	// 1. 汇总
	fmt.Fprintf(w, "%d SKUs   total sales %s   avg return %s   avg content %s\n",
		stats.Count,
		view.FormatCompactCurrency(stats.TotalSales),
		tui.Badge(stats.ReturnSeverity, view.FormatPercent(stats.AvgReturnPercentage)),
		tui.Badge(stats.ContentSeverity, fmt.Sprintf("%.1f", stats.AvgContentScore)),
	)
	if len(snap.View.Visible) == 0 {
		fmt.Fprintln(w, "no SKUs match the current search and filter")
		return
	}

	// 2. 表格
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSALES\tRETURN\tCONTENT\t")
	for _, s := range snap.View.Visible {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s%s\t%s %.1f%s\t\n",
			s.ID, s.Name,
			view.FormatCurrency(s.Sales),
			view.FormatPercent(s.ReturnPercentage), severityMark[view.ReturnBadge(s.ReturnPercentage)],
			tui.Stars(s.ContentScore), s.ContentScore, severityMark[view.ContentBadge(s.ContentScore)],
		)
	}
	_ = tw.Flush()
}

// renderDetail SKU 指标 + 月度销量 + 备注列表
func renderDetail(w io.Writer, snap controller.DetailSnapshot) {
	if snap.SKU == nil {
		return
	}
	fmt.Fprint(w, tui.RenderSKU(snap.SKU))

	if len(snap.SKU.SalesData) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
		for _, p := range snap.SKU.SalesData {
			fmt.Fprintf(tw, "%s\t%s\t\n", p.Month, view.FormatCompactCurrency(p.Sales))
		}
		_ = tw.Flush()
	}

	fmt.Fprintf(w, "\nNotes (%d)\n", len(snap.Notes))
	if len(snap.Notes) == 0 {
		fmt.Fprintln(w, "  none yet")
	}
	for _, n := range snap.Notes {
		fmt.Fprintf(w, "  [%s] %s  %s\n", n.ID, noteTime(n), indent(n.Content))
	}
	if !snap.CanAuthor {
		fmt.Fprintln(w, "\nnotes are read-only for your role")
	}
}

func noteTime(n model.Note) string {
	if n.UpdatedAt != "" && n.UpdatedAt != n.CreatedAt {
		return n.UpdatedAt + " (edited)"
	}
	return n.CreatedAt
}

func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n      ")
}
