package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/internal/domain/report"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	highStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("10"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// dayColumns are the day-table columns worth a terminal; the workbook has all.
var dayColumns = []string{
	model.ColDuration,
	model.ColTotalWorkSlots,
	model.ColAvgWorkSlotDuration,
	model.ColTotalBreaks,
	model.ColAvgBreakDuration,
	model.ColUniqueTitles,
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderSummary(a *model.Analysis) string {
	d := a.Diagnostics
	var b strings.Builder
	b.WriteString(titleStyle.Render("Analysis "+a.ID) + "\n")
	fmt.Fprintf(&b, "activity rows %d, events kept %d, dropped %d\n", d.ActivityRows, d.EventsKept, sum(d.EventsDropped))
	fmt.Fprintf(&b, "survey rows %d, kept %d, delimiter %q\n", d.SurveyRows, d.SurveyKept, d.SurveyDelim)
	fmt.Fprintf(&b, "days %d, joined %d, work slots %d, correlations %d\n", d.Days, d.JoinedDays, d.Slots, d.Correlations)
	fmt.Fprintf(&b, "standard apps: %s, %s", a.Standard.Browser, a.Standard.PDFTool)
	for _, n := range d.Notes {
		b.WriteString("\n" + mutedStyle.Render("note: "+n))
	}
	return b.String()
}

func renderDays(t *model.Table, std model.StandardApps) string {
	if t == nil || len(t.Rows) == 0 {
		return mutedStyle.Render("no joined days")
	}
	cols := append([]string{}, dayColumns...)
	cols = append(cols, report.Resolve(std).BrowserTime)
	cols = append(cols, model.Targets...)

	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = t.Index(c)
	}

	tbl := newTable(append([]string{"Date"}, cols...)...)
	for _, r := range t.Rows {
		row := make([]string, 0, len(cols)+1)
		row = append(row, string(r.Date))
		for _, i := range idx {
			if i < 0 || i >= len(r.Values) {
				row = append(row, "-")
				continue
			}
			row = append(row, formatValue(r.Values[i]))
		}
		tbl.Row(row...)
	}
	return titleStyle.Render("Days") + "\n" + tbl.Render()
}

func renderCorrelations(results []model.CorrelationResult, target string) string {
	title := titleStyle.Render("Significant correlations with " + target)
	if len(results) == 0 {
		return title + "\n" + mutedStyle.Render("none")
	}
	tbl := newTable("Variable", "r", "t", "n", "Significance").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 4 && row >= 0 && row < len(results) && results[row].Significance == model.SignificanceHigh:
				return highStyle
			}
			return cellStyle
		})
	for _, r := range results {
		tbl.Row(r.Variable, formatValue(r.R), formatValue(r.TStat), strconv.Itoa(r.N), string(r.Significance))
	}
	return title + "\n" + tbl.Render()
}

func formatValue(v model.Value) string {
	if !v.Valid {
		return "-"
	}
	s := v.String()
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return strconv.FormatFloat(f, 'f', 3, 64)
	}
	return s
}

func sum(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}
