// Package export writes finished analyses as spreadsheet workbooks.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/okian/workpulse/internal/domain/model"
	"github.com/xuri/excelize/v2"
)

// Sheet names, in workbook order.
const (
	SheetDays         = "Days"
	SheetCorrelations = "Correlations"
	SheetTopApps      = "Top Apps"
	SheetDiagnostics  = "Diagnostics"
)

// ErrNotReady is returned for analyses that did not finish successfully.
var ErrNotReady = errors.New("analysis has no results to export")

// WriteXLSX writes a as a workbook to w.
func WriteXLSX(w io.Writer, a *model.Analysis) error {
	f, err := build(a)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveXLSX writes a as a workbook file at path.
func SaveXLSX(path string, a *model.Analysis) error {
	f, err := build(a)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func build(a *model.Analysis) (*excelize.File, error) {
	if a == nil || a.Status != model.StatusDone || a.Table == nil {
		return nil, ErrNotReady
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetDays); err != nil {
		_ = f.Close()
		return nil, err
	}
	for _, name := range []string{SheetCorrelations, SheetTopApps, SheetDiagnostics} {
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	w := &sheetWriter{f: f, header: header}
	w.days(a.Table, a.Days)
	w.correlations(a.Correlations)
	w.topApps(a.TopApps)
	w.diagnostics(a)
	if w.err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("build workbook: %w", w.err)
	}

	f.SetActiveSheet(0)
	return f, nil
}

// sheetWriter keeps the first error so the sheet builders stay linear.
type sheetWriter struct {
	f      *excelize.File
	header int
	err    error
}

func (w *sheetWriter) row(sheet string, r int, values []any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, r)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}

func (w *sheetWriter) headerRow(sheet string, values []any) {
	w.row(sheet, 1, values)
	if w.err != nil || len(values) == 0 {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(values), 1)
	if err != nil {
		w.err = err
		return
	}
	if w.err = w.f.SetCellStyle(sheet, "A1", last, w.header); w.err != nil {
		return
	}
	w.err = w.f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// Title columns trail the numeric table on the Days sheet.
const (
	ColMostFrequentTitle = "Most Frequent Title"
	ColLongestTitle      = "Title with Longest Duration"
)

func (w *sheetWriter) days(t *model.Table, recs []model.DailyRecord) {
	titles := make(map[model.Date]*model.DailyRecord, len(recs))
	for i := range recs {
		titles[recs[i].Date] = &recs[i]
	}

	header := make([]any, 0, len(t.Columns)+3)
	header = append(header, "Date")
	for _, c := range t.Columns {
		header = append(header, c)
	}
	header = append(header, ColMostFrequentTitle, ColLongestTitle)
	w.headerRow(SheetDays, header)

	for i, r := range t.Rows {
		values := make([]any, 0, len(r.Values)+3)
		values = append(values, r.Date.String())
		for _, v := range r.Values {
			values = append(values, cell(v))
		}
		if d := titles[r.Date]; d != nil {
			values = append(values, d.MostFrequentTitle, d.LongestTitle)
		} else {
			values = append(values, nil, nil)
		}
		w.row(SheetDays, i+2, values)
	}
}

func (w *sheetWriter) correlations(rows []model.CorrelationRow) {
	targets := model.Targets
	header := []any{"Variable"}
	for _, t := range targets {
		header = append(header, t+" r", t+" t", t+" n", t+" significance")
	}
	w.headerRow(SheetCorrelations, header)

	for i, row := range rows {
		values := []any{row.Variable}
		for _, t := range targets {
			res, ok := row.Targets[t]
			if !ok {
				values = append(values, nil, nil, nil, nil)
				continue
			}
			values = append(values, cell(res.R), cell(res.TStat), res.N, string(res.Significance))
		}
		w.row(SheetCorrelations, i+2, values)
	}
}

func (w *sheetWriter) topApps(apps []model.AppRank) {
	w.headerRow(SheetTopApps, []any{"Rank", "App", "Hours"})
	for i, app := range apps {
		w.row(SheetTopApps, i+2, []any{i + 1, app.App, app.Hours})
	}
}

func (w *sheetWriter) diagnostics(a *model.Analysis) {
	d := a.Diagnostics
	w.headerRow(SheetDiagnostics, []any{"Metric", "Value"})

	rows := [][]any{
		{"Analysis", a.ID},
		{"Browser", a.Standard.Browser},
		{"PDF tool", a.Standard.PDFTool},
		{"Activity rows", d.ActivityRows},
		{"Events kept", d.EventsKept},
		{"Work slots", d.Slots},
		{"Work slots dropped", d.SlotsDropped},
		{"Days", d.Days},
		{"Survey rows", d.SurveyRows},
		{"Survey kept", d.SurveyKept},
		{"Survey delimiter", d.SurveyDelim},
		{"Joined days", d.JoinedDays},
		{"Correlations", d.Correlations},
		{"Duplicate pairs", d.DuplicatePairs},
	}
	rows = append(rows, dropped("Events dropped", d.EventsDropped)...)
	rows = append(rows, dropped("Survey dropped", d.SurveyDropped)...)
	for _, n := range d.Notes {
		rows = append(rows, []any{"Note", n})
	}

	for i, r := range rows {
		w.row(SheetDiagnostics, i+2, r)
	}
}

func dropped(prefix string, m map[string]int) [][]any {
	reasons := make([]string, 0, len(m))
	for k := range m {
		reasons = append(reasons, k)
	}
	sort.Strings(reasons)
	out := make([][]any, 0, len(reasons))
	for _, r := range reasons {
		out = append(out, []any{prefix + " (" + r + ")", m[r]})
	}
	return out
}

// cell renders a Value; missing stays blank and infinities become text.
func cell(v model.Value) any {
	switch {
	case !v.Valid:
		return nil
	case math.IsInf(v.Float, 0):
		return v.String()
	default:
		return v.Float
	}
}
