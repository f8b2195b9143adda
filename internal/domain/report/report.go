// Package report prepares the lookups a presentation layer needs on top of
// the daily table and the correlation rows.
package report

import (
	"sort"
	"strings"

	"github.com/okian/workpulse/internal/domain/correlation"
	"github.com/okian/workpulse/internal/domain/model"
)

// Fallback standard apps used when the caller picks none.
const (
	DefaultBrowser = "Google Chrome"
	DefaultPDFTool = "Adobe Acrobat"
)

// TopAppsLimit is how many apps the standard-app picker offers.
const TopAppsLimit = 10

// MinReportedR is the |r| below which a significant result is not reported.
const MinReportedR = 0.2

// TopApps ranks apps by total time, largest first; ties go by name.
func TopApps(events []model.RawEvent, limit int) []model.AppRank {
	secs := make(map[string]float64)
	for _, e := range events {
		secs[e.App] += e.Duration().Seconds()
	}
	out := make([]model.AppRank, 0, len(secs))
	for app, s := range secs {
		out = append(out, model.AppRank{App: app, Seconds: s, Hours: s / 3600})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seconds != out[j].Seconds {
			return out[i].Seconds > out[j].Seconds
		}
		return out[i].App < out[j].App
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// WithDefaults fills blank standard apps with the fallbacks.
func WithDefaults(std model.StandardApps) model.StandardApps {
	if strings.TrimSpace(std.Browser) == "" {
		std.Browser = DefaultBrowser
	}
	if strings.TrimSpace(std.PDFTool) == "" {
		std.PDFTool = DefaultPDFTool
	}
	return std
}

// Columns are the per-app pivot columns the report treats as the browser
// and PDF tool metrics.
type Columns struct {
	BrowserTime  string `json:"browser_time"`
	BrowserCount string `json:"browser_count"`
	PDFTime      string `json:"pdf_time"`
	PDFCount     string `json:"pdf_count"`
}

// Resolve maps the standard apps, defaults applied, to their column names.
func Resolve(std model.StandardApps) Columns {
	std = WithDefaults(std)
	return Columns{
		BrowserTime:  model.TimeInColumn(std.Browser),
		BrowserCount: model.CountOfColumn(std.Browser),
		PDFTime:      model.TimeInColumn(std.PDFTool),
		PDFCount:     model.CountOfColumn(std.PDFTool),
	}
}

// Office apps that always get a heatmap row next to the standard apps.
const (
	appOutlook = "Microsoft Outlook"
	appExcel   = "Microsoft Excel"
	appWord    = "Microsoft Word"
)

// HeatmapColumns are the score columns of the heatmap, left to right.
var HeatmapColumns = []string{
	model.ScoreAbsorption,
	model.ScoreDedication,
	model.ScoreProductivity,
	model.ScoreVigor,
}

// HeatmapRows lists the feature rows of the correlation heatmap in display
// order with the standard browser and PDF tool substituted.
func HeatmapRows(std model.StandardApps) []string {
	c := Resolve(std)
	return []string{
		model.ColStartTime,
		model.ColEndTime,
		model.ColTotalHours,
		model.ColMedianTimeOfDay,
		model.ColTotalWorkSlots,
		model.ColAvgWorkSlotDuration,
		model.ColShareSlotsMostFrequent,
		c.BrowserTime,
		model.TimeInColumn(appOutlook),
		c.PDFTime,
		model.TimeInColumn(appExcel),
		model.TimeInColumn(appWord),
		c.BrowserCount,
		model.CountOfColumn(appOutlook),
		c.PDFCount,
		model.CountOfColumn(appExcel),
		model.CountOfColumn(appWord),
		model.ColTitleCount,
		model.ColUniqueTitles,
		model.ColLongestTitleDuration,
		model.ColShareUniqueTitles,
		model.ColTitlesPerHour,
		model.ColTotalBreaks,
		model.ColAvgBreakDuration,
		model.ColRelativeBreakTime,
	}
}

// Heatmap is a correlation matrix with its labels.
type Heatmap struct {
	Rows    []string        `json:"rows"`
	Columns []string        `json:"columns"`
	Cells   [][]model.Value `json:"cells"`
}

// BuildHeatmap correlates the heatmap rows against the score columns.
func BuildHeatmap(table model.Table, std model.StandardApps) Heatmap {
	rows := HeatmapRows(std)
	return Heatmap{
		Rows:    rows,
		Columns: HeatmapColumns,
		Cells:   correlation.Matrix(table, rows, HeatmapColumns),
	}
}
