package daily

import (
	"github.com/okian/workpulse/internal/domain/model"
)

// Columns returns the numeric column order for a dataset with the given app
// vocabulary: fixed metrics, then a Time in / Count of pair per app, then the
// survey scores.
func Columns(apps []string) []string {
	cols := make([]string, 0, len(model.MetricColumns)+2*len(apps)+len(model.Targets))
	cols = append(cols, model.MetricColumns...)
	for _, a := range apps {
		cols = append(cols, model.TimeInColumn(a))
	}
	for _, a := range apps {
		cols = append(cols, model.CountOfColumn(a))
	}
	return append(cols, model.Targets...)
}

// BuildTable flattens days into a numeric table. Per-app cells are zero for
// apps a day never used; score cells are missing for days without a survey.
func BuildTable(days []model.DailyRecord, apps []string) model.Table {
	t := model.Table{
		Columns: Columns(apps),
		Rows:    make([]model.TableRow, 0, len(days)),
	}
	for i := range days {
		d := &days[i]
		vals := make([]model.Value, 0, len(t.Columns))
		for _, col := range model.MetricColumns {
			v, _ := d.Metric(col)
			vals = append(vals, v)
		}
		for _, a := range apps {
			vals = append(vals, model.Some(d.Apps[a].Seconds))
		}
		for _, a := range apps {
			vals = append(vals, model.Some(float64(d.Apps[a].Count)))
		}
		for _, target := range model.Targets {
			var v model.Value
			if d.Survey != nil {
				v, _ = d.Survey.Score(target)
			}
			vals = append(vals, v)
		}
		t.Rows = append(t.Rows, model.TableRow{Date: d.Date, Values: vals})
	}
	return t
}
