package report_test

import (
	"testing"
	"time"

	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/internal/domain/report"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTopApps(t *testing.T) {
	Convey("Given events over three apps", t, func() {
		base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
		span := func(app string, minutes int) model.RawEvent {
			return model.RawEvent{App: app, Begin: base, End: base.Add(time.Duration(minutes) * time.Minute)}
		}
		events := []model.RawEvent{
			span("Word", 30), span("Excel", 60), span("Word", 30), span("Chrome", 60), span("Teams", 6),
		}

		Convey("Then apps are ranked by time, ties by name", func() {
			top := report.TopApps(events, 10)
			So(len(top), ShouldEqual, 4)
			So(top[0].App, ShouldEqual, "Chrome")
			So(top[1].App, ShouldEqual, "Excel")
			So(top[2].App, ShouldEqual, "Word")
			So(top[2].Hours, ShouldEqual, 1)
			So(top[3].Hours, ShouldAlmostEqual, 0.1, 1e-12)
		})

		Convey("Then the limit truncates the ranking", func() {
			So(len(report.TopApps(events, 2)), ShouldEqual, 2)
		})
	})
}

func TestStandardApps(t *testing.T) {
	Convey("Given no standard apps", t, func() {
		cols := report.Resolve(model.StandardApps{})

		Convey("Then the fallbacks are used", func() {
			So(cols.BrowserTime, ShouldEqual, "Time in Google Chrome")
			So(cols.PDFCount, ShouldEqual, "Count of Adobe Acrobat")
		})
	})

	Convey("Given a chosen browser", t, func() {
		std := model.StandardApps{Browser: "Firefox"}
		rows := report.HeatmapRows(std)

		Convey("Then the heatmap rows name it and keep the PDF fallback", func() {
			So(rows, ShouldContain, "Time in Firefox")
			So(rows, ShouldContain, "Count of Firefox")
			So(rows, ShouldContain, "Time in Adobe Acrobat")
			So(rows, ShouldNotContain, "Time in Google Chrome")
			So(rows[0], ShouldEqual, model.ColStartTime)
			So(rows[len(rows)-1], ShouldEqual, model.ColRelativeBreakTime)
		})
	})
}

func TestBuildHeatmap(t *testing.T) {
	Convey("Given a table holding one heatmap feature", t, func() {
		tbl := model.Table{
			Columns: []string{model.ColTitleCount, model.ScoreProductivity},
			Rows: []model.TableRow{
				{Date: "2024-03-04", Values: []model.Value{model.Some(1), model.Some(2)}},
				{Date: "2024-03-05", Values: []model.Value{model.Some(2), model.Some(4)}},
				{Date: "2024-03-06", Values: []model.Value{model.Some(3), model.Some(7)}},
			},
		}
		hm := report.BuildHeatmap(tbl, model.StandardApps{})

		Convey("Then present pairs are filled and the rest are missing", func() {
			So(len(hm.Cells), ShouldEqual, len(hm.Rows))
			for i, row := range hm.Rows {
				for j, col := range hm.Columns {
					cell := hm.Cells[i][j]
					if row == model.ColTitleCount && col == model.ScoreProductivity {
						So(cell.Valid, ShouldBeTrue)
						So(cell.Float, ShouldBeGreaterThan, 0.9)
					} else {
						So(cell.Valid, ShouldBeFalse)
					}
				}
			}
		})
	})
}
