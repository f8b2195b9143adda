package model_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	model "github.com/okian/workpulse/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestValue(t *testing.T) {
	convey.Convey("Given optional values", t, func() {
		convey.Convey("When wrapping NaN", func() {
			v := model.Some(math.NaN())

			convey.Convey("Then it should be missing", func() {
				convey.So(v.Valid, convey.ShouldBeFalse)
				convey.So(v.Or(-1), convey.ShouldEqual, -1)
			})
		})

		convey.Convey("When marshaling to JSON", func() {
			raw, err := json.Marshal([]model.Value{model.Some(1.5), model.Missing(), model.Some(math.Inf(-1))})

			convey.Convey("Then missing becomes null and infinity a string", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(raw), convey.ShouldEqual, `[1.5,null,"-Inf"]`)
			})
		})

		convey.Convey("When round-tripping an infinity", func() {
			var v model.Value
			err := json.Unmarshal([]byte(`"+Inf"`), &v)

			convey.Convey("Then the sign is preserved", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(math.IsInf(v.Float, 1), convey.ShouldBeTrue)
				convey.So(v.Valid, convey.ShouldBeTrue)
			})
		})
	})
}

func TestWorkSlot(t *testing.T) {
	convey.Convey("Given a work slot of two events", t, func() {
		begin := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
		slot := model.WorkSlot{
			Apps:   []string{"Word", "Excel"},
			Titles: []string{"doc1", "sheet"},
			Begin:  begin,
			End:    begin.Add(10 * time.Minute),
		}

		convey.Convey("Then joined strings use the slot separator", func() {
			convey.So(slot.JoinedApps(), convey.ShouldEqual, "Word; Excel")
			convey.So(slot.JoinedTitles(), convey.ShouldEqual, "doc1; sheet")
		})

		convey.Convey("Then duration, midpoint and date derive from the bounds", func() {
			convey.So(slot.Duration(), convey.ShouldEqual, 10*time.Minute)
			convey.So(slot.Midpoint(), convey.ShouldEqual, begin.Add(5*time.Minute))
			convey.So(slot.Date(), convey.ShouldEqual, model.Date("2024-03-04"))
		})
	})
}

func TestExcludedTitles(t *testing.T) {
	convey.Convey("Given tracker noise titles", t, func() {
		convey.So(model.IsExcludedTitle("NO_TITLE"), convey.ShouldBeTrue)
		convey.So(model.IsExcludedTitle("Windows Default Lock Screen"), convey.ShouldBeTrue)
		convey.So(model.IsExcludedTitle("no_title"), convey.ShouldBeFalse)
		convey.So(model.IsExcludedTitle("report.docx"), convey.ShouldBeFalse)
	})
}

func TestDailyRecordClone(t *testing.T) {
	convey.Convey("Given a daily record with apps and a survey", t, func() {
		day := model.DailyRecord{
			Date:   "2024-03-04",
			Apps:   map[string]model.AppUsage{"Word": {Seconds: 60, Count: 1}},
			Survey: &model.SurveyRecord{Date: "2024-03-04", Productivity: model.Some(4)},
		}

		convey.Convey("When the clone is modified", func() {
			c := day.Clone()
			c.Apps["Word"] = model.AppUsage{}
			c.Survey.Productivity = model.Missing()

			convey.Convey("Then the source record is untouched", func() {
				convey.So(day.Apps["Word"].Count, convey.ShouldEqual, 1)
				convey.So(day.Survey.Productivity.Valid, convey.ShouldBeTrue)
			})
		})

		convey.Convey("Then every fixed metric column resolves", func() {
			for _, col := range model.MetricColumns {
				_, ok := day.Metric(col)
				convey.So(ok, convey.ShouldBeTrue)
			}
		})
	})
}

func TestTableColumn(t *testing.T) {
	convey.Convey("Given a two-column table", t, func() {
		tbl := model.Table{
			Columns: []string{"a", "b"},
			Rows: []model.TableRow{
				{Date: "2024-01-01", Values: []model.Value{model.Some(1), model.Some(2)}},
				{Date: "2024-01-02", Values: []model.Value{model.Missing(), model.Some(3)}},
			},
		}

		col, ok := tbl.Column("a")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(col[0].Float, convey.ShouldEqual, 1)
		convey.So(col[1].Valid, convey.ShouldBeFalse)

		_, ok = tbl.Column("missing")
		convey.So(ok, convey.ShouldBeFalse)
	})
}

func TestIsTarget(t *testing.T) {
	convey.Convey("Given score names", t, func() {
		for _, name := range model.Targets {
			convey.So(model.IsTarget(name), convey.ShouldBeTrue)
		}
		convey.So(model.IsTarget("Happiness"), convey.ShouldBeFalse)
		convey.So(model.IsTarget(""), convey.ShouldBeFalse)
	})
}
