package export_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/okian/workpulse/internal/adapters/export"
	"github.com/okian/workpulse/internal/domain/analysis"
	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"
)

func init() {
	_ = logger.Init()
}

const activity = `App,Title,Begin,End
Microsoft Word,report,2024-03-04 09:00:00,2024-03-04 09:30:00
Google Chrome,mail,2024-03-04 09:30:00,2024-03-04 09:40:00
Microsoft Word,report,2024-03-05 08:00:00,2024-03-05 10:00:00
Google Chrome,news,2024-03-06 10:30:00,2024-03-06 10:35:00
`

const surveyCSV = `Date;Productivity;Vigor;Dedication;Absorption
04-03-2024;3;4;4;3
05-03-2024;5;5;4;4
06-03-2024;2;2;3;2
`

func finished(t *testing.T) *model.Analysis {
	a := &model.Analysis{ID: "export-1", Status: model.StatusRunning}
	if err := analysis.NewPipeline().Run(context.Background(), analysis.Input{
		Activity: []byte(activity),
		Survey:   []byte(surveyCSV),
	}, a); err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	a.Status = model.StatusDone
	return a
}

func TestWriteXLSX(t *testing.T) {
	Convey("Given a finished analysis", t, func() {
		a := finished(t)

		Convey("When it is written as a workbook", func() {
			var buf bytes.Buffer
			So(export.WriteXLSX(&buf, a), ShouldBeNil)

			f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
			So(err, ShouldBeNil)
			defer func() { _ = f.Close() }()

			Convey("Then every sheet is present in order", func() {
				So(f.GetSheetList(), ShouldResemble, []string{
					export.SheetDays, export.SheetCorrelations, export.SheetTopApps, export.SheetDiagnostics,
				})
			})

			Convey("Then the Days sheet mirrors the table", func() {
				rows, err := f.GetRows(export.SheetDays)
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, len(a.Table.Rows)+1)
				So(rows[0][0], ShouldEqual, "Date")
				So(rows[0][1], ShouldEqual, a.Table.Columns[0])
				So(rows[1][0], ShouldEqual, "2024-03-04")
			})

			Convey("Then each day carries its title metrics after the numbers", func() {
				rows, err := f.GetRows(export.SheetDays)
				So(err, ShouldBeNil)
				n := len(a.Table.Columns)
				So(rows[0][n+1], ShouldEqual, export.ColMostFrequentTitle)
				So(rows[0][n+2], ShouldEqual, export.ColLongestTitle)
				So(rows[1][n+1], ShouldEqual, a.Days[0].MostFrequentTitle)
				So(rows[1][n+2], ShouldEqual, "report")
				So(rows[2][n+2], ShouldEqual, "report")
			})

			Convey("Then correlations have one row per variable", func() {
				rows, err := f.GetRows(export.SheetCorrelations)
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, len(a.Correlations)+1)
				So(rows[0][1], ShouldEqual, model.ScoreProductivity+" r")
			})

			Convey("Then top apps are ranked", func() {
				rows, err := f.GetRows(export.SheetTopApps)
				So(err, ShouldBeNil)
				So(rows[1][1], ShouldEqual, "Microsoft Word")
			})
		})

		Convey("When it is saved to a file", func() {
			path := filepath.Join(t.TempDir(), "out.xlsx")
			So(export.SaveXLSX(path, a), ShouldBeNil)

			f, err := excelize.OpenFile(path)
			So(err, ShouldBeNil)
			_ = f.Close()
		})
	})

	Convey("Given an analysis that has not finished", t, func() {
		var buf bytes.Buffer
		err := export.WriteXLSX(&buf, &model.Analysis{Status: model.StatusPending})
		So(errors.Is(err, export.ErrNotReady), ShouldBeTrue)
		So(errors.Is(export.WriteXLSX(&buf, nil), export.ErrNotReady), ShouldBeTrue)
	})
}
