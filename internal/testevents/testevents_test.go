package testevents

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/workpulse/internal/adapters/http/api"
	service "github.com/okian/workpulse/internal/app"
	"github.com/okian/workpulse/internal/domain/analysis"
	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

var start = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

func TestGeneratePair(t *testing.T) {
	Convey("Given a seed", t, func() {
		a, err := GeneratePair(7, 10, start, ';')
		So(err, ShouldBeNil)

		Convey("Then the same seed yields the same pair", func() {
			b, err := GeneratePair(7, 10, start, ';')
			So(err, ShouldBeNil)
			So(b.Name, ShouldEqual, a.Name)
			So(string(b.Activity), ShouldEqual, string(a.Activity))
			So(string(b.Survey), ShouldEqual, string(a.Survey))
		})

		Convey("Then the files carry the expected headers", func() {
			So(strings.HasPrefix(string(a.Activity), "App;Type;Title;Begin;End\n"), ShouldBeTrue)
			// Odd seeds switch the survey delimiter.
			So(strings.HasPrefix(string(a.Survey), "Date,Productivity,Vigor,Dedication,Absorption\n"), ShouldBeTrue)
			So(strings.Count(string(a.Survey), "\n"), ShouldEqual, 10+2)
		})

		Convey("Then joined days never exceed the generated days", func() {
			So(a.JoinedDays, ShouldBeGreaterThan, 0)
			So(a.JoinedDays, ShouldBeLessThanOrEqualTo, 10)
		})
	})

	Convey("Given a non-positive day count", t, func() {
		_, err := GeneratePair(1, 0, start, ',')
		So(err, ShouldNotBeNil)
	})
}

func TestVerifyAnalysis(t *testing.T) {
	Convey("Given a generated pair run through the pipeline", t, func() {
		pair, err := GeneratePair(42, 21, start, ',')
		So(err, ShouldBeNil)

		a := &model.Analysis{ID: "v1"}
		err = analysis.NewPipeline(analysis.WithLogger(logger.Nop())).Run(context.Background(), analysis.Input{
			Activity:  pair.Activity,
			Survey:    pair.Survey,
			Delimiter: pair.Delimiter,
		}, a)
		So(err, ShouldBeNil)

		rows := &Correlations{Rows: a.Correlations}

		Convey("Then no invariant is violated", func() {
			So(VerifyAnalysis(pair, a.Table, rows), ShouldBeEmpty)
		})

		Convey("Then a missing day is reported", func() {
			pair.JoinedDays++
			So(VerifyAnalysis(pair, a.Table, rows), ShouldNotBeEmpty)
		})

		Convey("Then slot time beyond the day's event time is reported", func() {
			idx := a.Table.Index(model.ColDuration)
			So(idx, ShouldBeGreaterThanOrEqualTo, 0)
			a.Table.Rows[0].Values[idx] = model.Some(1)

			problems := VerifyAnalysis(pair, a.Table, rows)
			So(problems, ShouldHaveLength, 1)
			So(problems[0], ShouldContainSubstring, "exceeds event time")
		})

		Convey("Then an out-of-range r is reported", func() {
			bad := &Correlations{Rows: []model.CorrelationRow{{
				Variable: "Duration",
				Targets: map[string]model.CorrelationResult{
					model.ScoreProductivity: {R: model.Some(1.5)},
				},
			}}}
			So(VerifyAnalysis(pair, a.Table, bad), ShouldHaveLength, 1)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a workpulse server", t, func() {
		svc := service.New(service.WithWorkerCount(2), service.WithLogger(logger.Nop()))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(context.Background(), mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		dir := t.TempDir()
		config := &Config{
			BaseURL:      srv.URL,
			NumPairs:     4,
			Days:         14,
			Seed:         100,
			Workers:      2,
			Timeout:      5 * time.Second,
			PollInterval: 10 * time.Millisecond,
			OutputDir:    dir,
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		Convey("Then every pair is analysed and verified", func() {
			So(Run(ctx, config), ShouldBeNil)

			files, err := os.ReadDir(dir)
			So(err, ShouldBeNil)
			So(len(files), ShouldEqual, 8)
			So(filepath.Ext(files[0].Name()), ShouldEqual, ".csv")
		})
	})

	Convey("Given no server", t, func() {
		config := &Config{BaseURL: "http://127.0.0.1:1", NumPairs: 1, Days: 1, Workers: 1, Timeout: time.Second}

		Convey("Then the health check fails", func() {
			err := Run(context.Background(), config)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "health check")
		})
	})
}
