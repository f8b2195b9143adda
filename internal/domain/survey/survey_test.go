package survey_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/internal/domain/survey"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSniff(t *testing.T) {
	Convey("Given samples with different delimiters", t, func() {
		cases := map[string]rune{
			"a,b,c\n1,2,3\n":       ',',
			"a;b;c\n1;2,5;3\n":     ';',
			"a\tb\n1\t2\n":         '\t',
			"a|b|c|d\n1|2|3|4\n":   '|',
			"a;b\n\"x,y\";2\n":     ';',
			"Date;P\n01-01-2024;4": ';',
		}
		for sample, want := range cases {
			got, err := survey.Sniff([]byte(sample))
			So(err, ShouldBeNil)
			So(got, ShouldEqual, want)
		}
	})

	Convey("Given a single-column sample", t, func() {
		_, err := survey.Sniff([]byte("only\nvalues\n"))
		So(errors.Is(err, survey.ErrDelimiterNotFound), ShouldBeTrue)
		So(errors.Is(err, survey.ErrInputFormat), ShouldBeTrue)
	})

	Convey("Given a sample longer than the sniff window", t, func() {
		var b strings.Builder
		b.WriteString("Date;Productivity;Vigor;Dedication;Absorption\n")
		for b.Len() < 2000 {
			b.WriteString("01-01-2024;4;3;5;4\n")
		}
		got, err := survey.Sniff([]byte(b.String()))
		So(err, ShouldBeNil)
		So(got, ShouldEqual, ';')
	})
}

func TestParse(t *testing.T) {
	Convey("Given a semicolon survey export", t, func() {
		raw := "\ufeffdate;Productivity;Vigor;Dedication;Absorption\n" +
			"04-03-2024;4;3;5;2\n" +
			"05-03-2024;;3;abc;NaN\n" +
			"2024-03-06;3,5;1;1;1\n" +
			"31-02-2024;1;1;1;1\n" +
			"04-03-2024;1;1;1;1\n"
		recs, rep, err := survey.NewParser().Parse(context.Background(), strings.NewReader(raw))

		Convey("Then rows are parsed with canonical dates", func() {
			So(err, ShouldBeNil)
			So(rep.Delimiter, ShouldEqual, ";")
			So(len(recs), ShouldEqual, 3)
			So(recs[0].Date, ShouldEqual, model.Date("2024-03-04"))
			So(recs[0].Productivity.Float, ShouldEqual, 4)
			So(recs[2].Date, ShouldEqual, model.Date("2024-03-06"))
			So(recs[2].Productivity.Float, ShouldEqual, 3.5)
		})

		Convey("Then empty, non-numeric and NaN cells are missing", func() {
			So(recs[1].Productivity.Valid, ShouldBeFalse)
			So(recs[1].Vigor.Float, ShouldEqual, 3)
			So(recs[1].Dedication.Valid, ShouldBeFalse)
			So(recs[1].Absorption.Valid, ShouldBeFalse)
			So(rep.Dropped[survey.CellInvalidScore], ShouldEqual, 1)
		})

		Convey("Then bad and repeated dates are dropped, first row winning", func() {
			So(rep.Rows, ShouldEqual, 5)
			So(rep.Dropped[survey.DropInvalidDate], ShouldEqual, 1)
			So(rep.Dropped[survey.DropDuplicateDate], ShouldEqual, 1)
			So(recs[0].Vigor.Float, ShouldEqual, 3)
		})
	})

	Convey("Given a survey without a Vigor column", t, func() {
		raw := "Date,Productivity,Dedication,Absorption\n04-03-2024,4,5,2\n"
		_, _, err := survey.NewParser().Parse(context.Background(), strings.NewReader(raw))

		So(errors.Is(err, survey.ErrMissingColumn), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "Vigor")
	})

	Convey("Given an empty survey", t, func() {
		_, _, err := survey.NewParser().Parse(context.Background(), strings.NewReader("  \n"))
		So(errors.Is(err, survey.ErrInputFormat), ShouldBeTrue)
	})
}

func TestJoin(t *testing.T) {
	Convey("Given three days and surveys for two of them", t, func() {
		days := []model.DailyRecord{
			{Date: "2024-03-04", Apps: map[string]model.AppUsage{"Word": {Count: 1}}},
			{Date: "2024-03-05"},
			{Date: "2024-03-06"},
		}
		surveys := []model.SurveyRecord{
			{Date: "2024-03-04", Productivity: model.Some(4)},
			{Date: "2024-03-05", Vigor: model.Some(2)},
			{Date: "2024-03-09", Productivity: model.Some(1)},
		}

		joined := survey.Join(days, surveys)

		Convey("Then only days with a Productivity score remain", func() {
			So(len(joined), ShouldEqual, 1)
			for _, d := range joined {
				So(d.Survey, ShouldNotBeNil)
				So(d.Survey.Productivity.Valid, ShouldBeTrue)
			}
		})

		Convey("Then the inputs are left untouched", func() {
			joined[0].Apps["Word"] = model.AppUsage{}
			So(days[0].Survey, ShouldBeNil)
			So(days[0].Apps["Word"].Count, ShouldEqual, 1)
		})
	})
}
