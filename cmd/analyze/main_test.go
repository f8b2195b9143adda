package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

const activityCSV = `App;Type;Title;Begin;End
Microsoft Word;APP;report;2024-03-04 09:00:00;2024-03-04 09:30:00
Google Chrome;APP;mail;2024-03-04 09:30:00;2024-03-04 09:40:00
Microsoft Word;APP;report;2024-03-04 10:00:00;2024-03-04 10:15:00
Microsoft Word;APP;report;2024-03-05 08:00:00;2024-03-05 10:00:00
Google Chrome;APP;news;2024-03-05 10:30:00;2024-03-05 10:35:00
Microsoft Excel;APP;budget;2024-03-06 13:00:00;2024-03-06 13:45:00
Google Chrome;APP;mail;2024-03-06 14:00:00;2024-03-06 14:20:00
`

const surveyCSV = `Date,Productivity,Vigor,Dedication,Absorption
04-03-2024,3,4,4,3
05-03-2024,5,5,4,4
06-03-2024,2,2,3,2
`

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeInputs(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	activity := filepath.Join(dir, "activity.csv")
	survey := filepath.Join(dir, "survey.csv")
	if err := os.WriteFile(activity, []byte(activityCSV), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(survey, []byte(surveyCSV), 0o600); err != nil {
		t.Fatal(err)
	}
	return activity, survey
}

func TestRunCommand(t *testing.T) {
	convey.Convey("Given an activity export and a survey on disk", t, func() {
		activity, survey := writeInputs(t)

		convey.Convey("When run reads them with the right delimiter", func() {
			xlsx := filepath.Join(t.TempDir(), "out.xlsx")
			out, err := execute("run", "--activity", activity, "--survey", survey, "--delimiter", "semicolon", "--min-abs-r", "0", "--xlsx", xlsx)

			convey.Convey("Then the summary, days and correlations are printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "days 3, joined 3")
				convey.So(out, convey.ShouldContainSubstring, "2024-03-05")
				convey.So(out, convey.ShouldContainSubstring, "Significant correlations with Productivity")
				convey.So(out, convey.ShouldContainSubstring, "workbook written to")
			})

			convey.Convey("Then the workbook exists", func() {
				info, statErr := os.Stat(xlsx)
				convey.So(statErr, convey.ShouldBeNil)
				convey.So(info.Size(), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When run uses the wrong delimiter", func() {
			_, err := execute("run", "--activity", activity, "--survey", survey)

			convey.Convey("Then the format error is returned", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the delimiter is unsupported", func() {
			_, err := execute("run", "--activity", activity, "--survey", survey, "--delimiter", "|")
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When the target is not a survey score", func() {
			_, err := execute("run", "--activity", activity, "--survey", survey, "--delimiter", "semicolon", "--target", "Happiness")

			convey.Convey("Then the command fails instead of printing an empty table", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "unknown target")
			})
		})

		convey.Convey("When a required flag is missing", func() {
			_, err := execute("run", "--activity", activity)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestGenerateCommand(t *testing.T) {
	convey.Convey("Given an output directory", t, func() {
		dir := t.TempDir()

		convey.Convey("When generate writes a pair", func() {
			out, err := execute("generate", "--days", "14", "--seed", "3", "--out", dir)
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "joined days")

			convey.Convey("Then run can analyse it", func() {
				activity, _ := filepath.Glob(filepath.Join(dir, "*-activity.csv"))
				survey, _ := filepath.Glob(filepath.Join(dir, "*-survey.csv"))
				convey.So(activity, convey.ShouldHaveLength, 1)
				convey.So(survey, convey.ShouldHaveLength, 1)

				out, err := execute("run", "--activity", activity[0], "--survey", survey[0])
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Days")
			})
		})

		convey.Convey("When --from is not a date", func() {
			_, err := execute("generate", "--out", dir, "--from", "yesterday")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
