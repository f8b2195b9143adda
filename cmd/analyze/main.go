// Command analyze runs the workpulse pipeline on local files and prints the
// day table and the significant correlations.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/workpulse/internal/adapters/export"
	service "github.com/okian/workpulse/internal/app"
	"github.com/okian/workpulse/internal/domain/correlation"
	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/internal/domain/normalize"
	"github.com/okian/workpulse/internal/domain/report"
	"github.com/okian/workpulse/internal/testevents"
	"github.com/okian/workpulse/pkg/logger"
	"github.com/spf13/cobra"
)

const dirPermission = 0750

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "analyze",
		Short:         "Correlate computer activity with daily well-being scores",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWithWriter(cmd.ErrOrStderr(), logger.FormatText); err != nil {
				return err
			}
			return logger.SetLevelString(logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug|info|warn|error")

	root.AddCommand(newRunCmd(), newGenerateCmd())
	return root
}

type runOptions struct {
	activity  string
	survey    string
	delimiter string
	browser   string
	pdfTool   string
	target    string
	minAbsR   float64
	threshold float64
	xlsx      string
}

func newRunCmd() *cobra.Command {
	var o runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyse an activity export and a survey",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalysis(cmd, o)
		},
	}
	cmd.Flags().StringVar(&o.activity, "activity", "", "activity export (CSV with App, Title, Begin, End)")
	cmd.Flags().StringVar(&o.survey, "survey", "", "survey file (Date and the four scores)")
	cmd.Flags().StringVar(&o.delimiter, "delimiter", ",", "activity delimiter: comma|semicolon")
	cmd.Flags().StringVar(&o.browser, "browser", "", "standard browser (default Google Chrome)")
	cmd.Flags().StringVar(&o.pdfTool, "pdf-tool", "", "standard PDF tool (default Adobe Acrobat)")
	cmd.Flags().StringVar(&o.target, "target", model.ScoreProductivity, "score the significant correlations are listed for")
	cmd.Flags().Float64Var(&o.minAbsR, "min-abs-r", report.MinReportedR, "smallest |r| listed")
	cmd.Flags().Float64Var(&o.threshold, "threshold", correlation.DefaultThreshold, "|t| above which a correlation is High")
	cmd.Flags().StringVar(&o.xlsx, "xlsx", "", "also write the workbook to this path")
	_ = cmd.MarkFlagRequired("activity")
	_ = cmd.MarkFlagRequired("survey")
	return cmd
}

func runAnalysis(cmd *cobra.Command, o runOptions) error {
	if !model.IsTarget(o.target) {
		return fmt.Errorf("unknown target %q (want one of %s)", o.target, strings.Join(model.Targets, ", "))
	}
	delim, err := normalize.ParseDelimiter(o.delimiter)
	if err != nil {
		return err
	}
	activity, err := os.ReadFile(o.activity)
	if err != nil {
		return fmt.Errorf("read activity: %w", err)
	}
	survey, err := os.ReadFile(o.survey)
	if err != nil {
		return fmt.Errorf("read survey: %w", err)
	}

	svc := service.New(
		service.WithLogger(logger.Get()),
		service.WithSignificanceThreshold(o.threshold),
	)
	a, err := svc.Analyze(cmd.Context(), service.Submission{
		Activity:  activity,
		Survey:    survey,
		Delimiter: delim,
		Standard:  model.StandardApps{Browser: o.browser, PDFTool: o.pdfTool},
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, renderSummary(a))
	_, _ = fmt.Fprintln(out, renderDays(a.Table, a.Standard))
	_, _ = fmt.Fprintln(out, renderCorrelations(correlation.Significant(a.Correlations, o.target, o.minAbsR), o.target))

	if o.xlsx != "" {
		if err := export.SaveXLSX(o.xlsx, a); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "workbook written to %s\n", o.xlsx)
	}
	return nil
}

func newGenerateCmd() *cobra.Command {
	var (
		days      int
		seed      uint64
		outDir    string
		delimiter string
		from      string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic activity export and survey",
		RunE: func(cmd *cobra.Command, _ []string) error {
			delim, err := normalize.ParseDelimiter(delimiter)
			if err != nil {
				return err
			}
			start, err := time.Parse(time.DateOnly, from)
			if err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
			pair, err := testevents.GeneratePair(seed, days, start, delim)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, dirPermission); err != nil {
				return err
			}
			if err := testevents.WritePair(outDir, pair); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d joined days)\n",
				filepath.Join(outDir, pair.Name+"-{activity,survey}.csv"), pair.JoinedDays)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "days covered")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "generator seed")
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	cmd.Flags().StringVar(&delimiter, "delimiter", ",", "activity delimiter: comma|semicolon")
	cmd.Flags().StringVar(&from, "from", "2024-01-01", "first day (YYYY-MM-DD)")
	return cmd
}
