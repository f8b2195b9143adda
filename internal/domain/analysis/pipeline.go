// Package analysis runs the activity pipeline end to end: normalize, merge
// slots, aggregate days, join the survey and correlate.
package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/workpulse/internal/domain/correlation"
	"github.com/okian/workpulse/internal/domain/daily"
	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/internal/domain/normalize"
	"github.com/okian/workpulse/internal/domain/report"
	"github.com/okian/workpulse/internal/domain/slots"
	"github.com/okian/workpulse/internal/domain/survey"
	"github.com/okian/workpulse/pkg/logger"
	"github.com/okian/workpulse/pkg/metrics"
)

// Stage names used in logs and metrics.
const (
	StageNormalize = "normalize"
	StageMerge     = "merge"
	StageAggregate = "aggregate"
	StageSurvey    = "survey"
	StageJoin      = "join"
	StageCorrelate = "correlate"
)

// NoteNoJoinedDays is recorded when no day has a survey response.
const NoteNoJoinedDays = "no day has both activity and a Productivity score"

// Input is one dataset pair.
type Input struct {
	Activity  []byte
	Survey    []byte
	Delimiter rune
	Standard  model.StandardApps
}

// Pipeline runs analyses. It holds no per-run state and is safe for
// concurrent use.
type Pipeline struct {
	engine *correlation.Engine
	survey *survey.Parser
	logger logger.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		engine: correlation.New(),
		survey: survey.NewParser(),
		logger: logger.Get().Named("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes every stage for in and fills a. The activity export is
// processed before the survey, so a survey failure still leaves the
// activity diagnostics on a.
func (p *Pipeline) Run(ctx context.Context, in Input, a *model.Analysis) error {
	start := time.Now()
	a.Standard = report.WithDefaults(in.Standard)
	diag := &a.Diagnostics

	var (
		events []model.RawEvent
		err    error
	)
	if err = p.stage(ctx, StageNormalize, func() error {
		var rep normalize.Report
		n := normalize.New(normalize.WithDelimiter(in.Delimiter))
		events, rep, err = n.Parse(ctx, bytes.NewReader(in.Activity))
		diag.ActivityRows, diag.EventsKept, diag.EventsDropped = rep.Rows, rep.Kept, rep.Dropped
		metrics.RecordActivityRows(rep.Rows)
		metrics.RecordEventsIngested(rep.Kept)
		for reason, c := range rep.Dropped {
			metrics.RecordRowsDropped(StageNormalize, reason, c)
		}
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return normalize.ErrEmptyDataset
		}
		return nil
	}); err != nil {
		return err
	}

	var merged []model.WorkSlot
	if err = p.stage(ctx, StageMerge, func() error {
		merged, diag.SlotsDropped = slots.MergeCounted(events)
		diag.Slots = len(merged)
		metrics.RecordSlotsMerged(len(merged))
		return nil
	}); err != nil {
		return err
	}

	var days []model.DailyRecord
	if err = p.stage(ctx, StageAggregate, func() error {
		a.Apps = daily.Vocabulary(events)
		a.TopApps = report.TopApps(events, report.TopAppsLimit)
		days = daily.Aggregate(events, merged)
		diag.Days = len(days)
		metrics.RecordDaysAggregated(len(days))
		return nil
	}); err != nil {
		return err
	}

	var surveys []model.SurveyRecord
	if err = p.stage(ctx, StageSurvey, func() error {
		var rep survey.Report
		surveys, rep, err = p.survey.Parse(ctx, bytes.NewReader(in.Survey))
		diag.SurveyRows, diag.SurveyKept, diag.SurveyDropped, diag.SurveyDelim = rep.Rows, rep.Kept, rep.Dropped, rep.Delimiter
		for reason, c := range rep.Dropped {
			metrics.RecordRowsDropped(StageSurvey, reason, c)
		}
		return err
	}); err != nil {
		return err
	}

	if err = p.stage(ctx, StageJoin, func() error {
		a.Days = survey.Join(days, surveys)
		diag.JoinedDays = len(a.Days)
		metrics.RecordDaysJoined(len(a.Days))
		if len(a.Days) == 0 {
			diag.Notes = append(diag.Notes, NoteNoJoinedDays)
		}
		return nil
	}); err != nil {
		return err
	}

	if err = p.stage(ctx, StageCorrelate, func() error {
		table := daily.BuildTable(a.Days, a.Apps)
		a.Table = &table
		results, err := p.engine.Compute(ctx, table)
		if err != nil {
			return err
		}
		a.Correlations, diag.DuplicatePairs = correlation.Consolidate(results)
		diag.Correlations = len(results)

		high, undefined := 0, 0
		for _, r := range results {
			if !r.R.Valid {
				undefined++
			}
			if r.Significance == model.SignificanceHigh {
				high++
			}
		}
		metrics.RecordCorrelations(len(results), high, undefined)
		metrics.RecordDuplicatePairs(diag.DuplicatePairs)
		return nil
	}); err != nil {
		return err
	}

	p.logger.Info(ctx, "analysis finished",
		logger.String("id", a.ID),
		logger.Int("events", diag.EventsKept),
		logger.Int("days", diag.Days),
		logger.Int("joined_days", diag.JoinedDays),
		logger.Int("correlations", diag.Correlations),
		logger.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// stage runs fn after a cancellation check and records its latency.
func (p *Pipeline) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := fn()
	metrics.RecordStageDuration(name, float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		metrics.RecordErrorByComponent("pipeline", name)
		p.logger.Warn(ctx, "stage failed", logger.String("stage", name), logger.Error(err))
		return fmt.Errorf("%s: %w", name, err)
	}
	p.logger.Debug(ctx, "stage done", logger.String("stage", name), logger.Duration("elapsed", time.Since(start)))
	return nil
}

// IsInputError reports whether err comes from a malformed or empty upload
// rather than from cancellation or an internal fault.
func IsInputError(err error) bool {
	return errors.Is(err, normalize.ErrInputFormat) ||
		errors.Is(err, normalize.ErrEmptyDataset) ||
		errors.Is(err, survey.ErrInputFormat)
}

// FailureReason maps a run error to a short metrics label.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, normalize.ErrEmptyDataset):
		return "empty_dataset"
	case errors.Is(err, normalize.ErrInputFormat):
		return "activity_format"
	case errors.Is(err, survey.ErrInputFormat):
		return "survey_format"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "internal"
}
