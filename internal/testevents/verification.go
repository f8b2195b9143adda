package testevents

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/pkg/logger"
)

// ErrVerification is returned when at least one analysis breaks an invariant.
var ErrVerification = errors.New("verification failed")

// verifyResults checks every collected analysis.
func verifyResults(ctx context.Context, config *Config, results []Result, stats *Stats) error {
	log := logger.Get().Named("verify")
	log.Info(ctx, "verifying results")

	collected := 0
	for i := range results {
		res := &results[i]
		if res.Table == nil {
			continue
		}
		collected++
		violations := VerifyAnalysis(res.Pair, res.Table, res.Correlations)
		if len(violations) == 0 {
			stats.PairsVerified++
			continue
		}
		stats.Violations += len(violations)
		for _, v := range violations {
			log.Warn(ctx, "invariant violated", logger.String("id", res.Ack.ID), logger.String("pair", res.Pair.Name), logger.String("violation", v))
		}
	}

	if config.Verbose {
		log.Info(ctx, "verification summary",
			logger.Int("collected", collected),
			logger.Int("verified", stats.PairsVerified),
			logger.Int("violations", stats.Violations))
	}

	if collected == 0 {
		return fmt.Errorf("%w: no analysis finished", ErrVerification)
	}
	if stats.Violations > 0 {
		return fmt.Errorf("%w: %d violations", ErrVerification, stats.Violations)
	}
	log.Info(ctx, "result verification completed")
	return nil
}

// slotTolerance absorbs rounding of the mean slot duration, in seconds.
const slotTolerance = 1e-6

// VerifyAnalysis checks a finished analysis of pair. It returns one message
// per violated invariant:
//   - every joined day has a Productivity score and the day count matches
//     the generated survey
//   - every day has at least one work slot of positive length
//   - slot time on a day never exceeds the day's event time
//   - break counts and durations are never negative
//   - every defined r lies in [-1, 1]
func VerifyAnalysis(pair Pair, table *model.Table, corr *Correlations) []string {
	var out []string
	if len(table.Rows) != pair.JoinedDays {
		out = append(out, fmt.Sprintf("joined days: got %d, want %d", len(table.Rows), pair.JoinedDays))
	}

	col := func(row model.TableRow, name string) (model.Value, bool) {
		idx := table.Index(name)
		if idx < 0 || idx >= len(row.Values) {
			return model.Value{}, false
		}
		return row.Values[idx], true
	}

	for _, name := range []string{model.ScoreProductivity, model.ColDuration, model.ColTotalWorkSlots, model.ColAvgWorkSlotDuration, model.ColTotalBreaks} {
		if table.Index(name) < 0 {
			out = append(out, "missing column "+name)
		}
	}
	if table.Index(model.ScoreProductivity) < 0 {
		return out
	}

	for _, row := range table.Rows {
		if v, _ := col(row, model.ScoreProductivity); !v.Valid {
			out = append(out, fmt.Sprintf("%s: joined without a Productivity score", row.Date))
		}
		if v, _ := col(row, model.ColTotalWorkSlots); v.Or(0) < 1 {
			out = append(out, fmt.Sprintf("%s: no work slot", row.Date))
		}
		if v, _ := col(row, model.ColAvgWorkSlotDuration); v.Or(0) <= 0 {
			out = append(out, fmt.Sprintf("%s: work slots without length", row.Date))
		}
		n, _ := col(row, model.ColTotalWorkSlots)
		avg, _ := col(row, model.ColAvgWorkSlotDuration)
		if dur, ok := col(row, model.ColDuration); ok && avg.Or(0)*n.Or(0) > dur.Or(0)+slotTolerance {
			out = append(out, fmt.Sprintf("%s: slot time %.0fs exceeds event time %.0fs", row.Date, avg.Or(0)*n.Or(0), dur.Or(0)))
		}
		if v, _ := col(row, model.ColTotalBreaks); v.Or(0) < 0 {
			out = append(out, fmt.Sprintf("%s: negative break count", row.Date))
		}
		if v, ok := col(row, model.ColAvgBreakDuration); ok && v.Valid && v.Float <= 0 {
			out = append(out, fmt.Sprintf("%s: non-positive break duration", row.Date))
		}
	}

	if corr != nil {
		for _, r := range corr.Rows {
			for target, res := range r.Targets {
				if res.R.Valid && !math.IsInf(res.R.Float, 0) && math.Abs(res.R.Float) > 1+1e-9 {
					out = append(out, fmt.Sprintf("r(%s, %s) = %v out of range", r.Variable, target, res.R.Float))
				}
			}
		}
	}
	return out
}
