// Package daily reduces normalized events and work slots to one feature row
// per calendar day.
package daily

import (
	"sort"
	"time"

	"github.com/jinzhu/now"
	"github.com/montanaflynn/stats"

	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/internal/domain/slots"
)

// day accumulates one date's inputs before the metrics are finalized.
type day struct {
	rec          *model.DailyRecord
	first, last  time.Time
	titleCounts  map[string]int
	titleSeconds map[string]float64
	slots        []model.WorkSlot
}

// Aggregate builds one record per date of Begin, ordered by date. Metrics
// from events and from slots are merged into the same per-date entry; events
// and slots without a usable Begin are skipped. A slot that runs past
// midnight is split so each day only counts the events that begin on it.
func Aggregate(events []model.RawEvent, merged []model.WorkSlot) []model.DailyRecord {
	apps := Vocabulary(events)
	days := make(map[model.Date]*day)

	for _, e := range events {
		key, ok := dateKey(e.Begin)
		if !ok {
			continue
		}
		d := days[key]
		if d == nil {
			d = &day{
				rec:          &model.DailyRecord{Date: key, Apps: zeroApps(apps)},
				first:        e.Begin,
				last:         e.End,
				titleCounts:  map[string]int{},
				titleSeconds: map[string]float64{},
			}
			days[key] = d
		}
		addEvent(d, e)
	}

	for _, s := range merged {
		for _, piece := range slots.SplitByDate(s) {
			key, ok := dateKey(piece.Begin)
			if !ok {
				continue
			}
			// a piece always starts with an event of the same date
			if d := days[key]; d != nil {
				d.slots = append(d.slots, piece)
			}
		}
	}

	keys := make([]model.Date, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]model.DailyRecord, 0, len(keys))
	for _, k := range keys {
		d := days[k]
		finishEvents(d)
		finishSlots(d)
		out = append(out, *d.rec)
	}
	return out
}

// Vocabulary returns every distinct app of the dataset, sorted.
func Vocabulary(events []model.RawEvent) []string {
	seen := make(map[string]struct{})
	for _, e := range events {
		seen[e.App] = struct{}{}
	}
	apps := make([]string, 0, len(seen))
	for a := range seen {
		apps = append(apps, a)
	}
	sort.Strings(apps)
	return apps
}

func dateKey(t time.Time) (model.Date, bool) {
	if t.IsZero() {
		return "", false
	}
	return model.DateOf(now.With(t).BeginningOfDay()), true
}

// decimalHour returns the time of day of t as h + m/60 + s/3600.
func decimalHour(t time.Time) float64 {
	return t.Sub(now.With(t).BeginningOfDay()).Hours()
}

func zeroApps(apps []string) map[string]model.AppUsage {
	m := make(map[string]model.AppUsage, len(apps))
	for _, a := range apps {
		m[a] = model.AppUsage{}
	}
	return m
}

func addEvent(d *day, e model.RawEvent) {
	secs := e.Duration().Seconds()
	r := d.rec

	r.DurationSeconds += secs
	r.TitleCount++
	if e.Begin.Before(d.first) {
		d.first = e.Begin
	}
	if e.End.After(d.last) {
		d.last = e.End
	}

	d.titleCounts[e.Title]++
	d.titleSeconds[e.Title] += secs

	u := r.Apps[e.App]
	u.Seconds += secs
	u.Count++
	r.Apps[e.App] = u
}

func finishEvents(d *day) {
	r := d.rec
	r.TotalHours = r.DurationSeconds / 3600
	r.StartTime = decimalHour(d.first)
	r.EndTime = decimalHour(d.last)
	r.UniqueTitles = len(d.titleCounts)
	if r.TitleCount > 0 {
		r.ShareUniqueTitles = model.Some(float64(r.UniqueTitles) / float64(r.TitleCount))
	}
	if r.TotalHours > 0 {
		r.TitlesPerHour = model.Some(float64(r.TitleCount) / r.TotalHours)
	}

	r.MostFrequentTitle, _ = argmaxInt(d.titleCounts)
	r.LongestTitle, r.LongestTitleDuration = argmaxFloat(d.titleSeconds)
}

func finishSlots(d *day) {
	r := d.rec
	ws := d.slots
	sort.SliceStable(ws, func(i, j int) bool { return ws[i].Begin.Before(ws[j].Begin) })

	r.TotalWorkSlots = len(ws)
	if len(ws) == 0 {
		return
	}

	mids := make(stats.Float64Data, len(ws))
	durs := make(stats.Float64Data, len(ws))
	dominant := make(map[string]int)
	var gaps stats.Float64Data
	for i, s := range ws {
		mids[i] = decimalHour(s.Midpoint())
		durs[i] = s.Duration().Seconds()
		dominant[s.DominantTitle]++
		if i > 0 {
			if gap := s.Begin.Sub(ws[i-1].End).Seconds(); gap > 0 {
				gaps = append(gaps, gap)
			}
		}
	}

	r.MedianTimeOfDay = stat(stats.Median(mids))
	r.AvgWorkSlotDuration = stat(stats.Mean(durs))

	r.TotalBreaks = len(gaps)
	if len(gaps) > 0 {
		r.AvgBreakDuration = stat(stats.Mean(gaps))
		if r.DurationSeconds > 0 {
			r.RelativeBreakTime = model.Some(r.AvgBreakDuration.Float / r.DurationSeconds)
		}
	}

	_, top := argmaxInt(dominant)
	r.ShareSlotsMostFrequent = model.Some(float64(top) / float64(len(ws)))
}

func stat(v float64, err error) model.Value {
	if err != nil {
		return model.Missing()
	}
	return model.Some(v)
}

// argmaxInt returns the key with the largest count; ties go to the
// lexicographically smallest key.
func argmaxInt(m map[string]int) (string, int) {
	best, bestN, found := "", 0, false
	for k, n := range m {
		if !found || n > bestN || (n == bestN && k < best) {
			best, bestN, found = k, n, true
		}
	}
	return best, bestN
}

// argmaxFloat is argmaxInt for summed durations.
func argmaxFloat(m map[string]float64) (string, float64) {
	best, bestV, found := "", 0.0, false
	for k, v := range m {
		if !found || v > bestV || (v == bestV && k < best) {
			best, bestV, found = k, v, true
		}
	}
	return best, bestV
}
