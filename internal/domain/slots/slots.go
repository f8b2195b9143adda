// Package slots merges back-to-back activity events into work slots.
package slots

import (
	"strings"
	"time"

	"github.com/okian/workpulse/internal/domain/model"
)

// Merge folds events, in the given order, into work slots. An event joins
// the current slot only when its Begin equals the slot's End exactly; any
// gap or overlap starts a new slot. Slots whose joined title is excluded are
// dropped.
func Merge(events []model.RawEvent) []model.WorkSlot {
	kept, _ := MergeCounted(events)
	return kept
}

// MergeCounted is Merge that also reports how many merged slots were
// dropped as excluded.
func MergeCounted(events []model.RawEvent) ([]model.WorkSlot, int) {
	all := chain(events)
	kept := FilterExcluded(all)
	return kept, len(all) - len(kept)
}

func chain(events []model.RawEvent) []model.WorkSlot {
	if len(events) == 0 {
		return []model.WorkSlot{}
	}

	out := make([]model.WorkSlot, 0, len(events))
	current := start(events[0])
	for _, e := range events[1:] {
		if e.Begin.Equal(current.End) {
			current.Apps = append(current.Apps, e.App)
			current.Titles = append(current.Titles, e.Title)
			current.Starts = append(current.Starts, e.Begin)
			current.End = e.End
			continue
		}
		out = append(out, finish(current))
		current = start(e)
	}
	return append(out, finish(current))
}

func start(e model.RawEvent) model.WorkSlot {
	return model.WorkSlot{
		Apps:   []string{e.App},
		Titles: []string{e.Title},
		Starts: []time.Time{e.Begin},
		Begin:  e.Begin,
		End:    e.End,
	}
}

func finish(s model.WorkSlot) model.WorkSlot {
	s.DominantTitle = DominantTitle(s.JoinedTitles())
	return s
}

// SplitByDate cuts s wherever its events move on to a new calendar date.
// Each piece spans only events that begin on the piece's date, so a slot
// running past midnight credits every day with its own share. Slots merged
// elsewhere, without Starts, come back unchanged.
func SplitByDate(s model.WorkSlot) []model.WorkSlot {
	n := len(s.Starts)
	if n < 2 || n != len(s.Titles) || n != len(s.Apps) {
		return []model.WorkSlot{s}
	}

	var out []model.WorkSlot
	from := 0
	for i := 1; i <= n; i++ {
		if i < n && model.DateOf(s.Starts[i]) == model.DateOf(s.Starts[from]) {
			continue
		}
		end := s.End
		if i < n {
			end = s.Starts[i]
		}
		out = append(out, finish(model.WorkSlot{
			Apps:   s.Apps[from:i:i],
			Titles: s.Titles[from:i:i],
			Starts: s.Starts[from:i:i],
			Begin:  s.Starts[from],
			End:    end,
		}))
		from = i
	}
	return out
}

// FilterExcluded drops slots whose joined title is tracker noise.
func FilterExcluded(slots []model.WorkSlot) []model.WorkSlot {
	out := slots[:0:0]
	for _, s := range slots {
		if !model.IsExcludedTitle(s.JoinedTitles()) {
			out = append(out, s)
		}
	}
	return out
}

// DominantTitle returns the most frequent token of a joined title string.
// On a tie the token seen first wins.
func DominantTitle(joined string) string {
	if joined == "" {
		return ""
	}
	tokens := strings.Split(joined, model.SlotSeparator)

	counts := make(map[string]int, len(tokens))
	best, bestCount := "", 0
	for _, tok := range tokens {
		counts[tok]++
	}
	for _, tok := range tokens {
		if c := counts[tok]; c > bestCount {
			best, bestCount = tok, c
		}
	}
	return best
}
