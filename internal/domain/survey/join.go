package survey

import (
	"github.com/okian/workpulse/internal/domain/model"
)

// Join attaches each day's survey and keeps only days whose survey has a
// Productivity score. Returned rows are copies; the inputs are not modified.
func Join(days []model.DailyRecord, surveys []model.SurveyRecord) []model.DailyRecord {
	byDate := make(map[model.Date]model.SurveyRecord, len(surveys))
	for _, s := range surveys {
		if _, dup := byDate[s.Date]; !dup {
			byDate[s.Date] = s
		}
	}

	out := make([]model.DailyRecord, 0, len(days))
	for i := range days {
		s, ok := byDate[days[i].Date]
		if !ok || !s.Productivity.Valid {
			continue
		}
		d := days[i].Clone()
		d.Survey = &s
		out = append(out, d)
	}
	return out
}
