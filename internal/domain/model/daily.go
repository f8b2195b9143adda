package model

// Column names of the daily feature table.
const (
	ColDuration               = "Duration"
	ColTotalHours             = "Total Time Spent (hours)"
	ColStartTime              = "Start Time (Decimal)"
	ColEndTime                = "End Time (Decimal)"
	ColTitleCount             = "Title_count"
	ColUniqueTitles           = "Unique Titles"
	ColShareUniqueTitles      = "Share of Unique Titles"
	ColTitlesPerHour          = "Title count per hour on computer"
	ColLongestTitleDuration   = "Duration of Longest Title"
	ColMedianTimeOfDay        = "Median Time of Day"
	ColTotalWorkSlots         = "Total Work Slots"
	ColAvgWorkSlotDuration    = "Average Work Slot Duration"
	ColTotalBreaks            = "Total Breaks"
	ColAvgBreakDuration       = "Average Break Duration"
	ColRelativeBreakTime      = "Relative break time"
	ColShareSlotsMostFrequent = "Share of Work Slots with Most Frequent Title"

	timeInPrefix  = "Time in "
	countOfPrefix = "Count of "
)

// MetricColumns lists the fixed numeric columns in table order.
var MetricColumns = []string{
	ColDuration,
	ColTotalHours,
	ColStartTime,
	ColEndTime,
	ColTitleCount,
	ColUniqueTitles,
	ColShareUniqueTitles,
	ColTitlesPerHour,
	ColLongestTitleDuration,
	ColMedianTimeOfDay,
	ColTotalWorkSlots,
	ColAvgWorkSlotDuration,
	ColTotalBreaks,
	ColAvgBreakDuration,
	ColRelativeBreakTime,
	ColShareSlotsMostFrequent,
}

// TimeInColumn returns the per-app duration column name.
func TimeInColumn(app string) string { return timeInPrefix + app }

// CountOfColumn returns the per-app occurrence column name.
func CountOfColumn(app string) string { return countOfPrefix + app }

// AppUsage is the per-app pivot cell of a day.
type AppUsage struct {
	Seconds float64 `json:"seconds"`
	Count   int     `json:"count"`
}

// DailyRecord holds every behavioral metric of one calendar day.
type DailyRecord struct {
	Date Date `json:"date"`

	DurationSeconds float64 `json:"duration_seconds"`
	TotalHours      float64 `json:"total_hours"`
	StartTime       float64 `json:"start_time"`
	EndTime         float64 `json:"end_time"`

	TitleCount        int   `json:"title_count"`
	UniqueTitles      int   `json:"unique_titles"`
	ShareUniqueTitles Value `json:"share_unique_titles"`
	TitlesPerHour     Value `json:"titles_per_hour"`

	MostFrequentTitle    string  `json:"most_frequent_title"`
	LongestTitle         string  `json:"longest_title"`
	LongestTitleDuration float64 `json:"longest_title_duration"`

	// Apps carries every app of the dataset vocabulary, zero-filled.
	Apps map[string]AppUsage `json:"apps"`

	MedianTimeOfDay        Value `json:"median_time_of_day"`
	TotalWorkSlots         int   `json:"total_work_slots"`
	AvgWorkSlotDuration    Value `json:"avg_work_slot_duration"`
	TotalBreaks            int   `json:"total_breaks"`
	AvgBreakDuration       Value `json:"avg_break_duration"`
	RelativeBreakTime      Value `json:"relative_break_time"`
	ShareSlotsMostFrequent Value `json:"share_slots_most_frequent"`

	Survey *SurveyRecord `json:"survey,omitempty"`
}

// Metric returns the named fixed metric column of the day.
func (d *DailyRecord) Metric(column string) (Value, bool) {
	switch column {
	case ColDuration:
		return Some(d.DurationSeconds), true
	case ColTotalHours:
		return Some(d.TotalHours), true
	case ColStartTime:
		return Some(d.StartTime), true
	case ColEndTime:
		return Some(d.EndTime), true
	case ColTitleCount:
		return Some(float64(d.TitleCount)), true
	case ColUniqueTitles:
		return Some(float64(d.UniqueTitles)), true
	case ColShareUniqueTitles:
		return d.ShareUniqueTitles, true
	case ColTitlesPerHour:
		return d.TitlesPerHour, true
	case ColLongestTitleDuration:
		return Some(d.LongestTitleDuration), true
	case ColMedianTimeOfDay:
		return d.MedianTimeOfDay, true
	case ColTotalWorkSlots:
		return Some(float64(d.TotalWorkSlots)), true
	case ColAvgWorkSlotDuration:
		return d.AvgWorkSlotDuration, true
	case ColTotalBreaks:
		return Some(float64(d.TotalBreaks)), true
	case ColAvgBreakDuration:
		return d.AvgBreakDuration, true
	case ColRelativeBreakTime:
		return d.RelativeBreakTime, true
	case ColShareSlotsMostFrequent:
		return d.ShareSlotsMostFrequent, true
	}
	return Value{}, false
}

// Clone returns a copy that shares no maps or pointers with d.
func (d *DailyRecord) Clone() DailyRecord {
	out := *d
	if d.Apps != nil {
		out.Apps = make(map[string]AppUsage, len(d.Apps))
		for k, v := range d.Apps {
			out.Apps[k] = v
		}
	}
	if d.Survey != nil {
		s := *d.Survey
		out.Survey = &s
	}
	return out
}
