package model

import "time"

// Status tracks an analysis through the service.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Terminal reports whether no further transitions will happen.
func (s Status) Terminal() bool { return s == StatusDone || s == StatusFailed }

// Diagnostics counts what each stage kept and dropped.
type Diagnostics struct {
	ActivityRows   int            `json:"activity_rows"`
	EventsKept     int            `json:"events_kept"`
	EventsDropped  map[string]int `json:"events_dropped,omitempty"`
	Slots          int            `json:"slots"`
	SlotsDropped   int            `json:"slots_dropped"`
	Days           int            `json:"days"`
	SurveyRows     int            `json:"survey_rows"`
	SurveyKept     int            `json:"survey_kept"`
	SurveyDropped  map[string]int `json:"survey_dropped,omitempty"`
	SurveyDelim    string         `json:"survey_delimiter,omitempty"`
	JoinedDays     int            `json:"joined_days"`
	Correlations   int            `json:"correlations"`
	DuplicatePairs int            `json:"duplicate_pairs"`
	Notes          []string       `json:"notes,omitempty"`
}

// Analysis is the full result of one pipeline run.
type Analysis struct {
	ID          string    `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	Status      Status    `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	FinishedAt  time.Time `json:"finished_at,omitempty"`

	Standard    StandardApps `json:"standard_apps"`
	Diagnostics Diagnostics  `json:"diagnostics"`

	// Days holds only days joined with a survey response.
	Days         []DailyRecord    `json:"days,omitempty"`
	Apps         []string         `json:"apps,omitempty"`
	TopApps      []AppRank        `json:"top_apps,omitempty"`
	Table        *Table           `json:"-"`
	Correlations []CorrelationRow `json:"correlations,omitempty"`
}
