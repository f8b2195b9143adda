package testevents

import (
	"time"

	"github.com/okian/workpulse/internal/domain/model"
)

// Config holds configuration for the load test.
type Config struct {
	BaseURL      string        // Base URL of the service
	NumPairs     int           // Number of dataset pairs to generate
	Days         int           // Days covered by each pair
	Seed         uint64        // Seed of the first pair; pair i uses Seed+i
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	PollInterval time.Duration // Delay between status polls
	OutputDir    string        // Directory the generated pairs are written to
	LogFile      string        // Log file for test output
	Verbose      bool          // Enable verbose logging
}

// Ack is the response to a submission.
type Ack struct {
	ID        string       `json:"id"`
	Status    model.Status `json:"status"`
	Duplicate bool         `json:"duplicate"`
}

// Status is the subset of GET /analyses/{id} the runner reads.
type Status struct {
	ID     string       `json:"id"`
	Status model.Status `json:"status"`
	Error  string       `json:"error"`
	Days   int          `json:"days"`
}

// Correlations is the response of GET /analyses/{id}/correlations.
type Correlations struct {
	Rows []model.CorrelationRow `json:"rows"`
}

// Result is what the runner collected for one pair.
type Result struct {
	Pair         Pair
	Ack          Ack
	Status       Status
	Table        *model.Table
	Correlations *Correlations
	Err          error
}

// Stats holds test statistics.
type Stats struct {
	PairsGenerated int
	PairsSubmitted int
	PairsAccepted  int
	PairsDuplicate int
	PairsFailed    int
	PairsDone      int
	PairsVerified  int
	Violations     int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
