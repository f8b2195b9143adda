package testevents

import "time"

// HTTP status code constants.
const (
	StatusOK       = 200
	StatusAccepted = 202
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	DefaultPollInterval  = 100 * time.Millisecond
	PercentageMultiplier = 100
)

// Generated timestamps use the layout activity trackers export.
const (
	activityTimeLayout = "2006-01-02 15:04:05"
	surveyDateLayout   = "02-01-2006"
)
