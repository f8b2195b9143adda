// Package model contains domain models passed between pipeline stages.
package model

import (
	"strings"
	"time"
)

// SlotSeparator joins app and title sequences of a merged work slot.
const SlotSeparator = "; "

// DateLayout is the canonical calendar-date format used as the daily key.
const DateLayout = "2006-01-02"

// Titles recorded by the tracker while the user is idle or locked out.
const (
	TitleNoTitle    = "NO_TITLE"
	TitleLockScreen = "Windows Default Lock Screen"
)

// IsExcludedTitle reports whether title is tracker noise.
func IsExcludedTitle(title string) bool {
	return title == TitleNoTitle || title == TitleLockScreen
}

// Date is a calendar day in DateLayout form.
type Date string

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return ""
	}
	return Date(t.Format(DateLayout))
}

// Time parses d back into midnight UTC.
func (d Date) Time() (time.Time, error) {
	return time.Parse(DateLayout, string(d))
}

func (d Date) String() string { return string(d) }

// RawEvent is one normalized line of the activity export.
type RawEvent struct {
	App   string    `json:"app"`
	Title string    `json:"title"`
	Begin time.Time `json:"begin"`
	End   time.Time `json:"end"`
}

// Duration returns End-Begin.
func (e RawEvent) Duration() time.Duration { return e.End.Sub(e.Begin) }

// Date returns the calendar date of Begin.
func (e RawEvent) Date() Date { return DateOf(e.Begin) }

// WorkSlot is a maximal run of back-to-back events.
type WorkSlot struct {
	Apps          []string  `json:"apps"`
	Titles        []string  `json:"titles"`
	Begin         time.Time `json:"begin"`
	End           time.Time `json:"end"`
	DominantTitle string    `json:"dominant_title"`

	// Starts holds the Begin of each merged event, in order.
	Starts []time.Time `json:"-"`
}

// Duration returns End-Begin.
func (s WorkSlot) Duration() time.Duration { return s.End.Sub(s.Begin) }

// Midpoint returns Begin + Duration/2.
func (s WorkSlot) Midpoint() time.Time { return s.Begin.Add(s.Duration() / 2) }

// Date returns the calendar date of Begin.
func (s WorkSlot) Date() Date { return DateOf(s.Begin) }

// JoinedApps returns the apps joined with SlotSeparator.
func (s WorkSlot) JoinedApps() string { return strings.Join(s.Apps, SlotSeparator) }

// JoinedTitles returns the titles joined with SlotSeparator.
func (s WorkSlot) JoinedTitles() string { return strings.Join(s.Titles, SlotSeparator) }
