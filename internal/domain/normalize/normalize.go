// Package normalize turns a raw activity-tracker export into canonical events.
//
// Exports are Latin-1 encoded delimited text with an app column first,
// followed by at least Title, Begin and End. A Type column is ignored.
package normalize

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/okian/workpulse/internal/domain/model"
)

// Reasons a row is dropped during normalization.
const (
	DropInvalidBegin   = "invalid_begin"
	DropInvalidEnd     = "invalid_end"
	DropEndBeforeBegin = "end_before_begin"
	DropExcludedTitle  = "excluded_title"
)

// Column names of the activity export.
const (
	ColApp   = "App"
	ColType  = "Type"
	ColTitle = "Title"
	ColBegin = "Begin"
	ColEnd   = "End"
)

// DefaultLayouts are tried in order for Begin and End cells.
var DefaultLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04",
	"02-01-2006 15:04:05",
	"02.01.2006 15:04:05",
	"01/02/2006 15:04:05",
}

// utf8BOMAsLatin1 is what a UTF-8 byte order mark looks like after a Latin-1 decode.
const utf8BOMAsLatin1 = "ï»¿"

// Report summarizes one Parse call.
type Report struct {
	Rows    int            `json:"rows"`
	Kept    int            `json:"kept"`
	Dropped map[string]int `json:"dropped"`
}

// DroppedTotal sums every drop reason.
func (r Report) DroppedTotal() int {
	n := 0
	for _, c := range r.Dropped {
		n += c
	}
	return n
}

// Normalizer parses activity exports.
type Normalizer struct {
	delimiter rune
	location  *time.Location
	layouts   []string
}

// New creates a Normalizer. The default delimiter is ',' and naive
// timestamps are read as UTC.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		delimiter: ',',
		location:  time.UTC,
		layouts:   DefaultLayouts,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ParseDelimiter maps the user-facing delimiter name to a rune.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	}
	return 0, fmt.Errorf("%w: %w %q", ErrInputFormat, ErrUnsupportedDelimiter, s)
}

type columns struct {
	app, title, begin, end int
}

// Parse reads an export and returns its events in row order. Rows with an
// unusable Begin or End, or with an excluded title, are dropped and counted
// in the report; structural problems fail the whole export.
func (n *Normalizer) Parse(ctx context.Context, r io.Reader) ([]model.RawEvent, Report, error) {
	rep := Report{Dropped: map[string]int{}}
	if n.delimiter != ',' && n.delimiter != ';' {
		return nil, rep, fmt.Errorf("%w: %w %q", ErrInputFormat, ErrUnsupportedDelimiter, string(n.delimiter))
	}

	cr := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	cr.Comma = n.delimiter

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, rep, fmt.Errorf("%w: empty export", ErrInputFormat)
	}
	if err != nil {
		return nil, rep, fmt.Errorf("%w: %w", ErrInputFormat, err)
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, rep, err
	}

	var events []model.RawEvent
	for {
		if err := ctx.Err(); err != nil {
			return nil, rep, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, rep, fmt.Errorf("%w: %w", ErrInputFormat, err)
		}
		rep.Rows++

		ev, reason := n.event(rec, cols)
		if reason != "" {
			rep.Dropped[reason]++
			continue
		}
		events = append(events, ev)
	}
	rep.Kept = len(events)
	return events, rep, nil
}

func (n *Normalizer) event(rec []string, cols columns) (model.RawEvent, string) {
	begin, ok := n.parseTime(rec[cols.begin])
	if !ok {
		return model.RawEvent{}, DropInvalidBegin
	}
	title := rec[cols.title]
	if model.IsExcludedTitle(title) {
		return model.RawEvent{}, DropExcludedTitle
	}
	end, ok := n.parseTime(rec[cols.end])
	if !ok {
		return model.RawEvent{}, DropInvalidEnd
	}
	if end.Before(begin) {
		return model.RawEvent{}, DropEndBeforeBegin
	}
	return model.RawEvent{
		App:   rec[cols.app],
		Title: title,
		Begin: begin,
		End:   end,
	}, ""
}

// parseTime reads s with the first matching layout, truncated to whole seconds.
func (n *Normalizer) parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range n.layouts {
		t, err := time.ParseInLocation(layout, s, n.location)
		if err == nil {
			return t.Truncate(time.Second), true
		}
	}
	return time.Time{}, false
}

func resolveColumns(header []string) (columns, error) {
	cols := columns{app: 0, title: -1, begin: -1, end: -1}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(h, utf8BOMAsLatin1), "\ufeff"))
		if i == 0 {
			// the first column is the app whatever it is called
			continue
		}
		switch {
		case strings.EqualFold(h, ColTitle):
			cols.title = i
		case strings.EqualFold(h, ColBegin):
			cols.begin = i
		case strings.EqualFold(h, ColEnd):
			cols.end = i
		}
	}

	var missing []string
	if cols.title < 0 {
		missing = append(missing, ColTitle)
	}
	if cols.begin < 0 {
		missing = append(missing, ColBegin)
	}
	if cols.end < 0 {
		missing = append(missing, ColEnd)
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("%w: %w: %s", ErrInputFormat, ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

// FilterExcluded returns the events whose title is not tracker noise.
// Applying it more than once has no further effect.
func FilterExcluded(events []model.RawEvent) []model.RawEvent {
	out := make([]model.RawEvent, 0, len(events))
	for _, e := range events {
		if !model.IsExcludedTitle(e.Title) {
			out = append(out, e)
		}
	}
	return out
}
