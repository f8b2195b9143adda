package survey

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// sniffWindow is how much of the export the delimiter is guessed from.
const sniffWindow = 1024

// Candidates are the delimiters Sniff considers, in preference order.
var Candidates = []rune{',', ';', '\t', '|'}

// Sniff guesses the delimiter of a delimited text sample. A candidate
// qualifies when it splits the header into at least two columns and every
// complete line of the sample into the same number; among qualifying
// candidates the widest split wins, ties going to the earlier candidate.
func Sniff(sample []byte) (rune, error) {
	if len(sample) > sniffWindow {
		sample = sample[:sniffWindow]
		// the last line is likely cut short
		if i := bytes.LastIndexByte(sample, '\n'); i > 0 {
			sample = sample[:i]
		}
	}
	sample = bytes.TrimPrefix(sample, []byte("\ufeff"))

	var (
		best      rune
		bestWidth int
	)
	for _, c := range Candidates {
		width, ok := consistentWidth(sample, c)
		if ok && width > bestWidth {
			best, bestWidth = c, width
		}
	}
	if bestWidth < 2 {
		return 0, fmt.Errorf("%w: %w", ErrInputFormat, ErrDelimiterNotFound)
	}
	return best, nil
}

func consistentWidth(sample []byte, delim rune) (int, bool) {
	r := csv.NewReader(bytes.NewReader(sample))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil || len(records) == 0 {
		return 0, false
	}
	width := len(records[0])
	for _, rec := range records[1:] {
		if len(rec) != width {
			return 0, false
		}
	}
	return width, width >= 2
}
