// Package survey parses the daily self-report export and joins it onto the
// daily feature rows.
package survey

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/okian/workpulse/internal/domain/model"
)

// Reasons a survey row is dropped or a cell is blanked.
const (
	DropInvalidDate   = "invalid_date"
	DropDuplicateDate = "duplicate_date"
	CellInvalidScore  = "invalid_score"
)

// ColDate is the survey date column.
const ColDate = "Date"

// DateLayouts are tried in order for the Date column.
var DateLayouts = []string{"02-01-2006", model.DateLayout}

// Report summarizes one Parse call.
type Report struct {
	Rows      int            `json:"rows"`
	Kept      int            `json:"kept"`
	Delimiter string         `json:"delimiter"`
	Dropped   map[string]int `json:"dropped"`
}

// row is one survey line after number parsing; nil scores are empty cells.
type row struct {
	Date         string   `validate:"required"`
	Productivity *float64 `validate:"omitnil,finite"`
	Vigor        *float64 `validate:"omitnil,finite"`
	Dedication   *float64 `validate:"omitnil,finite"`
	Absorption   *float64 `validate:"omitnil,finite"`
}

// Parser reads survey exports.
type Parser struct {
	validate *validator.Validate
}

// NewParser creates a Parser.
func NewParser() *Parser {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.Float64 {
			return false
		}
		return !math.IsNaN(f.Float()) && !math.IsInf(f.Float(), 0)
	})
	return &Parser{validate: v}
}

// Parse reads a UTF-8 survey export with an auto-detected delimiter. Rows
// with an unparseable date are dropped, as are later rows repeating a date.
// Empty or non-numeric score cells become missing values.
func (p *Parser) Parse(ctx context.Context, r io.Reader) ([]model.SurveyRecord, Report, error) {
	rep := Report{Dropped: map[string]int{}}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, rep, fmt.Errorf("read survey: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\ufeff"))
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, rep, fmt.Errorf("%w: empty export", ErrInputFormat)
	}

	delim, err := Sniff(raw)
	if err != nil {
		return nil, rep, err
	}
	rep.Delimiter = string(delim)

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = delim
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, rep, fmt.Errorf("%w: %w", ErrInputFormat, err)
	}
	idx, err := resolveColumns(header)
	if err != nil {
		return nil, rep, err
	}

	var out []model.SurveyRecord
	seen := make(map[model.Date]struct{})
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

		sr, ok := p.record(rec, idx, &rep)
		if !ok {
			rep.Dropped[DropInvalidDate]++
			continue
		}
		if _, dup := seen[sr.Date]; dup {
			rep.Dropped[DropDuplicateDate]++
			continue
		}
		seen[sr.Date] = struct{}{}
		out = append(out, sr)
	}
	rep.Kept = len(out)
	return out, rep, nil
}

func (p *Parser) record(rec []string, idx map[string]int, rep *Report) (model.SurveyRecord, bool) {
	rw := row{
		Date:         strings.TrimSpace(rec[idx[ColDate]]),
		Productivity: parseScore(rec[idx[model.ScoreProductivity]]),
		Vigor:        parseScore(rec[idx[model.ScoreVigor]]),
		Dedication:   parseScore(rec[idx[model.ScoreDedication]]),
		Absorption:   parseScore(rec[idx[model.ScoreAbsorption]]),
	}

	if err := p.validate.Struct(rw); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return model.SurveyRecord{}, false
		}
		for _, fe := range verrs {
			switch fe.Field() {
			case "Date":
				return model.SurveyRecord{}, false
			case model.ScoreProductivity:
				rw.Productivity = nil
			case model.ScoreVigor:
				rw.Vigor = nil
			case model.ScoreDedication:
				rw.Dedication = nil
			case model.ScoreAbsorption:
				rw.Absorption = nil
			}
			rep.Dropped[CellInvalidScore]++
		}
	}

	date, ok := ParseDate(rw.Date)
	if !ok {
		return model.SurveyRecord{}, false
	}
	return model.SurveyRecord{
		Date:         date,
		Productivity: value(rw.Productivity),
		Vigor:        value(rw.Vigor),
		Dedication:   value(rw.Dedication),
		Absorption:   value(rw.Absorption),
	}, true
}

// ParseDate reads a DD-MM-YYYY (or YYYY-MM-DD) date into canonical form.
func ParseDate(s string) (model.Date, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.DateOf(t), true
		}
	}
	return "", false
}

func parseScore(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return nil
	}
	return &f
}

func value(f *float64) model.Value {
	if f == nil {
		return model.Missing()
	}
	return model.Some(*f)
}

func resolveColumns(header []string) (map[string]int, error) {
	want := append([]string{ColDate}, model.Targets...)
	idx := make(map[string]int, len(want))
	for i, h := range header {
		h = strings.TrimSpace(h)
		for _, w := range want {
			if _, done := idx[w]; !done && strings.EqualFold(h, w) {
				idx[w] = i
			}
		}
	}
	var missing []string
	for _, w := range want {
		if _, ok := idx[w]; !ok {
			missing = append(missing, w)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %w: %s", ErrInputFormat, ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}
