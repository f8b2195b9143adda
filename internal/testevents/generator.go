package testevents

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/okian/workpulse/pkg/logger"
)

// Generated day shape.
const (
	dayStartHour     = 8
	startJitterMin   = 60
	minSessions      = 4
	sessionSpread    = 7
	maxSessionMin    = 40
	maxGapMin        = 15
	noTitleOneIn     = 10
	missingScoreOne  = 8
	minScore         = 1
	maxScore         = 7
	hoursPerScorePt  = 1.2
	generatedNoTitle = "NO_TITLE"
)

var generatedTitles = map[string][]string{
	"Microsoft Word":    {"thesis.docx", "report.docx", "notes.docx"},
	"Google Chrome":     {"Inbox - Mail", "Search", "Docs", "News"},
	"Adobe Acrobat":     {"paper.pdf", "invoice.pdf"},
	"Microsoft Excel":   {"budget.xlsx", "results.xlsx"},
	"Slack":             {"general", "team"},
	"Microsoft Outlook": {"Calendar", "Inbox"},
}

// generatedApps keeps the app order stable so a seed always yields the same pair.
var generatedApps = []string{
	"Microsoft Word",
	"Google Chrome",
	"Adobe Acrobat",
	"Microsoft Excel",
	"Slack",
	"Microsoft Outlook",
}

// Pair is one synthetic activity export and survey.
type Pair struct {
	Name      string
	Activity  []byte
	Survey    []byte
	Delimiter rune

	// JoinedDays counts the days with both activity and a Productivity score.
	JoinedDays int
}

// GeneratePair builds a deterministic pair covering days days from start.
// Productivity tracks the hours worked so the correlations are not noise.
// The survey carries one extra day without activity, and its delimiter
// differs from the export's on odd seeds.
func GeneratePair(seed uint64, days int, start time.Time, delim rune) (Pair, error) {
	if days < 1 {
		return Pair{}, fmt.Errorf("days must be positive, got %d", days)
	}
	if delim == 0 {
		delim = ','
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	surveyDelim := delim
	if seed%2 == 1 {
		surveyDelim = otherDelimiter(delim)
	}

	var act, sv bytes.Buffer
	aw := csv.NewWriter(&act)
	aw.Comma = delim
	sw := csv.NewWriter(&sv)
	sw.Comma = surveyDelim

	_ = aw.Write([]string{"App", "Type", "Title", "Begin", "End"})
	_ = sw.Write([]string{"Date", "Productivity", "Vigor", "Dedication", "Absorption"})

	joined := 0
	for d := 0; d < days; d++ {
		day := start.AddDate(0, 0, d)
		t := day.Add(dayStartHour*time.Hour + time.Duration(rng.IntN(startJitterMin))*time.Minute)
		worked := 0.0

		sessions := minSessions + rng.IntN(sessionSpread)
		for s := 0; s < sessions; s++ {
			app := generatedApps[rng.IntN(len(generatedApps))]
			titles := generatedTitles[app]
			title := titles[rng.IntN(len(titles))]
			// The first session always counts so every day has activity.
			if s > 0 && rng.IntN(noTitleOneIn) == 0 {
				title = generatedNoTitle
			}
			length := time.Duration(1+rng.IntN(maxSessionMin)) * time.Minute
			end := t.Add(length)
			_ = aw.Write([]string{app, "APP", title, t.Format(activityTimeLayout), end.Format(activityTimeLayout)})
			if title != generatedNoTitle {
				worked += length.Hours()
			}
			t = end.Add(time.Duration(rng.IntN(maxGapMin+1)) * time.Minute)
		}

		productivity := ""
		if rng.IntN(missingScoreOne) != 0 {
			productivity = strconv.Itoa(clampScore(minScore + worked*hoursPerScorePt + rng.NormFloat64()*0.5))
			joined++
		}
		_ = sw.Write(surveyRow(rng, day, productivity))
	}

	_ = sw.Write(surveyRow(rng, start.AddDate(0, 0, days), strconv.Itoa(minScore+rng.IntN(maxScore))))

	aw.Flush()
	sw.Flush()
	if err := aw.Error(); err != nil {
		return Pair{}, err
	}
	if err := sw.Error(); err != nil {
		return Pair{}, err
	}

	return Pair{
		Name:       "pair-" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(strconv.FormatUint(seed, 10))).String(),
		Activity:   act.Bytes(),
		Survey:     sv.Bytes(),
		Delimiter:  delim,
		JoinedDays: joined,
	}, nil
}

func surveyRow(rng *rand.Rand, day time.Time, productivity string) []string {
	score := func() string { return strconv.Itoa(minScore + rng.IntN(maxScore)) }
	return []string{day.Format(surveyDateLayout), productivity, score(), score(), score()}
}

func clampScore(f float64) int {
	return int(math.Round(math.Max(minScore, math.Min(maxScore, f))))
}

func otherDelimiter(d rune) rune {
	if d == ';' {
		return ','
	}
	return ';'
}

// generatePairs creates the configured number of pairs concurrently.
func generatePairs(ctx context.Context, config *Config, stats *Stats) ([]Pair, error) {
	logger.Get().Info(ctx, "generating dataset pairs",
		logger.Int("pairs", config.NumPairs),
		logger.Int("days", config.Days))

	pairs := make([]Pair, config.NumPairs)
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	type pairResult struct {
		index int
		pair  Pair
		err   error
	}
	resultChan := make(chan pairResult, config.NumPairs)

	workerCount := max(1, min(config.Workers, config.NumPairs))
	perWorker := config.NumPairs / workerCount

	for worker := 0; worker < workerCount; worker++ {
		from := worker * perWorker
		to := from + perWorker
		if worker == workerCount-1 {
			to = config.NumPairs
		}

		go func(from, to int) {
			for i := from; i < to; i++ {
				if err := ctx.Err(); err != nil {
					resultChan <- pairResult{index: i, err: err}
					continue
				}
				delim := ','
				if i%3 == 0 {
					delim = ';'
				}
				p, err := GeneratePair(config.Seed+uint64(i), config.Days, start, delim)
				resultChan <- pairResult{index: i, pair: p, err: err}
			}
		}(from, to)
	}

	for i := 0; i < config.NumPairs; i++ {
		result := <-resultChan
		if result.err != nil {
			return nil, fmt.Errorf("failed to generate pair %d: %w", result.index, result.err)
		}
		pairs[result.index] = result.pair
	}

	stats.PairsGenerated = len(pairs)
	logger.Get().Info(ctx, "generated pairs successfully", logger.Int("count", len(pairs)))
	return pairs, nil
}

// delimiterName is the form value the API accepts for d.
func delimiterName(d rune) string {
	if d == ';' {
		return "semicolon"
	}
	return "comma"
}
