package testevents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/workpulse/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run executes the complete load test: generate pairs, submit them, wait
// for the analyses and verify the results.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.Workers < 1 {
		config.Workers = 1
	}

	logger.Get().Info(ctx, "starting workpulse load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("pairs", config.NumPairs),
		logger.Int("days", config.Days),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("logFile", config.LogFile),
		logger.Bool("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate pairs
	pairs, err := generatePairs(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("pair generation failed: %w", err)
	}
	results := make([]Result, len(pairs))
	for i, p := range pairs {
		results[i].Pair = p
	}

	// Step 3: Submit pairs concurrently
	submitPairs(ctx, config, results, stats)

	// Step 4: Wait for the analyses and fetch their tables
	collectResults(ctx, config, results, stats)

	// Step 5: Verify results
	verifyErr := verifyResults(ctx, config, results, stats)

	// Step 6: Save pairs for replay
	if config.OutputDir != "" {
		if err := savePairs(ctx, config.OutputDir, pairs); err != nil {
			logger.Get().Warn(ctx, "failed to save pairs", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if verifyErr != nil {
		return fmt.Errorf("result verification failed: %w", verifyErr)
	}
	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	_, _ = readResponseBody(resp)

	// The endpoint serves Prometheus metrics; any 200 is healthy.
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// savePairs writes every pair as <name>-activity.csv and <name>-survey.csv.
func savePairs(ctx context.Context, dir string, pairs []Pair) error {
	if err := os.MkdirAll(dir, directoryPermission); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	for _, p := range pairs {
		if err := WritePair(dir, p); err != nil {
			return err
		}
	}
	logger.Get().Info(ctx, "pairs saved", logger.String("dir", dir), logger.Int("count", len(pairs)))
	return nil
}

// WritePair writes p into dir and returns the first error.
func WritePair(dir string, p Pair) error {
	files := map[string][]byte{
		p.Name + "-activity.csv": p.Activity,
		p.Name + "-survey.csv":   p.Survey,
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, filePermission); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, pairsPerSecond float64

	if stats.PairsSubmitted > 0 {
		successRate = float64(stats.PairsVerified) / float64(stats.PairsSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		pairsPerSecond = float64(stats.PairsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("pairsGenerated", stats.PairsGenerated),
		logger.Int("pairsSubmitted", stats.PairsSubmitted),
		logger.Int("pairsAccepted", stats.PairsAccepted),
		logger.Int("pairsDuplicate", stats.PairsDuplicate),
		logger.Int("pairsFailed", stats.PairsFailed),
		logger.Int("pairsDone", stats.PairsDone),
		logger.Int("pairsVerified", stats.PairsVerified),
		logger.Int("violations", stats.Violations),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("pairsPerSecond", pairsPerSecond))
}
