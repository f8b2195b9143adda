package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/workpulse/internal/testevents"
)

// Default configuration constants.
const (
	defaultNumPairs    = 50
	defaultDays        = 30
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numPairs  = flag.Int("pairs", defaultNumPairs, "Number of dataset pairs to generate and submit")
		days      = flag.Int("days", defaultDays, "Days covered by each pair")
		seed      = flag.Uint64("seed", 1, "Seed of the first pair")
		workers   = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputDir = flag.String("output", "", "Directory to write the generated pairs to")
		logFile   = flag.String("log", "", "Log file for test output (default: test_log_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testevents.ShowHelp(os.Stdout)
		return
	}

	config := &testevents.Config{
		BaseURL:   *baseURL,
		NumPairs:  *numPairs,
		Days:      *days,
		Seed:      *seed,
		Workers:   *workers,
		Timeout:   *timeout,
		OutputDir: *outputDir,
		LogFile:   *logFile,
		Verbose:   *verbose,
	}

	if err := run(config); err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(config *testevents.Config) error {
	closer, err := testevents.SetupLogging(config.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	return testevents.Run(ctx, config)
}
