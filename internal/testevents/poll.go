package testevents

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/pkg/logger"
)

// collectResults waits for every acknowledged analysis to finish and then
// fetches its day table and correlations.
func collectResults(ctx context.Context, config *Config, results []Result, stats *Stats) {
	log := logger.Get().Named("poll")
	log.Info(ctx, "waiting for analyses", logger.Int("pairs", len(results)))

	client := newHTTPClient(config)

	var done int64
	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range indexChan {
				res := &results[index]
				if res.Err != nil || res.Ack.ID == "" {
					continue
				}
				if err := collectSingle(ctx, client, config, res); err != nil {
					res.Err = err
					if config.Verbose {
						log.Warn(ctx, "analysis not collected", logger.String("id", res.Ack.ID), logger.Error(err))
					}
					continue
				}
				atomic.AddInt64(&done, 1)
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := range results {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()
	stats.PairsDone = int(atomic.LoadInt64(&done))
	log.Info(ctx, "analyses collected", logger.Int("done", stats.PairsDone))
}

// collectSingle polls one analysis until it is terminal.
func collectSingle(ctx context.Context, client *HTTPClient, config *Config, res *Result) error {
	base := config.BaseURL + "/analyses/" + res.Ack.ID

	ticker := time.NewTicker(config.PollInterval)
	defer ticker.Stop()
	for {
		if err := client.GetJSON(ctx, base, &res.Status); err != nil {
			return err
		}
		if res.Status.Status.Terminal() {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	if res.Status.Status != model.StatusDone {
		return fmt.Errorf("analysis %s %s: %s", res.Ack.ID, res.Status.Status, res.Status.Error)
	}

	res.Table = &model.Table{}
	if err := client.GetJSON(ctx, base+"/days", res.Table); err != nil {
		return err
	}
	res.Correlations = &Correlations{}
	return client.GetJSON(ctx, base+"/correlations", res.Correlations)
}
