package testevents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/okian/workpulse/pkg/logger"
)

// Submission outcomes.
const (
	outcomeAccepted  = "accepted"
	outcomeDuplicate = "duplicate"
	outcomeFailed    = "failed"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client.
func newHTTPClient(config *Config) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: config.Timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// GetJSON performs a GET request and decodes a 200 response into v.
func (c *HTTPClient) GetJSON(ctx context.Context, url string, v any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("GET %s: status %d: %s", url, resp.StatusCode, bytes.TrimSpace(body))
	}
	return json.Unmarshal(body, v)
}

// PostPair uploads a pair as the multipart form POST /analyses expects.
func (c *HTTPClient) PostPair(ctx context.Context, url string, pair Pair) (*http.Response, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, data := range map[string][]byte{"activity": pair.Activity, "survey": pair.Survey} {
		fw, err := mw.CreateFormFile(field, pair.Name+"-"+field+".csv")
		if err != nil {
			return nil, fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := fw.Write(data); err != nil {
			return nil, fmt.Errorf("failed to write form file: %w", err)
		}
	}
	if err := mw.WriteField("delimiter", delimiterName(pair.Delimiter)); err != nil {
		return nil, fmt.Errorf("failed to write delimiter: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// submitPairs uploads pairs concurrently and records each acknowledgement
// on results.
func submitPairs(ctx context.Context, config *Config, results []Result, stats *Stats) {
	log := logger.Get().Named("submit")
	log.Info(ctx, "submitting pairs", logger.Int("pairs", len(results)), logger.Int("workers", config.Workers))

	client := newHTTPClient(config)
	url := config.BaseURL + "/analyses"

	var accepted, duplicate, failed, submitted int64

	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range indexChan {
				if ctx.Err() != nil {
					return
				}
				res := &results[index]
				outcome := submitSinglePair(ctx, client, url, res)
				atomic.AddInt64(&submitted, 1)
				switch outcome {
				case outcomeAccepted:
					atomic.AddInt64(&accepted, 1)
				case outcomeDuplicate:
					atomic.AddInt64(&duplicate, 1)
				default:
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Warn(ctx, "submission failed", logger.String("pair", res.Pair.Name), logger.Error(res.Err))
					}
				}
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

	stats.PairsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.PairsAccepted = int(atomic.LoadInt64(&accepted))
	stats.PairsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.PairsFailed = int(atomic.LoadInt64(&failed))

	log.Info(ctx, "pair submission completed",
		logger.Int("accepted", stats.PairsAccepted),
		logger.Int("duplicate", stats.PairsDuplicate),
		logger.Int("failed", stats.PairsFailed))
}

// submitSinglePair submits one pair and returns its outcome.
func submitSinglePair(ctx context.Context, client *HTTPClient, url string, res *Result) string {
	resp, err := client.PostPair(ctx, url, res.Pair)
	if err != nil {
		res.Err = err
		return outcomeFailed
	}
	body, err := readResponseBody(resp)
	if err != nil {
		res.Err = err
		return outcomeFailed
	}

	switch resp.StatusCode {
	case StatusAccepted, StatusOK:
		if err := json.Unmarshal(body, &res.Ack); err != nil {
			res.Err = fmt.Errorf("invalid ack: %w", err)
			return outcomeFailed
		}
		if res.Ack.Duplicate {
			return outcomeDuplicate
		}
		return outcomeAccepted
	default:
		res.Err = fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
		return outcomeFailed
	}
}
