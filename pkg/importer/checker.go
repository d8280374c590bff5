package importer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const checkConcurrency = 4

// Checker periodically sends HEAD requests to every import source and
// records whether it is still reachable.
type Checker struct {
	sources  *SourceDB
	logger   *slog.Logger
	interval time.Duration
	client   *http.Client
}

// CheckSummary is the outcome of one CheckAll pass.
type CheckSummary struct {
	Total  int
	OK     int
	Failed []string // adapter IDs
}

func NewChecker(sources *SourceDB, logger *slog.Logger, interval time.Duration) *Checker {
	return &Checker{
		sources:  sources,
		logger:   logger,
		interval: interval,
		client: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Start checks immediately, then every interval until ctx is cancelled.
func (c *Checker) Start(ctx context.Context) {
	c.CheckAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.CheckAll(ctx)
		}
	}
}

type checkResult struct {
	src    Source
	status int
	err    error
}

// CheckAll checks every source URL, a few at a time, and persists each result.
func (c *Checker) CheckAll(ctx context.Context) CheckSummary {
	sources, err := c.sources.ListSources()
	if err != nil {
		c.logger.Error("source check: list sources", "error", err)
		return CheckSummary{}
	}

	results := make(chan checkResult, len(sources))
	sem := make(chan struct{}, checkConcurrency)
	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()
			status, err := c.checkOne(ctx, src.SourceURL)
			results <- checkResult{src: src, status: status, err: err}
		}()
	}
	wg.Wait()
	close(results)

	var sum CheckSummary
	for r := range results {
		sum.Total++
		errMsg := ""
		if r.err != nil {
			errMsg = r.err.Error()
		}
		if err := c.sources.UpdateCheck(r.src.AdapterID, r.status, errMsg); err != nil {
			c.logger.Error("source check: persist result", "adapter", r.src.AdapterID, "error", err)
		}

		if r.status >= 200 && r.status < 400 {
			sum.OK++
			continue
		}
		sum.Failed = append(sum.Failed, r.src.AdapterID)
		c.logger.Warn("source unreachable",
			"adapter", r.src.AdapterID,
			"dataset", r.src.DatasetID,
			"url", r.src.SourceURL,
			"status", r.status,
			"error", errMsg,
		)
	}

	if sum.Total > 0 {
		c.logger.Info("source check complete", "total", sum.Total, "ok", sum.OK, "failed", len(sum.Failed))
	}
	return sum
}

// checkOne returns the HEAD status code, or 0 on a transport error.
func (c *Checker) checkOne(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HEAD %s: %w", url, err)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
