package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// CheckResult summarises one CheckAll pass.
type CheckResult struct {
	Total  int
	OK     int
	Failed int
}

// Checker performs periodic HEAD requests against all catalog sources and
// records their availability.
type Checker struct {
	sources  *SourceDB
	logger   *slog.Logger
	interval time.Duration
	client   *http.Client
}

// NewChecker creates a Checker that will verify source URLs every interval.
func NewChecker(sources *SourceDB, logger *slog.Logger, interval time.Duration) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
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

// Start runs an immediate check then repeats every interval until ctx is
// cancelled. A zero interval checks once.
func (c *Checker) Start(ctx context.Context) {
	c.CheckAll(ctx)
	if c.interval <= 0 {
		return
	}

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

// CheckAll performs a HEAD request on every source URL and persists the
// result. 2xx and 3xx count as available.
func (c *Checker) CheckAll(ctx context.Context) CheckResult {
	var res CheckResult
	srcs, err := c.sources.List()
	if err != nil {
		c.logger.Error("source check: list sources", "error", err)
		return res
	}

	for _, src := range srcs {
		if ctx.Err() != nil {
			return res
		}

		status, checkErr := c.checkOne(ctx, src.URL)
		errMsg := ""
		if checkErr != nil {
			errMsg = checkErr.Error()
		}

		if err := c.sources.UpdateCheck(src.Name, status, errMsg); err != nil {
			c.logger.Error("source check: update", "source", src.Name, "error", err)
		}

		res.Total++
		if status >= 200 && status < 400 {
			res.OK++
		} else {
			res.Failed++
			c.logger.Warn("source unavailable",
				"source", src.Name,
				"url", src.URL,
				"status", status,
				"error", errMsg,
			)
		}
	}

	if res.Total > 0 {
		c.logger.Info("source check complete", "total", res.Total, "ok", res.OK, "failed", res.Failed)
	}
	return res
}

// checkOne performs a single HEAD request and returns the HTTP status code.
// On network error, status is 0.
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
