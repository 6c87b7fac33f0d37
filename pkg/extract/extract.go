// Package extract is the Extraction Worker Pool (spec.md §4.6): a bounded
// concurrency pool that calls the LLM once per page, parses its NDJSON
// output into claims, and swallows per-page failures so one bad page never
// fails the job. Grounded on teacher's pkg/queue/pool.go and worker.go for
// the bounded-concurrency/jittered-retry idiom, and on
// original_source/core/streaming.py's per-page claim defaulting.
package extract

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/NefariousNiru/papertrail-go/pkg/metrics"
	"github.com/NefariousNiru/papertrail-go/pkg/models"
)

const (
	maxClaimsPerPage = 8
	maxClaimTextLen  = 280
	maxAttempts      = 3
	baseBackoff      = 200 * time.Millisecond
)

// Caller is the page-level LLM transport the pool drives (implemented by
// *llm.Client). Isolated as an interface so the pool can be tested without a
// network dependency.
type Caller interface {
	ExtractPage(ctx context.Context, apiKey string, pageNumber int, pageText string) (string, error)
}

// PageResult is the outcome of extracting one page, delivered to the caller
// in completion order (spec.md §4.6: "emission order follows completion,
// not page number").
type PageResult struct {
	PageNumber int
	Claims     []models.Claim
}

// Run drives the pool over pages with up to concurrency calls in flight at
// once, sending one PageResult per page to the returned channel as each
// completes. The channel is closed once every page has been processed or
// ctx is cancelled.
func Run(ctx context.Context, caller Caller, apiKey string, pages []models.Page, concurrency int, log *slog.Logger) <-chan PageResult {
	if log == nil {
		log = slog.Default()
	}
	if concurrency < 1 {
		concurrency = 1
	}

	out := make(chan PageResult, len(pages))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, page := range pages {
		page := page
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			claims := extractPageWithRetry(ctx, caller, apiKey, page, log)
			select {
			case out <- PageResult{PageNumber: page.Number, Claims: claims}:
			case <-ctx.Done():
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// extractPageWithRetry calls the LLM for one page up to maxAttempts times
// with independently jittered exponential backoff, swallowing the error and
// returning zero claims if every attempt fails (spec.md §4.6).
func extractPageWithRetry(ctx context.Context, caller Caller, apiKey string, page models.Page, log *slog.Logger) []models.Claim {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(jitteredBackoff(attempt)):
			case <-ctx.Done():
				return nil
			}
		}

		body, err := caller.ExtractPage(ctx, apiKey, page.Number, page.Text)
		if err == nil {
			claims := parseClaims(page.Number, body, log)
			metrics.ExtractionPagesTotal.WithLabelValues("ok").Inc()
			for _, c := range claims {
				metrics.ExtractionClaimsTotal.WithLabelValues(string(c.Status)).Inc()
			}
			return claims
		}
		lastErr = err
	}

	metrics.ExtractionPagesTotal.WithLabelValues("failed").Inc()
	log.Warn("page extraction failed after retries", "page", page.Number, "error", lastErr)
	return nil
}

// jitteredBackoff returns 200ms * 2^attempt, jittered independently in
// [0.5x, 1.5x) so concurrent pages don't retry in lockstep.
func jitteredBackoff(attempt int) time.Duration {
	base := baseBackoff * time.Duration(1<<uint(attempt))
	half := base / 2
	offset := time.Duration(rand.Int64N(int64(base)))
	return half + offset
}

// parseClaims decodes an NDJSON body into at most maxClaimsPerPage claims,
// defaulting id/status and truncating text per spec.md §4.6. Lines that fail
// to parse, or that decode to an empty trimmed text, are skipped without
// failing the page.
func parseClaims(pageNumber int, body string, log *slog.Logger) []models.Claim {
	if log == nil {
		log = slog.Default()
	}
	scanner := bufio.NewScanner(strings.NewReader(body))
	var claims []models.Claim
	n := 0

	for scanner.Scan() {
		if len(claims) >= maxClaimsPerPage {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var raw struct {
			ID     string `json:"id"`
			Text   string `json:"text"`
			Status string `json:"status"`
		}
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			log.Warn("skipping malformed extraction line", "page", pageNumber, "error", err)
			continue
		}

		text := strings.TrimSpace(raw.Text)
		if text == "" {
			continue
		}
		n++

		id := raw.ID
		if id == "" {
			id = "p" + strconv.Itoa(pageNumber) + "_" + strconv.Itoa(n)
		}

		status := models.ClaimStatus(raw.Status)
		switch status {
		case models.StatusCited, models.StatusWeaklyCited, models.StatusUncited:
		default:
			status = models.StatusUncited
		}

		claims = append(claims, models.Claim{
			ID:     id,
			Text:   truncateAtWordBoundary(text, maxClaimTextLen),
			Status: status,
		})
	}

	return claims
}

// truncateAtWordBoundary shortens s to at most max characters, backing up to
// the last space within the limit rather than splitting mid-word.
func truncateAtWordBoundary(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := strings.LastIndex(s[:max], " ")
	if cut <= 0 {
		cut = max
	}
	return strings.TrimSpace(s[:cut])
}
