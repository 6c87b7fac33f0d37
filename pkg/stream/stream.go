// Package stream implements the Stream Orchestrator (spec.md §4.7) — the
// pipeline's heart: a reconnect-tolerant state machine that replays buffered
// claims, then resumes concurrent page extraction, emitting NDJSON events
// with monotonic phase/progress semantics. Grounded on
// original_source/core/streaming.py and service/paper_service.py for the
// state sequence, and on teacher's pkg/events/manager.go for the
// catchup-then-live shape (there: WebSocket push with a DB replay; here:
// HTTP pull with a KV-store replay).
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/NefariousNiru/papertrail-go/pkg/extract"
	"github.com/NefariousNiru/papertrail-go/pkg/metrics"
	"github.com/NefariousNiru/papertrail-go/pkg/models"
	"github.com/NefariousNiru/papertrail-go/pkg/pdftext"
	"github.com/NefariousNiru/papertrail-go/pkg/repository"
)

// nowFunc is overridable in tests for deterministic timestamps.
var nowFunc = func() int64 { return time.Now().Unix() }

// extractPagesFunc is overridable in tests to avoid needing a real PDF.
var extractPagesFunc = pdftext.ExtractPages

// Orchestrator drives one job's claim stream over the four repositories and
// the Extraction Worker Pool.
type Orchestrator struct {
	jobs          *repository.JobRepository
	buffer        *repository.ClaimBufferRepository
	verifications *repository.VerificationRepository
	blobs         *repository.BlobRepository
	caller        extract.Caller
	concurrency   int
	log           *slog.Logger
}

// New creates an Orchestrator. caller is the LLM transport the Extraction
// Worker Pool calls once per page.
func New(
	jobs *repository.JobRepository,
	buffer *repository.ClaimBufferRepository,
	verifications *repository.VerificationRepository,
	blobs *repository.BlobRepository,
	caller extract.Caller,
	concurrency int,
	log *slog.Logger,
) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		jobs: jobs, buffer: buffer, verifications: verifications, blobs: blobs,
		caller: caller, concurrency: concurrency, log: log,
	}
}

// Stream returns a channel of NDJSON-encoded event lines (LF-terminated
// compact JSON) for jobID, terminating with a "done" event. The channel is
// closed once the sequence ends; the caller drains it and flushes the
// connection after each line. Because this single goroutine is the only
// writer to the channel, it alone serializes emission for the connection —
// the equivalent of spec.md's emission mutex, without an explicit lock.
func (o *Orchestrator) Stream(ctx context.Context, jobID, apiKey string) <-chan []byte {
	out := make(chan []byte, 8)
	go func() {
		defer close(out)
		o.run(ctx, jobID, apiKey, out)
		if ctx.Err() != nil {
			metrics.StreamConnectionsTotal.WithLabelValues("client_disconnect").Inc()
		} else {
			metrics.StreamConnectionsTotal.WithLabelValues("done").Inc()
		}
	}()
	return out
}

func (o *Orchestrator) run(ctx context.Context, jobID, apiKey string, out chan<- []byte) {
	emit := func(evt models.StreamEvent) bool {
		line, err := json.Marshal(evt)
		if err != nil {
			return true
		}
		line = append(line, '\n')
		select {
		case out <- line:
			return true
		case <-ctx.Done():
			return false
		}
	}

	// S0 — resolve job.
	job, err := o.jobs.Get(ctx, jobID)
	if err != nil || job == nil {
		emit(models.ErrorEvent("Unknown or expired jobId"))
		emit(models.DoneEvent())
		return
	}

	// S1 — emit snapshot, exactly once, even on reconnect.
	snap, err := o.jobs.GetProgressSnapshot(ctx, jobID)
	if err == nil && snap != nil && snap.Total > 0 {
		if !emit(models.ProgressEvent(snap.Phase, snap.Processed, snap.Total, snap.TS)) {
			return
		}
	}

	// S2 — replay buffered claims.
	buffered, err := o.buffer.All(ctx, jobID)
	if err != nil {
		buffered = nil
	}
	skip := make(map[string]struct{}, len(buffered))
	for _, c := range buffered {
		skip[c.ID] = struct{}{}
		_ = o.buffer.Touch(ctx, jobID)
		merged := o.overlay(ctx, jobID, c)
		if !emit(models.ClaimEvent(merged)) {
			return
		}
	}

	// S3 — terminal short-circuit.
	if job.Status == models.JobFinished {
		emit(models.DoneEvent())
		return
	}

	// S4 — re-parse pages.
	data, err := o.blobs.GetPDF(ctx, jobID)
	if err != nil || data == nil {
		emit(models.DoneEvent())
		return
	}
	pages := extractPagesFunc(data)
	if len(pages) == 0 {
		emit(models.DoneEvent())
		return
	}

	// S5 — resume extraction.
	total := len(pages)
	emitParse := snap == nil || snap.Phase != models.PhaseExtract
	extractStart := 0
	if snap != nil && snap.Phase == models.PhaseExtract {
		extractStart = snap.Processed
	}

	if emitParse {
		for i := 0; i <= total; i++ {
			ts := nowFunc()
			if err := o.jobs.SavePhaseProgress(ctx, jobID, models.PhaseParse, i, total, ts); err != nil {
				o.log.Warn("failed to persist parse progress", "job_id", jobID, "error", err)
			}
			if !emit(models.ProgressEvent(models.PhaseParse, i, total, ts)) {
				return
			}
		}
	}

	results := extract.Run(ctx, o.caller, apiKey, pages, o.concurrency, o.log)
	finished := extractStart
	for res := range results {
		if err := o.jobs.Touch(ctx, jobID); err != nil {
			o.log.Warn("failed to touch job ttl", "job_id", jobID, "error", err)
		}
		for _, c := range res.Claims {
			if _, skipped := skip[c.ID]; skipped {
				continue
			}
			if err := o.buffer.Append(ctx, jobID, c); err != nil {
				o.log.Warn("failed to append claim to buffer", "job_id", jobID, "error", err)
				continue
			}
			merged := o.overlay(ctx, jobID, c)
			if !emit(models.ClaimEvent(merged)) {
				return
			}
		}

		finished++
		ts := nowFunc()
		if err := o.jobs.SavePhaseProgress(ctx, jobID, models.PhaseExtract, finished, total, ts); err != nil {
			o.log.Warn("failed to persist extract progress", "job_id", jobID, "error", err)
		}
		if !emit(models.ProgressEvent(models.PhaseExtract, finished, total, ts)) {
			return
		}
	}

	if err := o.jobs.SetStatus(ctx, jobID, models.JobFinished); err != nil {
		o.log.Warn("failed to finalize job status", "job_id", jobID, "error", err)
	}
	emit(models.DoneEvent())
}

// overlay merges any stored verification onto claim for emission, leaving
// the buffered copy untouched (spec.md invariant (iv)).
func (o *Orchestrator) overlay(ctx context.Context, jobID string, claim models.Claim) models.Claim {
	v, err := o.verifications.Get(ctx, jobID, claim.ID)
	if err != nil || v == nil {
		return claim
	}
	return v.Overlay(claim)
}
