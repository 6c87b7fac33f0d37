// Package repository adapts the KV Store Adapter (pkg/kvstore) into the four
// domain repositories of spec.md §4.1–§4.4: Job, Claim Buffer, Verification,
// and Blob. Grounded on original_source/repository/job_repository.py's
// hash-of-strings shape, ported to Go's explicit error returns.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/NefariousNiru/papertrail-go/pkg/kvstore"
	"github.com/NefariousNiru/papertrail-go/pkg/models"
)

func jobKey(id string) string { return fmt.Sprintf("jobs:%s", id) }

// JobRepository stores job identity, status, and the latest phase/progress
// snapshot (spec.md §4.1).
type JobRepository struct {
	store kvstore.Store
	ttl   time.Duration
	log   *slog.Logger
}

// NewJobRepository creates a JobRepository with the given TTL.
func NewJobRepository(store kvstore.Store, ttl time.Duration, log *slog.Logger) *JobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &JobRepository{store: store, ttl: ttl, log: log}
}

// Create allocates a new job with status "streaming" and zeroed progress.
func (r *JobRepository) Create(ctx context.Context) (*models.Job, error) {
	job := &models.Job{
		ID:        uuid.NewString(),
		Status:    models.JobStreaming,
		Phase:     models.PhaseParse,
		Processed: 0,
		Total:     0,
	}
	if err := r.Put(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Put writes the full job record, refreshing TTL.
func (r *JobRepository) Put(ctx context.Context, job *models.Job) error {
	fields := map[string]string{
		"id":                job.ID,
		"status":            string(job.Status),
		"phase":             string(job.Phase),
		"processed":         strconv.Itoa(job.Processed),
		"total":             strconv.Itoa(job.Total),
		"progress_processed": strconv.Itoa(job.Processed),
		"progress_total":      strconv.Itoa(job.Total),
		"progress_ts":         strconv.FormatInt(job.TS, 10),
	}
	return r.store.HSet(ctx, jobKey(job.ID), fields, r.ttl)
}

// Get returns the job, or nil if unknown or its fields are corrupt.
// Unknown and corrupt states never raise, per spec.md §4.1.
func (r *JobRepository) Get(ctx context.Context, jobID string) (*models.Job, error) {
	if jobID == "" {
		return nil, nil
	}
	h, err := r.store.HGetAll(ctx, jobKey(jobID))
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, nil
	}

	processed, err1 := strconv.Atoi(h["processed"])
	total, err2 := strconv.Atoi(h["total"])
	ts, err3 := strconv.ParseInt(h["progress_ts"], 10, 64)
	if err1 != nil || err2 != nil {
		r.log.Warn("corrupt job record", "job_id", jobID)
		return nil, nil
	}
	if err3 != nil {
		ts = 0
	}

	return &models.Job{
		ID:        h["id"],
		Status:    models.JobStatus(h["status"]),
		Phase:     models.Phase(h["phase"]),
		Processed: processed,
		Total:     total,
		TS:        ts,
	}, nil
}

// SavePhaseProgress updates the phase-qualified progress fields and the
// top-level processed/total mirror, refreshing TTL (spec.md §4.1).
func (r *JobRepository) SavePhaseProgress(ctx context.Context, jobID string, phase models.Phase, processed, total int, ts int64) error {
	fields := map[string]string{
		"phase":               string(phase),
		"processed":           strconv.Itoa(processed),
		"total":               strconv.Itoa(total),
		"progress_processed": strconv.Itoa(processed),
		"progress_total":      strconv.Itoa(total),
		"progress_ts":         strconv.FormatInt(ts, 10),
	}
	return r.store.HSet(ctx, jobKey(jobID), fields, r.ttl)
}

// SetStatus updates only the status field, refreshing TTL.
func (r *JobRepository) SetStatus(ctx context.Context, jobID string, status models.JobStatus) error {
	return r.store.HSet(ctx, jobKey(jobID), map[string]string{"status": string(status)}, r.ttl)
}

// GetProgressSnapshot returns the job's current snapshot, or nil unless
// total > 0 and a phase is set (spec.md §4.1).
func (r *JobRepository) GetProgressSnapshot(ctx context.Context, jobID string) (*models.ProgressSnapshot, error) {
	job, err := r.Get(ctx, jobID)
	if err != nil || job == nil {
		return nil, err
	}
	if job.Total <= 0 || job.Phase == "" {
		return nil, nil
	}
	return &models.ProgressSnapshot{
		Phase:     job.Phase,
		Processed: job.Processed,
		Total:     job.Total,
		TS:        job.TS,
	}, nil
}

// Touch refreshes the job's TTL without changing its fields.
func (r *JobRepository) Touch(ctx context.Context, jobID string) error {
	_, err := r.store.Expire(ctx, jobKey(jobID), r.ttl)
	return err
}

// Delete removes the job record.
func (r *JobRepository) Delete(ctx context.Context, jobID string) error {
	_, err := r.store.Del(ctx, jobKey(jobID))
	return err
}
