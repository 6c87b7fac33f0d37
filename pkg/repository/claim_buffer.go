package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/NefariousNiru/papertrail-go/pkg/kvstore"
	"github.com/NefariousNiru/papertrail-go/pkg/models"
)

func claimBufferKey(jobID string) string { return fmt.Sprintf("claims:%s", jobID) }

// ClaimBufferRepository is the ordered per-job list of claim records used
// for reconnect-safe replay (spec.md §4.2).
type ClaimBufferRepository struct {
	store kvstore.Store
	ttl   time.Duration
	log   *slog.Logger
}

// NewClaimBufferRepository creates a ClaimBufferRepository with the given TTL.
func NewClaimBufferRepository(store kvstore.Store, ttl time.Duration, log *slog.Logger) *ClaimBufferRepository {
	if log == nil {
		log = slog.Default()
	}
	return &ClaimBufferRepository{store: store, ttl: ttl, log: log}
}

// Append adds claim to the tail of the buffer, refreshing TTL. Invariant (i)
// of spec.md §3 requires this to complete before the claim is emitted.
func (r *ClaimBufferRepository) Append(ctx context.Context, jobID string, claim models.Claim) error {
	b, err := json.Marshal(claim)
	if err != nil {
		return err
	}
	return r.store.RPush(ctx, claimBufferKey(jobID), b, r.ttl)
}

// All returns every buffered claim in insertion order, skipping malformed
// entries with a warning log rather than failing (spec.md §4.2).
func (r *ClaimBufferRepository) All(ctx context.Context, jobID string) ([]models.Claim, error) {
	raw, err := r.store.LRange(ctx, claimBufferKey(jobID))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	claims := make([]models.Claim, 0, len(raw))
	for _, item := range raw {
		var c models.Claim
		if err := json.Unmarshal(item, &c); err != nil {
			r.log.Warn("skipping malformed buffered claim", "job_id", jobID, "error", err)
			continue
		}
		claims = append(claims, c)
	}
	return claims, nil
}

// Clear deletes the buffer entirely.
func (r *ClaimBufferRepository) Clear(ctx context.Context, jobID string) error {
	_, err := r.store.Del(ctx, claimBufferKey(jobID))
	return err
}

// Touch refreshes the buffer's TTL without modifying its contents.
func (r *ClaimBufferRepository) Touch(ctx context.Context, jobID string) error {
	_, err := r.store.Expire(ctx, claimBufferKey(jobID), r.ttl)
	return err
}
