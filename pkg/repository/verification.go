package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NefariousNiru/papertrail-go/pkg/apperr"
	"github.com/NefariousNiru/papertrail-go/pkg/kvstore"
	"github.com/NefariousNiru/papertrail-go/pkg/models"
)

func verificationKey(jobID, claimID string) string {
	return fmt.Sprintf("verify:%s:%s", jobID, claimID)
}

// VerificationRepository stores the per-(job, claim) verdict record produced
// by the verification pipeline (spec.md §4.3).
type VerificationRepository struct {
	store kvstore.Store
	ttl   time.Duration
}

// NewVerificationRepository creates a VerificationRepository with the given TTL.
func NewVerificationRepository(store kvstore.Store, ttl time.Duration) *VerificationRepository {
	return &VerificationRepository{store: store, ttl: ttl}
}

// Set writes result, refreshing TTL. Last write wins on repeat verification
// of the same claim.
func (r *VerificationRepository) Set(ctx context.Context, result models.Verification) error {
	b, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, verificationKey(result.JobID, result.ClaimID), b, r.ttl)
}

// Get returns the stored verification, or nil if none exists. A corrupt
// record returns apperr.ErrCorruptState so the caller can log and skip.
func (r *VerificationRepository) Get(ctx context.Context, jobID, claimID string) (*models.Verification, error) {
	b, err := r.store.Get(ctx, verificationKey(jobID, claimID))
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}
	var v models.Verification
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, apperr.ErrCorruptState
	}
	return &v, nil
}
