package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/NefariousNiru/papertrail-go/pkg/kvstore"
)

func blobKey(jobID string) string { return fmt.Sprintf("blob:%s", jobID) }

// BlobRepository stores the raw uploaded PDF bytes for a job, opaquely and
// subject to MAX_FILE_MB enforced at the HTTP boundary (spec.md §4.4).
type BlobRepository struct {
	store kvstore.Store
	ttl   time.Duration
}

// NewBlobRepository creates a BlobRepository with the given TTL.
func NewBlobRepository(store kvstore.Store, ttl time.Duration) *BlobRepository {
	return &BlobRepository{store: store, ttl: ttl}
}

// PutPDF stores the bytes under the job's blob key, refreshing TTL.
func (r *BlobRepository) PutPDF(ctx context.Context, jobID string, data []byte) error {
	return r.store.Set(ctx, blobKey(jobID), data, r.ttl)
}

// GetPDF returns the stored bytes, or nil if none exist.
func (r *BlobRepository) GetPDF(ctx context.Context, jobID string) ([]byte, error) {
	return r.store.Get(ctx, blobKey(jobID))
}
