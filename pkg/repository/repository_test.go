package repository

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/NefariousNiru/papertrail-go/pkg/kvstore"
	"github.com/NefariousNiru/papertrail-go/pkg/models"
)

func newTestStore(t *testing.T) kvstore.Store {
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	return kvstore.New(client)
}

func TestJobRepositoryCreateGet(t *testing.T) {
	store := newTestStore(t)
	repo := NewJobRepository(store, time.Hour, nil)
	ctx := context.Background()

	job, err := repo.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)
	require.Equal(t, models.JobStreaming, job.Status)
	require.Equal(t, models.PhaseParse, job.Phase)

	got, err := repo.Get(ctx, job.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, job.ID, got.ID)
	require.Equal(t, models.JobStreaming, got.Status)
}

func TestJobRepositoryGetUnknownReturnsNil(t *testing.T) {
	store := newTestStore(t)
	repo := NewJobRepository(store, time.Hour, nil)

	got, err := repo.Get(context.Background(), "does-not-exist")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestJobRepositorySavePhaseProgressMonotonic(t *testing.T) {
	store := newTestStore(t)
	repo := NewJobRepository(store, time.Hour, nil)
	ctx := context.Background()

	job, err := repo.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.SavePhaseProgress(ctx, job.ID, models.PhaseParse, 2, 10, 100))
	snap, err := repo.GetProgressSnapshot(ctx, job.ID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Equal(t, models.PhaseParse, snap.Phase)
	require.Equal(t, 2, snap.Processed)
	require.Equal(t, 10, snap.Total)

	require.NoError(t, repo.SavePhaseProgress(ctx, job.ID, models.PhaseExtract, 5, 10, 200))
	snap, err = repo.GetProgressSnapshot(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, models.PhaseExtract, snap.Phase)
	require.Equal(t, 5, snap.Processed)
}

func TestJobRepositoryProgressSnapshotNilWithoutTotal(t *testing.T) {
	store := newTestStore(t)
	repo := NewJobRepository(store, time.Hour, nil)
	ctx := context.Background()

	job, err := repo.Create(ctx)
	require.NoError(t, err)

	snap, err := repo.GetProgressSnapshot(ctx, job.ID)
	require.NoError(t, err)
	require.Nil(t, snap)
}

func TestClaimBufferAppendAllPreservesOrder(t *testing.T) {
	store := newTestStore(t)
	repo := NewClaimBufferRepository(store, time.Hour, nil)
	ctx := context.Background()

	for _, id := range []string{"p1_0", "p1_1", "p2_0"} {
		require.NoError(t, repo.Append(ctx, "job1", models.Claim{ID: id, Text: "x", Status: models.StatusCited}))
	}

	claims, err := repo.All(ctx, "job1")
	require.NoError(t, err)
	require.Len(t, claims, 3)
	require.Equal(t, "p1_0", claims[0].ID)
	require.Equal(t, "p1_1", claims[1].ID)
	require.Equal(t, "p2_0", claims[2].ID)
}

func TestClaimBufferAllOnEmptyJobReturnsNil(t *testing.T) {
	store := newTestStore(t)
	repo := NewClaimBufferRepository(store, time.Hour, nil)

	claims, err := repo.All(context.Background(), "no-such-job")
	require.NoError(t, err)
	require.Nil(t, claims)
}

func TestClaimBufferSkipsMalformedEntries(t *testing.T) {
	store := newTestStore(t)
	repo := NewClaimBufferRepository(store, time.Hour, nil)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, "job1", models.Claim{ID: "p1_0", Text: "ok", Status: models.StatusCited}))
	require.NoError(t, store.RPush(ctx, claimBufferKey("job1"), []byte("not json"), time.Hour))
	require.NoError(t, repo.Append(ctx, "job1", models.Claim{ID: "p1_1", Text: "ok2", Status: models.StatusCited}))

	claims, err := repo.All(ctx, "job1")
	require.NoError(t, err)
	require.Len(t, claims, 2)
	require.Equal(t, "p1_0", claims[0].ID)
	require.Equal(t, "p1_1", claims[1].ID)
}

func TestVerificationSetGetLastWriteWins(t *testing.T) {
	store := newTestStore(t)
	repo := NewVerificationRepository(store, time.Hour)
	ctx := context.Background()

	first := models.Verification{JobID: "job1", ClaimID: "c1", Verdict: models.VerdictUnsupported, Confidence: 0.2}
	require.NoError(t, repo.Set(ctx, first))

	second := models.Verification{JobID: "job1", ClaimID: "c1", Verdict: models.VerdictSupported, Confidence: 0.9}
	require.NoError(t, repo.Set(ctx, second))

	got, err := repo.Get(ctx, "job1", "c1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, models.VerdictSupported, got.Verdict)
	require.Equal(t, 0.9, got.Confidence)
}

func TestVerificationGetMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)
	repo := NewVerificationRepository(store, time.Hour)

	got, err := repo.Get(context.Background(), "job1", "missing")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestBlobPutGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	repo := NewBlobRepository(store, time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.PutPDF(ctx, "job1", []byte("%PDF-1.4 body")))

	got, err := repo.GetPDF(ctx, "job1")
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF-1.4 body"), got)
}

func TestBlobGetMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)
	repo := NewBlobRepository(store, time.Hour)

	got, err := repo.GetPDF(context.Background(), "no-such-job")
	require.NoError(t, err)
	require.Nil(t, got)
}
