package bidding

import (
	"context"
	"sync"
	"testing"

	"skillchain/apperrors"
	"skillchain/database/dbtest"
	jobModels "skillchain/models/job"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceBid(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.SeedJob(t, db, "j1", "client")
	svc := NewService(db)

	bid, err := svc.PlaceBid(context.Background(), BidRequest{JobID: "j1", FreelancerID: "f1", Amount: 40000, Proposal: "I can do it"})
	require.NoError(t, err)
	assert.NotEmpty(t, bid.ID)

	var job jobModels.Job
	require.NoError(t, db.First(&job, "id = ?", "j1").Error)
	assert.EqualValues(t, 1, job.BidCount)
}

func TestSecondBidIsRejected(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.SeedJob(t, db, "j1", "client")
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.PlaceBid(ctx, BidRequest{JobID: "j1", FreelancerID: "f1", Amount: 40000})
	require.NoError(t, err)

	_, err = svc.PlaceBid(ctx, BidRequest{JobID: "j1", FreelancerID: "f1", Amount: 30000})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyBid)
	assert.EqualError(t, err, "you have already bid on this job")

	var job jobModels.Job
	require.NoError(t, db.First(&job, "id = ?", "j1").Error)
	assert.EqualValues(t, 1, job.BidCount)
}

func TestConcurrentBidsFromOneFreelancer(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.SeedJob(t, db, "j1", "client")
	svc := NewService(db)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		placed  int
		already int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PlaceBid(context.Background(), BidRequest{JobID: "j1", FreelancerID: "f1", Amount: 100})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				placed++
			case assert.ErrorIs(t, err, apperrors.ErrAlreadyBid):
				already++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, placed)
	assert.Equal(t, 4, already)
}

func TestPlaceBidRules(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.SeedJob(t, db, "j1", "client")
	closed := dbtest.SeedJob(t, db, "j2", "client")
	require.NoError(t, db.Model(&closed).Update("status", jobModels.JobClosed).Error)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.PlaceBid(ctx, BidRequest{JobID: "missing", FreelancerID: "f1"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.PlaceBid(ctx, BidRequest{JobID: "j2", FreelancerID: "f1"})
	assert.ErrorIs(t, err, apperrors.ErrJobClosed)

	_, err = svc.PlaceBid(ctx, BidRequest{JobID: "j1", FreelancerID: "client"})
	assert.ErrorIs(t, err, apperrors.ErrOwnJob)
}

func TestListBids(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.SeedJob(t, db, "j1", "client")
	svc := NewService(db)
	ctx := context.Background()

	for _, f := range []string{"f1", "f2"} {
		_, err := svc.PlaceBid(ctx, BidRequest{JobID: "j1", FreelancerID: f, Amount: 100})
		require.NoError(t, err)
	}

	bids, err := svc.ListBids(ctx, "j1")
	require.NoError(t, err)
	assert.Len(t, bids, 2)

	_, err = svc.ListBids(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
