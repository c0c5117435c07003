// Package bidding places freelancer bids on jobs, one per (job, freelancer).
package bidding

import (
	"context"
	"errors"
	"fmt"

	"skillchain/apperrors"
	"skillchain/database"
	"skillchain/logger"
	jobModels "skillchain/models/job"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BidRequest struct {
	JobID        string
	FreelancerID string
	Amount       float64
	Proposal     string
}

type Service struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, log: logger.For("bidding")}
}

// PlaceBid stores the freelancer's bid. A second bid from the same freelancer
// on the same job fails with ErrAlreadyBid, decided by the unique index.
func (s *Service) PlaceBid(ctx context.Context, req BidRequest) (*jobModels.Bid, error) {
	var bid *jobModels.Bid
	err := database.Retry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			bid, err = placeTx(tx, req)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("job_id", req.JobID).Str("freelancer_id", req.FreelancerID).Msg("bid placed")
	return bid, nil
}

func placeTx(tx *gorm.DB, req BidRequest) (*jobModels.Bid, error) {
	job, err := findJob(tx, req.JobID)
	if err != nil {
		return nil, err
	}
	if job.Status != jobModels.JobOpen {
		return nil, apperrors.ErrJobClosed
	}
	if job.ClientID == req.FreelancerID {
		return nil, apperrors.ErrOwnJob
	}

	bid := jobModels.Bid{
		ID:           uuid.NewString(),
		JobID:        job.ID,
		FreelancerID: req.FreelancerID,
		Amount:       req.Amount,
		Proposal:     req.Proposal,
	}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_id"}, {Name: "freelancer_id"}},
		DoNothing: true,
	}).Create(&bid)
	if res.Error != nil {
		return nil, fmt.Errorf("create bid: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrAlreadyBid
	}

	if err := tx.Model(&jobModels.Job{}).
		Where("id = ?", job.ID).
		UpdateColumn("bid_count", gorm.Expr("bid_count + ?", 1)).Error; err != nil {
		return nil, fmt.Errorf("bump bid count: %w", err)
	}
	return &bid, nil
}

// ListBids returns the bids on a job, newest first.
func (s *Service) ListBids(ctx context.Context, jobID string) ([]jobModels.Bid, error) {
	db := s.db.WithContext(ctx)
	if _, err := findJob(db, jobID); err != nil {
		return nil, err
	}
	var bids []jobModels.Bid
	if err := db.Where("job_id = ?", jobID).Order("created_at desc").Find(&bids).Error; err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	return bids, nil
}

func findJob(tx *gorm.DB, jobID string) (*jobModels.Job, error) {
	var job jobModels.Job
	err := tx.Where("id = ? AND is_deleted = ?", jobID, false).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("job %s: %w", jobID, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	return &job, nil
}
