package job

import "time"

type JobStatus string

const (
	JobOpen   JobStatus = "open"
	JobClosed JobStatus = "closed"
)

// Job is a freelance job posted by a client
type Job struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64"`
	ClientID    string    `json:"client_id" gorm:"index;size:64;not null"`
	Title       string    `json:"title"`
	Description string    `json:"description" gorm:"type:text"`
	Budget      float64   `json:"budget"`
	Status      JobStatus `json:"status" gorm:"type:varchar(20);default:'open'"`
	BidCount    int64     `json:"bid_count" gorm:"default:0"`
	IsDeleted   bool      `json:"-" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Job) TableName() string {
	return "jobs"
}

// Bid is a freelancer's offer on a job. One per (job, freelancer).
type Bid struct {
	ID           string    `json:"id" gorm:"primaryKey;size:64"`
	JobID        string    `json:"job_id" gorm:"size:64;not null;uniqueIndex:idx_bid_job_freelancer"`
	FreelancerID string    `json:"freelancer_id" gorm:"size:64;not null;uniqueIndex:idx_bid_job_freelancer"`
	Amount       float64   `json:"amount" gorm:"not null"`
	Proposal     string    `json:"proposal" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Bid) TableName() string {
	return "job_bids"
}
