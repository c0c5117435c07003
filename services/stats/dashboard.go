package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skillchain/models"
	paymentModels "skillchain/models/payment"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// PeriodRevenue is the instructor's share of payments inside a period
type PeriodRevenue struct {
	Revenue  float64 `json:"revenue"`
	Payments int64   `json:"payments"`
}

type InstructorDashboard struct {
	InstructorID     string        `json:"instructor_id"`
	TotalStudents    int64         `json:"total_students"`
	TotalEnrollments int64         `json:"total_enrollments"`
	TotalRevenue     float64       `json:"total_revenue"`
	ThisMonth        PeriodRevenue `json:"this_month"`
	Today            PeriodRevenue `json:"today"`
}

// Dashboard combines the instructor's running counters with revenue for the
// month and day containing at.
func Dashboard(ctx context.Context, db *gorm.DB, instructorID string, at time.Time) (*InstructorDashboard, error) {
	db = db.WithContext(ctx)

	var totals models.InstructorStats
	err := db.Where("instructor_id = ?", instructorID).First(&totals).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load instructor stats: %w", err)
	}

	clock := now.With(at)
	month, err := revenueBetween(db, instructorID, clock.BeginningOfMonth(), clock.EndOfMonth())
	if err != nil {
		return nil, err
	}
	today, err := revenueBetween(db, instructorID, clock.BeginningOfDay(), clock.EndOfDay())
	if err != nil {
		return nil, err
	}

	return &InstructorDashboard{
		InstructorID:     instructorID,
		TotalStudents:    totals.TotalStudents,
		TotalEnrollments: totals.TotalEnrollments,
		TotalRevenue:     totals.TotalRevenue,
		ThisMonth:        month,
		Today:            today,
	}, nil
}

func revenueBetween(db *gorm.DB, instructorID string, from, to time.Time) (PeriodRevenue, error) {
	var out PeriodRevenue
	err := db.Model(&paymentModels.Payment{}).
		Select("COALESCE(SUM(creator_amount), 0) AS revenue, COUNT(*) AS payments").
		Where("instructor_id = ? AND paid_at BETWEEN ? AND ?", instructorID, from, to).
		Scan(&out).Error
	if err != nil {
		return out, fmt.Errorf("sum revenue: %w", err)
	}
	return out, nil
}
