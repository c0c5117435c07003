// Package stats applies aggregate counter changes with the store's own
// increment primitives. Counters are never read, modified and written back.
package stats

import (
	"context"
	"fmt"
	"time"

	"skillchain/models"
	courseModels "skillchain/models/course"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// User counter columns
const (
	CoursesEnrolled    = "courses_enrolled"
	CoursesCompleted   = "courses_completed"
	CertificatesEarned = "certificates_earned"
)

var userColumns = map[string]bool{
	CoursesEnrolled:    true,
	CoursesCompleted:   true,
	CertificatesEarned: true,
}

// IncrementUser adds delta to one user counter, creating the row on first use.
func IncrementUser(tx *gorm.DB, userID, column string, delta int64) error {
	if !userColumns[column] {
		return fmt.Errorf("unknown user stats column %q", column)
	}
	now := time.Now()
	return tx.Model(&models.UserStats{}).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				column:       gorm.Expr("user_stats."+column+" + ?", delta),
				"updated_at": now,
			}),
		}).
		Create(map[string]any{
			"user_id":    userID,
			column:       delta,
			"created_at": now,
			"updated_at": now,
		}).Error
}

// InstructorDelta is one enrollment's contribution to an instructor's aggregates
type InstructorDelta struct {
	Students    int64
	Enrollments int64
	Revenue     float64
}

// IncrementInstructor applies d to the instructor's counters, creating the row on first use.
func IncrementInstructor(tx *gorm.DB, instructorID string, d InstructorDelta) error {
	now := time.Now()
	return tx.Model(&models.InstructorStats{}).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "instructor_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"total_students":    gorm.Expr("instructor_stats.total_students + ?", d.Students),
				"total_enrollments": gorm.Expr("instructor_stats.total_enrollments + ?", d.Enrollments),
				"total_revenue":     gorm.Expr("instructor_stats.total_revenue + ?", d.Revenue),
				"updated_at":        now,
			}),
		}).
		Create(map[string]any{
			"instructor_id":     instructorID,
			"total_students":    d.Students,
			"total_enrollments": d.Enrollments,
			"total_revenue":     d.Revenue,
			"created_at":        now,
			"updated_at":        now,
		}).Error
}

// IncrementCourseStudents bumps the course's student counter.
func IncrementCourseStudents(tx *gorm.DB, courseID string, delta int64) error {
	return tx.Model(&courseModels.Course{}).
		Where("id = ?", courseID).
		UpdateColumn("student_count", gorm.Expr("student_count + ?", delta)).Error
}

// RebuildCourseCounters recomputes every course's student_count from the
// enrollments table. It repairs drift left by partially applied writes.
// Returns the number of courses whose counter changed.
func RebuildCourseCounters(ctx context.Context, db *gorm.DB) (int64, error) {
	type row struct {
		CourseID string
		Total    int64
	}
	var rows []row
	if err := db.WithContext(ctx).
		Model(&courseModels.Enrollment{}).
		Select("course_id, COUNT(*) AS total").
		Group("course_id").
		Scan(&rows).Error; err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}

	var changed int64
	for _, r := range rows {
		res := db.WithContext(ctx).
			Model(&courseModels.Course{}).
			Where("id = ? AND student_count <> ?", r.CourseID, r.Total).
			UpdateColumn("student_count", r.Total)
		if res.Error != nil {
			return changed, fmt.Errorf("rebuild course %s: %w", r.CourseID, res.Error)
		}
		changed += res.RowsAffected
	}

	res := db.WithContext(ctx).
		Model(&courseModels.Course{}).
		Where("student_count <> 0 AND id NOT IN (?)", db.Model(&courseModels.Enrollment{}).Select("course_id")).
		UpdateColumn("student_count", 0)
	if res.Error != nil {
		return changed, fmt.Errorf("reset empty courses: %w", res.Error)
	}
	return changed + res.RowsAffected, nil
}
