package models

import "time"

// UserStats holds per-learner aggregate counters. Rows are created on the
// first event and only ever changed through atomic increments.
type UserStats struct {
	UserID             string    `json:"user_id" gorm:"primaryKey;size:64"`
	CoursesEnrolled    int64     `json:"courses_enrolled" gorm:"default:0"`
	CoursesCompleted   int64     `json:"courses_completed" gorm:"default:0"`
	CertificatesEarned int64     `json:"certificates_earned" gorm:"default:0"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (UserStats) TableName() string {
	return "user_stats"
}

// InstructorStats holds per-instructor aggregate counters
type InstructorStats struct {
	InstructorID     string    `json:"instructor_id" gorm:"primaryKey;size:64"`
	TotalStudents    int64     `json:"total_students" gorm:"default:0"`
	TotalEnrollments int64     `json:"total_enrollments" gorm:"default:0"`
	TotalRevenue     float64   `json:"total_revenue" gorm:"default:0"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (InstructorStats) TableName() string {
	return "instructor_stats"
}
