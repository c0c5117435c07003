package course

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// EnrollmentStatus is the lifecycle state of an enrollment
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

var enrollmentTransitions = map[EnrollmentStatus][]EnrollmentStatus{
	EnrollmentActive:    {EnrollmentCompleted},
	EnrollmentCompleted: {},
}

// CanTransition reports whether moving from s to next is allowed. Staying put is always allowed.
func (s EnrollmentStatus) CanTransition(next EnrollmentStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range enrollmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// EnrollmentKey derives the enrollment primary key from the (user, course) pair.
func EnrollmentKey(userID, courseID string) string {
	return fmt.Sprintf("%s_%s", userID, courseID)
}

// Enrollment tracks a user's enrollment in a course with progress.
// Version is bumped on every progress write and used for compare-and-swap.
type Enrollment struct {
	ID               string                             `json:"id" gorm:"primaryKey;size:160"`
	UserID           string                             `json:"user_id" gorm:"index;size:64;not null"`
	UserEmail        string                             `json:"-" gorm:"size:255"`
	CourseID         string                             `json:"course_id" gorm:"index;size:64;not null"`
	InstructorID     string                             `json:"instructor_id" gorm:"index;size:64"`
	Status           EnrollmentStatus                   `json:"status" gorm:"type:varchar(20);default:'active'"`
	Progress         int                                `json:"progress" gorm:"default:0"` // 0-100
	CompletedLessons datatypes.JSONSlice[string]        `json:"completed_lessons"`
	CurrentLesson    string                             `json:"current_lesson"`
	NextLesson       string                             `json:"next_lesson"`
	TotalLessons     int                                `json:"total_lessons" gorm:"default:0"`
	ModuleProgress   datatypes.JSONType[map[string]int] `json:"module_progress"`
	LastAccessed     time.Time                          `json:"last_accessed"`
	CompletedAt      *time.Time                         `json:"completed_at"`
	Version          int64                              `json:"-" gorm:"default:0;not null"`
	CreatedAt        time.Time                          `json:"created_at"`
	UpdatedAt        time.Time                          `json:"updated_at"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
