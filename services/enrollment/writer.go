// Package enrollment creates enrollments exactly once per (user, course) and
// applies the counter side effects of a new enrollment.
package enrollment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skillchain/apperrors"
	"skillchain/database"
	"skillchain/logger"
	courseModels "skillchain/models/course"
	"skillchain/services/catalog"
	"skillchain/services/stats"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Notifier is told about enrollments once they are committed
type Notifier interface {
	EnrollmentConfirmed(email, courseTitle string)
}

type EnrollRequest struct {
	UserID        string
	UserEmail     string
	CourseID      string
	InstructorID  string  // falls back to the course's instructor
	CreatorAmount float64 // instructor revenue credited with this enrollment
}

// Result describes what an enroll call did. Created is false when the
// enrollment already existed and nothing was written.
type Result struct {
	Enrollment *courseModels.Enrollment
	Course     *courseModels.Course
	Created    bool
}

type Writer struct {
	db     *gorm.DB
	notify Notifier
	log    zerolog.Logger
}

func NewWriter(db *gorm.DB, notify Notifier) *Writer {
	return &Writer{db: db, notify: notify, log: logger.For("enrollment")}
}

// Enroll runs EnrollTx in its own transaction and queues the confirmation mail
// when the enrollment is new.
func (w *Writer) Enroll(ctx context.Context, req EnrollRequest) (*Result, error) {
	var res *Result
	err := database.Retry(ctx, func() error {
		return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			res, err = w.EnrollTx(tx, req)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	w.Confirm(res)
	return res, nil
}

// EnrollFree enrolls a user in a course that costs nothing.
func (w *Writer) EnrollFree(ctx context.Context, userID, userEmail, courseID string) (*Result, error) {
	course, err := catalog.GetCourse(w.db.WithContext(ctx), courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished {
		return nil, fmt.Errorf("course %s: %w", courseID, apperrors.ErrNotFound)
	}
	if !course.IsFree() {
		return nil, apperrors.ErrPaymentRequired
	}
	return w.Enroll(ctx, EnrollRequest{UserID: userID, UserEmail: userEmail, CourseID: courseID})
}

// EnrollTx creates the enrollment inside tx. Counters move only when the row
// is new, so replaying the call is harmless.
func (w *Writer) EnrollTx(tx *gorm.DB, req EnrollRequest) (*Result, error) {
	if req.UserID == "" || req.CourseID == "" {
		return nil, fmt.Errorf("enroll: user and course are required: %w", apperrors.ErrNotFound)
	}

	course, err := catalog.GetCourse(tx, req.CourseID)
	if err != nil {
		return nil, err
	}
	outline, err := catalog.LoadOutline(tx, course.ID)
	if err != nil {
		return nil, err
	}

	instructorID := req.InstructorID
	if instructorID == "" {
		instructorID = course.InstructorID
	}

	modules := make(map[string]int, len(outline.Modules))
	for _, m := range outline.Modules {
		modules[m.ModuleID] = 0
	}
	lessons := outline.LessonIDs()
	next := ""
	if len(lessons) > 0 {
		next = lessons[0]
	}

	now := time.Now()
	enrollment := courseModels.Enrollment{
		ID:               courseModels.EnrollmentKey(req.UserID, course.ID),
		UserID:           req.UserID,
		UserEmail:        req.UserEmail,
		CourseID:         course.ID,
		InstructorID:     instructorID,
		Status:           courseModels.EnrollmentActive,
		CompletedLessons: datatypes.JSONSlice[string]{},
		NextLesson:       next,
		TotalLessons:     len(lessons),
		ModuleProgress:   datatypes.NewJSONType(modules),
		LastAccessed:     now,
	}

	created := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&enrollment)
	if created.Error != nil {
		return nil, fmt.Errorf("create enrollment: %w", created.Error)
	}
	if created.RowsAffected == 0 {
		existing, err := Find(tx, req.UserID, course.ID)
		if err != nil {
			return nil, err
		}
		return &Result{Enrollment: existing, Course: course}, nil
	}

	if err := stats.IncrementCourseStudents(tx, course.ID, 1); err != nil {
		return nil, fmt.Errorf("course counter: %w", err)
	}
	if err := stats.IncrementUser(tx, req.UserID, stats.CoursesEnrolled, 1); err != nil {
		return nil, fmt.Errorf("user counter: %w", err)
	}
	if err := stats.IncrementInstructor(tx, instructorID, stats.InstructorDelta{
		Students:    1,
		Enrollments: 1,
		Revenue:     req.CreatorAmount,
	}); err != nil {
		return nil, fmt.Errorf("instructor counter: %w", err)
	}

	w.log.Info().
		Str("user_id", req.UserID).
		Str("course_id", course.ID).
		Float64("creator_amount", req.CreatorAmount).
		Msg("enrollment created")

	return &Result{Enrollment: &enrollment, Course: course, Created: true}, nil
}

// Confirm queues the confirmation mail for a freshly created enrollment.
// Call it only after the enclosing transaction has committed.
func (w *Writer) Confirm(res *Result) {
	if w.notify == nil || res == nil || !res.Created || res.Enrollment.UserEmail == "" {
		return
	}
	w.notify.EnrollmentConfirmed(res.Enrollment.UserEmail, res.Course.Title)
}

// Find loads the enrollment for (user, course) or returns ErrNotEnrolled.
func Find(tx *gorm.DB, userID, courseID string) (*courseModels.Enrollment, error) {
	var enrollment courseModels.Enrollment
	err := tx.Where("id = ?", courseModels.EnrollmentKey(userID, courseID)).First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotEnrolled
	}
	if err != nil {
		return nil, fmt.Errorf("load enrollment: %w", err)
	}
	return &enrollment, nil
}

// ListForUser returns the user's enrollments, newest first.
func ListForUser(ctx context.Context, db *gorm.DB, userID string) ([]courseModels.Enrollment, error) {
	var enrollments []courseModels.Enrollment
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}
