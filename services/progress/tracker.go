// Package progress records lesson completion and derives course progress.
package progress

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
	"skillchain/services/certificate"
	"skillchain/services/enrollment"
	"skillchain/services/stats"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Snapshot is the progress view returned to the learner
type Snapshot struct {
	CourseID         string                        `json:"courseId"`
	Status           courseModels.EnrollmentStatus `json:"status"`
	Progress         int                           `json:"progress"`
	CompletedLessons []string                      `json:"completedLessons"`
	TotalLessons     int                           `json:"totalLessons"`
	CurrentLesson    string                        `json:"currentLesson"`
	NextLesson       string                        `json:"nextLesson"`
	ModuleProgress   map[string]int                `json:"moduleProgress"`
	LastAccessed     time.Time                     `json:"lastAccessed"`
	CompletedAt      *time.Time                    `json:"completedAt,omitempty"`
	Certificate      *courseModels.Certificate     `json:"certificate,omitempty"`
}

func snapshotOf(e *courseModels.Enrollment) *Snapshot {
	completed := []string(e.CompletedLessons)
	if completed == nil {
		completed = []string{}
	}
	modules := e.ModuleProgress.Data()
	if modules == nil {
		modules = map[string]int{}
	}
	return &Snapshot{
		CourseID:         e.CourseID,
		Status:           e.Status,
		Progress:         e.Progress,
		CompletedLessons: completed,
		TotalLessons:     e.TotalLessons,
		CurrentLesson:    e.CurrentLesson,
		NextLesson:       e.NextLesson,
		ModuleProgress:   modules,
		LastAccessed:     e.LastAccessed,
		CompletedAt:      e.CompletedAt,
	}
}

type Tracker struct {
	db     *gorm.DB
	issuer *certificate.Issuer
	log    zerolog.Logger
}

func NewTracker(db *gorm.DB, issuer *certificate.Issuer) *Tracker {
	return &Tracker{db: db, issuer: issuer, log: logger.For("progress")}
}

// MarkLessonComplete sets or clears one lesson and persists the derived
// progress with a compare-and-swap on the enrollment version. The first time
// progress reaches 100 the enrollment completes and the certificate is issued
// in the same transaction.
func (t *Tracker) MarkLessonComplete(ctx context.Context, userID, courseID, lessonID string, completed bool) (*Snapshot, error) {
	var (
		snap   *Snapshot
		issued *certificate.Issued
	)
	err := database.Retry(ctx, func() error {
		return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			snap, issued, err = t.apply(tx, userID, courseID, lessonID, completed)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	t.issuer.Announce(issued)
	return snap, nil
}

func (t *Tracker) apply(tx *gorm.DB, userID, courseID, lessonID string, completed bool) (*Snapshot, *certificate.Issued, error) {
	current, err := enrollment.Find(tx, userID, courseID)
	if err != nil {
		return nil, nil, err
	}
	outline, err := catalog.LoadOutline(tx, courseID)
	if err != nil {
		return nil, nil, err
	}
	if !outline.Contains(lessonID) {
		return nil, nil, fmt.Errorf("lesson %s in course %s: %w", lessonID, courseID, apperrors.ErrNotFound)
	}

	if current.Status == courseModels.EnrollmentCompleted && !completed {
		snap := snapshotOf(current)
		snap.Certificate, err = findCertificate(tx, userID, courseID)
		return snap, nil, err
	}

	state := Apply(outline, current.CompletedLessons, lessonID, completed)
	now := time.Now()

	next := *current
	next.CompletedLessons = datatypes.JSONSlice[string](state.Completed)
	next.Progress = state.Progress
	next.TotalLessons = state.TotalLessons
	next.NextLesson = state.NextLesson
	next.CurrentLesson = lessonID
	next.ModuleProgress = datatypes.NewJSONType(state.ModuleProgress)
	next.LastAccessed = now
	next.Version = current.Version + 1

	crossed := current.Progress < 100 && state.Progress == 100
	if crossed && current.Status.CanTransition(courseModels.EnrollmentCompleted) {
		next.Status = courseModels.EnrollmentCompleted
		next.CompletedAt = &now
	} else if crossed {
		return nil, nil, apperrors.Transition("enrollment", current.Status, courseModels.EnrollmentCompleted)
	}

	res := tx.Model(&courseModels.Enrollment{}).
		Where("id = ? AND version = ?", current.ID, current.Version).
		Updates(map[string]any{
			"completed_lessons": next.CompletedLessons,
			"progress":          next.Progress,
			"total_lessons":     next.TotalLessons,
			"next_lesson":       next.NextLesson,
			"current_lesson":    next.CurrentLesson,
			"module_progress":   next.ModuleProgress,
			"last_accessed":     next.LastAccessed,
			"status":            next.Status,
			"completed_at":      next.CompletedAt,
			"version":           next.Version,
		})
	if res.Error != nil {
		return nil, nil, fmt.Errorf("update enrollment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil, apperrors.ErrConflict
	}

	snap := snapshotOf(&next)
	if !crossed {
		if next.Status == courseModels.EnrollmentCompleted {
			snap.Certificate, err = findCertificate(tx, userID, courseID)
		}
		return snap, nil, err
	}

	if err := stats.IncrementUser(tx, userID, stats.CoursesCompleted, 1); err != nil {
		return nil, nil, fmt.Errorf("user counter: %w", err)
	}
	issued, err := t.issuer.IssueTx(tx, userID, courseID)
	if err != nil {
		return nil, nil, err
	}
	t.log.Info().Str("user_id", userID).Str("course_id", courseID).Msg("course completed")

	snap.Certificate = issued.Certificate
	return snap, issued, nil
}

// GetProgress returns the learner's current snapshot without changing it.
func (t *Tracker) GetProgress(ctx context.Context, userID, courseID string) (*Snapshot, error) {
	db := t.db.WithContext(ctx)
	current, err := enrollment.Find(db, userID, courseID)
	if err != nil {
		return nil, err
	}
	snap := snapshotOf(current)
	if current.Status == courseModels.EnrollmentCompleted {
		if snap.Certificate, err = findCertificate(db, userID, courseID); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

func findCertificate(tx *gorm.DB, userID, courseID string) (*courseModels.Certificate, error) {
	var cert courseModels.Certificate
	err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&cert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load certificate: %w", err)
	}
	return &cert, nil
}
