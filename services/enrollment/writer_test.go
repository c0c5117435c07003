package enrollment

import (
	"context"
	"sync"
	"testing"

	"skillchain/apperrors"
	"skillchain/database/dbtest"
	"skillchain/models"
	courseModels "skillchain/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeNotifier) EnrollmentConfirmed(email, courseTitle string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, email+"|"+courseTitle)
}

func loadCounters(t *testing.T, db *gorm.DB, userID, instructorID, courseID string) (models.UserStats, models.InstructorStats, courseModels.Course) {
	t.Helper()
	var us models.UserStats
	var is models.InstructorStats
	var course courseModels.Course
	require.NoError(t, db.First(&us, "user_id = ?", userID).Error)
	require.NoError(t, db.First(&is, "instructor_id = ?", instructorID).Error)
	require.NoError(t, db.First(&course, "id = ?", courseID).Error)
	return us, is, course
}

func TestEnrollCreatesEnrollmentAndCounters(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.SeedCourse(t, db, "c1", "i1", 5000, 2, 2)
	notifier := &fakeNotifier{}
	w := NewWriter(db, notifier)

	res, err := w.Enroll(context.Background(), EnrollRequest{UserID: "u1", UserEmail: "u1@example.com", CourseID: "c1", CreatorAmount: 4000})
	require.NoError(t, err)
	assert.True(t, res.Created)

	e := res.Enrollment
	assert.Equal(t, "u1_c1", e.ID)
	assert.Equal(t, courseModels.EnrollmentActive, e.Status)
	assert.Equal(t, 0, e.Progress)
	assert.Equal(t, 4, e.TotalLessons)
	assert.Equal(t, "c1-m1-l1", e.NextLesson)
	assert.Equal(t, "i1", e.InstructorID)
	assert.Empty(t, e.CompletedLessons)

	us, is, course := loadCounters(t, db, "u1", "i1", "c1")
	assert.EqualValues(t, 1, us.CoursesEnrolled)
	assert.EqualValues(t, 1, is.TotalStudents)
	assert.EqualValues(t, 1, is.TotalEnrollments)
	assert.Equal(t, 4000.0, is.TotalRevenue)
	assert.EqualValues(t, 1, course.StudentCount)

	assert.Equal(t, []string{"u1@example.com|Course c1"}, notifier.sent)
}

func TestEnrollTwiceIsIdempotent(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.SeedCourse(t, db, "c1", "i1", 5000, 1)
	notifier := &fakeNotifier{}
	w := NewWriter(db, notifier)
	req := EnrollRequest{UserID: "u1", UserEmail: "u1@example.com", CourseID: "c1", CreatorAmount: 4000}

	first, err := w.Enroll(context.Background(), req)
	require.NoError(t, err)
	second, err := w.Enroll(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, first.Created)
	assert.False(t, second.Created)
	assert.Equal(t, first.Enrollment.ID, second.Enrollment.ID)

	us, is, course := loadCounters(t, db, "u1", "i1", "c1")
	assert.EqualValues(t, 1, us.CoursesEnrolled)
	assert.EqualValues(t, 1, is.TotalEnrollments)
	assert.Equal(t, 4000.0, is.TotalRevenue)
	assert.EqualValues(t, 1, course.StudentCount)
	assert.Len(t, notifier.sent, 1)
}

func TestConcurrentEnrollCreatesOneEnrollment(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.SeedCourse(t, db, "c1", "i1", 5000, 3)
	w := NewWriter(db, nil)

	const callers = 8
	var wg sync.WaitGroup
	created := make(chan bool, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := w.Enroll(context.Background(), EnrollRequest{UserID: "u1", CourseID: "c1", CreatorAmount: 100})
			if assert.NoError(t, err) {
				created <- res.Created
			}
		}()
	}
	wg.Wait()
	close(created)

	fresh := 0
	for c := range created {
		if c {
			fresh++
		}
	}
	assert.Equal(t, 1, fresh)

	var count int64
	require.NoError(t, db.Model(&courseModels.Enrollment{}).Where("user_id = ? AND course_id = ?", "u1", "c1").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	us, is, course := loadCounters(t, db, "u1", "i1", "c1")
	assert.EqualValues(t, 1, us.CoursesEnrolled)
	assert.EqualValues(t, 1, is.TotalStudents)
	assert.Equal(t, 100.0, is.TotalRevenue)
	assert.EqualValues(t, 1, course.StudentCount)
}

func TestEnrollEmptyCourse(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.SeedCourse(t, db, "c1", "i1", 0)
	w := NewWriter(db, nil)

	res, err := w.Enroll(context.Background(), EnrollRequest{UserID: "u1", CourseID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Enrollment.TotalLessons)
	assert.Equal(t, "", res.Enrollment.NextLesson)
}

func TestEnrollUnknownCourse(t *testing.T) {
	db := dbtest.Open(t)
	w := NewWriter(db, nil)

	_, err := w.Enroll(context.Background(), EnrollRequest{UserID: "u1", CourseID: "missing"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEnrollFree(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.SeedCourse(t, db, "free", "i1", 0, 1)
	dbtest.SeedCourse(t, db, "paid", "i1", 2500, 1)
	w := NewWriter(db, nil)

	res, err := w.EnrollFree(context.Background(), "u1", "u1@example.com", "free")
	require.NoError(t, err)
	assert.True(t, res.Created)

	_, err = w.EnrollFree(context.Background(), "u1", "u1@example.com", "paid")
	assert.ErrorIs(t, err, apperrors.ErrPaymentRequired)

	_, err = Find(db, "u1", "paid")
	assert.ErrorIs(t, err, apperrors.ErrNotEnrolled)
}

func TestListForUser(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.SeedCourse(t, db, "c1", "i1", 0, 1)
	dbtest.SeedCourse(t, db, "c2", "i1", 0, 1)
	w := NewWriter(db, nil)

	for _, id := range []string{"c1", "c2"} {
		_, err := w.Enroll(context.Background(), EnrollRequest{UserID: "u1", CourseID: id})
		require.NoError(t, err)
	}

	list, err := ListForUser(context.Background(), db, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
