package certificate

import (
	"context"
	"sync"
	"testing"
	"time"

	"skillchain/apperrors"
	"skillchain/database/dbtest"
	"skillchain/models"
	courseModels "skillchain/models/course"
	"skillchain/services/enrollment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeNotifier) CertificateIssued(email, courseTitle, number string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, email+"|"+courseTitle+"|"+number)
}

func enrolled(t *testing.T, progress int) *gorm.DB {
	t.Helper()
	db := dbtest.Open(t)
	dbtest.SeedCourse(t, db, "c1", "i1", 5000, 1)
	_, err := enrollment.NewWriter(db, nil).Enroll(context.Background(), enrollment.EnrollRequest{UserID: "u1", UserEmail: "u1@example.com", CourseID: "c1"})
	require.NoError(t, err)
	require.NoError(t, db.Model(&courseModels.Enrollment{}).Where("id = ?", "u1_c1").Update("progress", progress).Error)
	return db
}

func TestNewNumberFormat(t *testing.T) {
	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	assert.Regexp(t, `^SKC-CERT-20261019-[0-9A-F]{8}$`, NewNumber(at))
	assert.NotEqual(t, NewNumber(at), NewNumber(at))
}

func TestIssueIfCompleteRequiresFullProgress(t *testing.T) {
	db := enrolled(t, 99)
	issuer := NewIssuer(db, nil)

	_, err := issuer.IssueIfComplete(context.Background(), "u1", "c1")
	assert.ErrorIs(t, err, apperrors.ErrNotComplete)

	_, err = issuer.IssueIfComplete(context.Background(), "u2", "c1")
	assert.ErrorIs(t, err, apperrors.ErrNotEnrolled)
}

func TestIssueIfCompleteIsIdempotent(t *testing.T) {
	db := enrolled(t, 100)
	notifier := &fakeNotifier{}
	issuer := NewIssuer(db, notifier)

	first, err := issuer.IssueIfComplete(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.True(t, first.Created)

	second, err := issuer.IssueIfComplete(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Certificate.CertificateNumber, second.Certificate.CertificateNumber)

	var us models.UserStats
	require.NoError(t, db.First(&us, "user_id = ?", "u1").Error)
	assert.EqualValues(t, 1, us.CertificatesEarned)
	assert.Equal(t, []string{"u1@example.com|Course c1|" + first.Certificate.CertificateNumber}, notifier.sent)
}

func TestConcurrentIssueCreatesOneCertificate(t *testing.T) {
	db := enrolled(t, 100)
	issuer := NewIssuer(db, nil)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := issuer.IssueIfComplete(context.Background(), "u1", "c1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var count int64
	require.NoError(t, db.Model(&courseModels.Certificate{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestListForUser(t *testing.T) {
	db := enrolled(t, 100)
	issuer := NewIssuer(db, nil)

	_, err := issuer.IssueIfComplete(context.Background(), "u1", "c1")
	require.NoError(t, err)

	list, err := issuer.ListForUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Course c1", list[0].CourseName)

	empty, err := issuer.ListForUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
