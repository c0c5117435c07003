// Package certificate issues course completion certificates.
package certificate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skillchain/apperrors"
	"skillchain/database"
	"skillchain/logger"
	courseModels "skillchain/models/course"
	"skillchain/services/enrollment"
	"skillchain/services/stats"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Notifier interface {
	CertificateIssued(email, courseTitle, certificateNumber string)
}

// Issued is the outcome of an issue call. Created is false when the
// certificate already existed.
type Issued struct {
	Certificate *courseModels.Certificate
	Created     bool
	UserEmail   string
	CourseTitle string
}

type Issuer struct {
	db     *gorm.DB
	notify Notifier
	log    zerolog.Logger
}

func NewIssuer(db *gorm.DB, notify Notifier) *Issuer {
	return &Issuer{db: db, notify: notify, log: logger.For("certificate")}
}

// NewNumber formats a certificate number as SKC-CERT-<yyyymmdd>-<8 hex>.
func NewNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("SKC-CERT-%s-%s", at.Format("20060102"), suffix)
}

// IssueIfComplete issues the certificate for a finished enrollment.
func (i *Issuer) IssueIfComplete(ctx context.Context, userID, courseID string) (*Issued, error) {
	var out *Issued
	err := database.Retry(ctx, func() error {
		return i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			out, err = i.IssueTx(tx, userID, courseID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	i.Announce(out)
	return out, nil
}

// IssueTx inserts the certificate inside tx. The unique (user, course) index
// turns a second insert into a no-op that returns the stored certificate.
func (i *Issuer) IssueTx(tx *gorm.DB, userID, courseID string) (*Issued, error) {
	enrolled, err := enrollment.Find(tx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if enrolled.Progress < 100 {
		return nil, apperrors.ErrNotComplete
	}

	var course courseModels.Course
	if err := tx.Select("id", "title").Where("id = ?", courseID).First(&course).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load course: %w", err)
	}

	now := time.Now()
	cert := courseModels.Certificate{
		UserID:            userID,
		CourseID:          courseID,
		CertificateNumber: NewNumber(now),
		IssuedAt:          now,
	}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(&cert)
	if res.Error != nil {
		return nil, fmt.Errorf("create certificate: %w", res.Error)
	}

	issued := &Issued{UserEmail: enrolled.UserEmail, CourseTitle: course.Title}
	if res.RowsAffected == 0 {
		var existing courseModels.Certificate
		if err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error; err != nil {
			return nil, fmt.Errorf("load certificate: %w", err)
		}
		issued.Certificate = &existing
		return issued, nil
	}

	if err := stats.IncrementUser(tx, userID, stats.CertificatesEarned, 1); err != nil {
		return nil, fmt.Errorf("user counter: %w", err)
	}
	i.log.Info().
		Str("user_id", userID).
		Str("course_id", courseID).
		Str("certificate_number", cert.CertificateNumber).
		Msg("certificate issued")

	issued.Certificate = &cert
	issued.Created = true
	return issued, nil
}

// Announce queues the certificate mail for a fresh issuance. Call after commit.
func (i *Issuer) Announce(issued *Issued) {
	if i.notify == nil || issued == nil || !issued.Created || issued.UserEmail == "" {
		return
	}
	i.notify.CertificateIssued(issued.UserEmail, issued.CourseTitle, issued.Certificate.CertificateNumber)
}

// CertificateWithCourse decorates a certificate with its course title.
type CertificateWithCourse struct {
	courseModels.Certificate
	CourseName string `json:"course_name"`
}

// ListForUser returns the user's certificates, newest first.
func (i *Issuer) ListForUser(ctx context.Context, userID string) ([]CertificateWithCourse, error) {
	var certificates []courseModels.Certificate
	if err := i.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("issued_at desc").
		Find(&certificates).Error; err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}

	ids := make([]string, 0, len(certificates))
	for _, c := range certificates {
		ids = append(ids, c.CourseID)
	}
	var courses []courseModels.Course
	if len(ids) > 0 {
		if err := i.db.WithContext(ctx).Select("id", "title").Where("id IN ?", ids).Find(&courses).Error; err != nil {
			return nil, fmt.Errorf("load courses: %w", err)
		}
	}
	titles := make(map[string]string, len(courses))
	for _, c := range courses {
		titles[c.ID] = c.Title
	}

	result := make([]CertificateWithCourse, len(certificates))
	for n, cert := range certificates {
		result[n] = CertificateWithCourse{Certificate: cert, CourseName: titles[cert.CourseID]}
	}
	return result, nil
}
