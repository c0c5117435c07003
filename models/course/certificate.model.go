package course

import "time"

// Certificate represents an issued certificate for course completion.
// At most one exists per (user, course), enforced by the unique index.
type Certificate struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	UserID            string    `json:"user_id" gorm:"size:64;not null;uniqueIndex:idx_certificate_user_course"`
	CourseID          string    `json:"course_id" gorm:"size:64;not null;uniqueIndex:idx_certificate_user_course"`
	CertificateNumber string    `json:"certificate_number" gorm:"size:64;unique"`
	IssuedAt          time.Time `json:"issued_at"`
	CreatedAt         time.Time `json:"created_at"`
}

func (Certificate) TableName() string {
	return "certificates"
}
