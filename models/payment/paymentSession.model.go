package payment

import (
	"time"

	"gorm.io/datatypes"
)

// SessionStatus is the lifecycle state of a checkout attempt
type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
)

var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionPending:   {SessionCompleted, SessionFailed},
	SessionCompleted: {},
	SessionFailed:    {},
}

// CanTransition reports whether moving from s to next is allowed. Staying put is always allowed.
func (s SessionStatus) CanTransition(next SessionStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentSession links a gateway reference to the purchase it pays for.
// It is created at initialization and never deleted.
type PaymentSession struct {
	Reference     string         `json:"reference" gorm:"primaryKey;size:100"`
	UserID        string         `json:"user_id" gorm:"index;size:64;not null"`
	UserEmail     string         `json:"user_email" gorm:"size:255"`
	CourseID      string         `json:"course_id" gorm:"index;size:64;not null"`
	InstructorID  string         `json:"instructor_id" gorm:"index;size:64"`
	Amount        float64        `json:"amount" gorm:"not null"`
	PlatformFee   float64        `json:"platform_fee" gorm:"default:0"`
	CreatorAmount float64        `json:"creator_amount" gorm:"default:0"`
	Currency      string         `json:"currency" gorm:"size:8"`
	Status        SessionStatus  `json:"status" gorm:"type:varchar(20);index;default:'pending'"`
	Metadata      datatypes.JSON `json:"metadata"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	CompletedAt   *time.Time     `json:"completed_at"`
	LastCheckedAt *time.Time     `json:"last_checked_at" gorm:"index"`
	CheckAttempts int            `json:"check_attempts" gorm:"default:0"`
}

func (PaymentSession) TableName() string {
	return "payment_sessions"
}
