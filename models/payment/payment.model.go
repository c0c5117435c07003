package payment

import "time"

// Payment is a verified charge. Reference is the dedup key: one row per gateway transaction.
type Payment struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Reference     string    `json:"reference" gorm:"size:100;uniqueIndex;not null"`
	UserID        string    `json:"user_id" gorm:"index;size:64;not null"`
	CourseID      string    `json:"course_id" gorm:"index;size:64;not null"`
	InstructorID  string    `json:"instructor_id" gorm:"index;size:64"`
	Amount        float64   `json:"amount" gorm:"not null"`
	PlatformFee   float64   `json:"platform_fee" gorm:"default:0"`
	CreatorAmount float64   `json:"creator_amount" gorm:"default:0"`
	Currency      string    `json:"currency" gorm:"size:8"`
	Status        string    `json:"status" gorm:"size:20"`
	Method        string    `json:"method" gorm:"size:50"` // card, bank, ussd...
	PaidAt        time.Time `json:"paid_at" gorm:"index"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Payment) TableName() string {
	return "payments"
}
