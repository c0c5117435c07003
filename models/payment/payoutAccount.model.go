package payment

import "time"

// PayoutAccount is an instructor's gateway subaccount used for split payments
type PayoutAccount struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	InstructorID     string    `json:"instructor_id" gorm:"size:64;uniqueIndex;not null"`
	SubaccountCode   string    `json:"subaccount_code" gorm:"size:64;not null"`
	BusinessName     string    `json:"business_name"`
	BankCode         string    `json:"bank_code" gorm:"size:16"`
	AccountNumber    string    `json:"account_number" gorm:"size:32"`
	PercentageCharge float64   `json:"percentage_charge"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (PayoutAccount) TableName() string {
	return "payout_accounts"
}
