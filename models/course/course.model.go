package course

import "time"

// Course represents a purchasable course. Price is in major currency units.
type Course struct {
	ID           string    `json:"id" gorm:"primaryKey;size:64"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	InstructorID string    `json:"instructor_id" gorm:"index;size:64;not null"`
	Price        float64   `json:"price" gorm:"default:0"`
	Currency     string    `json:"currency" gorm:"size:8;default:'NGN'"`
	StudentCount int64     `json:"student_count" gorm:"default:0"`
	Status       string    `json:"status" gorm:"default:'DRAFT'"` // DRAFT, ACTIVE, INACTIVE
	IsPublished  bool      `json:"is_published" gorm:"default:false"`
	IsDeleted    bool      `json:"-" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Course) TableName() string {
	return "courses"
}

// IsFree reports whether the course can be enrolled in without a payment.
func (c Course) IsFree() bool {
	return c.Price <= 0
}
