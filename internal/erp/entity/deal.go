package entity

import "time"

// Deal is a CRM funnel record. A won deal is usually converted into a
// project (Project.DealID points back here).
type Deal struct {
	ID            string     `json:"id" gorm:"primaryKey;size:36"`
	Title         string     `json:"title" gorm:"size:256;not null"`
	CustomerName  string     `json:"customer_name" gorm:"size:128"`
	CustomerPhone string     `json:"customer_phone" gorm:"size:20"`
	CustomerEmail string     `json:"customer_email" gorm:"size:128"`
	Amount        float64    `json:"amount" gorm:"type:decimal(14,2);default:0"`
	Status        string     `json:"status" gorm:"size:16;not null;default:new"`
	Source        string     `json:"source" gorm:"size:64"`
	ManagerID     string     `json:"manager_id" gorm:"size:36;index"`
	Notes         string     `json:"notes" gorm:"type:text"`
	ClosedAt      *time.Time `json:"closed_at"`
	CreatedBy     string     `json:"created_by" gorm:"size:36"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Manager *User `json:"manager,omitempty" gorm:"foreignKey:ManagerID;constraint:-"`
}

func (Deal) TableName() string {
	return "deals"
}

// Deal funnel status
const (
	DealStatusNew        = "new"
	DealStatusInProgress = "in_progress"
	DealStatusWon        = "won"
	DealStatusLost       = "lost"
)
