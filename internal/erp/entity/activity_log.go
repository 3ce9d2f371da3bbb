package entity

import "time"

// ActivityLog is the append-only audit trail shown next to deals, projects
// and tasks. Writes are best-effort: a failed log never fails the mutation
// it describes.
type ActivityLog struct {
	ID         string `json:"id" gorm:"primaryKey;size:36"`
	EntityType string `json:"entity_type" gorm:"size:32;not null;index:idx_activity_entity"`
	EntityID   string `json:"entity_id" gorm:"size:36;not null;index:idx_activity_entity"`

	Action     string `json:"action" gorm:"size:64;not null"`
	FromStatus string `json:"from_status" gorm:"size:32"`
	ToStatus   string `json:"to_status" gorm:"size:32"`
	Content    string `json:"content" gorm:"type:text"`
	Metadata   JSONB  `json:"metadata" gorm:"type:jsonb"`

	OperatorID   string    `json:"operator_id" gorm:"size:36"`
	OperatorName string    `json:"operator_name" gorm:"size:128"`
	CreatedAt    time.Time `json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}

// Activity actions
const (
	ActionCreate       = "create"
	ActionUpdate       = "update"
	ActionDelete       = "delete"
	ActionStatusChange = "status_change"
	ActionComment      = "comment"
)
