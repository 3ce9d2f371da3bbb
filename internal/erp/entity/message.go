package entity

import "time"

// Message is one entry of a chat-like thread attached to a deal, project or
// stage (related_type + related_id).
type Message struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	RelatedType string    `json:"related_type" gorm:"size:32;not null;index:idx_message_related"`
	RelatedID   string    `json:"related_id" gorm:"size:36;not null;index:idx_message_related"`
	UserID      string    `json:"user_id" gorm:"size:36;not null"`
	Body        string    `json:"body" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:-"`
}

func (Message) TableName() string {
	return "messages"
}

// Message thread scopes
const (
	RelatedTypeDeal    = "deal"
	RelatedTypeProject = "project"
	RelatedTypeStage   = "stage"
	RelatedTypeTask    = "task"
)
