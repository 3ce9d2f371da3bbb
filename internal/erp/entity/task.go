package entity

import "time"

// Task is a standalone to-do item, optionally bound to a project.
type Task struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	ProjectID   *string    `json:"project_id" gorm:"size:36;index"`
	Title       string     `json:"title" gorm:"size:256;not null"`
	Description string     `json:"description" gorm:"type:text"`
	Status      string     `json:"status" gorm:"size:16;not null;default:pending"`
	Priority    string     `json:"priority" gorm:"size:16;not null;default:medium"`
	AssigneeID  string     `json:"assignee_id" gorm:"size:36;index"`
	DueDate     *time.Time `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedBy   string     `json:"created_by" gorm:"size:36"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Project     *Project         `json:"project,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:SET NULL"`
	Assignee    *User            `json:"assignee,omitempty" gorm:"foreignKey:AssigneeID;constraint:-"`
	Attachments []TaskAttachment `json:"attachments,omitempty" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

func (Task) TableName() string {
	return "tasks"
}

// TaskAttachment is file metadata attached to a task.
type TaskAttachment struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	TaskID     string    `json:"task_id" gorm:"size:36;not null;index"`
	FileName   string    `json:"file_name" gorm:"size:256;not null"`
	FilePath   string    `json:"file_path" gorm:"size:512;not null"`
	FileSize   int64     `json:"file_size"`
	MimeType   string    `json:"mime_type" gorm:"size:128"`
	UploadedBy string    `json:"uploaded_by" gorm:"size:36"`
	CreatedAt  time.Time `json:"created_at"`
}

func (TaskAttachment) TableName() string {
	return "task_attachments"
}

// Task status
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
)

// Task priority
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)
