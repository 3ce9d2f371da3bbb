package entity

import "time"

// Project is one customer order going through the production pipeline.
// Stages are normally instantiated from a ProcessTemplate at creation time.
type Project struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	DealID      *string    `json:"deal_id" gorm:"size:36;index"`
	Name        string     `json:"name" gorm:"size:256;not null"`
	Description string     `json:"description" gorm:"type:text"`
	Status      string     `json:"status" gorm:"size:16;not null;default:active"`
	ManagerID   string     `json:"manager_id" gorm:"size:36"`
	Deadline    *time.Time `json:"deadline"`
	CreatedBy   string     `json:"created_by" gorm:"size:36"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Deal    *Deal          `json:"deal,omitempty" gorm:"foreignKey:DealID;constraint:OnDelete:SET NULL"`
	Manager *User          `json:"manager,omitempty" gorm:"foreignKey:ManagerID;constraint:-"`
	Stages  []ProjectStage `json:"stages,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

func (Project) TableName() string {
	return "projects"
}

// ProjectStage is a concrete, stateful step within one project's pipeline.
type ProjectStage struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	ProjectID   string     `json:"project_id" gorm:"size:36;not null;index"`
	Name        string     `json:"name" gorm:"size:128;not null"`
	StageTypeID *string    `json:"stage_type_id" gorm:"size:36"`
	Status      string     `json:"status" gorm:"size:16;not null;default:pending"`
	SortOrder   int        `json:"sort_order" gorm:"not null;default:0"`
	Deadline    *time.Time `json:"deadline"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	StageType *StageType          `json:"stage_type,omitempty" gorm:"foreignKey:StageTypeID;constraint:OnDelete:SET NULL"`
	Documents []StageDocument     `json:"documents,omitempty" gorm:"foreignKey:StageID;constraint:OnDelete:CASCADE"`
	Comments  []StageMediaComment `json:"comments,omitempty" gorm:"foreignKey:StageID;constraint:OnDelete:CASCADE"`
}

func (ProjectStage) TableName() string {
	return "project_stages"
}

// StageDocument is a file attached to a stage. The binary lives in MinIO;
// only metadata is stored here.
type StageDocument struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	StageID      string    `json:"stage_id" gorm:"size:36;not null;index"`
	DocumentType string    `json:"document_type" gorm:"size:32;not null;default:general"`
	FileName     string    `json:"file_name" gorm:"size:256;not null"`
	FilePath     string    `json:"file_path" gorm:"size:512;not null"`
	FileSize     int64     `json:"file_size"`
	MimeType     string    `json:"mime_type" gorm:"size:128"`
	UploadedBy   string    `json:"uploaded_by" gorm:"size:36"`
	CreatedAt    time.Time `json:"created_at"`

	// No FK on the uploader: the id comes from the token and the row must
	// survive user removal.
	Uploader *User `json:"uploader,omitempty" gorm:"foreignKey:UploadedBy;constraint:-"`
}

func (StageDocument) TableName() string {
	return "stage_documents"
}

// StageMediaComment holds at most one comment per (stage, media) pair.
// The unique index backs the atomic ON CONFLICT upsert in the repository.
type StageMediaComment struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	StageID   string    `json:"stage_id" gorm:"size:36;not null;uniqueIndex:idx_stage_media,priority:1"`
	MediaID   string    `json:"media_id" gorm:"size:64;not null;uniqueIndex:idx_stage_media,priority:2"`
	UserID    string    `json:"user_id" gorm:"size:36;not null"`
	Comment   string    `json:"comment" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:-"`
}

func (StageMediaComment) TableName() string {
	return "stage_media_comments"
}

// Project status
const (
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
	ProjectStatusCancelled = "cancelled"
)

// Stage status lifecycle: pending -> in_progress -> completed, with
// rejected/cancelled side exits.
const (
	StageStatusPending    = "pending"
	StageStatusInProgress = "in_progress"
	StageStatusCompleted  = "completed"
	StageStatusRejected   = "rejected"
	StageStatusCancelled  = "cancelled"
)
