package entity

import "time"

// ProcessTemplate is a reusable ordered list of stage definitions used to
// instantiate a project's actual stages.
type ProcessTemplate struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"size:128;not null"`
	Description string    `json:"description" gorm:"type:text"`
	IsActive    bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedBy   string    `json:"created_by" gorm:"size:36"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Stages []TemplateStage `json:"stages,omitempty" gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE"`
}

func (ProcessTemplate) TableName() string {
	return "process_templates"
}

// TemplateStage is one step of a process template. StageTypeID is nullable:
// a stage without a classification is copied as-is on instantiation.
type TemplateStage struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	TemplateID  string    `json:"template_id" gorm:"size:36;not null;index"`
	Name        string    `json:"name" gorm:"size:128;not null"`
	StageTypeID *string   `json:"stage_type_id" gorm:"size:36"`
	SortOrder   int       `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	StageType *StageType `json:"stage_type,omitempty" gorm:"foreignKey:StageTypeID;constraint:OnDelete:SET NULL"`
}

func (TemplateStage) TableName() string {
	return "template_stages"
}
