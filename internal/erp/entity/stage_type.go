package entity

import "time"

// StageType is the reference catalog of production step classifications.
// Seeded by migrations, rarely mutated afterwards.
type StageType struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Code        string    `json:"code" gorm:"size:64;not null;uniqueIndex"`
	Name        string    `json:"name" gorm:"size:128;not null"`
	Icon        string    `json:"icon" gorm:"size:64"`
	Description string    `json:"description" gorm:"type:text"`
	IsActive    bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (StageType) TableName() string {
	return "stage_types"
}

// Built-in stage type codes
const (
	StageTypeMeasurement  = "measurement"
	StageTypeDesign       = "design"
	StageTypeProcurement  = "procurement"
	StageTypeProduction   = "production"
	StageTypeInstallation = "installation"
	StageTypeDelivery     = "delivery"
)
