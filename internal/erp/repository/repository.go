package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories holds one repository per aggregate.
type Repositories struct {
	User        *UserRepository
	StageType   *StageTypeRepository
	Template    *TemplateRepository
	Project     *ProjectRepository
	Deal        *DealRepository
	Task        *TaskRepository
	Warehouse   *WarehouseRepository
	Message     *MessageRepository
	ActivityLog *ActivityLogRepository
}

// NewRepositories wires every repository to the shared DB handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		StageType:   NewStageTypeRepository(db),
		Template:    NewTemplateRepository(db),
		Project:     NewProjectRepository(db),
		Deal:        NewDealRepository(db),
		Task:        NewTaskRepository(db),
		Warehouse:   NewWarehouseRepository(db),
		Message:     NewMessageRepository(db),
		ActivityLog: NewActivityLogRepository(db),
	}
}
