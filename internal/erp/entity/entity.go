package entity

// AllModels lists every table in migration-safe order (referenced tables
// first). Used by the base-schema migration step and by test setup.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Role{},
		&StageType{},
		&ProcessTemplate{},
		&TemplateStage{},
		&Deal{},
		&Project{},
		&ProjectStage{},
		&StageDocument{},
		&StageMediaComment{},
		&WarehouseCategory{},
		&WarehouseItem{},
		&StockMovement{},
		&Task{},
		&TaskAttachment{},
		&Message{},
		&ActivityLog{},
	}
}
