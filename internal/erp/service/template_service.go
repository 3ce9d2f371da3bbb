package service

import (
	"context"
	"fmt"
	"time"

	"github.com/artelsoft/artel-erp/internal/config"
	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"github.com/artelsoft/artel-erp/internal/erp/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TemplateService manages process templates and instantiates projects from
// them.
type TemplateService struct {
	templateRepo  *repository.TemplateRepository
	projectRepo   *repository.ProjectRepository
	stageTypeRepo *repository.StageTypeRepository
	activityRepo  *repository.ActivityLogRepository
	pipeline      config.PipelineConfig
}

func NewTemplateService(
	templateRepo *repository.TemplateRepository,
	projectRepo *repository.ProjectRepository,
	stageTypeRepo *repository.StageTypeRepository,
	activityRepo *repository.ActivityLogRepository,
	pipeline config.PipelineConfig,
) *TemplateService {
	return &TemplateService{
		templateRepo:  templateRepo,
		projectRepo:   projectRepo,
		stageTypeRepo: stageTypeRepo,
		activityRepo:  activityRepo,
		pipeline:      pipeline,
	}
}

func (s *TemplateService) List(ctx context.Context, activeOnly bool) ([]entity.ProcessTemplate, error) {
	return s.templateRepo.List(ctx, activeOnly)
}

func (s *TemplateService) Get(ctx context.Context, id string) (*entity.ProcessTemplate, error) {
	return s.templateRepo.GetWithStages(ctx, id)
}

// CreateTemplateRequest may carry the initial stage list.
type CreateTemplateRequest struct {
	Name        string               `json:"name" binding:"required"`
	Description string               `json:"description"`
	Stages      []TemplateStageInput `json:"stages"`
}

// TemplateStageInput is one stage definition in create/replace payloads.
type TemplateStageInput struct {
	Name        string  `json:"name" binding:"required"`
	StageTypeID *string `json:"stage_type_id"`
}

func (s *TemplateService) Create(ctx context.Context, userID string, req *CreateTemplateRequest) (*entity.ProcessTemplate, error) {
	now := time.Now()
	tmpl := &entity.ProcessTemplate{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i, in := range req.Stages {
		tmpl.Stages = append(tmpl.Stages, entity.TemplateStage{
			ID:          uuid.New().String(),
			TemplateID:  tmpl.ID,
			Name:        in.Name,
			StageTypeID: in.StageTypeID,
			SortOrder:   i + 1,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	if err := s.templateRepo.Create(ctx, tmpl); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return tmpl, nil
}

// UpdateTemplateRequest: nil fields are left unchanged.
type UpdateTemplateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

func (s *TemplateService) Update(ctx context.Context, id string, req *UpdateTemplateRequest) (*entity.ProcessTemplate, error) {
	tmpl, err := s.templateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		tmpl.Name = *req.Name
	}
	if req.Description != nil {
		tmpl.Description = *req.Description
	}
	if req.IsActive != nil {
		tmpl.IsActive = *req.IsActive
	}
	tmpl.UpdatedAt = time.Now()
	if err := s.templateRepo.Update(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (s *TemplateService) Delete(ctx context.Context, id string) error {
	return s.templateRepo.Delete(ctx, id)
}

// Duplicate copies a template with all of its stages.
func (s *TemplateService) Duplicate(ctx context.Context, id, newName, userID string) (*entity.ProcessTemplate, error) {
	original, err := s.templateRepo.GetWithStages(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	copy := &entity.ProcessTemplate{
		ID:          uuid.New().String(),
		Name:        newName,
		Description: original.Description,
		IsActive:    true,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, st := range original.Stages {
		copy.Stages = append(copy.Stages, entity.TemplateStage{
			ID:          uuid.New().String(),
			TemplateID:  copy.ID,
			Name:        st.Name,
			StageTypeID: st.StageTypeID,
			SortOrder:   st.SortOrder,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	if err := s.templateRepo.Create(ctx, copy); err != nil {
		return nil, fmt.Errorf("duplicate template: %w", err)
	}
	return copy, nil
}

// ---- stage CRUD ----

func (s *TemplateService) AddStage(ctx context.Context, templateID string, in *TemplateStageInput) (*entity.TemplateStage, error) {
	if _, err := s.templateRepo.FindByID(ctx, templateID); err != nil {
		return nil, err
	}
	existing, err := s.templateRepo.ListStages(ctx, templateID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	stage := &entity.TemplateStage{
		ID:          uuid.New().String(),
		TemplateID:  templateID,
		Name:        in.Name,
		StageTypeID: in.StageTypeID,
		SortOrder:   len(existing) + 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.templateRepo.CreateStage(ctx, stage); err != nil {
		return nil, err
	}
	return stage, nil
}

// UpdateStageRequest: nil fields are left unchanged.
type UpdateStageRequest struct {
	Name        *string `json:"name"`
	StageTypeID *string `json:"stage_type_id"`
	SortOrder   *int    `json:"sort_order"`
}

func (s *TemplateService) UpdateStage(ctx context.Context, stageID string, req *UpdateStageRequest) (*entity.TemplateStage, error) {
	stage, err := s.templateRepo.FindStageByID(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		stage.Name = *req.Name
	}
	if req.StageTypeID != nil {
		stage.StageTypeID = req.StageTypeID
	}
	if req.SortOrder != nil {
		stage.SortOrder = *req.SortOrder
	}
	stage.UpdatedAt = time.Now()
	if err := s.templateRepo.UpdateStage(ctx, stage); err != nil {
		return nil, err
	}
	return stage, nil
}

func (s *TemplateService) DeleteStage(ctx context.Context, stageID string) error {
	return s.templateRepo.DeleteStage(ctx, stageID)
}

// ReplaceStages swaps the template's whole stage list, renumbering orders
// contiguously from 1.
func (s *TemplateService) ReplaceStages(ctx context.Context, templateID string, inputs []TemplateStageInput) ([]entity.TemplateStage, error) {
	if _, err := s.templateRepo.FindByID(ctx, templateID); err != nil {
		return nil, err
	}
	stages := make([]entity.TemplateStage, 0, len(inputs))
	for i, in := range inputs {
		stages = append(stages, entity.TemplateStage{
			ID:          uuid.New().String(),
			TemplateID:  templateID,
			Name:        in.Name,
			StageTypeID: in.StageTypeID,
			SortOrder:   i + 1,
		})
	}
	if err := s.templateRepo.ReplaceStages(ctx, templateID, stages); err != nil {
		return nil, err
	}
	return s.templateRepo.ListStages(ctx, templateID)
}

// ---- project instantiation ----

// InstantiateProjectInput describes the project to build from a template.
type InstantiateProjectInput struct {
	TemplateID  string     `json:"template_id" binding:"required"`
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	DealID      *string    `json:"deal_id"`
	ManagerID   string     `json:"manager_id"`
	Deadline    *time.Time `json:"deadline"`
}

// InstantiateProject copies every template stage into a live project stage
// inside one transaction, preserving order and stage type. Stages without a
// stage type are copied without one. Every stage starts pending; when the
// pipeline is configured so, the first stage starts in_progress instead.
func (s *TemplateService) InstantiateProject(ctx context.Context, input *InstantiateProjectInput, createdBy string) (*entity.Project, error) {
	template, err := s.templateRepo.GetWithStages(ctx, input.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}

	now := time.Now()
	project := &entity.Project{
		ID:          uuid.New().String(),
		DealID:      input.DealID,
		Name:        input.Name,
		Description: input.Description,
		Status:      entity.ProjectStatusActive,
		ManagerID:   input.ManagerID,
		Deadline:    input.Deadline,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.projectRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return fmt.Errorf("create project: %w", err)
		}

		for i, ts := range template.Stages {
			status := entity.StageStatusPending
			var startedAt *time.Time
			if i == 0 && s.pipeline.FirstStageInProgress {
				status = entity.StageStatusInProgress
				startedAt = &now
			}
			stage := &entity.ProjectStage{
				ID:          uuid.New().String(),
				ProjectID:   project.ID,
				Name:        ts.Name,
				StageTypeID: ts.StageTypeID,
				Status:      status,
				SortOrder:   ts.SortOrder,
				StartedAt:   startedAt,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.Create(stage).Error; err != nil {
				return fmt.Errorf("create stage %q: %w", ts.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activityRepo.LogActivity(ctx, "project", project.ID, entity.ActionCreate, "", project.Status,
		fmt.Sprintf("instantiated from template %q", template.Name), createdBy, "")

	return s.projectRepo.FindByID(ctx, project.ID)
}
