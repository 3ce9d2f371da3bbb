package service

import (
	"context"
	"time"

	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"github.com/artelsoft/artel-erp/internal/erp/repository"
	"github.com/google/uuid"
)

// StageTypeService manages the stage-type reference catalog.
type StageTypeService struct {
	repo *repository.StageTypeRepository
}

func NewStageTypeService(repo *repository.StageTypeRepository) *StageTypeService {
	return &StageTypeService{repo: repo}
}

func (s *StageTypeService) List(ctx context.Context, all bool) ([]entity.StageType, error) {
	return s.repo.List(ctx, all)
}

func (s *StageTypeService) Get(ctx context.Context, id string) (*entity.StageType, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *StageTypeService) GetByCode(ctx context.Context, code string) (*entity.StageType, error) {
	return s.repo.FindByCode(ctx, code)
}

// CreateStageTypeRequest for the admin catalog endpoint.
type CreateStageTypeRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

func (s *StageTypeService) Create(ctx context.Context, req *CreateStageTypeRequest) (*entity.StageType, error) {
	st := &entity.StageType{
		ID:          uuid.New().String(),
		Code:        req.Code,
		Name:        req.Name,
		Icon:        req.Icon,
		Description: req.Description,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// UpdateStageTypeRequest: nil fields are left unchanged.
type UpdateStageTypeRequest struct {
	Name        *string `json:"name"`
	Icon        *string `json:"icon"`
	Description *string `json:"description"`
}

func (s *StageTypeService) Update(ctx context.Context, id string, req *UpdateStageTypeRequest) (*entity.StageType, error) {
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		st.Name = *req.Name
	}
	if req.Icon != nil {
		st.Icon = *req.Icon
	}
	if req.Description != nil {
		st.Description = *req.Description
	}
	st.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// SetActive flips the activity flag. Activating an already-active type is a
// no-op that still returns the current row.
func (s *StageTypeService) SetActive(ctx context.Context, id string, active bool) (*entity.StageType, error) {
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st.IsActive == active {
		return st, nil
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	st.IsActive = active
	return st, nil
}

// Toggle inverts the activity flag.
func (s *StageTypeService) Toggle(ctx context.Context, id string) (*entity.StageType, error) {
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.SetActive(ctx, id, !st.IsActive)
}
