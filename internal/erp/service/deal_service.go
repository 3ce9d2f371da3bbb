package service

import (
	"context"
	"fmt"
	"time"

	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"github.com/artelsoft/artel-erp/internal/erp/repository"
	"github.com/google/uuid"
)

// ErrDealNotWon is returned when converting a deal that has not been won.
var ErrDealNotWon = fmt.Errorf("deal is not won")

// ErrInvalidDealTransition is returned for a status change outside the
// funnel.
var ErrInvalidDealTransition = fmt.Errorf("invalid deal status transition")

// dealTransitions maps each funnel status to the statuses reachable from it.
// Won is terminal: a won deal converts to a project instead of moving on.
var dealTransitions = map[string][]string{
	entity.DealStatusNew:        {entity.DealStatusInProgress, entity.DealStatusWon, entity.DealStatusLost},
	entity.DealStatusInProgress: {entity.DealStatusWon, entity.DealStatusLost},
	entity.DealStatusLost:       {entity.DealStatusInProgress},
}

// DealService manages the CRM funnel and conversion of won deals into
// projects.
type DealService struct {
	repo         *repository.DealRepository
	templateSvc  *TemplateService
	activityRepo *repository.ActivityLogRepository
}

func NewDealService(repo *repository.DealRepository, templateSvc *TemplateService, activityRepo *repository.ActivityLogRepository) *DealService {
	return &DealService{
		repo:         repo,
		templateSvc:  templateSvc,
		activityRepo: activityRepo,
	}
}

func (s *DealService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Deal, int64, error) {
	return s.repo.List(ctx, page, pageSize, filters)
}

func (s *DealService) Get(ctx context.Context, id string) (*entity.Deal, error) {
	return s.repo.FindByID(ctx, id)
}

type CreateDealRequest struct {
	Title         string  `json:"title" binding:"required"`
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	CustomerEmail string  `json:"customer_email"`
	Amount        float64 `json:"amount"`
	Source        string  `json:"source"`
	ManagerID     string  `json:"manager_id"`
	Notes         string  `json:"notes"`
}

func (s *DealService) Create(ctx context.Context, userID string, req *CreateDealRequest) (*entity.Deal, error) {
	now := time.Now()
	deal := &entity.Deal{
		ID:            uuid.New().String(),
		Title:         req.Title,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Amount:        req.Amount,
		Status:        entity.DealStatusNew,
		Source:        req.Source,
		ManagerID:     req.ManagerID,
		Notes:         req.Notes,
		CreatedBy:     userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, deal); err != nil {
		return nil, fmt.Errorf("create deal: %w", err)
	}
	s.activityRepo.LogActivity(ctx, "deal", deal.ID, entity.ActionCreate, "", deal.Status, "", userID, "")
	return deal, nil
}

// UpdateDealRequest: nil fields are left unchanged.
type UpdateDealRequest struct {
	Title         *string  `json:"title"`
	CustomerName  *string  `json:"customer_name"`
	CustomerPhone *string  `json:"customer_phone"`
	CustomerEmail *string  `json:"customer_email"`
	Amount        *float64 `json:"amount"`
	Source        *string  `json:"source"`
	ManagerID     *string  `json:"manager_id"`
	Notes         *string  `json:"notes"`
}

func (s *DealService) Update(ctx context.Context, id, userID string, req *UpdateDealRequest) (*entity.Deal, error) {
	deal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		deal.Title = *req.Title
	}
	if req.CustomerName != nil {
		deal.CustomerName = *req.CustomerName
	}
	if req.CustomerPhone != nil {
		deal.CustomerPhone = *req.CustomerPhone
	}
	if req.CustomerEmail != nil {
		deal.CustomerEmail = *req.CustomerEmail
	}
	if req.Amount != nil {
		deal.Amount = *req.Amount
	}
	if req.Source != nil {
		deal.Source = *req.Source
	}
	if req.ManagerID != nil {
		deal.ManagerID = *req.ManagerID
	}
	if req.Notes != nil {
		deal.Notes = *req.Notes
	}
	deal.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, deal); err != nil {
		return nil, err
	}
	s.activityRepo.LogActivity(ctx, "deal", id, entity.ActionUpdate, "", "", "", userID, "")
	return deal, nil
}

// ChangeStatus moves a deal along the funnel. Won and lost deals get a
// ClosedAt stamp; reopening a lost deal clears it.
func (s *DealService) ChangeStatus(ctx context.Context, id, newStatus, userID string) (*entity.Deal, error) {
	deal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fromStatus := deal.Status
	if fromStatus == newStatus {
		return deal, nil
	}
	allowed := false
	for _, next := range dealTransitions[fromStatus] {
		if next == newStatus {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidDealTransition, fromStatus, newStatus)
	}
	deal.Status = newStatus
	now := time.Now()
	switch newStatus {
	case entity.DealStatusWon, entity.DealStatusLost:
		deal.ClosedAt = &now
	default:
		deal.ClosedAt = nil
	}
	deal.UpdatedAt = now
	if err := s.repo.Update(ctx, deal); err != nil {
		return nil, err
	}
	s.activityRepo.LogActivity(ctx, "deal", id, entity.ActionStatusChange, fromStatus, newStatus, "", userID, "")
	return deal, nil
}

func (s *DealService) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.activityRepo.LogActivity(ctx, "deal", id, entity.ActionDelete, "", "", "", userID, "")
	return nil
}

func (s *DealService) Activity(ctx context.Context, id string, page, pageSize int) ([]entity.ActivityLog, int64, error) {
	return s.activityRepo.FindByEntity(ctx, "deal", id, page, pageSize)
}

// ConvertRequest turns a won deal into a project built from a process
// template. Name defaults to the deal title.
type ConvertRequest struct {
	TemplateID string     `json:"template_id" binding:"required"`
	Name       string     `json:"name"`
	ManagerID  string     `json:"manager_id"`
	Deadline   *time.Time `json:"deadline"`
}

func (s *DealService) Convert(ctx context.Context, dealID, userID string, req *ConvertRequest) (*entity.Project, error) {
	deal, err := s.repo.FindByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if deal.Status != entity.DealStatusWon {
		return nil, fmt.Errorf("%w: %s", ErrDealNotWon, deal.Status)
	}

	name := req.Name
	if name == "" {
		name = deal.Title
	}
	managerID := req.ManagerID
	if managerID == "" {
		managerID = deal.ManagerID
	}

	project, err := s.templateSvc.InstantiateProject(ctx, &InstantiateProjectInput{
		TemplateID:  req.TemplateID,
		Name:        name,
		Description: deal.Notes,
		DealID:      &deal.ID,
		ManagerID:   managerID,
		Deadline:    req.Deadline,
	}, userID)
	if err != nil {
		return nil, err
	}
	s.activityRepo.LogActivity(ctx, "deal", dealID, entity.ActionUpdate, "", "", "converted to project "+project.ID, userID, "")
	return project, nil
}
