package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"github.com/artelsoft/artel-erp/internal/erp/repository"
	"github.com/artelsoft/artel-erp/internal/erp/sse"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"
)

// ErrInvalidTransition is returned for a stage status change the lifecycle
// does not allow.
var ErrInvalidTransition = fmt.Errorf("invalid stage status transition")

// stageTransitions maps each status to the statuses reachable from it.
var stageTransitions = map[string][]string{
	entity.StageStatusPending:    {entity.StageStatusInProgress, entity.StageStatusCancelled},
	entity.StageStatusInProgress: {entity.StageStatusCompleted, entity.StageStatusRejected, entity.StageStatusCancelled},
	entity.StageStatusRejected:   {entity.StageStatusInProgress, entity.StageStatusCancelled},
}

// ProjectService manages projects, their stages, stage documents and stage
// media comments.
type ProjectService struct {
	repo         *repository.ProjectRepository
	activityRepo *repository.ActivityLogRepository
	minioClient  *minio.Client
	bucketName   string
	hub          *sse.Hub
}

func NewProjectService(
	repo *repository.ProjectRepository,
	activityRepo *repository.ActivityLogRepository,
	minioClient *minio.Client,
	bucketName string,
	hub *sse.Hub,
) *ProjectService {
	return &ProjectService{
		repo:         repo,
		activityRepo: activityRepo,
		minioClient:  minioClient,
		bucketName:   bucketName,
		hub:          hub,
	}
}

func (s *ProjectService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Project, int64, error) {
	return s.repo.List(ctx, page, pageSize, filters)
}

func (s *ProjectService) Get(ctx context.Context, id string) (*entity.Project, error) {
	return s.repo.FindByID(ctx, id)
}

// CreateProjectRequest creates a bare project without template stages.
type CreateProjectRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	DealID      *string    `json:"deal_id"`
	ManagerID   string     `json:"manager_id"`
	Deadline    *time.Time `json:"deadline"`
}

func (s *ProjectService) Create(ctx context.Context, userID string, req *CreateProjectRequest) (*entity.Project, error) {
	now := time.Now()
	project := &entity.Project{
		ID:          uuid.New().String(),
		DealID:      req.DealID,
		Name:        req.Name,
		Description: req.Description,
		Status:      entity.ProjectStatusActive,
		ManagerID:   req.ManagerID,
		Deadline:    req.Deadline,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	s.activityRepo.LogActivity(ctx, "project", project.ID, entity.ActionCreate, "", project.Status, "", userID, "")
	return project, nil
}

// UpdateProjectRequest: nil fields are left unchanged.
type UpdateProjectRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	ManagerID   *string    `json:"manager_id"`
	Deadline    *time.Time `json:"deadline"`
}

func (s *ProjectService) Update(ctx context.Context, id, userID string, req *UpdateProjectRequest) (*entity.Project, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fromStatus := project.Status
	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	if req.ManagerID != nil {
		project.ManagerID = *req.ManagerID
	}
	if req.Deadline != nil {
		project.Deadline = req.Deadline
	}
	project.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, project); err != nil {
		return nil, err
	}
	if req.Status != nil && *req.Status != fromStatus {
		s.activityRepo.LogActivity(ctx, "project", id, entity.ActionStatusChange, fromStatus, project.Status, "", userID, "")
	} else {
		s.activityRepo.LogActivity(ctx, "project", id, entity.ActionUpdate, "", "", "", userID, "")
	}
	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.activityRepo.LogActivity(ctx, "project", id, entity.ActionDelete, "", "", "", userID, "")
	return nil
}

func (s *ProjectService) Activity(ctx context.Context, id string, page, pageSize int) ([]entity.ActivityLog, int64, error) {
	return s.activityRepo.FindByEntity(ctx, "project", id, page, pageSize)
}

// ---- stages ----

func (s *ProjectService) ListStages(ctx context.Context, projectID string) ([]entity.ProjectStage, error) {
	return s.repo.ListStages(ctx, projectID)
}

func (s *ProjectService) GetStage(ctx context.Context, stageID string) (*entity.ProjectStage, error) {
	return s.repo.FindStageByID(ctx, stageID)
}

// AddStageRequest appends a stage to a project's pipeline.
type AddStageRequest struct {
	Name        string     `json:"name" binding:"required"`
	StageTypeID *string    `json:"stage_type_id"`
	Deadline    *time.Time `json:"deadline"`
}

func (s *ProjectService) AddStage(ctx context.Context, projectID string, req *AddStageRequest) (*entity.ProjectStage, error) {
	if _, err := s.repo.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	existing, err := s.repo.ListStages(ctx, projectID)
	if err != nil {
		return nil, err
	}
	maxOrder := 0
	for _, st := range existing {
		if st.SortOrder > maxOrder {
			maxOrder = st.SortOrder
		}
	}
	now := time.Now()
	stage := &entity.ProjectStage{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		Name:        req.Name,
		StageTypeID: req.StageTypeID,
		Status:      entity.StageStatusPending,
		SortOrder:   maxOrder + 1,
		Deadline:    req.Deadline,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateStage(ctx, stage); err != nil {
		return nil, err
	}
	return stage, nil
}

// UpdateProjectStageRequest: nil fields are left unchanged.
type UpdateProjectStageRequest struct {
	Name        *string    `json:"name"`
	StageTypeID *string    `json:"stage_type_id"`
	Deadline    *time.Time `json:"deadline"`
	SortOrder   *int       `json:"sort_order"`
}

func (s *ProjectService) UpdateStage(ctx context.Context, stageID string, req *UpdateProjectStageRequest) (*entity.ProjectStage, error) {
	stage, err := s.repo.FindStageByID(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		stage.Name = *req.Name
	}
	if req.StageTypeID != nil {
		stage.StageTypeID = req.StageTypeID
	}
	if req.Deadline != nil {
		stage.Deadline = req.Deadline
	}
	if req.SortOrder != nil {
		stage.SortOrder = *req.SortOrder
	}
	stage.UpdatedAt = time.Now()
	if err := s.repo.UpdateStage(ctx, stage); err != nil {
		return nil, err
	}
	return stage, nil
}

// ChangeStageStatus validates the lifecycle transition, records audit and
// notifies the SSE stream. Completing a stage auto-starts the next pending
// stage of the pipeline.
func (s *ProjectService) ChangeStageStatus(ctx context.Context, stageID, newStatus, userID string) (*entity.ProjectStage, error) {
	stage, err := s.repo.FindStageByID(ctx, stageID)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range stageTransitions[stage.Status] {
		if next == newStatus {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, stage.Status, newStatus)
	}

	now := time.Now()
	fromStatus := stage.Status
	stage.Status = newStatus
	switch newStatus {
	case entity.StageStatusInProgress:
		stage.StartedAt = &now
	case entity.StageStatusCompleted:
		stage.CompletedAt = &now
	}
	stage.UpdatedAt = now

	// The status write and the auto-start of the next stage land together
	// or not at all.
	var next *entity.ProjectStage
	err = s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.NewProjectRepository(tx)
		if err := txRepo.UpdateStage(ctx, stage); err != nil {
			return err
		}
		if newStatus != entity.StageStatusCompleted {
			return nil
		}
		n, err := txRepo.NextPendingStage(ctx, stage.ProjectID, stage.SortOrder)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			return err
		}
		n.Status = entity.StageStatusInProgress
		n.StartedAt = &now
		n.UpdatedAt = now
		if err := txRepo.UpdateStage(ctx, n); err != nil {
			return err
		}
		next = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activityRepo.LogActivity(ctx, "stage", stageID, entity.ActionStatusChange, fromStatus, newStatus, stage.Name, userID, "")
	if s.hub != nil {
		s.hub.PublishStageUpdate(stage.ProjectID, stageID, newStatus)
	}
	if next != nil {
		s.activityRepo.LogActivity(ctx, "stage", next.ID, entity.ActionStatusChange,
			entity.StageStatusPending, entity.StageStatusInProgress, next.Name, userID, "")
		if s.hub != nil {
			s.hub.PublishStageUpdate(next.ProjectID, next.ID, next.Status)
		}
	}

	return stage, nil
}

// DeleteStage removes a stage; its documents and comments cascade away.
func (s *ProjectService) DeleteStage(ctx context.Context, stageID, userID string) error {
	stage, err := s.repo.FindStageByID(ctx, stageID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteStage(ctx, stageID); err != nil {
		return err
	}
	s.activityRepo.LogActivity(ctx, "stage", stageID, entity.ActionDelete, stage.Status, "", stage.Name, userID, "")
	return nil
}

// ---- stage documents ----

// UploadDocument streams the file into MinIO and keeps the metadata row.
// Without a MinIO client only the metadata is stored.
func (s *ProjectService) UploadDocument(ctx context.Context, stageID, userID, documentType, fileName string, fileSize int64, contentType string, reader io.Reader) (*entity.StageDocument, error) {
	if _, err := s.repo.FindStageByID(ctx, stageID); err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("stages/%s/%s%s", stageID, uuid.New().String()[:8], filepath.Ext(fileName))
	if s.minioClient != nil {
		_, err := s.minioClient.PutObject(ctx, s.bucketName, objectName, reader, fileSize, minio.PutObjectOptions{
			ContentType: contentType,
		})
		if err != nil {
			return nil, fmt.Errorf("upload file: %w", err)
		}
	}

	if documentType == "" {
		documentType = "general"
	}
	doc := &entity.StageDocument{
		ID:           uuid.New().String(),
		StageID:      stageID,
		DocumentType: documentType,
		FileName:     fileName,
		FilePath:     objectName,
		FileSize:     fileSize,
		MimeType:     contentType,
		UploadedBy:   userID,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}

func (s *ProjectService) ListDocuments(ctx context.Context, stageID string) ([]entity.StageDocument, error) {
	return s.repo.ListDocuments(ctx, stageID)
}

func (s *ProjectService) DeleteDocument(ctx context.Context, id string) error {
	doc, err := s.repo.FindDocumentByID(ctx, id)
	if err != nil {
		return err
	}
	if s.minioClient != nil {
		s.minioClient.RemoveObject(ctx, s.bucketName, doc.FilePath, minio.RemoveObjectOptions{})
	}
	return s.repo.DeleteDocument(ctx, id)
}

// ---- stage media comments ----

// UpsertMediaComment stores the single comment of a (stage, media) pair:
// insert when absent, overwrite when present.
func (s *ProjectService) UpsertMediaComment(ctx context.Context, stageID, mediaID, userID, text string) (*entity.StageMediaComment, error) {
	if _, err := s.repo.FindStageByID(ctx, stageID); err != nil {
		return nil, err
	}
	now := time.Now()
	comment := &entity.StageMediaComment{
		ID:        uuid.New().String(),
		StageID:   stageID,
		MediaID:   mediaID,
		UserID:    userID,
		Comment:   text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.UpsertMediaComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("upsert comment: %w", err)
	}
	s.activityRepo.LogActivity(ctx, "stage", stageID, entity.ActionComment, "", "", mediaID, userID, "")
	// Re-read: on conflict the stored row keeps its original id.
	comments, err := s.repo.ListMediaComments(ctx, stageID, mediaID)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, repository.ErrNotFound
	}
	return &comments[0], nil
}

func (s *ProjectService) ListMediaComments(ctx context.Context, stageID, mediaID string) ([]entity.StageMediaComment, error) {
	comments, err := s.repo.ListMediaComments(ctx, stageID, mediaID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []entity.StageMediaComment{}
	}
	return comments, nil
}

// UpdateMediaCommentText edits an existing comment by id.
func (s *ProjectService) UpdateMediaCommentText(ctx context.Context, id, text string) (*entity.StageMediaComment, error) {
	comment, err := s.repo.FindMediaCommentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	comment.Comment = text
	comment.UpdatedAt = time.Now()
	if err := s.repo.UpdateMediaComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *ProjectService) DeleteMediaComment(ctx context.Context, id string) error {
	return s.repo.DeleteMediaComment(ctx, id)
}
