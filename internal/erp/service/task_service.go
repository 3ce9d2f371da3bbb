package service

import (
	"context"
	"fmt"
	"time"

	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"github.com/artelsoft/artel-erp/internal/erp/repository"
	"github.com/google/uuid"
)

// TaskService manages standalone tasks and their attachments.
type TaskService struct {
	repo         *repository.TaskRepository
	activityRepo *repository.ActivityLogRepository
}

func NewTaskService(repo *repository.TaskRepository, activityRepo *repository.ActivityLogRepository) *TaskService {
	return &TaskService{repo: repo, activityRepo: activityRepo}
}

func (s *TaskService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Task, int64, error) {
	return s.repo.List(ctx, page, pageSize, filters)
}

func (s *TaskService) Get(ctx context.Context, id string) (*entity.Task, error) {
	return s.repo.FindByID(ctx, id)
}

type CreateTaskRequest struct {
	ProjectID   *string    `json:"project_id"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	AssigneeID  string     `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
}

func (s *TaskService) Create(ctx context.Context, userID string, req *CreateTaskRequest) (*entity.Task, error) {
	priority := req.Priority
	if priority == "" {
		priority = entity.TaskPriorityMedium
	}
	now := time.Now()
	task := &entity.Task{
		ID:          uuid.New().String(),
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      entity.TaskStatusPending,
		Priority:    priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.activityRepo.LogActivity(ctx, "task", task.ID, entity.ActionCreate, "", task.Status, "", userID, "")
	return task, nil
}

// UpdateTaskRequest: nil fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	AssigneeID  *string    `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
}

func (s *TaskService) Update(ctx context.Context, id, userID string, req *UpdateTaskRequest) (*entity.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fromStatus := task.Status
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
		if *req.Status == entity.TaskStatusCompleted && task.CompletedAt == nil {
			now := time.Now()
			task.CompletedAt = &now
		}
		if *req.Status != entity.TaskStatusCompleted {
			task.CompletedAt = nil
		}
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.AssigneeID != nil {
		task.AssigneeID = *req.AssigneeID
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	task.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	if req.Status != nil && *req.Status != fromStatus {
		s.activityRepo.LogActivity(ctx, "task", id, entity.ActionStatusChange, fromStatus, task.Status, "", userID, "")
	} else {
		s.activityRepo.LogActivity(ctx, "task", id, entity.ActionUpdate, "", "", "", userID, "")
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.activityRepo.LogActivity(ctx, "task", id, entity.ActionDelete, "", "", "", userID, "")
	return nil
}

func (s *TaskService) AddAttachment(ctx context.Context, taskID, userID, fileName, filePath string, fileSize int64, mimeType string) (*entity.TaskAttachment, error) {
	if _, err := s.repo.FindByID(ctx, taskID); err != nil {
		return nil, err
	}
	att := &entity.TaskAttachment{
		ID:         uuid.New().String(),
		TaskID:     taskID,
		FileName:   fileName,
		FilePath:   filePath,
		FileSize:   fileSize,
		MimeType:   mimeType,
		UploadedBy: userID,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.CreateAttachment(ctx, att); err != nil {
		return nil, err
	}
	return att, nil
}

func (s *TaskService) ListAttachments(ctx context.Context, taskID string) ([]entity.TaskAttachment, error) {
	return s.repo.ListAttachments(ctx, taskID)
}

func (s *TaskService) DeleteAttachment(ctx context.Context, id string) error {
	return s.repo.DeleteAttachment(ctx, id)
}
