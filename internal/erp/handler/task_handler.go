package handler

import (
	"errors"

	"github.com/artelsoft/artel-erp/internal/erp/repository"
	"github.com/artelsoft/artel-erp/internal/erp/service"
	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// List GET /api/v1/tasks
func (h *TaskHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":      c.Query("status"),
		"project_id":  c.Query("project_id"),
		"assignee_id": c.Query("assignee_id"),
		"priority":    c.Query("priority"),
	}
	tasks, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "list tasks: "+err.Error())
		return
	}
	Success(c, ListResponse{Items: tasks, Pagination: NewPagination(page, pageSize, total)})
}

// Get GET /api/v1/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "task not found")
			return
		}
		InternalError(c, "get task: "+err.Error())
		return
	}
	Success(c, task)
}

// Create POST /api/v1/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req service.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	task, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		InternalError(c, "create task: "+err.Error())
		return
	}
	Created(c, task)
}

// Update PUT /api/v1/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	var req service.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	task, err := h.svc.Update(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "task not found")
			return
		}
		InternalError(c, "update task: "+err.Error())
		return
	}
	Success(c, task)
}

// Delete DELETE /api/v1/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "task not found")
			return
		}
		InternalError(c, "delete task: "+err.Error())
		return
	}
	Success(c, nil)
}

type addAttachmentRequest struct {
	FileName string `json:"file_name" binding:"required"`
	FilePath string `json:"file_path" binding:"required"`
	FileSize int64  `json:"file_size"`
	MimeType string `json:"mime_type"`
}

// AddAttachment POST /api/v1/tasks/:id/attachments
func (h *TaskHandler) AddAttachment(c *gin.Context) {
	var req addAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	att, err := h.svc.AddAttachment(c.Request.Context(), c.Param("id"), GetUserID(c),
		req.FileName, req.FilePath, req.FileSize, req.MimeType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "task not found")
			return
		}
		InternalError(c, "add attachment: "+err.Error())
		return
	}
	Created(c, att)
}

// ListAttachments GET /api/v1/tasks/:id/attachments
func (h *TaskHandler) ListAttachments(c *gin.Context) {
	atts, err := h.svc.ListAttachments(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, "list attachments: "+err.Error())
		return
	}
	Success(c, gin.H{"items": atts})
}

// DeleteAttachment DELETE /api/v1/attachments/:attachmentId
func (h *TaskHandler) DeleteAttachment(c *gin.Context) {
	if err := h.svc.DeleteAttachment(c.Request.Context(), c.Param("attachmentId")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "attachment not found")
			return
		}
		InternalError(c, "delete attachment: "+err.Error())
		return
	}
	Success(c, nil)
}
