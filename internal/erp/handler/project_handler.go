package handler

import (
	"errors"
	"fmt"

	"github.com/artelsoft/artel-erp/internal/erp/repository"
	"github.com/artelsoft/artel-erp/internal/erp/service"
	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	svc *service.ProjectService
}

func NewProjectHandler(svc *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// List GET /api/v1/projects
func (h *ProjectHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":     c.Query("status"),
		"manager_id": c.Query("manager_id"),
		"deal_id":    c.Query("deal_id"),
		"keyword":    c.Query("keyword"),
	}
	projects, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "list projects: "+err.Error())
		return
	}
	Success(c, ListResponse{Items: projects, Pagination: NewPagination(page, pageSize, total)})
}

// Get GET /api/v1/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "project not found")
			return
		}
		InternalError(c, "get project: "+err.Error())
		return
	}
	Success(c, project)
}

// Create POST /api/v1/projects (bare project, no template)
func (h *ProjectHandler) Create(c *gin.Context) {
	var req service.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	project, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		InternalError(c, "create project: "+err.Error())
		return
	}
	Created(c, project)
}

// Update PUT /api/v1/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	var req service.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	project, err := h.svc.Update(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "project not found")
			return
		}
		InternalError(c, "update project: "+err.Error())
		return
	}
	Success(c, project)
}

// Delete DELETE /api/v1/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "project not found")
			return
		}
		InternalError(c, "delete project: "+err.Error())
		return
	}
	Success(c, nil)
}

// Activity GET /api/v1/projects/:id/activity
func (h *ProjectHandler) Activity(c *gin.Context) {
	page, pageSize := GetPagination(c)
	logs, total, err := h.svc.Activity(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		InternalError(c, "get activity: "+err.Error())
		return
	}
	Success(c, ListResponse{Items: logs, Pagination: NewPagination(page, pageSize, total)})
}

// ---- stages ----

// ListStages GET /api/v1/projects/:id/stages
func (h *ProjectHandler) ListStages(c *gin.Context) {
	stages, err := h.svc.ListStages(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, "list stages: "+err.Error())
		return
	}
	Success(c, gin.H{"items": stages})
}

// GetStage GET /api/v1/stages/:stageId
func (h *ProjectHandler) GetStage(c *gin.Context) {
	stage, err := h.svc.GetStage(c.Request.Context(), c.Param("stageId"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "stage not found")
			return
		}
		InternalError(c, "get stage: "+err.Error())
		return
	}
	Success(c, stage)
}

// AddStage POST /api/v1/projects/:id/stages
func (h *ProjectHandler) AddStage(c *gin.Context) {
	var req service.AddStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	stage, err := h.svc.AddStage(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "project not found")
			return
		}
		InternalError(c, "add stage: "+err.Error())
		return
	}
	Created(c, stage)
}

// UpdateStage PUT /api/v1/stages/:stageId
func (h *ProjectHandler) UpdateStage(c *gin.Context) {
	var req service.UpdateProjectStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	stage, err := h.svc.UpdateStage(c.Request.Context(), c.Param("stageId"), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "stage not found")
			return
		}
		InternalError(c, "update stage: "+err.Error())
		return
	}
	Success(c, stage)
}

type stageStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ChangeStageStatus PATCH /api/v1/stages/:stageId/status
func (h *ProjectHandler) ChangeStageStatus(c *gin.Context) {
	var req stageStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	stage, err := h.svc.ChangeStageStatus(c.Request.Context(), c.Param("stageId"), req.Status, GetUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "stage not found")
			return
		}
		if errors.Is(err, service.ErrInvalidTransition) {
			Conflict(c, err.Error())
			return
		}
		InternalError(c, "change stage status: "+err.Error())
		return
	}
	Success(c, stage)
}

// DeleteStage DELETE /api/v1/stages/:stageId
func (h *ProjectHandler) DeleteStage(c *gin.Context) {
	if err := h.svc.DeleteStage(c.Request.Context(), c.Param("stageId"), GetUserID(c)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "stage not found")
			return
		}
		InternalError(c, "delete stage: "+err.Error())
		return
	}
	Success(c, nil)
}

// ---- stage documents ----

// UploadDocument POST /api/v1/stages/:stageId/documents (multipart)
func (h *ProjectHandler) UploadDocument(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "file is required")
		return
	}
	src, err := file.Open()
	if err != nil {
		InternalError(c, "open upload: "+err.Error())
		return
	}
	defer src.Close()

	doc, err := h.svc.UploadDocument(
		c.Request.Context(),
		c.Param("stageId"),
		GetUserID(c),
		c.PostForm("document_type"),
		file.Filename,
		file.Size,
		file.Header.Get("Content-Type"),
		src,
	)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "stage not found")
			return
		}
		InternalError(c, "upload document: "+err.Error())
		return
	}
	Created(c, doc)
}

// ListDocuments GET /api/v1/stages/:stageId/documents
func (h *ProjectHandler) ListDocuments(c *gin.Context) {
	docs, err := h.svc.ListDocuments(c.Request.Context(), c.Param("stageId"))
	if err != nil {
		InternalError(c, "list documents: "+err.Error())
		return
	}
	Success(c, gin.H{"items": docs})
}

// DeleteDocument DELETE /api/v1/documents/:docId
func (h *ProjectHandler) DeleteDocument(c *gin.Context) {
	if err := h.svc.DeleteDocument(c.Request.Context(), c.Param("docId")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "document not found")
			return
		}
		InternalError(c, "delete document: "+err.Error())
		return
	}
	Success(c, nil)
}

// ---- stage media comments ----

type mediaCommentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

// UpsertMediaComment PUT /api/v1/stages/:stageId/media/:mediaId/comment
func (h *ProjectHandler) UpsertMediaComment(c *gin.Context) {
	var req mediaCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	comment, err := h.svc.UpsertMediaComment(
		c.Request.Context(),
		c.Param("stageId"),
		c.Param("mediaId"),
		GetUserID(c),
		req.Comment,
	)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "stage not found")
			return
		}
		InternalError(c, "save comment: "+err.Error())
		return
	}
	Success(c, comment)
}

// ListMediaComments GET /api/v1/stages/:stageId/comments?media_id=xxx
// Always 200 with an items array, empty when nothing is stored.
func (h *ProjectHandler) ListMediaComments(c *gin.Context) {
	comments, err := h.svc.ListMediaComments(c.Request.Context(), c.Param("stageId"), c.Query("media_id"))
	if err != nil {
		InternalError(c, "list comments: "+err.Error())
		return
	}
	Success(c, gin.H{"items": comments})
}

// UpdateMediaComment PUT /api/v1/comments/:commentId
func (h *ProjectHandler) UpdateMediaComment(c *gin.Context) {
	var req mediaCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	comment, err := h.svc.UpdateMediaCommentText(c.Request.Context(), c.Param("commentId"), req.Comment)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "comment not found")
			return
		}
		InternalError(c, "update comment: "+err.Error())
		return
	}
	Success(c, comment)
}

// DeleteMediaComment DELETE /api/v1/comments/:commentId
func (h *ProjectHandler) DeleteMediaComment(c *gin.Context) {
	if err := h.svc.DeleteMediaComment(c.Request.Context(), c.Param("commentId")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "comment not found")
			return
		}
		InternalError(c, fmt.Sprintf("delete comment: %v", err))
		return
	}
	Success(c, nil)
}
