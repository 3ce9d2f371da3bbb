package handler

import (
	"errors"
	"time"

	"github.com/artelsoft/artel-erp/internal/erp/repository"
	"github.com/artelsoft/artel-erp/internal/erp/service"
	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	svc *service.TemplateService
}

func NewTemplateHandler(svc *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

// List GET /api/v1/templates?active=true
func (h *TemplateHandler) List(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	templates, err := h.svc.List(c.Request.Context(), activeOnly)
	if err != nil {
		InternalError(c, "list templates: "+err.Error())
		return
	}
	Success(c, gin.H{"items": templates})
}

// Get GET /api/v1/templates/:id (with ordered stages)
func (h *TemplateHandler) Get(c *gin.Context) {
	template, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "template not found")
			return
		}
		InternalError(c, "get template: "+err.Error())
		return
	}
	Success(c, template)
}

// Create POST /api/v1/templates
func (h *TemplateHandler) Create(c *gin.Context) {
	var req service.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	template, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		InternalError(c, "create template: "+err.Error())
		return
	}
	Created(c, template)
}

// Update PUT /api/v1/templates/:id
func (h *TemplateHandler) Update(c *gin.Context) {
	var req service.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	template, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "template not found")
			return
		}
		InternalError(c, "update template: "+err.Error())
		return
	}
	Success(c, template)
}

// Delete DELETE /api/v1/templates/:id
func (h *TemplateHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "template not found")
			return
		}
		InternalError(c, "delete template: "+err.Error())
		return
	}
	Success(c, nil)
}

type duplicateRequest struct {
	Name string `json:"name" binding:"required"`
}

// Duplicate POST /api/v1/templates/:id/duplicate
func (h *TemplateHandler) Duplicate(c *gin.Context) {
	var req duplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	template, err := h.svc.Duplicate(c.Request.Context(), c.Param("id"), req.Name, GetUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "template not found")
			return
		}
		InternalError(c, "duplicate template: "+err.Error())
		return
	}
	Created(c, template)
}

// AddStage POST /api/v1/templates/:id/stages
func (h *TemplateHandler) AddStage(c *gin.Context) {
	var in service.TemplateStageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	stage, err := h.svc.AddStage(c.Request.Context(), c.Param("id"), &in)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "template not found")
			return
		}
		InternalError(c, "add stage: "+err.Error())
		return
	}
	Created(c, stage)
}

// UpdateStage PUT /api/v1/templates/stages/:stageId
func (h *TemplateHandler) UpdateStage(c *gin.Context) {
	var req service.UpdateStageRequest
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

// DeleteStage DELETE /api/v1/templates/stages/:stageId
func (h *TemplateHandler) DeleteStage(c *gin.Context) {
	if err := h.svc.DeleteStage(c.Request.Context(), c.Param("stageId")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "stage not found")
			return
		}
		InternalError(c, "delete stage: "+err.Error())
		return
	}
	Success(c, nil)
}

type replaceStagesRequest struct {
	Stages []service.TemplateStageInput `json:"stages" binding:"required"`
}

// ReplaceStages PUT /api/v1/templates/:id/stages
func (h *TemplateHandler) ReplaceStages(c *gin.Context) {
	var req replaceStagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	stages, err := h.svc.ReplaceStages(c.Request.Context(), c.Param("id"), req.Stages)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "template not found")
			return
		}
		InternalError(c, "replace stages: "+err.Error())
		return
	}
	Success(c, gin.H{"items": stages})
}

type instantiateRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	DealID      *string    `json:"deal_id"`
	ManagerID   string     `json:"manager_id"`
	Deadline    *time.Time `json:"deadline"`
}

// Instantiate POST /api/v1/templates/:id/instantiate
func (h *TemplateHandler) Instantiate(c *gin.Context) {
	var req instantiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	project, err := h.svc.InstantiateProject(c.Request.Context(), &service.InstantiateProjectInput{
		TemplateID:  c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		DealID:      req.DealID,
		ManagerID:   req.ManagerID,
		Deadline:    req.Deadline,
	}, GetUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "template not found")
			return
		}
		InternalError(c, "instantiate project: "+err.Error())
		return
	}
	Created(c, project)
}
