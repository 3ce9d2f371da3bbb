package handler

import (
	"errors"

	"github.com/artelsoft/artel-erp/internal/erp/repository"
	"github.com/artelsoft/artel-erp/internal/erp/service"
	"github.com/gin-gonic/gin"
)

type StageTypeHandler struct {
	svc *service.StageTypeService
}

func NewStageTypeHandler(svc *service.StageTypeService) *StageTypeHandler {
	return &StageTypeHandler{svc: svc}
}

// List GET /api/v1/stage-types?all=true
func (h *StageTypeHandler) List(c *gin.Context) {
	all := c.Query("all") == "true"
	types, err := h.svc.List(c.Request.Context(), all)
	if err != nil {
		InternalError(c, "list stage types: "+err.Error())
		return
	}
	Success(c, gin.H{"items": types})
}

// Get GET /api/v1/stage-types/:id
func (h *StageTypeHandler) Get(c *gin.Context) {
	st, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "stage type not found")
			return
		}
		InternalError(c, "get stage type: "+err.Error())
		return
	}
	Success(c, st)
}

// Create POST /api/v1/stage-types
func (h *StageTypeHandler) Create(c *gin.Context) {
	var req service.CreateStageTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	st, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		InternalError(c, "create stage type: "+err.Error())
		return
	}
	Created(c, st)
}

// Update PUT /api/v1/stage-types/:id
func (h *StageTypeHandler) Update(c *gin.Context) {
	var req service.UpdateStageTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	st, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "stage type not found")
			return
		}
		InternalError(c, "update stage type: "+err.Error())
		return
	}
	Success(c, st)
}

type setActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// SetActive PATCH /api/v1/stage-types/:id/active
func (h *StageTypeHandler) SetActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	st, err := h.svc.SetActive(c.Request.Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "stage type not found")
			return
		}
		InternalError(c, "set stage type active: "+err.Error())
		return
	}
	Success(c, st)
}

// Toggle POST /api/v1/stage-types/:id/toggle
func (h *StageTypeHandler) Toggle(c *gin.Context) {
	st, err := h.svc.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "stage type not found")
			return
		}
		InternalError(c, "toggle stage type: "+err.Error())
		return
	}
	Success(c, st)
}
