package handler

import (
	"errors"

	"github.com/artelsoft/artel-erp/internal/erp/repository"
	"github.com/artelsoft/artel-erp/internal/erp/service"
	"github.com/gin-gonic/gin"
)

type DealHandler struct {
	svc *service.DealService
}

func NewDealHandler(svc *service.DealService) *DealHandler {
	return &DealHandler{svc: svc}
}

// List GET /api/v1/deals
func (h *DealHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":     c.Query("status"),
		"manager_id": c.Query("manager_id"),
		"keyword":    c.Query("keyword"),
	}
	deals, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "list deals: "+err.Error())
		return
	}
	Success(c, ListResponse{Items: deals, Pagination: NewPagination(page, pageSize, total)})
}

// Get GET /api/v1/deals/:id
func (h *DealHandler) Get(c *gin.Context) {
	deal, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "deal not found")
			return
		}
		InternalError(c, "get deal: "+err.Error())
		return
	}
	Success(c, deal)
}

// Create POST /api/v1/deals
func (h *DealHandler) Create(c *gin.Context) {
	var req service.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	deal, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		InternalError(c, "create deal: "+err.Error())
		return
	}
	Created(c, deal)
}

// Update PUT /api/v1/deals/:id
func (h *DealHandler) Update(c *gin.Context) {
	var req service.UpdateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	deal, err := h.svc.Update(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "deal not found")
			return
		}
		InternalError(c, "update deal: "+err.Error())
		return
	}
	Success(c, deal)
}

type dealStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ChangeStatus PATCH /api/v1/deals/:id/status
func (h *DealHandler) ChangeStatus(c *gin.Context) {
	var req dealStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	deal, err := h.svc.ChangeStatus(c.Request.Context(), c.Param("id"), req.Status, GetUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "deal not found")
			return
		}
		if errors.Is(err, service.ErrInvalidDealTransition) {
			Conflict(c, err.Error())
			return
		}
		InternalError(c, "change deal status: "+err.Error())
		return
	}
	Success(c, deal)
}

// Delete DELETE /api/v1/deals/:id
func (h *DealHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "deal not found")
			return
		}
		InternalError(c, "delete deal: "+err.Error())
		return
	}
	Success(c, nil)
}

// Activity GET /api/v1/deals/:id/activity
func (h *DealHandler) Activity(c *gin.Context) {
	page, pageSize := GetPagination(c)
	logs, total, err := h.svc.Activity(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		InternalError(c, "get activity: "+err.Error())
		return
	}
	Success(c, ListResponse{Items: logs, Pagination: NewPagination(page, pageSize, total)})
}

// Convert POST /api/v1/deals/:id/convert
func (h *DealHandler) Convert(c *gin.Context) {
	var req service.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	project, err := h.svc.Convert(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "deal not found")
			return
		}
		if errors.Is(err, service.ErrDealNotWon) {
			Conflict(c, err.Error())
			return
		}
		InternalError(c, "convert deal: "+err.Error())
		return
	}
	Created(c, project)
}
