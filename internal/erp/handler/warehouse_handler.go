package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/artelsoft/artel-erp/internal/erp/repository"
	"github.com/artelsoft/artel-erp/internal/erp/service"
	"github.com/gin-gonic/gin"
)

type WarehouseHandler struct {
	svc *service.WarehouseService
}

func NewWarehouseHandler(svc *service.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{svc: svc}
}

// ---- categories ----

type createCategoryRequest struct {
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

// CreateCategory POST /api/v1/warehouse/categories
func (h *WarehouseHandler) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	cat, err := h.svc.CreateCategory(c.Request.Context(), req.Name, req.SortOrder)
	if err != nil {
		InternalError(c, "create category: "+err.Error())
		return
	}
	Created(c, cat)
}

// ListCategories GET /api/v1/warehouse/categories
func (h *WarehouseHandler) ListCategories(c *gin.Context) {
	cats, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		InternalError(c, "list categories: "+err.Error())
		return
	}
	Success(c, gin.H{"items": cats})
}

// DeleteCategory DELETE /api/v1/warehouse/categories/:id
func (h *WarehouseHandler) DeleteCategory(c *gin.Context) {
	if err := h.svc.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "category not found")
			return
		}
		InternalError(c, "delete category: "+err.Error())
		return
	}
	Success(c, nil)
}

// ---- items ----

// ListItems GET /api/v1/warehouse/items
func (h *WarehouseHandler) ListItems(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"category_id": c.Query("category_id"),
		"keyword":     c.Query("keyword"),
	}
	items, total, err := h.svc.ListItems(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "list items: "+err.Error())
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// GetItem GET /api/v1/warehouse/items/:id
func (h *WarehouseHandler) GetItem(c *gin.Context) {
	item, err := h.svc.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "item not found")
			return
		}
		InternalError(c, "get item: "+err.Error())
		return
	}
	Success(c, item)
}

// CreateItem POST /api/v1/warehouse/items
func (h *WarehouseHandler) CreateItem(c *gin.Context) {
	var req service.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	item, err := h.svc.CreateItem(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		InternalError(c, "create item: "+err.Error())
		return
	}
	Created(c, item)
}

// UpdateItem PUT /api/v1/warehouse/items/:id
func (h *WarehouseHandler) UpdateItem(c *gin.Context) {
	var req service.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	item, err := h.svc.UpdateItem(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "item not found")
			return
		}
		InternalError(c, "update item: "+err.Error())
		return
	}
	Success(c, item)
}

// DeleteItem DELETE /api/v1/warehouse/items/:id
func (h *WarehouseHandler) DeleteItem(c *gin.Context) {
	if err := h.svc.DeleteItem(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "item not found")
			return
		}
		InternalError(c, "delete item: "+err.Error())
		return
	}
	Success(c, nil)
}

// LowStock GET /api/v1/warehouse/items/low-stock
func (h *WarehouseHandler) LowStock(c *gin.Context) {
	items, err := h.svc.LowStockItems(c.Request.Context())
	if err != nil {
		InternalError(c, "list low stock: "+err.Error())
		return
	}
	Success(c, gin.H{"items": items})
}

// ---- movements ----

// Move POST /api/v1/warehouse/movements
func (h *WarehouseHandler) Move(c *gin.Context) {
	var req service.MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	movement, err := h.svc.Move(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "item not found")
			return
		}
		if errors.Is(err, service.ErrInsufficientStock) {
			Conflict(c, err.Error())
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Created(c, movement)
}

// ListMovements GET /api/v1/warehouse/movements?item_id=xxx
func (h *WarehouseHandler) ListMovements(c *gin.Context) {
	page, pageSize := GetPagination(c)
	moves, total, err := h.svc.ListMovements(c.Request.Context(), c.Query("item_id"), page, pageSize)
	if err != nil {
		InternalError(c, "list movements: "+err.Error())
		return
	}
	Success(c, ListResponse{Items: moves, Pagination: NewPagination(page, pageSize, total)})
}

// Export GET /api/v1/warehouse/export (XLSX download)
func (h *WarehouseHandler) Export(c *gin.Context) {
	buf, err := h.svc.ExportItems(c.Request.Context())
	if err != nil {
		InternalError(c, "export items: "+err.Error())
		return
	}
	fileName := fmt.Sprintf("warehouse_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
