package handler

import (
	"strconv"

	"github.com/artelsoft/artel-erp/internal/config"
	"github.com/artelsoft/artel-erp/internal/erp/service"
	"github.com/artelsoft/artel-erp/internal/erp/sse"
	"github.com/gin-gonic/gin"
)

// Handlers holds every HTTP handler.
type Handlers struct {
	Auth      *AuthHandler
	StageType *StageTypeHandler
	Template  *TemplateHandler
	Project   *ProjectHandler
	Deal      *DealHandler
	Task      *TaskHandler
	Warehouse *WarehouseHandler
	Message   *MessageHandler
	SSE       *SSEHandler
}

func NewHandlers(svc *service.Services, cfg *config.Config, hub *sse.Hub) *Handlers {
	return &Handlers{
		Auth:      NewAuthHandler(svc.Auth),
		StageType: NewStageTypeHandler(svc.StageType),
		Template:  NewTemplateHandler(svc.Template),
		Project:   NewProjectHandler(svc.Project),
		Deal:      NewDealHandler(svc.Deal),
		Task:      NewTaskHandler(svc.Task),
		Warehouse: NewWarehouseHandler(svc.Warehouse),
		Message:   NewMessageHandler(svc.Message),
		SSE:       NewSSEHandler(hub),
	}
}

// Response is the common JSON envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse wraps paginated collections.
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func NewPagination(page, pageSize int, total int64) *Pagination {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      int(total),
		TotalPages: totalPages,
	}
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error writes the envelope with an app code whose first three digits are
// the HTTP status.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// GetUserID reads the authenticated user id set by the JWT middleware.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetPagination reads page/page_size query params with sane bounds.
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}
	return page, pageSize
}
