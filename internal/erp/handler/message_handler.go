package handler

import (
	"errors"

	"github.com/artelsoft/artel-erp/internal/erp/repository"
	"github.com/artelsoft/artel-erp/internal/erp/service"
	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	svc *service.MessageService
}

func NewMessageHandler(svc *service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// Post POST /api/v1/messages
func (h *MessageHandler) Post(c *gin.Context) {
	var req service.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	msg, err := h.svc.Post(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Created(c, msg)
}

// List GET /api/v1/messages?related_type=xxx&related_id=yyy
func (h *MessageHandler) List(c *gin.Context) {
	relatedType := c.Query("related_type")
	relatedID := c.Query("related_id")
	if relatedType == "" || relatedID == "" {
		BadRequest(c, "related_type and related_id are required")
		return
	}
	page, pageSize := GetPagination(c)
	messages, total, err := h.svc.List(c.Request.Context(), relatedType, relatedID, page, pageSize)
	if err != nil {
		InternalError(c, "list messages: "+err.Error())
		return
	}
	Success(c, ListResponse{Items: messages, Pagination: NewPagination(page, pageSize, total)})
}

// Delete DELETE /api/v1/messages/:id
func (h *MessageHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "message not found")
			return
		}
		InternalError(c, "delete message: "+err.Error())
		return
	}
	Success(c, nil)
}
