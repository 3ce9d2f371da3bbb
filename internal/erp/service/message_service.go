package service

import (
	"context"
	"fmt"
	"time"

	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"github.com/artelsoft/artel-erp/internal/erp/repository"
	"github.com/artelsoft/artel-erp/internal/erp/sse"
	"github.com/google/uuid"
)

var validRelatedTypes = map[string]bool{
	entity.RelatedTypeDeal:    true,
	entity.RelatedTypeProject: true,
	entity.RelatedTypeStage:   true,
	entity.RelatedTypeTask:    true,
}

// MessageService manages chat threads attached to deals, projects, stages
// and tasks.
type MessageService struct {
	repo *repository.MessageRepository
	hub  *sse.Hub
}

func NewMessageService(repo *repository.MessageRepository, hub *sse.Hub) *MessageService {
	return &MessageService{repo: repo, hub: hub}
}

type PostMessageRequest struct {
	RelatedType string `json:"related_type" binding:"required"`
	RelatedID   string `json:"related_id" binding:"required"`
	Body        string `json:"body" binding:"required"`
}

func (s *MessageService) Post(ctx context.Context, userID string, req *PostMessageRequest) (*entity.Message, error) {
	if !validRelatedTypes[req.RelatedType] {
		return nil, fmt.Errorf("unknown related type: %s", req.RelatedType)
	}
	msg := &entity.Message{
		ID:          uuid.New().String(),
		RelatedType: req.RelatedType,
		RelatedID:   req.RelatedID,
		UserID:      userID,
		Body:        req.Body,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	if s.hub != nil {
		s.hub.PublishMessage(msg.RelatedType, msg.RelatedID, msg.ID)
	}
	return msg, nil
}

func (s *MessageService) List(ctx context.Context, relatedType, relatedID string, page, pageSize int) ([]entity.Message, int64, error) {
	return s.repo.ListByEntity(ctx, relatedType, relatedID, page, pageSize)
}

func (s *MessageService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
