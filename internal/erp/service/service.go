package service

import (
	"github.com/artelsoft/artel-erp/internal/config"
	"github.com/artelsoft/artel-erp/internal/erp/repository"
	"github.com/artelsoft/artel-erp/internal/erp/sse"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
)

// Services holds every business service.
type Services struct {
	Auth      *AuthService
	StageType *StageTypeService
	Template  *TemplateService
	Project   *ProjectService
	Deal      *DealService
	Task      *TaskService
	Warehouse *WarehouseService
	Message   *MessageService
}

// NewServices wires services to repositories and shared infrastructure.
// minioClient may be nil in environments without object storage; document
// uploads then keep metadata only.
func NewServices(repos *repository.Repositories, cfg *config.Config, rdb *redis.Client, minioClient *minio.Client, hub *sse.Hub) *Services {
	templateSvc := NewTemplateService(repos.Template, repos.Project, repos.StageType, repos.ActivityLog, cfg.Pipeline)
	return &Services{
		Auth:      NewAuthService(repos.User, rdb, cfg),
		StageType: NewStageTypeService(repos.StageType),
		Template:  templateSvc,
		Project:   NewProjectService(repos.Project, repos.ActivityLog, minioClient, cfg.MinIO.Bucket, hub),
		Deal:      NewDealService(repos.Deal, templateSvc, repos.ActivityLog),
		Task:      NewTaskService(repos.Task, repos.ActivityLog),
		Warehouse: NewWarehouseService(repos.Warehouse, repos.ActivityLog),
		Message:   NewMessageService(repos.Message, hub),
	}
}
