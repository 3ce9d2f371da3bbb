package repository

import (
	"context"
	"errors"

	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*entity.Project, error) {
	var project entity.Project
	err := r.db.WithContext(ctx).
		Preload("Deal").
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Stages.StageType").
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Project, int64, error) {
	var projects []entity.Project
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Project{})
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if dealID := filters["deal_id"]; dealID != "" {
		query = query.Where("deal_id = ?", dealID)
	}
	if managerID := filters["manager_id"]; managerID != "" {
		query = query.Where("manager_id = ?", managerID)
	}
	if keyword := filters["keyword"]; keyword != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+keyword+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&projects).Error
	return projects, total, err
}

func (r *ProjectRepository) Update(ctx context.Context, project *entity.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

// Delete removes the project; stages, documents and comments cascade.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Project{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- stages ----

func (r *ProjectRepository) CreateStage(ctx context.Context, stage *entity.ProjectStage) error {
	return r.db.WithContext(ctx).Create(stage).Error
}

func (r *ProjectRepository) FindStageByID(ctx context.Context, id string) (*entity.ProjectStage, error) {
	var stage entity.ProjectStage
	err := r.db.WithContext(ctx).
		Preload("StageType").
		Where("id = ?", id).
		First(&stage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &stage, nil
}

func (r *ProjectRepository) ListStages(ctx context.Context, projectID string) ([]entity.ProjectStage, error) {
	var stages []entity.ProjectStage
	err := r.db.WithContext(ctx).
		Preload("StageType").
		Where("project_id = ?", projectID).
		Order("sort_order ASC").
		Find(&stages).Error
	return stages, err
}

// NextPendingStage returns the lowest pending stage after the given order,
// or ErrNotFound when the pipeline has run out.
func (r *ProjectRepository) NextPendingStage(ctx context.Context, projectID string, afterOrder int) (*entity.ProjectStage, error) {
	var stage entity.ProjectStage
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND status = ? AND sort_order > ?", projectID, entity.StageStatusPending, afterOrder).
		Order("sort_order ASC").
		First(&stage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &stage, nil
}

func (r *ProjectRepository) UpdateStage(ctx context.Context, stage *entity.ProjectStage) error {
	return r.db.WithContext(ctx).Save(stage).Error
}

func (r *ProjectRepository) DeleteStage(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.ProjectStage{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- stage documents ----

func (r *ProjectRepository) CreateDocument(ctx context.Context, doc *entity.StageDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *ProjectRepository) ListDocuments(ctx context.Context, stageID string) ([]entity.StageDocument, error) {
	var docs []entity.StageDocument
	err := r.db.WithContext(ctx).
		Preload("Uploader").
		Where("stage_id = ?", stageID).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *ProjectRepository) FindDocumentByID(ctx context.Context, id string) (*entity.StageDocument, error) {
	var doc entity.StageDocument
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *ProjectRepository) DeleteDocument(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.StageDocument{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- stage media comments ----

// UpsertMediaComment inserts or overwrites the single comment of a
// (stage, media) pair as one atomic statement. The unique index on
// (stage_id, media_id) carries the at-most-one-row invariant, so two
// concurrent upserts cannot both insert.
func (r *ProjectRepository) UpsertMediaComment(ctx context.Context, comment *entity.StageMediaComment) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stage_id"}, {Name: "media_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "comment", "updated_at"}),
	}).Create(comment).Error
}

func (r *ProjectRepository) ListMediaComments(ctx context.Context, stageID, mediaID string) ([]entity.StageMediaComment, error) {
	var comments []entity.StageMediaComment
	query := r.db.WithContext(ctx).
		Preload("User").
		Where("stage_id = ?", stageID)
	if mediaID != "" {
		query = query.Where("media_id = ?", mediaID)
	}
	err := query.Order("created_at ASC").Find(&comments).Error
	return comments, err
}

func (r *ProjectRepository) FindMediaCommentByID(ctx context.Context, id string) (*entity.StageMediaComment, error) {
	var comment entity.StageMediaComment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}

func (r *ProjectRepository) UpdateMediaComment(ctx context.Context, comment *entity.StageMediaComment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

func (r *ProjectRepository) DeleteMediaComment(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.StageMediaComment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DB exposes the handle for cross-repository transactions.
func (r *ProjectRepository) DB() *gorm.DB {
	return r.db
}
