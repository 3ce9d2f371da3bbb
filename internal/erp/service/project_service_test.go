package service

import (
	"context"
	"errors"
	"testing"

	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"github.com/artelsoft/artel-erp/internal/erp/repository"
	"github.com/artelsoft/artel-erp/internal/erp/sse"
	"github.com/artelsoft/artel-erp/internal/erp/testutil"
	"gorm.io/gorm"
)

func newProjectService(t *testing.T) (*ProjectService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewProjectService(repos.Project, repos.ActivityLog, nil, "", sse.NewHub())
	return svc, db
}

func loadStages(t *testing.T, db *gorm.DB, projectID string) []entity.ProjectStage {
	t.Helper()
	var stages []entity.ProjectStage
	if err := db.Where("project_id = ?", projectID).Order("sort_order ASC").Find(&stages).Error; err != nil {
		t.Fatalf("load stages: %v", err)
	}
	return stages
}

func TestChangeStageStatusStartsNextStage(t *testing.T) {
	svc, db := newProjectService(t)
	ctx := context.Background()

	project := testutil.SeedProjectWithStages(t, db, "Кухня",
		[]string{"Замер", "Производство", "Монтаж"}, entity.StageStatusInProgress)
	stages := loadStages(t, db, project.ID)

	updated, err := svc.ChangeStageStatus(ctx, stages[0].ID, entity.StageStatusCompleted, "user-1")
	if err != nil {
		t.Fatalf("ChangeStageStatus failed: %v", err)
	}
	if updated.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}

	stages = loadStages(t, db, project.ID)
	if stages[1].Status != entity.StageStatusInProgress {
		t.Errorf("second stage: expected in_progress, got %s", stages[1].Status)
	}
	if stages[1].StartedAt == nil {
		t.Error("second stage: expected started_at to be set")
	}
	if stages[2].Status != entity.StageStatusPending {
		t.Errorf("third stage: expected pending, got %s", stages[2].Status)
	}
}

func TestChangeStageStatusLastStageCompletes(t *testing.T) {
	svc, db := newProjectService(t)
	ctx := context.Background()

	project := testutil.SeedProjectWithStages(t, db, "Шкаф",
		[]string{"Монтаж"}, entity.StageStatusInProgress)
	stages := loadStages(t, db, project.ID)

	if _, err := svc.ChangeStageStatus(ctx, stages[0].ID, entity.StageStatusCompleted, "user-1"); err != nil {
		t.Fatalf("ChangeStageStatus failed: %v", err)
	}
}

func TestChangeStageStatusRejectsInvalidTransition(t *testing.T) {
	svc, db := newProjectService(t)
	ctx := context.Background()

	project := testutil.SeedProjectWithStages(t, db, "Кухня",
		[]string{"Замер"}, entity.StageStatusPending)
	stages := loadStages(t, db, project.ID)

	_, err := svc.ChangeStageStatus(ctx, stages[0].ID, entity.StageStatusCompleted, "user-1")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	// Completed is terminal.
	if _, err := svc.ChangeStageStatus(ctx, stages[0].ID, entity.StageStatusInProgress, "user-1"); err != nil {
		t.Fatalf("pending -> in_progress should be allowed: %v", err)
	}
	if _, err := svc.ChangeStageStatus(ctx, stages[0].ID, entity.StageStatusCompleted, "user-1"); err != nil {
		t.Fatalf("in_progress -> completed should be allowed: %v", err)
	}
	if _, err := svc.ChangeStageStatus(ctx, stages[0].ID, entity.StageStatusInProgress, "user-1"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("completed -> in_progress should be rejected, got %v", err)
	}
}

func TestUpsertMediaCommentConverges(t *testing.T) {
	svc, db := newProjectService(t)
	ctx := context.Background()

	project := testutil.SeedProjectWithStages(t, db, "Кухня",
		[]string{"Замер"}, entity.StageStatusInProgress)
	stages := loadStages(t, db, project.ID)
	stageID := stages[0].ID

	if _, err := svc.UpsertMediaComment(ctx, stageID, "photo-1", "user-1", "первый вариант"); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	comment, err := svc.UpsertMediaComment(ctx, stageID, "photo-1", "user-2", "второй вариант")
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	var count int64
	db.Model(&entity.StageMediaComment{}).
		Where("stage_id = ? AND media_id = ?", stageID, "photo-1").
		Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one row for the pair, got %d", count)
	}
	if comment.Comment != "второй вариант" {
		t.Errorf("expected latest text to win, got %q", comment.Comment)
	}
	if comment.UserID != "user-2" {
		t.Errorf("expected latest author to win, got %q", comment.UserID)
	}
}

func TestUpsertMediaCommentDistinctMedia(t *testing.T) {
	svc, db := newProjectService(t)
	ctx := context.Background()

	project := testutil.SeedProjectWithStages(t, db, "Кухня",
		[]string{"Замер"}, entity.StageStatusInProgress)
	stages := loadStages(t, db, project.ID)
	stageID := stages[0].ID

	svc.UpsertMediaComment(ctx, stageID, "photo-1", "user-1", "a")
	svc.UpsertMediaComment(ctx, stageID, "photo-2", "user-1", "b")

	var count int64
	db.Model(&entity.StageMediaComment{}).Where("stage_id = ?", stageID).Count(&count)
	if count != 2 {
		t.Fatalf("expected 2 rows for distinct media, got %d", count)
	}
}

func TestListMediaCommentsEmpty(t *testing.T) {
	svc, db := newProjectService(t)
	ctx := context.Background()

	project := testutil.SeedProjectWithStages(t, db, "Кухня",
		[]string{"Замер"}, entity.StageStatusPending)
	stages := loadStages(t, db, project.ID)

	comments, err := svc.ListMediaComments(ctx, stages[0].ID, "nothing-here")
	if err != nil {
		t.Fatalf("ListMediaComments failed: %v", err)
	}
	if comments == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(comments) != 0 {
		t.Fatalf("expected no comments, got %d", len(comments))
	}
}

func TestDeleteStageRemovesComments(t *testing.T) {
	svc, db := newProjectService(t)
	ctx := context.Background()

	project := testutil.SeedProjectWithStages(t, db, "Кухня",
		[]string{"Замер"}, entity.StageStatusInProgress)
	stages := loadStages(t, db, project.ID)
	stageID := stages[0].ID

	svc.UpsertMediaComment(ctx, stageID, "photo-1", "user-1", "до удаления")
	if _, err := svc.UploadDocument(ctx, stageID, "user-1", "photo", "zamer.jpg", 8, "image/jpeg", nil); err != nil {
		t.Fatalf("UploadDocument failed: %v", err)
	}

	if err := svc.DeleteStage(ctx, stageID, "user-1"); err != nil {
		t.Fatalf("DeleteStage failed: %v", err)
	}

	var comments int64
	db.Model(&entity.StageMediaComment{}).Where("stage_id = ?", stageID).Count(&comments)
	if comments != 0 {
		t.Errorf("expected comments to be removed with the stage, got %d", comments)
	}
	var docs int64
	db.Model(&entity.StageDocument{}).Where("stage_id = ?", stageID).Count(&docs)
	if docs != 0 {
		t.Errorf("expected documents to be removed with the stage, got %d", docs)
	}
}

func TestDeleteProjectRemovesPipeline(t *testing.T) {
	svc, db := newProjectService(t)
	ctx := context.Background()

	project := testutil.SeedProjectWithStages(t, db, "Кухня",
		[]string{"Замер", "Монтаж"}, entity.StageStatusInProgress)
	stages := loadStages(t, db, project.ID)
	svc.UpsertMediaComment(ctx, stages[0].ID, "photo-1", "user-1", "комментарий")

	if err := svc.Delete(ctx, project.ID, "user-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var stageCount int64
	db.Model(&entity.ProjectStage{}).Where("project_id = ?", project.ID).Count(&stageCount)
	if stageCount != 0 {
		t.Errorf("expected stages to be removed with the project, got %d", stageCount)
	}
	var comments int64
	db.Model(&entity.StageMediaComment{}).Where("stage_id = ?", stages[0].ID).Count(&comments)
	if comments != 0 {
		t.Errorf("expected comments to be removed with the project, got %d", comments)
	}
}

func TestCreateProjectWithoutManager(t *testing.T) {
	svc, db := newProjectService(t)
	ctx := context.Background()

	project, err := svc.Create(ctx, "user-1", &CreateProjectRequest{Name: "Кухня без менеджера"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if project.ManagerID != "" {
		t.Errorf("expected empty manager, got %q", project.ManagerID)
	}

	var stored entity.Project
	if err := db.Where("id = ?", project.ID).First(&stored).Error; err != nil {
		t.Fatalf("expected project persisted: %v", err)
	}
}

func TestAddStageAppendsToEnd(t *testing.T) {
	svc, db := newProjectService(t)
	ctx := context.Background()

	project := testutil.SeedProjectWithStages(t, db, "Кухня",
		[]string{"Замер", "Монтаж"}, entity.StageStatusPending)

	stage, err := svc.AddStage(ctx, project.ID, &AddStageRequest{Name: "Доставка"})
	if err != nil {
		t.Fatalf("AddStage failed: %v", err)
	}
	if stage.SortOrder != 3 {
		t.Errorf("expected sort_order 3, got %d", stage.SortOrder)
	}
	if stage.Status != entity.StageStatusPending {
		t.Errorf("expected pending, got %s", stage.Status)
	}
}

func TestUploadDocumentWithoutStorage(t *testing.T) {
	svc, db := newProjectService(t)
	ctx := context.Background()

	project := testutil.SeedProjectWithStages(t, db, "Кухня",
		[]string{"Замер"}, entity.StageStatusInProgress)
	stages := loadStages(t, db, project.ID)

	doc, err := svc.UploadDocument(ctx, stages[0].ID, "user-1", "drawing", "plan.pdf", 4, "application/pdf", nil)
	if err != nil {
		t.Fatalf("UploadDocument failed: %v", err)
	}
	if doc.FileName != "plan.pdf" {
		t.Errorf("expected file name preserved, got %q", doc.FileName)
	}

	docs, err := svc.ListDocuments(ctx, stages[0].ID)
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
}
