package handler

import (
	"fmt"
	"testing"

	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"github.com/artelsoft/artel-erp/internal/erp/repository"
	"github.com/artelsoft/artel-erp/internal/erp/service"
	"github.com/artelsoft/artel-erp/internal/erp/sse"
	"github.com/artelsoft/artel-erp/internal/erp/testutil"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func setupProjectTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := service.NewProjectService(repos.Project, repos.ActivityLog, nil, "", sse.NewHub())
	h := NewProjectHandler(svc)

	r := testutil.SetupRouter()
	api := testutil.AuthGroup(r, "/api/v1")
	api.GET("/stages/:stageId/comments", h.ListMediaComments)
	api.PUT("/stages/:stageId/media/:mediaId/comment", h.UpsertMediaComment)
	api.PATCH("/stages/:stageId/status", h.ChangeStageStatus)
	return r, db
}

func seedStage(t *testing.T, db *gorm.DB, status string) *entity.ProjectStage {
	t.Helper()
	project := testutil.SeedProjectWithStages(t, db, "Кухня", []string{"Замер"}, status)
	var stage entity.ProjectStage
	if err := db.Where("project_id = ?", project.ID).First(&stage).Error; err != nil {
		t.Fatalf("load stage: %v", err)
	}
	return &stage
}

func TestListMediaCommentsEmptyReturns200(t *testing.T) {
	r, db := setupProjectTest(t)
	stage := seedStage(t, db, entity.StageStatusInProgress)

	w := testutil.DoRequest(r, "GET",
		fmt.Sprintf("/api/v1/stages/%s/comments?media_id=absent", stage.ID),
		nil, testutil.DefaultTestToken())
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data, ok := resp["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected data object, got %v", resp)
	}
	items, ok := data["items"].([]interface{})
	if !ok {
		t.Fatalf("expected items array, got %v", data)
	}
	if len(items) != 0 {
		t.Errorf("expected empty items, got %d", len(items))
	}
}

func TestUpsertMediaCommentOverHTTP(t *testing.T) {
	r, db := setupProjectTest(t)
	stage := seedStage(t, db, entity.StageStatusInProgress)
	token := testutil.DefaultTestToken()
	path := fmt.Sprintf("/api/v1/stages/%s/media/photo-1/comment", stage.ID)

	w := testutil.DoRequest(r, "PUT", path, map[string]string{"comment": "первый"}, token)
	if w.Code != 200 {
		t.Fatalf("first upsert: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(r, "PUT", path, map[string]string{"comment": "второй"}, token)
	if w.Code != 200 {
		t.Fatalf("second upsert: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&entity.StageMediaComment{}).
		Where("stage_id = ? AND media_id = ?", stage.ID, "photo-1").
		Count(&count)
	if count != 1 {
		t.Fatalf("expected one comment row, got %d", count)
	}

	var comment entity.StageMediaComment
	db.Where("stage_id = ?", stage.ID).First(&comment)
	if comment.Comment != "второй" {
		t.Errorf("expected latest text, got %q", comment.Comment)
	}
}

func TestUpsertMediaCommentMissingStage404(t *testing.T) {
	r, _ := setupProjectTest(t)

	w := testutil.DoRequest(r, "PUT", "/api/v1/stages/missing/media/photo-1/comment",
		map[string]string{"comment": "x"}, testutil.DefaultTestToken())
	if w.Code != 404 {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestChangeStageStatusInvalidTransition409(t *testing.T) {
	r, db := setupProjectTest(t)
	stage := seedStage(t, db, entity.StageStatusPending)

	w := testutil.DoRequest(r, "PATCH",
		fmt.Sprintf("/api/v1/stages/%s/status", stage.ID),
		map[string]string{"status": entity.StageStatusCompleted},
		testutil.DefaultTestToken())
	if w.Code != 409 {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCommentsRequireAuth(t *testing.T) {
	r, db := setupProjectTest(t)
	stage := seedStage(t, db, entity.StageStatusInProgress)

	w := testutil.DoRequest(r, "GET",
		fmt.Sprintf("/api/v1/stages/%s/comments", stage.ID), nil, "")
	if w.Code != 401 {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}
