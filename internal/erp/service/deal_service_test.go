package service

import (
	"context"
	"errors"
	"testing"

	"github.com/artelsoft/artel-erp/internal/config"
	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"github.com/artelsoft/artel-erp/internal/erp/repository"
	"github.com/artelsoft/artel-erp/internal/erp/testutil"
	"gorm.io/gorm"
)

func newDealService(t *testing.T) (*DealService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	templateSvc := NewTemplateService(repos.Template, repos.Project, repos.StageType, repos.ActivityLog,
		config.PipelineConfig{})
	return NewDealService(repos.Deal, templateSvc, repos.ActivityLog), db
}

func TestDealStatusSetsClosedAt(t *testing.T) {
	svc, _ := newDealService(t)
	ctx := context.Background()

	deal, err := svc.Create(ctx, "user-1", &CreateDealRequest{Title: "Кухня на заказ"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if deal.Status != entity.DealStatusNew {
		t.Fatalf("expected status new, got %s", deal.Status)
	}

	deal, err = svc.ChangeStatus(ctx, deal.ID, entity.DealStatusWon, "user-1")
	if err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}
	if deal.ClosedAt == nil {
		t.Error("expected closed_at on won deal")
	}

	// Reopening a lost deal clears the close stamp.
	lost, _ := svc.Create(ctx, "user-1", &CreateDealRequest{Title: "Шкаф-купе"})
	lost, err = svc.ChangeStatus(ctx, lost.ID, entity.DealStatusLost, "user-1")
	if err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}
	if lost.ClosedAt == nil {
		t.Error("expected closed_at on lost deal")
	}
	lost, err = svc.ChangeStatus(ctx, lost.ID, entity.DealStatusInProgress, "user-1")
	if err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}
	if lost.ClosedAt != nil {
		t.Error("expected closed_at cleared on reopen")
	}
}

func TestDealStatusRejectsInvalidTransition(t *testing.T) {
	svc, _ := newDealService(t)
	ctx := context.Background()

	deal, err := svc.Create(ctx, "user-1", &CreateDealRequest{Title: "Гардеробная"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.ChangeStatus(ctx, deal.ID, "archived", "user-1"); !errors.Is(err, ErrInvalidDealTransition) {
		t.Fatalf("expected ErrInvalidDealTransition for unknown status, got %v", err)
	}

	if _, err := svc.ChangeStatus(ctx, deal.ID, entity.DealStatusWon, "user-1"); err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}
	if _, err := svc.ChangeStatus(ctx, deal.ID, entity.DealStatusInProgress, "user-1"); !errors.Is(err, ErrInvalidDealTransition) {
		t.Fatalf("expected won to be terminal, got %v", err)
	}

	got, err := svc.Get(ctx, deal.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != entity.DealStatusWon {
		t.Errorf("expected status unchanged after rejected transition, got %s", got.Status)
	}
}

func TestConvertWonDealCreatesProject(t *testing.T) {
	svc, db := newDealService(t)
	ctx := context.Background()

	tmpl := testutil.SeedTemplate(t, db, "Кухня стандарт", []string{"Замер", "Производство"}, nil)

	deal, _ := svc.Create(ctx, "user-1", &CreateDealRequest{
		Title:     "Кухня для Петровых",
		ManagerID: "manager-1",
		Notes:     "угловая, со встройкой",
	})
	if _, err := svc.ChangeStatus(ctx, deal.ID, entity.DealStatusWon, "user-1"); err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}

	project, err := svc.Convert(ctx, deal.ID, "user-1", &ConvertRequest{TemplateID: tmpl.ID})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if project.DealID == nil || *project.DealID != deal.ID {
		t.Error("expected project to reference the deal")
	}
	if project.Name != deal.Title {
		t.Errorf("expected project name to default to deal title, got %q", project.Name)
	}
	if project.ManagerID != "manager-1" {
		t.Errorf("expected manager carried over, got %q", project.ManagerID)
	}

	var count int64
	db.Model(&entity.ProjectStage{}).Where("project_id = ?", project.ID).Count(&count)
	if count != 2 {
		t.Errorf("expected 2 stages from template, got %d", count)
	}
}

func TestConvertRejectsUnwonDeal(t *testing.T) {
	svc, db := newDealService(t)
	ctx := context.Background()

	tmpl := testutil.SeedTemplate(t, db, "Шаблон", []string{"Замер"}, nil)
	deal, _ := svc.Create(ctx, "user-1", &CreateDealRequest{Title: "Не выиграна"})

	_, err := svc.Convert(ctx, deal.ID, "user-1", &ConvertRequest{TemplateID: tmpl.ID})
	if !errors.Is(err, ErrDealNotWon) {
		t.Fatalf("expected ErrDealNotWon, got %v", err)
	}
}
