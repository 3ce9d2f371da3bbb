package service

import (
	"context"
	"testing"

	"github.com/artelsoft/artel-erp/internal/config"
	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"github.com/artelsoft/artel-erp/internal/erp/repository"
	"github.com/artelsoft/artel-erp/internal/erp/testutil"
	"gorm.io/gorm"
)

func newTemplateService(t *testing.T, firstStageInProgress bool) (*TemplateService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewTemplateService(repos.Template, repos.Project, repos.StageType, repos.ActivityLog,
		config.PipelineConfig{FirstStageInProgress: firstStageInProgress})
	return svc, db
}

func TestInstantiateProjectCopiesStages(t *testing.T) {
	svc, db := newTemplateService(t, false)
	ctx := context.Background()

	design := testutil.SeedStageType(t, db, entity.StageTypeDesign, "Проектирование")
	production := testutil.SeedStageType(t, db, entity.StageTypeProduction, "Производство")
	tmpl := testutil.SeedTemplate(t, db, "Кухня стандарт",
		[]string{"Проектирование", "Производство", "Без типа"},
		[]*string{&design.ID, &production.ID, nil})

	project, err := svc.InstantiateProject(ctx, &InstantiateProjectInput{
		TemplateID: tmpl.ID,
		Name:       "Кухня для Ивановых",
	}, "user-1")
	if err != nil {
		t.Fatalf("InstantiateProject failed: %v", err)
	}

	var stages []entity.ProjectStage
	if err := db.Where("project_id = ?", project.ID).Order("sort_order ASC").Find(&stages).Error; err != nil {
		t.Fatalf("load stages: %v", err)
	}
	if len(stages) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(stages))
	}

	for i, stage := range stages {
		if stage.SortOrder != i+1 {
			t.Errorf("stage %d: expected sort_order %d, got %d", i, i+1, stage.SortOrder)
		}
		if stage.Status != entity.StageStatusPending {
			t.Errorf("stage %d: expected pending, got %s", i, stage.Status)
		}
	}
	if stages[0].StageTypeID == nil || *stages[0].StageTypeID != design.ID {
		t.Errorf("stage 0: stage type not preserved")
	}
	if stages[1].StageTypeID == nil || *stages[1].StageTypeID != production.ID {
		t.Errorf("stage 1: stage type not preserved")
	}
	if stages[2].StageTypeID != nil {
		t.Errorf("stage 2: expected nil stage type, got %v", *stages[2].StageTypeID)
	}
}

func TestInstantiateProjectFirstStageInProgress(t *testing.T) {
	svc, db := newTemplateService(t, true)
	ctx := context.Background()

	tmpl := testutil.SeedTemplate(t, db, "Шкаф", []string{"Замер", "Монтаж"}, nil)

	project, err := svc.InstantiateProject(ctx, &InstantiateProjectInput{
		TemplateID: tmpl.ID,
		Name:       "Шкаф-купе",
	}, "user-1")
	if err != nil {
		t.Fatalf("InstantiateProject failed: %v", err)
	}

	var stages []entity.ProjectStage
	db.Where("project_id = ?", project.ID).Order("sort_order ASC").Find(&stages)
	if len(stages) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(stages))
	}
	if stages[0].Status != entity.StageStatusInProgress {
		t.Errorf("first stage: expected in_progress, got %s", stages[0].Status)
	}
	if stages[0].StartedAt == nil {
		t.Errorf("first stage: expected started_at to be set")
	}
	if stages[1].Status != entity.StageStatusPending {
		t.Errorf("second stage: expected pending, got %s", stages[1].Status)
	}
}

func TestInstantiateProjectSingleStageTemplate(t *testing.T) {
	svc, db := newTemplateService(t, false)
	ctx := context.Background()

	measurement := testutil.SeedStageType(t, db, entity.StageTypeMeasurement, "Замер")
	tmpl := testutil.SeedTemplate(t, db, "Только замер", []string{"Замер"}, []*string{&measurement.ID})

	project, err := svc.InstantiateProject(ctx, &InstantiateProjectInput{
		TemplateID: tmpl.ID,
		Name:       "Выезд на замер",
	}, "user-1")
	if err != nil {
		t.Fatalf("InstantiateProject failed: %v", err)
	}

	var stages []entity.ProjectStage
	db.Where("project_id = ?", project.ID).Find(&stages)
	if len(stages) != 1 {
		t.Fatalf("expected 1 stage, got %d", len(stages))
	}
	if stages[0].Status != entity.StageStatusPending {
		t.Errorf("expected pending, got %s", stages[0].Status)
	}
	if stages[0].Name != "Замер" {
		t.Errorf("expected stage name preserved, got %q", stages[0].Name)
	}
}

func TestInstantiateProjectEmptyTemplate(t *testing.T) {
	svc, db := newTemplateService(t, true)
	ctx := context.Background()

	tmpl := testutil.SeedTemplate(t, db, "Пустой", nil, nil)

	project, err := svc.InstantiateProject(ctx, &InstantiateProjectInput{
		TemplateID: tmpl.ID,
		Name:       "Без этапов",
	}, "user-1")
	if err != nil {
		t.Fatalf("InstantiateProject failed: %v", err)
	}

	var count int64
	db.Model(&entity.ProjectStage{}).Where("project_id = ?", project.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected no stages, got %d", count)
	}
}

func TestInstantiateProjectUnknownTemplate(t *testing.T) {
	svc, _ := newTemplateService(t, false)

	_, err := svc.InstantiateProject(context.Background(), &InstantiateProjectInput{
		TemplateID: "missing",
		Name:       "x",
	}, "user-1")
	if err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestReplaceStagesRenumbers(t *testing.T) {
	svc, db := newTemplateService(t, false)
	ctx := context.Background()

	tmpl := testutil.SeedTemplate(t, db, "Шаблон", []string{"A", "B", "C"}, nil)

	stages, err := svc.ReplaceStages(ctx, tmpl.ID, []TemplateStageInput{
		{Name: "X"},
		{Name: "Y"},
	})
	if err != nil {
		t.Fatalf("ReplaceStages failed: %v", err)
	}
	if len(stages) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(stages))
	}
	for i, st := range stages {
		if st.SortOrder != i+1 {
			t.Errorf("stage %d: expected sort_order %d, got %d", i, i+1, st.SortOrder)
		}
	}

	var count int64
	db.Model(&entity.TemplateStage{}).Where("template_id = ?", tmpl.ID).Count(&count)
	if count != 2 {
		t.Errorf("expected 2 stored stages, got %d", count)
	}
}

func TestDuplicateTemplateCopiesStages(t *testing.T) {
	svc, db := newTemplateService(t, false)
	ctx := context.Background()

	tmpl := testutil.SeedTemplate(t, db, "Оригинал", []string{"Замер", "Монтаж"}, nil)

	dup, err := svc.Duplicate(ctx, tmpl.ID, "Копия", "user-1")
	if err != nil {
		t.Fatalf("Duplicate failed: %v", err)
	}
	if dup.ID == tmpl.ID {
		t.Fatal("expected a new template id")
	}

	var count int64
	db.Model(&entity.TemplateStage{}).Where("template_id = ?", dup.ID).Count(&count)
	if count != 2 {
		t.Errorf("expected 2 copied stages, got %d", count)
	}
}
