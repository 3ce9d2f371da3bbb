package service

import (
	"context"
	"testing"

	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"github.com/artelsoft/artel-erp/internal/erp/repository"
	"github.com/artelsoft/artel-erp/internal/erp/testutil"
)

func newStageTypeService(t *testing.T) (*StageTypeService, *repository.Repositories) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return NewStageTypeService(repos.StageType), repos
}

func TestStageTypeToggleRoundTrip(t *testing.T) {
	svc, _ := newStageTypeService(t)
	ctx := context.Background()

	st, err := svc.Create(ctx, &CreateStageTypeRequest{Code: "measurement", Name: "Замер"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !st.IsActive {
		t.Fatal("expected new stage type to be active")
	}

	st, err = svc.Toggle(ctx, st.ID)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if st.IsActive {
		t.Error("expected inactive after toggle")
	}

	st, err = svc.Toggle(ctx, st.ID)
	if err != nil {
		t.Fatalf("second Toggle failed: %v", err)
	}
	if !st.IsActive {
		t.Error("expected active after second toggle")
	}
}

func TestStageTypeSetActiveIdempotent(t *testing.T) {
	svc, _ := newStageTypeService(t)
	ctx := context.Background()

	st, err := svc.Create(ctx, &CreateStageTypeRequest{Code: "design", Name: "Проектирование"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Setting the current value is a no-op, not an error.
	st, err = svc.SetActive(ctx, st.ID, true)
	if err != nil {
		t.Fatalf("SetActive(true) on active failed: %v", err)
	}
	if !st.IsActive {
		t.Error("expected still active")
	}

	st, err = svc.SetActive(ctx, st.ID, false)
	if err != nil {
		t.Fatalf("SetActive(false) failed: %v", err)
	}
	if st.IsActive {
		t.Error("expected inactive")
	}
}

func TestStageTypeListFiltersInactive(t *testing.T) {
	svc, _ := newStageTypeService(t)
	ctx := context.Background()

	active, _ := svc.Create(ctx, &CreateStageTypeRequest{Code: "production", Name: "Производство"})
	inactive, _ := svc.Create(ctx, &CreateStageTypeRequest{Code: "delivery", Name: "Доставка"})
	if _, err := svc.SetActive(ctx, inactive.ID, false); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}

	visible, err := svc.List(ctx, false)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != active.ID {
		t.Errorf("expected only the active type, got %d items", len(visible))
	}

	all, err := svc.List(ctx, true)
	if err != nil {
		t.Fatalf("List(all) failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected both types with all=true, got %d", len(all))
	}
}

func TestStageTypeGetByCode(t *testing.T) {
	svc, _ := newStageTypeService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &CreateStageTypeRequest{Code: entity.StageTypeInstallation, Name: "Монтаж"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := svc.GetByCode(ctx, entity.StageTypeInstallation)
	if err != nil {
		t.Fatalf("GetByCode failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("expected %s, got %s", created.ID, got.ID)
	}
}
