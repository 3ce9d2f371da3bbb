package migrate

import (
	"fmt"
	"testing"
	"time"

	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:migrate_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestRunAppliesAllSteps(t *testing.T) {
	db := openTestDB(t)

	if err := Run(db, nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var applied int64
	db.Model(&SchemaMigration{}).Count(&applied)
	if applied != int64(len(steps)) {
		t.Fatalf("expected %d applied migrations, got %d", len(steps), applied)
	}

	var stageTypes int64
	db.Model(&entity.StageType{}).Count(&stageTypes)
	if stageTypes != 6 {
		t.Errorf("expected 6 seeded stage types, got %d", stageTypes)
	}

	var admin entity.User
	if err := db.Where("username = ?", "admin").First(&admin).Error; err != nil {
		t.Fatalf("expected seeded admin user: %v", err)
	}
	if admin.PasswordHash == "" {
		t.Error("expected admin password hash to be set")
	}

	if !db.Migrator().HasIndex(&entity.StageMediaComment{}, "idx_stage_media") {
		t.Error("expected unique comment index after migrations")
	}
}

func TestRunIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	if err := Run(db, nil); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	if err := Run(db, nil); err != nil {
		t.Fatalf("second Run failed: %v", err)
	}

	var applied int64
	db.Model(&SchemaMigration{}).Count(&applied)
	if applied != int64(len(steps)) {
		t.Errorf("expected %d ledger rows after rerun, got %d", len(steps), applied)
	}

	var stageTypes int64
	db.Model(&entity.StageType{}).Count(&stageTypes)
	if stageTypes != 6 {
		t.Errorf("expected stage types not duplicated, got %d", stageTypes)
	}

	var admins int64
	db.Model(&entity.User{}).Where("username = ?", "admin").Count(&admins)
	if admins != 1 {
		t.Errorf("expected one admin, got %d", admins)
	}
}

func TestSeededStageTypeCodes(t *testing.T) {
	db := openTestDB(t)
	if err := Run(db, nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, code := range []string{
		entity.StageTypeMeasurement,
		entity.StageTypeDesign,
		entity.StageTypeProcurement,
		entity.StageTypeProduction,
		entity.StageTypeInstallation,
		entity.StageTypeDelivery,
	} {
		var st entity.StageType
		if err := db.Where("code = ?", code).First(&st).Error; err != nil {
			t.Errorf("expected stage type %q to be seeded: %v", code, err)
			continue
		}
		if !st.IsActive {
			t.Errorf("expected %q active", code)
		}
	}
}
