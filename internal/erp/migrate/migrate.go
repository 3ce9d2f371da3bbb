package migrate

import (
	"fmt"
	"time"

	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SchemaMigration is one applied migration in the ledger.
type SchemaMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:128;not null"`
	AppliedAt time.Time `gorm:"not null"`
}

func (SchemaMigration) TableName() string {
	return "schema_migrations"
}

type step struct {
	version int
	name    string
	run     func(tx *gorm.DB) error
}

var steps = []step{
	{1, "base_schema", baseSchema},
	{2, "seed_stage_types", seedStageTypes},
	{3, "seed_admin", seedAdmin},
	{4, "comment_index_guard", commentIndexGuard},
}

// Run applies pending migrations in order, each inside its own transaction.
// Already-applied versions are skipped, so Run is idempotent.
func Run(db *gorm.DB, logger *zap.Logger) error {
	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("create migration ledger: %w", err)
	}

	for _, s := range steps {
		var count int64
		if err := db.Model(&SchemaMigration{}).Where("version = ?", s.version).Count(&count).Error; err != nil {
			return fmt.Errorf("check migration %d: %w", s.version, err)
		}
		if count > 0 {
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := s.run(tx); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{
				Version:   s.version,
				Name:      s.name,
				AppliedAt: time.Now(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", s.version, s.name, err)
		}
		if logger != nil {
			logger.Info("applied migration", zap.Int("version", s.version), zap.String("name", s.name))
		}
	}
	return nil
}

func baseSchema(tx *gorm.DB) error {
	return tx.AutoMigrate(entity.AllModels()...)
}

// commentIndexGuard makes sure the unique (stage_id, media_id) index exists.
// Databases created before the index was declared on the model would let the
// comment upsert insert duplicates without it.
func commentIndexGuard(tx *gorm.DB) error {
	m := tx.Migrator()
	if m.HasIndex(&entity.StageMediaComment{}, "idx_stage_media") {
		return nil
	}
	return m.CreateIndex(&entity.StageMediaComment{}, "idx_stage_media")
}

// seedStageTypes inserts the built-in stage type catalog. Existing codes
// are left untouched.
func seedStageTypes(tx *gorm.DB) error {
	builtins := []entity.StageType{
		{Code: entity.StageTypeMeasurement, Name: "Замер", Icon: "ruler"},
		{Code: entity.StageTypeDesign, Name: "Проектирование", Icon: "pencil"},
		{Code: entity.StageTypeProcurement, Name: "Закупка", Icon: "cart"},
		{Code: entity.StageTypeProduction, Name: "Производство", Icon: "factory"},
		{Code: entity.StageTypeInstallation, Name: "Монтаж", Icon: "wrench"},
		{Code: entity.StageTypeDelivery, Name: "Доставка", Icon: "truck"},
	}
	now := time.Now()
	for _, st := range builtins {
		var count int64
		if err := tx.Model(&entity.StageType{}).Where("code = ?", st.Code).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		st.ID = uuid.New().String()
		st.IsActive = true
		st.CreatedAt = now
		st.UpdatedAt = now
		if err := tx.Create(&st).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedAdmin creates the admin role and the initial admin account. The
// default password must be changed after the first login.
func seedAdmin(tx *gorm.DB) error {
	now := time.Now()

	var roleCount int64
	if err := tx.Model(&entity.Role{}).Where("code = ?", "admin").Count(&roleCount).Error; err != nil {
		return err
	}
	var adminRole entity.Role
	if roleCount == 0 {
		adminRole = entity.Role{
			ID:          uuid.New().String(),
			Code:        "admin",
			Name:        "Administrator",
			Permissions: entity.JSONBArray{"*"},
			IsSystem:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Create(&adminRole).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("code = ?", "admin").First(&adminRole).Error; err != nil {
			return err
		}
	}

	var userCount int64
	if err := tx.Model(&entity.User{}).Where("username = ?", "admin").Count(&userCount).Error; err != nil {
		return err
	}
	if userCount > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := entity.User{
		ID:           uuid.New().String(),
		Username:     "admin",
		Name:         "Administrator",
		PasswordHash: string(hash),
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
		Roles:        []entity.Role{adminRole},
	}
	return tx.Create(&admin).Error
}
