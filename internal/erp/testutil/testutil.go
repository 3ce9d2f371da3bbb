package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"github.com/artelsoft/artel-erp/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const JWTSecret = "artel-erp-test-secret"

// SetupTestDB opens an isolated in-memory database and migrates the full
// schema. Every test gets a fresh database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:test_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(entity.AllModels()...); err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupRouter creates a gin test router.
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group guarded by the JWT middleware.
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid JWT for tests.
func GenerateTestToken(userID, name string, roles, permissions []string) string {
	if roles == nil {
		roles = []string{}
	}
	if permissions == nil {
		permissions = []string{}
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"uid":   userID,
		"name":  name,
		"roles": roles,
		"perms": permissions,
		"iss":   "artel-erp",
		"iat":   now.Unix(),
		"exp":   now.Add(24 * time.Hour).Unix(),
		"jti":   fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DefaultTestToken returns a token for an admin test user.
func DefaultTestToken() string {
	return GenerateTestToken(
		"test-user-001",
		"Test Admin",
		[]string{"admin"},
		[]string{"*"},
	)
}

// DoRequest executes an HTTP request against the test router.
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse decodes the JSON envelope into a generic map.
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedStageType creates a stage type row.
func SeedStageType(t *testing.T, db *gorm.DB, code, name string) *entity.StageType {
	t.Helper()
	st := &entity.StageType{
		ID:        uuid.New().String(),
		Code:      code,
		Name:      name,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(st).Error; err != nil {
		t.Fatalf("Failed to seed stage type: %v", err)
	}
	return st
}

// SeedTemplate creates a process template with ordered stages. stageNames
// pairs with stageTypeIDs by index; a nil entry leaves the stage untyped.
func SeedTemplate(t *testing.T, db *gorm.DB, name string, stageNames []string, stageTypeIDs []*string) *entity.ProcessTemplate {
	t.Helper()
	now := time.Now()
	tmpl := &entity.ProcessTemplate{
		ID:        uuid.New().String(),
		Name:      name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(tmpl).Error; err != nil {
		t.Fatalf("Failed to seed template: %v", err)
	}
	for i, stageName := range stageNames {
		var typeID *string
		if stageTypeIDs != nil && i < len(stageTypeIDs) {
			typeID = stageTypeIDs[i]
		}
		stage := &entity.TemplateStage{
			ID:          uuid.New().String(),
			TemplateID:  tmpl.ID,
			Name:        stageName,
			StageTypeID: typeID,
			SortOrder:   i + 1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := db.Create(stage).Error; err != nil {
			t.Fatalf("Failed to seed template stage: %v", err)
		}
	}
	return tmpl
}

// SeedProjectWithStages creates a project with sequential stages, the first
// one at firstStatus and the rest pending.
func SeedProjectWithStages(t *testing.T, db *gorm.DB, name string, stageNames []string, firstStatus string) *entity.Project {
	t.Helper()
	now := time.Now()
	project := &entity.Project{
		ID:        uuid.New().String(),
		Name:      name,
		Status:    entity.ProjectStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("Failed to seed project: %v", err)
	}
	for i, stageName := range stageNames {
		status := entity.StageStatusPending
		if i == 0 && firstStatus != "" {
			status = firstStatus
		}
		stage := &entity.ProjectStage{
			ID:        uuid.New().String(),
			ProjectID: project.ID,
			Name:      stageName,
			Status:    status,
			SortOrder: i + 1,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := db.Create(stage).Error; err != nil {
			t.Fatalf("Failed to seed project stage: %v", err)
		}
	}
	return project
}

// SeedWarehouseItem creates a stock item at the given quantity.
func SeedWarehouseItem(t *testing.T, db *gorm.DB, sku, name string, quantity float64) *entity.WarehouseItem {
	t.Helper()
	now := time.Now()
	item := &entity.WarehouseItem{
		ID:        uuid.New().String(),
		SKU:       sku,
		Name:      name,
		Quantity:  quantity,
		Unit:      "pcs",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("Failed to seed warehouse item: %v", err)
	}
	return item
}
