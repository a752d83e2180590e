package services

import (
	"Casework/database"
	"Casework/internal/dto"
	"Casework/internal/helpers"
	"Casework/internal/models"
	"Casework/internal/repository"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db             *gorm.DB
	projectRepo    repository.ProjectRepository
	hierarchyRepo  repository.HierarchyRepository
	annotationRepo repository.AnnotationRepository
	reconcile      ReconcileService
	tree           TreeService
	annotations    AnnotationService
	projects       ProjectService
	logService     LogService
}

func quietLogService() LogService {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return LogService{Log: log}
}

func newTestEnv(t *testing.T) *testEnv {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { database.CloseDatabase(db) })

	e := &testEnv{
		db:             db,
		projectRepo:    repository.NewProjectRepository(db),
		hierarchyRepo:  repository.NewHierarchyRepository(db),
		annotationRepo: repository.NewAnnotationRepository(db),
		logService:     quietLogService(),
	}
	catalog := NewCatalogLookup(repository.NewCatalogRepository(db))
	e.reconcile = NewReconcileService(db, e.projectRepo, e.hierarchyRepo, catalog, e.logService)
	e.tree = NewTreeService(db, e.projectRepo, e.hierarchyRepo, NewAnnotationCounter(e.annotationRepo))
	e.annotations = NewAnnotationService(db, e.annotationRepo, repository.NewPageRepository(db), e.projectRepo, e.hierarchyRepo, e.logService)
	e.projects = NewProjectService(db, e.projectRepo, e.hierarchyRepo, e.annotationRepo, e.logService)
	return e
}

func testRequest() RequestContext {
	return NewRequestContext(context.Background(), helpers.Ptr(uint(7)))
}

func (e *testEnv) project(t *testing.T, name string) models.Project {
	project := models.Project{Name: name}
	require.NoError(t, e.db.Create(&project).Error)
	return project
}

func (e *testEnv) page(t *testing.T, projectID uint, number int) models.PdfPage {
	page := models.PdfPage{ProjectID: projectID, PageNumber: number}
	require.NoError(t, e.db.Create(&page).Error)
	return page
}

func (e *testEnv) catalogItem(t *testing.T, name string, unitCost string, active bool) models.CatalogItem {
	item := models.CatalogItem{Name: name, Active: active}
	if unitCost != "" {
		item.UnitCost = decimal.NewNullDecimal(decimal.RequireFromString(unitCost))
	}
	require.NoError(t, e.db.Create(&item).Error)
	return item
}

// submit decodes body the way the HTTP layer does and reconciles it.
func (e *testEnv) submit(t *testing.T, projectID uint, body string) (*ReconcileResult, error) {
	var req dto.ReconcileRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return e.reconcile.Reconcile(testRequest(), projectID, req)
}

func (e *testEnv) mustSubmit(t *testing.T, projectID uint, body string) *ReconcileResult {
	result, err := e.submit(t, projectID, body)
	require.NoError(t, err)
	return result
}

func (e *testEnv) count(t *testing.T, model interface{}) int64 {
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func (e *testEnv) rooms(t *testing.T, projectID uint) []models.Room {
	rooms, err := e.hierarchyRepo.LoadProjectTree(context.Background(), nil, projectID)
	require.NoError(t, err)
	return rooms
}
