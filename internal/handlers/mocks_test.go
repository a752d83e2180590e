package handlers

import (
	"Casework/internal/dto"
	"Casework/internal/models"
	"Casework/internal/services"
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockReconcileService struct {
	mock.Mock
}

func (m *MockReconcileService) Reconcile(rc services.RequestContext, projectID uint, req dto.ReconcileRequest) (*services.ReconcileResult, error) {
	args := m.Called(rc, projectID, req)
	result, _ := args.Get(0).(*services.ReconcileResult)
	return result, args.Error(1)
}

type MockTreeService struct {
	mock.Mock
}

func (m *MockTreeService) LoadTree(ctx context.Context, projectID uint) (*dto.ProjectTree, error) {
	args := m.Called(ctx, projectID)
	tree, _ := args.Get(0).(*dto.ProjectTree)
	return tree, args.Error(1)
}

type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) CreateProject(rc services.RequestContext, req dto.CreateProjectRequest) (*models.Project, error) {
	args := m.Called(rc, req)
	project, _ := args.Get(0).(*models.Project)
	return project, args.Error(1)
}

func (m *MockProjectService) DeleteNode(rc services.RequestContext, kind models.NodeKind, id uint) (map[string]int, error) {
	args := m.Called(rc, kind, id)
	removed, _ := args.Get(0).(map[string]int)
	return removed, args.Error(1)
}

type MockAnnotationService struct {
	mock.Mock
}

func (m *MockAnnotationService) ReplacePageAnnotations(rc services.RequestContext, pageID uint, req dto.SaveAnnotationsRequest) (*dto.SaveAnnotationsResponse, error) {
	args := m.Called(rc, pageID, req)
	response, _ := args.Get(0).(*dto.SaveAnnotationsResponse)
	return response, args.Error(1)
}

func (m *MockAnnotationService) ListPageAnnotations(ctx context.Context, pageID uint) (*dto.PageAnnotationsResponse, error) {
	args := m.Called(ctx, pageID)
	response, _ := args.Get(0).(*dto.PageAnnotationsResponse)
	return response, args.Error(1)
}

func (m *MockAnnotationService) DeleteAnnotation(rc services.RequestContext, id uint) (int, error) {
	args := m.Called(rc, id)
	return args.Int(0), args.Error(1)
}

func (m *MockAnnotationService) PageHistory(ctx context.Context, pageID uint) ([]models.AnnotationHistory, error) {
	args := m.Called(ctx, pageID)
	entries, _ := args.Get(0).([]models.AnnotationHistory)
	return entries, args.Error(1)
}

func (m *MockAnnotationService) PurgeDeleted(ctx context.Context, retention time.Duration) (int, error) {
	args := m.Called(ctx, retention)
	return args.Int(0), args.Error(1)
}
