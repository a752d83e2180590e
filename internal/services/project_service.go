package services

import (
	"Casework/internal/apperrors"
	"Casework/internal/dto"
	"Casework/internal/models"
	"Casework/internal/repository"
	"fmt"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ProjectService interface {
	CreateProject(rc RequestContext, req dto.CreateProjectRequest) (*models.Project, error)
	// DeleteNode removes one hierarchy node with its subtree and soft-deletes the
	// annotations linked to anything removed. It returns the removed row count
	// per kind.
	DeleteNode(rc RequestContext, kind models.NodeKind, id uint) (map[string]int, error)
}

type projectServiceImpl struct {
	db             *gorm.DB
	projectRepo    repository.ProjectRepository
	hierarchyRepo  repository.HierarchyRepository
	annotationRepo repository.AnnotationRepository
	logService     LogService
}

func NewProjectService(
	db *gorm.DB,
	projectRepo repository.ProjectRepository,
	hierarchyRepo repository.HierarchyRepository,
	annotationRepo repository.AnnotationRepository,
	logService LogService,
) ProjectService {
	return &projectServiceImpl{
		db:             db,
		projectRepo:    projectRepo,
		hierarchyRepo:  hierarchyRepo,
		annotationRepo: annotationRepo,
		logService:     logService,
	}
}

func (s *projectServiceImpl) CreateProject(rc RequestContext, req dto.CreateProjectRequest) (*models.Project, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	project := &models.Project{
		BaseModel: models.BaseModel{CreatorID: rc.ActorID},
		Name:      req.Name,
	}
	if err := s.projectRepo.Create(rc.context(), nil, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	s.logService.WithRequest(rc).WithField("project_id", project.ID).Info("project created")
	return project, nil
}

func (s *projectServiceImpl) DeleteNode(rc RequestContext, kind models.NodeKind, id uint) (map[string]int, error) {
	if kind == models.KindProject || kind == models.KindContent {
		return nil, apperrors.NewConstraintViolation("%s nodes cannot be deleted individually", kind)
	}
	ctx := rc.context()
	ref := models.NodeRef{Kind: kind, ID: id}
	counts := make(map[string]int)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		projectID, err := s.hierarchyRepo.ProjectOf(ctx, tx, ref)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", ref, err)
		}
		if projectID == 0 {
			return apperrors.NotFoundf("%s %d", kind, id)
		}
		project, err := s.projectRepo.FindByID(ctx, tx, projectID)
		if err != nil {
			return fmt.Errorf("load project: %w", err)
		}

		removed, err := s.hierarchyRepo.DeleteSubtree(ctx, tx, kind, []uint{id})
		if err != nil {
			return fmt.Errorf("delete %s: %w", ref, err)
		}
		var history []*models.AnnotationHistory
		var annotationIDs []uint
		for removedKind, ids := range removed {
			counts[string(removedKind)] = len(ids)
			if !removedKind.Annotatable() {
				continue
			}
			linked, err := s.annotationRepo.FindActiveByNodes(ctx, tx, removedKind, ids)
			if err != nil {
				return fmt.Errorf("find annotations of deleted %s: %w", removedKind, err)
			}
			for i := range linked {
				entry, err := historyEntry(rc, &linked[i], models.HistoryDeleted)
				if err != nil {
					return err
				}
				annotationIDs = append(annotationIDs, linked[i].ID)
				history = append(history, entry)
			}
		}
		if err := s.annotationRepo.SoftDeleteByIDs(ctx, tx, annotationIDs); err != nil {
			return fmt.Errorf("delete linked annotations: %w", err)
		}
		if err := s.annotationRepo.CreateHistory(ctx, tx, history); err != nil {
			return fmt.Errorf("record annotation history: %w", err)
		}
		counts["annotation"] = len(annotationIDs)

		bumped, err := s.projectRepo.BumpVersion(ctx, tx, projectID, project.TreeVersion)
		if err != nil {
			return fmt.Errorf("bump tree version: %w", err)
		}
		if !bumped {
			return fmt.Errorf("project %d changed during delete: %w", projectID, apperrors.ErrConflict)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logService.WithRequest(rc).WithFields(logrus.Fields{
		"node":    ref.String(),
		"removed": counts,
	}).Info("node deleted")
	return counts, nil
}
