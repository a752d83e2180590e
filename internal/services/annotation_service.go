package services

import (
	"Casework/internal/apperrors"
	"Casework/internal/dto"
	"Casework/internal/models"
	"Casework/internal/repository"
	"context"
	"encoding/json"
	"fmt"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"time"
)

const (
	ReplaceStrategy       = "replace"
	defaultAnnotationType = "room"
	defaultViewType       = "plan"
)

type AnnotationService interface {
	// ReplacePageAnnotations soft-deletes every active annotation of the page and
	// stores the submitted list in their place.
	ReplacePageAnnotations(rc RequestContext, pageID uint, req dto.SaveAnnotationsRequest) (*dto.SaveAnnotationsResponse, error)
	ListPageAnnotations(ctx context.Context, pageID uint) (*dto.PageAnnotationsResponse, error)
	// DeleteAnnotation soft-deletes one annotation and every annotation nested
	// below it and returns how many were removed.
	DeleteAnnotation(rc RequestContext, id uint) (int, error)
	PageHistory(ctx context.Context, pageID uint) ([]models.AnnotationHistory, error)
	// PurgeDeleted hard-deletes annotations soft-deleted longer than retention ago.
	PurgeDeleted(ctx context.Context, retention time.Duration) (int, error)
}

type annotationServiceImpl struct {
	db             *gorm.DB
	annotationRepo repository.AnnotationRepository
	pageRepo       repository.PageRepository
	projectRepo    repository.ProjectRepository
	hierarchyRepo  repository.HierarchyRepository
	logService     LogService
}

func NewAnnotationService(
	db *gorm.DB,
	annotationRepo repository.AnnotationRepository,
	pageRepo repository.PageRepository,
	projectRepo repository.ProjectRepository,
	hierarchyRepo repository.HierarchyRepository,
	logService LogService,
) AnnotationService {
	return &annotationServiceImpl{
		db:             db,
		annotationRepo: annotationRepo,
		pageRepo:       pageRepo,
		projectRepo:    projectRepo,
		hierarchyRepo:  hierarchyRepo,
		logService:     logService,
	}
}

// annotationKinds maps annotation types to the hierarchy level they mark up.
var annotationKinds = map[string]models.NodeKind{
	"room":          models.KindRoom,
	"location":      models.KindLocation,
	"room_location": models.KindLocation,
	"run":           models.KindRun,
	"cabinet_run":   models.KindRun,
	"cabinet":       models.KindCabinet,
}

func targetKind(input dto.AnnotationInput) models.NodeKind {
	if input.NodeKind != "" {
		return models.NodeKind(input.NodeKind)
	}
	return annotationKinds[valueOrDefault(input.AnnotationType, defaultAnnotationType)]
}

func valueOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func (s *annotationServiceImpl) findPage(ctx context.Context, pageID uint) (*models.PdfPage, error) {
	page, err := s.pageRepo.FindByID(ctx, nil, pageID)
	if err != nil {
		return nil, fmt.Errorf("load page: %w", err)
	}
	if page == nil {
		return nil, apperrors.NotFoundf("page %d", pageID)
	}
	return page, nil
}

func (s *annotationServiceImpl) ReplacePageAnnotations(rc RequestContext, pageID uint, req dto.SaveAnnotationsRequest) (*dto.SaveAnnotationsResponse, error) {
	ctx := rc.context()
	log := s.logService.WithRequest(rc).WithField("page_id", pageID)
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	page, err := s.findPage(ctx, pageID)
	if err != nil {
		return nil, err
	}

	var created []dto.CreatedEntity
	var removed, inserted int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.annotationRepo.FindActiveByPage(ctx, tx, pageID)
		if err != nil {
			return fmt.Errorf("load page annotations: %w", err)
		}
		ids := make([]uint, 0, len(existing))
		history := make([]*models.AnnotationHistory, 0, len(existing)+len(req.Annotations))
		for i := range existing {
			entry, err := historyEntry(rc, &existing[i], models.HistoryDeleted)
			if err != nil {
				return err
			}
			ids = append(ids, existing[i].ID)
			history = append(history, entry)
		}
		if err := s.annotationRepo.SoftDeleteByIDs(ctx, tx, ids); err != nil {
			return fmt.Errorf("remove page annotations: %w", err)
		}
		removed = len(ids)

		if req.CreateEntities {
			entities := &entityCreator{service: s, rc: rc, tx: tx, page: page, log: log}
			created, err = entities.createAll(req)
			if err != nil {
				return err
			}
		}
		linked := make(map[int]models.NodeRef, len(created))
		for _, entity := range created {
			linked[entity.AnnotationIndex] = models.NodeRef{Kind: models.NodeKind(entity.EntityType), ID: entity.EntityID}
		}

		annotations := make([]*models.Annotation, 0, len(req.Annotations))
		for i, input := range req.Annotations {
			annotation, err := s.buildAnnotation(rc, tx, page, input, log.WithField("index", i))
			if err != nil {
				return err
			}
			if ref, ok := linked[i]; ok {
				annotation.SetNode(&ref)
			}
			annotations = append(annotations, annotation)
		}
		if err := s.annotationRepo.CreateBatch(ctx, tx, annotations); err != nil {
			return fmt.Errorf("store annotations: %w", err)
		}
		inserted = len(annotations)

		if err := s.linkParentKeys(ctx, tx, req.Annotations, annotations, log); err != nil {
			return err
		}
		for i, annotation := range annotations {
			if ref, ok := annotation.Node(); ok && req.Annotations[i].Notes != "" {
				if err := s.hierarchyRepo.UpdateNotes(ctx, tx, ref, req.Annotations[i].Notes); err != nil {
					return fmt.Errorf("copy notes to %s: %w", ref, err)
				}
			}
			entry, err := historyEntry(rc, annotation, models.HistoryCreated)
			if err != nil {
				return err
			}
			history = append(history, entry)
		}
		return s.annotationRepo.CreateHistory(ctx, tx, history)
	})
	if err != nil {
		log.WithError(err).Warn("annotation replace rolled back")
		return nil, err
	}

	annotationWrites.WithLabelValues("deleted").Add(float64(removed))
	annotationWrites.WithLabelValues("created").Add(float64(inserted))
	log.WithFields(logrus.Fields{
		"removed":  removed,
		"inserted": inserted,
		"entities": len(created),
	}).Info("page annotations replaced")

	stored, err := s.annotationRepo.FindActiveByPage(ctx, nil, pageID)
	if err != nil {
		return nil, fmt.Errorf("reload page annotations: %w", err)
	}
	if created == nil {
		created = []dto.CreatedEntity{}
	}
	newEntities := 0
	for _, entity := range created {
		if !entity.Reused {
			newEntities++
		}
	}
	return &dto.SaveAnnotationsResponse{
		Success:              true,
		Strategy:             ReplaceStrategy,
		Count:                len(stored),
		Annotations:          stored,
		CreatedEntities:      created,
		EntitiesCreatedCount: newEntities,
	}, nil
}

// buildAnnotation converts one input. References that do not resolve inside
// the page's project are dropped with a warning rather than rejected.
func (s *annotationServiceImpl) buildAnnotation(rc RequestContext, tx *gorm.DB, page *models.PdfPage, input dto.AnnotationInput, log *logrus.Entry) (*models.Annotation, error) {
	ctx := rc.context()
	annotation := &models.Annotation{
		SoftDeleteModel: models.SoftDeleteModel{BaseModel: models.BaseModel{CreatorID: rc.ActorID}},
		PageID:          page.ID,
		AnnotationType:  valueOrDefault(input.AnnotationType, defaultAnnotationType),
		Label:           input.Label,
		X:               *input.X,
		Y:               *input.Y,
		Width:           *input.Width,
		Height:          *input.Height,
		ViewType:        valueOrDefault(input.ViewType, defaultViewType),
		Color:           input.Color,
		Notes:           input.Notes,
	}
	if input.Metadata != nil {
		metadata, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, fmt.Errorf("encode metadata: %w", err)
		}
		annotation.Metadata = datatypes.JSON(metadata)
	}

	if input.NodeID != nil {
		ref := models.NodeRef{Kind: targetKind(input), ID: *input.NodeID}
		if !ref.Kind.Annotatable() {
			log.WithField("node_id", *input.NodeID).Warn("annotation type cannot reference a node, dropping reference")
		} else {
			projectID, err := s.hierarchyRepo.ProjectOf(ctx, tx, ref)
			if err != nil {
				return nil, fmt.Errorf("resolve %s: %w", ref, err)
			}
			if projectID == page.ProjectID {
				annotation.SetNode(&ref)
			} else {
				log.WithField("node", ref.String()).Warn("annotation references a node outside the page's project, dropping reference")
			}
		}
	}

	if input.ParentAnnotationID != nil {
		parents, err := s.annotationRepo.FindActiveByIDs(ctx, tx, []uint{*input.ParentAnnotationID})
		if err != nil {
			return nil, fmt.Errorf("resolve parent annotation: %w", err)
		}
		if len(parents) == 1 {
			annotation.ParentAnnotationID = input.ParentAnnotationID
		} else {
			log.WithField("parent_annotation_id", *input.ParentAnnotationID).Warn("parent annotation is not active, dropping reference")
		}
	}
	return annotation, nil
}

// linkParentKeys points annotations at siblings of the same submission named by
// parent_key. It runs after insert, once every key has an id. A link that would
// close a cycle is ignored.
func (s *annotationServiceImpl) linkParentKeys(ctx context.Context, tx *gorm.DB, inputs []dto.AnnotationInput, annotations []*models.Annotation, log *logrus.Entry) error {
	byKey := make(map[string]int, len(inputs))
	for i, input := range inputs {
		if input.Key != "" {
			byKey[input.Key] = i
		}
	}
	parentOf := make(map[int]int, len(inputs))
	for i, input := range inputs {
		if input.ParentKey == "" {
			continue
		}
		fields := logrus.Fields{"index": i, "parent_key": input.ParentKey}
		parent, ok := byKey[input.ParentKey]
		if !ok || parent == i {
			log.WithFields(fields).Warn("parent key does not name another annotation, ignoring")
			continue
		}
		if reachesIndex(parentOf, parent, i) {
			log.WithFields(fields).Warn("parent key would nest an annotation inside itself, ignoring")
			continue
		}
		parentOf[i] = parent
		parentID := annotations[parent].ID
		if err := s.annotationRepo.SetParent(ctx, tx, annotations[i].ID, &parentID); err != nil {
			return fmt.Errorf("link annotation %d to parent %d: %w", annotations[i].ID, parentID, err)
		}
		annotations[i].ParentAnnotationID = &parentID
	}
	return nil
}

// reachesIndex reports whether following parentOf from start arrives at target.
func reachesIndex(parentOf map[int]int, start, target int) bool {
	for current, ok := start, true; ok; current, ok = parentOf[current] {
		if current == target {
			return true
		}
	}
	return false
}

func historyEntry(rc RequestContext, annotation *models.Annotation, action string) (*models.AnnotationHistory, error) {
	snapshot, err := json.Marshal(annotation)
	if err != nil {
		return nil, fmt.Errorf("snapshot annotation %d: %w", annotation.ID, err)
	}
	id := annotation.ID
	entry := &models.AnnotationHistory{
		BaseModel:    models.BaseModel{CreatorID: rc.ActorID},
		PageID:       annotation.PageID,
		AnnotationID: &id,
		Action:       action,
		RequestID:    rc.RequestID.String(),
	}
	if action == models.HistoryCreated {
		entry.After = datatypes.JSON(snapshot)
	} else {
		entry.Before = datatypes.JSON(snapshot)
	}
	return entry, nil
}

func (s *annotationServiceImpl) ListPageAnnotations(ctx context.Context, pageID uint) (*dto.PageAnnotationsResponse, error) {
	if _, err := s.findPage(ctx, pageID); err != nil {
		return nil, err
	}
	annotations, err := s.annotationRepo.FindActiveByPage(ctx, nil, pageID)
	if err != nil {
		return nil, fmt.Errorf("load page annotations: %w", err)
	}
	response := &dto.PageAnnotationsResponse{
		Success:     true,
		PageID:      pageID,
		Count:       len(annotations),
		Annotations: annotations,
	}
	for i := range annotations {
		updated := annotations[i].UpdatedAt
		if response.LastModified == nil || updated.After(*response.LastModified) {
			response.LastModified = &updated
		}
	}
	return response, nil
}

func (s *annotationServiceImpl) DeleteAnnotation(rc RequestContext, id uint) (int, error) {
	ctx := rc.context()
	var deleted int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		annotation, err := s.annotationRepo.FindByID(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("load annotation: %w", err)
		}
		if annotation == nil {
			return apperrors.NotFoundf("annotation %d", id)
		}
		descendants, err := s.annotationRepo.FindDescendantIDs(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("collect nested annotations: %w", err)
		}
		ids := append([]uint{id}, descendants...)
		doomed, err := s.annotationRepo.FindActiveByIDs(ctx, tx, ids)
		if err != nil {
			return err
		}
		history := make([]*models.AnnotationHistory, 0, len(doomed))
		for i := range doomed {
			entry, err := historyEntry(rc, &doomed[i], models.HistoryDeleted)
			if err != nil {
				return err
			}
			history = append(history, entry)
		}
		if err := s.annotationRepo.SoftDeleteByIDs(ctx, tx, ids); err != nil {
			return fmt.Errorf("delete annotations: %w", err)
		}
		deleted = len(doomed)
		return s.annotationRepo.CreateHistory(ctx, tx, history)
	})
	if err != nil {
		return 0, err
	}
	annotationWrites.WithLabelValues("deleted").Add(float64(deleted))
	s.logService.WithRequest(rc).WithFields(logrus.Fields{
		"annotation_id": id,
		"count":         deleted,
	}).Info("annotation deleted")
	return deleted, nil
}

func (s *annotationServiceImpl) PageHistory(ctx context.Context, pageID uint) ([]models.AnnotationHistory, error) {
	if _, err := s.findPage(ctx, pageID); err != nil {
		return nil, err
	}
	entries, err := s.annotationRepo.FindHistoryByPage(ctx, nil, pageID)
	if err != nil {
		return nil, fmt.Errorf("load annotation history: %w", err)
	}
	return entries, nil
}

func (s *annotationServiceImpl) PurgeDeleted(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := time.Now().Add(-retention)
	var purged int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expired, err := s.annotationRepo.FindDeletedBefore(ctx, tx, cutoff)
		if err != nil {
			return fmt.Errorf("find expired annotations: %w", err)
		}
		if len(expired) == 0 {
			return nil
		}
		ids := make([]uint, 0, len(expired))
		history := make([]*models.AnnotationHistory, 0, len(expired))
		for i := range expired {
			entry, err := historyEntry(RequestContext{}, &expired[i], models.HistoryPurged)
			if err != nil {
				return err
			}
			entry.RequestID = ""
			ids = append(ids, expired[i].ID)
			history = append(history, entry)
		}
		if err := s.annotationRepo.PurgeByIDs(ctx, tx, ids); err != nil {
			return fmt.Errorf("purge annotations: %w", err)
		}
		purged = len(ids)
		return s.annotationRepo.CreateHistory(ctx, tx, history)
	})
	if err != nil {
		return 0, err
	}
	annotationsPurged.Add(float64(purged))
	return purged, nil
}
