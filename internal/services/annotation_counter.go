package services

import (
	"Casework/internal/models"
	"Casework/internal/repository"
	"context"
	"fmt"
)

// AnnotationCounter reports how many active annotations point at each node.
// Counts are computed on every call and are never rolled up to ancestors.
type AnnotationCounter interface {
	CountsFor(ctx context.Context, refs []models.NodeRef) (map[models.NodeRef]int, error)
	PagesFor(ctx context.Context, refs []models.NodeRef) (map[models.NodeRef][]uint, error)
}

type annotationCounterImpl struct {
	annotationRepo repository.AnnotationRepository
}

func NewAnnotationCounter(annotationRepo repository.AnnotationRepository) AnnotationCounter {
	return &annotationCounterImpl{annotationRepo: annotationRepo}
}

func groupByKind(refs []models.NodeRef) map[models.NodeKind][]uint {
	grouped := make(map[models.NodeKind][]uint)
	for _, ref := range refs {
		grouped[ref.Kind] = append(grouped[ref.Kind], ref.ID)
	}
	return grouped
}

func (s *annotationCounterImpl) CountsFor(ctx context.Context, refs []models.NodeRef) (map[models.NodeRef]int, error) {
	counts := make(map[models.NodeRef]int, len(refs))
	for kind, ids := range groupByKind(refs) {
		byID, err := s.annotationRepo.CountByNodes(ctx, nil, kind, ids)
		if err != nil {
			return nil, fmt.Errorf("count annotations for %s: %w", kind, err)
		}
		for _, id := range ids {
			counts[models.NodeRef{Kind: kind, ID: id}] = byID[id]
		}
	}
	return counts, nil
}

func (s *annotationCounterImpl) PagesFor(ctx context.Context, refs []models.NodeRef) (map[models.NodeRef][]uint, error) {
	pages := make(map[models.NodeRef][]uint, len(refs))
	for kind, ids := range groupByKind(refs) {
		byID, err := s.annotationRepo.PagesByNodes(ctx, nil, kind, ids)
		if err != nil {
			return nil, fmt.Errorf("collect annotation pages for %s: %w", kind, err)
		}
		for _, id := range ids {
			ref := models.NodeRef{Kind: kind, ID: id}
			pages[ref] = byID[id]
			if pages[ref] == nil {
				pages[ref] = []uint{}
			}
		}
	}
	return pages, nil
}
