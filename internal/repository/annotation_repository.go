package repository

import (
	"Casework/internal/models"
	"context"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"time"
)

type AnnotationRepository interface {
	GenericRepository[models.Annotation]
	FindActiveByPage(ctx context.Context, tx *gorm.DB, pageID uint) ([]models.Annotation, error)
	FindActiveByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Annotation, error)
	FindActiveByNodes(ctx context.Context, tx *gorm.DB, kind models.NodeKind, nodeIDs []uint) ([]models.Annotation, error)
	CreateBatch(ctx context.Context, tx *gorm.DB, annotations []*models.Annotation) error
	SetParent(ctx context.Context, tx *gorm.DB, id uint, parentID *uint) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uint) error
	// FindDescendantIDs returns the active annotations nested below rootID,
	// following parent_annotation_id at any depth.
	FindDescendantIDs(ctx context.Context, tx *gorm.DB, rootID uint) ([]uint, error)
	CountByNodes(ctx context.Context, tx *gorm.DB, kind models.NodeKind, nodeIDs []uint) (map[uint]int, error)
	PagesByNodes(ctx context.Context, tx *gorm.DB, kind models.NodeKind, nodeIDs []uint) (map[uint][]uint, error)
	FindDeletedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]models.Annotation, error)
	PurgeByIDs(ctx context.Context, tx *gorm.DB, ids []uint) error
	CreateHistory(ctx context.Context, tx *gorm.DB, entries []*models.AnnotationHistory) error
	FindHistoryByPage(ctx context.Context, tx *gorm.DB, pageID uint) ([]models.AnnotationHistory, error)
}

type AnnotationRepositoryImpl struct {
	GenericRepository[models.Annotation]
	db *gorm.DB
}

func NewAnnotationRepository(db *gorm.DB) AnnotationRepository {
	return &AnnotationRepositoryImpl{
		GenericRepository: NewGenericRepository[models.Annotation](db),
		db:                db,
	}
}

func (r *AnnotationRepositoryImpl) FindActiveByPage(ctx context.Context, tx *gorm.DB, pageID uint) ([]models.Annotation, error) {
	var annotations []models.Annotation
	err := connection(ctx, r.db, tx).
		Where("page_id = ?", pageID).
		Order("created_at").Order("id").
		Find(&annotations).Error
	return annotations, err
}

func (r *AnnotationRepositoryImpl) FindActiveByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Annotation, error) {
	var annotations []models.Annotation
	if len(ids) == 0 {
		return annotations, nil
	}
	err := connection(ctx, r.db, tx).Where("id IN ?", ids).Order("id").Find(&annotations).Error
	return annotations, err
}

func (r *AnnotationRepositoryImpl) FindActiveByNodes(ctx context.Context, tx *gorm.DB, kind models.NodeKind, nodeIDs []uint) ([]models.Annotation, error) {
	var annotations []models.Annotation
	if len(nodeIDs) == 0 {
		return annotations, nil
	}
	err := connection(ctx, r.db, tx).
		Where("node_kind = ? AND node_id IN ?", string(kind), nodeIDs).
		Order("id").
		Find(&annotations).Error
	return annotations, err
}

func (r *AnnotationRepositoryImpl) CreateBatch(ctx context.Context, tx *gorm.DB, annotations []*models.Annotation) error {
	if len(annotations) == 0 {
		return nil
	}
	return connection(ctx, r.db, tx).Omit(clause.Associations).Create(&annotations).Error
}

func (r *AnnotationRepositoryImpl) SetParent(ctx context.Context, tx *gorm.DB, id uint, parentID *uint) error {
	return connection(ctx, r.db, tx).
		Model(&models.Annotation{}).
		Where("id = ?", id).
		Update("parent_annotation_id", parentID).Error
}

func (r *AnnotationRepositoryImpl) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return connection(ctx, r.db, tx).Where("id IN ?", ids).Delete(&models.Annotation{}).Error
}

func (r *AnnotationRepositoryImpl) FindDescendantIDs(ctx context.Context, tx *gorm.DB, rootID uint) ([]uint, error) {
	query := `
        WITH RECURSIVE descendants AS (
            SELECT id
            FROM pdf_annotations
            WHERE parent_annotation_id = ? AND deleted_at IS NULL

            UNION

            SELECT a.id
            FROM pdf_annotations a
            INNER JOIN descendants d ON a.parent_annotation_id = d.id
            WHERE a.deleted_at IS NULL
        )
        SELECT id FROM descendants;
    `
	var ids []uint
	err := connection(ctx, r.db, tx).Raw(query, rootID).Scan(&ids).Error
	return ids, err
}

type nodeCount struct {
	NodeID uint
	Total  int
}

func (r *AnnotationRepositoryImpl) CountByNodes(ctx context.Context, tx *gorm.DB, kind models.NodeKind, nodeIDs []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(nodeIDs))
	if len(nodeIDs) == 0 {
		return counts, nil
	}
	var rows []nodeCount
	err := connection(ctx, r.db, tx).
		Model(&models.Annotation{}).
		Select("node_id, COUNT(*) AS total").
		Where("deleted_at IS NULL").
		Where("node_kind = ? AND node_id IN ?", string(kind), nodeIDs).
		Group("node_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.NodeID] = row.Total
	}
	return counts, nil
}

type nodePage struct {
	NodeID uint
	PageID uint
}

func (r *AnnotationRepositoryImpl) PagesByNodes(ctx context.Context, tx *gorm.DB, kind models.NodeKind, nodeIDs []uint) (map[uint][]uint, error) {
	pages := make(map[uint][]uint, len(nodeIDs))
	if len(nodeIDs) == 0 {
		return pages, nil
	}
	var rows []nodePage
	err := connection(ctx, r.db, tx).
		Model(&models.Annotation{}).
		Distinct("node_id", "page_id").
		Where("deleted_at IS NULL").
		Where("node_kind = ? AND node_id IN ?", string(kind), nodeIDs).
		Order("node_id").Order("page_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		pages[row.NodeID] = append(pages[row.NodeID], row.PageID)
	}
	return pages, nil
}

func (r *AnnotationRepositoryImpl) FindDeletedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]models.Annotation, error) {
	var annotations []models.Annotation
	err := connection(ctx, r.db, tx).
		Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Order("id").
		Find(&annotations).Error
	return annotations, err
}

func (r *AnnotationRepositoryImpl) PurgeByIDs(ctx context.Context, tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return connection(ctx, r.db, tx).Unscoped().Where("id IN ?", ids).Delete(&models.Annotation{}).Error
}

func (r *AnnotationRepositoryImpl) CreateHistory(ctx context.Context, tx *gorm.DB, entries []*models.AnnotationHistory) error {
	if len(entries) == 0 {
		return nil
	}
	return connection(ctx, r.db, tx).Create(&entries).Error
}

func (r *AnnotationRepositoryImpl) FindHistoryByPage(ctx context.Context, tx *gorm.DB, pageID uint) ([]models.AnnotationHistory, error) {
	var entries []models.AnnotationHistory
	err := connection(ctx, r.db, tx).
		Where("page_id = ?", pageID).
		Order("created_at").Order("id").
		Find(&entries).Error
	return entries, err
}
