package repository

import (
	"Casework/internal/models"
	"context"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	GenericRepository[models.Project]
	// BumpVersion increments tree_version only if it still equals expected and
	// reports whether the row was updated.
	BumpVersion(ctx context.Context, tx *gorm.DB, projectID uint, expected uint) (bool, error)
}

type ProjectRepositoryImpl struct {
	GenericRepository[models.Project]
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &ProjectRepositoryImpl{
		GenericRepository: NewGenericRepository[models.Project](db),
		db:                db,
	}
}

func (r *ProjectRepositoryImpl) BumpVersion(ctx context.Context, tx *gorm.DB, projectID uint, expected uint) (bool, error) {
	result := connection(ctx, r.db, tx).
		Model(&models.Project{}).
		Where("id = ? AND tree_version = ?", projectID, expected).
		UpdateColumn("tree_version", gorm.Expr("tree_version + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

type PageRepository interface {
	GenericRepository[models.PdfPage]
}

func NewPageRepository(db *gorm.DB) PageRepository {
	return NewGenericRepository[models.PdfPage](db)
}
