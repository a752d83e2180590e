package repository

import (
	"Casework/internal/models"
	"context"
	"gorm.io/gorm"
)

type CatalogRepository interface {
	FindByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.CatalogItem, error)
}

type CatalogRepositoryImpl struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &CatalogRepositoryImpl{db: db}
}

func (r *CatalogRepositoryImpl) FindByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	if len(ids) == 0 {
		return items, nil
	}
	err := connection(ctx, r.db, tx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}
