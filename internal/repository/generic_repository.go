package repository

import (
	"context"
	"errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GenericRepositoryImpl[T any] struct {
	db *gorm.DB
}

func NewGenericRepository[T any](db *gorm.DB) GenericRepository[T] {
	return &GenericRepositoryImpl[T]{db: db}
}

func (r *GenericRepositoryImpl[T]) Create(ctx context.Context, tx *gorm.DB, entity *T) error {
	return connection(ctx, r.db, tx).Omit(clause.Associations).Create(entity).Error
}

// FindByID returns nil without an error when no row matches.
func (r *GenericRepositoryImpl[T]) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*T, error) {
	var entity T
	err := connection(ctx, r.db, tx).First(&entity, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

func (r *GenericRepositoryImpl[T]) FindAll(ctx context.Context, tx *gorm.DB) ([]T, error) {
	var entities []T
	err := connection(ctx, r.db, tx).Order("id").Find(&entities).Error
	return entities, err
}

func (r *GenericRepositoryImpl[T]) Update(ctx context.Context, tx *gorm.DB, entity *T) error {
	return connection(ctx, r.db, tx).Omit(clause.Associations).Save(entity).Error
}

func (r *GenericRepositoryImpl[T]) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	var entity T
	return connection(ctx, r.db, tx).Delete(&entity, id).Error
}
