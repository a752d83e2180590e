package repository

import (
	"context"
	"gorm.io/gorm"
)

// GenericRepository is the CRUD surface shared by every entity repository. A nil
// tx runs the call on the repository's own connection.
type GenericRepository[T any] interface {
	Create(ctx context.Context, tx *gorm.DB, entity *T) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*T, error)
	FindAll(ctx context.Context, tx *gorm.DB) ([]T, error)
	Update(ctx context.Context, tx *gorm.DB, entity *T) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

func connection(ctx context.Context, db *gorm.DB, tx *gorm.DB) *gorm.DB {
	transaction := tx
	if transaction == nil {
		transaction = db
	}
	return transaction.WithContext(ctx)
}
