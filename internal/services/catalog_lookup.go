package services

import (
	"Casework/internal/models"
	"Casework/internal/repository"
	"context"
	"fmt"
)

// CatalogLookup resolves catalog item references. Only active items are
// returned; callers treat a missing id as an invalid reference.
type CatalogLookup interface {
	Resolve(ctx context.Context, ids []uint) (map[uint]models.CatalogItem, error)
}

type catalogLookupImpl struct {
	catalogRepo repository.CatalogRepository
}

func NewCatalogLookup(catalogRepo repository.CatalogRepository) CatalogLookup {
	return &catalogLookupImpl{catalogRepo: catalogRepo}
}

func (s *catalogLookupImpl) Resolve(ctx context.Context, ids []uint) (map[uint]models.CatalogItem, error) {
	resolved := make(map[uint]models.CatalogItem, len(ids))
	if len(ids) == 0 {
		return resolved, nil
	}
	items, err := s.catalogRepo.FindByIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog items: %w", err)
	}
	for _, item := range items {
		if item.Active {
			resolved[item.ID] = item
		}
	}
	return resolved, nil
}
