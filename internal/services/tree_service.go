package services

import (
	"Casework/internal/apperrors"
	"Casework/internal/dto"
	"Casework/internal/helpers"
	"Casework/internal/mapper"
	"Casework/internal/models"
	"Casework/internal/repository"
	"context"
	"database/sql"
	"fmt"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TreeService interface {
	// LoadTree returns the project's hierarchy with linear feet, price estimates
	// and annotation counts filled in. It never writes.
	LoadTree(ctx context.Context, projectID uint) (*dto.ProjectTree, error)
}

type treeServiceImpl struct {
	db            *gorm.DB
	projectRepo   repository.ProjectRepository
	hierarchyRepo repository.HierarchyRepository
	counter       AnnotationCounter
}

func NewTreeService(
	db *gorm.DB,
	projectRepo repository.ProjectRepository,
	hierarchyRepo repository.HierarchyRepository,
	counter AnnotationCounter,
) TreeService {
	return &treeServiceImpl{
		db:            db,
		projectRepo:   projectRepo,
		hierarchyRepo: hierarchyRepo,
		counter:       counter,
	}
}

// annotated pairs a mapped node with the record it came from so counts can be
// attached after one bulk query.
type annotated struct {
	ref  models.NodeRef
	node *dto.TreeNode
}

func (s *treeServiceImpl) LoadTree(ctx context.Context, projectID uint) (*dto.ProjectTree, error) {
	var project *models.Project
	var rooms []models.Room
	// version and hierarchy come from one snapshot so the version matches the tree
	snapshot := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		project, err = s.projectRepo.FindByID(ctx, tx, projectID)
		if err != nil {
			return fmt.Errorf("load project: %w", err)
		}
		if project == nil {
			return apperrors.NotFoundf("project %d", projectID)
		}
		rooms, err = s.hierarchyRepo.LoadProjectTree(ctx, tx, projectID)
		if err != nil {
			return fmt.Errorf("load project %d tree: %w", projectID, err)
		}
		return nil
	}, snapshot)
	if err != nil {
		return nil, err
	}
	nodes, err := mapper.ToTreeNodes(rooms)
	if err != nil {
		return nil, err
	}

	tree := &dto.ProjectTree{
		ProjectID:           project.ID,
		Name:                project.Name,
		Version:             project.TreeVersion,
		TotalEstimatedPrice: decimal.Zero,
		Tree:                nodes,
	}
	var targets []annotated
	for i := range rooms {
		lf, price := measureRoom(&rooms[i], nodes[i], &targets)
		tree.TotalLinearFeet += lf
		tree.TotalEstimatedPrice = tree.TotalEstimatedPrice.Add(price)
	}

	if err := s.attachAnnotations(ctx, targets); err != nil {
		return nil, err
	}
	return tree, nil
}

func (s *treeServiceImpl) attachAnnotations(ctx context.Context, targets []annotated) error {
	if len(targets) == 0 {
		return nil
	}
	refs := make([]models.NodeRef, 0, len(targets))
	for _, target := range targets {
		refs = append(refs, target.ref)
	}
	counts, err := s.counter.CountsFor(ctx, refs)
	if err != nil {
		return err
	}
	pages, err := s.counter.PagesFor(ctx, refs)
	if err != nil {
		return err
	}
	for _, target := range targets {
		count := counts[target.ref]
		target.node.AnnotationCount = &count
		target.node.Pages = pages[target.ref]
	}
	return nil
}

// The measure functions walk the models and their mapped nodes in step; the
// mapper keeps children in model order down to the cabinet level.

func measureRoom(room *models.Room, node *dto.TreeNode, targets *[]annotated) (float64, decimal.Decimal) {
	*targets = append(*targets, annotated{ref: models.NodeRef{Kind: models.KindRoom, ID: room.ID}, node: node})
	var lf float64
	price := decimal.Zero
	for i := range room.Locations {
		locationLF, locationPrice := measureLocation(&room.Locations[i], node.Children[i], targets)
		lf += locationLF
		price = price.Add(locationPrice)
	}
	node.LinearFeet = &lf
	node.EstimatedPrice = &price
	return lf, price
}

func measureLocation(location *models.Location, node *dto.TreeNode, targets *[]annotated) (float64, decimal.Decimal) {
	*targets = append(*targets, annotated{ref: models.NodeRef{Kind: models.KindLocation, ID: location.ID}, node: node})
	var lf float64
	for i := range location.Runs {
		lf += measureRun(&location.Runs[i], node.Children[i], targets)
	}
	price := helpers.EstimatePrice(lf, location.CabinetLevel)
	node.LinearFeet = &lf
	node.EstimatedPrice = &price
	return lf, price
}

func measureRun(run *models.CabinetRun, node *dto.TreeNode, targets *[]annotated) float64 {
	*targets = append(*targets, annotated{ref: models.NodeRef{Kind: models.KindRun, ID: run.ID}, node: node})
	var lf float64
	for i := range run.Cabinets {
		cabinet := &run.Cabinets[i]
		cabinetLF := cabinet.LinearFeet()
		child := node.Children[i]
		child.LinearFeet = &cabinetLF
		*targets = append(*targets, annotated{ref: models.NodeRef{Kind: models.KindCabinet, ID: cabinet.ID}, node: child})
		lf += cabinetLF
	}
	node.LinearFeet = &lf
	return lf
}
