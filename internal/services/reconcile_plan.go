package services

import (
	"Casework/internal/apperrors"
	"Casework/internal/dto"
	"Casework/internal/models"
	"fmt"
	"sort"
)

// candidatePlan is the result of checking a submitted tree before any write:
// the decoded patch and resolved kind of every node plus the catalog ids the
// hardware nodes reference.
type candidatePlan struct {
	patches    map[*dto.TreeNode]interface{}
	kinds      map[*dto.TreeNode]models.NodeKind
	paths      map[*dto.TreeNode]string
	catalogIDs []uint
}

// childKind is the level below each level. Sections have four content kinds,
// resolved per node.
var childKind = map[models.NodeKind]models.NodeKind{
	models.KindProject:  models.KindRoom,
	models.KindRoom:     models.KindLocation,
	models.KindLocation: models.KindRun,
	models.KindRun:      models.KindCabinet,
	models.KindCabinet:  models.KindSection,
	models.KindDoor:     models.KindHardware,
	models.KindDrawer:   models.KindHardware,
	models.KindShelf:    models.KindHardware,
	models.KindPullout:  models.KindHardware,
}

// costPlaces is the scale of every stored cost column.
const costPlaces = 2

var typeTags = map[models.NodeKind]string{
	models.KindRoom:     dto.TypeRoom,
	models.KindLocation: dto.TypeLocation,
	models.KindRun:      dto.TypeRun,
	models.KindCabinet:  dto.TypeCabinet,
	models.KindSection:  dto.TypeSection,
	models.KindHardware: dto.TypeHardware,
}

func planCandidates(tree []*dto.TreeNode) (*candidatePlan, error) {
	plan := &candidatePlan{
		patches: make(map[*dto.TreeNode]interface{}),
		kinds:   make(map[*dto.TreeNode]models.NodeKind),
		paths:   make(map[*dto.TreeNode]string),
	}
	verr := &apperrors.ValidationError{}
	if tree == nil {
		verr.Add("tree", "is required")
		return nil, verr
	}
	catalog := make(map[uint]bool)
	for i, node := range tree {
		if err := plan.visit(node, models.KindRoom, "", fmt.Sprintf("tree[%d]", i), catalog, verr); err != nil {
			return nil, err
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	for id := range catalog {
		plan.catalogIDs = append(plan.catalogIDs, id)
	}
	sort.Slice(plan.catalogIDs, func(i, j int) bool { return plan.catalogIDs[i] < plan.catalogIDs[j] })
	return plan, nil
}

// visit checks node and its subtree. Problems go to verr so every sibling is
// still inspected; the returned error is reserved for failures of the checker
// itself.
func (p *candidatePlan) visit(node *dto.TreeNode, level models.NodeKind, sectionType, path string, catalog map[uint]bool, verr *apperrors.ValidationError) error {
	if node == nil {
		verr.Add(path, "node is null")
		return nil
	}
	kind, ok := resolveKind(node, level, path, verr)
	if !ok {
		return nil
	}
	if level == models.KindContent && sectionType != "" && !models.SectionAllows(sectionType, kind) {
		verr.Add(path, "section type %q does not accept %s content", sectionType, kind)
	}

	patch, err := decodePatch(node, kind)
	if err != nil {
		verr.Add(path, "invalid attributes: %v", err)
		return nil
	}
	if err := collectIssues(verr, path, patch); err != nil {
		return err
	}
	p.patches[node] = patch
	p.kinds[node] = kind
	p.paths[node] = path

	switch typed := patch.(type) {
	case *hardwarePatch:
		if ref := typed.catalogRef(); ref != nil {
			catalog[*ref] = true
		}
		if typed.UnitCost != nil {
			if typed.UnitCost.IsNegative() {
				verr.Add(joinPath(path, "unit_cost"), "must be at least 0")
			}
			// stored as decimal(12,2) and loaded back at that scale
			rounded := typed.UnitCost.Round(costPlaces)
			typed.UnitCost = &rounded
		}
		if len(node.Children) > 0 {
			verr.Add(path, "hardware nodes cannot have children")
		}
		return nil
	case *sectionPatch:
		// new sections default to mixed; existing ones are checked against the
		// stored type during reconcile
		switch {
		case typed.SectionType != nil:
			sectionType = *typed.SectionType
		case node.DBID == nil:
			sectionType = models.SectionMixed
		default:
			sectionType = ""
		}
	}

	next := models.KindContent
	if kind != models.KindSection {
		next = childKind[kind]
	}
	for i, child := range node.Children {
		childPath := fmt.Sprintf("%s.children[%d]", path, i)
		if err := p.visit(child, next, sectionType, childPath, catalog, verr); err != nil {
			return err
		}
	}
	return nil
}

func resolveKind(node *dto.TreeNode, level models.NodeKind, path string, verr *apperrors.ValidationError) (models.NodeKind, bool) {
	if node.Type == "" {
		verr.Add(path, "type is required")
		return "", false
	}
	if level != models.KindContent {
		if node.Type != typeTags[level] {
			verr.Add(path, "expected a %s node, got %q", typeTags[level], node.Type)
			return "", false
		}
		return level, true
	}
	discriminator := node.ContentType
	if discriminator == "" && node.Type != dto.TypeContent {
		discriminator = node.Type
	}
	if node.Type != dto.TypeContent && node.Type != discriminator {
		verr.Add(path, "expected a content node, got %q", node.Type)
		return "", false
	}
	if discriminator == "" {
		verr.Add(path, "content_type is required")
		return "", false
	}
	kind := models.NodeKind(discriminator)
	if !kind.IsContent() {
		verr.Add(path, "unknown content_type %q", discriminator)
		return "", false
	}
	return kind, true
}

func decodePatch(node *dto.TreeNode, kind models.NodeKind) (interface{}, error) {
	var patch interface{}
	switch kind {
	case models.KindRoom:
		patch = &roomPatch{}
	case models.KindLocation:
		patch = &locationPatch{}
	case models.KindRun:
		patch = &runPatch{}
	case models.KindCabinet:
		patch = &cabinetPatch{}
	case models.KindSection:
		patch = &sectionPatch{}
	case models.KindDoor:
		patch = &doorPatch{}
	case models.KindDrawer:
		patch = &drawerPatch{}
	case models.KindShelf:
		patch = &shelfPatch{}
	case models.KindPullout:
		patch = &pulloutPatch{}
	case models.KindHardware:
		patch = &hardwarePatch{}
	default:
		return nil, fmt.Errorf("no attributes defined for %s", kind)
	}
	if err := node.DecodeAttributes(patch); err != nil {
		return nil, err
	}
	return patch, nil
}

// patchFor returns the decoded patch of a node that passed planning.
func patchFor[P any](plan *candidatePlan, node *dto.TreeNode) P {
	return *plan.patches[node].(*P)
}
