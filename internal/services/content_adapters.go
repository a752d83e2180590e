package services

import (
	"Casework/internal/dto"
	"Casework/internal/models"
	"fmt"
)

const (
	defaultShelfType   = "adjustable"
	defaultPulloutType = "trash"
)

// contentAdapter is the level adapter shared by doors, drawers, shelves and
// pullouts. Only construction and field mapping differ between them.
type contentAdapter[M any, P any] struct {
	contentKind models.NodeKind
	loadFn      func(r *reconciler, sectionID uint) ([]*M, error)
	base        func(m *M) *models.ContentBase
	newFn       func() *M
	applyFn     func(m *M, p P) bool
}

func (a contentAdapter[M, P]) kind() models.NodeKind { return a.contentKind }

func (a contentAdapter[M, P]) load(r *reconciler, parent models.NodeRef) ([]*M, error) {
	return a.loadFn(r, parent.ID)
}

func (a contentAdapter[M, P]) id(m *M) uint { return a.base(m).ID }

func (a contentAdapter[M, P]) build(r *reconciler, parent models.NodeRef, p P, position int, _ []*M) (*M, error) {
	record := a.newFn()
	base := a.base(record)
	base.SectionID = parent.ID
	base.CreatorID = r.rc.ActorID
	a.apply(r, record, p, position)
	return record, nil
}

func (a contentAdapter[M, P]) apply(_ *reconciler, m *M, p P, position int) bool {
	changed := assign(&a.base(m).SortOrder, &position)
	return a.applyFn(m, p) || changed
}

func (a contentAdapter[M, P]) skip(*reconciler, P) bool { return false }

func (a contentAdapter[M, P]) descend(r *reconciler, m *M, node *dto.TreeNode) error {
	if node.Children == nil {
		return nil
	}
	parent := models.NodeRef{Kind: a.contentKind, ID: a.id(m)}
	_, err := reconcileLevel[models.HardwareRequirement, hardwarePatch](r, hardwareAdapter{}, parent, positioned(node.Children))
	return err
}

var doorAdapter = contentAdapter[models.Door, doorPatch]{
	contentKind: models.KindDoor,
	loadFn: func(r *reconciler, sectionID uint) ([]*models.Door, error) {
		return r.repo.Doors(r.ctx(), r.tx, sectionID)
	},
	base:  func(m *models.Door) *models.ContentBase { return &m.ContentBase },
	newFn: func() *models.Door { return &models.Door{} },
	applyFn: func(m *models.Door, p doorPatch) bool {
		changed := assign(&m.Name, p.Name)
		changed = assign(&m.WidthInches, p.WidthInches) || changed
		changed = assign(&m.HeightInches, p.HeightInches) || changed
		changed = assign(&m.HingeSide, p.HingeSide) || changed
		changed = assign(&m.HasGlass, p.HasGlass) || changed
		changed = assign(&m.ProfileType, p.ProfileType) || changed
		changed = assign(&m.HingeType, p.HingeType) || changed
		return changed
	},
}

var drawerAdapter = contentAdapter[models.Drawer, drawerPatch]{
	contentKind: models.KindDrawer,
	loadFn: func(r *reconciler, sectionID uint) ([]*models.Drawer, error) {
		return r.repo.Drawers(r.ctx(), r.tx, sectionID)
	},
	base:  func(m *models.Drawer) *models.ContentBase { return &m.ContentBase },
	newFn: func() *models.Drawer { return &models.Drawer{SoftClose: true} },
	applyFn: func(m *models.Drawer, p drawerPatch) bool {
		changed := assign(&m.Name, p.Name)
		changed = assign(&m.FrontWidthInches, p.FrontWidthInches) || changed
		changed = assign(&m.FrontHeightInches, p.FrontHeightInches) || changed
		changed = assign(&m.BoxDepthInches, p.BoxDepthInches) || changed
		changed = assign(&m.BoxMaterial, p.BoxMaterial) || changed
		changed = assign(&m.JoineryMethod, p.JoineryMethod) || changed
		changed = assign(&m.SlideType, p.SlideType) || changed
		changed = assign(&m.SoftClose, p.SoftClose) || changed
		return changed
	},
}

var shelfAdapter = contentAdapter[models.Shelf, shelfPatch]{
	contentKind: models.KindShelf,
	loadFn: func(r *reconciler, sectionID uint) ([]*models.Shelf, error) {
		return r.repo.Shelves(r.ctx(), r.tx, sectionID)
	},
	base:  func(m *models.Shelf) *models.ContentBase { return &m.ContentBase },
	newFn: func() *models.Shelf { return &models.Shelf{ShelfType: defaultShelfType} },
	applyFn: func(m *models.Shelf, p shelfPatch) bool {
		changed := assign(&m.Name, p.Name)
		changed = assign(&m.WidthInches, p.WidthInches) || changed
		changed = assign(&m.DepthInches, p.DepthInches) || changed
		changed = assign(&m.ThicknessInches, p.ThicknessInches) || changed
		changed = assign(&m.ShelfType, p.ShelfType) || changed
		changed = assign(&m.Material, p.Material) || changed
		return changed
	},
}

var pulloutAdapter = contentAdapter[models.Pullout, pulloutPatch]{
	contentKind: models.KindPullout,
	loadFn: func(r *reconciler, sectionID uint) ([]*models.Pullout, error) {
		return r.repo.Pullouts(r.ctx(), r.tx, sectionID)
	},
	base:  func(m *models.Pullout) *models.ContentBase { return &m.ContentBase },
	newFn: func() *models.Pullout { return &models.Pullout{PulloutType: defaultPulloutType} },
	applyFn: func(m *models.Pullout, p pulloutPatch) bool {
		changed := assign(&m.Name, p.Name)
		changed = assign(&m.PulloutType, p.PulloutType) || changed
		changed = assign(&m.WidthInches, p.WidthInches) || changed
		changed = assign(&m.HeightInches, p.HeightInches) || changed
		changed = assign(&m.DepthInches, p.DepthInches) || changed
		changed = assign(&m.Manufacturer, p.Manufacturer) || changed
		changed = assign(&m.ModelNumber, p.ModelNumber) || changed
		return changed
	},
}

func reconcileContent(r *reconciler, kind models.NodeKind, section models.NodeRef, candidates []candidate) error {
	var err error
	switch kind {
	case models.KindDoor:
		_, err = reconcileLevel[models.Door, doorPatch](r, doorAdapter, section, candidates)
	case models.KindDrawer:
		_, err = reconcileLevel[models.Drawer, drawerPatch](r, drawerAdapter, section, candidates)
	case models.KindShelf:
		_, err = reconcileLevel[models.Shelf, shelfPatch](r, shelfAdapter, section, candidates)
	case models.KindPullout:
		_, err = reconcileLevel[models.Pullout, pulloutPatch](r, pulloutAdapter, section, candidates)
	default:
		err = fmt.Errorf("unknown content kind %q", kind)
	}
	return err
}

func storedContentCount(r *reconciler, kind models.NodeKind, sectionID uint) (int, error) {
	switch kind {
	case models.KindDoor:
		doors, err := doorAdapter.loadFn(r, sectionID)
		return len(doors), err
	case models.KindDrawer:
		drawers, err := drawerAdapter.loadFn(r, sectionID)
		return len(drawers), err
	case models.KindShelf:
		shelves, err := shelfAdapter.loadFn(r, sectionID)
		return len(shelves), err
	case models.KindPullout:
		pullouts, err := pulloutAdapter.loadFn(r, sectionID)
		return len(pullouts), err
	}
	return 0, fmt.Errorf("unknown content kind %q", kind)
}
