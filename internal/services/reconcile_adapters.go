package services

import (
	"Casework/internal/apperrors"
	"Casework/internal/dto"
	"Casework/internal/helpers"
	"Casework/internal/models"
	"fmt"
)

const (
	defaultRoomName      = "Untitled Room"
	defaultRoomType      = "other"
	defaultFloorNumber   = 1
	defaultLocationName  = "Untitled Location"
	defaultLocationType  = "wall"
	defaultRunName       = "Untitled Run"
	defaultRunType       = "base"
	defaultCabinetLength = 24
	defaultCabinetDepth  = 24
	defaultCabinetHeight = 34.5
)

type roomAdapter struct{}

func (roomAdapter) kind() models.NodeKind { return models.KindRoom }

func (roomAdapter) load(r *reconciler, parent models.NodeRef) ([]*models.Room, error) {
	return r.repo.Rooms(r.ctx(), r.tx, parent.ID)
}

func (roomAdapter) id(m *models.Room) uint { return m.ID }

func (a roomAdapter) build(r *reconciler, parent models.NodeRef, p roomPatch, position int, _ []*models.Room) (*models.Room, error) {
	room := &models.Room{
		BaseModel:   models.BaseModel{CreatorID: r.rc.ActorID},
		ProjectID:   parent.ID,
		Name:        defaultRoomName,
		RoomType:    defaultRoomType,
		FloorNumber: defaultFloorNumber,
	}
	a.apply(r, room, p, position)
	return room, nil
}

func (roomAdapter) apply(_ *reconciler, m *models.Room, p roomPatch, position int) bool {
	changed := assign(&m.SortOrder, &position)
	changed = assign(&m.Name, p.Name) || changed
	changed = assign(&m.RoomType, p.RoomType) || changed
	changed = assign(&m.FloorNumber, p.FloorNumber) || changed
	changed = assign(&m.Notes, p.Notes) || changed
	return changed
}

func (roomAdapter) skip(*reconciler, roomPatch) bool { return false }

func (roomAdapter) descend(r *reconciler, m *models.Room, node *dto.TreeNode) error {
	if node.Children == nil {
		return nil
	}
	parent := models.NodeRef{Kind: models.KindRoom, ID: m.ID}
	_, err := reconcileLevel[models.Location, locationPatch](r, locationAdapter{}, parent, positioned(node.Children))
	return err
}

type locationAdapter struct{}

func (locationAdapter) kind() models.NodeKind { return models.KindLocation }

func (locationAdapter) load(r *reconciler, parent models.NodeRef) ([]*models.Location, error) {
	return r.repo.Locations(r.ctx(), r.tx, parent.ID)
}

func (locationAdapter) id(m *models.Location) uint { return m.ID }

func (a locationAdapter) build(r *reconciler, parent models.NodeRef, p locationPatch, position int, _ []*models.Location) (*models.Location, error) {
	location := &models.Location{
		BaseModel:    models.BaseModel{CreatorID: r.rc.ActorID},
		RoomID:       parent.ID,
		Name:         defaultLocationName,
		LocationType: defaultLocationType,
		CabinetLevel: helpers.DefaultPricingTier,
	}
	a.apply(r, location, p, position)
	return location, nil
}

func (locationAdapter) apply(_ *reconciler, m *models.Location, p locationPatch, position int) bool {
	changed := assign(&m.SortOrder, &position)
	changed = assign(&m.Name, p.Name) || changed
	changed = assign(&m.LocationType, p.LocationType) || changed
	changed = assign(&m.CabinetLevel, p.CabinetLevel) || changed
	changed = assign(&m.Notes, p.Notes) || changed
	return changed
}

func (locationAdapter) skip(*reconciler, locationPatch) bool { return false }

func (locationAdapter) descend(r *reconciler, m *models.Location, node *dto.TreeNode) error {
	if node.Children == nil {
		return nil
	}
	parent := models.NodeRef{Kind: models.KindLocation, ID: m.ID}
	_, err := reconcileLevel[models.CabinetRun, runPatch](r, runAdapter{}, parent, positioned(node.Children))
	return err
}

type runAdapter struct{}

func (runAdapter) kind() models.NodeKind { return models.KindRun }

func (runAdapter) load(r *reconciler, parent models.NodeRef) ([]*models.CabinetRun, error) {
	return r.repo.Runs(r.ctx(), r.tx, parent.ID)
}

func (runAdapter) id(m *models.CabinetRun) uint { return m.ID }

func (a runAdapter) build(r *reconciler, parent models.NodeRef, p runPatch, position int, _ []*models.CabinetRun) (*models.CabinetRun, error) {
	run := &models.CabinetRun{
		BaseModel:      models.BaseModel{CreatorID: r.rc.ActorID},
		RoomLocationID: parent.ID,
		Name:           defaultRunName,
		RunType:        defaultRunType,
	}
	a.apply(r, run, p, position)
	return run, nil
}

func (runAdapter) apply(_ *reconciler, m *models.CabinetRun, p runPatch, position int) bool {
	changed := assign(&m.SortOrder, &position)
	changed = assign(&m.Name, p.Name) || changed
	changed = assign(&m.RunType, p.RunType) || changed
	changed = assign(&m.Notes, p.Notes) || changed
	return changed
}

func (runAdapter) skip(*reconciler, runPatch) bool { return false }

func (runAdapter) descend(r *reconciler, m *models.CabinetRun, node *dto.TreeNode) error {
	if node.Children == nil {
		return nil
	}
	parent := models.NodeRef{Kind: models.KindRun, ID: m.ID}
	_, err := reconcileLevel[models.Cabinet, cabinetPatch](r, cabinetAdapter{runType: m.RunType}, parent, positioned(node.Children))
	return err
}

// cabinetAdapter numbers unnamed cabinets after the run's type.
type cabinetAdapter struct {
	runType string
}

func (cabinetAdapter) kind() models.NodeKind { return models.KindCabinet }

func (cabinetAdapter) load(r *reconciler, parent models.NodeRef) ([]*models.Cabinet, error) {
	return r.repo.Cabinets(r.ctx(), r.tx, parent.ID)
}

func (cabinetAdapter) id(m *models.Cabinet) uint { return m.ID }

func (a cabinetAdapter) build(r *reconciler, parent models.NodeRef, p cabinetPatch, position int, siblings []*models.Cabinet) (*models.Cabinet, error) {
	cabinet := &models.Cabinet{
		BaseModel:    models.BaseModel{CreatorID: r.rc.ActorID},
		CabinetRunID: parent.ID,
		LengthInches: defaultCabinetLength,
		DepthInches:  defaultCabinetDepth,
		HeightInches: defaultCabinetHeight,
		Quantity:     1,
	}
	if p.number() == nil {
		taken := make([]string, 0, len(siblings))
		for _, sibling := range siblings {
			taken = append(taken, sibling.CabinetNumber)
		}
		cabinet.CabinetNumber = helpers.NextCabinetNumber(a.runType, taken)
	}
	a.apply(r, cabinet, p, position)
	return cabinet, nil
}

func (cabinetAdapter) apply(_ *reconciler, m *models.Cabinet, p cabinetPatch, position int) bool {
	changed := assign(&m.PositionInRun, &position)
	changed = assign(&m.CabinetNumber, p.number()) || changed
	changed = assign(&m.CabinetType, p.CabinetType) || changed
	changed = assign(&m.LengthInches, p.LengthInches) || changed
	changed = assign(&m.DepthInches, p.DepthInches) || changed
	changed = assign(&m.HeightInches, p.HeightInches) || changed
	changed = assign(&m.Quantity, p.Quantity) || changed
	changed = assign(&m.Notes, p.Notes) || changed
	return changed
}

func (cabinetAdapter) skip(*reconciler, cabinetPatch) bool { return false }

func (cabinetAdapter) descend(r *reconciler, m *models.Cabinet, node *dto.TreeNode) error {
	if node.Children == nil {
		return nil
	}
	parent := models.NodeRef{Kind: models.KindCabinet, ID: m.ID}
	_, err := reconcileLevel[models.Section, sectionPatch](r, sectionAdapter{}, parent, positioned(node.Children))
	return err
}

type sectionAdapter struct{}

func (sectionAdapter) kind() models.NodeKind { return models.KindSection }

func (sectionAdapter) load(r *reconciler, parent models.NodeRef) ([]*models.Section, error) {
	return r.repo.Sections(r.ctx(), r.tx, parent.ID)
}

func (sectionAdapter) id(m *models.Section) uint { return m.ID }

func (a sectionAdapter) build(r *reconciler, parent models.NodeRef, p sectionPatch, position int, _ []*models.Section) (*models.Section, error) {
	section := &models.Section{
		BaseModel:   models.BaseModel{CreatorID: r.rc.ActorID},
		CabinetID:   parent.ID,
		SectionType: models.SectionMixed,
	}
	a.apply(r, section, p, position)
	return section, nil
}

func (sectionAdapter) apply(_ *reconciler, m *models.Section, p sectionPatch, position int) bool {
	changed := assign(&m.SortOrder, &position)
	changed = assign(&m.Code, p.Code) || changed
	changed = assign(&m.Name, p.Name) || changed
	changed = assign(&m.SectionType, p.SectionType) || changed
	changed = assign(&m.WidthInches, p.WidthInches) || changed
	changed = assign(&m.HeightInches, p.HeightInches) || changed
	return changed
}

func (sectionAdapter) skip(*reconciler, sectionPatch) bool { return false }

// descend reconciles each content kind separately. Positions still follow the
// order of the full children array. Without children a new section type is
// checked against the contents already stored.
func (sectionAdapter) descend(r *reconciler, m *models.Section, node *dto.TreeNode) error {
	if node.Children == nil {
		if patchFor[sectionPatch](r.plan, node).SectionType == nil {
			return nil
		}
		return checkStoredContents(r, m, r.plan.paths[node])
	}
	byKind := make(map[models.NodeKind][]candidate, len(models.ContentKinds))
	verr := &apperrors.ValidationError{}
	for _, c := range positioned(node.Children) {
		kind := r.plan.kinds[c.node]
		if !models.SectionAllows(m.SectionType, kind) {
			verr.Add(r.plan.paths[c.node], "section type %q does not accept %s content", m.SectionType, kind)
			continue
		}
		byKind[kind] = append(byKind[kind], c)
	}
	if err := verr.OrNil(); err != nil {
		return err
	}
	parent := models.NodeRef{Kind: models.KindSection, ID: m.ID}
	for _, kind := range models.ContentKinds {
		if err := reconcileContent(r, kind, parent, byKind[kind]); err != nil {
			return err
		}
	}
	return nil
}

func checkStoredContents(r *reconciler, m *models.Section, path string) error {
	verr := &apperrors.ValidationError{}
	for _, kind := range models.ContentKinds {
		if models.SectionAllows(m.SectionType, kind) {
			continue
		}
		stored, err := storedContentCount(r, kind, m.ID)
		if err != nil {
			return fmt.Errorf("load %s contents of section %d: %w", kind, m.ID, err)
		}
		if stored > 0 {
			verr.Add(joinPath(path, "section_type"), "section type %q does not accept the %d stored %s content", m.SectionType, stored, kind)
		}
	}
	return verr.OrNil()
}
