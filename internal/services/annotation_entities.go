package services

import (
	"Casework/internal/apperrors"
	"Casework/internal/dto"
	"Casework/internal/helpers"
	"Casework/internal/models"
	"fmt"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// entityCreator finds or creates the hierarchy node each annotation of a save
// marks up. It runs inside the annotation transaction.
type entityCreator struct {
	service *annotationServiceImpl
	rc      RequestContext
	tx      *gorm.DB
	page    *models.PdfPage
	log     *logrus.Entry
	changed bool
}

func (c *entityCreator) createAll(req dto.SaveAnnotationsRequest) ([]dto.CreatedEntity, error) {
	if err := c.checkContext(req.Context); err != nil {
		return nil, err
	}
	verr := &apperrors.ValidationError{}
	var created []dto.CreatedEntity
	for i, input := range req.Annotations {
		if input.NodeID != nil {
			continue
		}
		kind := targetKind(input)
		if !kind.Annotatable() {
			continue
		}
		path := fmt.Sprintf("annotations[%d]", i)
		var (
			id     uint
			reused bool
			err    error
		)
		switch kind {
		case models.KindRoom:
			id, reused, err = c.room(input)
		case models.KindLocation:
			if req.Context.RoomID == nil {
				verr.Add(path, "context.room_id is required to create a %s", kind)
				continue
			}
			id, reused, err = c.location(input, *req.Context.RoomID)
		case models.KindRun:
			if req.Context.RoomLocationID == nil {
				verr.Add(path, "context.room_location_id is required to create a %s", kind)
				continue
			}
			id, reused, err = c.run(input, *req.Context.RoomLocationID)
		case models.KindCabinet:
			if req.Context.CabinetRunID == nil {
				verr.Add(path, "context.cabinet_run_id is required to create a %s", kind)
				continue
			}
			id, reused, err = c.cabinet(input, *req.Context.CabinetRunID)
		}
		if err != nil {
			return nil, err
		}
		created = append(created, dto.CreatedEntity{
			AnnotationIndex: i,
			EntityType:      string(kind),
			EntityID:        id,
			Reused:          reused,
		})
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if c.changed {
		if err := c.bumpVersion(); err != nil {
			return nil, err
		}
	}
	return created, nil
}

// checkContext rejects context ids that belong to another project.
func (c *entityCreator) checkContext(context dto.AnnotationContext) error {
	refs := map[string]*models.NodeRef{}
	if context.RoomID != nil {
		refs["context.room_id"] = &models.NodeRef{Kind: models.KindRoom, ID: *context.RoomID}
	}
	if context.RoomLocationID != nil {
		refs["context.room_location_id"] = &models.NodeRef{Kind: models.KindLocation, ID: *context.RoomLocationID}
	}
	if context.CabinetRunID != nil {
		refs["context.cabinet_run_id"] = &models.NodeRef{Kind: models.KindRun, ID: *context.CabinetRunID}
	}
	verr := &apperrors.ValidationError{}
	for _, path := range []string{"context.room_id", "context.room_location_id", "context.cabinet_run_id"} {
		ref, ok := refs[path]
		if !ok {
			continue
		}
		projectID, err := c.service.hierarchyRepo.ProjectOf(c.rc.context(), c.tx, *ref)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", ref, err)
		}
		if projectID != c.page.ProjectID {
			verr.Add(path, "%s %d does not belong to the page's project", ref.Kind, ref.ID)
		}
	}
	return verr.OrNil()
}

func (c *entityCreator) insert(record interface{}) error {
	if err := c.service.hierarchyRepo.Insert(c.rc.context(), c.tx, record); err != nil {
		return err
	}
	c.changed = true
	return nil
}

func (c *entityCreator) room(input dto.AnnotationInput) (uint, bool, error) {
	ctx := c.rc.context()
	name := valueOrDefault(input.Label, defaultRoomName)
	roomType := valueOrDefault(input.RoomType, defaultRoomType)
	existing, err := c.service.hierarchyRepo.FindRoomByName(ctx, c.tx, c.page.ProjectID, name, roomType)
	if err != nil {
		return 0, false, err
	}
	if existing != nil {
		return existing.ID, true, nil
	}
	siblings, err := c.service.hierarchyRepo.Rooms(ctx, c.tx, c.page.ProjectID)
	if err != nil {
		return 0, false, err
	}
	room := &models.Room{
		BaseModel:   models.BaseModel{CreatorID: c.rc.ActorID},
		ProjectID:   c.page.ProjectID,
		Name:        name,
		RoomType:    roomType,
		FloorNumber: defaultFloorNumber,
		SortOrder:   len(siblings) + 1,
		Notes:       input.Notes,
	}
	if err := c.insert(room); err != nil {
		return 0, false, fmt.Errorf("create room %q: %w", name, err)
	}
	return room.ID, false, nil
}

func (c *entityCreator) location(input dto.AnnotationInput, roomID uint) (uint, bool, error) {
	ctx := c.rc.context()
	name := valueOrDefault(input.Label, defaultLocationName)
	existing, err := c.service.hierarchyRepo.FindLocationByName(ctx, c.tx, roomID, name)
	if err != nil {
		return 0, false, err
	}
	if existing != nil {
		return existing.ID, true, nil
	}
	siblings, err := c.service.hierarchyRepo.Locations(ctx, c.tx, roomID)
	if err != nil {
		return 0, false, err
	}
	location := &models.Location{
		BaseModel:    models.BaseModel{CreatorID: c.rc.ActorID},
		RoomID:       roomID,
		Name:         name,
		LocationType: defaultLocationType,
		CabinetLevel: helpers.DefaultPricingTier,
		SortOrder:    len(siblings) + 1,
		Notes:        input.Notes,
	}
	if err := c.insert(location); err != nil {
		return 0, false, fmt.Errorf("create location %q: %w", name, err)
	}
	return location.ID, false, nil
}

func (c *entityCreator) run(input dto.AnnotationInput, locationID uint) (uint, bool, error) {
	ctx := c.rc.context()
	name := valueOrDefault(input.Label, defaultRunName)
	runType := valueOrDefault(input.RunType, defaultRunType)
	existing, err := c.service.hierarchyRepo.FindRunByName(ctx, c.tx, locationID, name, runType)
	if err != nil {
		return 0, false, err
	}
	if existing != nil {
		return existing.ID, true, nil
	}
	siblings, err := c.service.hierarchyRepo.Runs(ctx, c.tx, locationID)
	if err != nil {
		return 0, false, err
	}
	run := &models.CabinetRun{
		BaseModel:      models.BaseModel{CreatorID: c.rc.ActorID},
		RoomLocationID: locationID,
		Name:           name,
		RunType:        runType,
		SortOrder:      len(siblings) + 1,
		Notes:          input.Notes,
	}
	if err := c.insert(run); err != nil {
		return 0, false, fmt.Errorf("create run %q: %w", name, err)
	}
	return run.ID, false, nil
}

func (c *entityCreator) cabinet(input dto.AnnotationInput, runID uint) (uint, bool, error) {
	ctx := c.rc.context()
	run, err := c.service.hierarchyRepo.FindRun(ctx, c.tx, runID)
	if err != nil {
		return 0, false, err
	}
	if run == nil {
		return 0, false, apperrors.NotFoundf("cabinet run %d", runID)
	}
	if input.Label != "" {
		existing, err := c.service.hierarchyRepo.FindCabinetByNumber(ctx, c.tx, runID, input.Label)
		if err != nil {
			return 0, false, err
		}
		if existing != nil {
			return existing.ID, true, nil
		}
	}
	siblings, err := c.service.hierarchyRepo.Cabinets(ctx, c.tx, runID)
	if err != nil {
		return 0, false, err
	}
	number := input.Label
	if number == "" {
		taken := make([]string, 0, len(siblings))
		for _, sibling := range siblings {
			taken = append(taken, sibling.CabinetNumber)
		}
		number = helpers.NextCabinetNumber(run.RunType, taken)
	}
	cabinet := &models.Cabinet{
		BaseModel:     models.BaseModel{CreatorID: c.rc.ActorID},
		CabinetRunID:  runID,
		CabinetNumber: number,
		LengthInches:  defaultCabinetLength,
		DepthInches:   defaultCabinetDepth,
		HeightInches:  defaultCabinetHeight,
		Quantity:      1,
		PositionInRun: len(siblings) + 1,
		Notes:         input.Notes,
	}
	if err := c.insert(cabinet); err != nil {
		return 0, false, fmt.Errorf("create cabinet %q: %w", number, err)
	}
	return cabinet.ID, false, nil
}

// bumpVersion marks the tree as changed so pending editors see a conflict.
func (c *entityCreator) bumpVersion() error {
	ctx := c.rc.context()
	project, err := c.service.projectRepo.FindByID(ctx, c.tx, c.page.ProjectID)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	if project == nil {
		return apperrors.NotFoundf("project %d", c.page.ProjectID)
	}
	bumped, err := c.service.projectRepo.BumpVersion(ctx, c.tx, project.ID, project.TreeVersion)
	if err != nil {
		return fmt.Errorf("bump tree version: %w", err)
	}
	if !bumped {
		return fmt.Errorf("project %d changed during annotation save: %w", project.ID, apperrors.ErrConflict)
	}
	return nil
}
