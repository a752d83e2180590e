package repository

import (
	"Casework/internal/models"
	"context"
	"errors"
	"fmt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HierarchyRepository interface {
	Rooms(ctx context.Context, tx *gorm.DB, projectID uint) ([]*models.Room, error)
	Locations(ctx context.Context, tx *gorm.DB, roomID uint) ([]*models.Location, error)
	Runs(ctx context.Context, tx *gorm.DB, locationID uint) ([]*models.CabinetRun, error)
	Cabinets(ctx context.Context, tx *gorm.DB, runID uint) ([]*models.Cabinet, error)
	Sections(ctx context.Context, tx *gorm.DB, cabinetID uint) ([]*models.Section, error)
	Doors(ctx context.Context, tx *gorm.DB, sectionID uint) ([]*models.Door, error)
	Drawers(ctx context.Context, tx *gorm.DB, sectionID uint) ([]*models.Drawer, error)
	Shelves(ctx context.Context, tx *gorm.DB, sectionID uint) ([]*models.Shelf, error)
	Pullouts(ctx context.Context, tx *gorm.DB, sectionID uint) ([]*models.Pullout, error)
	Hardware(ctx context.Context, tx *gorm.DB, content models.NodeRef) ([]*models.HardwareRequirement, error)

	// Insert and Save write a single hierarchy record without touching its
	// preloaded associations.
	Insert(ctx context.Context, tx *gorm.DB, record interface{}) error
	Save(ctx context.Context, tx *gorm.DB, record interface{}) error

	// DeleteSubtree hard-deletes the given records of one kind together with every
	// descendant and returns the removed ids grouped by kind.
	DeleteSubtree(ctx context.Context, tx *gorm.DB, kind models.NodeKind, ids []uint) (map[models.NodeKind][]uint, error)
	Exists(ctx context.Context, tx *gorm.DB, ref models.NodeRef) (bool, error)
	ParentOf(ctx context.Context, tx *gorm.DB, ref models.NodeRef) (*models.NodeRef, error)
	ProjectOf(ctx context.Context, tx *gorm.DB, ref models.NodeRef) (uint, error)
	UpdateNotes(ctx context.Context, tx *gorm.DB, ref models.NodeRef, notes string) error

	LoadProjectTree(ctx context.Context, tx *gorm.DB, projectID uint) ([]models.Room, error)

	FindRoomByName(ctx context.Context, tx *gorm.DB, projectID uint, name, roomType string) (*models.Room, error)
	FindLocationByName(ctx context.Context, tx *gorm.DB, roomID uint, name string) (*models.Location, error)
	FindRun(ctx context.Context, tx *gorm.DB, id uint) (*models.CabinetRun, error)
	FindRunByName(ctx context.Context, tx *gorm.DB, locationID uint, name, runType string) (*models.CabinetRun, error)
	FindCabinetByNumber(ctx context.Context, tx *gorm.DB, runID uint, number string) (*models.Cabinet, error)
}

type childLink struct {
	kind   models.NodeKind
	table  string
	column string
	// polymorphic children also match content_type against the parent kind
	polymorphic bool
}

type hierarchyLevel struct {
	table    string
	parent   models.NodeKind
	column   string
	children []childLink
}

var hardwareLink = childLink{kind: models.KindHardware, table: "hardware_requirements", column: "content_id", polymorphic: true}

var hierarchyLevels = map[models.NodeKind]hierarchyLevel{
	models.KindProject: {
		table:    "projects",
		children: []childLink{{kind: models.KindRoom, table: "rooms", column: "project_id"}},
	},
	models.KindRoom: {
		table: "rooms", parent: models.KindProject, column: "project_id",
		children: []childLink{{kind: models.KindLocation, table: "room_locations", column: "room_id"}},
	},
	models.KindLocation: {
		table: "room_locations", parent: models.KindRoom, column: "room_id",
		children: []childLink{{kind: models.KindRun, table: "cabinet_runs", column: "room_location_id"}},
	},
	models.KindRun: {
		table: "cabinet_runs", parent: models.KindLocation, column: "room_location_id",
		children: []childLink{{kind: models.KindCabinet, table: "cabinets", column: "cabinet_run_id"}},
	},
	models.KindCabinet: {
		table: "cabinets", parent: models.KindRun, column: "cabinet_run_id",
		children: []childLink{{kind: models.KindSection, table: "cabinet_sections", column: "cabinet_id"}},
	},
	models.KindSection: {
		table: "cabinet_sections", parent: models.KindCabinet, column: "cabinet_id",
		children: []childLink{
			{kind: models.KindDoor, table: "doors", column: "section_id"},
			{kind: models.KindDrawer, table: "drawers", column: "section_id"},
			{kind: models.KindShelf, table: "shelves", column: "section_id"},
			{kind: models.KindPullout, table: "pullouts", column: "section_id"},
		},
	},
	models.KindDoor:     {table: "doors", parent: models.KindSection, column: "section_id", children: []childLink{hardwareLink}},
	models.KindDrawer:   {table: "drawers", parent: models.KindSection, column: "section_id", children: []childLink{hardwareLink}},
	models.KindShelf:    {table: "shelves", parent: models.KindSection, column: "section_id", children: []childLink{hardwareLink}},
	models.KindPullout:  {table: "pullouts", parent: models.KindSection, column: "section_id", children: []childLink{hardwareLink}},
	models.KindHardware: {table: "hardware_requirements"},
}

func levelOf(kind models.NodeKind) (hierarchyLevel, error) {
	level, ok := hierarchyLevels[kind]
	if !ok {
		return hierarchyLevel{}, fmt.Errorf("unknown node kind %q", kind)
	}
	return level, nil
}

type HierarchyRepositoryImpl struct {
	db *gorm.DB
}

func NewHierarchyRepository(db *gorm.DB) HierarchyRepository {
	return &HierarchyRepositoryImpl{db: db}
}

func findChildren[M any](conn *gorm.DB, column string, parentID uint, order string) ([]*M, error) {
	var records []*M
	err := conn.Where(column+" = ?", parentID).Order(order).Order("id").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *HierarchyRepositoryImpl) Rooms(ctx context.Context, tx *gorm.DB, projectID uint) ([]*models.Room, error) {
	return findChildren[models.Room](connection(ctx, r.db, tx), "project_id", projectID, "sort_order")
}

func (r *HierarchyRepositoryImpl) Locations(ctx context.Context, tx *gorm.DB, roomID uint) ([]*models.Location, error) {
	return findChildren[models.Location](connection(ctx, r.db, tx), "room_id", roomID, "sort_order")
}

func (r *HierarchyRepositoryImpl) Runs(ctx context.Context, tx *gorm.DB, locationID uint) ([]*models.CabinetRun, error) {
	return findChildren[models.CabinetRun](connection(ctx, r.db, tx), "room_location_id", locationID, "sort_order")
}

func (r *HierarchyRepositoryImpl) Cabinets(ctx context.Context, tx *gorm.DB, runID uint) ([]*models.Cabinet, error) {
	return findChildren[models.Cabinet](connection(ctx, r.db, tx), "cabinet_run_id", runID, "position_in_run")
}

func (r *HierarchyRepositoryImpl) Sections(ctx context.Context, tx *gorm.DB, cabinetID uint) ([]*models.Section, error) {
	return findChildren[models.Section](connection(ctx, r.db, tx), "cabinet_id", cabinetID, "sort_order")
}

func (r *HierarchyRepositoryImpl) Doors(ctx context.Context, tx *gorm.DB, sectionID uint) ([]*models.Door, error) {
	return findChildren[models.Door](connection(ctx, r.db, tx), "section_id", sectionID, "sort_order")
}

func (r *HierarchyRepositoryImpl) Drawers(ctx context.Context, tx *gorm.DB, sectionID uint) ([]*models.Drawer, error) {
	return findChildren[models.Drawer](connection(ctx, r.db, tx), "section_id", sectionID, "sort_order")
}

func (r *HierarchyRepositoryImpl) Shelves(ctx context.Context, tx *gorm.DB, sectionID uint) ([]*models.Shelf, error) {
	return findChildren[models.Shelf](connection(ctx, r.db, tx), "section_id", sectionID, "sort_order")
}

func (r *HierarchyRepositoryImpl) Pullouts(ctx context.Context, tx *gorm.DB, sectionID uint) ([]*models.Pullout, error) {
	return findChildren[models.Pullout](connection(ctx, r.db, tx), "section_id", sectionID, "sort_order")
}

func (r *HierarchyRepositoryImpl) Hardware(ctx context.Context, tx *gorm.DB, content models.NodeRef) ([]*models.HardwareRequirement, error) {
	conn := connection(ctx, r.db, tx).Where("content_type = ?", string(content.Kind))
	return findChildren[models.HardwareRequirement](conn, "content_id", content.ID, "sort_order")
}

func (r *HierarchyRepositoryImpl) Insert(ctx context.Context, tx *gorm.DB, record interface{}) error {
	return connection(ctx, r.db, tx).Omit(clause.Associations).Create(record).Error
}

func (r *HierarchyRepositoryImpl) Save(ctx context.Context, tx *gorm.DB, record interface{}) error {
	return connection(ctx, r.db, tx).Omit(clause.Associations).Save(record).Error
}

func (r *HierarchyRepositoryImpl) DeleteSubtree(ctx context.Context, tx *gorm.DB, kind models.NodeKind, ids []uint) (map[models.NodeKind][]uint, error) {
	removed := make(map[models.NodeKind][]uint)
	if len(ids) == 0 {
		return removed, nil
	}
	err := connection(ctx, r.db, tx).Transaction(func(conn *gorm.DB) error {
		return r.deleteLevel(conn, kind, ids, removed)
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// deleteLevel removes children before their parents so foreign keys hold at
// every statement.
func (r *HierarchyRepositoryImpl) deleteLevel(conn *gorm.DB, kind models.NodeKind, ids []uint, removed map[models.NodeKind][]uint) error {
	if len(ids) == 0 {
		return nil
	}
	level, err := levelOf(kind)
	if err != nil {
		return err
	}
	for _, link := range level.children {
		var childIDs []uint
		query := conn.Table(link.table).Where(link.column+" IN ?", ids)
		if link.polymorphic {
			query = query.Where("content_type = ?", string(kind))
		}
		if err := query.Pluck("id", &childIDs).Error; err != nil {
			return fmt.Errorf("collect %s children of %s: %w", link.kind, kind, err)
		}
		if err := r.deleteLevel(conn, link.kind, childIDs, removed); err != nil {
			return err
		}
	}
	if err := conn.Exec("DELETE FROM "+level.table+" WHERE id IN ?", ids).Error; err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	removed[kind] = append(removed[kind], ids...)
	return nil
}

func (r *HierarchyRepositoryImpl) Exists(ctx context.Context, tx *gorm.DB, ref models.NodeRef) (bool, error) {
	level, err := levelOf(ref.Kind)
	if err != nil {
		return false, err
	}
	var count int64
	err = connection(ctx, r.db, tx).Table(level.table).Where("id = ?", ref.ID).Count(&count).Error
	return count > 0, err
}

// ParentOf returns nil without an error when the record does not exist.
func (r *HierarchyRepositoryImpl) ParentOf(ctx context.Context, tx *gorm.DB, ref models.NodeRef) (*models.NodeRef, error) {
	level, err := levelOf(ref.Kind)
	if err != nil {
		return nil, err
	}
	conn := connection(ctx, r.db, tx)
	if ref.Kind == models.KindHardware {
		var hardware models.HardwareRequirement
		err := conn.Select("id", "content_type", "content_id").First(&hardware, ref.ID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		parent := hardware.Parent()
		return &parent, nil
	}
	if level.column == "" {
		return nil, fmt.Errorf("%s has no parent", ref.Kind)
	}
	var parentIDs []uint
	err = conn.Table(level.table).Where("id = ?", ref.ID).Pluck(level.column, &parentIDs).Error
	if err != nil {
		return nil, err
	}
	if len(parentIDs) == 0 {
		return nil, nil
	}
	return &models.NodeRef{Kind: level.parent, ID: parentIDs[0]}, nil
}

// ProjectOf walks up the parent chain. It returns 0 when any link is missing.
func (r *HierarchyRepositoryImpl) ProjectOf(ctx context.Context, tx *gorm.DB, ref models.NodeRef) (uint, error) {
	current := ref
	for current.Kind != models.KindProject {
		parent, err := r.ParentOf(ctx, tx, current)
		if err != nil {
			return 0, err
		}
		if parent == nil {
			return 0, nil
		}
		current = *parent
	}
	exists, err := r.Exists(ctx, tx, current)
	if err != nil || !exists {
		return 0, err
	}
	return current.ID, nil
}

func (r *HierarchyRepositoryImpl) UpdateNotes(ctx context.Context, tx *gorm.DB, ref models.NodeRef, notes string) error {
	var model interface{}
	switch ref.Kind {
	case models.KindRoom:
		model = &models.Room{}
	case models.KindLocation:
		model = &models.Location{}
	case models.KindRun:
		model = &models.CabinetRun{}
	case models.KindCabinet:
		model = &models.Cabinet{}
	default:
		return fmt.Errorf("%s has no notes", ref.Kind)
	}
	return connection(ctx, r.db, tx).Model(model).Where("id = ?", ref.ID).Update("notes", notes).Error
}

func ordered(column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(column).Order("id")
	}
}

func (r *HierarchyRepositoryImpl) LoadProjectTree(ctx context.Context, tx *gorm.DB, projectID uint) ([]models.Room, error) {
	const cabinets = "Locations.Runs.Cabinets"
	const sections = cabinets + ".Sections"
	var rooms []models.Room
	err := connection(ctx, r.db, tx).
		Where("project_id = ?", projectID).
		Order("sort_order").Order("id").
		Preload("Locations", ordered("sort_order")).
		Preload("Locations.Runs", ordered("sort_order")).
		Preload(cabinets, ordered("position_in_run")).
		Preload(sections, ordered("sort_order")).
		Preload(sections+".Doors", ordered("sort_order")).
		Preload(sections+".Doors.Hardware", ordered("sort_order")).
		Preload(sections+".Drawers", ordered("sort_order")).
		Preload(sections+".Drawers.Hardware", ordered("sort_order")).
		Preload(sections+".Shelves", ordered("sort_order")).
		Preload(sections+".Shelves.Hardware", ordered("sort_order")).
		Preload(sections+".Pullouts", ordered("sort_order")).
		Preload(sections+".Pullouts.Hardware", ordered("sort_order")).
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func findOne[M any](conn *gorm.DB) (*M, error) {
	var record M
	err := conn.Order("id").First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *HierarchyRepositoryImpl) FindRoomByName(ctx context.Context, tx *gorm.DB, projectID uint, name, roomType string) (*models.Room, error) {
	conn := connection(ctx, r.db, tx).Where("project_id = ? AND name = ? AND room_type = ?", projectID, name, roomType)
	return findOne[models.Room](conn)
}

func (r *HierarchyRepositoryImpl) FindLocationByName(ctx context.Context, tx *gorm.DB, roomID uint, name string) (*models.Location, error) {
	conn := connection(ctx, r.db, tx).Where("room_id = ? AND name = ?", roomID, name)
	return findOne[models.Location](conn)
}

func (r *HierarchyRepositoryImpl) FindRun(ctx context.Context, tx *gorm.DB, id uint) (*models.CabinetRun, error) {
	return findOne[models.CabinetRun](connection(ctx, r.db, tx).Where("id = ?", id))
}

func (r *HierarchyRepositoryImpl) FindRunByName(ctx context.Context, tx *gorm.DB, locationID uint, name, runType string) (*models.CabinetRun, error) {
	conn := connection(ctx, r.db, tx).Where("room_location_id = ? AND name = ? AND run_type = ?", locationID, name, runType)
	return findOne[models.CabinetRun](conn)
}

func (r *HierarchyRepositoryImpl) FindCabinetByNumber(ctx context.Context, tx *gorm.DB, runID uint, number string) (*models.Cabinet, error) {
	conn := connection(ctx, r.db, tx).Where("cabinet_run_id = ? AND cabinet_number = ?", runID, number)
	return findOne[models.Cabinet](conn)
}
