package mapper

import (
	"Casework/internal/dto"
	"Casework/internal/models"
	"fmt"
	"sort"
)

// The attribute names written here are the ones a submitted tree is decoded
// with, so a loaded tree can be sent back unchanged.

type attributes map[string]interface{}

func newNode(nodeType string, kind models.NodeKind, id uint, attrs attributes) (*dto.TreeNode, error) {
	dbID := id
	node := &dto.TreeNode{
		Key:  fmt.Sprintf("%s-%d", kind, id),
		DBID: &dbID,
		Type: nodeType,
	}
	for key, value := range attrs {
		if err := node.SetAttribute(key, value); err != nil {
			return nil, fmt.Errorf("%s %d attribute %s: %w", kind, id, key, err)
		}
	}
	return node, nil
}

func ToRoomNode(room *models.Room) (*dto.TreeNode, error) {
	node, err := newNode(dto.TypeRoom, models.KindRoom, room.ID, attributes{
		"name":         room.Name,
		"room_type":    room.RoomType,
		"floor_number": room.FloorNumber,
		"notes":        room.Notes,
	})
	if err != nil {
		return nil, err
	}
	node.Children = make([]*dto.TreeNode, 0, len(room.Locations))
	for i := range room.Locations {
		child, err := ToLocationNode(&room.Locations[i])
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

func ToLocationNode(location *models.Location) (*dto.TreeNode, error) {
	node, err := newNode(dto.TypeLocation, models.KindLocation, location.ID, attributes{
		"name":          location.Name,
		"location_type": location.LocationType,
		"cabinet_level": location.CabinetLevel,
		"notes":         location.Notes,
	})
	if err != nil {
		return nil, err
	}
	node.Children = make([]*dto.TreeNode, 0, len(location.Runs))
	for i := range location.Runs {
		child, err := ToRunNode(&location.Runs[i])
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

func ToRunNode(run *models.CabinetRun) (*dto.TreeNode, error) {
	node, err := newNode(dto.TypeRun, models.KindRun, run.ID, attributes{
		"name":     run.Name,
		"run_type": run.RunType,
		"notes":    run.Notes,
	})
	if err != nil {
		return nil, err
	}
	node.Children = make([]*dto.TreeNode, 0, len(run.Cabinets))
	for i := range run.Cabinets {
		child, err := ToCabinetNode(&run.Cabinets[i])
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

func ToCabinetNode(cabinet *models.Cabinet) (*dto.TreeNode, error) {
	node, err := newNode(dto.TypeCabinet, models.KindCabinet, cabinet.ID, attributes{
		"cabinet_number": cabinet.CabinetNumber,
		"cabinet_type":   cabinet.CabinetType,
		"length_inches":  cabinet.LengthInches,
		"depth_inches":   cabinet.DepthInches,
		"height_inches":  cabinet.HeightInches,
		"quantity":       cabinet.Quantity,
		"notes":          cabinet.Notes,
	})
	if err != nil {
		return nil, err
	}
	node.Children = make([]*dto.TreeNode, 0, len(cabinet.Sections))
	for i := range cabinet.Sections {
		child, err := ToSectionNode(&cabinet.Sections[i])
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

type sortedContent struct {
	sortOrder int
	node      *dto.TreeNode
}

// ToSectionNode interleaves the four content kinds by their sort order so the
// children array reads the way it was submitted.
func ToSectionNode(section *models.Section) (*dto.TreeNode, error) {
	node, err := newNode(dto.TypeSection, models.KindSection, section.ID, attributes{
		"code":          section.Code,
		"name":          section.Name,
		"section_type":  section.SectionType,
		"width_inches":  section.WidthInches,
		"height_inches": section.HeightInches,
	})
	if err != nil {
		return nil, err
	}
	var contents []sortedContent
	add := func(base *models.ContentBase, kind models.NodeKind, attrs attributes, hardware []models.HardwareRequirement) error {
		attrs["name"] = base.Name
		child, err := newNode(dto.TypeContent, kind, base.ID, attrs)
		if err != nil {
			return err
		}
		child.ContentType = string(kind)
		child.Children = make([]*dto.TreeNode, 0, len(hardware))
		for i := range hardware {
			hw, err := ToHardwareNode(&hardware[i])
			if err != nil {
				return err
			}
			child.Children = append(child.Children, hw)
		}
		contents = append(contents, sortedContent{sortOrder: base.SortOrder, node: child})
		return nil
	}
	for i := range section.Doors {
		door := &section.Doors[i]
		err := add(&door.ContentBase, models.KindDoor, attributes{
			"width_inches":  door.WidthInches,
			"height_inches": door.HeightInches,
			"hinge_side":    door.HingeSide,
			"has_glass":     door.HasGlass,
			"profile_type":  door.ProfileType,
			"hinge_type":    door.HingeType,
		}, door.Hardware)
		if err != nil {
			return nil, err
		}
	}
	for i := range section.Drawers {
		drawer := &section.Drawers[i]
		err := add(&drawer.ContentBase, models.KindDrawer, attributes{
			"front_width_inches":  drawer.FrontWidthInches,
			"front_height_inches": drawer.FrontHeightInches,
			"box_depth_inches":    drawer.BoxDepthInches,
			"box_material":        drawer.BoxMaterial,
			"joinery_method":      drawer.JoineryMethod,
			"slide_type":          drawer.SlideType,
			"soft_close":          drawer.SoftClose,
		}, drawer.Hardware)
		if err != nil {
			return nil, err
		}
	}
	for i := range section.Shelves {
		shelf := &section.Shelves[i]
		err := add(&shelf.ContentBase, models.KindShelf, attributes{
			"width_inches":     shelf.WidthInches,
			"depth_inches":     shelf.DepthInches,
			"thickness_inches": shelf.ThicknessInches,
			"shelf_type":       shelf.ShelfType,
			"material":         shelf.Material,
		}, shelf.Hardware)
		if err != nil {
			return nil, err
		}
	}
	for i := range section.Pullouts {
		pullout := &section.Pullouts[i]
		err := add(&pullout.ContentBase, models.KindPullout, attributes{
			"pullout_type":  pullout.PulloutType,
			"width_inches":  pullout.WidthInches,
			"height_inches": pullout.HeightInches,
			"depth_inches":  pullout.DepthInches,
			"manufacturer":  pullout.Manufacturer,
			"model_number":  pullout.ModelNumber,
		}, pullout.Hardware)
		if err != nil {
			return nil, err
		}
	}
	sort.SliceStable(contents, func(i, j int) bool { return contents[i].sortOrder < contents[j].sortOrder })
	node.Children = make([]*dto.TreeNode, 0, len(contents))
	for _, content := range contents {
		node.Children = append(node.Children, content.node)
	}
	return node, nil
}

func ToHardwareNode(hardware *models.HardwareRequirement) (*dto.TreeNode, error) {
	attrs := attributes{
		"catalog_item_id": hardware.CatalogItemID,
		"hardware_type":   hardware.HardwareType,
		"quantity":        hardware.Quantity,
		"notes":           hardware.Notes,
		"unit_cost":       nil,
		"total_cost":      nil,
	}
	if hardware.UnitCost.Valid {
		attrs["unit_cost"] = hardware.UnitCost.Decimal.StringFixed(2)
	}
	if hardware.TotalCost.Valid {
		attrs["total_cost"] = hardware.TotalCost.Decimal.StringFixed(2)
	}
	return newNode(dto.TypeHardware, models.KindHardware, hardware.ID, attrs)
}

// ToTreeNodes maps every room of a loaded project.
func ToTreeNodes(rooms []models.Room) ([]*dto.TreeNode, error) {
	nodes := make([]*dto.TreeNode, 0, len(rooms))
	for i := range rooms {
		node, err := ToRoomNode(&rooms[i])
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
