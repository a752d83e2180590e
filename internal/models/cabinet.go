package models

type Cabinet struct {
	BaseModel
	CabinetRunID  uint      `gorm:"index;not null" json:"cabinet_run_id"`
	CabinetNumber string    `gorm:"type:varchar(50);not null" json:"cabinet_number"`
	CabinetType   string    `gorm:"type:varchar(50)" json:"cabinet_type,omitempty"`
	LengthInches  float64   `gorm:"not null" json:"length_inches"`
	DepthInches   float64   `gorm:"not null" json:"depth_inches"`
	HeightInches  float64   `gorm:"not null" json:"height_inches"`
	Quantity      int       `gorm:"not null;default:1" json:"quantity"`
	PositionInRun int       `gorm:"not null;default:0" json:"position_in_run"`
	Notes         string    `gorm:"type:text" json:"notes,omitempty"`
	Sections      []Section `gorm:"foreignKey:CabinetID;constraint:OnDelete:CASCADE" json:"sections,omitempty"`
}

// LinearFeet is the run length this cabinet occupies across all of its copies.
func (c *Cabinet) LinearFeet() float64 {
	return c.LengthInches / 12 * float64(c.Quantity)
}

type Section struct {
	BaseModel
	CabinetID    uint      `gorm:"index;not null" json:"cabinet_id"`
	Code         string    `gorm:"type:varchar(50)" json:"code,omitempty"`
	Name         string    `gorm:"type:varchar(255)" json:"name,omitempty"`
	SectionType  string    `gorm:"type:varchar(50);not null" json:"section_type"`
	WidthInches  float64   `json:"width_inches,omitempty"`
	HeightInches float64   `json:"height_inches,omitempty"`
	SortOrder    int       `gorm:"not null;default:0" json:"sort_order"`
	Doors        []Door    `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"doors,omitempty"`
	Drawers      []Drawer  `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"drawers,omitempty"`
	Shelves      []Shelf   `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"shelves,omitempty"`
	Pullouts     []Pullout `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"pullouts,omitempty"`
}

func (Section) TableName() string {
	return "cabinet_sections"
}

// Section types and the content kinds each one accepts.
const (
	SectionDoor       = "door"
	SectionDrawerBank = "drawer_bank"
	SectionOpenShelf  = "open_shelf"
	SectionAppliance  = "appliance"
	SectionPullout    = "pullout"
	SectionMixed      = "mixed"
)

var sectionContents = map[string][]NodeKind{
	SectionDoor:       {KindDoor, KindShelf},
	SectionDrawerBank: {KindDrawer},
	SectionOpenShelf:  {KindShelf},
	SectionAppliance:  {},
	SectionPullout:    {KindPullout, KindShelf},
	SectionMixed:      {KindDoor, KindDrawer, KindShelf, KindPullout},
}

func IsSectionType(sectionType string) bool {
	_, ok := sectionContents[sectionType]
	return ok
}

func SectionAllows(sectionType string, kind NodeKind) bool {
	for _, k := range sectionContents[sectionType] {
		if k == kind {
			return true
		}
	}
	return false
}
