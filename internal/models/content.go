package models

// ContentBase holds the columns every section content shares.
type ContentBase struct {
	BaseModel
	SectionID uint   `gorm:"index;not null" json:"section_id"`
	Name      string `gorm:"type:varchar(255)" json:"name,omitempty"`
	SortOrder int    `gorm:"not null;default:0" json:"sort_order"`
}

type Door struct {
	ContentBase
	WidthInches  float64               `json:"width_inches,omitempty"`
	HeightInches float64               `json:"height_inches,omitempty"`
	HingeSide    string                `gorm:"type:varchar(20)" json:"hinge_side,omitempty"`
	HasGlass     bool                  `gorm:"not null" json:"has_glass"`
	ProfileType  string                `gorm:"type:varchar(50)" json:"profile_type,omitempty"`
	HingeType    string                `gorm:"type:varchar(50)" json:"hinge_type,omitempty"`
	Hardware     []HardwareRequirement `gorm:"polymorphic:Content;polymorphicValue:door" json:"hardware,omitempty"`
}

type Drawer struct {
	ContentBase
	FrontWidthInches  float64               `json:"front_width_inches,omitempty"`
	FrontHeightInches float64               `json:"front_height_inches,omitempty"`
	BoxDepthInches    float64               `json:"box_depth_inches,omitempty"`
	BoxMaterial       string                `gorm:"type:varchar(50)" json:"box_material,omitempty"`
	JoineryMethod     string                `gorm:"type:varchar(50)" json:"joinery_method,omitempty"`
	SlideType         string                `gorm:"type:varchar(50)" json:"slide_type,omitempty"`
	SoftClose         bool                  `gorm:"not null" json:"soft_close"`
	Hardware          []HardwareRequirement `gorm:"polymorphic:Content;polymorphicValue:drawer" json:"hardware,omitempty"`
}

type Shelf struct {
	ContentBase
	WidthInches     float64               `json:"width_inches,omitempty"`
	DepthInches     float64               `json:"depth_inches,omitempty"`
	ThicknessInches float64               `json:"thickness_inches,omitempty"`
	ShelfType       string                `gorm:"type:varchar(50);not null" json:"shelf_type"`
	Material        string                `gorm:"type:varchar(50)" json:"material,omitempty"`
	Hardware        []HardwareRequirement `gorm:"polymorphic:Content;polymorphicValue:shelf" json:"hardware,omitempty"`
}

func (Shelf) TableName() string {
	return "shelves"
}

type Pullout struct {
	ContentBase
	PulloutType  string                `gorm:"type:varchar(50);not null" json:"pullout_type"`
	WidthInches  float64               `json:"width_inches,omitempty"`
	HeightInches float64               `json:"height_inches,omitempty"`
	DepthInches  float64               `json:"depth_inches,omitempty"`
	Manufacturer string                `gorm:"type:varchar(100)" json:"manufacturer,omitempty"`
	ModelNumber  string                `gorm:"type:varchar(100)" json:"model_number,omitempty"`
	Hardware     []HardwareRequirement `gorm:"polymorphic:Content;polymorphicValue:pullout" json:"hardware,omitempty"`
}
