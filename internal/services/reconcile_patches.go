package services

import (
	"github.com/shopspring/decimal"
)

// Patches are the typed view of a tree node's attributes. A nil field means the
// attribute was absent or null and leaves the stored value alone.

type roomPatch struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	RoomType    *string `json:"room_type" validate:"omitempty,max=50"`
	FloorNumber *int    `json:"floor_number" validate:"omitempty,gte=-5,lte=200"`
	Notes       *string `json:"notes"`
}

type locationPatch struct {
	Name         *string `json:"name" validate:"omitempty,max=255"`
	LocationType *string `json:"location_type" validate:"omitempty,max=50"`
	CabinetLevel *int    `json:"cabinet_level" validate:"omitempty,gte=1,lte=5"`
	Notes        *string `json:"notes"`
}

type runPatch struct {
	Name    *string `json:"name" validate:"omitempty,max=255"`
	RunType *string `json:"run_type" validate:"omitempty,max=50"`
	Notes   *string `json:"notes"`
}

type cabinetPatch struct {
	CabinetNumber *string `json:"cabinet_number" validate:"omitempty,max=50"`
	// Name is accepted as an alias of cabinet_number.
	Name         *string  `json:"name" validate:"omitempty,max=50"`
	CabinetType  *string  `json:"cabinet_type" validate:"omitempty,max=50"`
	LengthInches *float64 `json:"length_inches" validate:"omitempty,gt=0"`
	DepthInches  *float64 `json:"depth_inches" validate:"omitempty,gt=0"`
	HeightInches *float64 `json:"height_inches" validate:"omitempty,gt=0"`
	Quantity     *int     `json:"quantity" validate:"omitempty,gte=1"`
	Notes        *string  `json:"notes"`
}

func (p cabinetPatch) number() *string {
	if p.CabinetNumber != nil {
		return p.CabinetNumber
	}
	return p.Name
}

type sectionPatch struct {
	Code         *string  `json:"code" validate:"omitempty,max=50"`
	Name         *string  `json:"name" validate:"omitempty,max=255"`
	SectionType  *string  `json:"section_type" validate:"omitempty,oneof=door drawer_bank open_shelf appliance pullout mixed"`
	WidthInches  *float64 `json:"width_inches" validate:"omitempty,gte=0"`
	HeightInches *float64 `json:"height_inches" validate:"omitempty,gte=0"`
}

type doorPatch struct {
	Name         *string  `json:"name" validate:"omitempty,max=255"`
	WidthInches  *float64 `json:"width_inches" validate:"omitempty,gte=0"`
	HeightInches *float64 `json:"height_inches" validate:"omitempty,gte=0"`
	HingeSide    *string  `json:"hinge_side" validate:"omitempty,max=20"`
	HasGlass     *bool    `json:"has_glass"`
	ProfileType  *string  `json:"profile_type" validate:"omitempty,max=50"`
	HingeType    *string  `json:"hinge_type" validate:"omitempty,max=50"`
}

type drawerPatch struct {
	Name              *string  `json:"name" validate:"omitempty,max=255"`
	FrontWidthInches  *float64 `json:"front_width_inches" validate:"omitempty,gte=0"`
	FrontHeightInches *float64 `json:"front_height_inches" validate:"omitempty,gte=0"`
	BoxDepthInches    *float64 `json:"box_depth_inches" validate:"omitempty,gte=0"`
	BoxMaterial       *string  `json:"box_material" validate:"omitempty,max=50"`
	JoineryMethod     *string  `json:"joinery_method" validate:"omitempty,max=50"`
	SlideType         *string  `json:"slide_type" validate:"omitempty,max=50"`
	SoftClose         *bool    `json:"soft_close"`
}

type shelfPatch struct {
	Name            *string  `json:"name" validate:"omitempty,max=255"`
	WidthInches     *float64 `json:"width_inches" validate:"omitempty,gte=0"`
	DepthInches     *float64 `json:"depth_inches" validate:"omitempty,gte=0"`
	ThicknessInches *float64 `json:"thickness_inches" validate:"omitempty,gte=0"`
	ShelfType       *string  `json:"shelf_type" validate:"omitempty,max=50"`
	Material        *string  `json:"material" validate:"omitempty,max=50"`
}

type pulloutPatch struct {
	Name         *string  `json:"name" validate:"omitempty,max=255"`
	PulloutType  *string  `json:"pullout_type" validate:"omitempty,max=50"`
	WidthInches  *float64 `json:"width_inches" validate:"omitempty,gte=0"`
	HeightInches *float64 `json:"height_inches" validate:"omitempty,gte=0"`
	DepthInches  *float64 `json:"depth_inches" validate:"omitempty,gte=0"`
	Manufacturer *string  `json:"manufacturer" validate:"omitempty,max=100"`
	ModelNumber  *string  `json:"model_number" validate:"omitempty,max=100"`
}

type hardwarePatch struct {
	CatalogItemID *uint `json:"catalog_item_id"`
	// ProductID is accepted as an alias of catalog_item_id.
	ProductID    *uint            `json:"product_id"`
	HardwareType *string          `json:"hardware_type" validate:"omitempty,max=50"`
	Quantity     *int             `json:"quantity" validate:"omitempty,gte=1"`
	UnitCost     *decimal.Decimal `json:"unit_cost"`
	Notes        *string          `json:"notes"`
}

func (p hardwarePatch) catalogRef() *uint {
	if p.CatalogItemID != nil {
		return p.CatalogItemID
	}
	return p.ProductID
}

func assign[T comparable](dst *T, src *T) bool {
	if src == nil || *dst == *src {
		return false
	}
	*dst = *src
	return true
}

func assignRef(dst **uint, src *uint) bool {
	if src == nil {
		return false
	}
	if *dst != nil && **dst == *src {
		return false
	}
	value := *src
	*dst = &value
	return true
}

func assignDecimal(dst *decimal.NullDecimal, src *decimal.Decimal) bool {
	if src == nil {
		return false
	}
	if dst.Valid && dst.Decimal.Equal(*src) {
		return false
	}
	*dst = decimal.NewNullDecimal(*src)
	return true
}

func sameNullDecimal(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Decimal.Equal(b.Decimal)
}
