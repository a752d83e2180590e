package models

import (
	"github.com/shopspring/decimal"
)

// HardwareRequirement belongs to one door, drawer, shelf or pullout, addressed by
// ContentType and ContentID.
type HardwareRequirement struct {
	BaseModel
	ContentType   string              `gorm:"type:varchar(20);not null;index:idx_hardware_content" json:"content_type"`
	ContentID     uint                `gorm:"not null;index:idx_hardware_content" json:"content_id"`
	CatalogItemID *uint               `gorm:"index" json:"catalog_item_id"`
	HardwareType  string              `gorm:"type:varchar(50)" json:"hardware_type,omitempty"`
	Quantity      int                 `gorm:"not null;default:1" json:"quantity"`
	UnitCost      decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"unit_cost"`
	TotalCost     decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"total_cost"`
	SortOrder     int                 `gorm:"not null;default:0" json:"sort_order"`
	Notes         string              `gorm:"type:text" json:"notes,omitempty"`
}

func (HardwareRequirement) TableName() string {
	return "hardware_requirements"
}

func (h *HardwareRequirement) Parent() NodeRef {
	return NodeRef{Kind: NodeKind(h.ContentType), ID: h.ContentID}
}

// RecomputeTotal sets TotalCost to UnitCost * Quantity, or clears it while the
// unit cost is unknown.
func (h *HardwareRequirement) RecomputeTotal() {
	if !h.UnitCost.Valid {
		h.TotalCost = decimal.NullDecimal{}
		return
	}
	h.TotalCost = decimal.NewNullDecimal(h.UnitCost.Decimal.Mul(decimal.NewFromInt(int64(h.Quantity))))
}

// CatalogItem mirrors the product catalog. The catalog service owns these rows.
type CatalogItem struct {
	BaseModel
	Name     string              `gorm:"type:varchar(255);not null" json:"name"`
	Sku      string              `gorm:"type:varchar(100);index" json:"sku,omitempty"`
	UnitCost decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"unit_cost"`
	Active   bool                `gorm:"not null" json:"active"`
}
