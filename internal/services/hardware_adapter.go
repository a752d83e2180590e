package services

import (
	"Casework/internal/dto"
	"Casework/internal/models"
	"github.com/shopspring/decimal"
)

// hardwareAdapter is the leaf level. A requirement is only created once it
// points at a catalog item, and a stored catalog reference is never cleared.
type hardwareAdapter struct{}

func (hardwareAdapter) kind() models.NodeKind { return models.KindHardware }

func (hardwareAdapter) load(r *reconciler, parent models.NodeRef) ([]*models.HardwareRequirement, error) {
	return r.repo.Hardware(r.ctx(), r.tx, parent)
}

func (hardwareAdapter) id(m *models.HardwareRequirement) uint { return m.ID }

func (a hardwareAdapter) build(r *reconciler, parent models.NodeRef, p hardwarePatch, position int, _ []*models.HardwareRequirement) (*models.HardwareRequirement, error) {
	hardware := &models.HardwareRequirement{
		BaseModel:   models.BaseModel{CreatorID: r.rc.ActorID},
		ContentType: string(parent.Kind),
		ContentID:   parent.ID,
		Quantity:    1,
	}
	if p.UnitCost == nil {
		if item, ok := r.catalog[*p.catalogRef()]; ok && item.UnitCost.Valid {
			hardware.UnitCost = decimal.NewNullDecimal(item.UnitCost.Decimal.Round(costPlaces))
		}
	}
	a.apply(r, hardware, p, position)
	hardware.RecomputeTotal()
	return hardware, nil
}

func (hardwareAdapter) apply(_ *reconciler, m *models.HardwareRequirement, p hardwarePatch, position int) bool {
	changed := assign(&m.SortOrder, &position)
	changed = assignRef(&m.CatalogItemID, p.catalogRef()) || changed
	changed = assign(&m.HardwareType, p.HardwareType) || changed
	changed = assign(&m.Quantity, p.Quantity) || changed
	changed = assignDecimal(&m.UnitCost, p.UnitCost) || changed
	changed = assign(&m.Notes, p.Notes) || changed

	total := m.TotalCost
	m.RecomputeTotal()
	return !sameNullDecimal(total, m.TotalCost) || changed
}

func (hardwareAdapter) skip(_ *reconciler, p hardwarePatch) bool {
	return p.catalogRef() == nil
}

func (hardwareAdapter) descend(*reconciler, *models.HardwareRequirement, *dto.TreeNode) error {
	return nil
}
