package helpers

import (
	"github.com/shopspring/decimal"
)

const DefaultPricingTier = 2

var pricingTiers = map[int]decimal.Decimal{
	1: decimal.NewFromInt(138),
	2: decimal.NewFromInt(168),
	3: decimal.NewFromInt(192),
	4: decimal.NewFromInt(210),
	5: decimal.NewFromInt(225),
}

// PricePerLinearFoot maps a cabinet level to its tier rate. Unknown levels use
// the default tier.
func PricePerLinearFoot(cabinetLevel int) decimal.Decimal {
	if price, ok := pricingTiers[cabinetLevel]; ok {
		return price
	}
	return pricingTiers[DefaultPricingTier]
}

func EstimatePrice(linearFeet float64, cabinetLevel int) decimal.Decimal {
	return decimal.NewFromFloat(linearFeet).Mul(PricePerLinearFoot(cabinetLevel)).Round(2)
}
