package dto

import (
	"github.com/shopspring/decimal"
)

type ReconcileRequest struct {
	Tree []*TreeNode `json:"tree"`
	// ExpectedVersion, when set, must equal the project's tree_version.
	ExpectedVersion *uint `json:"expected_version,omitempty"`
}

type LevelStats struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Deleted   int `json:"deleted"`
	Skipped   int `json:"skipped"`
	Recreated int `json:"recreated"`
}

func (s LevelStats) Changed() bool {
	return s.Created+s.Updated+s.Deleted > 0
}

type ProjectTree struct {
	ProjectID           uint            `json:"project_id"`
	Name                string          `json:"name"`
	Version             uint            `json:"version"`
	TotalLinearFeet     float64         `json:"total_linear_feet"`
	TotalEstimatedPrice decimal.Decimal `json:"total_estimated_price"`
	Tree                []*TreeNode     `json:"tree"`
}

type ReconcileResponse struct {
	Success bool                  `json:"success"`
	Stats   map[string]LevelStats `json:"stats"`
	*ProjectTree
}

type CreateProjectRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}
