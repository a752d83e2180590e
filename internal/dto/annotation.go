package dto

import (
	"Casework/internal/models"
	"time"
)

type AnnotationInput struct {
	// Key lets another annotation of the same submission name this one as parent.
	Key                string                 `json:"key,omitempty" validate:"max=64"`
	ParentKey          string                 `json:"parent_key,omitempty" validate:"max=64"`
	ParentAnnotationID *uint                  `json:"parent_annotation_id,omitempty"`
	AnnotationType     string                 `json:"annotation_type,omitempty" validate:"omitempty,max=30"`
	NodeKind           string                 `json:"node_kind,omitempty" validate:"omitempty,oneof=room room_location cabinet_run cabinet"`
	NodeID             *uint                  `json:"node_id,omitempty"`
	Label              string                 `json:"label,omitempty" validate:"max=255"`
	X                  *float64               `json:"x" validate:"required,gte=0,lte=1"`
	Y                  *float64               `json:"y" validate:"required,gte=0,lte=1"`
	Width              *float64               `json:"width" validate:"required,gte=0,lte=1"`
	Height             *float64               `json:"height" validate:"required,gte=0,lte=1"`
	ViewType           string                 `json:"view_type,omitempty" validate:"omitempty,oneof=plan elevation section detail"`
	Color              string                 `json:"color,omitempty" validate:"max=20"`
	Notes              string                 `json:"notes,omitempty"`
	RoomType           string                 `json:"room_type,omitempty" validate:"max=50"`
	RunType            string                 `json:"run_type,omitempty" validate:"max=50"`
	Metadata           map[string]interface{} `json:"metadata,omitempty"`
}

// AnnotationContext carries the parents used when create_entities builds nodes
// below room level.
type AnnotationContext struct {
	RoomID         *uint `json:"room_id,omitempty"`
	RoomLocationID *uint `json:"room_location_id,omitempty"`
	CabinetRunID   *uint `json:"cabinet_run_id,omitempty"`
}

type SaveAnnotationsRequest struct {
	Annotations    []AnnotationInput `json:"annotations" validate:"dive"`
	CreateEntities bool              `json:"create_entities"`
	Context        AnnotationContext `json:"context"`
}

type CreatedEntity struct {
	AnnotationIndex int    `json:"annotation_index"`
	EntityType      string `json:"entity_type"`
	EntityID        uint   `json:"entity_id"`
	Reused          bool   `json:"reused"`
}

type SaveAnnotationsResponse struct {
	Success              bool                `json:"success"`
	Strategy             string              `json:"strategy"`
	Count                int                 `json:"count"`
	Annotations          []models.Annotation `json:"annotations"`
	CreatedEntities      []CreatedEntity     `json:"created_entities"`
	EntitiesCreatedCount int                 `json:"entities_created_count"`
}

type PageAnnotationsResponse struct {
	Success      bool                `json:"success"`
	PageID       uint                `json:"page_id"`
	Count        int                 `json:"count"`
	Annotations  []models.Annotation `json:"annotations"`
	LastModified *time.Time          `json:"last_modified"`
}
