package models

import (
	"gorm.io/datatypes"
)

type Annotation struct {
	SoftDeleteModel
	PageID             uint           `gorm:"index;not null" json:"page_id"`
	ParentAnnotationID *uint          `gorm:"index" json:"parent_annotation_id,omitempty"`
	AnnotationType     string         `gorm:"type:varchar(30);not null" json:"annotation_type"`
	NodeKind           string         `gorm:"type:varchar(30);index:idx_annotation_node" json:"node_kind,omitempty"`
	NodeID             *uint          `gorm:"index:idx_annotation_node" json:"node_id,omitempty"`
	Label              string         `gorm:"type:varchar(255)" json:"label,omitempty"`
	X                  float64        `gorm:"not null" json:"x"`
	Y                  float64        `gorm:"not null" json:"y"`
	Width              float64        `gorm:"not null" json:"width"`
	Height             float64        `gorm:"not null" json:"height"`
	ViewType           string         `gorm:"type:varchar(20);not null" json:"view_type"`
	Color              string         `gorm:"type:varchar(20)" json:"color,omitempty"`
	Notes              string         `gorm:"type:text" json:"notes,omitempty"`
	Metadata           datatypes.JSON `json:"metadata,omitempty"`
}

func (Annotation) TableName() string {
	return "pdf_annotations"
}

// Node returns the hierarchy node the annotation is linked to, if any.
func (a *Annotation) Node() (NodeRef, bool) {
	if a.NodeID == nil || a.NodeKind == "" {
		return NodeRef{}, false
	}
	return NodeRef{Kind: NodeKind(a.NodeKind), ID: *a.NodeID}, true
}

func (a *Annotation) SetNode(ref *NodeRef) {
	if ref == nil {
		a.NodeKind = ""
		a.NodeID = nil
		return
	}
	id := ref.ID
	a.NodeKind = string(ref.Kind)
	a.NodeID = &id
}

const (
	HistoryCreated = "created"
	HistoryDeleted = "deleted"
	HistoryPurged  = "purged"
)

// AnnotationHistory is an append-only audit row for annotation writes.
type AnnotationHistory struct {
	BaseModel
	PageID       uint           `gorm:"index;not null" json:"page_id"`
	AnnotationID *uint          `gorm:"index" json:"annotation_id,omitempty"`
	Action       string         `gorm:"type:varchar(20);not null" json:"action"`
	Before       datatypes.JSON `json:"before,omitempty"`
	After        datatypes.JSON `json:"after,omitempty"`
	RequestID    string         `gorm:"type:varchar(36)" json:"request_id,omitempty"`
}

func (AnnotationHistory) TableName() string {
	return "pdf_annotation_history"
}
