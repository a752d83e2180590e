package dto

import (
	"encoding/json"
	"fmt"
	"github.com/shopspring/decimal"
	"sort"
)

// Node type tags used in submitted and loaded trees.
const (
	TypeRoom     = "room"
	TypeLocation = "room_location"
	TypeRun      = "cabinet_run"
	TypeCabinet  = "cabinet"
	TypeSection  = "section"
	TypeContent  = "content"
	TypeHardware = "hardware"
)

// TreeNode is one node of an editable job tree. It is encoded as a flat JSON
// object: id, db_id, type, content_type and children are structural, every
// other key belongs to Attributes.
type TreeNode struct {
	Key         string
	DBID        *uint
	Type        string
	ContentType string
	Attributes  map[string]json.RawMessage
	// Children is nil when the key was absent, which leaves persisted children
	// untouched on reconcile.
	Children []*TreeNode

	LinearFeet      *float64
	EstimatedPrice  *decimal.Decimal
	AnnotationCount *int
	Pages           []uint
}

var structuralKeys = map[string]bool{
	"id":           true,
	"db_id":        true,
	"type":         true,
	"content_type": true,
	"children":     true,
}

// computed keys are emitted on load and dropped on submit
var computedKeys = map[string]bool{
	"linear_feet":      true,
	"estimated_price":  true,
	"annotation_count": true,
	"pages":            true,
}

func (n *TreeNode) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = TreeNode{}
	if v, ok := raw["id"]; ok && !isNull(v) {
		key, err := decodeKey(v)
		if err != nil {
			return err
		}
		n.Key = key
	}
	if v, ok := raw["db_id"]; ok && !isNull(v) {
		var id uint
		if err := json.Unmarshal(v, &id); err != nil {
			return fmt.Errorf("db_id: %w", err)
		}
		n.DBID = &id
	}
	if v, ok := raw["type"]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &n.Type); err != nil {
			return fmt.Errorf("type: %w", err)
		}
	}
	if v, ok := raw["content_type"]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &n.ContentType); err != nil {
			return fmt.Errorf("content_type: %w", err)
		}
	}
	if v, ok := raw["children"]; ok && !isNull(v) {
		children := []*TreeNode{}
		if err := json.Unmarshal(v, &children); err != nil {
			return err
		}
		n.Children = children
	}
	for key, value := range raw {
		if structuralKeys[key] || computedKeys[key] {
			continue
		}
		if n.Attributes == nil {
			n.Attributes = make(map[string]json.RawMessage)
		}
		n.Attributes[key] = value
	}
	return nil
}

func (n TreeNode) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(n.Attributes)+8)
	for key, value := range n.Attributes {
		out[key] = value
	}
	if n.Key != "" {
		out["id"] = n.Key
	}
	if n.DBID != nil {
		out["db_id"] = *n.DBID
	}
	out["type"] = n.Type
	if n.ContentType != "" {
		out["content_type"] = n.ContentType
	}
	if n.LinearFeet != nil {
		out["linear_feet"] = *n.LinearFeet
	}
	if n.EstimatedPrice != nil {
		out["estimated_price"] = n.EstimatedPrice.StringFixed(2)
	}
	if n.AnnotationCount != nil {
		out["annotation_count"] = *n.AnnotationCount
		pages := n.Pages
		if pages == nil {
			pages = []uint{}
		}
		out["pages"] = pages
	}
	if n.Children != nil {
		out["children"] = n.Children
	}
	return json.Marshal(out)
}

// SetAttribute stores value under key, replacing any previous value.
func (n *TreeNode) SetAttribute(key string, value interface{}) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if n.Attributes == nil {
		n.Attributes = make(map[string]json.RawMessage)
	}
	n.Attributes[key] = encoded
	return nil
}

// AttributeKeys returns the attribute names in a stable order.
func (n *TreeNode) AttributeKeys() []string {
	keys := make([]string, 0, len(n.Attributes))
	for key := range n.Attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// DecodeAttributes unmarshals the attribute map into a struct whose pointer
// fields stay nil for absent keys.
func (n *TreeNode) DecodeAttributes(target interface{}) error {
	if len(n.Attributes) == 0 {
		return nil
	}
	encoded, err := json.Marshal(n.Attributes)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, target)
}

func isNull(v json.RawMessage) bool {
	return string(v) == "null"
}

// decodeKey accepts client keys sent either as strings or numbers.
func decodeKey(v json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s, nil
	}
	var num json.Number
	if err := json.Unmarshal(v, &num); err != nil {
		return "", fmt.Errorf("id: %w", err)
	}
	return num.String(), nil
}
