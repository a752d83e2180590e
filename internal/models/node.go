package models

import "fmt"

// NodeKind names one level of the job hierarchy. Door, drawer, shelf and pullout
// are the four content kinds.
type NodeKind string

const (
	KindProject  NodeKind = "project"
	KindRoom     NodeKind = "room"
	KindLocation NodeKind = "room_location"
	KindRun      NodeKind = "cabinet_run"
	KindCabinet  NodeKind = "cabinet"
	KindSection  NodeKind = "section"
	KindDoor     NodeKind = "door"
	KindDrawer   NodeKind = "drawer"
	KindShelf    NodeKind = "shelf"
	KindPullout  NodeKind = "pullout"
	KindHardware NodeKind = "hardware"

	// KindContent stands for whichever of the four content kinds a node has.
	KindContent NodeKind = "content"
)

var ContentKinds = []NodeKind{KindDoor, KindDrawer, KindShelf, KindPullout}

func (k NodeKind) IsContent() bool {
	switch k {
	case KindDoor, KindDrawer, KindShelf, KindPullout:
		return true
	}
	return false
}

// Annotatable reports whether annotations may reference nodes of this kind.
func (k NodeKind) Annotatable() bool {
	switch k {
	case KindRoom, KindLocation, KindRun, KindCabinet:
		return true
	}
	return false
}

func ParseNodeKind(s string) (NodeKind, error) {
	k := NodeKind(s)
	switch k {
	case KindProject, KindRoom, KindLocation, KindRun, KindCabinet, KindSection, KindHardware:
		return k, nil
	}
	if k.IsContent() {
		return k, nil
	}
	return "", fmt.Errorf("unknown node kind %q", s)
}

// NodeRef is a tagged reference to one persisted hierarchy record.
type NodeRef struct {
	Kind NodeKind `json:"kind"`
	ID   uint     `json:"id"`
}

func (r NodeRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}
