package interchange

import (
	"github.com/achilleasa/artexport/types"
)

// An exported joint.
type Bone struct {
	Name   string
	Parent string
	Head   types.Vec3
	Tail   types.Vec3
}

// An exported object.
type Node struct {
	Name string
	Kind string

	// Parent node name; empty if the parent was not part of the export.
	Parent string

	Translation types.Vec3
	Rotation    types.Quat
	Scale       types.Vec3

	Vertices []types.Vec3
	Indices  []uint32
	Bones    []Bone

	// Skeleton objects this node stays bound to.
	Bindings []string
}

// The serialized payload of an interchange file.
type Document struct {
	Options   Options
	UnitScale float32
	Nodes     []Node
}

// Lookup a node by name.
func (d *Document) Node(name string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].Name == name {
			return &d.Nodes[i]
		}
	}
	return nil
}
