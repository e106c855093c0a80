package scene

import (
	"fmt"

	"github.com/achilleasa/artexport/types"
)

// The structural role of a scene object.
type ObjectKind uint8

const (
	KindEmpty ObjectKind = iota
	KindMesh
	KindSkeleton
)

func (k ObjectKind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindMesh:
		return "mesh"
	case KindSkeleton:
		return "skeleton"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// The closed set of modifier kinds understood by the tool. Unknown kinds can
// be stored and loaded but cannot be applied.
type ModifierKind uint8

const (
	ModifierUnknown ModifierKind = iota

	// Binds a mesh to a skeleton. Never baked by the export pipeline.
	ModifierArmature

	// Appends a copy of the geometry reflected across a local axis.
	ModifierMirror

	// Appends Count-1 copies of the geometry, each shifted by Offset.
	ModifierArray

	// Translates every vertex by Offset.
	ModifierDisplace
)

func (k ModifierKind) String() string {
	switch k {
	case ModifierArmature:
		return "armature"
	case ModifierMirror:
		return "mirror"
	case ModifierArray:
		return "array"
	case ModifierDisplace:
		return "displace"
	}
	return "unknown"
}

// A non-destructive operation attached to an object.
type Modifier struct {
	Name string
	Kind ModifierKind

	// Mirror axis (0=X, 1=Y, 2=Z).
	Axis int

	// Array copy count.
	Count int

	// Array step or displacement.
	Offset types.Vec3

	// The skeleton object an armature modifier binds to.
	Target string
}

// Object-local transformation.
type Transform struct {
	Translation types.Vec3
	Rotation    types.Quat
	Scale       types.Vec3
}

// Create an identity transform.
func IdentityTransform() Transform {
	return Transform{
		Rotation: types.QuatIdent(),
		Scale:    types.Vec3{1, 1, 1},
	}
}

// Returns true if rotation and scale are both identity. Translation is not
// taken into account.
func (t Transform) RotationScaleIdent() bool {
	return t.Rotation.IsIdent() && t.Scale.ApproxEqual(types.Vec3{1, 1, 1})
}

// Triangle mesh data.
type Mesh struct {
	Vertices []types.Vec3

	// Triangle vertex indices; len(Indices) is a multiple of 3.
	Indices []uint32
}

// A skeleton joint.
type Bone struct {
	Name   string
	Parent string
	Head   types.Vec3
	Tail   types.Vec3
}

// A scene object.
type Object struct {
	Name string
	Kind ObjectKind

	// Name of the parent object or empty for top-level objects.
	Parent string

	Modifiers []Modifier

	Hidden     bool
	HideSelect bool
	Selected   bool

	Transform Transform

	// Populated for KindMesh objects.
	Mesh *Mesh

	// Populated for KindSkeleton objects.
	Bones []Bone
}

// A grouping node used for organization and visibility control. Containers
// reference their member objects by name so the scene graph stays acyclic.
type Container struct {
	Name     string
	Hidden   bool
	Objects  []string
	Children []*Container
}

// The interaction mode of the scene.
type Mode uint8

const (
	ModeObject Mode = iota
	ModeEdit
)

// A scene document.
type Scene struct {
	Name string
	Mode Mode

	// Global unit scale applied on export.
	UnitScale float32

	// Name of the active object.
	Active string

	// The root container; every other container is a descendant of it.
	Root *Container

	// All scene objects in authoring order.
	Objects []*Object
}

// Create a new empty scene.
func NewScene(name string) *Scene {
	return &Scene{
		Name:      name,
		Mode:      ModeObject,
		UnitScale: 1.0,
		Root:      &Container{Name: "Scene Collection"},
		Objects:   make([]*Object, 0),
	}
}

// Lookup an object by name.
func (sc *Scene) Object(name string) *Object {
	for _, obj := range sc.Objects {
		if obj.Name == name {
			return obj
		}
	}
	return nil
}

// Add an object to the scene and link it to container c. If c is nil the
// object is linked to the root container.
func (sc *Scene) AddObject(obj *Object, c *Container) *Object {
	if c == nil {
		c = sc.Root
	}
	sc.Objects = append(sc.Objects, obj)
	c.Objects = append(c.Objects, obj.Name)
	return obj
}

// Add a child container to parent. If parent is nil the container is added
// under the root container.
func (sc *Scene) AddContainer(name string, parent *Container) *Container {
	if parent == nil {
		parent = sc.Root
	}
	c := &Container{Name: name}
	parent.Children = append(parent.Children, c)
	return c
}

// Move the objects linked directly to the root container into the container
// called name, creating it under the root if needed.
func (sc *Scene) LinkRootObjects(name string) *Container {
	if name == sc.Root.Name {
		return sc.Root
	}
	c := sc.Container(name)
	if c == nil {
		c = sc.AddContainer(name, nil)
	}
	c.Objects = append(c.Objects, sc.Root.Objects...)
	sc.Root.Objects = nil
	return c
}

// Find a container by name using a depth-first pre-order search.
func (sc *Scene) Container(name string) *Container {
	var find func(c *Container) *Container
	find = func(c *Container) *Container {
		if c == nil {
			return nil
		}
		if c.Name == name {
			return c
		}
		for _, child := range c.Children {
			if found := find(child); found != nil {
				return found
			}
		}
		return nil
	}
	return find(sc.Root)
}

// Get the objects linked to c or any of its descendant containers. Each
// object appears once, in first-visit order.
func (sc *Scene) AllObjects(c *Container) []*Object {
	seen := make(map[string]bool)
	out := make([]*Object, 0)

	var visit func(c *Container)
	visit = func(c *Container) {
		for _, name := range c.Objects {
			if seen[name] {
				continue
			}
			seen[name] = true
			if obj := sc.Object(name); obj != nil {
				out = append(out, obj)
			}
		}
		for _, child := range c.Children {
			visit(child)
		}
	}

	if c != nil {
		visit(c)
	}
	return out
}

// Get the direct children of an object in authoring order.
func (sc *Scene) Children(name string) []*Object {
	out := make([]*Object, 0)
	for _, obj := range sc.Objects {
		if obj.Parent == name && name != "" {
			out = append(out, obj)
		}
	}
	return out
}
