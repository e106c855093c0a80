package stage

import (
	"errors"

	"github.com/achilleasa/artexport/asset/scene"
	"github.com/achilleasa/artexport/interchange"
)

var ErrNoEditSession = errors.New("stage: no active edit session")

// Session is the view of an open authoring tool document that the stages
// operate on. Each session belongs to a single disposable tool process.
type Session interface {
	// Leave edit mode. Returns ErrNoEditSession if edit mode was not active.
	SetObjectMode() error

	// The top-level visibility container.
	Root() Container

	// All scene objects in authoring order.
	Objects() []Object

	// Lookup a container anywhere in the container tree.
	Container(name string) (Container, bool)

	// Clear the selection state of every object.
	DeselectAll()

	// Persist the whole scene to path, overwriting it.
	SaveAs(path string) error

	// Serialize the selected objects to path.
	ExportSelected(path string, opts interchange.Options) error
}

// A visibility container.
type Container interface {
	Name() string
	Hidden() bool
	SetHidden(hidden bool)
	Children() []Container

	// Objects linked to this container or any of its descendants.
	AllObjects() []Object
}

// A scene object handle.
type Object interface {
	Name() string
	Kind() scene.ObjectKind

	// Name of the parent object; empty for top-level objects.
	Parent() string
	Children() []Object

	Modifiers() []scene.Modifier
	ApplyModifier(name string) error
	ApplyTransform(location, rotation, scale bool) error

	SetHidden(hidden bool)
	SetSelectable(selectable bool)
	SetSelected(selected bool)
	Selected() bool
}
