package stage

import (
	"fmt"
	"strings"

	"github.com/achilleasa/artexport/asset/scene"
	"github.com/achilleasa/artexport/log"
)

// The asset category of a source scene.
type Category uint8

const (
	CategoryTiles Category = iota
	CategoryCharacter
	CategoryProp
)

// All supported categories.
var Categories = []Category{CategoryTiles, CategoryCharacter, CategoryProp}

func (c Category) String() string {
	switch c {
	case CategoryTiles:
		return "tiles"
	case CategoryCharacter:
		return "character"
	case CategoryProp:
		return "prop"
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// Parse a category name.
func ParseCategory(name string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(name, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("stage: unknown category %q", name)
}

// Container names used by the named-container selection rules.
const (
	TilesContainer = "Tiles"
	PropsContainer = "Props"
)

// The ordered set of objects chosen for one export.
type ExportSet struct {
	Category Category
	Objects  []Object
}

// Get the object names in selection order.
func (s ExportSet) Names() []string {
	names := make([]string, len(s.Objects))
	for i, obj := range s.Objects {
		names[i] = obj.Name()
	}
	return names
}

// A Selector picks the objects to export for one asset category. Selectors
// never modify object transforms.
type Selector interface {
	Select(sess Session) (ExportSet, error)
}

// Get the selector for a category.
func SelectorFor(c Category) (Selector, error) {
	switch c {
	case CategoryTiles:
		return &TileSelector{}, nil
	case CategoryCharacter:
		return &CharacterSelector{logger: log.New("select")}, nil
	case CategoryProp:
		return &PropSelector{}, nil
	}
	return nil, fmt.Errorf("stage: no selector for %s", c)
}

// Selects every object in the "Tiles" container tree.
type TileSelector struct{}

func (s *TileSelector) Select(sess Session) (ExportSet, error) {
	c, ok := sess.Container(TilesContainer)
	if !ok {
		return ExportSet{}, &StructuralSelectionError{
			Kind:   MissingContainer,
			Detail: fmt.Sprintf("scene has no container named %q", TilesContainer),
		}
	}

	objects := c.AllObjects()
	if len(objects) == 0 {
		return ExportSet{}, &StructuralSelectionError{
			Kind:   EmptyExportSet,
			Detail: fmt.Sprintf("container %q is empty", TilesContainer),
		}
	}
	return ExportSet{Category: CategoryTiles, Objects: objects}, nil
}

// Selects the single top-level skeleton and its mesh.
type CharacterSelector struct {
	logger log.Logger
}

func (s *CharacterSelector) Select(sess Session) (ExportSet, error) {
	var skeletons []Object
	for _, obj := range sess.Objects() {
		if obj.Parent() == "" && obj.Kind() == scene.KindSkeleton {
			skeletons = append(skeletons, obj)
		}
	}

	switch len(skeletons) {
	case 0:
		return ExportSet{}, &StructuralSelectionError{
			Kind:   NoSkeletonFound,
			Detail: "scene contains no top-level skeleton",
		}
	case 1:
	default:
		names := make([]string, len(skeletons))
		for i, sk := range skeletons {
			names[i] = sk.Name()
		}
		return ExportSet{}, &StructuralSelectionError{
			Kind:   AmbiguousSkeleton,
			Detail: fmt.Sprintf("found %d skeletons (%s); split the scene into one file per character", len(skeletons), strings.Join(names, ", ")),
		}
	}

	skeleton := skeletons[0]
	var meshes []Object
	for _, child := range skeleton.Children() {
		if child.Kind() == scene.KindMesh {
			meshes = append(meshes, child)
		}
	}

	if len(meshes) == 0 {
		return ExportSet{}, &StructuralSelectionError{
			Kind:   NoMeshUnderSkeleton,
			Detail: fmt.Sprintf("skeleton %q has no mesh child", skeleton.Name()),
		}
	}
	if len(meshes) > 1 && s.logger != nil {
		s.logger.Warningf("skeleton %q has %d mesh children; exporting %q", skeleton.Name(), len(meshes), meshes[0].Name())
	}

	return ExportSet{Category: CategoryCharacter, Objects: []Object{skeleton, meshes[0]}}, nil
}

// Selects the objects of the "Props" container tree if the scene has one and
// every top-level mesh otherwise.
type PropSelector struct{}

func (s *PropSelector) Select(sess Session) (ExportSet, error) {
	var objects []Object
	if c, ok := sess.Container(PropsContainer); ok {
		objects = c.AllObjects()
	} else {
		for _, obj := range sess.Objects() {
			if obj.Parent() == "" && obj.Kind() == scene.KindMesh {
				objects = append(objects, obj)
			}
		}
	}

	if len(objects) == 0 {
		return ExportSet{}, &StructuralSelectionError{
			Kind:   EmptyExportSet,
			Detail: "scene contains no prop objects",
		}
	}
	return ExportSet{Category: CategoryProp, Objects: objects}, nil
}
