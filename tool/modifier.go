package tool

import (
	"errors"
	"fmt"

	"github.com/achilleasa/artexport/asset/scene"
	"github.com/achilleasa/artexport/types"
)

var (
	ErrUnknownModifier     = errors.New("tool: no such modifier")
	ErrUnsupportedModifier = errors.New("tool: modifier kind cannot be applied")
)

// Apply the named modifier to the object geometry and remove it from the
// modifier stack.
func applyModifier(obj *scene.Object, name string) error {
	index := -1
	for i, mod := range obj.Modifiers {
		if mod.Name == name {
			index = i
			break
		}
	}
	if index == -1 {
		return fmt.Errorf("%w: %q on object %q", ErrUnknownModifier, name, obj.Name)
	}

	mod := obj.Modifiers[index]
	switch mod.Kind {
	case scene.ModifierArmature:
		// Dropping the binding leaves the rest pose geometry untouched.
	case scene.ModifierMirror:
		if mod.Axis < 0 || mod.Axis > 2 {
			return fmt.Errorf("tool: mirror modifier %q on object %q has invalid axis %d", name, obj.Name, mod.Axis)
		}
		if obj.Mesh != nil {
			mirror(obj.Mesh, mod.Axis)
		}
	case scene.ModifierArray:
		if mod.Count < 1 {
			return fmt.Errorf("tool: array modifier %q on object %q has invalid count %d", name, obj.Name, mod.Count)
		}
		if obj.Mesh != nil {
			array(obj.Mesh, mod.Count, mod.Offset)
		}
	case scene.ModifierDisplace:
		if obj.Mesh != nil {
			for i := range obj.Mesh.Vertices {
				obj.Mesh.Vertices[i] = obj.Mesh.Vertices[i].Add(mod.Offset)
			}
		}
	default:
		return fmt.Errorf("%w: %q (%s) on object %q", ErrUnsupportedModifier, name, mod.Kind, obj.Name)
	}

	obj.Modifiers = append(obj.Modifiers[:index:index], obj.Modifiers[index+1:]...)
	return nil
}

// Append a copy of the mesh reflected across axis. The winding of the
// reflected triangles is flipped so their normals keep facing outwards.
func mirror(mesh *scene.Mesh, axis int) {
	base := uint32(len(mesh.Vertices))
	vertCount := len(mesh.Vertices)
	for i := 0; i < vertCount; i++ {
		v := mesh.Vertices[i]
		v[axis] = -v[axis]
		mesh.Vertices = append(mesh.Vertices, v)
	}

	indexCount := len(mesh.Indices)
	for i := 0; i+2 < indexCount; i += 3 {
		mesh.Indices = append(mesh.Indices,
			mesh.Indices[i]+base,
			mesh.Indices[i+2]+base,
			mesh.Indices[i+1]+base,
		)
	}
}

// Append count-1 copies of the mesh, copy i shifted by i*offset.
func array(mesh *scene.Mesh, count int, offset types.Vec3) {
	vertCount := len(mesh.Vertices)
	indexCount := len(mesh.Indices)
	for copyIndex := 1; copyIndex < count; copyIndex++ {
		base := uint32(len(mesh.Vertices))
		shift := offset.Mul(float32(copyIndex))
		for i := 0; i < vertCount; i++ {
			mesh.Vertices = append(mesh.Vertices, mesh.Vertices[i].Add(shift))
		}
		for i := 0; i < indexCount; i++ {
			mesh.Indices = append(mesh.Indices, mesh.Indices[i]+base)
		}
	}
}
