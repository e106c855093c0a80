package tool

import (
	"github.com/achilleasa/artexport/asset/scene"
	"github.com/achilleasa/artexport/types"
)

// Bake the selected transform components of obj into its geometry and reset
// them to identity. Direct children are re-expressed relative to the baked
// parent so their placement is preserved.
func bakeTransform(obj *scene.Object, children []*scene.Object, location, rotation, scale bool) {
	rot := types.QuatIdent()
	if rotation {
		rot = obj.Transform.Rotation
		if rot.IsIdent() {
			rot = types.QuatIdent()
		}
	}
	scl := types.Vec3{1, 1, 1}
	if scale {
		scl = scaleOf(obj)
	}
	var trans types.Vec3
	if location {
		trans = obj.Transform.Translation
	}

	apply := func(v types.Vec3) types.Vec3 {
		return rot.Rotate(v.MulVec(scl)).Add(trans)
	}

	if obj.Mesh != nil {
		for i, v := range obj.Mesh.Vertices {
			obj.Mesh.Vertices[i] = apply(v)
		}
	}
	for i := range obj.Bones {
		obj.Bones[i].Head = apply(obj.Bones[i].Head)
		obj.Bones[i].Tail = apply(obj.Bones[i].Tail)
	}

	for _, child := range children {
		child.Transform.Translation = apply(child.Transform.Translation)
		if rotation {
			child.Transform.Rotation = rot.Mul(childRotation(child))
		}
		if scale {
			child.Transform.Scale = scl.MulVec(scaleOf(child))
		}
	}

	if location {
		obj.Transform.Translation = types.Vec3{}
	}
	if rotation {
		obj.Transform.Rotation = types.QuatIdent()
	}
	if scale {
		obj.Transform.Scale = types.Vec3{1, 1, 1}
	}
}

func childRotation(obj *scene.Object) types.Quat {
	if obj.Transform.Rotation.IsIdent() {
		return types.QuatIdent()
	}
	return obj.Transform.Rotation
}

// Unset scales decode as the zero vector.
func scaleOf(obj *scene.Object) types.Vec3 {
	if obj.Transform.Scale == (types.Vec3{}) {
		return types.Vec3{1, 1, 1}
	}
	return obj.Transform.Scale
}
