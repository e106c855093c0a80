package tool

import (
	"errors"

	"github.com/achilleasa/artexport/asset/scene"
	"github.com/achilleasa/artexport/interchange"
	"github.com/achilleasa/artexport/types"
)

var ErrNothingSelected = errors.New("tool: no objects selected for export")

func (s *Session) ExportSelected(path string, opts interchange.Options) error {
	doc, err := s.buildDocument(opts)
	if err != nil {
		return err
	}
	if err = interchange.Write(doc, path); err != nil {
		return err
	}

	s.logger.Infof("wrote %d nodes to %q", len(doc.Nodes), path)
	return nil
}

func (s *Session) buildDocument(opts interchange.Options) (*interchange.Document, error) {
	conv, err := interchange.NewAxisConverter(interchange.SourceForward, interchange.SourceUp, opts.AxisForward, opts.AxisUp)
	if err != nil {
		return nil, err
	}

	unitScale := s.sc.UnitScale
	if unitScale == 0 {
		unitScale = 1
	}
	scale := float32(1)
	if opts.ApplyUnitScale && opts.ScaleOptions == interchange.ScaleAll {
		scale = unitScale
	}

	convert := func(v types.Vec3) types.Vec3 {
		v = v.Mul(scale)
		if opts.BakeSpaceTransform {
			v = conv.Apply(v)
		}
		return v
	}

	exported := make(map[string]bool)
	objects := make([]*scene.Object, 0)
	for _, obj := range s.sc.Objects {
		if opts.UseSelection && !obj.Selected {
			continue
		}
		exported[obj.Name] = true
		objects = append(objects, obj)
	}
	if len(objects) == 0 {
		return nil, ErrNothingSelected
	}

	doc := &interchange.Document{
		Options:   opts,
		UnitScale: unitScale,
		Nodes:     make([]interchange.Node, 0, len(objects)),
	}
	for _, obj := range objects {
		node := interchange.Node{
			Name:        obj.Name,
			Kind:        obj.Kind.String(),
			Translation: convert(obj.Transform.Translation),
			Rotation:    obj.Transform.Rotation,
			Scale:       scaleOf(obj),
		}
		if exported[obj.Parent] {
			node.Parent = obj.Parent
		}

		if obj.Mesh != nil {
			node.Vertices = make([]types.Vec3, len(obj.Mesh.Vertices))
			for i, v := range obj.Mesh.Vertices {
				node.Vertices[i] = convert(v)
			}
			node.Indices = append([]uint32(nil), obj.Mesh.Indices...)
		}
		for _, bone := range obj.Bones {
			node.Bones = append(node.Bones, interchange.Bone{
				Name:   bone.Name,
				Parent: bone.Parent,
				Head:   convert(bone.Head),
				Tail:   convert(bone.Tail),
			})
		}
		for _, mod := range obj.Modifiers {
			if mod.Kind == scene.ModifierArmature {
				node.Bindings = append(node.Bindings, mod.Target)
			}
		}

		doc.Nodes = append(doc.Nodes, node)
	}
	return doc, nil
}
