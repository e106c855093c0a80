package scene

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/achilleasa/artexport/types"
	"github.com/olekukonko/tablewriter"
)

// Build a tabular representation of the scene objects.
func (sc *Scene) Stats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Object", "Kind", "Parent", "Modifiers", "Geometry", "Bounds", "Hidden"})

	var totalVerts, totalTris int
	for _, obj := range sc.Objects {
		geometry, bounds := "-", "-"
		switch {
		case obj.Mesh != nil:
			totalVerts += len(obj.Mesh.Vertices)
			totalTris += len(obj.Mesh.Indices) / 3
			geometry = fmt.Sprintf("%d verts / %d tris", len(obj.Mesh.Vertices), len(obj.Mesh.Indices)/3)
			bounds = fmtBounds(types.BBox(obj.Mesh.Vertices))
		case len(obj.Bones) != 0:
			geometry = fmt.Sprintf("%d bones", len(obj.Bones))
		}

		parent := obj.Parent
		if parent == "" {
			parent = "-"
		}

		table.Append([]string{
			obj.Name,
			obj.Kind.String(),
			parent,
			fmtModifiers(obj.Modifiers),
			geometry,
			bounds,
			fmt.Sprintf("%t", obj.Hidden),
		})
	}
	table.SetFooter([]string{
		"Total",
		fmt.Sprintf("%d objects", len(sc.Objects)),
		" ",
		" ",
		fmt.Sprintf("%d verts / %d tris", totalVerts, totalTris),
		" ",
		" ",
	})

	table.Render()
	return buf.String()
}

func fmtModifiers(mods []Modifier) string {
	if len(mods) == 0 {
		return "-"
	}
	names := make([]string, len(mods))
	for i, mod := range mods {
		names[i] = fmt.Sprintf("%s(%s)", mod.Name, mod.Kind)
	}
	return strings.Join(names, ", ")
}

// Format the extents of a bounding box and the length of its diagonal.
func fmtBounds(bbox [2]types.Vec3) string {
	size := bbox[1].Sub(bbox[0])
	return fmt.Sprintf("%.2f x %.2f x %.2f (diag %.2f)", size[0], size[1], size[2], size.Len())
}
