package interchange

import (
	"fmt"
	"strings"

	"github.com/achilleasa/artexport/types"
)

// A signed coordinate axis such as "Y" or "-Z".
type Axis string

const (
	AxisX    Axis = "X"
	AxisY    Axis = "Y"
	AxisZ    Axis = "Z"
	AxisNegX Axis = "-X"
	AxisNegY Axis = "-Y"
	AxisNegZ Axis = "-Z"
)

// The authoring tool's native orientation.
const (
	SourceForward = AxisY
	SourceUp      = AxisZ
)

// Get the unit vector for the axis.
func (a Axis) Vec3() (types.Vec3, error) {
	var v types.Vec3
	name := strings.ToUpper(string(a))
	sign := float32(1)
	if strings.HasPrefix(name, "-") {
		sign = -1
		name = name[1:]
	}
	switch name {
	case "X":
		v[0] = sign
	case "Y":
		v[1] = sign
	case "Z":
		v[2] = sign
	default:
		return v, fmt.Errorf("interchange: invalid axis %q", string(a))
	}
	return v, nil
}

// Controls how the unit scale is applied to the exported data.
type ScaleMode uint8

const (
	// Apply the whole scale to the exported data.
	ScaleAll ScaleMode = iota

	// Leave the data untouched and only record the scale.
	ScaleNone
)

func (m ScaleMode) String() string {
	switch m {
	case ScaleAll:
		return "FBX_SCALE_ALL"
	case ScaleNone:
		return "FBX_SCALE_NONE"
	}
	return fmt.Sprintf("scale(%d)", uint8(m))
}

// Serializer configuration.
type Options struct {
	// Multiply geometry and translations by the scene unit scale.
	ApplyUnitScale bool
	ScaleOptions   ScaleMode

	// Target orientation.
	AxisUp      Axis
	AxisForward Axis

	// Only export selected objects.
	UseSelection bool

	// Bake the axis conversion into geometry instead of storing it as a
	// root transform.
	BakeSpaceTransform bool

	// Animation baking.
	BakeAnim              bool
	BakeAnimUseAllActions bool

	// Refuse to overwrite existing files.
	CheckExisting bool
}

// The fixed configuration used by the export pipeline: unit scale applied,
// space transform baked, Y up, -Z forward, selection only and no animation.
func DefaultOptions() Options {
	return Options{
		ApplyUnitScale:        true,
		ScaleOptions:          ScaleAll,
		AxisUp:                AxisY,
		AxisForward:           AxisNegZ,
		UseSelection:          true,
		BakeSpaceTransform:    true,
		BakeAnim:              false,
		BakeAnimUseAllActions: false,
		CheckExisting:         false,
	}
}
