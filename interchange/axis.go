package interchange

import (
	"errors"

	"github.com/achilleasa/artexport/types"
)

var ErrParallelAxes = errors.New("interchange: forward and up axes must not be parallel")

// Converts vectors between two orientation conventions, each defined by a
// forward and an up axis.
type AxisConverter struct {
	srcRight, srcForward, srcUp types.Vec3
	dstRight, dstForward, dstUp types.Vec3
}

// Create a converter from the (fromForward, fromUp) convention to the
// (toForward, toUp) convention.
func NewAxisConverter(fromForward, fromUp, toForward, toUp Axis) (*AxisConverter, error) {
	c := &AxisConverter{}

	var err error
	if c.srcRight, c.srcForward, c.srcUp, err = basis(fromForward, fromUp); err != nil {
		return nil, err
	}
	if c.dstRight, c.dstForward, c.dstUp, err = basis(toForward, toUp); err != nil {
		return nil, err
	}
	return c, nil
}

// Convert a vector expressed in the source convention.
func (c *AxisConverter) Apply(v types.Vec3) types.Vec3 {
	r := v.Dot(c.srcRight)
	f := v.Dot(c.srcForward)
	u := v.Dot(c.srcUp)
	return c.dstRight.Mul(r).Add(c.dstForward.Mul(f)).Add(c.dstUp.Mul(u))
}

func basis(forward, up Axis) (right, fwd, upv types.Vec3, err error) {
	if fwd, err = forward.Vec3(); err != nil {
		return
	}
	if upv, err = up.Vec3(); err != nil {
		return
	}
	if fwd.Dot(upv) != 0 {
		err = ErrParallelAxes
		return
	}
	right = fwd.Cross(upv)
	return
}
