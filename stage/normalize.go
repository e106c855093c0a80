package stage

import (
	"errors"
	"fmt"
	"time"

	"github.com/achilleasa/artexport/asset/scene"
	"github.com/achilleasa/artexport/log"
)

// Normalizer bakes modifier stacks and object rotation/scale into geometry
// and saves the result as an intermediate scene.
type Normalizer struct {
	logger log.Logger
}

// Create a new normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		logger: log.New("normalizer"),
	}
}

// Normalize the scene and persist it to outPath. Persisting is the last step
// so a failure never leaves a partially baked scene behind.
func (n *Normalizer) Normalize(sess Session, outPath string) error {
	start := time.Now()

	if err := sess.SetObjectMode(); err != nil && !errors.Is(err, ErrNoEditSession) {
		return err
	}

	n.logger.Info("revealing visibility containers")
	n.unhide(sess.Root(), 0)

	n.logger.Info("applying modifiers")
	objects := sess.Objects()
	for _, obj := range objects {
		if err := n.applyModifiers(obj); err != nil {
			return err
		}
	}

	n.logger.Info("baking rotation and scale")
	for _, obj := range hierarchyOrder(objects) {
		n.logger.Debugf("baking transform of %q", obj.Name())
		if err := obj.ApplyTransform(false, true, true); err != nil {
			return err
		}
	}

	n.logger.Infof("saving normalized scene to %q", outPath)
	if err := sess.SaveAs(outPath); err != nil {
		return err
	}

	n.logger.Noticef("normalized %d objects in %d ms", len(objects), time.Since(start).Nanoseconds()/1e6)
	return nil
}

// Recursively reveal c and its descendants in depth-first pre-order.
func (n *Normalizer) unhide(c Container, depth int) {
	n.logger.Debugf("container %q (depth %d, hidden: %t)", c.Name(), depth, c.Hidden())
	c.SetHidden(false)
	for _, child := range c.Children() {
		n.unhide(child, depth+1)
	}
}

// Order objects so every parent precedes its children. Baking a parent
// rewrites its children's transforms, so a child baked first would get the
// parent's rotation and scale back.
func hierarchyOrder(objects []Object) []Object {
	names := make(map[string]bool, len(objects))
	for _, obj := range objects {
		names[obj.Name()] = true
	}

	ordered := make([]Object, 0, len(objects))
	visited := make(map[string]bool, len(objects))
	var visit func(obj Object)
	visit = func(obj Object) {
		if visited[obj.Name()] {
			return
		}
		visited[obj.Name()] = true
		ordered = append(ordered, obj)
		for _, child := range obj.Children() {
			visit(child)
		}
	}

	for _, obj := range objects {
		if parent := obj.Parent(); parent == "" || !names[parent] {
			visit(obj)
		}
	}
	// Parent cycles have no root.
	for _, obj := range objects {
		visit(obj)
	}
	return ordered
}

func (n *Normalizer) applyModifiers(obj Object) error {
	for _, mod := range obj.Modifiers() {
		if mod.Kind == scene.ModifierArmature {
			n.logger.Debugf("%s: preserving skeleton binding %q", obj.Name(), mod.Name)
			continue
		}

		n.logger.Debugf("%s: applying %s modifier %q", obj.Name(), mod.Kind, mod.Name)
		if err := obj.ApplyModifier(mod.Name); err != nil {
			return err
		}
	}

	if left := len(obj.Modifiers()); left > 1 {
		return &InvariantViolation{
			Object: obj.Name(),
			Detail: fmt.Sprintf("expected at most one modifier after baking; found %d", left),
		}
	}
	return nil
}
