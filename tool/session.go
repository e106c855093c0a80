package tool

import (
	"github.com/achilleasa/artexport/asset/scene"
	"github.com/achilleasa/artexport/asset/scene/reader"
	"github.com/achilleasa/artexport/asset/scene/writer"
	"github.com/achilleasa/artexport/log"
	"github.com/achilleasa/artexport/stage"
)

var _ stage.Session = (*Session)(nil)

// Session is the headless tool's view of a loaded scene document.
type Session struct {
	logger log.Logger
	sc     *scene.Scene
}

// Load a scene file and open a session for it.
func Open(path string) (*Session, error) {
	sc, err := reader.ReadScene(path)
	if err != nil {
		return nil, err
	}
	return NewSession(sc), nil
}

// Open a session for an in-memory scene.
func NewSession(sc *scene.Scene) *Session {
	return &Session{
		logger: log.New("tool"),
		sc:     sc,
	}
}

// Get the underlying scene.
func (s *Session) Scene() *scene.Scene {
	return s.sc
}

func (s *Session) SetObjectMode() error {
	if s.sc.Mode != scene.ModeEdit {
		return stage.ErrNoEditSession
	}
	s.sc.Mode = scene.ModeObject
	return nil
}

func (s *Session) Root() stage.Container {
	return &container{s: s, c: s.sc.Root}
}

func (s *Session) Objects() []stage.Object {
	return s.wrap(s.sc.Objects)
}

func (s *Session) Container(name string) (stage.Container, bool) {
	c := s.sc.Container(name)
	if c == nil {
		return nil, false
	}
	return &container{s: s, c: c}, true
}

func (s *Session) DeselectAll() {
	for _, obj := range s.sc.Objects {
		obj.Selected = false
	}
	s.sc.Active = ""
}

func (s *Session) SaveAs(path string) error {
	return writer.WriteScene(s.sc, path)
}

func (s *Session) wrap(objects []*scene.Object) []stage.Object {
	out := make([]stage.Object, len(objects))
	for i, obj := range objects {
		out[i] = &object{s: s, o: obj}
	}
	return out
}

type container struct {
	s *Session
	c *scene.Container
}

func (c *container) Name() string          { return c.c.Name }
func (c *container) Hidden() bool          { return c.c.Hidden }
func (c *container) SetHidden(hidden bool) { c.c.Hidden = hidden }

func (c *container) Children() []stage.Container {
	out := make([]stage.Container, len(c.c.Children))
	for i, child := range c.c.Children {
		out[i] = &container{s: c.s, c: child}
	}
	return out
}

func (c *container) AllObjects() []stage.Object {
	return c.s.wrap(c.s.sc.AllObjects(c.c))
}

type object struct {
	s *Session
	o *scene.Object
}

func (o *object) Name() string           { return o.o.Name }
func (o *object) Kind() scene.ObjectKind { return o.o.Kind }
func (o *object) Parent() string         { return o.o.Parent }

func (o *object) Children() []stage.Object {
	return o.s.wrap(o.s.sc.Children(o.o.Name))
}

// Returns a copy so callers can apply modifiers while iterating.
func (o *object) Modifiers() []scene.Modifier {
	return append([]scene.Modifier(nil), o.o.Modifiers...)
}

func (o *object) ApplyModifier(name string) error {
	return applyModifier(o.o, name)
}

func (o *object) ApplyTransform(location, rotation, scale bool) error {
	bakeTransform(o.o, o.s.sc.Children(o.o.Name), location, rotation, scale)
	return nil
}

func (o *object) SetHidden(hidden bool)         { o.o.Hidden = hidden }
func (o *object) SetSelectable(selectable bool) { o.o.HideSelect = !selectable }
func (o *object) Selected() bool                { return o.o.Selected }

func (o *object) SetSelected(selected bool) {
	o.o.Selected = selected
	if selected {
		o.s.sc.Active = o.o.Name
	}
}
