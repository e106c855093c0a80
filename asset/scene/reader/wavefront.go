package reader

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/achilleasa/artexport/asset/scene"
	"github.com/achilleasa/artexport/log"
	"github.com/achilleasa/artexport/types"
)

// The wavefront reader imports static geometry into a new scene. Each "o"
// statement starts a new mesh object and each "g" statement starts a new
// container that subsequent objects are linked to. Materials, normals and
// texture coordinates are ignored.
type wavefrontSceneReader struct {
	logger log.Logger

	sc *scene.Scene

	// Currently active container and object.
	curContainer *scene.Container
	curObject    *scene.Object

	// Maps global vertex indices to the local indices of curObject.
	localIndex map[int]uint32

	// Global vertex list.
	vertexList []types.Vec3
}

// Create a new wavefront scene reader.
func newWavefrontReader() *wavefrontSceneReader {
	return &wavefrontSceneReader{
		logger:     log.New("wavefront reader"),
		vertexList: make([]types.Vec3, 0),
	}
}

// Read scene definition.
func (r *wavefrontSceneReader) Read(src io.Reader, name string) (*scene.Scene, error) {
	r.logger.Noticef(`importing wavefront scene from "%s"`, name)
	start := time.Now()

	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	r.sc = scene.NewScene(stem)
	r.curContainer = r.sc.Root

	lineNum := 0
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return nil, r.emitError(name, lineNum, "%s", err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "o":
			if len(lineTokens) < 2 {
				return nil, r.emitError(name, lineNum, `unsupported syntax for "o"; expected 1 argument for object name; got 0`)
			}
			r.startObject(lineTokens[1])
		case "g":
			if len(lineTokens) < 2 {
				return nil, r.emitError(name, lineNum, `unsupported syntax for "g"; expected 1 argument for group name; got 0`)
			}
			r.curContainer = r.sc.Container(lineTokens[1])
			if r.curContainer == nil {
				r.curContainer = r.sc.AddContainer(lineTokens[1], nil)
			}
			r.curObject = nil
		case "f":
			if r.curObject == nil {
				r.startObject(stem)
			}
			if err := r.parseFace(lineTokens); err != nil {
				return nil, r.emitError(name, lineNum, "%s", err.Error())
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	r.logger.Noticef("imported %d objects in %d ms", len(r.sc.Objects), time.Since(start).Nanoseconds()/1e6)
	return r.sc, nil
}

// Start a new mesh object linked to the active container. Duplicate names get
// a numeric suffix.
func (r *wavefrontSceneReader) startObject(name string) {
	unique := name
	for suffix := 1; r.sc.Object(unique) != nil; suffix++ {
		unique = fmt.Sprintf("%s.%03d", name, suffix)
	}

	t := scene.IdentityTransform()
	r.curObject = r.sc.AddObject(&scene.Object{
		Name:      unique,
		Kind:      scene.KindMesh,
		Transform: t,
		Mesh:      &scene.Mesh{},
	}, r.curContainer)
	r.localIndex = make(map[int]uint32)
}

// Parse a face definition and triangulate it as a fan.
func (r *wavefrontSceneReader) parseFace(lineTokens []string) error {
	if len(lineTokens) < 4 {
		return fmt.Errorf(`unsupported syntax for "f"; expected at least 3 vertices; got %d`, len(lineTokens)-1)
	}

	indices := make([]uint32, 0, len(lineTokens)-1)
	for _, tok := range lineTokens[1:] {
		vIndex, err := selectFaceCoordIndex(strings.SplitN(tok, "/", 2)[0], len(r.vertexList))
		if err != nil {
			return err
		}

		local, exists := r.localIndex[vIndex]
		if !exists {
			mesh := r.curObject.Mesh
			mesh.Vertices = append(mesh.Vertices, r.vertexList[vIndex])
			local = uint32(len(mesh.Vertices) - 1)
			r.localIndex[vIndex] = local
		}
		indices = append(indices, local)
	}

	mesh := r.curObject.Mesh
	for i := 1; i+1 < len(indices); i++ {
		mesh.Indices = append(mesh.Indices, indices[0], indices[i], indices[i+1])
	}
	return nil
}

// Generate an error message annotated with the file and line.
func (r *wavefrontSceneReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	return fmt.Errorf("[%s: %d] error: %s", file, line, fmt.Sprintf(msgFormat, args...))
}

// Given an index for a vertex calculate the proper offset into the vertex
// list. Wavefront format can also use negative indices to reference elements
// from the end of the list.
func selectFaceCoordIndex(indexToken string, coordListLen int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = int(index - 1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for '%s'; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
