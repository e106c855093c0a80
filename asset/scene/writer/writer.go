package writer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/achilleasa/artexport/asset/scene"
)

// The Writer interface is implemented by all scene writers.
type Writer interface {
	// Write scene definition
	Write(*scene.Scene) error
}

// Write scene to its native zip format. Existing files are overwritten.
func WriteScene(sc *scene.Scene, filename string) error {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".scene" {
		return fmt.Errorf("writeScene: unsupported file format %q", ext)
	}
	return newZipSceneWriter(filename).Write(sc)
}
