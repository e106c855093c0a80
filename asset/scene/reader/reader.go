package reader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/achilleasa/artexport/asset/scene"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a stream. The name is used for
	// diagnostics and for naming default objects.
	Read(r io.Reader, name string) (*scene.Scene, error)
}

// Read scene from file.
func ReadScene(filename string) (*scene.Scene, error) {
	// Select reader based on file extension
	var reader Reader
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".obj":
		reader = newWavefrontReader()
	case ".scene":
		reader = newZipSceneReader()
	default:
		return nil, fmt.Errorf("readScene: unsupported file format %q", filepath.Ext(filename))
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return reader.Read(f, filename)
}
