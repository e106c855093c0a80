package writer

import (
	"archive/zip"
	"encoding/gob"
	"os"
	"time"

	"github.com/achilleasa/artexport/asset/scene"
	"github.com/achilleasa/artexport/log"
)

const (
	dataFile = "scene.bin"
)

type zipSceneWriter struct {
	logger    log.Logger
	sceneFile string
}

// Create a new zip scene writer
func newZipSceneWriter(sceneFile string) *zipSceneWriter {
	return &zipSceneWriter{
		logger:    log.New("zip writer"),
		sceneFile: sceneFile,
	}
}

// Write scene definition to zip file.
func (w *zipSceneWriter) Write(sc *scene.Scene) error {
	w.logger.Infof("writing scene to %s", w.sceneFile)
	start := time.Now()

	zipFile, err := os.Create(w.sceneFile)
	if err != nil {
		return err
	}

	// Create zip writer
	zw := zip.NewWriter(zipFile)

	// Write scene data
	cw, err := zw.Create(dataFile)
	if err == nil {
		err = gob.NewEncoder(cw).Encode(sc)
	}
	if err == nil {
		err = zw.Close()
	}
	if closeErr := zipFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	w.logger.Infof("wrote scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return nil
}
