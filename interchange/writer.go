package interchange

import (
	"archive/zip"
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
)

const (
	dataFile = "asset.bin"
)

var ErrFileExists = errors.New("interchange: destination file exists")

// Write a document to path. The parent directory must already exist. Existing
// files are overwritten unless the document options request CheckExisting.
func Write(doc *Document, path string) error {
	if doc.Options.CheckExisting {
		if _, err := os.Stat(path); err == nil {
			return ErrFileExists
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(f)
	cw, err := zw.Create(dataFile)
	if err == nil {
		err = gob.NewEncoder(cw).Encode(doc)
	}
	if err == nil {
		err = zw.Close()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}

// Read a document written by Write.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("interchange: %s is not an asset archive: %s", path, err.Error())
	}

	for _, f := range zr.File {
		if f.Name != dataFile {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		doc := &Document{}
		err = gob.NewDecoder(rc).Decode(doc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("interchange: failed to load %s: %s", f.Name, err.Error())
		}
		return doc, nil
	}
	return nil, fmt.Errorf("interchange: %s does not contain %s", path, dataFile)
}
