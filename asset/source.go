package asset

import (
	"os"
	"path/filepath"
	"strings"
)

// A validated authored scene on disk.
type SourceFile struct {
	// Absolute, cleaned path to the file.
	Path string

	// The file extension including the leading dot.
	Ext string

	// True if the extension matches the authoring tool's native format.
	NativeExt bool
}

// Validate a source path. The file must exist and be a regular file. An
// extension that does not match nativeExt is not an error; callers inspect
// the NativeExt field and decide whether to warn.
func ValidateSource(path, nativeExt string) (SourceFile, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return SourceFile{}, &PathValidationError{Path: path, Err: err}
	}

	fi, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return SourceFile{}, &PathValidationError{Path: absPath, Err: ErrSourceMissing}
		}
		return SourceFile{}, &PathValidationError{Path: absPath, Err: err}
	}
	if !fi.Mode().IsRegular() {
		return SourceFile{}, &PathValidationError{Path: absPath, Err: ErrSourceNotFile}
	}

	ext := filepath.Ext(absPath)
	return SourceFile{
		Path:      absPath,
		Ext:       ext,
		NativeExt: strings.EqualFold(ext, ReplaceExt("", nativeExt)),
	}, nil
}
