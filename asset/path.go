package asset

import (
	"path/filepath"
	"strings"
)

// Map a path inside the source tree to the matching path inside the
// destination tree. The relative location of sourcePath under sourceRoot is
// preserved and its final extension is replaced by newExt.
//
// This function is pure; it never touches the filesystem. Both paths must be
// expressed the same way (both absolute or both relative to the same base).
func MapPath(sourcePath, sourceRoot, destRoot, newExt string) (string, error) {
	rel, err := RelPath(sourcePath, sourceRoot)
	if err != nil {
		return "", err
	}

	return filepath.Join(destRoot, ReplaceExt(rel, newExt)), nil
}

// Map a path inside the source tree to the directory that will contain its
// counterpart in the destination tree.
func MapDir(sourcePath, sourceRoot, destRoot, newExt string) (string, error) {
	destPath, err := MapPath(sourcePath, sourceRoot, destRoot, newExt)
	if err != nil {
		return "", err
	}
	return filepath.Dir(destPath), nil
}

// Return the path of p relative to root. It fails with ErrPathNotUnderRoot
// if p is not contained within root or if p is root itself.
func RelPath(p, root string) (string, error) {
	p = filepath.Clean(p)
	root = filepath.Clean(root)

	if filepath.IsAbs(p) != filepath.IsAbs(root) {
		return "", &PathNotUnderRootError{Path: p, Root: root}
	}

	rel, err := filepath.Rel(root, p)
	if err != nil {
		return "", &PathNotUnderRootError{Path: p, Root: root}
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &PathNotUnderRootError{Path: p, Root: root}
	}
	return rel, nil
}

// Replace the final extension of p with ext. A missing leading dot in ext is
// added; an empty ext strips the extension.
func ReplaceExt(p, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.TrimSuffix(p, filepath.Ext(p)) + ext
}
