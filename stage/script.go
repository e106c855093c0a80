package stage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// A Script runs one stage against an open session. Scripts receive the
// arguments passed after "--" on the tool command line.
type Script func(sess Session, args []string) error

// Built-in script names.
const (
	ScriptNormalize       = "normalize"
	ScriptExportTiles     = "export-tiles"
	ScriptExportCharacter = "export-character"
	ScriptExportProp      = "export-prop"
)

var scripts = map[string]Script{
	ScriptNormalize:       runNormalize,
	ScriptExportTiles:     exportScript(CategoryTiles),
	ScriptExportCharacter: exportScript(CategoryCharacter),
	ScriptExportProp:      exportScript(CategoryProp),
}

// Get the name of the built-in export script for a category.
func ExportScriptName(c Category) string {
	return "export-" + c.String()
}

// Resolve a script by the stem of its base name so "normalize",
// "scripts/normalize.py" and "/opt/normalize" all resolve to the same script.
func LookupScript(path string) (Script, error) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if script, ok := scripts[stem]; ok {
		return script, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScript, path)
}

func runNormalize(sess Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: normalize expects the output path; got %d arguments", ErrBadScriptArgs, len(args))
	}
	return NewNormalizer().Normalize(sess, args[0])
}

func exportScript(c Category) Script {
	return func(sess Session, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("%w: %s expects the destination path; got %d arguments", ErrBadScriptArgs, ExportScriptName(c), len(args))
		}

		if err := reveal(sess); err != nil {
			return err
		}

		selector, err := SelectorFor(c)
		if err != nil {
			return err
		}
		set, err := selector.Select(sess)
		if err != nil {
			return err
		}
		return NewExporter().Export(sess, set, args[0])
	}
}

// Make every container and object visible and selectable and leave edit mode.
func reveal(sess Session) error {
	var walk func(c Container)
	walk = func(c Container) {
		c.SetHidden(false)
		for _, child := range c.Children() {
			walk(child)
		}
	}
	walk(sess.Root())

	for _, obj := range sess.Objects() {
		obj.SetHidden(false)
		obj.SetSelectable(true)
	}

	if err := sess.SetObjectMode(); err != nil && !errors.Is(err, ErrNoEditSession) {
		return err
	}
	return nil
}
