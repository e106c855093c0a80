package stage

import (
	"time"

	"github.com/achilleasa/artexport/interchange"
	"github.com/achilleasa/artexport/log"
)

// Exporter serializes an export set with a fixed serializer configuration.
type Exporter struct {
	logger  log.Logger
	options interchange.Options
}

// Create an exporter using interchange.DefaultOptions.
func NewExporter() *Exporter {
	return &Exporter{
		logger:  log.New("exporter"),
		options: interchange.DefaultOptions(),
	}
}

// Select exactly the objects in set and write them to destPath. The parent
// directory of destPath must already exist.
func (e *Exporter) Export(sess Session, set ExportSet, destPath string) error {
	if len(set.Objects) == 0 {
		return &StructuralSelectionError{Kind: EmptyExportSet, Detail: "nothing to export"}
	}

	start := time.Now()
	sess.DeselectAll()
	for _, obj := range set.Objects {
		e.logger.Debugf("selecting %q", obj.Name())
		obj.SetSelected(true)
	}

	if err := sess.ExportSelected(destPath, e.options); err != nil {
		return err
	}

	e.logger.Noticef("exported %d %s objects to %q in %d ms", len(set.Objects), set.Category, destPath, time.Since(start).Nanoseconds()/1e6)
	return nil
}
