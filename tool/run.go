package tool

import (
	"time"

	"github.com/achilleasa/artexport/log"
	"github.com/achilleasa/artexport/stage"
)

// Load scenePath, run the script identified by scriptPath against it and
// return the script result. Every call works on a freshly loaded scene.
func RunScript(scenePath, scriptPath string, args []string) error {
	logger := log.New("tool")
	start := time.Now()

	script, err := stage.LookupScript(scriptPath)
	if err != nil {
		return err
	}

	logger.Infof("loading %q", scenePath)
	sess, err := Open(scenePath)
	if err != nil {
		return err
	}

	if err = script(sess, args); err != nil {
		return err
	}

	logger.Infof("script %q completed in %d ms", scriptPath, time.Since(start).Nanoseconds()/1e6)
	return nil
}
