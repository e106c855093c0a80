package cmd

import (
	"github.com/achilleasa/artexport/log"
	"github.com/urfave/cli"
)

var logger = log.New("artexport")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}

// Returns true if the verbosity was set on the command line.
func verbosityFlagged(ctx *cli.Context) bool {
	return ctx.GlobalBool("v") || ctx.GlobalBool("vv")
}

// Get the global flags that reproduce the active log level in a child
// artexport process.
func verbosityArgs() []string {
	switch log.CurrentLevel() {
	case log.Debug:
		return []string{"-vv"}
	case log.Info:
		return []string{"-v"}
	}
	return nil
}
