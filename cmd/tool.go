package cmd

import (
	"github.com/achilleasa/artexport/stage"
	"github.com/achilleasa/artexport/tool"
	"github.com/urfave/cli"
)

// Run a single stage script against a scene using the built-in headless
// tool. On failure the last stderr line is a diagnostic that the pipeline
// maps back to a typed error.
func RunTool(ctx *cli.Context) error {
	setupLogging(ctx)

	scenePath := ctx.String("background")
	script := ctx.String("script")
	if scenePath == "" || script == "" {
		err := stage.ErrBadScriptArgs
		return cli.NewExitError(stage.FormatDiagnostic(err), stage.ExitCode(err))
	}

	if err := tool.RunScript(scenePath, script, ctx.Args()); err != nil {
		return cli.NewExitError(stage.FormatDiagnostic(err), stage.ExitCode(err))
	}
	return nil
}
