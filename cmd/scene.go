package cmd

import (
	"errors"
	"strings"

	"github.com/achilleasa/artexport/asset"
	"github.com/achilleasa/artexport/asset/scene/reader"
	"github.com/achilleasa/artexport/asset/scene/writer"
	"github.com/urfave/cli"
)

// Import wavefront models into the native scene format.
func ImportScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() == 0 {
		return errors.New("missing wavefront obj file argument")
	}

	for idx := 0; idx < ctx.NArg(); idx++ {
		objFile := ctx.Args().Get(idx)
		if !strings.HasSuffix(strings.ToLower(objFile), ".obj") {
			logger.Warningf("skipping unsupported file %s", objFile)
			continue
		}

		logger.Noticef("importing scene: %s", objFile)
		sc, err := reader.ReadScene(objFile)
		if err != nil {
			return err
		}

		if name := ctx.String("container"); name != "" {
			logger.Infof("linking ungrouped objects to container %q", name)
			sc.LinkRootObjects(name)
		}

		logger.Noticef("scene information:\n%s", sc.Stats())

		sceneFile := asset.ReplaceExt(objFile, ".scene")
		if err = writer.WriteScene(sc, sceneFile); err != nil {
			return err
		}
	}

	return nil
}

// Display scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sceneFile := ctx.Args().First()
	if !strings.HasSuffix(sceneFile, ".scene") {
		return errors.New("only scene files with a .scene extension are supported")
	}

	sc, err := reader.ReadScene(sceneFile)
	if err != nil {
		return err
	}

	logger.Noticef("scene information:\n%s", sc.Stats())

	return nil
}
