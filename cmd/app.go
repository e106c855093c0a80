package cmd

import (
	"github.com/urfave/cli"
)

// Build the artexport command line application.
func NewApp() *cli.App {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	configFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load configuration from this file instead of artexport.json next to the executable",
		},
	}

	app := cli.NewApp()
	app.Name = "artexport"
	app.Usage = "export authored scenes to game engine assets"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "export",
			Usage: "export source scenes to the asset tree",
			Description: `
Normalize each source scene in a disposable authoring tool process, then
select the objects required by its asset category and write them to the
matching location in the asset tree using the interchange format.

The category is inferred from the first directory of the source path below
the art root unless --category is specified.`,
			ArgsUsage: "scene_file1.scene scene_file2.scene ...",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "category",
					Usage: "asset category: tiles, character or prop",
				},
				cli.IntFlag{
					Name:  "jobs, j",
					Usage: "number of scenes to export in parallel",
				},
				cli.StringFlag{
					Name:  "metrics-file",
					Usage: "write run metrics in prometheus text format to this file",
				},
			}, configFlags...),
			Action: ExportAssets,
		},
		{
			Name:      "map",
			Usage:     "print the asset tree path for source scenes",
			ArgsUsage: "scene_file1.scene scene_file2.scene ...",
			Flags:     configFlags,
			Action:    MapAssetPath,
		},
		{
			Name:  "tool",
			Usage: "run a stage script with the built-in headless authoring tool",
			Description: `
Load a scene, run one script against it and exit. Available scripts:
normalize, export-tiles, export-character and export-prop. Script arguments
follow a "--" separator.`,
			ArgsUsage: "-- script_args...",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "background",
					Usage: "scene file to load",
				},
				cli.StringFlag{
					Name:  "script, python",
					Usage: "script to run",
				},
			},
			Action: RunTool,
		},
		{
			Name:      "import",
			Usage:     "import wavefront obj files as source scenes",
			ArgsUsage: "model1.obj model2.obj ...",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "container",
					Usage: "link ungrouped objects to this container (e.g. Tiles)",
				},
			},
			Action: ImportScene,
		},
		{
			Name:      "info",
			Usage:     "print scene object information",
			ArgsUsage: "scene_file.scene",
			Action:    ShowSceneInfo,
		},
	}

	return app
}
