package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/achilleasa/artexport/log"
	"github.com/achilleasa/artexport/stage"
)

func writeConfig(t *testing.T, dir, body string) string {
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	install := filepath.FromSlash("/opt/game/tools")
	cfg, err := Load(install, "/opt/game/tools/artexport", CLIArgs{})
	if err != nil {
		t.Fatal(err)
	}

	if exp := filepath.FromSlash("/opt/game/Art"); cfg.Pipeline.SourceRoot != exp {
		t.Fatalf("expected source root %q; got %q", exp, cfg.Pipeline.SourceRoot)
	}
	if exp := filepath.FromSlash("/opt/game/Assets"); cfg.Pipeline.DestRoot != exp {
		t.Fatalf("expected dest root %q; got %q", exp, cfg.Pipeline.DestRoot)
	}
	if cfg.Path != "" || cfg.Jobs != DefaultJobs || cfg.LogLevel != log.Notice {
		t.Fatalf("expected defaults; got %+v", cfg)
	}
	tc := cfg.Pipeline.Tool
	if tc.Binary != "/opt/game/tools/artexport" || len(tc.PrefixArgs) != 1 || tc.PrefixArgs[0] != "tool" {
		t.Fatalf("expected built-in tool invocation; got %+v", tc)
	}
	if tc.ExportScripts[stage.CategoryCharacter] != stage.ScriptExportCharacter {
		t.Fatalf("expected built-in character script; got %q", tc.ExportScripts[stage.CategoryCharacter])
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{
		"source_root": "src",
		"dest_root": "/data/out",
		"interchange_ext": "glb",
		"jobs": 4,
		"log_level": "debug",
		"tool": {
			"binary": "blender",
			"script_flag": "--python",
			"scripts": {
				"normalize": "scripts/apply_transforms.py",
				"character": "scripts/export_character.py"
			}
		},
		"categories": [{"prefix": "Chars", "category": "character"}]
	}`)

	cfg, err := Load(dir, "artexport", CLIArgs{Jobs: 2})
	if err != nil {
		t.Fatal(err)
	}

	if exp := filepath.Join(dir, "src"); cfg.Pipeline.SourceRoot != exp {
		t.Fatalf("expected relative source root resolved to %q; got %q", exp, cfg.Pipeline.SourceRoot)
	}
	if exp := filepath.FromSlash("/data/out"); cfg.Pipeline.DestRoot != exp {
		t.Fatalf("expected dest root %q; got %q", exp, cfg.Pipeline.DestRoot)
	}
	if cfg.Pipeline.InterchangeExt != ".glb" || cfg.Pipeline.NativeExt != DefaultNativeExt {
		t.Fatalf("expected extensions .scene/.glb; got %s/%s", cfg.Pipeline.NativeExt, cfg.Pipeline.InterchangeExt)
	}
	if cfg.Jobs != 2 {
		t.Fatalf("expected CLI jobs to override config file; got %d", cfg.Jobs)
	}
	if cfg.LogLevel != log.Debug {
		t.Fatalf("expected debug level; got %s", cfg.LogLevel)
	}

	tc := cfg.Pipeline.Tool
	if tc.Binary != "blender" || len(tc.PrefixArgs) != 0 || tc.ScriptFlag != "--python" {
		t.Fatalf("expected external tool settings; got %+v", tc)
	}
	if exp := filepath.Join(dir, "scripts", "apply_transforms.py"); tc.NormalizeScript != exp {
		t.Fatalf("expected normalize script %q; got %q", exp, tc.NormalizeScript)
	}
	if tc.ExportScripts[stage.CategoryTiles] != stage.ScriptExportTiles {
		t.Fatalf("expected unset scripts to keep their defaults; got %q", tc.ExportScripts[stage.CategoryTiles])
	}

	if len(cfg.Rules) != 1 || cfg.Rules[0].Category != stage.CategoryCharacter {
		t.Fatalf("expected category rules to be replaced; got %+v", cfg.Rules)
	}
}

func TestLoadErrors(t *testing.T) {
	type spec struct {
		body    string
		cli     func(dir string) CLIArgs
		expCode string
	}
	specs := []spec{
		{"", func(dir string) CLIArgs { return CLIArgs{ConfigPath: filepath.Join(dir, "missing.json")} }, ErrCodeNotFound},
		{`{"jobs": "many"}`, nil, ErrCodeInvalid},
		{`{"log_level": "loud"}`, nil, ErrCodeInvalid},
		{`{"categories": [{"prefix": "Cars", "category": "vehicle"}]}`, nil, ErrCodeBadCategory},
		{`{"categories": [{"prefix": "", "category": "prop"}]}`, nil, ErrCodeBadCategory},
	}

	for idx, s := range specs {
		dir := t.TempDir()
		if s.body != "" {
			writeConfig(t, dir, s.body)
		}
		var cli CLIArgs
		if s.cli != nil {
			cli = s.cli(dir)
		}

		_, err := Load(dir, "artexport", cli)
		if code := Code(err); code != s.expCode {
			t.Fatalf("[spec %d] expected error code %q; got %q (%v)", idx, s.expCode, code, err)
		}
	}
}

func TestCategoryFor(t *testing.T) {
	cfg := Defaults(filepath.FromSlash("/work/tools"), "artexport")

	type spec struct {
		src      string
		exp      stage.Category
		expError bool
	}
	specs := []spec{
		{"/work/Art/Tiles/Floor01.scene", stage.CategoryTiles, false},
		{"/work/Art/characters/Hero/hero.scene", stage.CategoryCharacter, false},
		{"/work/Art/Props/crate.scene", stage.CategoryProp, false},
		{"/work/Art/Vehicles/car.scene", 0, true},
		{"/elsewhere/Tiles/Floor01.scene", 0, true},
	}

	for idx, s := range specs {
		cat, err := cfg.CategoryFor(filepath.FromSlash(s.src))
		if s.expError {
			if err == nil {
				t.Fatalf("[spec %d] expected an error", idx)
			}
			continue
		}
		if err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", idx, err)
		}
		if cat != s.exp {
			t.Fatalf("[spec %d] expected category %s; got %s", idx, s.exp, cat)
		}
	}
}
