// Package config loads the artexport configuration file and merges it with
// command line overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/achilleasa/artexport/asset"
	"github.com/achilleasa/artexport/log"
	"github.com/achilleasa/artexport/pipeline"
	"github.com/achilleasa/artexport/stage"
)

// The configuration file name looked up next to the executable.
const FileName = "artexport.json"

const (
	ErrCodeInvalid     = "config_invalid"
	ErrCodeNotFound    = "config_not_found"
	ErrCodeBadCategory = "config_bad_category"
)

const (
	DefaultNativeExt      = ".scene"
	DefaultInterchangeExt = ".fbx"
	DefaultJobs           = 1
	MaxJobs               = 64
)

var ErrNoCategory = errors.New("config: no category rule matches source path")

// Error is a configuration error tagged with an error code.
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("%s: %q: %v", e.Code, e.Path, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: %q", e.Code, e.Path)
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// Extract the error code from err or return an empty string if err is not a
// configuration error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// FileConfig mirrors the layout of artexport.json.
type FileConfig struct {
	SourceRoot     string          `json:"source_root"`
	DestRoot       string          `json:"dest_root"`
	NativeExt      string          `json:"native_ext"`
	InterchangeExt string          `json:"interchange_ext"`
	TempDir        string          `json:"temp_dir"`
	Jobs           int             `json:"jobs"`
	LogLevel       string          `json:"log_level"`
	MetricsFile    string          `json:"metrics_file"`
	Tool           *ToolFileConfig `json:"tool"`
	Categories     []CategoryRule  `json:"categories"`
}

type ToolFileConfig struct {
	Binary     string        `json:"binary"`
	Args       []string      `json:"args"`
	ScriptFlag string        `json:"script_flag"`
	Scripts    ScriptsConfig `json:"scripts"`
}

type ScriptsConfig struct {
	Normalize string `json:"normalize"`
	Tiles     string `json:"tiles"`
	Character string `json:"character"`
	Prop      string `json:"prop"`
}

// Maps the first directory of a source path to a category.
type CategoryRule struct {
	Prefix   string `json:"prefix"`
	Category string `json:"category"`
}

// CLIArgs holds command line overrides. Zero values mean "not specified".
type CLIArgs struct {
	ConfigPath  string
	Jobs        int
	MetricsFile string
	LogLevel    string
}

// A resolved category rule.
type Rule struct {
	Prefix   string
	Category stage.Category
}

// Config is the effective configuration after merging defaults, the config
// file and command line overrides.
type Config struct {
	// The config file that was loaded; empty if none.
	Path string

	Pipeline    pipeline.Config
	Jobs        int
	LogLevel    log.Level
	MetricsFile string
	Rules       []Rule
}

// Get the default configuration. The art and asset trees are siblings of the
// installation directory and the built-in tool is invoked through self.
func Defaults(installDir, self string) Config {
	parent := filepath.Dir(filepath.Clean(installDir))
	return Config{
		Pipeline: pipeline.Config{
			SourceRoot:     filepath.Join(parent, "Art"),
			DestRoot:       filepath.Join(parent, "Assets"),
			NativeExt:      DefaultNativeExt,
			InterchangeExt: DefaultInterchangeExt,
			Tool: pipeline.ToolConfig{
				Binary:          self,
				PrefixArgs:      []string{"tool"},
				ScriptFlag:      pipeline.DefaultScriptFlag,
				NormalizeScript: stage.ScriptNormalize,
				ExportScripts: map[stage.Category]string{
					stage.CategoryTiles:     stage.ScriptExportTiles,
					stage.CategoryCharacter: stage.ScriptExportCharacter,
					stage.CategoryProp:      stage.ScriptExportProp,
				},
			},
		},
		Jobs:     DefaultJobs,
		LogLevel: log.Notice,
		Rules: []Rule{
			{Prefix: "Tiles", Category: stage.CategoryTiles},
			{Prefix: "Characters", Category: stage.CategoryCharacter},
			{Prefix: "Props", Category: stage.CategoryProp},
		},
	}
}

// Load the effective configuration.
//
// If cli.ConfigPath is set the file must exist; otherwise <installDir>/artexport.json
// is loaded if present. Precedence is CLI > config file > defaults. Relative
// paths in the config file are resolved against the file's directory.
func Load(installDir, self string, cli CLIArgs) (*Config, error) {
	cfg := Defaults(installDir, self)

	cfgPath := cli.ConfigPath
	required := cfgPath != ""
	if !required {
		cfgPath = filepath.Join(installDir, FileName)
	}
	if abs, err := filepath.Abs(cfgPath); err == nil {
		cfgPath = abs
	}

	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return nil, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if !exists && required {
		return nil, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
	}
	if exists {
		cfg.Path = cfgPath
		if err = cfg.merge(fc, filepath.Dir(cfgPath)); err != nil {
			return nil, err
		}
	}

	if cli.Jobs != 0 {
		cfg.Jobs = cli.Jobs
	}
	if cli.MetricsFile != "" {
		cfg.MetricsFile = cli.MetricsFile
	}
	if cli.LogLevel != "" {
		if cfg.LogLevel, err = log.ParseLevel(cli.LogLevel); err != nil {
			return nil, &Error{Code: ErrCodeInvalid, Err: err}
		}
	}

	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}
	if cfg.Jobs > MaxJobs {
		cfg.Jobs = MaxJobs
	}
	return &cfg, nil
}

func (cfg *Config) merge(fc FileConfig, baseDir string) error {
	p := &cfg.Pipeline
	if fc.SourceRoot != "" {
		p.SourceRoot = absFrom(baseDir, fc.SourceRoot)
	}
	if fc.DestRoot != "" {
		p.DestRoot = absFrom(baseDir, fc.DestRoot)
	}
	if fc.TempDir != "" {
		p.TempDir = absFrom(baseDir, fc.TempDir)
	}
	if fc.NativeExt != "" {
		p.NativeExt = asset.ReplaceExt("", fc.NativeExt)
	}
	if fc.InterchangeExt != "" {
		p.InterchangeExt = asset.ReplaceExt("", fc.InterchangeExt)
	}
	if fc.Jobs != 0 {
		cfg.Jobs = fc.Jobs
	}
	if fc.MetricsFile != "" {
		cfg.MetricsFile = absFrom(baseDir, fc.MetricsFile)
	}
	if fc.LogLevel != "" {
		level, err := log.ParseLevel(fc.LogLevel)
		if err != nil {
			return &Error{Code: ErrCodeInvalid, Path: cfg.Path, Err: err}
		}
		cfg.LogLevel = level
	}

	if tc := fc.Tool; tc != nil {
		if tc.Binary != "" {
			p.Tool.Binary = tc.Binary
			// A custom tool does not understand the built-in subcommand.
			p.Tool.PrefixArgs = nil
		}
		if tc.Args != nil {
			p.Tool.PrefixArgs = append([]string(nil), tc.Args...)
		}
		if tc.ScriptFlag != "" {
			p.Tool.ScriptFlag = tc.ScriptFlag
		}
		setScript(&p.Tool.NormalizeScript, baseDir, tc.Scripts.Normalize)
		for cat, path := range map[stage.Category]string{
			stage.CategoryTiles:     tc.Scripts.Tiles,
			stage.CategoryCharacter: tc.Scripts.Character,
			stage.CategoryProp:      tc.Scripts.Prop,
		} {
			script := p.Tool.ExportScripts[cat]
			setScript(&script, baseDir, path)
			p.Tool.ExportScripts[cat] = script
		}
	}

	if len(fc.Categories) != 0 {
		cfg.Rules = cfg.Rules[:0:0]
		for _, rule := range fc.Categories {
			cat, err := stage.ParseCategory(rule.Category)
			if err != nil {
				return &Error{Code: ErrCodeBadCategory, Path: cfg.Path, Err: err}
			}
			if strings.TrimSpace(rule.Prefix) == "" {
				return &Error{Code: ErrCodeBadCategory, Path: cfg.Path, Err: fmt.Errorf("empty prefix for category %q", rule.Category)}
			}
			cfg.Rules = append(cfg.Rules, Rule{Prefix: rule.Prefix, Category: cat})
		}
	}
	return nil
}

// Infer the category of a source file from the first directory of its path
// relative to the source root.
func (cfg *Config) CategoryFor(src string) (stage.Category, error) {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return 0, err
	}
	rel, err := asset.RelPath(absSrc, cfg.Pipeline.SourceRoot)
	if err != nil {
		return 0, &asset.PathValidationError{Path: absSrc, Err: err}
	}

	first := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
	for _, rule := range cfg.Rules {
		if strings.EqualFold(first, rule.Prefix) {
			return rule.Category, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrNoCategory, rel)
}

func readFileConfig(path string) (FileConfig, bool, error) {
	var fc FileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fc, false, nil
		}
		return fc, false, err
	}
	if err := json.Unmarshal(data, &fc); err != nil {
		return fc, true, err
	}
	return fc, true, nil
}

// Script values that look like paths are resolved against the config file
// directory; bare names are kept so the built-in tool can resolve them.
func setScript(dst *string, baseDir, value string) {
	if value == "" {
		return
	}
	if strings.ContainsRune(value, '/') || strings.ContainsRune(value, filepath.Separator) {
		value = absFrom(baseDir, value)
	}
	*dst = value
}

func absFrom(baseDir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(baseDir, p)
}
