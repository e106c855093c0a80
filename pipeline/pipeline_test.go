package pipeline

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/achilleasa/artexport/asset"
	"github.com/achilleasa/artexport/asset/scene"
	"github.com/achilleasa/artexport/asset/scene/writer"
	"github.com/achilleasa/artexport/interchange"
	"github.com/achilleasa/artexport/stage"
	"github.com/achilleasa/artexport/tool"
	"github.com/achilleasa/artexport/types"
)

// Records invocations and emulates tool side effects by writing the file
// passed after "--".
type fakeRunner struct {
	mu          sync.Mutex
	invocations []Invocation
	failStage   State
	failErr     error
	skipOutput  bool
}

func (r *fakeRunner) Run(_ context.Context, inv Invocation) error {
	r.mu.Lock()
	r.invocations = append(r.invocations, inv)
	r.mu.Unlock()

	if r.failErr != nil && inv.Stage == r.failStage {
		return r.failErr
	}
	if r.skipOutput {
		return nil
	}
	out := inv.Args[len(inv.Args)-1]
	return os.WriteFile(out, []byte(inv.Stage.String()), 0644)
}

func (r *fakeRunner) stages() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, len(r.invocations))
	for i, inv := range r.invocations {
		out[i] = inv.Stage
	}
	return out
}

// Runs the headless tool in-process, translating script errors into exit
// errors the same way the tool command does.
type inProcessRunner struct{}

func (inProcessRunner) Run(_ context.Context, inv Invocation) error {
	var scenePath, script string
	var args []string
	for i := 0; i < len(inv.Args); i++ {
		switch inv.Args[i] {
		case "--background":
			i++
			scenePath = inv.Args[i]
		case DefaultScriptFlag:
			i++
			script = inv.Args[i]
		case "--":
			args = inv.Args[i+1:]
			i = len(inv.Args)
		}
	}

	if err := tool.RunScript(scenePath, script, args); err != nil {
		return &ExitError{Code: stage.ExitCode(err), Stderr: stage.FormatDiagnostic(err) + "\n"}
	}
	return nil
}

type fakeObserver struct {
	mu     sync.Mutex
	stages []string
	runs   []string
}

func (o *fakeObserver) ObserveStage(stage string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stages = append(o.stages, stage)
}

func (o *fakeObserver) ObserveRun(category, status string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runs = append(o.runs, category+"/"+status)
}

type fixture struct {
	root    string
	srcRoot string
	dstRoot string
	tmpDir  string
	cfg     Config
}

func newFixture(t *testing.T) *fixture {
	root := t.TempDir()
	f := &fixture{
		root:    root,
		srcRoot: filepath.Join(root, "Art"),
		dstRoot: filepath.Join(root, "Assets"),
		tmpDir:  filepath.Join(root, "tmp"),
	}
	for _, dir := range []string{f.srcRoot, f.dstRoot, f.tmpDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}

	f.cfg = Config{
		SourceRoot:     f.srcRoot,
		DestRoot:       f.dstRoot,
		NativeExt:      ".scene",
		InterchangeExt: ".fbx",
		TempDir:        f.tmpDir,
		Tool: ToolConfig{
			Binary:          "artexport",
			PrefixArgs:      []string{"tool"},
			NormalizeScript: stage.ScriptNormalize,
			ExportScripts: map[stage.Category]string{
				stage.CategoryTiles:     stage.ScriptExportTiles,
				stage.CategoryCharacter: stage.ScriptExportCharacter,
				stage.CategoryProp:      stage.ScriptExportProp,
			},
		},
	}
	return f
}

// Create a placeholder source file.
func (f *fixture) touch(t *testing.T, rel string) string {
	path := filepath.Join(f.srcRoot, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("scene"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// Write a real scene file.
func (f *fixture) writeScene(t *testing.T, rel string, sc *scene.Scene) string {
	path := filepath.Join(f.srcRoot, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := writer.WriteScene(sc, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func (f *fixture) assertNoWorkDirs(t *testing.T) {
	entries, err := os.ReadDir(f.tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected temporary work directories to be removed; found %d entries", len(entries))
	}
}

func TestRun(t *testing.T) {
	f := newFixture(t)
	src := f.touch(t, "Tiles/Floor01.scene")
	runner := &fakeRunner{}
	observer := &fakeObserver{}

	res, err := New(f.cfg, runner, observer).Run(context.Background(), src, stage.CategoryTiles)
	if err != nil {
		t.Fatal(err)
	}

	expDest := filepath.Join(f.dstRoot, "Tiles", "Floor01.fbx")
	if res.Destination != expDest || res.State != Done {
		t.Fatalf("expected done run with destination %q; got %q (%s)", expDest, res.Destination, res.State)
	}
	if _, err := os.Stat(expDest); err != nil {
		t.Fatalf("expected destination to be written: %v", err)
	}
	if len(res.RunID) != 36 {
		t.Fatalf("expected a uuid run id; got %q", res.RunID)
	}

	if exp := []State{Normalizing, Exporting}; !reflect.DeepEqual(runner.stages(), exp) {
		t.Fatalf("expected stages %v; got %v", exp, runner.stages())
	}

	norm := runner.invocations[0]
	intermediate := norm.Args[len(norm.Args)-1]
	expNorm := []string{"tool", "--background", src, "--script", "normalize", "--", intermediate}
	if !reflect.DeepEqual(norm.Args, expNorm) {
		t.Fatalf("expected normalize args %v; got %v", expNorm, norm.Args)
	}
	if filepath.Base(intermediate) != "normalized.scene" {
		t.Fatalf("expected intermediate scene name; got %q", intermediate)
	}

	exp := runner.invocations[1]
	expExport := []string{"tool", "--background", intermediate, "--script", "export-tiles", "--", expDest}
	if !reflect.DeepEqual(exp.Args, expExport) {
		t.Fatalf("expected export args %v; got %v", expExport, exp.Args)
	}

	f.assertNoWorkDirs(t)

	if exp := []string{"normalizing", "exporting"}; !reflect.DeepEqual(observer.stages, exp) {
		t.Fatalf("expected observed stages %v; got %v", exp, observer.stages)
	}
	if exp := []string{"tiles/success"}; !reflect.DeepEqual(observer.runs, exp) {
		t.Fatalf("expected observed runs %v; got %v", exp, observer.runs)
	}
}

func TestRunCreatesDestinationDirectories(t *testing.T) {
	f := newFixture(t)
	src := f.touch(t, "Props/Kitchen/Shelves/crate.scene")

	if _, err := New(f.cfg, &fakeRunner{}, nil).Run(context.Background(), src, stage.CategoryProp); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(filepath.Join(f.dstRoot, "Props", "Kitchen", "Shelves")); err != nil || !fi.IsDir() {
		t.Fatalf("expected destination directory to be created: %v", err)
	}
}

func TestRunStageFailures(t *testing.T) {
	type spec struct {
		failStage   State
		failErr     error
		expIs       error
		expStages   []State
		expExitCode int
	}
	specs := []spec{
		{Normalizing, &ExitError{Code: 1, Stderr: "boom"}, ErrNormalizationFailed, []State{Normalizing}, 1},
		{Exporting, &ExitError{Code: 2}, ErrExportFailed, []State{Normalizing, Exporting}, 2},
		{Exporting, &ExitError{Code: 3, Stderr: "error[missing_container]: no Tiles\n"}, stage.ErrMissingContainer, []State{Normalizing, Exporting}, 3},
		{Exporting, errors.New("exec: not found"), ErrExportFailed, []State{Normalizing, Exporting}, -1},
	}

	for idx, s := range specs {
		f := newFixture(t)
		src := f.touch(t, "Tiles/Floor01.scene")
		runner := &fakeRunner{failStage: s.failStage, failErr: s.failErr}

		res, err := New(f.cfg, runner, nil).Run(context.Background(), src, stage.CategoryTiles)
		if !errors.Is(err, s.expIs) {
			t.Fatalf("[spec %d] expected error to match %v; got %v", idx, s.expIs, err)
		}
		var procErr *ToolProcessError
		if !errors.As(err, &procErr) || procErr.ExitCode != s.expExitCode || procErr.Stage != s.failStage {
			t.Fatalf("[spec %d] expected ToolProcessError for %s with exit code %d; got %v", idx, s.failStage, s.expExitCode, err)
		}
		if res.State != Failed || res.Err != err {
			t.Fatalf("[spec %d] expected failed result; got %s", idx, res.State)
		}
		if !reflect.DeepEqual(runner.stages(), s.expStages) {
			t.Fatalf("[spec %d] expected stages %v; got %v", idx, s.expStages, runner.stages())
		}
		f.assertNoWorkDirs(t)
	}
}

func TestRunRemovesIntermediateOnExportFailure(t *testing.T) {
	f := newFixture(t)
	src := f.touch(t, "Tiles/Floor01.scene")
	runner := &fakeRunner{failStage: Exporting, failErr: &ExitError{Code: 1}}

	_, err := New(f.cfg, runner, nil).Run(context.Background(), src, stage.CategoryTiles)
	if !errors.Is(err, ErrExportFailed) {
		t.Fatalf("expected ErrExportFailed; got %v", err)
	}

	norm := runner.invocations[0]
	intermediate := norm.Args[len(norm.Args)-1]
	if _, statErr := os.Stat(intermediate); !os.IsNotExist(statErr) {
		t.Fatalf("expected intermediate %q to be removed; got %v", intermediate, statErr)
	}
}

func TestRunMissingIntermediate(t *testing.T) {
	f := newFixture(t)
	src := f.touch(t, "Tiles/Floor01.scene")
	runner := &fakeRunner{skipOutput: true}

	_, err := New(f.cfg, runner, nil).Run(context.Background(), src, stage.CategoryTiles)
	if !errors.Is(err, ErrNormalizationFailed) || !errors.Is(err, ErrMissingIntermediate) {
		t.Fatalf("expected ErrMissingIntermediate normalization failure; got %v", err)
	}
	if exp := []State{Normalizing}; !reflect.DeepEqual(runner.stages(), exp) {
		t.Fatalf("expected stages %v; got %v", exp, runner.stages())
	}
}

func TestRunValidation(t *testing.T) {
	f := newFixture(t)
	outside := filepath.Join(f.root, "elsewhere.scene")
	if err := os.WriteFile(outside, []byte("scene"), 0644); err != nil {
		t.Fatal(err)
	}

	type spec struct {
		src   string
		expIs error
	}
	specs := []spec{
		{filepath.Join(f.srcRoot, "missing.scene"), asset.ErrSourceMissing},
		{f.srcRoot, asset.ErrSourceNotFile},
		{outside, asset.ErrPathNotUnderRoot},
	}

	for idx, s := range specs {
		runner := &fakeRunner{}
		res, err := New(f.cfg, runner, nil).Run(context.Background(), s.src, stage.CategoryTiles)
		if !errors.Is(err, s.expIs) {
			t.Fatalf("[spec %d] expected %v; got %v", idx, s.expIs, err)
		}
		var valErr *asset.PathValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("[spec %d] expected PathValidationError; got %T", idx, err)
		}
		if len(runner.invocations) != 0 || res.State != Failed {
			t.Fatalf("[spec %d] expected no tool invocations", idx)
		}
	}
	f.assertNoWorkDirs(t)
}

func TestRunWarnsOnForeignExtension(t *testing.T) {
	f := newFixture(t)
	src := f.touch(t, "Tiles/Floor01.blend")

	res, err := New(f.cfg, &fakeRunner{}, nil).Run(context.Background(), src, stage.CategoryTiles)
	if err != nil {
		t.Fatalf("expected extension mismatch not to fail the run; got %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning; got %v", res.Warnings)
	}
	if exp := filepath.Join(f.dstRoot, "Tiles", "Floor01.fbx"); res.Destination != exp {
		t.Fatalf("expected destination %q; got %q", exp, res.Destination)
	}
}

func TestRunAmbiguousSkeleton(t *testing.T) {
	f := newFixture(t)
	sc := scene.NewScene("hero")
	for _, name := range []string{"Armature", "Armature.001"} {
		sc.AddObject(&scene.Object{Name: name, Kind: scene.KindSkeleton, Transform: scene.IdentityTransform()}, nil)
		sc.AddObject(&scene.Object{
			Name:      name + "_Body",
			Kind:      scene.KindMesh,
			Parent:    name,
			Transform: scene.IdentityTransform(),
			Mesh:      &scene.Mesh{Vertices: []types.Vec3{types.XYZ(0, 0, 1)}},
		}, nil)
	}
	src := f.writeScene(t, "Characters/Hero.scene", sc)

	_, err := New(f.cfg, inProcessRunner{}, nil).Run(context.Background(), src, stage.CategoryCharacter)
	if !errors.Is(err, stage.ErrAmbiguousSkeleton) {
		t.Fatalf("expected ErrAmbiguousSkeleton; got %v", err)
	}
	if !errors.Is(err, ErrExportFailed) {
		t.Fatalf("expected the export stage to report the failure; got %v", err)
	}
	// Selection runs inside the export process and aborts before the exporter writes.
	if _, statErr := os.Stat(filepath.Join(f.dstRoot, "Characters", "Hero.fbx")); !os.IsNotExist(statErr) {
		t.Fatalf("expected no destination file; got %v", statErr)
	}
	f.assertNoWorkDirs(t)
}

func TestRunTilesEndToEnd(t *testing.T) {
	f := newFixture(t)
	sc := scene.NewScene("floor")
	tiles := sc.AddContainer(stage.TilesContainer, nil)
	tiles.Hidden = true
	for _, name := range []string{"T1", "T2", "T3", "T4", "T5"} {
		sc.AddObject(&scene.Object{
			Name:      name,
			Kind:      scene.KindMesh,
			Transform: scene.IdentityTransform(),
			Modifiers: []scene.Modifier{{Name: "lift", Kind: scene.ModifierDisplace, Offset: types.XYZ(0, 0, 1)}},
			Mesh:      &scene.Mesh{Vertices: []types.Vec3{types.XYZ(0, 1, 0)}},
		}, tiles)
	}
	sc.AddObject(&scene.Object{Name: "Camera", Kind: scene.KindEmpty, Transform: scene.IdentityTransform(), Selected: true}, nil)
	src := f.writeScene(t, "Tiles/Floor01.scene", sc)

	res, err := New(f.cfg, inProcessRunner{}, nil).Run(context.Background(), src, stage.CategoryTiles)
	if err != nil {
		t.Fatal(err)
	}

	doc, err := interchange.Read(res.Destination)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Nodes) != 5 || doc.Node("Camera") != nil {
		t.Fatalf("expected 5 tile nodes; got %d", len(doc.Nodes))
	}
	// (0,1,0) displaced to (0,1,1), then converted to Y up / -Z forward
	if exp := types.XYZ(0, 1, -1); !doc.Node("T1").Vertices[0].ApproxEqual(exp) {
		t.Fatalf("expected vertex %v; got %v", exp, doc.Node("T1").Vertices[0])
	}

	// The source scene is never modified.
	orig, err := tool.Open(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(orig.Scene().Object("T1").Modifiers) != 1 {
		t.Fatal("expected source scene to keep its modifiers")
	}
	f.assertNoWorkDirs(t)
}

func TestRunBatch(t *testing.T) {
	f := newFixture(t)
	jobs := []Job{
		{f.touch(t, "Tiles/A.scene"), stage.CategoryTiles},
		{filepath.Join(f.srcRoot, "Tiles/missing.scene"), stage.CategoryTiles},
		{f.touch(t, "Props/B.scene"), stage.CategoryProp},
		{f.touch(t, "Characters/C.scene"), stage.CategoryCharacter},
	}

	results := New(f.cfg, &fakeRunner{}, nil).RunBatch(context.Background(), jobs, 3)
	if len(results) != len(jobs) {
		t.Fatalf("expected %d results; got %d", len(jobs), len(results))
	}
	for idx, res := range results {
		expState := Done
		if idx == 1 {
			expState = Failed
		}
		if res.State != expState {
			t.Fatalf("[job %d] expected state %s; got %s (%v)", idx, expState, res.State, res.Err)
		}
		if res.Category != jobs[idx].Category {
			t.Fatalf("[job %d] expected results in job order", idx)
		}
	}
	f.assertNoWorkDirs(t)
}

func TestToolInvocation(t *testing.T) {
	tc := ToolConfig{Binary: "blender", ScriptFlag: "--python"}
	inv := tc.Invocation(Exporting, "in.blend", "export_character.py", "out.fbx")

	exp := []string{"--background", "in.blend", "--python", "export_character.py", "--", "out.fbx"}
	if inv.Binary != "blender" || !reflect.DeepEqual(inv.Args, exp) {
		t.Fatalf("expected %v; got %s %v", exp, inv.Binary, inv.Args)
	}
}

func TestTailBuffer(t *testing.T) {
	buf := &tailBuffer{max: 8}
	buf.Write([]byte("0123456789"))
	buf.Write([]byte("ab"))
	if exp := "456789ab"; buf.String() != exp {
		t.Fatalf("expected tail %q; got %q", exp, buf.String())
	}
}

func TestExecRunner(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	var stderr strings.Builder
	runner := &ExecRunner{Stderr: &stderr}
	err = runner.Run(context.Background(), Invocation{Binary: sh, Args: []string{"-c", "echo 'error[no_skeleton_found]: none' >&2; exit 3"}})

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 3 {
		t.Fatalf("expected exit status 3; got %v", err)
	}
	if !errors.Is(stage.ParseDiagnostic(exitErr.Stderr), stage.ErrNoSkeletonFound) {
		t.Fatalf("expected diagnostic in captured stderr; got %q", exitErr.Stderr)
	}
	if !strings.Contains(stderr.String(), "no_skeleton_found") {
		t.Fatal("expected stderr to be forwarded")
	}

	if err = runner.Run(context.Background(), Invocation{Binary: sh, Args: []string{"-c", "exit 0"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExecRunnerCancellation(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = (&ExecRunner{}).Run(ctx, Invocation{Binary: sh, Args: []string{"-c", "sleep 5"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled; got %v", err)
	}
}
