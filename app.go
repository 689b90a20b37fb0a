package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/khorium/khorium/pkg/config"
	"github.com/khorium/khorium/pkg/dataset"
	"github.com/khorium/khorium/pkg/meshgen"
	"github.com/khorium/khorium/pkg/pipeline"
	"github.com/khorium/khorium/pkg/primitive"
	"github.com/khorium/khorium/pkg/script"
	"github.com/khorium/khorium/pkg/state"
	"github.com/khorium/khorium/pkg/upload"
	"github.com/khorium/khorium/pkg/watch"
)

// Frontend event names emitted through the Wails runtime.
const (
	EventViewUpdate  = "view:update"
	EventResetCamera = "view:resetCamera"
	EventStateChange = "state:change"
)

// SampleFile is the demo geometry written into the data directory on
// first start.
const SampleFile = "sample_flange.stl"

// App is the Wails backend. It exposes the viewer operations to the
// frontend via bindings and serializes all pipeline access through one
// mutex.
type App struct {
	ctx context.Context
	mu  sync.Mutex

	cfg      config.Config
	pipeline *pipeline.Pipeline
	store    *state.Store
	engine   *script.Engine
	gen      meshgen.Generator
	watcher  *watch.Watcher

	currentFile string
}

// Status is the JSON-serializable outcome of a viewer operation.
type Status struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func okStatus() Status           { return Status{Ok: true} }
func errStatus(err error) Status { return Status{Error: err.Error()} }

// LoadResult is returned by load-type bindings: the operation status
// plus the dataset facts the frontend rebuilds its controls from.
type LoadResult struct {
	Status
	Arrays       []dataset.ArrayInfo `json:"arrays"`
	ContourMin   float64             `json:"contourMin"`
	ContourMax   float64             `json:"contourMax"`
	ContourValue float64             `json:"contourValue"`
}

// ScriptErrorData is a JSON-serializable script error for the frontend.
type ScriptErrorData struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ScriptResult is the full result of a script run.
type ScriptResult struct {
	Ok     bool              `json:"ok"`
	Errors []ScriptErrorData `json:"errors"`
}

// NewApp creates the App: configuration, pipeline, state store, mesh
// generator, and script engine.
func NewApp(cfg config.Config) *App {
	a := &App{
		cfg:      cfg,
		pipeline: pipeline.New(cfg.DataDir),
		store:    state.NewStore(),
	}
	a.engine = script.NewEngine(&scriptSession{app: a})

	if cfg.MeshAPIURL != "" {
		client := meshgen.NewClient(cfg.MeshAPIURL, cfg.DataDir)
		client.SetTimeout(cfg.MeshAPITimeout)
		a.gen = client
	} else if cfg.GmshPath != "" {
		local := meshgen.NewLocal(cfg.GmshPath, cfg.DataDir)
		local.SetTimeout(cfg.GmshTimeout)
		a.gen = local
	}

	a.store.Update(func(s *state.ViewerState) {
		s.HasMesh = a.pipeline.HasMesh()
	})
	return a
}

// startup is called by Wails on app startup. The context is saved so
// pipeline refresh signals can reach the frontend through runtime
// events.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	a.pipeline.SetViewCallbacks(
		func() { a.emit(EventViewUpdate) },
		func() { a.emit(EventResetCamera) },
	)
	a.store.Subscribe(func(s state.ViewerState) {
		if a.ctx != nil {
			runtime.EventsEmit(a.ctx, EventStateChange, s)
		}
	})

	if err := os.MkdirAll(a.cfg.DataDir, 0o755); err != nil {
		log.Printf("app: creating data dir: %v", err)
		return
	}
	a.loadSample()

	if a.cfg.HotReload {
		w, err := watch.New(a.cfg.DataDir, a.onFileChanged)
		if err != nil {
			log.Printf("app: hot reload disabled: %v", err)
		} else {
			a.watcher = w
		}
	}
	log.Printf("app: ready, %s", a.store.Get().Summary())
}

// shutdown is called by Wails on exit.
func (a *App) shutdown(ctx context.Context) {
	if a.watcher != nil {
		a.watcher.Close()
	}
}

func (a *App) emit(event string) {
	if a.ctx != nil {
		runtime.EventsEmit(a.ctx, event)
	}
}

// loadSample puts the built-in demo part on screen so a fresh install
// is not an empty canvas. The sample goes through the regular STL load
// path rather than a private channel into the renderer.
func (a *App) loadSample() {
	path := filepath.Join(a.cfg.DataDir, SampleFile)
	if _, err := os.Stat(path); err != nil {
		if err := primitive.WriteSampleSTL(path); err != nil {
			log.Printf("app: writing sample geometry: %v", err)
			return
		}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.loadFile(path, pipeline.HintSurface); err != nil {
		log.Printf("app: loading sample geometry: %v", err)
	}
}

// onFileChanged reloads the current dataset when the watcher sees it
// settle on disk. Other files changing in the data directory are
// ignored.
func (a *App) onFileChanged(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.currentFile == "" || path != a.currentFile {
		return
	}
	log.Printf("app: %s changed on disk, reloading", path)
	if err := a.loadFile(path, pipeline.HintOriginal); err != nil {
		log.Printf("app: hot reload: %v", err)
	}
}

// loadFile is the core load path; callers hold a.mu. Generated loads
// keep currentFile pointing at the geometry the mesh came from.
func (a *App) loadFile(path string, hint pipeline.Hint) error {
	err := a.pipeline.Load(path, hint)
	if err != nil {
		return err
	}
	if hint != pipeline.HintGenerated {
		a.currentFile = path
	}
	a.publishDatasetState()
	return nil
}

func (a *App) publishDatasetState() {
	min, max := a.pipeline.DefaultRange()
	a.store.Update(func(s *state.ViewerState) {
		s.Arrays = a.pipeline.DatasetArrays()
		s.ContourMin = min
		s.ContourMax = max
		s.ContourValue = a.pipeline.ContourValue()
		s.HasMesh = a.pipeline.HasMesh()
		s.CurrentFile = a.currentFile
	})
}

// LoadFile loads a dataset from an absolute path. An empty hint means
// "original"; "generated" and "surface" select the companion routes.
func (a *App) LoadFile(path, hint string) LoadResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	h := pipeline.HintOriginal
	if hint != "" {
		parsed, err := pipeline.ParseHint(hint)
		if err != nil {
			return LoadResult{Status: errStatus(err)}
		}
		h = parsed
	}
	if err := a.loadFile(path, h); err != nil {
		log.Printf("LoadFile: %v", err)
		return LoadResult{Status: errStatus(err)}
	}
	return a.loadResult()
}

func (a *App) loadResult() LoadResult {
	min, max := a.pipeline.DefaultRange()
	return LoadResult{
		Status:       okStatus(),
		Arrays:       a.pipeline.DatasetArrays(),
		ContourMin:   min,
		ContourMax:   max,
		ContourValue: a.pipeline.ContourValue(),
	}
}

// UploadFile validates and stages an uploaded file, then loads it.
func (a *App) UploadFile(filename string, content []byte) LoadResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	path, err := upload.Save(a.cfg.DataDir, filename, content)
	if err != nil {
		log.Printf("UploadFile: %v", err)
		return LoadResult{Status: errStatus(err)}
	}
	if err := a.loadFile(path, pipeline.HintOriginal); err != nil {
		log.Printf("UploadFile: %v", err)
		return LoadResult{Status: errStatus(err)}
	}
	return a.loadResult()
}

// GenerateMesh meshes the current surface geometry through the
// configured generator and loads the result as the generated companion
// mesh.
func (a *App) GenerateMesh(sizeFactor float64) Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.generateMesh(a.currentFile, sizeFactor)
}

// generateMesh runs the generator synchronously; callers hold a.mu.
func (a *App) generateMesh(geometryPath string, sizeFactor float64) Status {
	if a.gen == nil {
		return errStatus(fmt.Errorf("no mesh generator configured"))
	}
	if geometryPath == "" {
		return errStatus(fmt.Errorf("no geometry loaded"))
	}
	if err := state.ValidateMeshSizeFactor(sizeFactor); err != nil {
		return errStatus(err)
	}

	a.store.Update(func(s *state.ViewerState) { s.GeneratorBusy = true })
	defer a.store.Update(func(s *state.ViewerState) { s.GeneratorBusy = false })

	out, err := a.gen.Generate(context.Background(), meshgen.Request{
		GeometryPath:   geometryPath,
		MeshSizeFactor: sizeFactor,
	})
	if err != nil {
		log.Printf("GenerateMesh: %v", err)
		return errStatus(err)
	}
	if err := a.pipeline.Load(out, pipeline.HintGenerated); err != nil {
		log.Printf("GenerateMesh: loading result: %v", err)
		return errStatus(err)
	}
	a.store.Update(func(s *state.ViewerState) {
		s.HasMesh = a.pipeline.HasMesh()
		s.MeshVisible = true
	})
	a.pipeline.SetMeshVisibility(true)
	return okStatus()
}

// SetMeshVisible toggles the companion mesh according to the visibility
// precedence rules.
func (a *App) SetMeshVisible(show bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pipeline.SetMeshVisibility(show)
	a.store.Update(func(s *state.ViewerState) { s.MeshVisible = show })
}

// setRepresentation applies a drawing mode to a target; callers hold
// a.mu.
func (a *App) setRepresentation(target, mode string) error {
	r, err := pipeline.ParseRepresentation(mode)
	if err != nil {
		return err
	}
	switch target {
	case "mesh":
		a.pipeline.SetMeshRepresentation(r)
		a.store.Update(func(s *state.ViewerState) { s.MeshRepresentation = mode })
	case "contour":
		a.pipeline.SetContourRepresentation(r)
		a.store.Update(func(s *state.ViewerState) { s.ContourRepresentation = mode })
	case "all":
		a.pipeline.SetAllRepresentation(r)
	default:
		return fmt.Errorf("unknown representation target %q", target)
	}
	return nil
}

// SetRepresentation changes the drawing mode of "mesh", "contour", or
// "all" (the companion meshes).
func (a *App) SetRepresentation(target, mode string) Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.setRepresentation(target, mode); err != nil {
		return errStatus(err)
	}
	return okStatus()
}

func (a *App) colorBy(target string, index int) error {
	switch target {
	case "mesh":
		a.pipeline.ColorMeshByArray(index)
		a.store.Update(func(s *state.ViewerState) { s.MeshColorArray = index })
	case "contour":
		a.pipeline.ColorContourByArray(index)
		a.store.Update(func(s *state.ViewerState) { s.ContourColorArray = index })
	default:
		return fmt.Errorf("unknown color target %q", target)
	}
	return nil
}

// ColorBy colors the mesh or contour by the dataset array at index.
func (a *App) ColorBy(target string, index int) Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.colorBy(target, index); err != nil {
		return errStatus(err)
	}
	return okStatus()
}

func (a *App) applyPreset(target, preset string) error {
	p, err := pipeline.ParsePreset(preset)
	if err != nil {
		return err
	}
	switch target {
	case "mesh":
		a.pipeline.ApplyMeshPreset(p)
		a.store.Update(func(s *state.ViewerState) { s.MeshPreset = preset })
	case "contour":
		a.pipeline.ApplyContourPreset(p)
		a.store.Update(func(s *state.ViewerState) { s.ContourPreset = preset })
	default:
		return fmt.Errorf("unknown preset target %q", target)
	}
	return nil
}

// ApplyPreset switches the color ramp of the mesh or contour.
func (a *App) ApplyPreset(target, preset string) Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.applyPreset(target, preset); err != nil {
		return errStatus(err)
	}
	return okStatus()
}

// SetOpacity changes the primary mesh opacity.
func (a *App) SetOpacity(v float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pipeline.SetMeshOpacity(v)
	a.store.Update(func(s *state.ViewerState) { s.MeshOpacity = v })
}

// SetContourOpacity changes the contour surface opacity.
func (a *App) SetContourOpacity(v float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pipeline.SetContourOpacity(v)
	a.store.Update(func(s *state.ViewerState) { s.ContourOpacity = v })
}

// SetSolidColor paints the dataset actors with a named palette color
// and disables scalar coloring.
func (a *App) SetSolidColor(name string) Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.pipeline.SetSolidColor(name); err != nil {
		return errStatus(err)
	}
	return okStatus()
}

// SetContourValue moves the iso value and returns the clamped result.
func (a *App) SetContourValue(v float64) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pipeline.SetContourValue(v)
	applied := a.pipeline.ContourValue()
	a.store.Update(func(s *state.ViewerState) { s.ContourValue = applied })
	return applied
}

// SetCubeAxesVisible toggles the axis overlay.
func (a *App) SetCubeAxesVisible(visible bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pipeline.SetCubeAxesVisibility(visible)
	a.store.Update(func(s *state.ViewerState) { s.CubeAxesVisible = visible })
}

// ResetCamera reframes the camera on the visible geometry.
func (a *App) ResetCamera() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pipeline.CenterOnVisible()
}

// GetScene returns the serializable scene for the frontend renderer.
func (a *App) GetScene() pipeline.SceneSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pipeline.Snapshot()
}

// GetState returns the current viewer state snapshot.
func (a *App) GetState() state.ViewerState {
	return a.store.Get()
}

// RunScript executes a viewer script and returns its errors. Script
// status and duration are published through the state store.
func (a *App) RunScript(source string) ScriptResult {
	a.store.Update(func(s *state.ViewerState) {
		s.ScriptStatus = state.ScriptRunning
		s.ScriptDuration = 0
	})
	start := time.Now()

	errs, err := a.engine.Run(source)

	result := ScriptResult{Ok: err == nil && len(errs) == 0}
	if err != nil {
		log.Printf("RunScript fatal error: %v", err)
		result.Errors = append(result.Errors, ScriptErrorData{Message: err.Error()})
	}
	for _, e := range errs {
		result.Errors = append(result.Errors, ScriptErrorData{Line: e.Line, Message: e.Message})
	}

	status := state.ScriptCompleted
	if !result.Ok {
		status = state.ScriptFailed
	}
	elapsed := time.Since(start)
	a.store.Update(func(s *state.ViewerState) {
		s.ScriptStatus = status
		s.ScriptDuration = elapsed
	})
	return result
}

// scriptSession adapts App to the script.Session interface. Each method
// takes the app mutex itself, so scripts interleave safely with UI
// bindings.
type scriptSession struct {
	app *App
}

func (s *scriptSession) LoadFile(path string) error {
	s.app.mu.Lock()
	defer s.app.mu.Unlock()
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.app.cfg.DataDir, path)
	}
	return s.app.loadFile(path, pipeline.HintOriginal)
}

func (s *scriptSession) SetMeshVisible(show bool) {
	s.app.SetMeshVisible(show)
}

func (s *scriptSession) SetContourValue(v float64) {
	s.app.SetContourValue(v)
}

func (s *scriptSession) SetRepresentation(target, mode string) error {
	s.app.mu.Lock()
	defer s.app.mu.Unlock()
	return s.app.setRepresentation(target, mode)
}

func (s *scriptSession) ColorBy(target string, index int) error {
	s.app.mu.Lock()
	defer s.app.mu.Unlock()
	return s.app.colorBy(target, index)
}

func (s *scriptSession) ApplyPreset(target, preset string) error {
	s.app.mu.Lock()
	defer s.app.mu.Unlock()
	return s.app.applyPreset(target, preset)
}

func (s *scriptSession) SetOpacity(v float64) {
	s.app.SetOpacity(v)
}

func (s *scriptSession) SetSolidColor(name string) error {
	s.app.mu.Lock()
	defer s.app.mu.Unlock()
	return s.app.pipeline.SetSolidColor(name)
}

func (s *scriptSession) GenerateMesh(geometryPath string, sizeFactor float64) error {
	s.app.mu.Lock()
	defer s.app.mu.Unlock()
	if !filepath.IsAbs(geometryPath) {
		geometryPath = filepath.Join(s.app.cfg.DataDir, geometryPath)
	}
	if st := s.app.generateMesh(geometryPath, sizeFactor); !st.Ok {
		return fmt.Errorf("%s", st.Error)
	}
	return nil
}

func (s *scriptSession) ResetCamera() {
	s.app.ResetCamera()
}

var _ script.Session = (*scriptSession)(nil)
