// Package state holds the viewer's shared UI state: the knobs the
// frontend binds to and the derived values the pipeline publishes back.
// It is a typed store with change notification, replacing ad-hoc field
// passing between the UI layer and the pipeline.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/khorium/khorium/pkg/dataset"
)

// Mesh size factor limits accepted by the generators.
const (
	MinMeshSizeFactor = 0.01
	MaxMeshSizeFactor = 100.0
)

// ViewerState is one immutable snapshot of the store.
type ViewerState struct {
	// Upstream knobs set by the user.
	MeshRepresentation    string  `json:"meshRepresentation"`
	ContourRepresentation string  `json:"contourRepresentation"`
	MeshColorArray        int     `json:"meshColorArray"`
	ContourColorArray     int     `json:"contourColorArray"`
	MeshPreset            string  `json:"meshPreset"`
	ContourPreset         string  `json:"contourPreset"`
	MeshOpacity           float64 `json:"meshOpacity"`
	ContourOpacity        float64 `json:"contourOpacity"`
	ContourValue          float64 `json:"contourValue"`
	MeshVisible           bool    `json:"meshVisible"`
	CubeAxesVisible       bool    `json:"cubeAxesVisible"`
	MeshSizeFactor        float64 `json:"meshSizeFactor"`

	// Published by the pipeline after loads.
	Arrays        []dataset.ArrayInfo `json:"arrays"`
	ContourMin    float64             `json:"contourMin"`
	ContourMax    float64             `json:"contourMax"`
	HasMesh       bool                `json:"hasMesh"`
	CurrentFile   string              `json:"currentFile"`
	GeneratorBusy bool                `json:"generatorBusy"`

	// Published by the script engine.
	ScriptStatus   string        `json:"scriptStatus"`
	ScriptDuration time.Duration `json:"scriptDuration"`
}

// Script status values published while scripts run.
const (
	ScriptIdle      = "idle"
	ScriptRunning   = "running"
	ScriptCompleted = "completed"
	ScriptFailed    = "failed"
)

// Defaults returns the state of a freshly started viewer.
func Defaults() ViewerState {
	return ViewerState{
		MeshRepresentation:    "surface",
		ContourRepresentation: "surface",
		MeshPreset:            "rainbow",
		ContourPreset:         "rainbow",
		MeshOpacity:           1.0,
		ContourOpacity:        1.0,
		ContourValue:          0.5,
		MeshVisible:           true,
		CubeAxesVisible:       true,
		MeshSizeFactor:        1.0,
		ContourMin:            0.0,
		ContourMax:            1.0,
		ScriptStatus:          ScriptIdle,
	}
}

// Summary is a one-line human-readable digest, used in logs.
func (v ViewerState) Summary() string {
	return fmt.Sprintf("file=%q arrays=%d contour=%g [%g, %g] mesh=%v script=%s",
		v.CurrentFile, len(v.Arrays), v.ContourValue, v.ContourMin, v.ContourMax,
		v.MeshVisible, v.ScriptStatus)
}

// Store is a concurrency-safe holder of ViewerState with subscriptions.
type Store struct {
	mu    sync.RWMutex
	state ViewerState
	subs  []func(ViewerState)
}

// NewStore returns a store seeded with Defaults.
func NewStore() *Store {
	return &Store{state: Defaults()}
}

// Get returns the current snapshot.
func (s *Store) Get() ViewerState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Update applies fn to the state under the lock, then notifies
// subscribers with the new snapshot outside it.
func (s *Store) Update(fn func(*ViewerState)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state
	subs := s.subs
	s.mu.Unlock()

	for _, sub := range subs {
		sub(snapshot)
	}
}

// Reset puts the store back to Defaults and notifies subscribers.
func (s *Store) Reset() {
	s.Update(func(v *ViewerState) { *v = Defaults() })
}

// Subscribe registers a callback invoked after every Update. Callbacks
// run on the updating goroutine and must not call back into the store.
func (s *Store) Subscribe(fn func(ViewerState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// ValidateMeshSizeFactor rejects size factors outside the generator's
// accepted range.
func ValidateMeshSizeFactor(v float64) error {
	if v < MinMeshSizeFactor || v > MaxMeshSizeFactor {
		return fmt.Errorf("mesh size factor %g out of range [%g, %g]",
			v, MinMeshSizeFactor, MaxMeshSizeFactor)
	}
	return nil
}
