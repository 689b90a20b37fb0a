package pipeline

import (
	"github.com/khorium/khorium/pkg/dataset"
	"github.com/khorium/khorium/pkg/render"
)

// ActorGeometry is the serializable form of one actor, triangulated and
// flattened for direct consumption by the frontend renderer.
type ActorGeometry struct {
	Name           string     `json:"name"`
	Representation string     `json:"representation"`
	Positions      []float32  `json:"positions"`
	Indices        []uint32   `json:"indices"`
	Colors         []float32  `json:"colors,omitempty"`
	SolidColor     [3]float64 `json:"solidColor"`
	Opacity        float64    `json:"opacity"`
	LineWidth      float64    `json:"lineWidth"`
	PointSize      float64    `json:"pointSize"`
	EdgeVisibility bool       `json:"edgeVisibility"`
}

// CameraState is the serializable camera pose.
type CameraState struct {
	Position   [3]float64 `json:"position"`
	FocalPoint [3]float64 `json:"focalPoint"`
	ViewUp     [3]float64 `json:"viewUp"`
	ViewAngle  float64    `json:"viewAngle"`
}

// SceneSnapshot is everything the frontend needs to redraw the view.
type SceneSnapshot struct {
	Actors     []ActorGeometry `json:"actors"`
	Camera     CameraState     `json:"camera"`
	Background [3]float64      `json:"background"`
	AxesBounds []float64       `json:"axesBounds,omitempty"`
}

// Snapshot serializes the visible scene. Volumetric datasets are reduced
// to their boundary surface so the frontend only ever draws triangles
// and lines.
func (p *Pipeline) Snapshot() SceneSnapshot {
	snap := SceneSnapshot{Background: p.renderer.Background}

	for _, actor := range p.renderer.VisibleActors() {
		geom, ok := actorGeometry(actor)
		if !ok {
			continue
		}
		snap.Actors = append(snap.Actors, geom)
	}

	cam := p.renderer.ActiveCamera()
	snap.Camera = CameraState{
		Position:   cam.Position,
		FocalPoint: cam.FocalPoint,
		ViewUp:     cam.ViewUp,
		ViewAngle:  cam.ViewAngle,
	}

	if p.cubeAxes.Visibility() {
		b := p.cubeAxes.Bounds()
		snap.AxesBounds = b[:]
	}
	return snap
}

func actorGeometry(a *render.Actor) (ActorGeometry, bool) {
	ds := a.Mapper.Dataset()
	if ds == nil || ds.NumPoints() == 0 {
		return ActorGeometry{}, false
	}
	surf := dataset.ExtractSurface(ds)

	positions := make([]float32, len(surf.Points))
	for i, v := range surf.Points {
		positions[i] = float32(v)
	}

	var indices []uint32
	for _, cell := range surf.Cells {
		switch cell.Type {
		case dataset.CellTriangle:
			for _, pt := range cell.Points {
				indices = append(indices, uint32(pt))
			}
		case dataset.CellQuad:
			q := cell.Points
			indices = append(indices,
				uint32(q[0]), uint32(q[1]), uint32(q[2]),
				uint32(q[0]), uint32(q[2]), uint32(q[3]))
		case dataset.CellLine:
			// Iso-lines from 2D inputs; the frontend draws degenerate
			// triangles for these.
			indices = append(indices,
				uint32(cell.Points[0]), uint32(cell.Points[1]), uint32(cell.Points[1]))
		}
	}

	// Colors come from the surface mapper view so the scalar array and
	// lookup table of the source actor apply to the extracted surface.
	surfMapper := render.NewMapper()
	surfMapper.SetInputConnection(staticPort{surf})
	surfMapper.ScalarVisibility = a.Mapper.ScalarVisibility
	surfMapper.UseLookupTableScalarRange = a.Mapper.UseLookupTableScalarRange
	surfMapper.SelectColorArray(a.Mapper.ColorArray())
	surfMapper.SetScalarMode(a.Mapper.ScalarModeValue())
	*surfMapper.GetLookupTable() = *a.Mapper.GetLookupTable()

	return ActorGeometry{
		Name:           a.Name,
		Representation: a.Property.Representation.String(),
		Positions:      positions,
		Indices:        indices,
		Colors:         surfMapper.PointColors(),
		SolidColor:     a.Property.Color,
		Opacity:        a.Property.Opacity,
		LineWidth:      a.Property.LineWidth,
		PointSize:      a.Property.PointSize,
		EdgeVisibility: a.Property.EdgeVisibility,
	}, true
}

// staticPort adapts an already-computed dataset to the Port interface.
type staticPort struct{ ds *dataset.Dataset }

func (s staticPort) Output() *dataset.Dataset { return s.ds }
