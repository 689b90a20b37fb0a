package dataset

import "sort"

// cellFaces lists the corner-index pattern of each boundary face for the
// supported 3D cell types. Quads are emitted as two triangles.
var cellFaces = map[CellType][][]int{
	CellTetra: {
		{0, 1, 2}, {0, 1, 3}, {1, 2, 3}, {0, 2, 3},
	},
	CellHexahedron: {
		{0, 1, 2, 3}, {4, 5, 6, 7},
		{0, 1, 5, 4}, {1, 2, 6, 5},
		{2, 3, 7, 6}, {3, 0, 4, 7},
	},
	CellVoxel: {
		{0, 1, 3, 2}, {4, 5, 7, 6},
		{0, 1, 5, 4}, {1, 3, 7, 5},
		{3, 2, 6, 7}, {2, 0, 4, 6},
	},
	CellWedge: {
		{0, 1, 2}, {3, 4, 5},
		{0, 1, 4, 3}, {1, 2, 5, 4}, {2, 0, 3, 5},
	},
	CellPyramid: {
		{0, 1, 2, 3},
		{0, 1, 4}, {1, 2, 4}, {2, 3, 4}, {3, 0, 4},
	},
}

// faceKey canonicalizes a face's point ids so that the same face reached
// from two adjacent cells compares equal.
type faceKey [4]int32

func makeFaceKey(pts []int32) faceKey {
	var k faceKey
	sorted := append([]int32(nil), pts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	copy(k[:], sorted)
	if len(sorted) == 3 {
		k[3] = -1
	}
	return k
}

// ExtractSurface computes the boundary surface of an unstructured grid:
// faces referenced by exactly one 3D cell, triangulated. Triangle and quad
// cells pass through directly so surface meshes render unchanged. The
// returned dataset shares the input's points and point data.
func ExtractSurface(ds *Dataset) *Dataset {
	type faceUse struct {
		pts   []int32
		count int
	}
	faces := make(map[faceKey]*faceUse)
	out := &Dataset{Points: ds.Points, PointData: ds.PointData}

	for _, cell := range ds.Cells {
		patterns, ok := cellFaces[cell.Type]
		if !ok {
			// 2D and lower-dimensional cells are already surface.
			switch cell.Type {
			case CellTriangle:
				out.Cells = append(out.Cells, cell)
			case CellQuad:
				out.Cells = append(out.Cells,
					Cell{Type: CellTriangle, Points: []int32{cell.Points[0], cell.Points[1], cell.Points[2]}},
					Cell{Type: CellTriangle, Points: []int32{cell.Points[0], cell.Points[2], cell.Points[3]}},
				)
			case CellLine, CellVertex:
				out.Cells = append(out.Cells, cell)
			}
			continue
		}
		for _, pattern := range patterns {
			if len(cell.Points) < len(pattern) {
				continue
			}
			pts := make([]int32, len(pattern))
			for i, corner := range pattern {
				pts[i] = cell.Points[corner]
			}
			key := makeFaceKey(pts)
			if use, ok := faces[key]; ok {
				use.count++
			} else {
				faces[key] = &faceUse{pts: pts, count: 1}
			}
		}
	}

	for _, use := range faces {
		if use.count != 1 {
			continue
		}
		if len(use.pts) == 3 {
			out.Cells = append(out.Cells, Cell{Type: CellTriangle, Points: use.pts})
		} else {
			out.Cells = append(out.Cells,
				Cell{Type: CellTriangle, Points: []int32{use.pts[0], use.pts[1], use.pts[2]}},
				Cell{Type: CellTriangle, Points: []int32{use.pts[0], use.pts[2], use.pts[3]}},
			)
		}
	}
	return out
}
