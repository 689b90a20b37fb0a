package dataset

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// WriteLegacy writes a dataset as an ascii legacy VTK unstructured grid.
// Used by the mesh generators to persist companion meshes and by tests to
// produce fixtures.
func WriteLegacy(w io.Writer, ds *Dataset, title string) error {
	bw := bufio.NewWriter(w)
	if title == "" {
		title = "khorium mesh"
	}
	fmt.Fprintf(bw, "# vtk DataFile Version 3.0\n%s\nASCII\nDATASET UNSTRUCTURED_GRID\n", title)

	fmt.Fprintf(bw, "POINTS %d double\n", ds.NumPoints())
	for i := 0; i < ds.NumPoints(); i++ {
		x, y, z := ds.Point(i)
		fmt.Fprintf(bw, "%g %g %g\n", x, y, z)
	}

	size := 0
	for _, c := range ds.Cells {
		size += 1 + len(c.Points)
	}
	fmt.Fprintf(bw, "CELLS %d %d\n", len(ds.Cells), size)
	for _, c := range ds.Cells {
		fmt.Fprintf(bw, "%d", len(c.Points))
		for _, p := range c.Points {
			fmt.Fprintf(bw, " %d", p)
		}
		fmt.Fprintln(bw)
	}
	fmt.Fprintf(bw, "CELL_TYPES %d\n", len(ds.Cells))
	for _, c := range ds.Cells {
		fmt.Fprintf(bw, "%d\n", c.Type)
	}

	writeAttributes := func(keyword string, tuples int, arrays []*DataArray) {
		if len(arrays) == 0 {
			return
		}
		fmt.Fprintf(bw, "%s %d\n", keyword, tuples)
		for _, arr := range arrays {
			if arr == nil {
				continue
			}
			if arr.Components == 1 {
				fmt.Fprintf(bw, "SCALARS %s double 1\nLOOKUP_TABLE default\n", arr.Name)
			} else {
				fmt.Fprintf(bw, "FIELD data 1\n%s %d %d double\n", arr.Name, arr.Components, arr.NumTuples())
			}
			for i, v := range arr.Values {
				if i > 0 && i%9 == 0 {
					fmt.Fprintln(bw)
				} else if i > 0 {
					fmt.Fprint(bw, " ")
				}
				fmt.Fprintf(bw, "%g", v)
			}
			fmt.Fprintln(bw)
		}
	}
	writeAttributes("POINT_DATA", ds.NumPoints(), ds.PointData)
	writeAttributes("CELL_DATA", ds.NumCells(), ds.CellData)

	return bw.Flush()
}

// WriteLegacyFile writes a dataset to path in legacy VTK format.
func WriteLegacyFile(path string, ds *Dataset, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteLegacy(f, ds, title)
}

// WriteBinarySTL writes the dataset's triangle cells as a binary STL
// surface. Non-triangle cells are skipped.
func WriteBinarySTL(w io.Writer, ds *Dataset) error {
	var tris []Cell
	for _, c := range ds.Cells {
		if c.Type == CellTriangle && len(c.Points) == 3 {
			tris = append(tris, c)
		}
	}
	if len(tris) == 0 {
		return fmt.Errorf("dataset has no triangle cells to write")
	}

	var header [80]byte
	copy(header[:], "khorium binary stl")
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(tris))); err != nil {
		return err
	}

	record := make([]float32, 12)
	for _, c := range tris {
		ax, ay, az := ds.Point(int(c.Points[0]))
		bx, by, bz := ds.Point(int(c.Points[1]))
		cx, cy, cz := ds.Point(int(c.Points[2]))
		nx, ny, nz := triangleNormal(ax, ay, az, bx, by, bz, cx, cy, cz)
		record[0], record[1], record[2] = float32(nx), float32(ny), float32(nz)
		record[3], record[4], record[5] = float32(ax), float32(ay), float32(az)
		record[6], record[7], record[8] = float32(bx), float32(by), float32(bz)
		record[9], record[10], record[11] = float32(cx), float32(cy), float32(cz)
		if err := binary.Write(w, binary.LittleEndian, record); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint16(0)); err != nil {
			return err
		}
	}
	return nil
}

// WriteBinarySTLFile writes the dataset to path as binary STL.
func WriteBinarySTLFile(path string, ds *Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	if err := WriteBinarySTL(bw, ds); err != nil {
		return err
	}
	return bw.Flush()
}

func triangleNormal(ax, ay, az, bx, by, bz, cx, cy, cz float64) (nx, ny, nz float64) {
	ux, uy, uz := bx-ax, by-ay, bz-az
	vx, vy, vz := cx-ax, cy-ay, cz-az
	nx = uy*vz - uz*vy
	ny = uz*vx - ux*vz
	nz = ux*vy - uy*vx
	l := nx*nx + ny*ny + nz*nz
	if l > 0 {
		inv := 1.0 / math.Sqrt(l)
		nx, ny, nz = nx*inv, ny*inv, nz*inv
	}
	return nx, ny, nz
}
