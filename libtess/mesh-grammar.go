package libtess

import (
	"github.com/alecthomas/participle/v2"
	"github.com/pkg/errors"

	"github.com/mesh-structures/tessel.SDK/gotess"
)

// MeshExpr is a parsed mesh expression.
//
// A mesh expression lists cells by their corner point ids, joined by edge
// kind runes: '-' for a linear edge, '~' for a curved one.  A cell with any
// curved edge is tessellated with subdivision.  Corner count selects the cell
// type: "1-2" is a line, "1-2-3" a triangle, "1~2~3~4" a curved tetrahedron.
// ',' separates cells, ';' separates parts; point ids are global across
// parts, so parts can share edges.
type MeshExpr struct {
	Parts []*MeshPart `parser:"(@@ (';' @@)*)?"`
}

type MeshPart struct {
	Cells []*CellRun `parser:"(@@ (',' @@)*)?"`
}

type CellRun struct {
	StartPt int64       `parser:"@Int"`
	Links   []*CellLink `parser:"@@*"`
}

type CellLink struct {
	Kind  string `parser:"@('-' | '~')"`
	EndPt int64  `parser:"@Int"`
}

var parseMeshExpr = participle.MustBuild[MeshExpr]()

// Corners returns the run's corner point ids in cell order, plus whether any
// edge of the run was written as curved.
func (run *CellRun) Corners() ([]gotess.PtID, bool) {
	corners := make([]gotess.PtID, 0, gotess.MaxCellCorners)
	corners = append(corners, gotess.PtID(run.StartPt))
	curved := false
	for _, link := range run.Links {
		corners = append(corners, gotess.PtID(link.EndPt))
		if link.Kind == "~" {
			curved = true
		}
	}
	return corners, curved
}

// InitFromString populates the dataset from a mesh expression.  Referenced
// points not already in the dataset are created with synthetic coordinates
// and attributes, so expressions are self-contained fixtures.
func (ds *Dataset) InitFromString(meshExpr string) error {
	expr, err := parseMeshExpr.ParseString("", meshExpr)
	if err != nil {
		return err
	}

	cellCount := 0
	for pi, part := range expr.Parts {
		for _, run := range part.Cells {
			corners, curved := run.Corners()
			for _, id := range corners {
				if id < 0 {
					return errors.Wrapf(gotess.ErrBadPointID, "part #%d", pi+1)
				}
				if !ds.HasPoint(id) {
					if err := ds.AddPoint(id, syntheticCoord(id), syntheticScalar(id, ds.numComponents)); err != nil {
						return err
					}
				}
			}
			if _, err := ds.AddCell(corners, curved); err != nil {
				return errors.Wrapf(err, "part #%d", pi+1)
			}
			cellCount++
		}
	}
	if cellCount == 0 {
		return gotess.ErrEmptyMeshExpr
	}
	return nil
}

// syntheticCoord spreads auto-created points deterministically so no two
// point ids coincide.
func syntheticCoord(id gotess.PtID) gotess.Coord {
	return gotess.Coord{
		float64(id),
		float64(id % 5),
		float64(id % 3),
	}
}

// syntheticScalar derives a deterministic attribute tuple from the point id.
func syntheticScalar(id gotess.PtID, numComponents int) []float64 {
	scalar := make([]float64, numComponents)
	for c := range scalar {
		scalar[c] = float64(id) * float64(c+1)
	}
	return scalar
}
