package libtess

import (
	"encoding/binary"
	"sort"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/mesh-structures/tessel.SDK/gotess"
)

// OutPoint is one output point of a tessellation pass: a dataset corner or a
// minted midpoint, with its interpolated attribute tuple.
type OutPoint struct {
	ID     gotess.PtID
	Coord  gotess.Coord
	Scalar []float64
}

// Tessellation is the flat output of one pass: every referenced point (in
// first-reference order) and the linear primitives that replace the input
// cells.
type Tessellation struct {
	Points    []OutPoint
	Lines     [][2]gotess.PtID
	Triangles [][3]gotess.PtID
	Tetras    [][4]gotess.PtID
}

// NumPrimitives returns the total primitive count.
func (out *Tessellation) NumPrimitives() int {
	return len(out.Lines) + len(out.Triangles) + len(out.Tetras)
}

// Tessellator drives one tessellation pass over one dataset.
//
// It owns an edge table and a point table scoped to the pass, visits cells in
// dataset order, and implements the driver obligations of the table contract:
// CheckEdge before recomputing any midpoint, and exactly one RemoveEdge per
// cell visit per edge so entries are evicted once the last sharing cell has
// been processed.  Curved cells are subdivided once per edge: a line becomes
// 2 lines, a triangle 4 triangles, a tetrahedron 8 tetrahedra.
type Tessellator struct {
	ds      *Dataset
	edges   *EdgeTable
	points  *PointTable
	emitted PrimSet
	out     *Tessellation
	seenPts map[gotess.PtID]bool
}

// NewTessellator returns a pass over the given dataset.
func NewTessellator(ds *Dataset) (*Tessellator, error) {
	if ds == nil {
		return nil, gotess.ErrNilDataset
	}
	tess := &Tessellator{
		ds:      ds,
		edges:   NewEdgeTable(),
		points:  NewPointTable(),
		seenPts: make(map[gotess.PtID]bool),
	}
	start := ds.MaxPointID()
	if start < 0 {
		start = 0
	}
	tess.edges.Initialize(start)
	if n := ds.NumberOfComponents(); n > 0 {
		tess.points.SetNumberOfComponents(n)
	}
	return tess, nil
}

// TessellateDataset runs one complete pass over the dataset.
func TessellateDataset(ds *Dataset) (*Tessellation, error) {
	tess, err := NewTessellator(ds)
	if err != nil {
		return nil, err
	}
	return tess.Run()
}

// EdgeTable exposes the pass's edge table for diagnostics.
func (tess *Tessellator) EdgeTable() *EdgeTable {
	return tess.edges
}

// PointTable exposes the pass's point table for diagnostics.
func (tess *Tessellator) PointTable() *PointTable {
	return tess.points
}

// Run visits every cell once and returns the assembled output.  The tables
// are expected to be fully drained when the pass completes; a nonzero residue
// means a cell's bookkeeping was inconsistent and is logged.
func (tess *Tessellator) Run() (*Tessellation, error) {
	tess.out = &Tessellation{}
	tess.emitted = NewPrimSet()
	defer tess.emitted.Close()

	for _, cell := range tess.ds.Cells() {
		if err := tess.tessellateCell(cell); err != nil {
			return nil, errors.Wrapf(err, "tessellating cell %d", cell.ID())
		}
	}

	if tess.edges.Len() > 0 || tess.points.Len() > 0 {
		klog.Warningf("pass left %d edge and %d point entries undrained",
			tess.edges.Len(), tess.points.Len())
	}
	return tess.out, nil
}

func (tess *Tessellator) tessellateCell(cell gotess.Cell) error {
	var midIDs [gotess.MaxCellEdges]gotess.PtID
	subdivide := !cell.GeometryLinear() || !cell.AttributesLinear()
	nEdges := cell.EdgeCount()

	for ei := 0; ei < nEdges; ei++ {
		e1, e2 := cell.EdgePointIDs(ei)
		midIDs[ei] = gotess.NilPtID
		if !subdivide {
			tess.edges.InsertEdge(e1, e2, cell.ID(), cell.EdgeUseCount(ei))
			continue
		}

		if ptID, wasSplit := tess.edges.CheckEdge(e1, e2); wasSplit {
			// A previously visited neighbor minted this midpoint: reuse the
			// id and its stored attributes verbatim.
			if !tess.points.CheckPoint(ptID) {
				return errors.Wrapf(gotess.ErrPointNotFound, "midpoint %d of edge (%d,%d)", ptID, e1, e2)
			}
			if err := tess.points.IncrementPointReferenceCount(ptID); err != nil {
				return err
			}
			midIDs[ei] = ptID
			continue
		}

		ptID := tess.edges.InsertEdgeToSplit(e1, e2, cell.ID(), cell.EdgeUseCount(ei))
		coord, scalar := cell.EdgeMidpoint(ei)
		if tess.points.NumberOfComponents() > 0 {
			tess.points.InsertPointAndScalar(ptID, coord, scalar)
		} else {
			tess.points.InsertPoint(ptID, coord)
		}
		midIDs[ei] = ptID
	}

	if err := tess.emitCell(cell, midIDs[:nEdges], subdivide); err != nil {
		return err
	}

	// This cell's visit is over: release every edge, and evict the midpoint
	// of any edge whose last sharing cell this was.
	for ei := 0; ei < nEdges; ei++ {
		e1, e2 := cell.EdgePointIDs(ei)
		ptID, wasSplit := tess.edges.CheckEdge(e1, e2)
		remaining, err := tess.edges.RemoveEdge(e1, e2)
		if err != nil {
			return err
		}
		if remaining == 0 && wasSplit {
			if err := tess.points.RemovePoint(ptID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (tess *Tessellator) emitCell(cell gotess.Cell, midIDs []gotess.PtID, subdivide bool) error {
	c := cell.CornerIDs()
	switch cell.CornerCount() {
	case 2:
		if !subdivide {
			return tess.emitLine(c[0], c[1])
		}
		m := midIDs[0]
		if err := tess.emitLine(c[0], m); err != nil {
			return err
		}
		return tess.emitLine(m, c[1])

	case 3:
		if !subdivide {
			return tess.emitTriangle(c[0], c[1], c[2])
		}
		m01, m12, m20 := midIDs[0], midIDs[1], midIDs[2]
		for _, tri := range [4][3]gotess.PtID{
			{c[0], m01, m20},
			{m01, c[1], m12},
			{m20, m12, c[2]},
			{m01, m12, m20},
		} {
			if err := tess.emitTriangle(tri[0], tri[1], tri[2]); err != nil {
				return err
			}
		}
		return nil

	case 4:
		if !subdivide {
			return tess.emitTetra(c[0], c[1], c[2], c[3])
		}
		m01, m12, m20 := midIDs[0], midIDs[1], midIDs[2]
		m03, m13, m23 := midIDs[3], midIDs[4], midIDs[5]
		for _, tet := range [8][4]gotess.PtID{
			// the four corner tetrahedra
			{c[0], m01, m20, m03},
			{c[1], m12, m01, m13},
			{c[2], m20, m12, m23},
			{c[3], m03, m13, m23},
			// the interior octahedron, split along the m01-m23 diagonal
			{m01, m23, m12, m13},
			{m01, m23, m13, m03},
			{m01, m23, m03, m20},
			{m01, m23, m20, m12},
		} {
			if err := tess.emitTetra(tet[0], tet[1], tet[2], tet[3]); err != nil {
				return err
			}
		}
		return nil
	}
	return errors.Wrapf(gotess.ErrBadCellCorners, "cell %d", cell.ID())
}

func (tess *Tessellator) emitLine(a, b gotess.PtID) error {
	if !tess.emitted.TryAdd(primKey('L', a, b)) {
		return nil
	}
	if err := tess.notePoints(a, b); err != nil {
		return err
	}
	tess.out.Lines = append(tess.out.Lines, [2]gotess.PtID{a, b})
	return nil
}

func (tess *Tessellator) emitTriangle(a, b, c gotess.PtID) error {
	if !tess.emitted.TryAdd(primKey('T', a, b, c)) {
		return nil
	}
	if err := tess.notePoints(a, b, c); err != nil {
		return err
	}
	tess.out.Triangles = append(tess.out.Triangles, [3]gotess.PtID{a, b, c})
	return nil
}

func (tess *Tessellator) emitTetra(a, b, c, d gotess.PtID) error {
	if !tess.emitted.TryAdd(primKey('Q', a, b, c, d)) {
		return nil
	}
	if err := tess.notePoints(a, b, c, d); err != nil {
		return err
	}
	tess.out.Tetras = append(tess.out.Tetras, [4]gotess.PtID{a, b, c, d})
	return nil
}

// primKey forms a canonical dedup encoding for a primitive: a kind byte plus
// the sorted corner ids, so corner order does not matter.
func primKey(kind byte, ids ...gotess.PtID) []byte {
	sorted := make([]gotess.PtID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	key := make([]byte, 1, 1+len(sorted)*binary.MaxVarintLen64)
	key[0] = kind
	var scrap [binary.MaxVarintLen64]byte
	for _, id := range sorted {
		n := binary.PutVarint(scrap[:], int64(id))
		key = append(key, scrap[:n]...)
	}
	return key
}

// notePoints records each output point the first time a primitive refers to
// it: dataset corners come from the dataset, minted midpoints from the point
// table (still live, since this cell has not yet released its edges).
func (tess *Tessellator) notePoints(ids ...gotess.PtID) error {
	for _, id := range ids {
		if tess.seenPts[id] {
			continue
		}
		coord, scalar, isDataPt := tess.ds.Point(id)
		if !isDataPt {
			scalar = make([]float64, tess.points.NumberOfComponents())
			if !tess.points.CheckPointData(id, &coord, scalar) {
				return errors.Wrapf(gotess.ErrPointNotFound, "output point %d", id)
			}
		}
		tess.seenPts[id] = true
		tess.out.Points = append(tess.out.Points, OutPoint{
			ID:     id,
			Coord:  coord,
			Scalar: scalar,
		})
	}
	return nil
}
