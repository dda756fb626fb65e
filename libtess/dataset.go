package libtess

import (
	"github.com/pkg/errors"

	"github.com/mesh-structures/tessel.SDK/gotess"
)

// dataPoint is one dataset point: a coordinate plus its point-centered
// attribute tuple.
type dataPoint struct {
	coord  gotess.Coord
	scalar []float64
}

// Dataset is an in-memory mesh: points with point-centered attributes, and
// line/triangle/tetrahedron cells given by corner point ids.  It implements
// the adjacency queries a tessellation pass needs (how many cells share each
// edge) and hands out its cells behind the gotess.Cell contract.
type Dataset struct {
	points        map[gotess.PtID]*dataPoint
	cells         []*DataCell
	numComponents int
	maxPointID    gotess.PtID

	edgeUses map[EdgeKey]int // built lazily, reset on AddCell
}

// NewDataset returns an empty dataset whose points carry numComponents
// attribute components (0 for geometry-only datasets).
func NewDataset(numComponents int) *Dataset {
	if numComponents < 0 {
		panic("NewDataset() requires a non-negative component count")
	}
	return &Dataset{
		points:        make(map[gotess.PtID]*dataPoint),
		numComponents: numComponents,
		maxPointID:    gotess.NilPtID,
	}
}

// NumberOfComponents returns the attribute tuple length of every point.
func (ds *Dataset) NumberOfComponents() int {
	return ds.numComponents
}

// AddPoint adds a point with the given id, coordinate and attribute tuple.
// scalar must be sized to NumberOfComponents; it is copied, not retained.
func (ds *Dataset) AddPoint(id gotess.PtID, coord gotess.Coord, scalar []float64) error {
	if id < 0 {
		return errors.Wrapf(gotess.ErrBadPointID, "AddPoint(%d)", id)
	}
	if len(scalar) != ds.numComponents {
		return errors.Wrapf(gotess.ErrBadComponentCount, "AddPoint(%d): got %d components, want %d", id, len(scalar), ds.numComponents)
	}
	if _, exists := ds.points[id]; exists {
		return errors.Wrapf(gotess.ErrDuplicatePoint, "AddPoint(%d)", id)
	}
	pt := &dataPoint{coord: coord}
	if scalar != nil {
		pt.scalar = make([]float64, len(scalar))
		copy(pt.scalar, scalar)
	}
	ds.points[id] = pt
	if id > ds.maxPointID {
		ds.maxPointID = id
	}
	return nil
}

// HasPoint reports whether the dataset contains the given point id.
func (ds *Dataset) HasPoint(id gotess.PtID) bool {
	_, exists := ds.points[id]
	return exists
}

// Point returns copies of the coordinate and attribute tuple of the given
// point, or false if the dataset has no such point.
func (ds *Dataset) Point(id gotess.PtID) (gotess.Coord, []float64, bool) {
	pt, exists := ds.points[id]
	if !exists {
		return gotess.Coord{}, nil, false
	}
	scalar := make([]float64, len(pt.scalar))
	copy(scalar, pt.scalar)
	return pt.coord, scalar, true
}

// MaxPointID returns the largest point id in the dataset (NilPtID if empty).
// A tessellation pass seeds its id generator with this, so minted midpoint
// ids never collide with dataset points.
func (ds *Dataset) MaxPointID() gotess.PtID {
	return ds.maxPointID
}

// AddCell adds a cell given by its corner point ids: 2 corners form a line,
// 3 a triangle, 4 a tetrahedron.  curved marks the cell's interpolation as
// non-linear, which makes a tessellation pass subdivide its edges.
func (ds *Dataset) AddCell(corners []gotess.PtID, curved bool) (gotess.CellID, error) {
	if len(corners) < 2 || len(corners) > gotess.MaxCellCorners {
		return gotess.NilCellID, errors.Wrapf(gotess.ErrBadCellCorners, "AddCell() with %d corners", len(corners))
	}
	for _, id := range corners {
		if !ds.HasPoint(id) {
			return gotess.NilCellID, errors.Wrapf(gotess.ErrUnknownPointID, "AddCell() corner %d", id)
		}
	}
	cell := &DataCell{
		ds:     ds,
		id:     gotess.CellID(len(ds.cells)),
		curved: curved,
	}
	cell.corners = append(cell.corners, corners...)
	ds.cells = append(ds.cells, cell)
	ds.edgeUses = nil
	return cell.id, nil
}

// NumCells returns the number of cells in the dataset.
func (ds *Dataset) NumCells() int {
	return len(ds.cells)
}

// Cells returns the dataset's cells in traversal order.
func (ds *Dataset) Cells() []*DataCell {
	return ds.cells
}

// EdgeUseCount returns the number of cells that contain the given undirected
// edge (0 if no cell does).
func (ds *Dataset) EdgeUseCount(e1, e2 gotess.PtID) int {
	if ds.edgeUses == nil {
		ds.buildEdgeUses()
	}
	return ds.edgeUses[FormEdgeKey(e1, e2)]
}

func (ds *Dataset) buildEdgeUses() {
	ds.edgeUses = make(map[EdgeKey]int)
	for _, cell := range ds.cells {
		for ei := 0; ei < cell.EdgeCount(); ei++ {
			a, b := cell.EdgePointIDs(ei)
			ds.edgeUses[FormEdgeKey(a, b)]++
		}
	}
}

// kCellEdges maps corner count to the cell's topological edges as corner
// index pairs.  The tetra ordering puts the base triangle first, then the
// edges to the apex.
var kCellEdges = [gotess.MaxCellCorners + 1][][2]int{
	2: {{0, 1}},
	3: {{0, 1}, {1, 2}, {2, 0}},
	4: {{0, 1}, {1, 2}, {2, 0}, {0, 3}, {1, 3}, {2, 3}},
}

// DataCell is a Dataset cell.  It implements gotess.Cell.
type DataCell struct {
	ds      *Dataset
	id      gotess.CellID
	corners []gotess.PtID
	curved  bool
}

func (c *DataCell) ID() gotess.CellID {
	return c.id
}

func (c *DataCell) Dimension() int {
	return len(c.corners) - 1
}

func (c *DataCell) CornerCount() int {
	return len(c.corners)
}

func (c *DataCell) CornerIDs() []gotess.PtID {
	return c.corners
}

func (c *DataCell) EdgeCount() int {
	return len(kCellEdges[len(c.corners)])
}

func (c *DataCell) EdgePointIDs(edge int) (gotess.PtID, gotess.PtID) {
	pair := kCellEdges[len(c.corners)][edge]
	return c.corners[pair[0]], c.corners[pair[1]]
}

func (c *DataCell) EdgeUseCount(edge int) int {
	a, b := c.EdgePointIDs(edge)
	return c.ds.EdgeUseCount(a, b)
}

func (c *DataCell) GeometryLinear() bool {
	return !c.curved
}

func (c *DataCell) AttributesLinear() bool {
	return !c.curved
}

// EdgeMidpoint evaluates the edge's parametric middle.  Dataset cells
// interpolate linearly there, which keeps cell-specific geometry out of the
// tables while still exercising the full midpoint lifecycle.
func (c *DataCell) EdgeMidpoint(edge int) (gotess.Coord, []float64) {
	a, b := c.EdgePointIDs(edge)
	pa := c.ds.points[a]
	pb := c.ds.points[b]

	coord := pa.coord.Midpoint(pb.coord)
	scalar := make([]float64, c.ds.numComponents)
	for i := range scalar {
		scalar[i] = (pa.scalar[i] + pb.scalar[i]) * .5
	}
	return coord, scalar
}
