package gotess

// PtID identifies a point within a dataset: either one of the mesh's own
// points or a midpoint minted during a tessellation pass.
//
// Minted midpoint ids never collide with the mesh's point range because the
// id generator is seeded past it (see EdgeTable.Initialize).
type PtID int64

// NilPtID marks an unassigned midpoint.
const NilPtID = PtID(-1)

// CellID identifies a cell within a dataset.
type CellID int64

// NilCellID marks the absence of a cell.
const NilCellID = CellID(-1)

// Coord is a position in 3-space.
type Coord [3]float64

// Midpoint returns the coordinate halfway between a and b.
func (a Coord) Midpoint(b Coord) Coord {
	return Coord{
		(a[0] + b[0]) * .5,
		(a[1] + b[1]) * .5,
		(a[2] + b[2]) * .5,
	}
}

const (
	// MaxCellCorners is the max number of corner points of a supported cell
	// type: a line has 2, a triangle 3, a tetrahedron 4.
	MaxCellCorners = 4

	// MaxCellEdges is the max number of topological edges of a supported cell
	// type (the 6 edges of a tetrahedron).
	MaxCellEdges = 6
)

// Cell is the capability contract between a tessellation driver and the
// edge/point reference tables.
//
// A Cell only answers topology and interpolation queries; all bookkeeping of
// shared edges and minted midpoints belongs to the tables.  The contract a
// driver must honor in exchange:
//   - call EdgeTable.CheckEdge before recomputing any midpoint, so a midpoint
//     minted by a neighboring cell is reused verbatim;
//   - call EdgeTable.RemoveEdge exactly once per cell visit per edge, so the
//     reference count reflects remaining unvisited neighbors.
type Cell interface {

	// ID returns the unique id of this cell over the whole dataset.
	ID() CellID

	// Dimension returns the topological dimension of this cell (1..3).
	Dimension() int

	// CornerCount returns the number of corner points of this cell.
	CornerCount() int

	// CornerIDs returns the ids of this cell's corner points, in cell order.
	// The returned slice is owned by the cell and must not be mutated.
	CornerIDs() []PtID

	// EdgeCount returns the number of topological edges of this cell.
	EdgeCount() int

	// EdgePointIDs returns the endpoint ids of the given edge (0-based).
	EdgePointIDs(edge int) (PtID, PtID)

	// EdgeUseCount returns the number of cells of the dataset that share the
	// given edge, this cell included.  This is the reference count an edge
	// entry starts with, so that the entry is evicted exactly when the last
	// sharing cell has been visited.
	EdgeUseCount(edge int) int

	// GeometryLinear reports whether this cell's geometry interpolation is
	// linear.  Linear cells need no edge subdivision.
	GeometryLinear() bool

	// AttributesLinear reports whether every point-centered attribute of this
	// cell interpolates linearly.
	AttributesLinear() bool

	// EdgeMidpoint evaluates the coordinate and the interpolated attribute
	// tuple at the parametric middle of the given edge.  The returned scalar
	// slice is freshly allocated and safe for the caller to retain.
	EdgeMidpoint(edge int) (Coord, []float64)
}
