package libtess

import (
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/mesh-structures/tessel.SDK/gotess"
)

// PointEntry holds a midpoint generated during a tessellation pass: its
// coordinate, its interpolated point-centered attribute tuple, and the number
// of consumers still expected to need it.
type PointEntry struct {
	PointID   gotess.PtID
	Coord     gotess.Coord
	Scalar    []float64 // attribute tuple, len == the table's component count
	Reference int

	next *PointEntry // bucket chain
}

// kDefaultPointBuckets is the initial bucket count (prime).
const kDefaultPointBuckets = 4093

// PointTable maps minted midpoint ids to their coordinate and attribute
// tuple for the duration of one tessellation pass.
//
// Point ids come from the edge table's monotonic generator, so they are
// near-dense small integers: the hash is a plain remainder over the bucket
// count, with chaining for collisions.
//
// The table owns its entries; Scalar tuples are deep-copied on insert and on
// copy-out, so callers never alias table-owned buffers.  Not safe for
// concurrent use.
type PointTable struct {
	buckets       []*PointEntry
	entryCount    int
	numComponents int
}

// NewPointTable returns an empty point table with no attribute components
// configured.  Call SetNumberOfComponents before the first
// InsertPointAndScalar.
func NewPointTable() *PointTable {
	return &PointTable{
		buckets: make([]*PointEntry, kDefaultPointBuckets),
	}
}

// NumberOfComponents returns the configured attribute tuple length.
func (pt *PointTable) NumberOfComponents() int {
	return pt.numComponents
}

// SetNumberOfComponents fixes the attribute tuple length for the pass.
// count must be positive, and reconfiguring a table that already holds
// entries is a precondition violation: every stored Scalar tuple has the
// configured length, so a live resize would corrupt them.
func (pt *PointTable) SetNumberOfComponents(count int) {
	if count <= 0 {
		panic("PointTable.SetNumberOfComponents() requires a positive count")
	}
	if pt.entryCount > 0 && count != pt.numComponents {
		panic("PointTable.SetNumberOfComponents() called while entries exist")
	}
	pt.numComponents = count
}

// Len returns the number of point entries currently in the table.
func (pt *PointTable) Len() int {
	return pt.entryCount
}

// CheckPoint reports whether the given point is in the table.
func (pt *PointTable) CheckPoint(ptID gotess.PtID) bool {
	return pt.find(ptID) != nil
}

// CheckPointData reports whether the given point is in the table and, if so,
// copies its coordinate into outCoord and its attribute tuple into outScalar.
// outScalar must already be sized to NumberOfComponents (nil is accepted when
// no components are configured).
func (pt *PointTable) CheckPointData(ptID gotess.PtID, outCoord *gotess.Coord, outScalar []float64) bool {
	if len(outScalar) != pt.numComponents {
		panic("PointTable.CheckPointData() scalar buffer size mismatch")
	}
	entry := pt.find(ptID)
	if entry == nil {
		return false
	}
	*outCoord = entry.Coord
	copy(outScalar, entry.Scalar)
	return true
}

// InsertPoint stores a point with no attribute tuple, for passes that carry
// geometry only.  The entry starts with a reference count of 1.
func (pt *PointTable) InsertPoint(ptID gotess.PtID, coord gotess.Coord) {
	pt.insertEntry(ptID, coord, nil)
}

// InsertPointAndScalar stores a point with its interpolated attribute tuple.
// scalar must be sized to NumberOfComponents; it is copied, not retained.
// The entry starts with a reference count of 1.
func (pt *PointTable) InsertPointAndScalar(ptID gotess.PtID, coord gotess.Coord, scalar []float64) {
	if pt.numComponents <= 0 {
		panic("PointTable.InsertPointAndScalar() called before SetNumberOfComponents()")
	}
	if len(scalar) != pt.numComponents {
		panic("PointTable.InsertPointAndScalar() scalar size mismatch")
	}
	pt.insertEntry(ptID, coord, scalar)
}

// RemovePoint unconditionally deletes the keyed entry, regardless of its
// reference count.  Called when the edge holding this midpoint is fully
// evicted, at which point no unvisited cell can still need it.  Removing an
// absent point is a caller bug and returns gotess.ErrPointNotFound.
func (pt *PointTable) RemovePoint(ptID gotess.PtID) error {
	bi := pt.bucketOf(ptID)
	var prev *PointEntry
	for entry := pt.buckets[bi]; entry != nil; entry = entry.next {
		if entry.PointID == ptID {
			if prev == nil {
				pt.buckets[bi] = entry.next
			} else {
				prev.next = entry.next
			}
			entry.next = nil
			pt.entryCount--
			return nil
		}
		prev = entry
	}
	return errors.Wrapf(gotess.ErrPointNotFound, "RemovePoint(%d)", ptID)
}

// IncrementPointReferenceCount registers another consumer of the given point,
// mirroring the edge table's reference semantics.
func (pt *PointTable) IncrementPointReferenceCount(ptID gotess.PtID) error {
	entry := pt.find(ptID)
	if entry == nil {
		return errors.Wrapf(gotess.ErrPointNotFound, "IncrementPointReferenceCount(%d)", ptID)
	}
	entry.Reference++
	return nil
}

// LoadFactor returns entries per bucket.  Diagnostic only.
func (pt *PointTable) LoadFactor() float64 {
	return float64(pt.entryCount) / float64(len(pt.buckets))
}

// Resize rehashes all entries into the given number of buckets.
func (pt *PointTable) Resize(buckets int) {
	if buckets < 1 {
		panic("PointTable.Resize() requires at least one bucket")
	}
	old := pt.buckets
	pt.buckets = make([]*PointEntry, buckets)
	pt.entryCount = 0
	for _, head := range old {
		for entry := head; entry != nil; {
			next := entry.next
			bi := pt.bucketOf(entry.PointID)
			entry.next = pt.buckets[bi]
			pt.buckets[bi] = entry
			pt.entryCount++
			entry = next
		}
	}
}

// DumpTable logs every entry, bucket by bucket.
func (pt *PointTable) DumpTable() {
	klog.Infof("point table: %d entries over %d buckets (load factor %.4f)",
		pt.entryCount, len(pt.buckets), pt.LoadFactor())
	for _, head := range pt.buckets {
		for entry := head; entry != nil; entry = entry.next {
			klog.Infof("    %d at %v ref=%d scalar=%v",
				entry.PointID, entry.Coord, entry.Reference, entry.Scalar)
		}
	}
}

func (pt *PointTable) bucketOf(ptID gotess.PtID) uint64 {
	if ptID < 0 {
		panic("invalid PtID given to PointTable")
	}
	return uint64(ptID) % uint64(len(pt.buckets))
}

func (pt *PointTable) insertEntry(ptID gotess.PtID, coord gotess.Coord, scalar []float64) {
	if pt.find(ptID) != nil {
		panic("duplicate PtID inserted into PointTable")
	}
	entry := &PointEntry{
		PointID:   ptID,
		Coord:     coord,
		Reference: 1,
	}
	if scalar != nil {
		entry.Scalar = make([]float64, len(scalar))
		copy(entry.Scalar, scalar)
	}
	bi := pt.bucketOf(ptID)
	entry.next = pt.buckets[bi]
	pt.buckets[bi] = entry
	pt.entryCount++
}

func (pt *PointTable) find(ptID gotess.PtID) *PointEntry {
	for entry := pt.buckets[pt.bucketOf(ptID)]; entry != nil; entry = entry.next {
		if entry.PointID == ptID {
			return entry
		}
	}
	return nil
}
