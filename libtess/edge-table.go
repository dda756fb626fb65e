package libtess

import (
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/mesh-structures/tessel.SDK/gotess"
)

// EdgeKey is the canonical key of an undirected edge: the endpoint pair
// ordered so that (a,b) and (b,a) form the same key.
type EdgeKey struct {
	A, B gotess.PtID // A <= B
}

// FormEdgeKey forms the canonical EdgeKey for the endpoints (e1, e2).
func FormEdgeKey(e1, e2 gotess.PtID) EdgeKey {
	if e1 < 0 || e2 < 0 {
		panic("invalid PtIDs given to FormEdgeKey()")
	}
	if e1 > e2 {
		e1, e2 = e2, e1
	}
	return EdgeKey{A: e1, B: e2}
}

// kEdgeHashMul is 2^64 / phi, the 64-bit golden-ratio multiplier.
const kEdgeHashMul = 0x9E3779B97F4A7C15

// Hash mixes both (ordered) endpoints into one 64-bit value.  Collisions are
// resolved by bucket chaining, so the mix only needs to spread well, not be
// perfect.
func (key EdgeKey) Hash() uint64 {
	h := uint64(key.A) * kEdgeHashMul
	h ^= h >> 32
	h = (h + uint64(key.B)) * kEdgeHashMul
	h ^= h >> 32
	return h
}

// EdgeEntry holds the subdivision state of one canonical edge during a
// tessellation pass.
type EdgeEntry struct {
	E1, E2    gotess.PtID   // canonical endpoints, E1 <= E2
	Reference int           // cell visits outstanding before eviction
	ToSplit   bool          // whether this edge requires subdivision
	PtID      gotess.PtID   // minted midpoint; NilPtID until the edge is split
	CellID    gotess.CellID // cell that most recently touched this edge

	next *EdgeEntry // bucket chain
}

// kDefaultEdgeBuckets is the initial bucket count (prime).
const kDefaultEdgeBuckets = 4093

// EdgeTable maps canonical undirected edges to their subdivision state and
// owns the midpoint id generator for a tessellation pass.
//
// Entries are reference counted: an entry is created with the number of cells
// expected to consume the edge and evicted when RemoveEdge has drained that
// count, bounding memory to the active front of the traversal.  At most one
// entry exists per canonical edge, and its PtID is set at most once, which is
// what guarantees neighboring cells agree on a single midpoint.
//
// Not safe for concurrent use: a pass mutates the table from one goroutine.
type EdgeTable struct {
	buckets     []*EdgeEntry
	entryCount  int
	lastPointID gotess.PtID
}

// NewEdgeTable returns an empty edge table.
//
// Call Initialize before the first InsertEdgeToSplit so minted midpoint ids
// land past the dataset's own point range.
func NewEdgeTable() *EdgeTable {
	return &EdgeTable{
		buckets: make([]*EdgeEntry, kDefaultEdgeBuckets),
	}
}

// Initialize seeds the midpoint id generator.  Call it once per pass, before
// any edge is split.
func (et *EdgeTable) Initialize(start gotess.PtID) {
	if et.entryCount > 0 {
		klog.Warningf("EdgeTable.Initialize(%d) called with %d entries still in the table", start, et.entryCount)
	}
	et.lastPointID = start
}

// LastPointID returns the most recently minted midpoint id (or the seed if
// none has been minted yet).
func (et *EdgeTable) LastPointID() gotess.PtID {
	return et.lastPointID
}

// IncrementLastPointID advances the id generator by one.
func (et *EdgeTable) IncrementLastPointID() {
	et.lastPointID++
}

// Len returns the number of edge entries currently in the table.
func (et *EdgeTable) Len() int {
	return et.entryCount
}

// InsertEdge registers an edge as seen without assigning a midpoint.
// Registering an edge already in the table is a no-op, so every cell sharing
// an edge may insert it blindly.
func (et *EdgeTable) InsertEdge(e1, e2 gotess.PtID, cellID gotess.CellID, ref int) {
	key := FormEdgeKey(e1, e2)
	if et.find(key) != nil {
		return
	}
	et.insert(&EdgeEntry{
		E1:        key.A,
		E2:        key.B,
		Reference: ref,
		PtID:      gotess.NilPtID,
		CellID:    cellID,
	})
}

// InsertEdgeToSplit registers an edge that requires subdivision and returns
// its midpoint id, minting a fresh id from the generator iff the edge has
// none yet.  A PtID is assigned at most once per entry lifetime: neighboring
// cells calling this on a shared edge all receive the identical id.
func (et *EdgeTable) InsertEdgeToSplit(e1, e2 gotess.PtID, cellID gotess.CellID, ref int) gotess.PtID {
	key := FormEdgeKey(e1, e2)
	entry := et.find(key)
	if entry == nil {
		entry = &EdgeEntry{
			E1:        key.A,
			E2:        key.B,
			Reference: ref,
			PtID:      gotess.NilPtID,
		}
		et.insert(entry)
	}
	entry.ToSplit = true
	entry.CellID = cellID
	if entry.PtID == gotess.NilPtID {
		et.IncrementLastPointID()
		entry.PtID = et.lastPointID
	}
	return entry.PtID
}

// RemoveEdge decrements the reference count of the given edge, evicting the
// entry when the count reaches zero, and returns the count after decrement
// (0 signals eviction).  Removing an absent edge is a caller bug and returns
// gotess.ErrEdgeNotFound.
func (et *EdgeTable) RemoveEdge(e1, e2 gotess.PtID) (int, error) {
	key := FormEdgeKey(e1, e2)
	bi := key.Hash() % uint64(len(et.buckets))

	var prev *EdgeEntry
	for entry := et.buckets[bi]; entry != nil; entry = entry.next {
		if entry.E1 == key.A && entry.E2 == key.B {
			entry.Reference--
			if entry.Reference > 0 {
				return entry.Reference, nil
			}
			if prev == nil {
				et.buckets[bi] = entry.next
			} else {
				prev.next = entry.next
			}
			entry.next = nil
			et.entryCount--
			return 0, nil
		}
		prev = entry
	}
	return 0, errors.Wrapf(gotess.ErrEdgeNotFound, "RemoveEdge(%d, %d)", e1, e2)
}

// CheckEdge reports whether the given edge has been split, and if so returns
// its midpoint id.  An absent or not-yet-split edge is a normal negative
// outcome, not an error.
func (et *EdgeTable) CheckEdge(e1, e2 gotess.PtID) (gotess.PtID, bool) {
	entry := et.find(FormEdgeKey(e1, e2))
	if entry == nil || !entry.ToSplit || entry.PtID == gotess.NilPtID {
		return gotess.NilPtID, false
	}
	return entry.PtID, true
}

// IncrementEdgeReferenceCount announces another cell's interest in an edge
// already known to the table and returns the new count.  Used when the number
// of sharing cells is discovered incrementally rather than known up front.
func (et *EdgeTable) IncrementEdgeReferenceCount(e1, e2 gotess.PtID, cellID gotess.CellID) (int, error) {
	entry := et.find(FormEdgeKey(e1, e2))
	if entry == nil {
		return 0, errors.Wrapf(gotess.ErrEdgeNotFound, "IncrementEdgeReferenceCount(%d, %d)", e1, e2)
	}
	entry.Reference++
	entry.CellID = cellID
	return entry.Reference, nil
}

// CheckEdgeReferenceCount returns the current reference count of the given
// edge, or 0 if the edge is absent.
func (et *EdgeTable) CheckEdgeReferenceCount(e1, e2 gotess.PtID) int {
	entry := et.find(FormEdgeKey(e1, e2))
	if entry == nil {
		return 0
	}
	return entry.Reference
}

// LoadFactor returns entries per bucket.  Diagnostic only: the table never
// rehashes on its own, the caller decides when a Resize would help.
func (et *EdgeTable) LoadFactor() float64 {
	return float64(et.entryCount) / float64(len(et.buckets))
}

// Resize rehashes all entries into the given number of buckets.
func (et *EdgeTable) Resize(buckets int) {
	if buckets < 1 {
		panic("EdgeTable.Resize() requires at least one bucket")
	}
	old := et.buckets
	et.buckets = make([]*EdgeEntry, buckets)
	et.entryCount = 0
	for _, head := range old {
		for entry := head; entry != nil; {
			next := entry.next
			entry.next = nil
			et.insert(entry)
			entry = next
		}
	}
}

// DumpTable logs every entry in canonical key order.
func (et *EdgeTable) DumpTable() {
	klog.Infof("edge table: %d entries over %d buckets (load factor %.4f)",
		et.entryCount, len(et.buckets), et.LoadFactor())

	ordered := redblacktree.NewWith(edgeKeyComparator)
	for _, head := range et.buckets {
		for entry := head; entry != nil; entry = entry.next {
			ordered.Put(EdgeKey{A: entry.E1, B: entry.E2}, entry)
		}
	}
	it := ordered.Iterator()
	for it.Next() {
		entry := it.Value().(*EdgeEntry)
		klog.Infof("    (%d,%d) ref=%d toSplit=%v ptID=%d cellID=%d",
			entry.E1, entry.E2, entry.Reference, entry.ToSplit, entry.PtID, entry.CellID)
	}
}

func edgeKeyComparator(a, b interface{}) int {
	ka := a.(EdgeKey)
	kb := b.(EdgeKey)
	switch {
	case ka.A < kb.A:
		return -1
	case ka.A > kb.A:
		return 1
	case ka.B < kb.B:
		return -1
	case ka.B > kb.B:
		return 1
	}
	return 0
}

func (et *EdgeTable) find(key EdgeKey) *EdgeEntry {
	bi := key.Hash() % uint64(len(et.buckets))
	for entry := et.buckets[bi]; entry != nil; entry = entry.next {
		if entry.E1 == key.A && entry.E2 == key.B {
			return entry
		}
	}
	return nil
}

func (et *EdgeTable) insert(entry *EdgeEntry) {
	bi := EdgeKey{A: entry.E1, B: entry.E2}.Hash() % uint64(len(et.buckets))
	entry.next = et.buckets[bi]
	et.buckets[bi] = entry
	et.entryCount++
}
