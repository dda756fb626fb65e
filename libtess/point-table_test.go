package libtess_test

import (
	"errors"
	"testing"

	"github.com/mesh-structures/tessel.SDK/gotess"
	"github.com/mesh-structures/tessel.SDK/libtess"
)

func expectPanic(t *testing.T, desc string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected a panic", desc)
		}
	}()
	fn()
}

func TestAttributeRoundTrip(t *testing.T) {
	pt := libtess.NewPointTable()
	pt.SetNumberOfComponents(3)

	coord := gotess.Coord{1.5, -2.25, 10}
	scalar := []float64{7, 8.5, -9}
	pt.InsertPointAndScalar(77, coord, scalar)

	var outCoord gotess.Coord
	outScalar := make([]float64, 3)
	if !pt.CheckPointData(77, &outCoord, outScalar) {
		t.Fatalf("point 77 not found after insert")
	}
	if outCoord != coord {
		t.Fatalf("coord round trip: got %v, want %v", outCoord, coord)
	}
	for i := range scalar {
		if outScalar[i] != scalar[i] {
			t.Fatalf("scalar[%d] round trip: got %v, want %v", i, outScalar[i], scalar[i])
		}
	}
}

func TestScalarBuffersAreCopies(t *testing.T) {
	pt := libtess.NewPointTable()
	pt.SetNumberOfComponents(2)

	scalar := []float64{1, 2}
	pt.InsertPointAndScalar(5, gotess.Coord{}, scalar)

	// mutating the caller's buffer must not reach the table
	scalar[0] = 999

	var coord gotess.Coord
	out := make([]float64, 2)
	pt.CheckPointData(5, &coord, out)
	if out[0] != 1 {
		t.Fatalf("table aliased the inserted scalar buffer: got %v", out[0])
	}

	// and mutating the copied-out buffer must not reach the table either
	out[1] = -999
	again := make([]float64, 2)
	pt.CheckPointData(5, &coord, again)
	if again[1] != 2 {
		t.Fatalf("table aliased the copied-out scalar buffer: got %v", again[1])
	}
}

func TestGeometryOnlyPoints(t *testing.T) {
	pt := libtess.NewPointTable()

	pt.InsertPoint(3, gotess.Coord{1, 2, 3})
	if !pt.CheckPoint(3) {
		t.Fatalf("point 3 not found after InsertPoint")
	}
	var coord gotess.Coord
	if !pt.CheckPointData(3, &coord, nil) {
		t.Fatalf("CheckPointData failed on geometry-only point")
	}
	if coord != (gotess.Coord{1, 2, 3}) {
		t.Fatalf("coord: got %v", coord)
	}
}

func TestRemoveAndIncrementPoint(t *testing.T) {
	pt := libtess.NewPointTable()
	pt.InsertPoint(9, gotess.Coord{})

	if err := pt.IncrementPointReferenceCount(9); err != nil {
		t.Fatalf("IncrementPointReferenceCount: %v", err)
	}

	// RemovePoint is unconditional, whatever the reference count
	if err := pt.RemovePoint(9); err != nil {
		t.Fatalf("RemovePoint: %v", err)
	}
	if pt.CheckPoint(9) {
		t.Fatalf("point 9 still present after RemovePoint")
	}
	if err := pt.RemovePoint(9); !errors.Is(err, gotess.ErrPointNotFound) {
		t.Fatalf("RemovePoint on absent point: got %v, want ErrPointNotFound", err)
	}
	if err := pt.IncrementPointReferenceCount(9); !errors.Is(err, gotess.ErrPointNotFound) {
		t.Fatalf("increment on absent point: got %v, want ErrPointNotFound", err)
	}
}

func TestComponentCountPreconditions(t *testing.T) {
	pt := libtess.NewPointTable()

	expectPanic(t, "non-positive component count", func() {
		pt.SetNumberOfComponents(0)
	})

	pt.SetNumberOfComponents(2)
	pt.InsertPointAndScalar(1, gotess.Coord{}, []float64{1, 2})

	// same count while entries exist is fine
	pt.SetNumberOfComponents(2)

	expectPanic(t, "reconfigure while entries exist", func() {
		pt.SetNumberOfComponents(3)
	})
	expectPanic(t, "scalar size mismatch on insert", func() {
		pt.InsertPointAndScalar(2, gotess.Coord{}, []float64{1})
	})
	expectPanic(t, "scalar buffer size mismatch on copy-out", func() {
		var coord gotess.Coord
		pt.CheckPointData(1, &coord, make([]float64, 5))
	})
	expectPanic(t, "duplicate point id", func() {
		pt.InsertPointAndScalar(1, gotess.Coord{}, []float64{1, 2})
	})

	// table drained, reconfiguration is legal again
	if err := pt.RemovePoint(1); err != nil {
		t.Fatalf("RemovePoint: %v", err)
	}
	pt.SetNumberOfComponents(4)
}

func TestPointTableResize(t *testing.T) {
	pt := libtess.NewPointTable()
	for id := gotess.PtID(0); id < 64; id++ {
		pt.InsertPoint(id, gotess.Coord{float64(id), 0, 0})
	}

	pt.Resize(5)
	if pt.Len() != 64 {
		t.Fatalf("entry count after resize: got %d, want 64", pt.Len())
	}
	for id := gotess.PtID(0); id < 64; id++ {
		var coord gotess.Coord
		if !pt.CheckPointData(id, &coord, nil) {
			t.Fatalf("point %d lost by Resize", id)
		}
		if coord[0] != float64(id) {
			t.Fatalf("point %d coord corrupted by Resize: %v", id, coord)
		}
	}
}
