package libtess_test

import (
	"errors"
	"testing"

	"github.com/mesh-structures/tessel.SDK/gotess"
	"github.com/mesh-structures/tessel.SDK/libtess"
)

func TestMeshExprTriangles(t *testing.T) {
	ds := libtess.NewDataset(2)
	if err := ds.InitFromString("1-2-3, 2~4~3"); err != nil {
		t.Fatalf("InitFromString: %v", err)
	}

	if ds.NumCells() != 2 {
		t.Fatalf("cell count: got %d, want 2", ds.NumCells())
	}
	cells := ds.Cells()
	if !cells[0].GeometryLinear() {
		t.Fatalf("cell 0 should be linear")
	}
	if cells[1].GeometryLinear() {
		t.Fatalf("cell 1 should be curved")
	}
	for _, id := range []gotess.PtID{1, 2, 3, 4} {
		if !ds.HasPoint(id) {
			t.Fatalf("point %d not auto-created", id)
		}
	}
	if _, scalar, _ := ds.Point(4); len(scalar) != 2 {
		t.Fatalf("auto-created point carries %d components, want 2", len(scalar))
	}

	// the (2,3) edge is shared by both triangles
	if n := ds.EdgeUseCount(3, 2); n != 2 {
		t.Fatalf("shared edge use count: got %d, want 2", n)
	}
	if n := ds.EdgeUseCount(1, 2); n != 1 {
		t.Fatalf("boundary edge use count: got %d, want 1", n)
	}
}

func TestMeshExprParts(t *testing.T) {
	ds := libtess.NewDataset(1)
	if err := ds.InitFromString("1-2; 3-4-5-6; 2~6"); err != nil {
		t.Fatalf("InitFromString: %v", err)
	}
	cells := ds.Cells()
	if len(cells) != 3 {
		t.Fatalf("cell count: got %d, want 3", len(cells))
	}
	if cells[0].CornerCount() != 2 || cells[1].CornerCount() != 4 || cells[2].CornerCount() != 2 {
		t.Fatalf("corner counts: got %d, %d, %d", cells[0].CornerCount(), cells[1].CornerCount(), cells[2].CornerCount())
	}
	// point ids are global across parts: "2" and "6" refer to parts 1 and 2
	if ds.MaxPointID() != 6 {
		t.Fatalf("MaxPointID: got %d, want 6", ds.MaxPointID())
	}
}

func TestMeshExprErrors(t *testing.T) {
	if err := libtess.NewDataset(1).InitFromString(""); !errors.Is(err, gotess.ErrEmptyMeshExpr) {
		t.Fatalf("empty expression: got %v, want ErrEmptyMeshExpr", err)
	}
	if err := libtess.NewDataset(1).InitFromString("1-2-3-4-5"); !errors.Is(err, gotess.ErrBadCellCorners) {
		t.Fatalf("5-corner cell: got %v, want ErrBadCellCorners", err)
	}
	if err := libtess.NewDataset(1).InitFromString("1"); !errors.Is(err, gotess.ErrBadCellCorners) {
		t.Fatalf("1-corner cell: got %v, want ErrBadCellCorners", err)
	}
	if err := libtess.NewDataset(1).InitFromString("1-#2"); err == nil {
		t.Fatalf("garbage expression parsed without error")
	}
}
