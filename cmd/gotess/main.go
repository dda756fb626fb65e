package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/plan-systems/klog"

	"github.com/mesh-structures/tessel.SDK/libtess"
)

var numComponents = flag.Int("components", 1, "number of point-centered attribute components")

func main() {

	flag.Set("logtostderr", "true")
	flag.Set("v", "2")

	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "2")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	flag.Parse()

	arg := flag.Arg(0)
	if arg == "" {
		fmt.Fprintln(os.Stderr, "usage: gotess <mesh expression | path to expression file>")
		fmt.Fprintln(os.Stderr, `   eg: gotess "1~2~3, 2~4~3"`)
		os.Exit(2)
	}

	// The arg is either an inline expression or a path to one.
	expr := arg
	if body, err := os.ReadFile(arg); err == nil {
		expr = string(body)
	}

	ds := libtess.NewDataset(*numComponents)
	if err := ds.InitFromString(expr); err != nil {
		klog.Fatalf("parsing mesh expression: %v", err)
	}

	out, err := libtess.TessellateDataset(ds)
	if err != nil {
		klog.Fatalf("tessellation failed: %v", err)
	}

	fmt.Printf("%d cells in => %d points, %d lines, %d triangles, %d tetras out\n",
		ds.NumCells(), len(out.Points), len(out.Lines), len(out.Triangles), len(out.Tetras))

	for _, pt := range out.Points {
		klog.V(2).Infof("point %4d  at %v  scalar=%v", pt.ID, pt.Coord, pt.Scalar)
	}
	for _, line := range out.Lines {
		klog.V(2).Infof("line  %v", line)
	}
	for _, tri := range out.Triangles {
		klog.V(2).Infof("tri   %v", tri)
	}
	for _, tet := range out.Tetras {
		klog.V(2).Infof("tetra %v", tet)
	}

	klog.Flush()
}
