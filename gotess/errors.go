package gotess

import "errors"

// Errors
var (
	ErrEdgeNotFound      = errors.New("edge not found")
	ErrPointNotFound     = errors.New("point not found")
	ErrDuplicatePoint    = errors.New("duplicate point ID")
	ErrBadPointID        = errors.New("bad point ID")
	ErrBadCellCorners    = errors.New("unsupported cell corner count")
	ErrUnknownPointID    = errors.New("cell references unknown point ID")
	ErrBadComponentCount = errors.New("bad attribute component count")
	ErrNilDataset        = errors.New("nil dataset")
	ErrEmptyMeshExpr     = errors.New("empty mesh expression")
)
