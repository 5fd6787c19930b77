// Package mesh provides dimension-order routing for 2D meshes.
package mesh

import (
	"fmt"

	"github.com/sarchlab/nocroute/noc/networking/routing"
)

// XY routes packets along the X dimension first and along the Y dimension
// afterward. Finishing X before starting Y keeps a mesh free of deadlocks
// without consulting the routing table.
type XY struct {
	numRows, numCols int
}

// NewXY creates an XY algorithm for the mesh described by the params.
func NewXY(p routing.Params) *XY {
	if p.NumRows <= 0 || p.NumCols <= 0 {
		panic(fmt.Sprintf("mesh must have positive dimensions, got %dx%d",
			p.NumRows, p.NumCols))
	}

	return &XY{numRows: p.NumRows, numCols: p.NumCols}
}

// Mode returns DimensionOrder.
func (a *XY) Mode() routing.Mode {
	return routing.DimensionOrder
}

// Coordinate returns the column and row of a router.
func (a *XY) Coordinate(id int) (x, y int) {
	return id % a.numCols, id / a.numCols
}

// Direction returns the direction a packet at router id takes toward
// destRouter. It faults if the packet would turn back along X or leave Y
// through the port it came from.
func (a *XY) Direction(
	id, destRouter int,
	inportDirn routing.Direction,
) routing.Direction {
	x, y := a.Coordinate(id)
	dstX, dstY := a.Coordinate(destRouter)

	switch {
	case dstX > x:
		a.inportMustBe(id, inportDirn, routing.Local, routing.West)
		return routing.East
	case dstX < x:
		a.inportMustBe(id, inportDirn, routing.Local, routing.East)
		return routing.West
	case dstY > y:
		a.inportMustNotBe(id, inportDirn, routing.North)
		return routing.North
	case dstY < y:
		a.inportMustNotBe(id, inportDirn, routing.South)
		return routing.South
	default:
		routing.RaiseInvariant(a.Mode(), id,
			"router %d and destination %d share coordinates (%d, %d)",
			id, destRouter, x, y)
	}

	panic("unreachable")
}

// ComputeOutport resolves the XY direction to an output port.
func (a *XY) ComputeOutport(
	site routing.Site,
	route routing.RouteInfo,
	_ int,
	inportDirn routing.Direction,
) int {
	dirn := a.Direction(site.RouterID(), route.DestRouter, inportDirn)
	return site.Resolve(dirn)
}

func (a *XY) inportMustBe(
	id int,
	inportDirn routing.Direction,
	allowed ...routing.Direction,
) {
	for _, d := range allowed {
		if inportDirn == d {
			return
		}
	}

	routing.RaiseInvariant(a.Mode(), id,
		"packet from %s cannot continue along X, allowed inports are %v",
		inportDirn, allowed)
}

func (a *XY) inportMustNotBe(
	id int,
	inportDirn routing.Direction,
	forbidden routing.Direction,
) {
	if inportDirn == forbidden {
		routing.RaiseInvariant(a.Mode(), id,
			"packet from %s cannot leave through %s", inportDirn, forbidden)
	}
}
