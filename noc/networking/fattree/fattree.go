package fattree

import (
	"github.com/sarchlab/nocroute/noc/networking/routing"
)

// Deterministic routes up from the edge and down from the core, with a
// single path per source and destination. Destinations are edge routers.
type Deterministic struct {
	layout Layout
}

// NewDeterministic creates the algorithm for the tree described by params.
func NewDeterministic(p routing.Params) *Deterministic {
	return &Deterministic{layout: LayoutFor(p)}
}

// Mode returns HierarchicalTree.
func (a *Deterministic) Mode() routing.Mode {
	return routing.HierarchicalTree
}

// Layout returns the layout the algorithm routes on.
func (a *Deterministic) Layout() Layout {
	return a.layout
}

// Direction returns the direction a packet at router id takes toward the
// edge router destRouter.
func (a *Deterministic) Direction(id, destRouter int) routing.Direction {
	l := a.layout
	destPod := destRouter / l.HalfK

	switch l.LayerOf(id) {
	case EdgeLayer:
		return routing.AggPort(l.PositionOf(id))
	case AggregationLayer:
		if destPod == l.PodOf(id) {
			return routing.EdgePort(destRouter % l.HalfK)
		}

		return routing.CorePort(l.PositionOf(id))
	default:
		return routing.AggPort(destPod)
	}
}

// ComputeOutport resolves the tree direction to an output port.
func (a *Deterministic) ComputeOutport(
	site routing.Site,
	route routing.RouteInfo,
	_ int,
	_ routing.Direction,
) int {
	return site.Resolve(a.Direction(site.RouterID(), route.DestRouter))
}
