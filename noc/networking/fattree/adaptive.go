package fattree

import (
	"math"

	"github.com/sarchlab/nocroute/noc/networking/routing"
)

// CongestionMonitor reports how congested the link behind a direction is.
type CongestionMonitor interface {
	CongestionLevel(dirn routing.Direction) int
}

// ZeroCongestion reports every link as idle. No congestion model exists yet,
// so it is the only monitor the simulator ships.
type ZeroCongestion struct{}

// CongestionLevel always returns 0.
func (ZeroCongestion) CongestionLevel(routing.Direction) int {
	return 0
}

// LeastCongested returns the least congested of the n directions of a kind,
// preferring lower indices on ties.
func LeastCongested(
	kind routing.DirectionKind,
	n int,
	monitor CongestionMonitor,
) routing.Direction {
	best := routing.Direction{Kind: kind}
	minLevel := math.MaxInt

	for i := 0; i < n; i++ {
		d := routing.Direction{Kind: kind, Index: i}

		level := monitor.CongestionLevel(d)
		if level < minLevel {
			minLevel = level
			best = d
		}
	}

	return best
}

// Adaptive is the entry point of congestion-aware fat-tree routing. Until a
// congestion model exists, it routes exactly like Deterministic.
type Adaptive struct {
	deterministic *Deterministic
	monitor       CongestionMonitor
}

// NewAdaptive creates the adaptive algorithm. A nil monitor means
// ZeroCongestion.
func NewAdaptive(p routing.Params, monitor CongestionMonitor) *Adaptive {
	if monitor == nil {
		monitor = ZeroCongestion{}
	}

	return &Adaptive{
		deterministic: NewDeterministic(p),
		monitor:       monitor,
	}
}

// Mode returns HierarchicalTreeAdaptive.
func (a *Adaptive) Mode() routing.Mode {
	return routing.HierarchicalTreeAdaptive
}

// Monitor returns the congestion monitor the algorithm was built with.
func (a *Adaptive) Monitor() CongestionMonitor {
	return a.monitor
}

// ComputeOutport routes with the deterministic logic.
// TODO: pick among the up links with LeastCongested once routers expose
// per-port congestion levels.
func (a *Adaptive) ComputeOutport(
	site routing.Site,
	route routing.RouteInfo,
	inport int,
	inportDirn routing.Direction,
) int {
	return a.deterministic.ComputeOutport(site, route, inport, inportDirn)
}
