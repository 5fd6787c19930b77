// Package fattree provides routing for three-layer fat-trees.
package fattree

import (
	"fmt"

	"github.com/sarchlab/nocroute/noc/networking/routing"
)

// Layer is the layer of a fat-tree router.
type Layer int

// The layers of a fat-tree, from the leaves up.
const (
	EdgeLayer Layer = iota
	AggregationLayer
	CoreLayer
)

func (l Layer) String() string {
	switch l {
	case EdgeLayer:
		return "edge"
	case AggregationLayer:
		return "aggregation"
	case CoreLayer:
		return "core"
	default:
		return fmt.Sprintf("Layer(%d)", int(l))
	}
}

// Layout describes how routers are numbered in a fat-tree built from
// degree-k switches. Each pod has k/2 edge and k/2 aggregation routers.
// Routers are numbered edge first, then aggregation, then core, pod by pod.
type Layout struct {
	HalfK int
	Pods  int
}

// LayoutFor returns the layout described by the params.
func LayoutFor(p routing.Params) Layout {
	if p.TreeDegree <= 0 || p.TreeDegree%2 != 0 {
		panic(fmt.Sprintf("fat-tree degree must be even and positive, got %d",
			p.TreeDegree))
	}

	return Layout{HalfK: p.TreeDegree / 2, Pods: p.Pods()}
}

// NumEdge returns the number of edge routers.
func (l Layout) NumEdge() int {
	return l.HalfK * l.Pods
}

// NumAggregation returns the number of aggregation routers.
func (l Layout) NumAggregation() int {
	return l.HalfK * l.Pods
}

// NumCore returns the number of core routers.
func (l Layout) NumCore() int {
	return l.HalfK * l.HalfK
}

// NumRouters returns the number of routers in all layers.
func (l Layout) NumRouters() int {
	return l.NumEdge() + l.NumAggregation() + l.NumCore()
}

// LayerOf returns the layer of a router.
func (l Layout) LayerOf(id int) Layer {
	switch {
	case id < l.NumEdge():
		return EdgeLayer
	case id < l.NumEdge()+l.NumAggregation():
		return AggregationLayer
	default:
		return CoreLayer
	}
}

// PodOf returns the pod of an edge or aggregation router.
func (l Layout) PodOf(id int) int {
	if l.LayerOf(id) == AggregationLayer {
		return (id - l.NumEdge()) / l.HalfK
	}

	return id / l.HalfK
}

// PositionOf returns the position of an edge or aggregation router within
// its pod.
func (l Layout) PositionOf(id int) int {
	return id % l.HalfK
}
