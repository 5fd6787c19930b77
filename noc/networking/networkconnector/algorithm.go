package networkconnector

import (
	"github.com/sarchlab/nocroute/noc/networking/fattree"
	"github.com/sarchlab/nocroute/noc/networking/mesh"
	"github.com/sarchlab/nocroute/noc/networking/routing"
)

// AlgorithmFor creates the algorithm of the routing mode in the params. The
// adaptive fat-tree reads no congestion.
func AlgorithmFor(p routing.Params) routing.Algorithm {
	switch p.Mode {
	case routing.TableLookup:
		return routing.TableLookupAlgorithm{}
	case routing.DimensionOrder:
		return mesh.NewXY(p)
	case routing.HierarchicalTree:
		return fattree.NewDeterministic(p)
	case routing.HierarchicalTreeAdaptive:
		return fattree.NewAdaptive(p, fattree.ZeroCongestion{})
	case routing.Custom:
		return routing.CustomAlgorithm{}
	default:
		panic("unknown routing mode " + p.Mode.String())
	}
}
