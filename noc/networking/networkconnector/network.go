package networkconnector

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sarchlab/nocroute/noc/networking/netdest"
	"github.com/sarchlab/nocroute/noc/networking/routing"
)

// Hop is one routing decision along a path.
type Hop struct {
	Router           int
	Inport           int
	InportDirection  routing.Direction
	Outport          int
	OutportDirection routing.Direction
}

func (h Hop) String() string {
	return fmt.Sprintf("Router%d %s(%d) -> %s(%d)",
		h.Router, h.InportDirection, h.Inport,
		h.OutportDirection, h.Outport)
}

// Network is a set of routers whose routes are established. A Network is
// read-only and can be walked concurrently.
type Network struct {
	params    routing.Params
	numVnets  int
	routers   []*routerNode
	endpoints []*endpointNode
	maxHops   int
}

// Params returns the routing parameters of the network.
func (n *Network) Params() routing.Params {
	return n.params
}

// NumVnets returns the number of virtual networks.
func (n *Network) NumVnets() int {
	return n.numVnets
}

// NumRouters returns the number of routers.
func (n *Network) NumRouters() int {
	return len(n.routers)
}

// NumEndpoints returns the number of endpoints.
func (n *Network) NumEndpoints() int {
	return len(n.endpoints)
}

// Unit returns the routing unit of a router.
func (n *Network) Unit(router int) *routing.Unit {
	if router < 0 || router >= len(n.routers) {
		panic(fmt.Sprintf("router %d does not exist", router))
	}

	return n.routers[router].unit
}

// RouterOf returns the router that an endpoint attaches to.
func (n *Network) RouterOf(endpoint int) int {
	if endpoint < 0 || endpoint >= len(n.endpoints) {
		panic(fmt.Sprintf("endpoint %d does not exist", endpoint))
	}

	return n.endpoints[endpoint].router.id
}

// Walk follows the routing decisions of a packet from the src endpoint to
// the dst endpoint. It returns the hops taken so far together with an
// error if a router faults, the packet reaches the wrong endpoint, or the
// packet does not arrive within a bounded number of hops.
func (n *Network) Walk(src, dst, vnet int) ([]Hop, error) {
	if src < 0 || src >= len(n.endpoints) {
		return nil, errors.Errorf("source endpoint %d does not exist", src)
	}

	if dst < 0 || dst >= len(n.endpoints) {
		return nil, errors.Errorf("destination endpoint %d does not exist", dst)
	}

	route := routing.RouteInfo{
		DestRouter: n.endpoints[dst].router.id,
		Vnet:       vnet,
		NetDest:    netdest.New(dst),
	}

	injection := n.endpoints[src].remote
	router := n.endpoints[src].router
	inport := injection.RemotePort
	inDirn := injection.RemoteDirection

	hops := make([]Hop, 0, 8)

	for len(hops) < n.maxHops {
		var outport int

		fault := routing.CatchFault(func() {
			outport = router.unit.ComputeOutport(route, inport, inDirn)
		})
		if fault != nil {
			return hops, errors.Wrapf(fault,
				"routing from endpoint %d to endpoint %d", src, dst)
		}

		if outport >= len(router.remotes) {
			return hops, errors.Errorf("%s selected unconnected outport %d",
				router.name, outport)
		}

		remote := router.remotes[outport]
		hops = append(hops, Hop{
			Router:           router.id,
			Inport:           inport,
			InportDirection:  inDirn,
			Outport:          outport,
			OutportDirection: remote.Direction,
		})

		switch next := remote.RemoteNode.(type) {
		case *endpointNode:
			if next.id != dst {
				return hops, errors.Errorf(
					"packet for endpoint %d delivered to endpoint %d",
					dst, next.id)
			}

			return hops, nil
		case *routerNode:
			router = next
			inport = remote.RemotePort
			inDirn = remote.RemoteDirection
		}
	}

	return hops, errors.Errorf(
		"packet from endpoint %d to endpoint %d not delivered in %d hops",
		src, dst, n.maxHops)
}

// Routers returns the ids of the routers along a path.
func Routers(hops []Hop) []int {
	ids := make([]int, len(hops))
	for i, h := range hops {
		ids[i] = h.Router
	}

	return ids
}
