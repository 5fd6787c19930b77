package networkconnector

import (
	"math"

	"github.com/pkg/errors"
	"github.com/sarchlab/nocroute/noc/networking/netdest"
	"github.com/sarchlab/nocroute/noc/networking/routing"
)

// Remote records the link between two nodes.
type Remote struct {
	LocalNode Node
	LocalPort int
	Direction routing.Direction

	RemoteNode      Node
	RemotePort      int
	RemoteDirection routing.Direction

	Weight         int
	SupportedVnets []int
}

// SupportsVnet tells if the link carries the vnet. Links that do not list
// any vnet carry all of them.
func (r Remote) SupportsVnet(vnet int) bool {
	if len(r.SupportedVnets) == 0 {
		return true
	}

	for _, v := range r.SupportedVnets {
		if v == vnet {
			return true
		}
	}

	return false
}

// Node represents an endpoint or a router.
type Node interface {
	ListRemotes() []Remote
	Name() string
}

type routerNode struct {
	id      int
	name    string
	unit    *routing.Unit
	remotes []Remote
	inDirs  []routing.Direction
}

func (rn *routerNode) ListRemotes() []Remote {
	return rn.remotes
}

func (rn *routerNode) Name() string {
	return rn.name
}

func (rn *routerNode) addInport(dirn routing.Direction) int {
	rn.inDirs = append(rn.inDirs, dirn)
	return len(rn.inDirs) - 1
}

type endpointNode struct {
	id     int
	name   string
	router *routerNode
	remote Remote
}

func (en *endpointNode) ListRemotes() []Remote {
	return []Remote{en.remote}
}

func (en *endpointNode) Name() string {
	return en.name
}

// Router can help establish the routes of a network.
type Router interface {
	EstablishRoute(nodes []Node) error
}

// shortestPathRouter fills every routing table with the endpoints that each
// link leads to along a minimum-weight path. A link that lies on several
// minimum-weight paths appears in several entries; the routing unit breaks
// the tie.
type shortestPathRouter struct {
	numVnets int
}

func (r shortestPathRouter) EstablishRoute(nodes []Node) error {
	index := make(map[Node]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
	}

	dists := make([][][]int, r.numVnets)
	for vnet := range dists {
		dists[vnet] = r.allPairsDistances(nodes, index, vnet)
	}

	for _, n := range nodes {
		rn, ok := n.(*routerNode)
		if !ok {
			continue
		}

		if err := r.fillTable(rn, nodes, index, dists); err != nil {
			return err
		}
	}

	return nil
}

// allPairsDistances computes the shortest distances over the links that
// carry the vnet.
func (r shortestPathRouter) allPairsDistances(
	nodes []Node,
	index map[Node]int,
	vnet int,
) [][]int {
	n := len(nodes)
	dist := make([][]int, n)

	for i := range dist {
		dist[i] = make([]int, n)
		for j := range dist[i] {
			dist[i][j] = math.MaxInt
		}

		dist[i][i] = 0
	}

	for i, node := range nodes {
		for _, remote := range node.ListRemotes() {
			if !remote.SupportsVnet(vnet) {
				continue
			}

			j := index[remote.RemoteNode]
			if remote.Weight < dist[i][j] {
				dist[i][j] = remote.Weight
			}
		}
	}

	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			if dist[i][k] == math.MaxInt {
				continue
			}

			for j := 0; j < n; j++ {
				if dist[k][j] == math.MaxInt {
					continue
				}

				if d := dist[i][k] + dist[k][j]; d < dist[i][j] {
					dist[i][j] = d
				}
			}
		}
	}

	return dist
}

func (r shortestPathRouter) fillTable(
	rn *routerNode,
	nodes []Node,
	index map[Node]int,
	dists [][][]int,
) error {
	self := index[rn]

	for _, remote := range rn.remotes {
		next := index[remote.RemoteNode]
		entry := make([]routing.DestSet, r.numVnets)

		for vnet, dist := range dists {
			if remote.SupportsVnet(vnet) {
				entry[vnet] = r.reachable(self, next, remote.Weight,
					nodes, index, dist)
			}
		}

		rn.unit.AddRoute(entry)
		rn.unit.AddWeight(remote.Weight)
		rn.unit.AddOutDirection(remote.Direction, remote.LocalPort)
	}

	for port, dirn := range rn.inDirs {
		rn.unit.AddInDirection(dirn, port)
	}

	if err := rn.unit.Seal(); err != nil {
		return errors.Wrapf(err, "establishing routes of %s", rn.name)
	}

	return nil
}

// reachable returns the endpoints whose shortest path from self starts with
// the link of the given weight toward next.
func (r shortestPathRouter) reachable(
	self, next, weight int,
	nodes []Node,
	index map[Node]int,
	dist [][]int,
) *netdest.NetDest {
	reach := netdest.New()

	for _, n := range nodes {
		en, ok := n.(*endpointNode)
		if !ok {
			continue
		}

		e := index[en]
		if dist[next][e] == math.MaxInt || dist[self][e] == math.MaxInt {
			continue
		}

		if dist[self][e] == weight+dist[next][e] {
			reach.Add(en.id)
		}
	}

	return reach
}
