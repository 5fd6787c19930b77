package networkconnector

import (
	"fmt"

	"github.com/sarchlab/nocroute/noc/networking/fattree"
	"github.com/sarchlab/nocroute/noc/networking/routing"
)

func (c *Connector) mustBeEmpty(topology string) {
	if len(c.routers) > 0 {
		panic(fmt.Sprintf("a %s must be built on an empty connector", topology))
	}
}

// AddMesh adds a rows x cols mesh with one endpoint per router. Router i sits
// at column i % cols and row i / cols. Horizontal links weigh 1 and vertical
// links weigh 2 so that table routing prefers to travel along X first.
func (c *Connector) AddMesh(rows, cols int) {
	c.mustBeEmpty("mesh")

	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("invalid mesh size %dx%d", rows, cols))
	}

	for i := 0; i < rows*cols; i++ {
		c.AddRouter()
	}

	for i := 0; i < rows*cols; i++ {
		c.AddEndpoint(i)
	}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols-1; col++ {
			west := row*cols + col
			east := west + 1

			c.AddLink(LinkSpec{
				Src: west, Dst: east,
				SrcOutport: "East", DstInport: "West",
				Weight: 1,
			})
			c.AddLink(LinkSpec{
				Src: east, Dst: west,
				SrcOutport: "West", DstInport: "East",
				Weight: 1,
			})
		}
	}

	for row := 0; row < rows-1; row++ {
		for col := 0; col < cols; col++ {
			south := row*cols + col
			north := south + cols

			c.AddLink(LinkSpec{
				Src: south, Dst: north,
				SrcOutport: "North", DstInport: "South",
				Weight: 2,
			})
			c.AddLink(LinkSpec{
				Src: north, Dst: south,
				SrcOutport: "South", DstInport: "North",
				Weight: 2,
			})
		}
	}
}

// AddRing adds a bidirectional ring of n routers with one endpoint per
// router.
func (c *Connector) AddRing(n int) {
	c.mustBeEmpty("ring")

	if n < 2 {
		panic(fmt.Sprintf("a ring needs at least 2 routers, got %d", n))
	}

	for i := 0; i < n; i++ {
		c.AddRouter()
	}

	for i := 0; i < n; i++ {
		c.AddEndpoint(i)
	}

	for i := 0; i < n; i++ {
		next := (i + 1) % n

		c.AddLink(LinkSpec{
			Src: i, Dst: next,
			SrcOutport: "East", DstInport: "West",
			Weight: 1,
		})
		c.AddLink(LinkSpec{
			Src: next, Dst: i,
			SrcOutport: "West", DstInport: "East",
			Weight: 1,
		})
	}
}

// AddFatTree adds a fat-tree of degree-k switches with the given number of
// pods, zero meaning k pods. Each edge router serves one endpoint, so that
// endpoint i attaches to router i. Edge and aggregation routers of a pod
// are fully connected. The aggregation router at position p connects to
// the core routers p*k/2 to (p+1)*k/2-1.
func (c *Connector) AddFatTree(k, pods int) {
	c.mustBeEmpty("fat-tree")

	layout := fattree.LayoutFor(routing.Params{TreeDegree: k, NumPods: pods})
	if layout.Pods < 0 || layout.Pods > k {
		panic(fmt.Sprintf("a degree-%d fat-tree cannot have %d pods", k, pods))
	}

	for i := 0; i < layout.NumRouters(); i++ {
		c.AddRouter()
	}

	for i := 0; i < layout.NumEdge(); i++ {
		c.AddEndpoint(i)
	}

	halfK := layout.HalfK
	aggBase := layout.NumEdge()
	coreBase := aggBase + layout.NumAggregation()

	for pod := 0; pod < layout.Pods; pod++ {
		for e := 0; e < halfK; e++ {
			edge := pod*halfK + e

			for a := 0; a < halfK; a++ {
				agg := aggBase + pod*halfK + a
				c.connectPair(edge, agg,
					routing.AggPort(a), routing.EdgePort(e))
			}
		}
	}

	for pod := 0; pod < layout.Pods; pod++ {
		for a := 0; a < halfK; a++ {
			agg := aggBase + pod*halfK + a

			for i := 0; i < halfK; i++ {
				core := coreBase + a*halfK + i
				c.connectPair(agg, core,
					routing.CorePort(i), routing.AggPort(pod))
			}
		}
	}
}

// connectPair links two routers in both directions. The lower router reaches
// the upper one through up and is reached back through down.
func (c *Connector) connectPair(lower, upper int, up, down routing.Direction) {
	c.AddLink(LinkSpec{
		Src: lower, Dst: upper,
		SrcOutport: up.String(), DstInport: down.String(),
		Weight: 1,
	})
	c.AddLink(LinkSpec{
		Src: upper, Dst: lower,
		SrcOutport: down.String(), DstInport: up.String(),
		Weight: 1,
	})
}
