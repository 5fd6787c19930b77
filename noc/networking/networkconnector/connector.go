// Package networkconnector builds networks of routing units and fills their
// routing tables.
package networkconnector

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sarchlab/nocroute/noc/networking/fattree"
	"github.com/sarchlab/nocroute/noc/networking/routing"
	"github.com/sarchlab/nocroute/sim/hooking"
	"go.uber.org/zap"
)

// LinkSpec describes a unidirectional link between two routers.
type LinkSpec struct {
	Src, Dst   int
	SrcOutport string
	DstInport  string

	// Weight must be positive. Lower weights are preferred.
	Weight int

	// SupportedVnets lists the vnets the link carries. An empty list means
	// all vnets.
	SupportedVnets []int
}

// AlgorithmFactory creates the algorithm shared by all the units of a
// network.
type AlgorithmFactory func(p routing.Params) routing.Algorithm

// Connector assembles routers, endpoints, and links, and establishes the
// routes among them.
type Connector struct {
	params    routing.Params
	numVnets  int
	logger    *zap.Logger
	metrics   *routing.Metrics
	hooks     []hooking.Hook
	cacheSize int
	factory   AlgorithmFactory

	routers     []*routerNode
	endpoints   []*endpointNode
	established bool
}

// MakeConnector creates a connector with a single vnet and table lookup
// routing.
func MakeConnector() Connector {
	return Connector{
		numVnets: 1,
		logger:   zap.NewNop(),
		factory:  AlgorithmFor,
	}
}

// WithParams sets the routing parameters of every unit.
func (c Connector) WithParams(p routing.Params) Connector {
	c.params = p
	return c
}

// WithNumVnets sets the number of virtual networks.
func (c Connector) WithNumVnets(n int) Connector {
	c.numVnets = n
	return c
}

// WithLogger sets the logger.
func (c Connector) WithLogger(l *zap.Logger) Connector {
	c.logger = l
	return c
}

// WithMetrics sets the counters that all the units report to.
func (c Connector) WithMetrics(m *routing.Metrics) Connector {
	c.metrics = m
	return c
}

// WithHook registers a hook on every unit.
func (c Connector) WithHook(h hooking.Hook) Connector {
	c.hooks = append(c.hooks, h)
	return c
}

// WithCandidateCacheSize enables the candidate cache of every unit.
func (c Connector) WithCandidateCacheSize(n int) Connector {
	c.cacheSize = n
	return c
}

// WithAlgorithmFactory replaces the function that creates the algorithm of
// the routing mode.
func (c Connector) WithAlgorithmFactory(f AlgorithmFactory) Connector {
	c.factory = f
	return c
}

// NumRouters returns the number of routers added so far.
func (c *Connector) NumRouters() int {
	return len(c.routers)
}

// NumEndpoints returns the number of endpoints added so far.
func (c *Connector) NumEndpoints() int {
	return len(c.endpoints)
}

// AddRouter adds a router and returns its id.
func (c *Connector) AddRouter() int {
	c.mustNotBeEstablished()

	id := len(c.routers)
	c.routers = append(c.routers, &routerNode{
		id:   id,
		name: fmt.Sprintf("Router%d", id),
	})

	return id
}

// AddEndpoint attaches a new endpoint to a router and returns the endpoint
// id. The endpoint connects through a Local port in each direction.
func (c *Connector) AddEndpoint(router int) int {
	c.mustNotBeEstablished()
	rn := c.routerMustExist(router)

	id := len(c.endpoints)
	en := &endpointNode{
		id:     id,
		name:   fmt.Sprintf("Endpoint%d", id),
		router: rn,
	}

	en.remote = Remote{
		LocalNode:       en,
		LocalPort:       0,
		Direction:       routing.Local,
		RemoteNode:      rn,
		RemotePort:      rn.addInport(routing.Local),
		RemoteDirection: routing.Local,
		Weight:          1,
	}

	rn.remotes = append(rn.remotes, Remote{
		LocalNode:       rn,
		LocalPort:       len(rn.remotes),
		Direction:       routing.Local,
		RemoteNode:      en,
		RemotePort:      0,
		RemoteDirection: routing.Local,
		Weight:          1,
	})

	c.endpoints = append(c.endpoints, en)

	c.logger.Debug("endpoint attached",
		zap.String("endpoint", en.name),
		zap.String("router", rn.name))

	return id
}

// AddLink adds a unidirectional link between two routers.
func (c *Connector) AddLink(l LinkSpec) {
	c.mustNotBeEstablished()
	src := c.routerMustExist(l.Src)
	dst := c.routerMustExist(l.Dst)

	if l.Weight <= 0 {
		panic(fmt.Sprintf("link %s->%s has non-positive weight %d",
			src.name, dst.name, l.Weight))
	}

	outDirn := routing.ParseDirection(l.SrcOutport)
	inDirn := routing.ParseDirection(l.DstInport)

	src.remotes = append(src.remotes, Remote{
		LocalNode:       src,
		LocalPort:       len(src.remotes),
		Direction:       outDirn,
		RemoteNode:      dst,
		RemotePort:      dst.addInport(inDirn),
		RemoteDirection: inDirn,
		Weight:          l.Weight,
		SupportedVnets:  l.SupportedVnets,
	})

	c.logger.Debug("link added",
		zap.String("src", src.name),
		zap.Stringer("outport", outDirn),
		zap.String("dst", dst.name),
		zap.Stringer("inport", inDirn),
		zap.Int("weight", l.Weight))
}

func (c *Connector) routerMustExist(id int) *routerNode {
	if id < 0 || id >= len(c.routers) {
		panic(fmt.Sprintf("router %d does not exist", id))
	}

	return c.routers[id]
}

func (c *Connector) mustNotBeEstablished() {
	if c.established {
		panic("cannot change a network after its routes are established")
	}
}

// EstablishRoute creates the routing units, fills their tables with
// shortest-path routes, and seals them.
func (c *Connector) EstablishRoute() (*Network, error) {
	if c.established {
		return nil, errors.New("routes are already established")
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	algorithm := c.factory(c.params)
	builder := routing.MakeBuilder().
		WithParams(c.params).
		WithAlgorithm(algorithm).
		WithMetrics(c.metrics).
		WithCandidateCacheSize(c.cacheSize)

	nodes := make([]Node, 0, len(c.routers)+len(c.endpoints))

	for _, rn := range c.routers {
		rn.unit = builder.Build(rn.name, rn.id)
		for _, h := range c.hooks {
			rn.unit.AcceptHook(h)
		}

		nodes = append(nodes, rn)
	}

	for _, en := range c.endpoints {
		nodes = append(nodes, en)
	}

	router := shortestPathRouter{numVnets: c.numVnets}
	if err := router.EstablishRoute(nodes); err != nil {
		return nil, err
	}

	c.established = true

	c.logger.Info("routes established",
		zap.Stringer("mode", c.params.Mode),
		zap.Int("routers", len(c.routers)),
		zap.Int("endpoints", len(c.endpoints)),
		zap.Int("vnets", c.numVnets))

	return &Network{
		params:    c.params,
		numVnets:  c.numVnets,
		routers:   c.routers,
		endpoints: c.endpoints,
		maxHops:   2*len(c.routers) + 2,
	}, nil
}

func (c *Connector) validate() error {
	if err := c.params.Validate(); err != nil {
		return errors.Wrap(err, "invalid routing parameters")
	}

	if c.numVnets <= 0 {
		return errors.Errorf("the number of vnets must be positive, got %d",
			c.numVnets)
	}

	if len(c.routers) == 0 {
		return errors.New("the network has no router")
	}

	switch c.params.Mode {
	case routing.DimensionOrder:
		if n := c.params.NumRows * c.params.NumCols; n != len(c.routers) {
			return errors.Errorf("a %dx%d mesh needs %d routers, got %d",
				c.params.NumRows, c.params.NumCols, n, len(c.routers))
		}
	case routing.HierarchicalTree, routing.HierarchicalTreeAdaptive:
		layout := fattree.LayoutFor(c.params)
		if layout.NumRouters() != len(c.routers) {
			return errors.Errorf("the fat-tree needs %d routers, got %d",
				layout.NumRouters(), len(c.routers))
		}
	}

	return nil
}
