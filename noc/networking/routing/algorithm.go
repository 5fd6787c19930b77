package routing

// Site is the view of a router that algorithms work against.
type Site interface {
	// RouterID returns the id of the router that is making the decision.
	RouterID() int

	// Resolve returns the output port of a direction. It raises an
	// Invariant fault if the topology never registered the direction.
	Resolve(dirn Direction) int

	// SelectLink picks an output link from the routing table. It raises an
	// Unreachable fault if no link leads to dest.
	SelectLink(vnet int, dest DestSet) int
}

// Algorithm computes the output port of a packet that has not arrived at its
// destination router.
type Algorithm interface {
	Mode() Mode
	ComputeOutport(
		site Site,
		route RouteInfo,
		inport int,
		inportDirn Direction,
	) int
}

// TableLookupAlgorithm routes with the routing table only. Routes can be
// biased with link weights; correct weights are what keeps table-based
// routing free of deadlocks.
type TableLookupAlgorithm struct{}

// Mode returns TableLookup.
func (TableLookupAlgorithm) Mode() Mode {
	return TableLookup
}

// ComputeOutport selects a link from the routing table.
func (TableLookupAlgorithm) ComputeOutport(
	site Site,
	route RouteInfo,
	_ int,
	_ Direction,
) int {
	return site.SelectLink(route.Vnet, route.NetDest)
}

// CustomAlgorithm is the place to plug a topology-specific algorithm in. It
// faults whenever it is reached.
type CustomAlgorithm struct{}

// Mode returns Custom.
func (CustomAlgorithm) Mode() Mode {
	return Custom
}

// ComputeOutport always raises an Invariant fault.
func (CustomAlgorithm) ComputeOutport(
	site Site,
	_ RouteInfo,
	_ int,
	_ Direction,
) int {
	RaiseInvariant(Custom, site.RouterID(),
		"custom routing placeholder executed")

	return -1
}
