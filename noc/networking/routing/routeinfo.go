// Package routing decides, for every packet header that arrives at a router,
// the output port the packet must take next.
package routing

// DestSet is a set of endpoints. The routing unit only needs to know whether
// two sets share at least one endpoint.
type DestSet interface {
	Intersects(other DestSet) bool
}

// Keyed is implemented by destination sets that can be identified by a
// string. Keyed sets can use the candidate cache of a Unit.
type Keyed interface {
	Key() string
}

// RouteInfo carries the routing-relevant fields of a packet header.
type RouteInfo struct {
	DestRouter int
	Vnet       int
	NetDest    DestSet
}
