package routing

import (
	"math"

	"github.com/pkg/errors"
)

// Table keeps, for every virtual network, the set of endpoints that each
// outgoing link can reach, together with one weight per link. The link index
// of a table entry is the output port index of the link.
type Table struct {
	routes   [][]DestSet
	weights  []int
	numLinks int
}

// NewTable creates an empty routing table.
func NewTable() *Table {
	return &Table{}
}

// AddRoute appends the entry of the next link. The entry holds one
// destination set per virtual network. Virtual networks missing from the
// entry, or nil sets, mean the link carries no traffic of that vnet.
func (t *Table) AddRoute(entry []DestSet) {
	link := t.numLinks
	t.numLinks++

	for len(t.routes) < len(entry) {
		t.routes = append(t.routes, nil)
	}

	for vnet, dest := range entry {
		row := t.routes[vnet]
		for len(row) < link {
			row = append(row, nil)
		}

		t.routes[vnet] = append(row, dest)
	}
}

// AddWeight appends the weight of the next link. Lower weights are preferred.
func (t *Table) AddWeight(w int) {
	t.weights = append(t.weights, w)
}

// NumVnets returns the number of virtual networks that have any entry.
func (t *Table) NumVnets() int {
	return len(t.routes)
}

// NumLinks returns the number of links that have been given a route.
func (t *Table) NumLinks() int {
	return t.numLinks
}

// Weight returns the weight of a link.
func (t *Table) Weight(link int) int {
	return t.weights[link]
}

// Entry returns the destination set of a link on a vnet, or nil if the link
// does not carry the vnet.
func (t *Table) Entry(vnet, link int) DestSet {
	if vnet < 0 || vnet >= len(t.routes) {
		return nil
	}

	row := t.routes[vnet]
	if link < 0 || link >= len(row) {
		return nil
	}

	return row[link]
}

// Validate checks that every link with a route also has a weight, so that
// lookups never run past the weight table.
func (t *Table) Validate() error {
	if len(t.weights) != t.numLinks {
		return errors.Errorf(
			"routing table has %d routes but %d weights",
			t.numLinks, len(t.weights))
	}

	for vnet, row := range t.routes {
		if len(row) > len(t.weights) {
			return errors.Errorf(
				"vnet %d has %d entries but only %d weights",
				vnet, len(row), len(t.weights))
		}
	}

	return nil
}

// Candidates returns the links with the minimum weight among all the links
// whose destination set intersects dest, in ascending link order.
func (t *Table) Candidates(vnet int, dest DestSet) []int {
	if vnet < 0 || vnet >= len(t.routes) {
		return nil
	}

	row := t.routes[vnet]
	minWeight := math.MaxInt

	for link, entry := range row {
		if entry == nil || !dest.Intersects(entry) {
			continue
		}

		if t.weights[link] <= minWeight {
			minWeight = t.weights[link]
		}
	}

	var candidates []int

	for link, entry := range row {
		if entry == nil || !dest.Intersects(entry) {
			continue
		}

		if t.weights[link] == minWeight {
			candidates = append(candidates, link)
		}
	}

	return candidates
}
