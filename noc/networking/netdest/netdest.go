// Package netdest provides a set of endpoint ids that can be used as the
// destination set of routes.
package netdest

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/sarchlab/nocroute/noc/networking/routing"
)

// NetDest is a set of endpoint ids.
type NetDest struct {
	bits *bitset.BitSet
}

// New creates a NetDest that holds the given ids.
func New(ids ...int) *NetDest {
	d := &NetDest{bits: bitset.New(0)}
	for _, id := range ids {
		d.Add(id)
	}

	return d
}

// Add inserts an id into the set.
func (d *NetDest) Add(id int) *NetDest {
	if id < 0 {
		panic(fmt.Sprintf("endpoint id %d is negative", id))
	}

	d.bits.Set(uint(id))

	return d
}

// Contains tells if the id is in the set.
func (d *NetDest) Contains(id int) bool {
	return id >= 0 && d.bits.Test(uint(id))
}

// Count returns the number of ids in the set.
func (d *NetDest) Count() int {
	return int(d.bits.Count())
}

// IsEmpty tells if the set holds no id.
func (d *NetDest) IsEmpty() bool {
	return d.bits.None()
}

// Elements returns the ids in ascending order.
func (d *NetDest) Elements() []int {
	ids := make([]int, 0, d.Count())
	for i, ok := d.bits.NextSet(0); ok; i, ok = d.bits.NextSet(i + 1) {
		ids = append(ids, int(i))
	}

	return ids
}

// Union returns a new set that holds the ids of both sets.
func (d *NetDest) Union(other *NetDest) *NetDest {
	return &NetDest{bits: d.bits.Union(other.bits)}
}

// Intersects tells if the two sets share an id.
func (d *NetDest) Intersects(other routing.DestSet) bool {
	switch o := other.(type) {
	case *NetDest:
		return d.bits.IntersectionCardinality(o.bits) > 0
	case interface{ Contains(id int) bool }:
		for _, id := range d.Elements() {
			if o.Contains(id) {
				return true
			}
		}

		return false
	default:
		panic(fmt.Sprintf("cannot intersect a NetDest with %T", other))
	}
}

// Key identifies the content of the set.
func (d *NetDest) Key() string {
	return d.bits.String()
}

func (d *NetDest) String() string {
	return fmt.Sprint(d.Elements())
}
