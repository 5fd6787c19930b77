package routing

import (
	"fmt"
	"math/rand/v2"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/sarchlab/nocroute/sim/hooking"
)

// HookPosOutportComputed marks the moment an output port has been computed.
// The hook item is the RouteInfo and the detail is a Decision.
var HookPosOutportComputed = &hooking.HookPos{Name: "OutportComputed"}

// Decision describes one routing decision.
type Decision struct {
	Router           int
	Mode             Mode
	Inport           int
	InportDirection  Direction
	Outport          int
	OutportDirection Direction
	Local            bool
}

func (d Decision) String() string {
	return fmt.Sprintf("router %d: %s(%d) -> %s(%d) [%s, local=%t]",
		d.Router,
		d.InportDirection, d.Inport,
		d.OutportDirection, d.Outport,
		d.Mode, d.Local)
}

type candidateKey struct {
	vnet int
	dest string
}

// Unit is the routing unit of one router. The topology builder fills its
// table and port directory, then seals it. After sealing, the unit only
// reads its state.
type Unit struct {
	hooking.HookableBase

	name      string
	id        int
	params    Params
	algorithm Algorithm
	table     *Table
	dirs      *PortDirectory
	metrics   *Metrics
	cache     *lru.Cache[candidateKey, []int]
	sealed    bool

	rngLock sync.Mutex
	rng     *rand.Rand
}

// Name returns the name of the unit.
func (u *Unit) Name() string {
	return u.name
}

// RouterID returns the id of the router the unit belongs to.
func (u *Unit) RouterID() int {
	return u.id
}

// Mode returns the mode of the unit's algorithm.
func (u *Unit) Mode() Mode {
	return u.algorithm.Mode()
}

// Table returns the routing table of the unit.
func (u *Unit) Table() *Table {
	return u.table
}

// Directory returns the port directory of the unit.
func (u *Unit) Directory() *PortDirectory {
	return u.dirs
}

// AddRoute appends the routing table entry of the next output link.
func (u *Unit) AddRoute(entry []DestSet) {
	u.mustNotBeSealed()
	u.table.AddRoute(entry)
}

// AddWeight appends the weight of the next output link.
func (u *Unit) AddWeight(w int) {
	u.mustNotBeSealed()
	u.table.AddWeight(w)
}

// AddInDirection registers the direction of an input port.
func (u *Unit) AddInDirection(dirn Direction, idx int) {
	u.mustNotBeSealed()
	u.dirs.AddInDirection(dirn, idx)
}

// AddOutDirection registers the direction of an output port.
func (u *Unit) AddOutDirection(dirn Direction, idx int) {
	u.mustNotBeSealed()
	u.dirs.AddOutDirection(dirn, idx)
}

func (u *Unit) mustNotBeSealed() {
	if u.sealed {
		panic(fmt.Sprintf("routing unit %s is sealed", u.name))
	}
}

// Seal validates the routing table and freezes the unit. It must be called
// once the topology is built and before any packet is routed.
func (u *Unit) Seal() error {
	if err := u.table.Validate(); err != nil {
		return errors.Wrapf(err, "routing unit %s", u.name)
	}

	u.sealed = true

	return nil
}

// Sealed tells if the unit has been sealed.
func (u *Unit) Sealed() bool {
	return u.sealed
}

// ComputeOutport returns the output port of a packet that arrived through
// the given input port. Packets at their destination router always use the
// routing table, because several endpoints may hang off the same Local
// direction. Misconfigurations raise a Fault.
func (u *Unit) ComputeOutport(
	route RouteInfo,
	inport int,
	inportDirn Direction,
) int {
	if u.metrics != nil {
		defer u.countFault()
	}

	if !u.sealed {
		RaiseInvariant(u.Mode(), u.id, "routing unit %s is not sealed", u.name)
	}

	local := route.DestRouter == u.id

	var outport int
	if local {
		outport = u.SelectLink(route.Vnet, route.NetDest)
	} else {
		outport = u.algorithm.ComputeOutport(u, route, inport, inportDirn)
	}

	u.outportMustBeValid(outport)

	if u.metrics != nil {
		u.metrics.Decisions(u.Mode(), pathLabel(local)).Inc()
	}

	if u.NumHooks() > 0 {
		u.InvokeHook(hooking.HookCtx{
			Domain: u,
			Pos:    HookPosOutportComputed,
			Item:   route,
			Detail: Decision{
				Router:           u.id,
				Mode:             u.Mode(),
				Inport:           inport,
				InportDirection:  inportDirn,
				Outport:          outport,
				OutportDirection: u.dirs.OutDirection(outport),
				Local:            local,
			},
		})
	}

	return outport
}

func pathLabel(local bool) string {
	if local {
		return "local"
	}

	return "algorithm"
}

func (u *Unit) countFault() {
	r := recover()
	if r == nil {
		return
	}

	if f, ok := AsFault(r); ok {
		u.metrics.Faults(f.Kind).Inc()
	}

	panic(r)
}

func (u *Unit) outportMustBeValid(outport int) {
	if outport < 0 {
		RaiseInvariant(u.Mode(), u.id, "invalid outport %d", outport)
	}

	if outport >= u.table.NumLinks() && !u.dirs.HasOutport(outport) {
		RaiseInvariant(u.Mode(), u.id, "outport %d does not exist", outport)
	}
}

// Resolve returns the output port registered for the direction.
func (u *Unit) Resolve(dirn Direction) int {
	idx, ok := u.dirs.Outport(dirn)
	if !ok {
		RaiseInvariant(u.Mode(), u.id,
			"outport direction %s is not registered", dirn)
	}

	return idx
}

// SelectLink picks a link from the routing table. Among the links that can
// reach dest with the minimum weight, ordered vnets always take the lowest
// link so that their packets follow one path; unordered vnets spread the
// load randomly.
func (u *Unit) SelectLink(vnet int, dest DestSet) int {
	if dest == nil {
		RaiseInvariant(u.Mode(), u.id,
			"route on vnet %d has no destination set", vnet)
	}

	candidates := u.candidates(vnet, dest)
	if len(candidates) == 0 {
		RaiseUnreachable(u.Mode(), u.id,
			"no route exists from this router for vnet %d", vnet)
	}

	if u.params.IsVnetOrdered(vnet) {
		return candidates[0]
	}

	return candidates[u.pick(len(candidates))]
}

func (u *Unit) candidates(vnet int, dest DestSet) []int {
	if u.cache == nil {
		return u.table.Candidates(vnet, dest)
	}

	keyed, ok := dest.(Keyed)
	if !ok {
		return u.table.Candidates(vnet, dest)
	}

	key := candidateKey{vnet: vnet, dest: keyed.Key()}
	if c, found := u.cache.Get(key); found {
		return c
	}

	c := u.table.Candidates(vnet, dest)
	u.cache.Add(key, c)

	return c
}

func (u *Unit) pick(n int) int {
	if n == 1 {
		return 0
	}

	u.rngLock.Lock()
	defer u.rngLock.Unlock()

	return u.rng.IntN(n)
}
