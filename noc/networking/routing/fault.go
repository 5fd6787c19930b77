package routing

import "fmt"

// FaultKind classifies a routing fault.
type FaultKind int

// The kinds of routing faults.
const (
	// Unreachable means no link can carry the packet toward its destination.
	Unreachable FaultKind = iota + 1

	// Invariant means the routing logic and the topology disagree.
	Invariant
)

func (k FaultKind) String() string {
	switch k {
	case Unreachable:
		return "unreachable"
	case Invariant:
		return "invariant"
	default:
		return fmt.Sprintf("FaultKind(%d)", int(k))
	}
}

// A Fault reports a topology misconfiguration detected while routing. Faults
// are raised with panic and are never recovered from inside the routing
// unit; the simulation is expected to stop.
type Fault struct {
	Kind   FaultKind
	Mode   Mode
	Router int
	Msg    string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("routing %s fault at router %d (mode %s): %s",
		f.Kind, f.Router, f.Mode, f.Msg)
}

// RaiseUnreachable panics with an Unreachable fault.
func RaiseUnreachable(mode Mode, router int, format string, args ...any) {
	panic(&Fault{
		Kind:   Unreachable,
		Mode:   mode,
		Router: router,
		Msg:    fmt.Sprintf(format, args...),
	})
}

// RaiseInvariant panics with an Invariant fault.
func RaiseInvariant(mode Mode, router int, format string, args ...any) {
	panic(&Fault{
		Kind:   Invariant,
		Mode:   mode,
		Router: router,
		Msg:    fmt.Sprintf(format, args...),
	})
}

// AsFault extracts a Fault from a recovered panic value.
func AsFault(r any) (*Fault, bool) {
	f, ok := r.(*Fault)
	return f, ok
}

// CatchFault runs fn and returns the Fault it panicked with, if any. Panics
// that are not faults pass through.
func CatchFault(fn func()) (f *Fault) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		fault, ok := AsFault(r)
		if !ok {
			panic(r)
		}

		f = fault
	}()

	fn()

	return nil
}
