package datarecording

import (
	"fmt"
	"sync/atomic"

	"github.com/sarchlab/nocroute/noc/networking/routing"
	"github.com/sarchlab/nocroute/sim/hooking"
)

// RouteDecisionTable is the table that RouteRecorder writes to.
const RouteDecisionTable = "route_decisions"

// RouteDecision is a row of the route decision table.
type RouteDecision struct {
	Seq              uint64
	Router           int
	Mode             string
	Vnet             int
	DestRouter       int
	Dest             string
	Inport           int
	InportDirection  string
	Outport          int
	OutportDirection string
	Local            bool
}

// RouteRecorder is a hook that records every output port computed by the
// routing units it is attached to.
type RouteRecorder struct {
	recorder DataRecorder
	seq      atomic.Uint64
}

// NewRouteRecorder creates a RouteRecorder and the table it writes to.
func NewRouteRecorder(recorder DataRecorder) *RouteRecorder {
	recorder.CreateTable(RouteDecisionTable, RouteDecision{})

	return &RouteRecorder{recorder: recorder}
}

// Func records the decision.
func (r *RouteRecorder) Func(ctx hooking.HookCtx) {
	if ctx.Pos != routing.HookPosOutportComputed {
		return
	}

	route := ctx.Item.(routing.RouteInfo)
	decision := ctx.Detail.(routing.Decision)

	entry := RouteDecision{
		Seq:              r.seq.Add(1),
		Router:           decision.Router,
		Mode:             decision.Mode.String(),
		Vnet:             route.Vnet,
		DestRouter:       route.DestRouter,
		Inport:           decision.Inport,
		InportDirection:  decision.InportDirection.String(),
		Outport:          decision.Outport,
		OutportDirection: decision.OutportDirection.String(),
		Local:            decision.Local,
	}

	if route.NetDest != nil {
		entry.Dest = fmtDest(route.NetDest)
	}

	r.recorder.InsertData(RouteDecisionTable, entry)
}

// Flush writes the buffered decisions.
func (r *RouteRecorder) Flush() {
	r.recorder.Flush()
}

func fmtDest(d routing.DestSet) string {
	if s, ok := d.(fmt.Stringer); ok {
		return s.String()
	}

	return ""
}
