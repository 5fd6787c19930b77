package routing_test

import (
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sarchlab/nocroute/noc/networking/netdest"
	"github.com/sarchlab/nocroute/noc/networking/routing"
	"github.com/sarchlab/nocroute/sim/hooking"
	"go.uber.org/mock/gomock"
)

func addLink(u *routing.Unit, dirn routing.Direction, w int, dests ...routing.DestSet) {
	idx := u.Table().NumLinks()
	u.AddRoute(dests)
	u.AddWeight(w)
	u.AddOutDirection(dirn, idx)
}

var _ = Describe("Unit", func() {
	var (
		mockCtrl  *gomock.Controller
		algorithm *MockAlgorithm
		params    routing.Params
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		algorithm = NewMockAlgorithm(mockCtrl)
		algorithm.EXPECT().Mode().Return(routing.DimensionOrder).AnyTimes()
		params = routing.Params{
			Mode:         routing.DimensionOrder,
			NumRows:      2,
			NumCols:      2,
			OrderedVnets: []int{0},
			Seed:         42,
		}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	buildUnit := func() *routing.Unit {
		u := routing.MakeBuilder().
			WithParams(params).
			WithAlgorithm(algorithm).
			Build("Router1", 1)

		addLink(u, routing.Local, 1, netdest.New(1), netdest.New(1))
		addLink(u, routing.Local, 1, netdest.New(5), netdest.New(5))
		addLink(u, routing.West, 1, netdest.New(0, 2), netdest.New(0, 2))
		addLink(u, routing.North, 1, netdest.New(2, 3), netdest.New(2, 3))
		u.AddInDirection(routing.Local, 0)
		u.AddInDirection(routing.West, 1)

		Expect(u.Seal()).To(Succeed())

		return u
	}

	Context("when the packet is at its destination router", func() {
		It("should use the routing table whatever the mode", func() {
			u := buildUnit()
			route := routing.RouteInfo{
				DestRouter: 1,
				Vnet:       0,
				NetDest:    netdest.New(5),
			}

			Expect(u.ComputeOutport(route, 1, routing.West)).To(Equal(1))
		})
	})

	Context("when the packet is not at its destination router", func() {
		It("should ask the algorithm", func() {
			u := buildUnit()
			route := routing.RouteInfo{DestRouter: 3, NetDest: netdest.New(3)}
			algorithm.EXPECT().
				ComputeOutport(u, route, 0, routing.Local).
				Return(3)

			Expect(u.ComputeOutport(route, 0, routing.Local)).To(Equal(3))
		})

		It("should fault if the algorithm returns a negative port", func() {
			u := buildUnit()
			route := routing.RouteInfo{DestRouter: 3, NetDest: netdest.New(3)}
			algorithm.EXPECT().
				ComputeOutport(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return(-1)

			f := routing.CatchFault(func() {
				u.ComputeOutport(route, 0, routing.Local)
			})

			Expect(f).NotTo(BeNil())
			Expect(f.Kind).To(Equal(routing.Invariant))
		})

		It("should fault if the algorithm returns a port that does not exist", func() {
			u := buildUnit()
			route := routing.RouteInfo{DestRouter: 3, NetDest: netdest.New(3)}
			algorithm.EXPECT().
				ComputeOutport(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return(9)

			f := routing.CatchFault(func() {
				u.ComputeOutport(route, 0, routing.Local)
			})

			Expect(f).NotTo(BeNil())
			Expect(f.Kind).To(Equal(routing.Invariant))
		})
	})

	It("should fault with the mode and router when nothing is reachable", func() {
		u := buildUnit()

		f := routing.CatchFault(func() {
			u.SelectLink(0, netdest.New(9))
		})

		Expect(f).NotTo(BeNil())
		Expect(f.Kind).To(Equal(routing.Unreachable))
		Expect(f.Router).To(Equal(1))
		Expect(f.Mode).To(Equal(routing.DimensionOrder))
	})

	It("should fault on a route without a destination set", func() {
		u := buildUnit()

		f := routing.CatchFault(func() {
			u.SelectLink(0, nil)
		})

		Expect(f).NotTo(BeNil())
		Expect(f.Kind).To(Equal(routing.Invariant))
		Expect(f.Router).To(Equal(1))
	})

	It("should fault on unregistered directions", func() {
		u := buildUnit()

		f := routing.CatchFault(func() { u.Resolve(routing.South) })

		Expect(f).NotTo(BeNil())
		Expect(f.Kind).To(Equal(routing.Invariant))
		Expect(f.Msg).To(ContainSubstring("South"))
	})

	It("should resolve registered directions", func() {
		u := buildUnit()

		Expect(u.Resolve(routing.North)).To(Equal(3))
	})

	Context("with an ordered vnet", func() {
		It("should always pick the lowest candidate", func() {
			u := buildUnit()
			dest := netdest.New(2)

			for i := 0; i < 100; i++ {
				Expect(u.SelectLink(0, dest)).To(Equal(2))
			}
		})
	})

	Context("with an unordered vnet", func() {
		It("should only pick minimum weight links, roughly uniformly", func() {
			u := buildUnit()
			dest := netdest.New(2)
			counts := map[int]int{}

			for i := 0; i < 2000; i++ {
				counts[u.SelectLink(1, dest)]++
			}

			Expect(counts).To(HaveLen(2))
			Expect(counts[2]).To(BeNumerically("~", 1000, 150))
			Expect(counts[3]).To(BeNumerically("~", 1000, 150))
		})

		It("should repeat itself with the same seed", func() {
			pick := func() []int {
				u := routing.MakeBuilder().
					WithParams(params).
					WithAlgorithm(algorithm).
					WithRand(rand.New(rand.NewPCG(7, 7))).
					Build("Router1", 1)
				addLink(u, routing.East, 1, nil, netdest.New(0))
				addLink(u, routing.West, 1, nil, netdest.New(0))
				addLink(u, routing.North, 1, nil, netdest.New(0))
				Expect(u.Seal()).To(Succeed())

				var picks []int
				for i := 0; i < 50; i++ {
					picks = append(picks, u.SelectLink(1, netdest.New(0)))
				}

				return picks
			}

			Expect(pick()).To(Equal(pick()))
		})
	})

	It("should give the same answers with a candidate cache", func() {
		u := routing.MakeBuilder().
			WithParams(params).
			WithAlgorithm(algorithm).
			WithCandidateCacheSize(16).
			Build("Router1", 1)
		addLink(u, routing.Local, 1, netdest.New(1))
		addLink(u, routing.West, 2, netdest.New(0, 2))
		addLink(u, routing.North, 1, netdest.New(2, 3))
		Expect(u.Seal()).To(Succeed())

		for i := 0; i < 3; i++ {
			Expect(u.SelectLink(0, netdest.New(2))).To(Equal(2))
			Expect(u.SelectLink(0, netdest.New(0))).To(Equal(1))
		}
	})

	It("should refuse to route before sealing", func() {
		u := routing.MakeBuilder().
			WithParams(params).
			WithAlgorithm(algorithm).
			Build("Router1", 1)

		f := routing.CatchFault(func() {
			u.ComputeOutport(routing.RouteInfo{DestRouter: 1}, 0, routing.Local)
		})

		Expect(f).NotTo(BeNil())
		Expect(f.Kind).To(Equal(routing.Invariant))
	})

	It("should refuse changes after sealing", func() {
		u := buildUnit()

		Expect(u.Sealed()).To(BeTrue())
		Expect(func() { u.AddWeight(1) }).To(Panic())
		Expect(func() { u.AddOutDirection(routing.South, 4) }).To(Panic())
	})

	It("should not seal a table with missing weights", func() {
		u := routing.MakeBuilder().
			WithParams(params).
			WithAlgorithm(algorithm).
			Build("Router1", 1)
		u.AddRoute([]routing.DestSet{netdest.New(0)})

		Expect(u.Seal()).To(MatchError(ContainSubstring("Router1")))
	})

	It("should report decisions to hooks", func() {
		u := buildUnit()
		var decisions []routing.Decision
		u.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			Expect(ctx.Pos).To(Equal(routing.HookPosOutportComputed))
			decisions = append(decisions, ctx.Detail.(routing.Decision))
		}))

		route := routing.RouteInfo{DestRouter: 1, NetDest: netdest.New(1)}
		u.ComputeOutport(route, 1, routing.West)

		Expect(decisions).To(ConsistOf(routing.Decision{
			Router:           1,
			Mode:             routing.DimensionOrder,
			Inport:           1,
			InportDirection:  routing.West,
			Outport:          0,
			OutportDirection: routing.Local,
			Local:            true,
		}))
	})

	It("should count decisions and faults", func() {
		reg := prometheus.NewRegistry()
		metrics := routing.NewMetrics(reg)
		u := routing.MakeBuilder().
			WithParams(params).
			WithAlgorithm(algorithm).
			WithMetrics(metrics).
			Build("Router1", 1)
		addLink(u, routing.Local, 1, netdest.New(1))
		Expect(u.Seal()).To(Succeed())

		u.ComputeOutport(
			routing.RouteInfo{DestRouter: 1, NetDest: netdest.New(1)},
			0, routing.Local)
		routing.CatchFault(func() {
			u.ComputeOutport(
				routing.RouteInfo{DestRouter: 1, NetDest: netdest.New(4)},
				0, routing.Local)
		})

		Expect(testutil.ToFloat64(
			metrics.Decisions(routing.DimensionOrder, "local"))).To(Equal(1.0))
		Expect(testutil.ToFloat64(
			metrics.Faults(routing.Unreachable))).To(Equal(1.0))
	})
})

var _ = Describe("Builder", func() {
	It("should default to table lookup", func() {
		u := routing.MakeBuilder().Build("Router0", 0)
		addLink(u, routing.East, 1, netdest.New(1))
		Expect(u.Seal()).To(Succeed())

		Expect(u.Mode()).To(Equal(routing.TableLookup))
		Expect(u.ComputeOutport(
			routing.RouteInfo{DestRouter: 1, NetDest: netdest.New(1)},
			0, routing.Local)).To(Equal(0))
	})

	It("should require an algorithm for geometric modes", func() {
		Expect(func() {
			routing.MakeBuilder().
				WithParams(routing.Params{
					Mode:    routing.DimensionOrder,
					NumRows: 1,
					NumCols: 1,
				}).
				Build("Router0", 0)
		}).To(Panic())
	})

	It("should refuse an algorithm of another mode", func() {
		Expect(func() {
			routing.MakeBuilder().
				WithParams(routing.Params{Mode: routing.TableLookup}).
				WithAlgorithm(routing.CustomAlgorithm{}).
				Build("Router0", 0)
		}).To(Panic())
	})

	It("should fault when the custom placeholder is reached", func() {
		u := routing.MakeBuilder().
			WithParams(routing.Params{Mode: routing.Custom}).
			Build("Router0", 0)
		addLink(u, routing.Local, 1, netdest.New(0))
		Expect(u.Seal()).To(Succeed())

		f := routing.CatchFault(func() {
			u.ComputeOutport(
				routing.RouteInfo{DestRouter: 2, NetDest: netdest.New(2)},
				0, routing.Local)
		})

		Expect(f).NotTo(BeNil())
		Expect(f.Kind).To(Equal(routing.Invariant))
		Expect(f.Mode).To(Equal(routing.Custom))
	})
})
