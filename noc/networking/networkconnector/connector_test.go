package networkconnector_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sarchlab/nocroute/noc/networking/networkconnector"
	"github.com/sarchlab/nocroute/noc/networking/routing"
	"github.com/sarchlab/nocroute/sim/hooking"
)

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}

func directions(hops []networkconnector.Hop) []routing.Direction {
	dirs := make([]routing.Direction, len(hops))
	for i, h := range hops {
		dirs[i] = h.OutportDirection
	}

	return dirs
}

func faultOf(err error) *routing.Fault {
	var f *routing.Fault
	if errors.As(err, &f) {
		return f
	}

	return nil
}

var _ = Describe("Connector", func() {
	It("should refuse to establish routes without routers", func() {
		c := networkconnector.MakeConnector()

		_, err := c.EstablishRoute()

		Expect(err).To(HaveOccurred())
	})

	It("should refuse invalid params", func() {
		c := networkconnector.MakeConnector().
			WithParams(routing.Params{Mode: routing.DimensionOrder})
		c.AddRing(4)

		_, err := c.EstablishRoute()

		Expect(err).To(MatchError(ContainSubstring("invalid routing parameters")))
	})

	It("should refuse a mesh size that does not match the routers", func() {
		c := networkconnector.MakeConnector().
			WithParams(routing.Params{
				Mode:    routing.DimensionOrder,
				NumRows: 3,
				NumCols: 3,
			})
		c.AddMesh(2, 2)

		_, err := c.EstablishRoute()

		Expect(err).To(MatchError(ContainSubstring("3x3 mesh needs 9 routers")))
	})

	It("should refuse a fat-tree size that does not match the routers", func() {
		c := networkconnector.MakeConnector().
			WithParams(routing.Params{
				Mode:       routing.HierarchicalTree,
				TreeDegree: 4,
			})
		c.AddFatTree(4, 2)

		_, err := c.EstablishRoute()

		Expect(err).To(HaveOccurred())
	})

	It("should refuse to establish routes twice", func() {
		c := networkconnector.MakeConnector()
		c.AddRing(3)

		_, err := c.EstablishRoute()
		Expect(err).NotTo(HaveOccurred())

		_, err = c.EstablishRoute()
		Expect(err).To(HaveOccurred())
		Expect(func() { c.AddRouter() }).To(Panic())
	})

	It("should panic on links to unknown routers", func() {
		c := networkconnector.MakeConnector()
		c.AddRouter()

		Expect(func() {
			c.AddLink(networkconnector.LinkSpec{
				Src: 0, Dst: 1, SrcOutport: "East", DstInport: "West", Weight: 1,
			})
		}).To(Panic())
	})

	It("should panic on non-positive weights", func() {
		c := networkconnector.MakeConnector()
		c.AddRouter()
		c.AddRouter()

		Expect(func() {
			c.AddLink(networkconnector.LinkSpec{
				Src: 0, Dst: 1, SrcOutport: "East", DstInport: "West",
			})
		}).To(Panic())
	})

	It("should panic when building a topology on a non-empty connector", func() {
		c := networkconnector.MakeConnector()
		c.AddRouter()

		Expect(func() { c.AddRing(3) }).To(Panic())
	})

	Context("when routing a mesh with XY", func() {
		var network *networkconnector.Network

		BeforeEach(func() {
			c := networkconnector.MakeConnector().
				WithParams(routing.Params{
					Mode:    routing.DimensionOrder,
					NumRows: 3,
					NumCols: 4,
				}).
				WithNumVnets(2)
			c.AddMesh(3, 4)

			var err error
			network, err = c.EstablishRoute()
			Expect(err).NotTo(HaveOccurred())
		})

		It("should attach endpoint i to router i", func() {
			Expect(network.NumRouters()).To(Equal(12))
			Expect(network.NumEndpoints()).To(Equal(12))
			Expect(network.RouterOf(7)).To(Equal(7))
		})

		It("should deliver every pair along X then Y", func() {
			for src := 0; src < 12; src++ {
				for dst := 0; dst < 12; dst++ {
					hops, err := network.Walk(src, dst, 1)
					Expect(err).NotTo(HaveOccurred())

					dx := abs(src%4 - dst%4)
					dy := abs(src/4 - dst/4)
					Expect(hops).To(HaveLen(dx + dy + 1))

					dirs := directions(hops)
					for i, d := range dirs[:dx] {
						Expect(d).To(BeElementOf(routing.East, routing.West),
							"hop %d of %d->%d", i, src, dst)
					}

					for _, d := range dirs[dx : dx+dy] {
						Expect(d).To(BeElementOf(routing.North, routing.South))
					}

					Expect(dirs[dx+dy]).To(Equal(routing.Local))
				}
			}
		})

		It("should reject unknown endpoints", func() {
			_, err := network.Walk(0, 12, 0)
			Expect(err).To(HaveOccurred())

			_, err = network.Walk(-1, 0, 0)
			Expect(err).To(HaveOccurred())
		})
	})

	It("should route the 2x2 mesh from router 0 to router 3", func() {
		c := networkconnector.MakeConnector().
			WithParams(routing.Params{
				Mode:    routing.DimensionOrder,
				NumRows: 2,
				NumCols: 2,
			})
		c.AddMesh(2, 2)
		network, err := c.EstablishRoute()
		Expect(err).NotTo(HaveOccurred())

		hops, err := network.Walk(0, 3, 0)

		Expect(err).NotTo(HaveOccurred())
		Expect(networkconnector.Routers(hops)).To(Equal([]int{0, 1, 3}))
		Expect(directions(hops)).To(Equal([]routing.Direction{
			routing.East, routing.North, routing.Local,
		}))
		Expect(hops[1].InportDirection).To(Equal(routing.West))
		Expect(hops[2].InportDirection).To(Equal(routing.South))
	})

	It("should route a ring along shortest paths with tables", func() {
		c := networkconnector.MakeConnector().WithNumVnets(3)
		c.AddRing(5)
		network, err := c.EstablishRoute()
		Expect(err).NotTo(HaveOccurred())

		for src := 0; src < 5; src++ {
			for dst := 0; dst < 5; dst++ {
				for vnet := 0; vnet < 3; vnet++ {
					hops, err := network.Walk(src, dst, vnet)
					Expect(err).NotTo(HaveOccurred())

					d := (dst - src + 5) % 5
					Expect(hops).To(HaveLen(min(d, 5-d) + 1))
				}
			}
		}
	})

	It("should route a mesh with tables along minimal paths", func() {
		c := networkconnector.MakeConnector()
		c.AddMesh(3, 3)
		network, err := c.EstablishRoute()
		Expect(err).NotTo(HaveOccurred())

		for src := 0; src < 9; src++ {
			for dst := 0; dst < 9; dst++ {
				hops, err := network.Walk(src, dst, 0)
				Expect(err).NotTo(HaveOccurred())
				Expect(hops).To(HaveLen(
					abs(src%3-dst%3) + abs(src/3-dst/3) + 1))
			}
		}
	})

	It("should keep ordered vnets on one path", func() {
		c := networkconnector.MakeConnector().
			WithParams(routing.Params{OrderedVnets: []int{0}})
		c.AddMesh(3, 3)
		network, err := c.EstablishRoute()
		Expect(err).NotTo(HaveOccurred())

		first, err := network.Walk(0, 8, 0)
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 50; i++ {
			hops, err := network.Walk(0, 8, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(hops).To(Equal(first))
		}
	})

	It("should honor the vnets each link supports", func() {
		c := networkconnector.MakeConnector().WithNumVnets(2)
		for i := 0; i < 4; i++ {
			c.AddRouter()
		}

		c.AddEndpoint(0)
		c.AddEndpoint(2)
		c.AddLink(networkconnector.LinkSpec{
			Src: 0, Dst: 1, SrcOutport: "East", DstInport: "West",
			Weight: 1, SupportedVnets: []int{1},
		})
		c.AddLink(networkconnector.LinkSpec{
			Src: 0, Dst: 3, SrcOutport: "North", DstInport: "South",
			Weight: 1, SupportedVnets: []int{0},
		})
		c.AddLink(networkconnector.LinkSpec{
			Src: 1, Dst: 2, SrcOutport: "North", DstInport: "South", Weight: 1,
		})
		c.AddLink(networkconnector.LinkSpec{
			Src: 3, Dst: 2, SrcOutport: "East", DstInport: "West", Weight: 1,
		})
		network, err := c.EstablishRoute()
		Expect(err).NotTo(HaveOccurred())

		hops, err := network.Walk(0, 1, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(networkconnector.Routers(hops)).To(Equal([]int{0, 3, 2}))

		hops, err = network.Walk(0, 1, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(networkconnector.Routers(hops)).To(Equal([]int{0, 1, 2}))
	})

	It("should detour vnets a shorter link does not carry", func() {
		c := networkconnector.MakeConnector().WithNumVnets(2)
		for i := 0; i < 3; i++ {
			c.AddRouter()
		}

		c.AddEndpoint(0)
		c.AddEndpoint(1)
		c.AddLink(networkconnector.LinkSpec{
			Src: 0, Dst: 1, SrcOutport: "East", DstInport: "West",
			Weight: 1, SupportedVnets: []int{1},
		})
		c.AddLink(networkconnector.LinkSpec{
			Src: 0, Dst: 2, SrcOutport: "North", DstInport: "South", Weight: 1,
		})
		c.AddLink(networkconnector.LinkSpec{
			Src: 2, Dst: 1, SrcOutport: "East", DstInport: "North", Weight: 1,
		})
		network, err := c.EstablishRoute()
		Expect(err).NotTo(HaveOccurred())

		hops, err := network.Walk(0, 1, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(networkconnector.Routers(hops)).To(Equal([]int{0, 1}))

		hops, err = network.Walk(0, 1, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(networkconnector.Routers(hops)).To(Equal([]int{0, 2, 1}))
	})

	It("should report unreachable endpoints as faults", func() {
		c := networkconnector.MakeConnector()
		c.AddRouter()
		c.AddRouter()
		c.AddEndpoint(0)
		c.AddEndpoint(1)
		network, err := c.EstablishRoute()
		Expect(err).NotTo(HaveOccurred())

		_, err = network.Walk(0, 1, 0)

		f := faultOf(err)
		Expect(f).NotTo(BeNil())
		Expect(f.Kind).To(Equal(routing.Unreachable))
		Expect(f.Router).To(Equal(0))
	})

	It("should report misconfigured ports as invariant faults", func() {
		c := networkconnector.MakeConnector().
			WithParams(routing.Params{
				Mode:    routing.DimensionOrder,
				NumRows: 2,
				NumCols: 2,
			})
		c.AddRing(4)
		network, err := c.EstablishRoute()
		Expect(err).NotTo(HaveOccurred())

		hops, err := network.Walk(0, 3, 0)

		Expect(hops).To(HaveLen(1))
		f := faultOf(err)
		Expect(f).NotTo(BeNil())
		Expect(f.Kind).To(Equal(routing.Invariant))
		Expect(f.Mode).To(Equal(routing.DimensionOrder))
		Expect(f.Router).To(Equal(1))
		Expect(err.Error()).To(ContainSubstring("endpoint 0 to endpoint 3"))
	})

	It("should report the custom mode placeholder as a fault", func() {
		c := networkconnector.MakeConnector().
			WithParams(routing.Params{Mode: routing.Custom})
		c.AddRing(3)
		network, err := c.EstablishRoute()
		Expect(err).NotTo(HaveOccurred())

		hops, err := network.Walk(0, 0, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(hops).To(HaveLen(1))

		_, err = network.Walk(0, 1, 0)
		Expect(faultOf(err)).NotTo(BeNil())
	})

	It("should reproduce walks with the same seed", func() {
		walk := func() [][]int {
			c := networkconnector.MakeConnector().
				WithParams(routing.Params{Seed: 42})
			c.AddRing(6)
			network, err := c.EstablishRoute()
			Expect(err).NotTo(HaveOccurred())

			var paths [][]int
			for i := 0; i < 20; i++ {
				hops, err := network.Walk(0, 3, 0)
				Expect(err).NotTo(HaveOccurred())
				paths = append(paths, networkconnector.Routers(hops))
			}

			return paths
		}

		Expect(walk()).To(Equal(walk()))
	})

	It("should invoke hooks and count decisions", func() {
		var decisions []routing.Decision

		reg := prometheus.NewRegistry()
		metrics := routing.NewMetrics(reg)

		c := networkconnector.MakeConnector().
			WithMetrics(metrics).
			WithCandidateCacheSize(16).
			WithHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
				decisions = append(decisions, ctx.Detail.(routing.Decision))
			}))
		c.AddRing(4)
		network, err := c.EstablishRoute()
		Expect(err).NotTo(HaveOccurred())

		hops, err := network.Walk(0, 2, 0)
		Expect(err).NotTo(HaveOccurred())

		Expect(decisions).To(HaveLen(len(hops)))
		Expect(decisions[len(decisions)-1].Local).To(BeTrue())
		Expect(testutil.ToFloat64(
			metrics.Decisions(routing.TableLookup, "local"))).To(Equal(1.0))
		Expect(testutil.ToFloat64(
			metrics.Decisions(routing.TableLookup, "algorithm"))).
			To(Equal(float64(len(hops) - 1)))
	})
})
