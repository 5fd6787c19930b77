package routing_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/nocroute/noc/networking/routing"
)

var _ = Describe("Direction", func() {
	DescribeTable("should parse and print port names",
		func(s string, expected routing.Direction) {
			d := routing.ParseDirection(s)

			Expect(d).To(Equal(expected))
			Expect(d.String()).To(Equal(s))
		},
		Entry("local", "Local", routing.Local),
		Entry("north", "North", routing.North),
		Entry("south", "South", routing.South),
		Entry("east", "East", routing.East),
		Entry("west", "West", routing.West),
		Entry("aggregation", "Agg3", routing.AggPort(3)),
		Entry("edge", "Edge0", routing.EdgePort(0)),
		Entry("core", "Core12", routing.CorePort(12)),
	)

	It("should keep unknown names", func() {
		d := routing.ParseDirection("Up")

		Expect(d.Kind).To(Equal(routing.KindNamed))
		Expect(d.String()).To(Equal("Up"))
		Expect(d).To(Equal(routing.ParseDirection("Up")))
		Expect(d).NotTo(Equal(routing.ParseDirection("Down")))
	})

	It("should not treat a bare prefix as an indexed port", func() {
		Expect(routing.ParseDirection("Agg").Kind).To(Equal(routing.KindNamed))
		Expect(routing.ParseDirection("Agg-1").Kind).To(Equal(routing.KindNamed))
	})
	DescribeTable("should keep non-canonical indices as named ports",
		func(s string) {
			d := routing.ParseDirection(s)

			Expect(d.Kind).To(Equal(routing.KindNamed))
			Expect(d.String()).To(Equal(s))
		},
		Entry("leading zero", "Core01"),
		Entry("plus sign", "Agg+1"),
		Entry("trailing text", "Edge1a"),
	)

	It("should accept a zero index", func() {
		Expect(routing.ParseDirection("Core0")).To(Equal(routing.CorePort(0)))
	})

	It("should not parse the unknown sentinel", func() {
		d := routing.ParseDirection("Unknown")

		Expect(d.Kind).To(Equal(routing.KindNamed))
		Expect(d.String()).To(Equal("Unknown"))
	})
})
