package gait

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/hexgait/internal/dynamo"
)

var _ = Describe("Params", func() {
	It("should accept the default gait", func() {
		Expect(DefaultParams().Validate()).To(Succeed())
	})

	DescribeTable("should reject out of range values",
		func(mutate func(p *Params)) {
			p := DefaultParams()
			mutate(&p)
			err := p.Validate()
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
		},
		Entry("zero period", func(p *Params) { p.Period = 0 }),
		Entry("negative period", func(p *Params) { p.Period = -1 }),
		Entry("NaN period", func(p *Params) { p.Period = math.NaN() }),
		Entry("zero duty factor", func(p *Params) { p.DutyFactor = 0 }),
		Entry("unit duty factor", func(p *Params) { p.DutyFactor = 1 }),
		Entry("negative sweep", func(p *Params) { p.SweepAngle = -0.1 }),
		Entry("full circle sweep", func(p *Params) { p.SweepAngle = dynamo.TwoPi }),
		Entry("infinite offset", func(p *Params) { p.Offset = math.Inf(1) }),
	)

	It("should give negative speeds with a slower stance when duty > 0.5", func() {
		for _, duty := range []float64{0.51, 0.6, 0.685, 0.9} {
			p := DefaultParams()
			p.DutyFactor = duty
			slow, fast := p.Speeds()
			Expect(slow).To(BeNumerically("<", 0))
			Expect(fast).To(BeNumerically("<", 0))
			Expect(math.Abs(slow)).To(BeNumerically("<", math.Abs(fast)))
		}
	})

	It("should cover the full circle in one period", func() {
		p := DefaultParams()
		slow, fast := p.Speeds()
		stance := p.Period * p.DutyFactor
		swing := p.Period * (1 - p.DutyFactor)
		Expect(math.Abs(slow*stance + fast*swing)).To(BeNumerically("~", dynamo.TwoPi, 1e-12))
	})

	It("should treat the window edge as fast", func() {
		p := DefaultParams()
		angle := p.Offset + 0.5
		d := math.Abs(dynamo.SignedAngle(angle - p.Offset))
		p.SweepAngle = 2 * d
		Expect(p.IsSlow(angle)).To(BeFalse())

		p.SweepAngle = math.Nextafter(2*d, math.Inf(1)) * 1.0000001
		Expect(p.IsSlow(angle)).To(BeTrue())
	})

	It("should wrap around the circle when classifying", func() {
		p := Params{Period: 1, Offset: 0.1, SweepAngle: 0.6, DutyFactor: 0.5}
		Expect(p.IsSlow(dynamo.TwoPi - 0.1)).To(BeTrue())
		Expect(p.IsSlow(math.Pi)).To(BeFalse())
	})

	It("should leave params untouched when SetParam fails", func() {
		p := DefaultParams()
		Expect(p.SetParam("duty_factor", 1.5)).NotTo(Succeed())
		Expect(p).To(Equal(DefaultParams()))

		Expect(p.SetParam("period", 2.0)).To(Succeed())
		Expect(p.Period).To(Equal(2.0))
		Expect(p.SetParam("bogus", 1)).NotTo(Succeed())
	})
})
