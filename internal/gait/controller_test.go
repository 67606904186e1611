package gait

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/hexgait/internal/dynamo"
)

func standingCommand(p Params, dim int) dynamo.Control {
	cmd := make(dynamo.Control, dim)
	for i := 0; i < numLegs; i++ {
		cmd[i] = p.Offset
	}
	return cmd
}

var _ = Describe("Advance", func() {
	var (
		p     Params
		phase Phase
	)

	BeforeEach(func() {
		p = DefaultParams()
		phase = Phase{}
	})

	It("should seed the phase so the first tick has no edge", func() {
		cmd := dynamo.Control{0.2, 1.1, 3.0, 1.4, 5.0, 0.6, 9, 9, 9, 9, 9, 9}

		_, err := Advance(&phase, nil, cmd, 0.05, p, false)
		Expect(err).NotTo(HaveOccurred())

		Expect(phase.Seeded()).To(BeTrue())
		Expect(phase.Last().Mask).To(Equal(Groups{}))
		for i := 0; i < numLegs; i++ {
			Expect(cmd.Velocity(i)).To(BeZero())
		}
	})

	It("should leave the command unchanged when dt is zero", func() {
		cmd := dynamo.Control{0.2, 1.1, 3.0, 1.4, 5.0, 0.6, 0, 0, 0, 0, 0, 0}
		before := cmd.Clone()

		for i := 0; i < 3; i++ {
			standing, err := Advance(&phase, nil, cmd, 0, p, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(standing).To(BeFalse())
			Expect(cmd).To(Equal(before))
		}
	})

	It("should run the reference scenario", func() {
		cmd := standingCommand(p, dynamo.MinCommandDim)
		slow, _ := p.Speeds()
		Expect(0.05 * slow).To(BeNumerically("~", -0.1638, 1e-4))

		standing, err := Advance(&phase, nil, cmd, 0.05, p, true)
		Expect(err).NotTo(HaveOccurred())

		last := phase.Last()
		Expect(last.Slow).To(Equal(Groups{true, true, true, true, true, true}))
		Expect(last.Mask).To(Equal(Groups{}))
		Expect(standing).To(BeTrue())

		for i := 0; i < numLegs; i++ {
			Expect(cmd.Velocity(i)).To(BeZero())
			if i%2 == 0 {
				Expect(cmd.Angle(i)).To(Equal(p.Offset))
			} else {
				Expect(cmd.Angle(i)).To(BeNumerically("~", p.Offset+0.05*slow, 1e-12))
			}
		}
	})

	It("should integrate every leg at its own group's speed without standing", func() {
		cmd := dynamo.Control{1.1, 1.1, 4.0, 4.0, 1.1, 4.0, 0, 0, 0, 0, 0, 0}
		slow, fast := p.Speeds()

		_, err := Advance(&phase, nil, cmd, 0.01, p, false)
		Expect(err).NotTo(HaveOccurred())

		Expect(cmd.Angle(0)).To(BeNumerically("~", 1.1+0.01*slow, 1e-12))
		Expect(cmd.Angle(2)).To(BeNumerically("~", 4.0+0.01*fast, 1e-12))
		Expect(phase.Last().Slow).To(Equal(Groups{true, true, false, false, true, false}))
	})

	It("should pulse the velocity slot only on the tick a leg changes group", func() {
		cmd := standingCommand(p, dynamo.MinCommandDim)
		slow, fast := p.Speeds()
		edges := 0

		for tick := 0; tick < 200; tick++ {
			prev := phase.Last().Slow
			seeded := phase.Seeded()

			_, err := Advance(&phase, nil, cmd, 0.02, p, false)
			Expect(err).NotTo(HaveOccurred())

			last := phase.Last()
			for i := 0; i < numLegs; i++ {
				changed := seeded && prev[i] != last.Slow[i]
				Expect(last.Mask[i]).To(Equal(changed))

				switch {
				case !last.Mask[i]:
					Expect(cmd.Velocity(i)).To(BeZero())
				case last.Slow[i]:
					Expect(cmd.Velocity(i)).To(Equal(slow))
				default:
					Expect(cmd.Velocity(i)).To(Equal(fast))
				}
				if last.Mask[i] {
					edges++
				}
			}
		}
		Expect(edges).To(BeNumerically(">", 0))
	})

	It("should keep angles inside [0, 2π)", func() {
		cmd := dynamo.Control{0, 0.001, 6.28, 3.14, 1.1, 6.2831853, 0, 0, 0, 0, 0, 0}
		for _, dt := range []float64{0, 1e-9, 0.05, 0.7, 3.3, 1000} {
			_, err := Advance(&phase, nil, cmd, dt, p, false)
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < numLegs; i++ {
				Expect(cmd.Angle(i)).To(BeNumerically(">=", 0))
				Expect(cmd.Angle(i)).To(BeNumerically("<", dynamo.TwoPi))
			}
		}
	})

	It("should pass trailing slots through untouched", func() {
		cmd := standingCommand(p, 16)
		cmd[12], cmd[13], cmd[14], cmd[15] = 7, -3, math.Pi, 42

		for i := 0; i < 50; i++ {
			_, err := Advance(&phase, nil, cmd, 0.05, p, false)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(cmd[12:]).To(Equal(dynamo.Control{7, -3, math.Pi, 42}))
	})

	Context("with invalid input", func() {
		DescribeTable("should fail without mutating anything",
			func(cmd dynamo.Control, dt float64, mutate func(p *Params)) {
				good := standingCommand(p, dynamo.MinCommandDim)
				_, err := Advance(&phase, nil, good, 0.05, p, true)
				Expect(err).NotTo(HaveOccurred())
				before := phase

				bad := p
				mutate(&bad)
				snapshot := cmd.Clone()

				standing, err := Advance(&phase, nil, cmd, dt, bad, true)
				Expect(err).To(HaveOccurred())
				Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
				Expect(standing).To(BeTrue())
				Expect(cmd).To(Equal(snapshot))
				Expect(phase).To(Equal(before))
			},
			Entry("short command", make(dynamo.Control, 11), 0.05, func(p *Params) {}),
			Entry("negative dt", make(dynamo.Control, 12), -0.01, func(p *Params) {}),
			Entry("NaN dt", make(dynamo.Control, 12), math.NaN(), func(p *Params) {}),
			Entry("zero period", make(dynamo.Control, 12), 0.05, func(p *Params) { p.Period = 0 }),
			Entry("zero duty", make(dynamo.Control, 12), 0.05, func(p *Params) { p.DutyFactor = 0 }),
			Entry("unit duty", make(dynamo.Control, 12), 0.05, func(p *Params) { p.DutyFactor = 1 }),
		)
	})
})

var _ = Describe("Controller", func() {
	It("should refuse invalid params at construction", func() {
		_, err := New(Params{Period: 1.4, DutyFactor: 1})
		Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
	})

	It("should start standing", func() {
		ctrl, err := New(DefaultParams())
		Expect(err).NotTo(HaveOccurred())
		Expect(ctrl.Standing()).To(BeTrue())
	})

	It("should release the standing hold exactly once", func() {
		p := DefaultParams()
		Expect(p.Offset).To(Equal(1.1))
		ctrl, err := New(p)
		Expect(err).NotTo(HaveOccurred())

		cmd := standingCommand(p, dynamo.MinCommandDim)
		releases := 0
		releasedAt := -1

		for tick := 0; tick < 400; tick++ {
			wasStanding := ctrl.Standing()
			cmd, err = ctrl.Advance(nil, cmd, 0.05)
			Expect(err).NotTo(HaveOccurred())

			last := ctrl.Last()
			if last.Released {
				releases++
				releasedAt = tick
				Expect(wasStanding).To(BeTrue())
				Expect(last.Slow[releaseLeg]).To(BeFalse())
				Expect(dynamo.WrapAngle(cmd.Angle(releaseLeg) - p.Offset)).To(BeNumerically("<", math.Pi))
			}
			if ctrl.Standing() {
				for i := 0; i < numLegs; i += 2 {
					Expect(cmd.Angle(i)).To(Equal(p.Offset))
				}
			}
			if releasedAt >= 0 {
				Expect(ctrl.Standing()).To(BeFalse())
			}
		}

		Expect(releases).To(Equal(1))
		Expect(releasedAt).To(BeNumerically(">", 0))
	})

	It("should be independent of other instances", func() {
		a, _ := New(DefaultParams())
		b, _ := New(DefaultParams())

		cmdA := standingCommand(DefaultParams(), dynamo.MinCommandDim)
		cmdB := cmdA.Clone()
		for i := 0; i < 30; i++ {
			var err error
			cmdA, err = a.Advance(nil, cmdA, 0.05)
			Expect(err).NotTo(HaveOccurred())
		}
		cmdB, err := b.Advance(nil, cmdB, 0.05)
		Expect(err).NotTo(HaveOccurred())

		Expect(b.Ticks()).To(Equal(1))
		Expect(b.Last().Mask).To(Equal(Groups{}))
		Expect(cmdB).NotTo(Equal(cmdA))
	})

	It("should be deterministic", func() {
		run := func() dynamo.Control {
			ctrl, _ := New(DefaultParams())
			cmd := standingCommand(DefaultParams(), 14)
			for i := 0; i < 100; i++ {
				cmd, _ = ctrl.Advance(nil, cmd, 0.013*float64(i%5))
			}
			return cmd
		}
		Expect(run()).To(Equal(run()))
	})

	It("should return to standing on Reset", func() {
		ctrl, _ := New(DefaultParams())
		cmd := standingCommand(DefaultParams(), dynamo.MinCommandDim)
		for ctrl.Standing() {
			var err error
			cmd, err = ctrl.Advance(nil, cmd, 0.05)
			Expect(err).NotTo(HaveOccurred())
		}

		ctrl.Reset()
		Expect(ctrl.Standing()).To(BeTrue())
		Expect(ctrl.Ticks()).To(BeZero())
		Expect(ctrl.Last()).To(Equal(Step{}))
	})

	It("should reject invalid params on SetParams and keep the old ones", func() {
		ctrl, _ := New(DefaultParams())
		Expect(ctrl.SetParams(Params{Period: -1, DutyFactor: 0.5})).NotTo(Succeed())
		Expect(ctrl.Params()).To(Equal(DefaultParams()))
	})
})
