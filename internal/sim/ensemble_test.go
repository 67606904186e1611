package sim

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/hexgait/internal/dynamo"
	"github.com/san-kum/hexgait/internal/gait"
	"github.com/san-kum/hexgait/internal/plant"
)

var _ = Describe("Ensemble", func() {
	newPlant := func() (dynamo.Plant, error) { return plant.New(plant.DefaultConfig()) }
	cfg := Config{Dt: 0.05, Duration: 2.0}

	It("should return one result per gait in order", func() {
		gaits := make([]gait.Params, 0)
		for _, duty := range []float64{0.6, 0.685, 0.8} {
			p := gait.DefaultParams()
			p.DutyFactor = duty
			gaits = append(gaits, p)
		}

		ens := NewEnsemble(newPlant, func() []dynamo.Metric {
			return []dynamo.Metric{&countingMetric{}}
		}, 2)
		results, err := ens.Run(context.Background(), gaits, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))

		for i, r := range results {
			Expect(r.Metrics).To(HaveKey("counting"))

			ctrl, _ := gait.New(gaits[i])
			hex, _ := plant.New(plant.DefaultConfig())
			single, err := New(hex, ctrl, NewSimClock()).Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Commands).To(Equal(single.Commands))
		}
	})

	It("should fail if any gait is invalid", func() {
		gaits := []gait.Params{gait.DefaultParams(), {Period: 0, DutyFactor: 0.5}}

		_, err := NewEnsemble(newPlant, nil, 4).Run(context.Background(), gaits, cfg)
		Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
	})
})

var _ = Describe("Clocks", func() {
	It("should advance simulated time only on Wait", func() {
		c := NewSimClock()
		Expect(c.Now()).To(BeZero())
		Expect(c.Wait(context.Background(), 0.25)).To(Succeed())
		Expect(c.Wait(context.Background(), -1)).To(Succeed())
		Expect(c.Now()).To(Equal(0.25))
	})

	It("should refuse to wait on a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Expect(NewSimClock().Wait(ctx, 1)).To(MatchError(context.Canceled))
		Expect(NewWallClock().Wait(ctx, 10)).To(MatchError(context.Canceled))
	})

	It("should follow the wall clock", func() {
		c := NewWallClock()
		start := c.Now()
		Expect(c.Wait(context.Background(), 0.02)).To(Succeed())
		Expect(c.Now() - start).To(BeNumerically(">=", 0.02))
		Expect(c.Now() - start).To(BeNumerically("<", (2 * time.Second).Seconds()))
	})
})
