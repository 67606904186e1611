package sim

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/san-kum/hexgait/internal/dynamo"
	"github.com/san-kum/hexgait/internal/gait"
	"github.com/san-kum/hexgait/internal/plant"
)

type countingMetric struct {
	ticks  int
	pulses int
}

func (c *countingMetric) Name() string { return "counting" }
func (c *countingMetric) Observe(tk dynamo.Tick) {
	c.ticks++
	for _, p := range tk.Pulse {
		if p {
			c.pulses++
		}
	}
}
func (c *countingMetric) Value() float64 { return float64(c.ticks) }
func (c *countingMetric) Reset()         { *c = countingMetric{} }

type recordingObserver struct {
	times []float64
}

func (r *recordingObserver) OnTick(tk dynamo.Tick) { r.times = append(r.times, tk.Time) }

func newController() *gait.Controller {
	ctrl, err := gait.New(gait.DefaultParams())
	Expect(err).NotTo(HaveOccurred())
	return ctrl
}

var _ = Describe("Loop", func() {
	var cfg Config

	BeforeEach(func() {
		cfg = Config{Dt: 0.05, Duration: 5.0, HoldDuration: 1.0}
	})

	Context("with the simulated hexapod", func() {
		var (
			hex  *plant.Hexapod
			loop *Loop
		)

		BeforeEach(func() {
			var err error
			hex, err = plant.New(plant.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())
			loop = New(hex, newController(), NewSimClock())
		})

		It("should walk for the whole duration", func() {
			result, err := loop.Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Ticks).To(BeNumerically("~", 100, 1))
			Expect(result.Times).To(HaveLen(result.Ticks))
			Expect(result.Commands).To(HaveLen(result.Ticks))
			Expect(result.States).To(HaveLen(result.Ticks))
			Expect(result.Done).To(BeFalse())
			Expect(result.ReleasedAt).To(BeNumerically(">", 0))
			Expect(loop.Controller().Standing()).To(BeFalse())
		})

		It("should start with no velocity pulses and keep trailing slots", func() {
			result, err := loop.Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())

			first := result.Commands[0]
			Expect(first).To(HaveLen(plant.DefaultCommandDim))
			for i := 0; i < dynamo.NumLegs; i++ {
				Expect(first.Velocity(i)).To(BeZero())
			}
			for _, cmd := range result.Commands {
				Expect(cmd[dynamo.MinCommandDim:]).To(Equal(dynamo.Control{0, 0}))
			}
		})

		It("should keep the joints close to their commands", func() {
			result, err := loop.Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())

			last := len(result.States) - 1
			Expect(plant.TrackingError(result.States[last], result.Commands[last])).To(BeNumerically("<", 0.5))
		})

		It("should feed metrics and observers on every tick", func() {
			metric := &countingMetric{}
			obs := &recordingObserver{}
			loop.AddMetric(metric)
			loop.AddObserver(obs)

			result, err := loop.Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(metric.ticks).To(Equal(result.Ticks))
			Expect(metric.pulses).To(BeNumerically(">", 0))
			Expect(result.Metrics).To(HaveKeyWithValue("counting", float64(result.Ticks)))
			Expect(obs.times).To(Equal(result.Times))
		})

		It("should be reusable and deterministic", func() {
			a, err := loop.Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())

			loop.clock = NewSimClock()
			b, err := loop.Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(b.Commands).To(Equal(a.Commands))
			Expect(b.States).To(Equal(a.States))
		})

		It("should stop when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := loop.Run(ctx, cfg)
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		})

		DescribeTable("should reject bad loop config",
			func(c Config) {
				_, err := loop.Run(context.Background(), c)
				Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
			},
			Entry("zero dt", Config{Dt: 0, Duration: 1}),
			Entry("zero duration", Config{Dt: 0.05, Duration: 0}),
			Entry("negative hold", Config{Dt: 0.05, Duration: 1, HoldDuration: -1}),
		)
	})

	Context("with a mock plant", func() {
		var (
			mockCtrl *gomock.Controller
			mp       *MockPlant
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			mp = NewMockPlant(mockCtrl)
			cfg.HoldDuration = 0
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should refuse a plant with too few command slots", func() {
			mp.EXPECT().CommandDim().Return(11)

			_, err := New(mp, newController(), nil).Run(context.Background(), cfg)
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
		})

		It("should send the standing pose first", func() {
			mp.EXPECT().CommandDim().Return(12)
			mp.EXPECT().Reset().Return(make(dynamo.State, 12), nil)
			gomock.InOrder(
				mp.EXPECT().Step(gomock.Any(), 0.05).DoAndReturn(
					func(cmd dynamo.Control, dt float64) (dynamo.Transition, error) {
						Expect(cmd).To(Equal(InitialCommand(12, gait.DefaultOffset)))
						return dynamo.Transition{State: make(dynamo.State, 12)}, nil
					}),
				mp.EXPECT().Step(gomock.Any(), gomock.Any()).
					Return(dynamo.Transition{State: make(dynamo.State, 12), Done: true}, nil),
			)

			result, err := New(mp, newController(), nil).Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Ticks).To(Equal(1))
			Expect(result.Done).To(BeTrue())
		})

		It("should stop when the plant reports done", func() {
			steps := 0
			mp.EXPECT().CommandDim().Return(12)
			mp.EXPECT().Reset().Return(make(dynamo.State, 12), nil)
			mp.EXPECT().Step(gomock.Any(), gomock.Any()).DoAndReturn(
				func(cmd dynamo.Control, dt float64) (dynamo.Transition, error) {
					steps++
					return dynamo.Transition{State: make(dynamo.State, 12), Reward: 1, Done: steps == 4}, nil
				}).Times(4)

			result, err := New(mp, newController(), nil).Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Ticks).To(Equal(3))
			Expect(result.Rewards).To(Equal([]float64{1, 1, 1}))
		})

		It("should wrap plant failures with the failing tick", func() {
			boom := errors.New("servo bus timeout")
			mp.EXPECT().CommandDim().Return(12)
			mp.EXPECT().Reset().Return(make(dynamo.State, 12), nil)
			gomock.InOrder(
				mp.EXPECT().Step(gomock.Any(), gomock.Any()).
					Return(dynamo.Transition{State: make(dynamo.State, 12)}, nil).Times(3),
				mp.EXPECT().Step(gomock.Any(), gomock.Any()).
					Return(dynamo.Transition{}, boom),
			)

			result, err := New(mp, newController(), nil).Run(context.Background(), cfg)
			Expect(errors.Is(err, boom)).To(BeTrue())

			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Step).To(Equal(2))
			Expect(result.Ticks).To(Equal(2))
		})

		It("should fail on reset errors", func() {
			mp.EXPECT().CommandDim().Return(12)
			mp.EXPECT().Reset().Return(nil, errors.New("no robot"))

			_, err := New(mp, newController(), nil).Run(context.Background(), cfg)
			Expect(err).To(MatchError(ContainSubstring("no robot")))
		})
	})
})
