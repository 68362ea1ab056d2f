package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/qmsim/internal/curve"
	"github.com/san-kum/qmsim/internal/sim"
	"github.com/san-kum/qmsim/internal/vehicle"
)

func directDrive(baseMu, torque float64) *vehicle.Car {
	car, err := vehicle.New(vehicle.Params{
		Name:              "ev",
		Mass:              1800,
		CdA:               0.6,
		WheelRadius:       0.35,
		RollingResistance: 0.015,
		BaseMu:            baseMu,
		TireWidthMM:       245,
		Compound:          vehicle.Summer,
		Drivetrain:        vehicle.AWD,
		Powertrain: &vehicle.DirectDrive{
			Ratio:              9,
			MaxMotorRPM:        18000,
			MotorEfficiency:    0.92,
			InverterEfficiency: 0.96,
			TorqueCurve:        curve.FromPairs([][2]float64{{0, torque}, {18000, torque}}),
		},
	})
	Expect(err).NotTo(HaveOccurred())
	return car
}

type countingMetric struct {
	count int
	maxV  float64
}

func (c *countingMetric) Name() string { return "count" }
func (c *countingMetric) Observe(s sim.Sample) {
	c.count++
	c.maxV = math.Max(c.maxV, s.Speed)
}
func (c *countingMetric) Value() float64 { return float64(c.count) }
func (c *countingMetric) Reset()         { c.count, c.maxV = 0, 0 }

var _ = Describe("Simulator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("with a traction-limited direct drive car", func() {
		var (
			car    *vehicle.Car
			result *sim.Result
		)

		BeforeEach(func() {
			car = directDrive(0.4, 400)
			var err error
			result, err = sim.New(car).Run(ctx, sim.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())
		})

		It("clamps drive below the motor's peak force", func() {
			peak := 400 * 9 * 0.92 * 0.96 / 0.35
			Expect(car.TractionLimit()).To(BeNumerically("<", peak))
			for _, s := range result.Telemetry.Samples {
				Expect(s.UsableForce).To(BeNumerically("<=", car.TractionLimit()))
			}
		})

		It("finishes without shifting", func() {
			Expect(result.Summary.Finished).To(BeTrue())
			Expect(result.Summary.ElapsedTime).To(BeNumerically("<", 60))
			Expect(result.Summary.TrapSpeed).To(BeNumerically(">", 0))
			Expect(result.Summary.ShiftCount).To(BeZero())
		})

		It("summarizes the final sample", func() {
			Expect(result.Telemetry.Samples).To(HaveLen(result.StepsTaken + 1))
			last := result.Telemetry.Last()
			Expect(last.Time).To(Equal(result.Summary.ElapsedTime))
			Expect(last.Speed).To(Equal(result.Summary.TrapSpeed))
			Expect(last.Distance).To(BeNumerically(">=", vehicle.QuarterMile))
		})
	})

	It("records the rest state first", func() {
		result, err := sim.New(geared(vehicle.Manual, 0.3)).Run(ctx, sim.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Telemetry.Samples[0]).To(Equal(sim.Sample{Gear: 1}))
	})

	DescribeTable("keeps telemetry physical",
		func(build func() *vehicle.Car, dt float64) {
			car := build()
			cfg := sim.DefaultConfig()
			cfg.Dt = dt

			result, err := sim.New(car).Run(ctx, cfg)
			Expect(err).NotTo(HaveOccurred())

			samples := result.Telemetry.Samples
			for i, s := range samples {
				Expect(s.Speed).To(BeNumerically(">=", 0))
				Expect(s.UsableForce).To(BeNumerically("<=", car.TractionLimit()))
				Expect(s.Gear).To(BeNumerically(">=", 1))
				Expect(s.Gear).To(BeNumerically("<=", car.GearCount()))
				if i == 0 {
					continue
				}
				Expect(s.Time).To(BeNumerically(">", samples[i-1].Time))
				Expect(s.Distance).To(BeNumerically(">=", samples[i-1].Distance))
			}
		},
		Entry("low grip ev, fine step", func() *vehicle.Car { return directDrive(0.4, 400) }, 0.001),
		Entry("high grip ev, coarse step", func() *vehicle.Car { return directDrive(1.1, 600) }, 0.05),
		Entry("manual, default step", func() *vehicle.Car { return geared(vehicle.Manual, 0.3) }, 0.01),
		Entry("automatic, coarse step", func() *vehicle.Car { return geared(vehicle.Automatic, 0.3) }, 0.05),
	)

	Context("when the car cannot move", func() {
		It("stops one step past the time limit at rest", func() {
			// 1 N·m cannot overcome rolling resistance
			car := directDrive(1.0, 1)
			cfg := sim.DefaultConfig()

			result, err := sim.New(car).Run(ctx, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Summary.Finished).To(BeFalse())
			Expect(result.Summary.ElapsedTime).To(BeNumerically(">", cfg.TimeLimit))
			Expect(result.Summary.ElapsedTime).To(BeNumerically("<=", cfg.TimeLimit+cfg.Dt+1e-9))
			Expect(result.Summary.TrapSpeed).To(BeZero())
			Expect(result.StepsTaken).To(BeNumerically("<=", cfg.MaxSteps()))

			for _, s := range result.Telemetry.Samples[1:] {
				want := (s.UsableForce - car.RollingForce()) / car.Mass
				Expect(s.Accel).To(BeNumerically("~", want, 1e-12))
			}
		})
	})

	It("is deterministic", func() {
		car := geared(vehicle.Manual, 0.3)
		r1, err := sim.New(car).Run(ctx, sim.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		r2, err := sim.New(car).Run(ctx, sim.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		Expect(r1.Summary).To(Equal(r2.Summary))
		Expect(r1.Telemetry.Samples).To(Equal(r2.Telemetry.Samples))
	})

	DescribeTable("rejects invalid configs",
		func(cfg sim.Config) {
			_, err := sim.New(directDrive(1, 400)).Run(ctx, cfg)
			Expect(err).To(MatchError(sim.ErrInvalidConfig))
		},
		Entry("zero dt", sim.Config{Dt: 0, Distance: 400, TimeLimit: 60}),
		Entry("negative dt", sim.Config{Dt: -0.1, Distance: 400, TimeLimit: 60}),
		Entry("NaN dt", sim.Config{Dt: math.NaN(), Distance: 400, TimeLimit: 60}),
		Entry("zero distance", sim.Config{Dt: 0.01, Distance: 0, TimeLimit: 60}),
		Entry("zero limit", sim.Config{Dt: 0.01, Distance: 400, TimeLimit: 0}),
	)

	It("requires a car", func() {
		_, err := sim.New(nil).Run(ctx, sim.DefaultConfig())
		Expect(err).To(MatchError(sim.ErrNoCar))
	})

	It("returns the rest sample when canceled", func() {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		result, err := sim.New(directDrive(1, 400)).Run(canceled, sim.DefaultConfig())
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(result).NotTo(BeNil())
		Expect(result.Telemetry.Samples).To(HaveLen(1))
	})

	It("feeds every sample to its metrics after a reset", func() {
		s := sim.New(directDrive(1, 400))
		metric := &countingMetric{count: 99}
		s.AddMetric(metric)

		result, err := s.Run(ctx, sim.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		n := len(result.Telemetry.Samples)
		Expect(metric.count).To(Equal(n))
		Expect(result.Metrics).To(HaveKeyWithValue("count", float64(n)))
		Expect(metric.maxV).To(BeNumerically(">=", result.Summary.TrapSpeed))
	})
})

var _ = Describe("Telemetry", func() {
	It("exposes each column", func() {
		tel := sim.Telemetry{Samples: []sim.Sample{
			{Time: 0, Distance: 0, Speed: 0, Gear: 1},
			{Time: 0.01, Distance: 0.001, Speed: 0.1, Accel: 10, Gear: 1, EngineRPM: 3000, WheelTorque: 4000},
			{Time: 0.02, Distance: 0.003, Speed: 0.2, Accel: 10, Gear: 2, MotorRPM: 50},
		}}

		Expect(tel.Len()).To(Equal(3))
		Expect(tel.Times()[2]).To(Equal(0.02))
		Expect(tel.Speeds()[1]).To(Equal(0.1))
		Expect(tel.Gears()[2]).To(Equal(2))
		Expect(tel.EngineRPMs()[1]).To(Equal(3000.0))
		Expect(tel.MotorRPMs()[2]).To(Equal(50.0))
		Expect(tel.WheelTorques()[1]).To(Equal(4000.0))
		Expect(tel.Distances()[2]).To(Equal(0.003))
		Expect(tel.Accels()).To(HaveExactElements(0.0, 10.0, 10.0))
		Expect((&sim.Telemetry{}).Last()).To(Equal(sim.Sample{}))
	})
})

var _ = Describe("RunAll", func() {
	It("matches serial runs in input order with isolated metrics", func() {
		ctx := context.Background()
		cars := []*vehicle.Car{directDrive(0.4, 400), geared(vehicle.Manual, 0.3), directDrive(1.1, 600)}

		results, err := sim.RunAll(ctx, cars, sim.DefaultConfig(), func() []sim.Metric {
			return []sim.Metric{&countingMetric{}}
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(len(cars)))

		for i, r := range results {
			Expect(r.Car).To(BeIdenticalTo(cars[i]))
			single, err := sim.New(cars[i]).Run(ctx, sim.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Summary).To(Equal(single.Summary))
			Expect(r.Metrics["count"]).To(Equal(float64(len(r.Telemetry.Samples))))
		}
	})

	It("validates the config first", func() {
		_, err := sim.RunAll(context.Background(), []*vehicle.Car{directDrive(1, 400)}, sim.Config{}, nil)
		Expect(err).To(MatchError(sim.ErrInvalidConfig))
	})
})

var _ = Describe("StepError", func() {
	It("names the car and step and unwraps", func() {
		err := &sim.StepError{Car: "ev", Step: 150, Time: 1.5, Wrapped: sim.ErrInvalidState}
		Expect(err.Error()).To(Equal("ev: step 150 (t=1.5000): sim: invalid state (NaN or Inf detected)"))
		Expect(errors.Is(err, sim.ErrInvalidState)).To(BeTrue())
	})
})
