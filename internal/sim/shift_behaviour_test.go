package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/qmsim/internal/curve"
	"github.com/san-kum/qmsim/internal/sim"
	"github.com/san-kum/qmsim/internal/vehicle"
)

func geared(box vehicle.Gearbox, shiftTime float64) *vehicle.Car {
	car, err := vehicle.New(vehicle.Params{
		Name:              string(box),
		Mass:              1400,
		CdA:               0.6,
		WheelRadius:       0.32,
		RollingResistance: 0.015,
		BaseMu:            1.1,
		TireWidthMM:       245,
		Compound:          vehicle.Track,
		Drivetrain:        vehicle.RWD,
		Powertrain: &vehicle.Geared{
			Gearbox:             box,
			GearRatios:          []float64{3.3, 2.2, 1.6, 1.25, 1.0, 0.82},
			FinalDrive:          3.9,
			IdleRPM:             850,
			LaunchRPM:           4000,
			ShiftRPM:            7000,
			RedlineRPM:          7400,
			ShiftTime:           shiftTime,
			EngineEfficiency:    0.95,
			DrivelineEfficiency: 0.9,
			TorqueCurve:         curve.FromPairs([][2]float64{{1000, 250}, {5000, 420}, {7400, 360}}),
		},
	})
	Expect(err).NotTo(HaveOccurred())
	return car
}

// windows returns [start, end) sample ranges of consecutive Shifting
// samples.
func windows(samples []sim.Sample) [][2]int {
	var out [][2]int
	start := -1
	for i, s := range samples {
		switch {
		case s.Shifting && start < 0:
			start = i
		case !s.Shifting && start >= 0:
			out = append(out, [2]int{start, i})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, [2]int{start, len(samples)})
	}
	return out
}

var _ = Describe("Integrator", func() {
	var cfg sim.Config

	BeforeEach(func() {
		cfg = sim.DefaultConfig()
	})

	Context("with a manual gearbox", func() {
		var (
			car    *vehicle.Car
			result *sim.Result
		)

		BeforeEach(func() {
			car = geared(vehicle.Manual, 0.3)
			var err error
			result, err = sim.New(car).Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())
		})

		It("finishes the quarter mile with upshifts", func() {
			Expect(result.Summary.Finished).To(BeTrue())
			Expect(result.Summary.ShiftCount).To(BeNumerically(">=", 2))
			Expect(result.Summary.ElapsedTime).To(BeNumerically("<", 20))
		})

		It("suppresses drive for the shift time after the threshold", func() {
			samples := result.Telemetry.Samples
			ws := windows(samples)
			Expect(len(ws)).To(BeNumerically("<=", result.Summary.ShiftCount))
			Expect(len(ws)).To(BeNumerically(">=", result.Summary.ShiftCount-1))

			shiftSteps := 0.3 / cfg.Dt
			for _, w := range ws {
				trigger := samples[w[0]-1]
				Expect(trigger.EngineRPM).To(BeNumerically(">=", 7000))
				Expect(trigger.Shifting).To(BeFalse())

				for i := w[0]; i < w[1]; i++ {
					s := samples[i]
					Expect(s.UsableForce).To(BeZero())
					Expect(s.WheelTorque).To(BeZero())
					resist := (car.DragForce(samples[i-1].Speed) + car.RollingForce()) / car.Mass
					Expect(s.Accel).To(BeNumerically("~", -resist, 1e-9))
				}

				if w[1] < len(samples) {
					Expect(float64(w[1] - w[0])).To(BeNumerically("~", shiftSteps, 1))
				}
			}
		})

		It("increments the gear by exactly one per event", func() {
			samples := result.Telemetry.Samples
			for i := 1; i < len(samples); i++ {
				step := samples[i].Gear - samples[i-1].Gear
				Expect(step).To(BeElementOf(0, 1))
				if step == 1 {
					Expect(samples[i].Shifting).To(BeTrue())
				}
			}
			last := result.Telemetry.Last().Gear
			Expect(last).To(BeNumerically("<=", 1+result.Summary.ShiftCount))
			Expect(last).To(BeNumerically(">=", result.Summary.ShiftCount))
		})
	})

	Context("with an automatic gearbox", func() {
		It("changes gear without a zero-drive window", func() {
			car := geared(vehicle.Automatic, 0.3)
			result, err := sim.New(car).Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())

			samples := result.Telemetry.Samples
			shifts := 0
			for i := 1; i < len(samples); i++ {
				Expect(samples[i].Shifting).To(BeFalse())
				Expect(samples[i].DriveForce).To(BeNumerically(">", 0))
				if samples[i].Gear > samples[i-1].Gear {
					Expect(samples[i].Gear - samples[i-1].Gear).To(Equal(1))
					Expect(samples[i].EngineRPM).To(BeNumerically(">=", 7000))
					shifts++
				}
			}
			Expect(shifts).To(Equal(result.Summary.ShiftCount))
			Expect(shifts).To(BeNumerically(">=", 2))
		})

		It("beats the same car with a slow manual gearbox", func() {
			auto, err := sim.New(geared(vehicle.Automatic, 0.3)).Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())
			manual, err := sim.New(geared(vehicle.Manual, 0.6)).Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(auto.Summary.ElapsedTime).To(BeNumerically("<", manual.Summary.ElapsedTime))
		})
	})

	DescribeTable("terminates within the time limit for any step size",
		func(dt float64) {
			cfg.Dt = dt
			result, err := sim.New(geared(vehicle.Manual, 0.3)).Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Summary.ElapsedTime).To(BeNumerically("<=", cfg.TimeLimit+dt))
			Expect(math.IsNaN(result.Summary.TrapSpeed)).To(BeFalse())
		},
		Entry("fine", 0.001),
		Entry("default", 0.01),
		Entry("coarse", 0.1),
		Entry("coarser than the shift", 0.5),
	)
})
