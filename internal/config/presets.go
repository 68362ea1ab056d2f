package config

import "slices"

// Presets is the built-in car database, keyed by short name.
var Presets = map[string]CarSpec{
	"gt_coupe": {
		Name: "GT Coupe",
		Vehicle: VehicleSpec{
			Mass: 1520, CdA: 0.68, WheelRadius: ptr(0.34),
			Tire: TireSpec{WidthMM: 275, Compound: "summer", BaseMu: ptr(1.05)},
		},
		Powertrain: PowertrainSpec{
			Type: "ICE", DrivingAxles: "RWD",
			Motors: []MotorSpec{{
				MinRPM: ptr(900), MaxRPM: ptr(7500),
				TorqueCurve: [][2]float64{{1000, 320}, {2500, 430}, {4500, 530}, {6000, 510}, {7500, 440}},
			}},
			Gearbox: GearboxSpec{
				Type: "manual", GearRatios: []float64{3.13, 2.10, 1.55, 1.22, 1.00, 0.84},
				FinalDrive: ptr(3.73), LaunchRPM: ptr(3500), ShiftRPM: ptr(7200), ShiftTime: ptr(0.25),
			},
			Efficiency: EfficiencySpec{Engine: ptr(0.95), Driveline: ptr(0.88)},
		},
	},
	"hot_hatch": {
		Name: "Hot Hatch",
		Vehicle: VehicleSpec{
			Mass: 1430, CdA: 0.70, WheelRadius: ptr(0.32),
			Tire: TireSpec{WidthMM: 235, Compound: "summer"},
		},
		Powertrain: PowertrainSpec{
			Type: "ICE", DrivingAxles: "FWD",
			Motors: []MotorSpec{{
				MinRPM: ptr(850), MaxRPM: ptr(6800),
				TorqueCurve: [][2]float64{{1000, 250}, {1800, 380}, {4800, 380}, {6800, 300}},
			}},
			Gearbox: GearboxSpec{
				Type: "auto", GearRatios: []float64{3.56, 2.53, 1.68, 1.02, 0.79, 0.64, 0.53},
				FinalDrive: ptr(3.94), LaunchRPM: ptr(2800), ShiftRPM: ptr(6500),
			},
			Efficiency: EfficiencySpec{Engine: ptr(0.95), Driveline: ptr(0.90)},
		},
	},
	"muscle": {
		Name: "Muscle Car",
		Vehicle: VehicleSpec{
			Mass: 1840, CdA: 0.78, WheelRadius: ptr(0.35), RollingResistance: ptr(0.016),
			Tire: TireSpec{WidthMM: 315, Compound: "drag_radial"},
		},
		Powertrain: PowertrainSpec{
			Type: "ICE", DrivingAxles: "RWD",
			Motors: []MotorSpec{{
				MinRPM: ptr(750), MaxRPM: ptr(6500),
				TorqueCurve: [][2]float64{{1000, 520}, {3000, 760}, {4500, 800}, {6500, 650}},
			}},
			Gearbox: GearboxSpec{
				Type: "auto", GearRatios: []float64{4.70, 2.99, 2.15, 1.77, 1.52, 1.28, 1.00, 0.85},
				FinalDrive: ptr(3.23), LaunchRPM: ptr(2200), ShiftRPM: ptr(6300),
			},
			Efficiency: EfficiencySpec{Engine: ptr(0.95), Driveline: ptr(0.86)},
		},
	},
	"ev_sedan": {
		Name: "EV Sedan",
		Vehicle: VehicleSpec{
			Mass: 2150, CdA: 0.58, WheelRadius: ptr(0.35),
			Tire: TireSpec{WidthMM: 265, Compound: "summer"},
		},
		Powertrain: PowertrainSpec{
			Type: "BEV", DrivingAxles: "AWD",
			Motors: []MotorSpec{{
				MaxRPM:      ptr(18000),
				TorqueCurve: [][2]float64{{0, 720}, {6500, 720}, {12000, 390}, {18000, 250}},
			}},
			Gearbox:    GearboxSpec{Ratio: ptr(9.0)},
			Efficiency: EfficiencySpec{Motor: ptr(0.93), Inverter: ptr(0.97)},
		},
	},
	"ev_hatch": {
		Name: "EV Hatch",
		Vehicle: VehicleSpec{
			Mass: 1620, CdA: 0.62, WheelRadius: ptr(0.33),
			Tire: TireSpec{WidthMM: 225, Compound: "all_season"},
		},
		Powertrain: PowertrainSpec{
			Type: "BEV", DrivingAxles: "RWD",
			Motors: []MotorSpec{{
				MaxRPM:      ptr(16000),
				TorqueCurve: [][2]float64{{0, 310}, {5000, 310}, {10000, 170}, {16000, 100}},
			}},
			Gearbox: GearboxSpec{Ratio: ptr(10.0)},
		},
	},
}

// GetPreset returns a copy of the named spec, or nil.
func GetPreset(name string) *CarSpec {
	spec, ok := Presets[name]
	if !ok {
		return nil
	}
	c := spec.Clone()
	return &c
}

// ListPresets returns preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
