package config

// Overrides are the per-car knobs exposed on the command line. Nil fields
// leave the spec untouched.
type Overrides struct {
	MassKG      *float64
	Compound    *string
	TireWidthMM *float64
	LaunchRPM   *float64
	ShiftRPM    *float64
	ShiftTime   *float64
}

// Apply returns a deep copy of s with the overrides set. Gearbox knobs are
// ignored for BEV specs.
func (o Overrides) Apply(s CarSpec) CarSpec {
	out := s.Clone()
	if o.MassKG != nil {
		out.Vehicle.Mass = *o.MassKG
	}
	if o.Compound != nil {
		out.Vehicle.Tire.Compound = *o.Compound
	}
	if o.TireWidthMM != nil {
		out.Vehicle.Tire.WidthMM = *o.TireWidthMM
	}
	if out.Powertrain.Kind() == "ICE" {
		if o.LaunchRPM != nil {
			out.Powertrain.Gearbox.LaunchRPM = ptr(*o.LaunchRPM)
		}
		if o.ShiftRPM != nil {
			out.Powertrain.Gearbox.ShiftRPM = ptr(*o.ShiftRPM)
		}
		if o.ShiftTime != nil {
			out.Powertrain.Gearbox.ShiftTime = ptr(*o.ShiftTime)
		}
	}
	return out
}

// Set assigns a named numeric parameter, as used by the tuner. Unknown
// names report false.
func (o *Overrides) Set(name string, v float64) bool {
	switch name {
	case "mass":
		o.MassKG = &v
	case "tire_width_mm":
		o.TireWidthMM = &v
	case "launch_rpm":
		o.LaunchRPM = &v
	case "shift_rpm":
		o.ShiftRPM = &v
	case "shift_time_s":
		o.ShiftTime = &v
	default:
		return false
	}
	return true
}

// Clone copies every slice and pointer so the result shares nothing
// with s.
func (s CarSpec) Clone() CarSpec {
	out := s
	out.Vehicle.WheelRadius = clonePtr(s.Vehicle.WheelRadius)
	out.Vehicle.RollingResistance = clonePtr(s.Vehicle.RollingResistance)
	out.Vehicle.Tire.BaseMu = clonePtr(s.Vehicle.Tire.BaseMu)

	out.Powertrain.Motors = make([]MotorSpec, len(s.Powertrain.Motors))
	for i, m := range s.Powertrain.Motors {
		out.Powertrain.Motors[i] = MotorSpec{
			MinRPM:      clonePtr(m.MinRPM),
			MaxRPM:      clonePtr(m.MaxRPM),
			TorqueCurve: append([][2]float64(nil), m.TorqueCurve...),
		}
	}

	gb := &out.Powertrain.Gearbox
	if s.Powertrain.Gearbox.GearRatios != nil {
		gb.GearRatios = append([]float64{}, s.Powertrain.Gearbox.GearRatios...)
	}
	gb.FinalDrive = clonePtr(gb.FinalDrive)
	gb.LaunchRPM = clonePtr(gb.LaunchRPM)
	gb.ShiftRPM = clonePtr(gb.ShiftRPM)
	gb.ShiftTime = clonePtr(gb.ShiftTime)
	gb.Ratio = clonePtr(gb.Ratio)

	eff := &out.Powertrain.Efficiency
	eff.Engine = clonePtr(eff.Engine)
	eff.Driveline = clonePtr(eff.Driveline)
	eff.Motor = clonePtr(eff.Motor)
	eff.Inverter = clonePtr(eff.Inverter)
	return out
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return ptr(*v)
}
