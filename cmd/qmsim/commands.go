package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/qmsim/internal/config"
	"github.com/san-kum/qmsim/internal/export"
	"github.com/san-kum/qmsim/internal/optim"
	"github.com/san-kum/qmsim/internal/race"
	"github.com/san-kum/qmsim/internal/report"
	"github.com/san-kum/qmsim/internal/storage"
	"github.com/san-kum/qmsim/internal/tui"
	"github.com/san-kum/qmsim/internal/vehicle"
)

// raceFlags are shared by every command that races cars.
type raceFlags struct {
	dt        float64
	distance  float64
	timeLimit float64

	mass      float64
	compound  string
	tireWidth float64
	launchRPM float64
	shiftRPM  float64
	shiftTime float64
}

func (f *raceFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Float64Var(&f.dt, "dt", config.DefaultDt, "integration step (s)")
	fs.Float64Var(&f.distance, "distance", config.DefaultDistance, "race distance (m)")
	fs.Float64Var(&f.timeLimit, "time-limit", config.DefaultTimeLimit, "give up after this many seconds")
	fs.Float64Var(&f.mass, "mass", 0, "override car mass (kg)")
	fs.StringVar(&f.compound, "compound", "", "override tire compound ("+config.CompoundList()+")")
	fs.Float64Var(&f.tireWidth, "tire-width", 0, "override tire width (mm)")
	fs.Float64Var(&f.launchRPM, "launch-rpm", 0, "override launch rpm (ICE)")
	fs.Float64Var(&f.shiftRPM, "shift-rpm", 0, "override shift rpm (ICE)")
	fs.Float64Var(&f.shiftTime, "shift-time", 0, "override shift time (s, ICE)")
}

func (f *raceFlags) overrides(cmd *cobra.Command) config.Overrides {
	var ov config.Overrides
	changed := cmd.Flags().Changed
	if changed("mass") {
		ov.MassKG = &f.mass
	}
	if changed("compound") {
		ov.Compound = &f.compound
	}
	if changed("tire-width") {
		ov.TireWidthMM = &f.tireWidth
	}
	if changed("launch-rpm") {
		ov.LaunchRPM = &f.launchRPM
	}
	if changed("shift-rpm") {
		ov.ShiftRPM = &f.shiftRPM
	}
	if changed("shift-time") {
		ov.ShiftTime = &f.shiftTime
	}
	return ov
}

// resolve builds the race named by args. Integration flags win over a
// race file only when given explicitly.
func (f *raceFlags) resolve(cmd *cobra.Command, args []string) (*race.Race, error) {
	if cmd.Flags().Changed("compound") && !vehicle.Compound(f.compound).Known() {
		return nil, fmt.Errorf("unknown tire compound %q, want one of %s", f.compound, config.CompoundList())
	}
	rf, err := race.Resolve(args, f.overrides(cmd))
	if err != nil {
		return nil, err
	}
	changed := cmd.Flags().Changed
	if changed("dt") {
		rf.Dt = f.dt
	}
	if changed("distance") {
		rf.Distance = f.distance
	}
	if changed("time-limit") {
		rf.TimeLimit = f.timeLimit
	}
	return race.FromFile(rf)
}

func newRunCmd() *cobra.Command {
	var (
		rf      raceFlags
		noSave  bool
		plot    bool
		metrics bool
	)
	cmd := &cobra.Command{
		Use:   "run [preset|file.yaml ...]",
		Short: "race cars over the quarter mile",
		Long: "Race presets and/or yaml car files against each other. With no\n" +
			"arguments the default grid is raced.",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rf.resolve(cmd, args)
			if err != nil {
				return err
			}
			standings, err := r.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			report.Summary(out, standings)
			if metrics {
				fmt.Fprintln(out)
				report.Metrics(out, standings)
			}
			if plot {
				fmt.Fprintln(out)
				report.All(out, standings.Traces())
			}

			if noSave {
				return nil
			}
			id, err := storage.New(dataDir).Save(r.Config, standings)
			if err != nil {
				return err
			}
			logrus.Infof("saved run %s", id)
			fmt.Fprintf(out, "\nrun id: %s\n", id)
			return nil
		},
	}
	rf.register(cmd)
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	cmd.Flags().BoolVar(&plot, "plot", false, "print plots after the summary")
	cmd.Flags().BoolVar(&metrics, "metrics", true, "print derived metrics")
	return cmd
}

func newCarsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cars",
		Short: "list built-in cars",
		RunE: func(cmd *cobra.Command, args []string) error {
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"Preset", "Name", "Type", "Drive", "Mass", "Tire", "Gearbox"})
			for _, name := range config.ListPresets() {
				spec := config.GetPreset(name)
				car, err := spec.ToCar(name)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				gearbox := "single speed"
				if g, ok := car.Geared(); ok {
					gearbox = fmt.Sprintf("%s %dspd", g.Gearbox, g.GearCount())
				}
				t.AppendRow(table.Row{
					name, car.Name, car.Powertrain.Kind(), car.Drivetrain,
					fmt.Sprintf("%.0f kg", car.Mass),
					fmt.Sprintf("%.0fmm %s", car.TireWidthMM, car.Compound),
					gearbox,
				})
			}
			t.Render()
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [preset]",
		Short: "print a preset as yaml, ready to edit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := config.GetPreset(args[0])
			if spec == nil {
				return fmt.Errorf("unknown preset %q", args[0])
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(spec); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(dataDir).List()
			if err != nil {
				return err
			}
			report.Runs(cmd.OutOrStdout(), runs)
			return nil
		},
	}
}

// loadRun opens the run named in args, or the newest run.
func loadRun(args []string) (*storage.Store, *storage.RunMetadata, []race.Trace, error) {
	st := storage.New(dataDir)

	var (
		meta *storage.RunMetadata
		err  error
	)
	if len(args) > 0 {
		meta, err = st.Load(args[0])
	} else {
		meta, err = st.Latest()
	}
	if err != nil {
		return nil, nil, nil, err
	}

	traces, err := st.LoadTelemetry(meta.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	return st, meta, traces, nil
}

func newPlotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run (newest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, meta, traces, err := loadRun(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			report.StoredSummary(out, meta)
			fmt.Fprintln(out)
			report.All(out, traces)
			return nil
		},
	}
}

func newPowerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "power [preset|file.yaml ...]",
		Short: "plot power curves",
		RunE: func(cmd *cobra.Command, args []string) error {
			rf, err := race.Resolve(args, config.Overrides{})
			if err != nil {
				return err
			}
			cars, err := rf.BuildCars()
			if err != nil {
				return err
			}
			report.Power(cmd.OutOrStdout(), cars)
			return nil
		},
	}
}

// output returns the -o file, or stdout when unset.
func output(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func newExportCSVCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run telemetry as csv",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, meta, _, err := loadRun(args)
			if err != nil {
				return err
			}
			w, closeFn, err := output(cmd, out)
			if err != nil {
				return err
			}
			if err := st.CopyTelemetry(w, meta.ID); err != nil {
				_ = closeFn()
				return err
			}
			return closeFn()
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newExportJSONCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and telemetry as json",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, meta, traces, err := loadRun(args)
			if err != nil {
				return err
			}
			w, closeFn, err := output(cmd, out)
			if err != nil {
				return err
			}
			if err := storage.ExportJSON(w, meta, traces); err != nil {
				_ = closeFn()
				return err
			}
			return closeFn()
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newSVGCmd() *cobra.Command {
	var (
		out           string
		kind          string
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render a stored run as an svg chart",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, meta, traces, err := loadRun(args)
			if err != nil {
				return err
			}

			var svg string
			switch kind {
			case "speed":
				svg = export.SpeedTraceSVG(traces, width, height)
			case "distance":
				svg = export.DistanceTraceSVG(traces, meta.Distance, width, height)
			default:
				return fmt.Errorf("unknown chart %q (speed, distance)", kind)
			}
			if svg == "" {
				return fmt.Errorf("run %s has no telemetry", meta.ID)
			}

			if err := os.WriteFile(out, []byte(svg), 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "race.svg", "output file")
	cmd.Flags().StringVar(&kind, "chart", "speed", "chart type (speed, distance)")
	cmd.Flags().IntVar(&width, "width", 900, "width (px)")
	cmd.Flags().IntVar(&height, "height", 450, "height (px)")
	return cmd
}

func newTuneCmd() *cobra.Command {
	var (
		rf     raceFlags
		saveTo string
		steps  int
	)
	cmd := &cobra.Command{
		Use:   "tune [preset|file.yaml]",
		Short: "grid search launch and shift rpm for the lowest elapsed time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rf.resolve(cmd, args)
			if err != nil {
				return err
			}
			if len(r.Entries) != 1 {
				return fmt.Errorf("tune takes exactly one car, got %d", len(r.Entries))
			}
			entry := r.Entries[0]

			params := optim.DefaultParams(entry.Car)
			if len(params) == 0 {
				return fmt.Errorf("%s: %w", entry.Name, optim.ErrNothingToTune)
			}
			if cmd.Flags().Changed("steps") {
				for i, p := range params {
					params[i].Values = optim.Linspace(p.Values[0], p.Values[len(p.Values)-1], steps)
				}
			}

			out, err := optim.NewGridSearch(r.Config, params...).Search(cmd.Context(), entry.Spec)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			t := table.NewWriter()
			t.SetOutputMirror(w)
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{entry.Name, "Value"})
			for _, p := range params {
				t.AppendRow(table.Row{p.Name, fmt.Sprintf("%.0f", out.Best[p.Name])})
			}
			t.AppendSeparator()
			t.AppendRow(table.Row{"baseline ET", fmt.Sprintf("%.3f s", out.Baseline)})
			t.AppendRow(table.Row{"tuned ET", fmt.Sprintf("%.3f s", out.BestET)})
			t.AppendRow(table.Row{"gain", fmt.Sprintf("%.3f s", out.Improvement())})
			t.AppendRow(table.Row{"candidates", len(out.Trials)})
			t.Render()

			if saveTo == "" {
				return nil
			}
			tuned := config.DefaultRaceFile()
			tuned.Cars = []config.CarSpec{optim.Apply(entry.Spec, out.Best)}
			if err := config.Save(saveTo, tuned); err != nil {
				return err
			}
			fmt.Fprintf(w, "wrote %s\n", saveTo)
			return nil
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVar(&saveTo, "save", "", "write the tuned car to this yaml file")
	cmd.Flags().IntVar(&steps, "steps", 8, "grid points per parameter")
	return cmd
}

func newLiveCmd() *cobra.Command {
	var (
		rf     raceFlags
		replay string
	)
	cmd := &cobra.Command{
		Use:   "live [preset|file.yaml ...]",
		Short: "watch a race in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if replay != "" {
				_, meta, traces, err := loadRun([]string{replay})
				if err != nil {
					return err
				}
				return tui.Run(traces, meta.Distance)
			}

			r, err := rf.resolve(cmd, args)
			if err != nil {
				return err
			}
			standings, err := r.Run(cmd.Context())
			if err != nil {
				return err
			}
			return tui.Run(standings.Traces(), r.Config.Distance)
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVar(&replay, "replay", "", "replay a stored run instead of racing")
	return cmd
}
