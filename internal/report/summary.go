// Package report renders race results for the terminal: a results table,
// the winner line and ascii plots of the telemetry.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/san-kum/qmsim/internal/race"
	"github.com/san-kum/qmsim/internal/storage"
	"github.com/san-kum/qmsim/internal/viz"
)

// KPH converts m/s to km/h.
func KPH(v float64) float64 { return v * 3.6 }

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

// Summary prints one row per car in finishing order and the winner line.
func Summary(w io.Writer, standings race.Standings) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Car", "Type", "Drive", "Tire", "Gearbox", "Shifts", "Mass", "ET", "Trap", "Gap"})

	for _, st := range standings {
		car, sum := st.Car, st.Result.Summary

		gearbox, shifts := "-", "-"
		if g, ok := car.Geared(); ok {
			gearbox = fmt.Sprintf("%s %dspd", g.Gearbox, g.GearCount())
			shifts = fmt.Sprintf("%d", sum.ShiftCount)
		}

		et := fmt.Sprintf("%.2f s", sum.ElapsedTime)
		gap := "-"
		if !sum.Finished {
			et = "DNF"
		} else if st.Position > 1 {
			gap = fmt.Sprintf("+%.2f", standings.Gap(st))
		}

		t.AppendRow(table.Row{
			st.Position,
			st.Name,
			car.Powertrain.Kind(),
			car.Drivetrain,
			fmt.Sprintf("%.0fmm %s", car.TireWidthMM, car.Compound),
			gearbox,
			shifts,
			fmt.Sprintf("%.0f kg", car.Mass),
			et,
			fmt.Sprintf("%.1f km/h", KPH(sum.TrapSpeed)),
			gap,
		})
	}
	t.Render()

	fmt.Fprintln(w)
	fmt.Fprintln(w, WinnerLine(standings))
}

func WinnerLine(standings race.Standings) string {
	w, ok := standings.Winner()
	if !ok {
		return viz.StatusPaused.Render("no car finished")
	}
	return viz.Winner.Render(fmt.Sprintf("🏁 Winner over %s: %s", distanceLabel(w.Result.Config.Distance), w.Name))
}

func distanceLabel(d float64) string {
	if d > 402 && d < 403 {
		return "quarter mile"
	}
	return fmt.Sprintf("%.0f m", d)
}

// Metrics prints the derived metrics of each car side by side.
func Metrics(w io.Writer, standings race.Standings) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Car", "60 ft", "0-100 km/h", "Peak accel", "Shift time", "Traction limited"})
	for _, st := range standings {
		m := st.Result.Metrics
		t.AppendRow(table.Row{
			st.Name,
			seconds(m["sixty_foot_s"]),
			seconds(m["zero_to_100kmh_s"]),
			fmt.Sprintf("%.2f g", m["peak_accel_g"]),
			seconds(m["shift_window_s"]),
			fmt.Sprintf("%.0f%%", 100*m["traction_limited"]),
		})
	}
	t.Render()
}

func seconds(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f s", v)
}

// Runs lists stored runs.
func Runs(w io.Writer, runs []storage.RunMetadata) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "no runs found")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Date", "Distance", "Cars", "Winner"})
	for _, r := range runs {
		names := make([]string, len(r.Cars))
		for i, c := range r.Cars {
			names[i] = c.Name
		}
		winner := r.Winner
		if winner == "" {
			winner = "-"
		}
		t.AppendRow(table.Row{
			r.ID,
			r.Timestamp.Format("2006-01-02 15:04"),
			fmt.Sprintf("%.0f m", r.Distance),
			strings.Join(names, ", "),
			winner,
		})
	}
	t.Render()
}

// StoredSummary prints a stored run without rebuilding its cars.
func StoredSummary(w io.Writer, meta *storage.RunMetadata) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Car", "Type", "Drive", "Tire", "Gearbox", "Shifts", "Mass", "ET", "Trap"})
	for _, c := range meta.Cars {
		gearbox, shifts := "-", "-"
		if c.Gearbox != "" {
			gearbox = fmt.Sprintf("%s %dspd", c.Gearbox, c.Gears)
			shifts = fmt.Sprintf("%d", c.ShiftCount)
		}
		et := fmt.Sprintf("%.2f s", c.ElapsedTime)
		if !c.Finished {
			et = "DNF"
		}
		t.AppendRow(table.Row{
			c.Position, c.Name, c.Powertrain, c.Drivetrain,
			fmt.Sprintf("%.0fmm %s", c.TireWidthMM, c.Compound),
			gearbox, shifts,
			fmt.Sprintf("%.0f kg", c.Mass),
			et,
			fmt.Sprintf("%.1f km/h", KPH(c.TrapSpeed)),
		})
	}
	t.Render()
	if meta.Winner != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, viz.Winner.Render(fmt.Sprintf("🏁 Winner over %s: %s", distanceLabel(meta.Distance), meta.Winner)))
	}
}
