package race

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/qmsim/internal/config"
)

// DefaultGrid is raced when no cars are named.
var DefaultGrid = []string{"gt_coupe", "ev_sedan"}

// Resolve turns CLI arguments into a race file. Each argument is either a
// preset name or a yaml file; a file may hold one car or a whole race, in
// which case its integration settings win. Overrides apply to every car.
func Resolve(args []string, ov config.Overrides) (*config.RaceFile, error) {
	if len(args) == 0 {
		args = DefaultGrid
	}

	rf := config.DefaultRaceFile()
	for _, arg := range args {
		if spec := config.GetPreset(arg); spec != nil {
			rf.Cars = append(rf.Cars, *spec)
			continue
		}
		if !isFile(arg) {
			return nil, fmt.Errorf("unknown car %q: not a preset (%s) or a yaml file",
				arg, strings.Join(config.ListPresets(), ", "))
		}
		loaded, err := config.Load(arg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}
		for _, c := range loaded.Cars {
			if c.Name == "" && len(loaded.Cars) == 1 {
				c.Name = strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg))
			}
			rf.Cars = append(rf.Cars, c)
		}
		rf.Dt, rf.Distance, rf.TimeLimit = loaded.Dt, loaded.Distance, loaded.TimeLimit
	}

	for i := range rf.Cars {
		rf.Cars[i] = ov.Apply(rf.Cars[i])
	}
	return rf, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
