package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/san-kum/qmsim/internal/viz"
)

const envPrefix = "QMSIM"

var (
	cfgFile  string
	dataDir  string
	logLevel string
	theme    string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "qmsim",
		Short:         "quarter mile drag race simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initConfig(cmd)
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level: %s", logLevel)
			}
			logrus.SetLevel(level)
			viz.SetTheme(theme)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default ./qmsim.yaml or ~/.qmsim.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".qmsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", viz.ThemeStrip.Name,
		fmt.Sprintf("color theme (%s)", strings.Join(viz.ThemeNames(), ", ")))

	rootCmd.AddCommand(
		newRunCmd(),
		newCarsCmd(),
		newShowCmd(),
		newListCmd(),
		newPlotCmd(),
		newPowerCmd(),
		newExportCSVCmd(),
		newExportJSONCmd(),
		newSVGCmd(),
		newTuneCmd(),
		newLiveCmd(),
	)
	return rootCmd
}

// initConfig reads the settings file and QMSIM_* environment variables
// into any flag not set on the command line.
func initConfig(cmd *cobra.Command) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName("qmsim")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err == nil {
		logrus.Debugf("using settings file %s", v.ConfigFileUsed())
	}

	bindFlags(cmd, v)
}

// bindFlags applies viper values to unset flags. Dashed flag names map to
// underscored env vars, e.g. --launch-rpm to QMSIM_LAUNCH_RPM.
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if strings.Contains(f.Name, "-") {
			suffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name, fmt.Sprintf("%s_%s", envPrefix, suffix)); err != nil {
				logrus.Warnf("could not bind env var for %s: %v", f.Name, err)
			}
		}
		if !f.Changed && v.IsSet(f.Name) {
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil {
				logrus.Warnf("could not set flag %s from settings: %v", f.Name, err)
			}
		}
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
