package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	standingsPath string
	logLevel      string
)

var rootCmd = &cobra.Command{
	Use:   "whatif",
	Short: "Offline what-if analysis over game night standings",
	Long: "Load a standings YAML file (current totals plus the games still to be " +
		"played) and project bounds, outlooks and winning scenarios without a " +
		"running server.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level %q: %v", logLevel, err)
		}
		logrus.SetLevel(level)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&standingsPath, "standings", "",
		"Path to standings YAML file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log verbosity level")
	_ = rootCmd.MarkPersistentFlagRequired("standings")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
