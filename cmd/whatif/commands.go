package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"GameNightApi/internal/simulate"
)

var selectedTeamID int64

var boundsCmd = &cobra.Command{
	Use:   "bounds",
	Short: "Best and worst achievable final totals per team",
	Run: func(cmd *cobra.Command, args []string) {
		standings, err := loadStandings(standingsPath)
		if err != nil {
			logrus.Fatalf("Failed to load standings: %v", err)
		}

		bounds := simulate.ComputeMaxMinPoints(standings.Teams, standings.Games)
		writeYAML(bounds)
	},
}

var outlookCmd = &cobra.Command{
	Use:   "outlook",
	Short: "Classify a team's chance of finishing first",
	Run: func(cmd *cobra.Command, args []string) {
		standings, err := loadStandings(standingsPath)
		if err != nil {
			logrus.Fatalf("Failed to load standings: %v", err)
		}

		outlook := simulate.EvaluateWinPossibility(standings.Teams, standings.Games,
			selectedTeamID)
		writeYAML(outlook)
	},
}

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Search for a minimal winning placement sequence",
	Run: func(cmd *cobra.Command, args []string) {
		standings, err := loadStandings(standingsPath)
		if err != nil {
			logrus.Fatalf("Failed to load standings: %v", err)
		}

		scenario := simulate.FindMinimalWinningScenario(standings.Teams,
			standings.Games, selectedTeamID)
		if scenario == nil {
			logrus.Warnf("No winning scenario exists for team %d", selectedTeamID)
			return
		}
		writeYAML(scenario)
	},
}

var placementsPath string

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Project final standings from a hypothetical placements file",
	Run: func(cmd *cobra.Command, args []string) {
		standings, err := loadStandings(standingsPath)
		if err != nil {
			logrus.Fatalf("Failed to load standings: %v", err)
		}

		raw, err := os.ReadFile(placementsPath)
		if err != nil {
			logrus.Fatalf("Failed to read placements: %v", err)
		}

		var placements map[int64]map[int64]int
		err = yaml.Unmarshal(raw, &placements)
		if err != nil {
			logrus.Fatalf("Failed to parse placements: %v", err)
		}

		results := simulate.SimulateResults(standings.Teams, standings.Games,
			placements)
		writeYAML(results)
	},
}

func init() {
	outlookCmd.Flags().Int64Var(&selectedTeamID, "team", 0, "Selected team id")
	_ = outlookCmd.MarkFlagRequired("team")

	scenarioCmd.Flags().Int64Var(&selectedTeamID, "team", 0, "Selected team id")
	_ = scenarioCmd.MarkFlagRequired("team")

	simulateCmd.Flags().StringVar(&placementsPath, "placements", "",
		"Path to placements YAML file (game id -> team id -> rank)")
	_ = simulateCmd.MarkFlagRequired("placements")

	rootCmd.AddCommand(boundsCmd)
	rootCmd.AddCommand(outlookCmd)
	rootCmd.AddCommand(scenarioCmd)
	rootCmd.AddCommand(simulateCmd)
}
