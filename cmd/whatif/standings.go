package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"GameNightApi/internal/simulate"
)

// standingsFile is the on-disk input: current team totals plus the games
// that have not been played yet.
type standingsFile struct {
	Teams []simulate.Team `yaml:"teams"`
	Games []simulate.Game `yaml:"games"`
}

func loadStandings(path string) (*standingsFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var standings standingsFile
	err = yaml.Unmarshal(raw, &standings)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if len(standings.Teams) == 0 {
		return nil, fmt.Errorf("%s contains no teams", path)
	}

	return &standings, nil
}

func writeYAML(v any) {
	out, err := yaml.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal output: %v\n", err)
		os.Exit(1)
	}
	os.Stdout.Write(out)
}
