// Package simulate projects final standings from current totals and the
// games still to be played. Like the scoring package it is pure: invalid
// input degrades to sentinel results (nil scenario, zeroed maps, a "none"
// outlook with an explanation) instead of errors or panics.
package simulate

import (
	"fmt"
	"math"
	"sort"

	"GameNightApi/internal/scoring"
)

// MaxScenarioGames bounds the brute-force search at teamCount^10 candidate
// placement sequences. Past that the search declines to run rather than
// silently time out.
const MaxScenarioGames = 10

type Team struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	TotalPoints int    `json:"total_points" yaml:"total_points"`
}

type Game struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	PointScheme int    `json:"point_scheme" yaml:"point_scheme"`
}

// Bounds holds the best and worst achievable final totals for one team.
type Bounds struct {
	Max int `json:"max"`
	Min int `json:"min"`
}

// ComputeMaxMinPoints bounds every team's final total: Max assumes first
// place in every remaining game, Min assumes last place in every one.
func ComputeMaxMinPoints(teams []Team, games []Game) map[int64]Bounds {
	bounds := make(map[int64]Bounds, len(teams))
	teamCount := len(teams)

	for _, team := range teams {
		b := Bounds{Max: team.TotalPoints, Min: team.TotalPoints}
		for _, g := range games {
			b.Max += scoring.GameScore(1, g.PointScheme, teamCount)
			b.Min += scoring.GameScore(teamCount, g.PointScheme, teamCount)
		}
		bounds[team.ID] = b
	}

	return bounds
}

type Status string

const (
	StatusNone       Status = "none"
	StatusGuaranteed Status = "guaranteed"
	StatusPossible   Status = "possible"
)

// Outlook classifies a team's chance of finishing first. Exactly one of the
// three statuses holds for any input.
type Outlook struct {
	Status        Status `json:"status"`
	Reason        string `json:"reason,omitempty"`
	PointsNeeded  int    `json:"points_needed,omitempty"`
	BlockingRival *Team  `json:"blocking_rival,omitempty"`
	RivalMin      int    `json:"rival_min,omitempty"`
}

// EvaluateWinPossibility classifies the selected team as mathematically
// eliminated (none), already certain to win (guaranteed), or in between
// (possible, with the minimum net gain needed to guarantee overtaking the
// best possible rival outcome).
func EvaluateWinPossibility(teams []Team, games []Game, selectedTeamID int64) Outlook {
	var selected *Team
	for i := range teams {
		if teams[i].ID == selectedTeamID {
			selected = &teams[i]
			break
		}
	}
	if selected == nil {
		return Outlook{
			Status: StatusNone,
			Reason: fmt.Sprintf("team %d not found", selectedTeamID),
		}
	}

	bounds := ComputeMaxMinPoints(teams, games)
	own := bounds[selectedTeamID]

	var blocking *Team
	maxRivalMin := math.MinInt
	maxRivalMax := math.MinInt
	for i := range teams {
		if teams[i].ID == selectedTeamID {
			continue
		}
		rb := bounds[teams[i].ID]
		if rb.Min > maxRivalMin {
			maxRivalMin = rb.Min
			blocking = &teams[i]
		}
		if rb.Max > maxRivalMax {
			maxRivalMax = rb.Max
		}
	}
	if blocking == nil {
		// No rivals at all.
		return Outlook{Status: StatusGuaranteed}
	}

	switch {
	case own.Max < maxRivalMin:
		rival := *blocking
		return Outlook{
			Status: StatusNone,
			Reason: fmt.Sprintf("%s finishes with at least %d points even when placing last"+
				" in every game", rival.Name, maxRivalMin),
			BlockingRival: &rival,
			RivalMin:      maxRivalMin,
		}
	case own.Min > maxRivalMax:
		return Outlook{Status: StatusGuaranteed}
	default:
		return Outlook{
			Status:       StatusPossible,
			PointsNeeded: maxRivalMax - selected.TotalPoints + 1,
		}
	}
}

// Scenario is one winning placement sequence for the selected team, with the
// rival totals produced by the greedy counter-assignment.
type Scenario struct {
	TeamID      int64         `json:"team_id"`
	Placements  []int         `json:"placements"`
	ByGame      map[int64]int `json:"placements_by_game"`
	TeamTotal   int           `json:"team_total"`
	RivalTotals map[int64]int `json:"rival_totals"`
	preference  float64
}

// FindMinimalWinningScenario searches every placement sequence the selected
// team could produce across the remaining games. Rivals are assigned
// greedily against the team: after each game the rival with the highest
// accumulated total takes the worst placement still open for that game.
// Among winning candidates, the returned scenario is the one with placements
// closest to mid-field and lowest variance across games, so the narrative is
// a balanced win rather than a lucky streak. Returns nil when no sequence
// wins, the team is unknown, or the game count exceeds MaxScenarioGames.
func FindMinimalWinningScenario(teams []Team, games []Game, selectedTeamID int64) *Scenario {
	if len(games) > MaxScenarioGames {
		return nil
	}

	selectedIdx := -1
	for i := range teams {
		if teams[i].ID == selectedTeamID {
			selectedIdx = i
			break
		}
	}
	if selectedIdx == -1 {
		return nil
	}

	teamCount := len(teams)
	rivals := make([]Team, 0, teamCount-1)
	for i := range teams {
		if i != selectedIdx {
			rivals = append(rivals, teams[i])
		}
	}

	placements := make([]int, len(games))
	for i := range placements {
		placements[i] = 1
	}

	var best *Scenario
	for {
		if s := evaluateScenario(teams[selectedIdx], rivals, games, teamCount, placements); s != nil {
			if best == nil || s.preference > best.preference {
				best = s
			}
		}

		if !nextPlacementVector(placements, teamCount) {
			break
		}
	}

	return best
}

// evaluateScenario plays out one candidate sequence and returns it as a
// Scenario when the selected team strictly beats every rival.
func evaluateScenario(selected Team, rivals []Team, games []Game, teamCount int,
	placements []int) *Scenario {
	teamTotal := selected.TotalPoints
	for i, g := range games {
		teamTotal += scoring.GameScore(placements[i], g.PointScheme, teamCount)
	}

	rivalTotals := make(map[int64]int, len(rivals))
	for _, r := range rivals {
		rivalTotals[r.ID] = r.TotalPoints
	}

	// Greedy per game: standings shift as the scenario unfolds, so the rival
	// ordering is recomputed before every game.
	for i, g := range games {
		order := make([]Team, len(rivals))
		copy(order, rivals)
		sort.SliceStable(order, func(a, b int) bool {
			return rivalTotals[order[a].ID] > rivalTotals[order[b].ID]
		})

		place := teamCount
		for _, r := range order {
			if place == placements[i] {
				place--
			}
			rivalTotals[r.ID] += scoring.GameScore(place, g.PointScheme, teamCount)
			place--
		}
	}

	for _, total := range rivalTotals {
		if total >= teamTotal {
			return nil
		}
	}

	byGame := make(map[int64]int, len(games))
	for i, g := range games {
		byGame[g.ID] = placements[i]
	}

	return &Scenario{
		TeamID:      selected.ID,
		Placements:  append([]int(nil), placements...),
		ByGame:      byGame,
		TeamTotal:   teamTotal,
		RivalTotals: rivalTotals,
		preference:  preferenceScore(placements),
	}
}

// preferenceScore rewards placements near position 2.5 and penalizes spread
// across games. Higher is better.
func preferenceScore(placements []int) float64 {
	if len(placements) == 0 {
		return 0
	}

	var middleDistance, mean float64
	for _, p := range placements {
		middleDistance += math.Abs(float64(p) - 2.5)
		mean += float64(p)
	}
	middleDistance /= float64(len(placements))
	mean /= float64(len(placements))

	var variance float64
	for _, p := range placements {
		d := float64(p) - mean
		variance += d * d
	}
	variance /= float64(len(placements))

	return -(middleDistance + variance)
}

// nextPlacementVector advances the candidate sequence like an odometer over
// [1, teamCount]^len(placements). Returns false once every sequence has been
// produced.
func nextPlacementVector(placements []int, teamCount int) bool {
	for i := len(placements) - 1; i >= 0; i-- {
		if placements[i] < teamCount {
			placements[i]++
			return true
		}
		placements[i] = 1
	}
	return false
}

// Standing is a projected final ranking row produced by SimulateResults.
type Standing struct {
	Team       Team `json:"team"`
	GamePoints int  `json:"game_points"`
	Total      int  `json:"total"`
}

// SimulateResults applies a hypothetical placement map (gameID → teamID →
// rank) to the current totals and returns standings sorted best first.
// Teams missing from a game's map simply score nothing for it.
func SimulateResults(teams []Team, games []Game, placements map[int64]map[int64]int) []Standing {
	teamCount := len(teams)
	standings := make([]Standing, 0, teamCount)

	for _, team := range teams {
		var gamePoints int
		for _, g := range games {
			if ranks, ok := placements[g.ID]; ok {
				gamePoints += scoring.GameScore(ranks[team.ID], g.PointScheme, teamCount)
			}
		}
		standings = append(standings, Standing{
			Team:       team,
			GamePoints: gamePoints,
			Total:      team.TotalPoints + gamePoints,
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Total > standings[j].Total
	})

	return standings
}
