// Package scoring holds the pure placement and points arithmetic for a game
// night. Nothing in here touches the database or the hub; every function is
// deterministic over its arguments so the same math can run on the server,
// in the realtime client mirror, and in the what-if tooling.
package scoring

import (
	"fmt"
	"sort"
)

type Direction string

const (
	LowerBetter  Direction = "lower_better"
	HigherBetter Direction = "higher_better"
)

// TeamScore is one team's live scoring state for a single game. Instances
// are created once per session and reset, never destroyed.
type TeamScore struct {
	TeamID       int64   `json:"team_id"`
	BaseScore    float64 `json:"base_score"`
	PenaltyTotal float64 `json:"penalty_total"`
	FinalScore   float64 `json:"final_score"`
	Rank         int     `json:"rank"`
	Points       int     `json:"points"`
}

// Recalc refreshes the derived final score after base or penalties changed.
func (ts *TeamScore) Recalc() {
	ts.FinalScore = ts.BaseScore + ts.PenaltyTotal
}

type Penalty struct {
	ID        int64
	Value     float64
	Stackable bool
}

// BasePoints returns the placement-based points before the game multiplier.
// First place is worth teamCount, last place 1. Out-of-range placements are
// worth zero rather than an error so callers never branch on validity.
func BasePoints(place, teamCount int) int {
	if place < 1 || place > teamCount {
		return 0
	}
	return teamCount + 1 - place
}

// GameScore applies a game's point scheme multiplier to the base points.
func GameScore(place, multiplier, teamCount int) int {
	return BasePoints(place, teamCount) * multiplier
}

// RankAndScore assigns Rank and Points in place. Teams with nothing entered
// (final and base both non-positive) are excluded and get rank 0, points 0.
// Equal scores keep their relative input order: the slice order is the
// tie-break, which is why this takes a slice and not a map.
func RankAndScore(scores []*TeamScore, direction Direction, pointScheme, teamCount int) {
	eligible := make([]*TeamScore, 0, len(scores))
	for _, ts := range scores {
		if ts.FinalScore > 0 || ts.BaseScore > 0 {
			eligible = append(eligible, ts)
		} else {
			ts.Rank = 0
			ts.Points = 0
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if direction == LowerBetter {
			return eligible[i].FinalScore < eligible[j].FinalScore
		}
		return eligible[i].FinalScore > eligible[j].FinalScore
	})

	for i, ts := range eligible {
		ts.Rank = i + 1
		ts.Points = (teamCount - ts.Rank + 1) * pointScheme
	}
}

// PenaltyTotal sums the applied penalty deltas for one team. Counts missing
// from the applied map default to zero.
func PenaltyTotal(teamID int64, penalties []Penalty, applied map[int64]map[int64]int) float64 {
	counts, ok := applied[teamID]
	if !ok {
		return 0
	}

	var total float64
	for _, p := range penalties {
		count := counts[p.ID]
		if count == 0 {
			continue
		}
		if !p.Stackable && count > 1 {
			count = 1
		}
		total += float64(count) * p.Value
	}
	return total
}

// OrdinalSuffix renders a 1-based placement as "1st", "2nd", "3rd", "4th",
// with the teens all taking "th".
func OrdinalSuffix(n int) string {
	suffix := "th"
	if mod100 := abs(n) % 100; mod100 < 11 || mod100 > 13 {
		switch abs(n) % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
