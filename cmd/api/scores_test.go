package main

import (
	"testing"

	"GameNightApi/internal/assert"
	"GameNightApi/internal/data"
	"GameNightApi/internal/scoring"
)

func TestAssignPointsByRankAppliesPenalties(t *testing.T) {
	app := &application{}

	game := &data.Game{
		PointScheme:      2,
		MetricType:       data.MetricTime,
		ScoringDirection: scoring.LowerBetter,
	}
	gamePenalties := []*data.Penalty{
		{ID: 1, Name: "Hint used", Value: 20, Stackable: true},
	}

	scores := []*data.Score{
		{TeamID: 1, ScoreValue: floatPtr(100)},
		{TeamID: 2, ScoreValue: floatPtr(110)},
		{TeamID: 3},
	}

	// Team 1 ran the fastest raw time but two hints cost it 40 seconds, so
	// team 2 takes first place.
	app.assignPointsByRank(game, scores, gamePenalties, map[int64]map[int64]int{
		1: {1: 2},
	})

	assert.Equal(t, scores[0].Points, 2)
	assert.Equal(t, scores[1].Points, 4)
	assert.Equal(t, scores[2].Points, 0)
}

func TestAssignPointsByRankWithoutPenalties(t *testing.T) {
	app := &application{}

	game := &data.Game{
		PointScheme:      3,
		MetricType:       data.MetricScore,
		ScoringDirection: scoring.HigherBetter,
	}

	scores := []*data.Score{
		{TeamID: 1, ScoreValue: floatPtr(50)},
		{TeamID: 2, ScoreValue: floatPtr(80)},
	}

	app.assignPointsByRank(game, scores, nil, nil)

	assert.Equal(t, scores[0].Points, 3)
	assert.Equal(t, scores[1].Points, 6)
}

func floatPtr(v float64) *float64 {
	return &v
}
