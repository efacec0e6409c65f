package scoring

import (
	"GameNightApi/internal/assert"
	"testing"
)

func TestBasePointsSymmetry(t *testing.T) {
	for teamCount := 1; teamCount <= 12; teamCount++ {
		for place := 1; place <= teamCount; place++ {
			sum := BasePoints(place, teamCount) + BasePoints(teamCount+1-place, teamCount)
			if sum != teamCount+1 {
				t.Errorf("teamCount=%d place=%d: symmetry sum got %d, want %d",
					teamCount, place, sum, teamCount+1)
			}
		}
	}
}

func TestBasePointsOutOfRange(t *testing.T) {
	tests := []struct {
		name      string
		place     int
		teamCount int
		want      int
	}{
		{"Zero Place", 0, 5, 0},
		{"Negative Place", -3, 5, 0},
		{"Past Last Place", 6, 5, 0},
		{"First Place", 1, 5, 5},
		{"Last Place", 5, 5, 1},
		{"Single Team", 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, BasePoints(tt.place, tt.teamCount), tt.want)
		})
	}
}

func TestGameScore(t *testing.T) {
	assert.Equal(t, GameScore(1, 3, 3), 9)
	assert.Equal(t, GameScore(3, 3, 3), 3)
	assert.Equal(t, GameScore(4, 3, 3), 0)
	assert.Equal(t, GameScore(1, 5, 3), 15)
}

func TestRankAndScore(t *testing.T) {
	t.Run("Higher Better", func(t *testing.T) {
		scores := []*TeamScore{
			{TeamID: 1, BaseScore: 40, FinalScore: 40},
			{TeamID: 2, BaseScore: 55, FinalScore: 55},
			{TeamID: 3, BaseScore: 10, FinalScore: 10},
		}
		RankAndScore(scores, HigherBetter, 2, 3)

		assert.Equal(t, scores[1].Rank, 1)
		assert.Equal(t, scores[1].Points, 6)
		assert.Equal(t, scores[0].Rank, 2)
		assert.Equal(t, scores[0].Points, 4)
		assert.Equal(t, scores[2].Rank, 3)
		assert.Equal(t, scores[2].Points, 2)
	})

	t.Run("Lower Better", func(t *testing.T) {
		scores := []*TeamScore{
			{TeamID: 1, BaseScore: 12.5, FinalScore: 12.5},
			{TeamID: 2, BaseScore: 9.1, FinalScore: 9.1},
		}
		RankAndScore(scores, LowerBetter, 1, 2)

		assert.Equal(t, scores[1].Rank, 1)
		assert.Equal(t, scores[0].Rank, 2)
	})

	t.Run("Unscored Excluded", func(t *testing.T) {
		scores := []*TeamScore{
			{TeamID: 1},
			{TeamID: 2, BaseScore: 3, FinalScore: 3},
		}
		RankAndScore(scores, HigherBetter, 1, 2)

		assert.Equal(t, scores[0].Rank, 0)
		assert.Equal(t, scores[0].Points, 0)
		assert.Equal(t, scores[1].Rank, 1)
		assert.Equal(t, scores[1].Points, 2)
	})

	t.Run("Ties Keep Input Order", func(t *testing.T) {
		scores := []*TeamScore{
			{TeamID: 7, BaseScore: 20, FinalScore: 20},
			{TeamID: 8, BaseScore: 20, FinalScore: 20},
			{TeamID: 9, BaseScore: 20, FinalScore: 20},
		}
		RankAndScore(scores, HigherBetter, 1, 3)

		assert.Equal(t, scores[0].Rank, 1)
		assert.Equal(t, scores[1].Rank, 2)
		assert.Equal(t, scores[2].Rank, 3)
	})

	t.Run("Idempotent", func(t *testing.T) {
		scores := []*TeamScore{
			{TeamID: 1, BaseScore: 4, FinalScore: 4},
			{TeamID: 2, BaseScore: 8, FinalScore: 8},
			{TeamID: 3},
		}
		RankAndScore(scores, HigherBetter, 3, 3)
		firstRanks := []int{scores[0].Rank, scores[1].Rank, scores[2].Rank}
		firstPoints := []int{scores[0].Points, scores[1].Points, scores[2].Points}

		RankAndScore(scores, HigherBetter, 3, 3)
		assert.IntSliceEqual(t, []int{scores[0].Rank, scores[1].Rank, scores[2].Rank}, firstRanks)
		assert.IntSliceEqual(t, []int{scores[0].Points, scores[1].Points, scores[2].Points},
			firstPoints)
	})

	t.Run("Penalty Pushes Below Zero", func(t *testing.T) {
		scores := []*TeamScore{
			{TeamID: 1, BaseScore: 5, PenaltyTotal: -10},
			{TeamID: 2, BaseScore: 5},
		}
		for _, ts := range scores {
			ts.Recalc()
		}
		RankAndScore(scores, HigherBetter, 1, 2)

		// Still ranked: base score was entered even though final is negative.
		assert.Equal(t, scores[0].Rank, 2)
		assert.Equal(t, scores[1].Rank, 1)
	})
}

func TestPenaltyTotal(t *testing.T) {
	penalties := []Penalty{
		{ID: 1, Value: -5, Stackable: true},
		{ID: 2, Value: 10, Stackable: false},
		{ID: 3, Value: -2.5, Stackable: true},
	}

	tests := []struct {
		name    string
		teamID  int64
		applied map[int64]map[int64]int
		want    float64
	}{
		{
			name:   "Stacked And Single",
			teamID: 4,
			applied: map[int64]map[int64]int{
				4: {1: 3, 2: 1},
			},
			want: -5,
		},
		{
			name:    "No Entries",
			teamID:  4,
			applied: map[int64]map[int64]int{},
			want:    0,
		},
		{
			name:   "Non Stackable Clamped",
			teamID: 4,
			applied: map[int64]map[int64]int{
				4: {2: 5},
			},
			want: 10,
		},
		{
			name:   "Unknown Penalty Ignored",
			teamID: 4,
			applied: map[int64]map[int64]int{
				4: {99: 2},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, PenaltyTotal(tt.teamID, penalties, tt.applied), tt.want)
		})
	}
}

func TestOrdinalSuffix(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "1st"},
		{2, "2nd"},
		{3, "3rd"},
		{4, "4th"},
		{11, "11th"},
		{12, "12th"},
		{13, "13th"},
		{21, "21st"},
		{22, "22nd"},
		{101, "101st"},
		{111, "111th"},
	}

	for _, tt := range tests {
		assert.Equal(t, OrdinalSuffix(tt.n), tt.want)
	}
}
