package data

import (
	"GameNightApi/internal/assert"
	"testing"
)

func TestAssignLeaderboardRanks(t *testing.T) {
	entries := []*LeaderboardEntry{
		{TeamID: 1, TotalPoints: 29},
		{TeamID: 2, TotalPoints: 21},
		{TeamID: 3, TotalPoints: 21},
		{TeamID: 4, TotalPoints: 13},
		{TeamID: 5, TotalPoints: 0},
	}

	assignLeaderboardRanks(entries)

	assert.Equal(t, entries[0].Rank, 1)
	assert.Equal(t, entries[1].Rank, 2)
	assert.Equal(t, entries[2].Rank, 2)
	assert.Equal(t, entries[3].Rank, 4)
	assert.Equal(t, entries[4].Rank, 5)
}

func TestAssignLeaderboardRanksEmpty(t *testing.T) {
	assignLeaderboardRanks(nil)
	assignLeaderboardRanks([]*LeaderboardEntry{})
}
