package data

import (
	"GameNightApi/internal/assert"
	"GameNightApi/internal/validator"
	"testing"
)

func TestPenaltyUnit(t *testing.T) {
	p := Penalty{Name: "Wrong answer", Value: 5}
	assert.Equal(t, p.Unit(MetricScore), "points")
	assert.Equal(t, p.Unit(MetricTime), "seconds")
}

func TestValidatePenalty(t *testing.T) {
	tests := []struct {
		name    string
		penalty Penalty
		valid   bool
	}{
		{
			name:    "Positive Value",
			penalty: Penalty{Name: "Hint used", Value: 5},
			valid:   true,
		},
		{
			name:    "Negative Value",
			penalty: Penalty{Name: "Head start bonus", Value: -10},
			valid:   true,
		},
		{
			name:    "Below Minimum",
			penalty: Penalty{Name: "Too deep", Value: -1000000},
			valid:   false,
		},
		{
			name:    "Above Maximum",
			penalty: Penalty{Name: "Too steep", Value: 1000000},
			valid:   false,
		},
		{
			name:    "Missing Name",
			penalty: Penalty{Value: 5},
			valid:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validator.New()
			ValidatePenalty(v, &tt.penalty)
			assert.Equal(t, v.Valid(), tt.valid)
		})
	}
}

func TestValidatePenaltyCounts(t *testing.T) {
	penalties := []*Penalty{
		{ID: 1, Name: "Hint used", Value: 5, Stackable: true},
		{ID: 2, Name: "Late start", Value: 10, Stackable: false},
	}

	tests := []struct {
		name   string
		counts map[int64]int
		valid  bool
	}{
		{
			name:   "Stackable Applied Twice",
			counts: map[int64]int{1: 2},
			valid:  true,
		},
		{
			name:   "Non Stackable Applied Once",
			counts: map[int64]int{2: 1},
			valid:  true,
		},
		{
			name:   "Non Stackable Applied Twice",
			counts: map[int64]int{2: 2},
			valid:  false,
		},
		{
			name:   "Unknown Penalty",
			counts: map[int64]int{99: 1},
			valid:  false,
		},
		{
			name:   "Negative Count",
			counts: map[int64]int{1: -1},
			valid:  false,
		},
		{
			name:   "Stackable At Cap",
			counts: map[int64]int{1: 99},
			valid:  true,
		},
		{
			name:   "Stackable Over Cap",
			counts: map[int64]int{1: 100},
			valid:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validator.New()
			ValidatePenaltyCounts(v, penalties, tt.counts)
			assert.Equal(t, v.Valid(), tt.valid)
		})
	}
}
