package data

import (
	"GameNightApi/internal/assert"
	"GameNightApi/internal/validator"
	"testing"
)

func TestTeamAbbreviation(t *testing.T) {
	tests := []struct {
		name string
		team string
		want string
	}{
		{
			name: "Multi Word Uses Initials",
			team: "Super Team",
			want: "ST",
		},
		{
			name: "Three Words",
			team: "The Quiz Lords",
			want: "TQL",
		},
		{
			name: "Single Long Word Uses Prefix",
			team: "Titans",
			want: "TIT",
		},
		{
			name: "Short Word Kept Whole",
			team: "Ox",
			want: "OX",
		},
		{
			name: "Empty Name",
			team: "",
			want: "",
		},
		{
			name: "Surrounding Whitespace",
			team: "  Night Owls  ",
			want: "NO",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			team := Team{Name: tt.team}
			assert.Equal(t, team.Abbreviation(), tt.want)
		})
	}
}

func TestValidateTeam(t *testing.T) {
	tests := []struct {
		name  string
		team  Team
		valid bool
	}{
		{
			name:  "Valid Team",
			team:  Team{Name: "Night Owls", Color: "#3b82f6"},
			valid: true,
		},
		{
			name:  "Missing Name",
			team:  Team{Color: "#3b82f6"},
			valid: false,
		},
		{
			name:  "Bad Color",
			team:  Team{Name: "Night Owls", Color: "blue"},
			valid: false,
		},
		{
			name:  "Short Hex Color",
			team:  Team{Name: "Night Owls", Color: "#3b8"},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validator.New()
			ValidateTeam(v, &tt.team)
			assert.Equal(t, v.Valid(), tt.valid)
		})
	}
}
