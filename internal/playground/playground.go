// Package playground is the mutable what-if model behind the standings
// explorer: a local copy of teams and remaining games plus a working
// placement map that can be edited, shuffled, and reset without touching
// live data. Observers are notified synchronously after every mutation.
package playground

import (
	"math/rand"
	"sort"
	"sync"

	"GameNightApi/internal/simulate"
)

type Playground struct {
	mu             sync.Mutex
	teams          []simulate.Team
	games          []simulate.Game
	placements     map[int64]map[int64]int
	selectedTeamID int64
	nextSubID      int
	subscribers    map[int]func()
}

// New copies the given standings, orders teams by descending current points,
// and seeds every game's placements to that order.
func New(teams []simulate.Team, games []simulate.Game) *Playground {
	p := &Playground{
		teams:       append([]simulate.Team(nil), teams...),
		games:       append([]simulate.Game(nil), games...),
		subscribers: make(map[int]func()),
	}
	sort.SliceStable(p.teams, func(i, j int) bool {
		return p.teams[i].TotalPoints > p.teams[j].TotalPoints
	})
	p.placements = p.identityPlacements()
	return p
}

func (p *Playground) identityPlacements() map[int64]map[int64]int {
	placements := make(map[int64]map[int64]int, len(p.games))
	for _, g := range p.games {
		ranks := make(map[int64]int, len(p.teams))
		for i, team := range p.teams {
			ranks[team.ID] = i + 1
		}
		placements[g.ID] = ranks
	}
	return placements
}

// Subscribe registers an observer called after every mutation and returns
// its disposer. Observers run synchronously on the mutating goroutine.
func (p *Playground) Subscribe(fn func()) func() {
	p.mu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subscribers, id)
		p.mu.Unlock()
	}
}

func (p *Playground) notify() {
	p.mu.Lock()
	subs := make([]func(), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// ResetPlacements reinitializes every game back to identity order: the team
// ranked i-th in the current standings gets placement i+1.
func (p *Playground) ResetPlacements() {
	p.mu.Lock()
	p.placements = p.identityPlacements()
	p.mu.Unlock()
	p.notify()
}

// SetPlacement moves a team to the given rank within one game. If another
// team already holds that rank the two swap, so the game's placement map
// stays a permutation of 1..teamCount after every call.
func (p *Playground) SetPlacement(gameID, teamID int64, rank int) {
	p.mu.Lock()
	ranks, ok := p.placements[gameID]
	if !ok || rank < 1 || rank > len(p.teams) {
		p.mu.Unlock()
		return
	}
	prev, ok := ranks[teamID]
	if !ok {
		p.mu.Unlock()
		return
	}

	for otherID, otherRank := range ranks {
		if otherID != teamID && otherRank == rank {
			ranks[otherID] = prev
			break
		}
	}
	ranks[teamID] = rank
	p.mu.Unlock()
	p.notify()
}

// RandomizePlacements assigns one game a uniformly shuffled permutation.
func (p *Playground) RandomizePlacements(gameID int64) {
	p.mu.Lock()
	ranks, ok := p.placements[gameID]
	if !ok {
		p.mu.Unlock()
		return
	}

	perm := rand.Perm(len(p.teams))
	for i, team := range p.teams {
		ranks[team.ID] = perm[i] + 1
	}
	p.mu.Unlock()
	p.notify()
}

func (p *Playground) SetSelectedTeamID(teamID int64) {
	p.mu.Lock()
	p.selectedTeamID = teamID
	p.mu.Unlock()
	p.notify()
}

func (p *Playground) SelectedTeamID() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selectedTeamID
}

// Placements returns a deep copy of the working placement map.
func (p *Playground) Placements() map[int64]map[int64]int {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[int64]map[int64]int, len(p.placements))
	for gameID, ranks := range p.placements {
		cp := make(map[int64]int, len(ranks))
		for teamID, rank := range ranks {
			cp[teamID] = rank
		}
		out[gameID] = cp
	}
	return out
}

// Results projects final standings under the current working placements.
func (p *Playground) Results() []simulate.Standing {
	p.mu.Lock()
	teams := append([]simulate.Team(nil), p.teams...)
	games := append([]simulate.Game(nil), p.games...)
	p.mu.Unlock()

	return simulate.SimulateResults(teams, games, p.Placements())
}

// Outlook classifies the selected team's winning chances from the live
// standings, ignoring the hypothetical placements.
func (p *Playground) Outlook() simulate.Outlook {
	p.mu.Lock()
	teams := append([]simulate.Team(nil), p.teams...)
	games := append([]simulate.Game(nil), p.games...)
	selected := p.selectedTeamID
	p.mu.Unlock()

	return simulate.EvaluateWinPossibility(teams, games, selected)
}

// WinningScenario searches for a minimal winning path for the selected team.
func (p *Playground) WinningScenario() *simulate.Scenario {
	p.mu.Lock()
	teams := append([]simulate.Team(nil), p.teams...)
	games := append([]simulate.Game(nil), p.games...)
	selected := p.selectedTeamID
	p.mu.Unlock()

	return simulate.FindMinimalWinningScenario(teams, games, selected)
}
