package fitness

import (
	"fmt"
	"sort"
)

// HawkDove with resource value v and fight cost c. For c > v the mixed
// equilibrium has a hawk share of v/c.
func HawkDove(v, c float64) *Linear {
	return &Linear{Interactions: [][]float64{
		{(v - c) / 2, v},
		{0, v / 2},
	}}
}

// RockPaperScissors with payoff win for beating and -lose for being beaten.
// win == lose gives neutral cycles around the barycenter.
func RockPaperScissors(win, lose float64) *Linear {
	return &Linear{Interactions: [][]float64{
		{0, -lose, win},
		{win, 0, -lose},
		{-lose, win, 0},
	}}
}

// PrisonersDilemma with temptation t, reward r, punishment p and sucker s.
// Component 0 cooperates, component 1 defects.
func PrisonersDilemma(t, r, p, s float64) *Linear {
	return &Linear{Interactions: [][]float64{
		{r, s},
		{t, p},
	}}
}

// Coordination rewards matching: a on the first convention, b on the second.
func Coordination(a, b float64) *Linear {
	return &Linear{Interactions: [][]float64{
		{a, 0},
		{0, b},
	}}
}

var games = map[string]func() *Linear{
	"hawk_dove":           func() *Linear { return HawkDove(2, 3) },
	"rock_paper_scissors": func() *Linear { return RockPaperScissors(1, 1) },
	"prisoners_dilemma":   func() *Linear { return PrisonersDilemma(5, 3, 1, 0) },
	"coordination":        func() *Linear { return Coordination(2, 1) },
}

// Game returns the named game with its default payoffs.
func Game(name string) (*Linear, error) {
	fn, ok := games[name]
	if !ok {
		return nil, fmt.Errorf("unknown game: %s", name)
	}
	return fn(), nil
}

func ListGames() []string {
	names := make([]string, 0, len(games))
	for name := range games {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
