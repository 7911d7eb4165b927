package gwodds

import (
	"fmt"
)

// LeagueAverages holds the average statistics for all teams in one league.
// This data is ephemeral, being computed once per batch run from the loaded
// season stats and threaded read-only through the fixture computations.
type LeagueAverages struct {
	LeagueID string `json:"leagueId"`

	TotalTeams int `json:"totalTeams"`
	Round      int `json:"round"` // highest matchday reached in the current season, 0 when none played

	// Mean goals per match by venue. League-wide, home goals scored equals
	// away goals conceded, so these two numbers cover all four rates.
	HomeGoalsPerMatch float64 `json:"homeGoalsPerMatch"`
	AwayGoalsPerMatch float64 `json:"awayGoalsPerMatch"`
}

// GoalsPerMatch returns the mean goals scored per match for the venue
func (la *LeagueAverages) GoalsPerMatch(venue Venue) float64 {
	if venue == Home {
		return la.HomeGoalsPerMatch
	}
	return la.AwayGoalsPerMatch
}

// ConcededPerMatch returns the mean goals conceded per match for the venue.
// What home sides concede is what away sides score, and vice versa.
func (la *LeagueAverages) ConcededPerMatch(venue Venue) float64 {
	if venue == Home {
		return la.AwayGoalsPerMatch
	}
	return la.HomeGoalsPerMatch
}

// LeagueContext is the read-only aggregate used by the missing-data fallback
// and the expected-goals normalization. It is computed exactly once per batch
// run, before any fixture computation begins.
type LeagueContext struct {
	config   *GwoddsConfig
	averages map[string]*LeagueAverages
}

// ComputeLeagueContext aggregates the loaded season stats into per-league
// averages. Stats from every season are counted; goal rates change slowly
// enough between seasons that pooling gives the steadier normalization
// constant.
func ComputeLeagueContext(config *GwoddsConfig, stats []*TeamSeasonStats) *LeagueContext {
	type accumulator struct {
		homeGoals   int
		awayGoals   int
		homeMatches int
		awayMatches int
		teams       map[string]bool
		round       int
	}

	accs := make(map[string]*accumulator)
	for _, ts := range stats {
		acc, ok := accs[ts.LeagueID]
		if !ok {
			acc = &accumulator{teams: make(map[string]bool)}
			accs[ts.LeagueID] = acc
		}
		acc.homeGoals += ts.HomeGoalsFor
		acc.awayGoals += ts.AwayGoalsFor
		acc.homeMatches += ts.HomeMatchesPlayed
		acc.awayMatches += ts.AwayMatchesPlayed
		acc.teams[ts.TeamID] = true
		if ts.Season == config.CurrentSeason && ts.MatchesPlayed() > acc.round {
			acc.round = ts.MatchesPlayed()
		}
	}

	averages := make(map[string]*LeagueAverages, len(accs))
	for leagueID, acc := range accs {
		la := &LeagueAverages{
			LeagueID:          leagueID,
			TotalTeams:        len(acc.teams),
			Round:             acc.round,
			HomeGoalsPerMatch: config.DefaultHomeGoalsPerMatch,
			AwayGoalsPerMatch: config.DefaultAwayGoalsPerMatch,
		}
		if acc.homeMatches > 0 {
			la.HomeGoalsPerMatch = float64(acc.homeGoals) / float64(acc.homeMatches)
		}
		if acc.awayMatches > 0 {
			la.AwayGoalsPerMatch = float64(acc.awayGoals) / float64(acc.awayMatches)
		}
		// A league of goalless records would zero the normalization constant
		la.HomeGoalsPerMatch = makeSensible(la.HomeGoalsPerMatch, config.DefaultHomeGoalsPerMatch)
		la.AwayGoalsPerMatch = makeSensible(la.AwayGoalsPerMatch, config.DefaultAwayGoalsPerMatch)
		averages[leagueID] = la
	}

	return &LeagueContext{config: config, averages: averages}
}

// Resolve returns the averages for a league. Resolution order: averages
// computed from loaded stats, then the configured per-league override, then
// nothing. A league absent from both is genuinely unknown and the error lets
// the caller report the fixture as unresolvable.
func (lc *LeagueContext) Resolve(leagueID string) (*LeagueAverages, error) {
	if la, ok := lc.averages[leagueID]; ok {
		return la, nil
	}
	if avg, ok := lc.config.LeagueAverageGoals[leagueID]; ok {
		return &LeagueAverages{
			LeagueID:          leagueID,
			HomeGoalsPerMatch: avg,
			AwayGoalsPerMatch: avg,
		}, nil
	}
	return nil, fmt.Errorf("%w: no league averages for league %s", ErrMissingTeamData, leagueID)
}

// Round returns the highest current-season matchday seen in the league
func (lc *LeagueContext) Round(leagueID string) int {
	if la, ok := lc.averages[leagueID]; ok {
		return la.Round
	}
	return 0
}

// makeSensible guards a normalization constant against zero
func makeSensible(value, fallback float64) float64 {
	if value <= 0.0 {
		return fallback
	}
	return value
}
