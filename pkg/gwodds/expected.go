package gwodds

// EstimateExpectedGoals converts two blended strengths into the Poisson means
// for a fixture using the standard attack-vs-defense-relative-to-league-mean
// formulation:
//
//	home_xg = home_attack * away_defense / league_average_home_goals
//	away_xg = away_attack * home_defense / league_average_away_goals
//
// The strengths are venue-split, so home advantage is already carried by the
// rates themselves; no separate venue multiplier is applied. Both outputs are
// floored at the configured epsilon so the scoreline model never sees a
// degenerate zero-mean distribution. Pure function: identical inputs always
// give identical outputs.
func EstimateExpectedGoals(home, away *BlendedTeamStrength, la *LeagueAverages, minExpectedGoals float64) (homeXG, awayXG float64) {
	homeXG = home.Attack * away.Defense / makeSensible(la.HomeGoalsPerMatch, 1.0)
	awayXG = away.Attack * home.Defense / makeSensible(la.AwayGoalsPerMatch, 1.0)

	if homeXG < minExpectedGoals {
		homeXG = minExpectedGoals
	}
	if awayXG < minExpectedGoals {
		awayXG = minExpectedGoals
	}

	return homeXG, awayXG
}
