package gwodds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateExpectedGoalsFormula(t *testing.T) {
	home := &BlendedTeamStrength{TeamID: "arsenal", Venue: Home, Attack: 2.1, Defense: 0.8}
	away := &BlendedTeamStrength{TeamID: "villa", Venue: Away, Attack: 1.2, Defense: 1.4}
	la := &LeagueAverages{LeagueID: "47", HomeGoalsPerMatch: 1.6, AwayGoalsPerMatch: 1.2}

	homeXG, awayXG := EstimateExpectedGoals(home, away, la, 0.05)

	assert.InDelta(t, 2.1*1.4/1.6, homeXG, 1e-12)
	assert.InDelta(t, 1.2*0.8/1.2, awayXG, 1e-12)
}

func TestEstimateExpectedGoalsFloor(t *testing.T) {
	home := &BlendedTeamStrength{Attack: 0.0, Defense: 0.1}
	away := &BlendedTeamStrength{Attack: 0.1, Defense: 0.1}
	la := &LeagueAverages{HomeGoalsPerMatch: 1.5, AwayGoalsPerMatch: 1.1}

	homeXG, awayXG := EstimateExpectedGoals(home, away, la, 0.05)

	// a zero-attack side still gets the epsilon floor
	assert.InDelta(t, 0.05, homeXG, 1e-12)
	assert.InDelta(t, 0.05, awayXG, 1e-12)
}

func TestEstimateExpectedGoalsDeterministic(t *testing.T) {
	home := &BlendedTeamStrength{Attack: 1.7, Defense: 1.0}
	away := &BlendedTeamStrength{Attack: 1.1, Defense: 1.3}
	la := &LeagueAverages{HomeGoalsPerMatch: 1.5, AwayGoalsPerMatch: 1.1}

	h1, a1 := EstimateExpectedGoals(home, away, la, 0.05)
	h2, a2 := EstimateExpectedGoals(home, away, la, 0.05)

	assert.Equal(t, h1, h2)
	assert.Equal(t, a1, a2)
}

func TestEstimateExpectedGoalsGuardsZeroAverages(t *testing.T) {
	home := &BlendedTeamStrength{Attack: 1.5, Defense: 1.0}
	away := &BlendedTeamStrength{Attack: 1.0, Defense: 1.0}
	la := &LeagueAverages{HomeGoalsPerMatch: 0.0, AwayGoalsPerMatch: 0.0}

	// a zeroed normalization constant falls back to 1.0 instead of dividing
	// by zero
	homeXG, awayXG := EstimateExpectedGoals(home, away, la, 0.05)
	assert.InDelta(t, 1.5, homeXG, 1e-12)
	assert.InDelta(t, 1.0, awayXG, 1e-12)
}
