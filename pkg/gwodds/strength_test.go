package gwodds

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statsRecord builds an in-memory stats record with the per-match rates set
// directly and no shot-quality rates, matching what the store loads for a
// source without them
func statsRecord(teamID, leagueID, season string, played int, rates ...float64) *TeamSeasonStats {
	ts := &TeamSeasonStats{
		TeamID:   teamID,
		LeagueID: leagueID,
		Season:   season,

		HomeMatchesPlayed: played,
		AwayMatchesPlayed: played,

		HomeXGForPerMatch:     -1.0,
		HomeXGAgainstPerMatch: -1.0,
		AwayXGForPerMatch:     -1.0,
		AwayXGAgainstPerMatch: -1.0,

		HomeFormGoalsForPerMatch:     -1.0,
		HomeFormGoalsAgainstPerMatch: -1.0,
		AwayFormGoalsForPerMatch:     -1.0,
		AwayFormGoalsAgainstPerMatch: -1.0,
	}
	if len(rates) == 4 {
		ts.HomeGoalsForPerMatch = rates[0]
		ts.HomeGoalsAgainstPerMatch = rates[1]
		ts.AwayGoalsForPerMatch = rates[2]
		ts.AwayGoalsAgainstPerMatch = rates[3]
	}
	return ts
}

func fixedWeightBlender(t *testing.T, weight float64, stats ...*TeamSeasonStats) *TeamStrengthBlender {
	t.Helper()
	config := DefaultGwoddsConfig()
	config.BlendWeight = weight
	require.NoError(t, ValidateConfig(config))
	return NewTeamStrengthBlender(config, ComputeLeagueContext(config, stats))
}

func TestBlendWeightedAverage(t *testing.T) {
	current := statsRecord("arsenal", "47", "2025/2026", 6, 2.0, 0.8, 1.6, 1.0)
	previous := statsRecord("arsenal", "47", "2024/2025", 19, 1.4, 1.2, 1.0, 1.4)

	b := fixedWeightBlender(t, 0.75, current, previous)

	strength, err := b.Blend("arsenal", "47", current, previous, Home)
	require.NoError(t, err)

	assert.Equal(t, ProvenanceBlended, strength.Provenance)
	assert.InDelta(t, 0.75*2.0+0.25*1.4, strength.Attack, 1e-12)
	assert.InDelta(t, 0.75*0.8+0.25*1.2, strength.Defense, 1e-12)
}

func TestBlendWeightOneMatchesCurrentOnly(t *testing.T) {
	current := statsRecord("arsenal", "47", "2025/2026", 6, 2.0, 0.8, 1.6, 1.0)
	previous := statsRecord("arsenal", "47", "2024/2025", 19, 1.4, 1.2, 1.0, 1.4)

	b := fixedWeightBlender(t, 1.0, current, previous)

	both, err := b.Blend("arsenal", "47", current, previous, Away)
	require.NoError(t, err)
	currentOnly, err := b.Blend("arsenal", "47", current, nil, Away)
	require.NoError(t, err)

	assert.InDelta(t, currentOnly.Attack, both.Attack, 1e-12)
	assert.InDelta(t, currentOnly.Defense, both.Defense, 1e-12)
	assert.Equal(t, ProvenanceBlended, both.Provenance)
	assert.Equal(t, ProvenanceCurrentOnly, currentOnly.Provenance)
}

func TestBlendWeightZeroMatchesPreviousUnpenalized(t *testing.T) {
	current := statsRecord("arsenal", "47", "2025/2026", 6, 2.0, 0.8, 1.6, 1.0)
	previous := statsRecord("arsenal", "47", "2024/2025", 19, 1.4, 1.2, 1.0, 1.4)

	b := fixedWeightBlender(t, 0.0, current, previous)

	strength, err := b.Blend("arsenal", "47", current, previous, Home)
	require.NoError(t, err)

	// weight zero means the raw previous rates, without the promotion penalty
	assert.InDelta(t, 1.4, strength.Attack, 1e-12)
	assert.InDelta(t, 1.2, strength.Defense, 1e-12)
	assert.Equal(t, ProvenanceBlended, strength.Provenance)
}

func TestBlendDynamicWeightFollowsLeagueRound(t *testing.T) {
	// 8 matches into the season puts the league at round 8, which is 0.6
	// through the default 5..10 transition window
	current := statsRecord("arsenal", "47", "2025/2026", 4, 2.0, 0.8, 1.6, 1.0)
	previous := statsRecord("arsenal", "47", "2024/2025", 19, 1.4, 1.2, 1.0, 1.4)

	config := DefaultGwoddsConfig()
	require.Equal(t, -1.0, config.BlendWeight)
	b := NewTeamStrengthBlender(config, ComputeLeagueContext(config, []*TeamSeasonStats{current, previous}))

	strength, err := b.Blend("arsenal", "47", current, previous, Home)
	require.NoError(t, err)

	assert.InDelta(t, 0.6*2.0+0.4*1.4, strength.Attack, 1e-12)
	assert.InDelta(t, 0.6*0.8+0.4*1.2, strength.Defense, 1e-12)
}

func TestBlendPromotionPenalty(t *testing.T) {
	previous := statsRecord("leeds", "47", "2024/2025", 23, 1.8, 0.9, 1.3, 1.1)

	b := fixedWeightBlender(t, 0.5, previous)

	strength, err := b.Blend("leeds", "47", nil, previous, Home)
	require.NoError(t, err)

	assert.Equal(t, ProvenancePreviousOnly, strength.Provenance)
	assert.InDelta(t, 1.8*0.9, strength.Attack, 1e-12)
	assert.InDelta(t, 0.9*0.9, strength.Defense, 1e-12)

	// the penalized strength is strictly below the raw prior-season rate
	assert.Less(t, strength.Attack, 1.8)
}

func TestBlendZeroMatchesCountsAsAbsent(t *testing.T) {
	// a record exists but no matches were played yet
	current := statsRecord("leeds", "47", "2025/2026", 0)
	previous := statsRecord("leeds", "47", "2024/2025", 23, 1.8, 0.9, 1.3, 1.1)
	filler := statsRecord("other", "47", "2024/2025", 19, 1.5, 1.1, 1.1, 1.5)

	b := fixedWeightBlender(t, 0.5, current, previous, filler)

	strength, err := b.Blend("leeds", "47", current, previous, Home)
	require.NoError(t, err)
	assert.Equal(t, ProvenancePreviousOnly, strength.Provenance)
}

func TestBlendLeagueAverageFallback(t *testing.T) {
	// another team's record gives the league its averages
	other := &TeamSeasonStats{
		TeamID: "other", LeagueID: "47", Season: "2024/2025",
		HomeMatchesPlayed: 10, AwayMatchesPlayed: 10,
		HomeGoalsFor: 16, AwayGoalsFor: 11,
		HomeXGForPerMatch: -1, HomeXGAgainstPerMatch: -1,
		AwayXGForPerMatch: -1, AwayXGAgainstPerMatch: -1,
	}

	b := fixedWeightBlender(t, 0.5, other)

	strength, err := b.Blend("newteam", "47", nil, nil, Home)
	require.NoError(t, err)

	assert.Equal(t, ProvenanceLeagueAverage, strength.Provenance)
	assert.InDelta(t, 1.6, strength.Attack, 1e-12)  // league home goals per match
	assert.InDelta(t, 1.1, strength.Defense, 1e-12) // home sides concede the away rate
}

func TestBlendUnknownLeagueFails(t *testing.T) {
	b := fixedWeightBlender(t, 0.5)

	_, err := b.Blend("ghost", "999", nil, nil, Home)
	assert.ErrorIs(t, err, ErrMissingTeamData)
}

func TestBlendConfiguredLeagueOverride(t *testing.T) {
	config := DefaultGwoddsConfig()
	config.BlendWeight = 0.5
	config.LeagueAverageGoals = map[string]float64{"999": 1.35}
	require.NoError(t, ValidateConfig(config))

	b := NewTeamStrengthBlender(config, ComputeLeagueContext(config, nil))

	strength, err := b.Blend("ghost", "999", nil, nil, Away)
	require.NoError(t, err)
	assert.Equal(t, ProvenanceLeagueAverage, strength.Provenance)
	assert.InDelta(t, 1.35, strength.Attack, 1e-12)
	assert.InDelta(t, 1.35, strength.Defense, 1e-12)
}

func TestBlendClampsDegenerateRates(t *testing.T) {
	current := statsRecord("broken", "47", "2025/2026", 6, math.NaN(), -2.0, 1.0, 1.0)

	b := fixedWeightBlender(t, 1.0, current)

	strength, err := b.Blend("broken", "47", current, nil, Home)
	require.NoError(t, err)
	assert.Equal(t, 0.0, strength.Attack)
	assert.Equal(t, 0.0, strength.Defense)
}

func TestAttackRateMixesXG(t *testing.T) {
	ts := statsRecord("arsenal", "47", "2025/2026", 6, 2.0, 0.8, 1.6, 1.0)
	ts.HomeXGForPerMatch = 1.5
	ts.HomeXGAgainstPerMatch = 1.0

	assert.True(t, ts.HasXG(Home))
	assert.False(t, ts.HasXG(Away))

	assert.InDelta(t, 0.3*1.5+0.7*2.0, ts.AttackRate(Home, 0.3), 1e-12)
	assert.InDelta(t, 0.3*1.0+0.7*0.8, ts.DefenseRate(Home, 0.3), 1e-12)

	// away rates fall back to raw goals when the source had no shot data
	assert.InDelta(t, 1.6, ts.AttackRate(Away, 0.3), 1e-12)
}

func TestBlendMixesRecentForm(t *testing.T) {
	current := statsRecord("arsenal", "47", "2025/2026", 6, 2.0, 0.8, 1.6, 1.0)
	current.HomeFormGoalsForPerMatch = 3.0
	current.HomeFormGoalsAgainstPerMatch = 0.4

	b := fixedWeightBlender(t, 1.0, current)

	strength, err := b.Blend("arsenal", "47", current, nil, Home)
	require.NoError(t, err)

	// default form weight 0.5: halfway between the season rate and the
	// last-few-matches rate
	assert.InDelta(t, 0.5*3.0+0.5*2.0, strength.Attack, 1e-12)
	assert.InDelta(t, 0.5*0.4+0.5*0.8, strength.Defense, 1e-12)

	// the away venue carries no form, so its rates are untouched
	awayStrength, err := b.Blend("arsenal", "47", current, nil, Away)
	require.NoError(t, err)
	assert.InDelta(t, 1.6, awayStrength.Attack, 1e-12)
}

func TestBlendFormOnlyModulatesCurrentSeason(t *testing.T) {
	current := statsRecord("arsenal", "47", "2025/2026", 6, 2.0, 0.8, 1.6, 1.0)
	current.HomeFormGoalsForPerMatch = 3.0
	current.HomeFormGoalsAgainstPerMatch = 0.4
	previous := statsRecord("arsenal", "47", "2024/2025", 19, 1.4, 1.2, 1.0, 1.4)
	// a stale form value on the previous record must be ignored
	previous.HomeFormGoalsForPerMatch = 9.0
	previous.HomeFormGoalsAgainstPerMatch = 9.0

	b := fixedWeightBlender(t, 0.6, current, previous)

	strength, err := b.Blend("arsenal", "47", current, previous, Home)
	require.NoError(t, err)

	formedAttack := 0.5*3.0 + 0.5*2.0
	formedDefense := 0.5*0.4 + 0.5*0.8
	assert.InDelta(t, 0.6*formedAttack+0.4*1.4, strength.Attack, 1e-12)
	assert.InDelta(t, 0.6*formedDefense+0.4*1.2, strength.Defense, 1e-12)
}

func TestBlendZeroFormWeightDisablesForm(t *testing.T) {
	current := statsRecord("arsenal", "47", "2025/2026", 6, 2.0, 0.8, 1.6, 1.0)
	current.HomeFormGoalsForPerMatch = 3.0
	current.HomeFormGoalsAgainstPerMatch = 0.4

	config := DefaultGwoddsConfig()
	config.BlendWeight = 1.0
	config.FormRateWeight = 0.0
	require.NoError(t, ValidateConfig(config))
	b := NewTeamStrengthBlender(config, ComputeLeagueContext(config, []*TeamSeasonStats{current}))

	strength, err := b.Blend("arsenal", "47", current, nil, Home)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, strength.Attack, 1e-12)
	assert.InDelta(t, 0.8, strength.Defense, 1e-12)
}

func TestAttackRateZeroXGIsValid(t *testing.T) {
	ts := statsRecord("arsenal", "47", "2025/2026", 6, 2.0, 0.8, 1.6, 1.0)
	ts.HomeXGForPerMatch = 0.0
	ts.HomeXGAgainstPerMatch = 0.0

	// a genuine zero rate participates in the mix; only -1 means absent
	assert.True(t, ts.HasXG(Home))
	assert.InDelta(t, 0.7*2.0, ts.AttackRate(Home, 0.3), 1e-12)
}
