package gwodds

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeason(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024/2025", "2024/2025"},
		{"2024-2025", "2024/2025"},
		{"2024/25", "2024/2025"},
		{"2024-25", "2024/2025"},
	}

	for _, tc := range cases {
		got, err := ParseSeason(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseSeasonInvalid(t *testing.T) {
	for _, in := range []string{"", "2024", "24/25", "2024_2025", "season"} {
		_, err := ParseSeason(in)
		assert.Error(t, err, in)
	}
}

func TestParseSeasonRejectsCenturyWrap(t *testing.T) {
	// "1999/00" would expand to the backwards label "1999/1900"
	for _, in := range []string{"1999/00", "1999-00", "2099/00", "20ab/cd"} {
		_, err := ParseSeason(in)
		assert.Error(t, err, in)
	}
}

func TestPreviousSeason(t *testing.T) {
	prev, err := PreviousSeason("2025/2026")
	require.NoError(t, err)
	assert.Equal(t, "2024/2025", prev)

	prev, err = PreviousSeason("2025-26")
	require.NoError(t, err)
	assert.Equal(t, "2024/2025", prev)

	_, err = PreviousSeason("garbage")
	assert.Error(t, err)
}

func TestFixtureBeforeSaveDerivesID(t *testing.T) {
	f := &Fixture{
		HomeID:     "arsenal",
		AwayID:     "villa",
		LeagueID:   "47",
		KickoffUTC: time.Date(2026, 1, 10, 15, 0, 0, 0, time.UTC),
	}

	require.NoError(t, f.BeforeSave())
	assert.Equal(t, "arsenal-villa-20260110", f.ID)
	assert.False(t, f.CreatedAt.IsZero())
	assert.False(t, f.UpdatedAt.IsZero())
}

func TestFixtureBeforeSaveKeepsExistingID(t *testing.T) {
	f := &Fixture{
		ID:     "external-id-42",
		HomeID: "arsenal",
		AwayID: "villa",
	}

	require.NoError(t, f.BeforeSave())
	assert.Equal(t, "external-id-42", f.ID)
}

func TestFixtureBeforeSaveRequiresTeams(t *testing.T) {
	assert.Error(t, (&Fixture{HomeID: "arsenal"}).BeforeSave())
	assert.Error(t, (&Fixture{AwayID: "villa"}).BeforeSave())
}

func TestStatsBeforeSaveComputesRates(t *testing.T) {
	ts := &TeamSeasonStats{
		TeamID: "arsenal", LeagueID: "47", Season: "2025/2026",
		HomeMatchesPlayed: 4, AwayMatchesPlayed: 5,
		HomeGoalsFor: 10, HomeGoalsAgainst: 3,
		AwayGoalsFor: 7, AwayGoalsAgainst: 6,
	}

	require.NoError(t, ts.BeforeSave())
	assert.InDelta(t, 2.5, ts.HomeGoalsForPerMatch, 1e-12)
	assert.InDelta(t, 0.75, ts.HomeGoalsAgainstPerMatch, 1e-12)
	assert.InDelta(t, 1.4, ts.AwayGoalsForPerMatch, 1e-12)
	assert.InDelta(t, 1.2, ts.AwayGoalsAgainstPerMatch, 1e-12)
	assert.Equal(t, 9, ts.MatchesPlayed())
}

func TestStatsBeforeSaveRequiresIdentifiers(t *testing.T) {
	assert.Error(t, (&TeamSeasonStats{TeamID: "arsenal"}).BeforeSave())
}
