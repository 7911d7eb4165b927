package gwodds

import (
	"fmt"
	"time"
)

// Venue distinguishes the home and away context of a strength or rate.
type Venue int

const (
	Home Venue = iota
	Away
)

func (v Venue) String() string {
	if v == Home {
		return "home"
	}
	return "away"
}

// Compile-time check to ensure TeamSeasonStats implements Persistable
var _ Persistable = (*TeamSeasonStats)(nil)

// TeamSeasonStats represents one team's aggregate statistics for one season
// with database persistence annotations. One record per (team, league, season).
// Records are produced by the external stats collaborator and treated as
// read-only inputs once loaded.
//
// Expected-goals rates default to -1 meaning "not available"; zero is a valid
// real value so absence has to be distinguishable from it.
type TeamSeasonStats struct {
	// Compound primary key fields
	TeamID   string `json:"teamId" column:"team_id" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	LeagueID string `json:"leagueId" column:"league_id" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	Season   string `json:"season" column:"season" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`

	// Raw totals
	HomeMatchesPlayed int `json:"homeMatchesPlayed" column:"home_matches_played" dbtype:"INTEGER DEFAULT 0"`
	AwayMatchesPlayed int `json:"awayMatchesPlayed" column:"away_matches_played" dbtype:"INTEGER DEFAULT 0"`
	HomeGoalsFor      int `json:"homeGoalsFor" column:"home_goals_for" dbtype:"INTEGER DEFAULT 0"`
	HomeGoalsAgainst  int `json:"homeGoalsAgainst" column:"home_goals_against" dbtype:"INTEGER DEFAULT 0"`
	AwayGoalsFor      int `json:"awayGoalsFor" column:"away_goals_for" dbtype:"INTEGER DEFAULT 0"`
	AwayGoalsAgainst  int `json:"awayGoalsAgainst" column:"away_goals_against" dbtype:"INTEGER DEFAULT 0"`

	// Calculated per-match averages
	HomeGoalsForPerMatch     float64 `json:"homeGoalsForPerMatch" column:"home_goals_for_per_match" dbtype:"REAL DEFAULT 0.0"`
	HomeGoalsAgainstPerMatch float64 `json:"homeGoalsAgainstPerMatch" column:"home_goals_against_per_match" dbtype:"REAL DEFAULT 0.0"`
	AwayGoalsForPerMatch     float64 `json:"awayGoalsForPerMatch" column:"away_goals_for_per_match" dbtype:"REAL DEFAULT 0.0"`
	AwayGoalsAgainstPerMatch float64 `json:"awayGoalsAgainstPerMatch" column:"away_goals_against_per_match" dbtype:"REAL DEFAULT 0.0"`

	// Shot-quality expected-goals rates, -1 when the source had none
	HomeXGForPerMatch     float64 `json:"homeXGForPerMatch,omitempty" column:"home_xg_for_per_match" dbtype:"REAL DEFAULT -1.0"`
	HomeXGAgainstPerMatch float64 `json:"homeXGAgainstPerMatch,omitempty" column:"home_xg_against_per_match" dbtype:"REAL DEFAULT -1.0"`
	AwayXGForPerMatch     float64 `json:"awayXGForPerMatch,omitempty" column:"away_xg_for_per_match" dbtype:"REAL DEFAULT -1.0"`
	AwayXGAgainstPerMatch float64 `json:"awayXGAgainstPerMatch,omitempty" column:"away_xg_against_per_match" dbtype:"REAL DEFAULT -1.0"`

	// Recent-form rates over the team's last few matches, -1 when the source
	// had none. Only meaningful on current-season records.
	HomeFormGoalsForPerMatch     float64 `json:"homeFormGoalsForPerMatch,omitempty" column:"home_form_goals_for_per_match" dbtype:"REAL DEFAULT -1.0"`
	HomeFormGoalsAgainstPerMatch float64 `json:"homeFormGoalsAgainstPerMatch,omitempty" column:"home_form_goals_against_per_match" dbtype:"REAL DEFAULT -1.0"`
	AwayFormGoalsForPerMatch     float64 `json:"awayFormGoalsForPerMatch,omitempty" column:"away_form_goals_for_per_match" dbtype:"REAL DEFAULT -1.0"`
	AwayFormGoalsAgainstPerMatch float64 `json:"awayFormGoalsAgainstPerMatch,omitempty" column:"away_form_goals_against_per_match" dbtype:"REAL DEFAULT -1.0"`

	// Metadata
	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

// TableName returns the table name for team season stats
func (ts *TeamSeasonStats) TableName() string {
	return "team_season_stats"
}

// PrimaryKey returns the compound primary key as a map
func (ts *TeamSeasonStats) PrimaryKey() map[string]any {
	return map[string]any{
		"team_id":   ts.TeamID,
		"league_id": ts.LeagueID,
		"season":    ts.Season,
	}
}

// BeforeSave recomputes the per-match averages and timestamps
func (ts *TeamSeasonStats) BeforeSave() error {
	if ts.TeamID == "" || ts.LeagueID == "" || ts.Season == "" {
		return fmt.Errorf("team season stats require team, league and season identifiers")
	}

	if ts.HomeMatchesPlayed > 0 {
		ts.HomeGoalsForPerMatch = float64(ts.HomeGoalsFor) / float64(ts.HomeMatchesPlayed)
		ts.HomeGoalsAgainstPerMatch = float64(ts.HomeGoalsAgainst) / float64(ts.HomeMatchesPlayed)
	}
	if ts.AwayMatchesPlayed > 0 {
		ts.AwayGoalsForPerMatch = float64(ts.AwayGoalsFor) / float64(ts.AwayMatchesPlayed)
		ts.AwayGoalsAgainstPerMatch = float64(ts.AwayGoalsAgainst) / float64(ts.AwayMatchesPlayed)
	}

	now := time.Now()
	if ts.CreatedAt.IsZero() {
		ts.CreatedAt = now
	}
	ts.UpdatedAt = now

	return nil
}

// MatchesPlayed returns the total matches played across both venues
func (ts *TeamSeasonStats) MatchesPlayed() int {
	return ts.HomeMatchesPlayed + ts.AwayMatchesPlayed
}

// HasXG reports whether the record carries shot-quality rates for the venue
func (ts *TeamSeasonStats) HasXG(venue Venue) bool {
	if venue == Home {
		return ts.HomeXGForPerMatch >= 0 && ts.HomeXGAgainstPerMatch >= 0
	}
	return ts.AwayXGForPerMatch >= 0 && ts.AwayXGAgainstPerMatch >= 0
}

// AttackRate returns the per-match scoring rate for the venue, mixing in the
// shot-quality expected-goals rate under xgWeight when the source provided one
func (ts *TeamSeasonStats) AttackRate(venue Venue, xgWeight float64) float64 {
	var goals, xg float64
	if venue == Home {
		goals, xg = ts.HomeGoalsForPerMatch, ts.HomeXGForPerMatch
	} else {
		goals, xg = ts.AwayGoalsForPerMatch, ts.AwayXGForPerMatch
	}
	if xg < 0 {
		return goals
	}
	return xgWeight*xg + (1.0-xgWeight)*goals
}

// DefenseRate returns the per-match concession rate for the venue, mixing in
// the shot-quality expected-goals-against rate when available
func (ts *TeamSeasonStats) DefenseRate(venue Venue, xgWeight float64) float64 {
	var goals, xg float64
	if venue == Home {
		goals, xg = ts.HomeGoalsAgainstPerMatch, ts.HomeXGAgainstPerMatch
	} else {
		goals, xg = ts.AwayGoalsAgainstPerMatch, ts.AwayXGAgainstPerMatch
	}
	if xg < 0 {
		return goals
	}
	return xgWeight*xg + (1.0-xgWeight)*goals
}

// HasForm reports whether the record carries recent-form rates for the venue
func (ts *TeamSeasonStats) HasForm(venue Venue) bool {
	if venue == Home {
		return ts.HomeFormGoalsForPerMatch >= 0 && ts.HomeFormGoalsAgainstPerMatch >= 0
	}
	return ts.AwayFormGoalsForPerMatch >= 0 && ts.AwayFormGoalsAgainstPerMatch >= 0
}

// FormAttackRate returns the recent-form scoring rate for the venue
func (ts *TeamSeasonStats) FormAttackRate(venue Venue) float64 {
	if venue == Home {
		return ts.HomeFormGoalsForPerMatch
	}
	return ts.AwayFormGoalsForPerMatch
}

// FormDefenseRate returns the recent-form concession rate for the venue
func (ts *TeamSeasonStats) FormDefenseRate(venue Venue) float64 {
	if venue == Home {
		return ts.HomeFormGoalsAgainstPerMatch
	}
	return ts.AwayFormGoalsAgainstPerMatch
}
