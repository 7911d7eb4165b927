package gwodds

import (
	"fmt"
	"strconv"
	"time"
)

// Compile-time check to ensure Fixture implements Persistable
var _ Persistable = (*Fixture)(nil)

// Fixture represents one upcoming match, sourced externally and treated as
// read-only. The external collaborator deduplicates and date-orders fixtures
// before they reach the engine.
type Fixture struct {
	// Primary key
	ID string `json:"id" column:"id" dbtype:"TEXT" primary:"true" index:"true"`

	HomeID   string `json:"homeId" column:"home_id" dbtype:"TEXT NOT NULL" index:"true"`
	AwayID   string `json:"awayId" column:"away_id" dbtype:"TEXT NOT NULL" index:"true"`
	LeagueID string `json:"leagueId" column:"league_id" dbtype:"TEXT NOT NULL" index:"true"`

	KickoffUTC time.Time `json:"kickoffUTC" column:"kickoff_utc" dbtype:"DATETIME" index:"true"`
	Gameweek   string    `json:"gameweek" column:"gameweek" dbtype:"TEXT" index:"true"`

	// Metadata
	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

// TableName returns the table name for fixtures
func (f *Fixture) TableName() string {
	return "fixture"
}

// PrimaryKey returns the primary key as a map
func (f *Fixture) PrimaryKey() map[string]any {
	return map[string]any{
		"id": f.ID,
	}
}

// BeforeSave derives a stable id when the source supplied none
func (f *Fixture) BeforeSave() error {
	if f.HomeID == "" || f.AwayID == "" {
		return fmt.Errorf("fixture requires both team ids")
	}
	if f.ID == "" {
		f.ID = fmt.Sprintf("%s-%s-%s", f.HomeID, f.AwayID, f.KickoffUTC.UTC().Format("20060102"))
	}

	now := time.Now()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now

	return nil
}

func (f *Fixture) String() string {
	return fmt.Sprintf("%s vs %s (%s %s)", f.HomeID, f.AwayID, f.Gameweek, f.KickoffUTC.Format("2006-01-02"))
}

/////////////////////////////////////////////////////////////////////////
////// Season Label Helpers
/////////////////////////////////////////////////////////////////////////

// ParseSeason normalizes a season label to the YYYY/YYYY form.
// Accepted inputs: "2024/2025", "2024-2025", "2024/25", "2024-25".
func ParseSeason(season string) (string, error) {
	if season == "" {
		return "", fmt.Errorf("must pass a season")
	}
	if len(season) == 9 && (season[4] == '/' || season[4] == '-') {
		return season[:4] + "/" + season[5:], nil
	}
	// short form: the second year keeps only its final two digits and shares
	// the first year's century, so a label that wraps the century boundary
	// ("1999/00") cannot be expanded and is rejected
	if len(season) == 7 && (season[4] == '/' || season[4] == '-') {
		firstSuffix, err := strconv.Atoi(season[2:4])
		if err != nil {
			return "", fmt.Errorf("invalid season format: %s", season)
		}
		secondSuffix, err := strconv.Atoi(season[5:])
		if err != nil || secondSuffix < firstSuffix {
			return "", fmt.Errorf("invalid season format: %s", season)
		}
		return season[:4] + "/" + season[:2] + season[5:], nil
	}
	return "", fmt.Errorf("invalid season format: %s", season)
}

// PreviousSeason returns the label of the season before the given one
func PreviousSeason(season string) (string, error) {
	s, err := ParseSeason(season)
	if err != nil {
		return "", err
	}
	first, err := strconv.Atoi(s[:4])
	if err != nil {
		return "", fmt.Errorf("invalid season format: %s", season)
	}
	return fmt.Sprintf("%d/%d", first-1, first), nil
}
