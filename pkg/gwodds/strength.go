package gwodds

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/richard-senior/gwodds/internal/logger"
)

// Provenance records which decision-table branch produced a blended strength.
type Provenance int

const (
	ProvenanceBlended Provenance = iota
	ProvenanceCurrentOnly
	ProvenancePreviousOnly
	ProvenanceLeagueAverage
)

func (p Provenance) String() string {
	switch p {
	case ProvenanceBlended:
		return "blended"
	case ProvenanceCurrentOnly:
		return "current-only"
	case ProvenancePreviousOnly:
		return "previous-only"
	case ProvenanceLeagueAverage:
		return "league-average-fallback"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the provenance as its label
func (p Provenance) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON parses a provenance label back to its value
func (p *Provenance) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	switch label {
	case "blended":
		*p = ProvenanceBlended
	case "current-only":
		*p = ProvenanceCurrentOnly
	case "previous-only":
		*p = ProvenancePreviousOnly
	case "league-average-fallback":
		*p = ProvenanceLeagueAverage
	default:
		return fmt.Errorf("unknown provenance %q", label)
	}
	return nil
}

// BlendedTeamStrength is one team's expected-strength signal for one venue
// context, on the goals-per-match scale. Strengths are always non-negative
// finite numbers; anything else is clamped before it leaves the blender.
type BlendedTeamStrength struct {
	TeamID     string     `json:"teamId"`
	Venue      Venue      `json:"-"`
	Attack     float64    `json:"attack"`
	Defense    float64    `json:"defense"`
	Provenance Provenance `json:"provenance"`
}

// TeamStrengthBlender combines current- and previous-season statistics into a
// single strength per team and venue. Blending never mutates the input stats;
// all state it needs is the config and the precomputed league context.
type TeamStrengthBlender struct {
	config  *GwoddsConfig
	leagues *LeagueContext
}

// NewTeamStrengthBlender wires a blender to its batch-wide league context
func NewTeamStrengthBlender(config *GwoddsConfig, leagues *LeagueContext) *TeamStrengthBlender {
	return &TeamStrengthBlender{config: config, leagues: leagues}
}

// Blend resolves the strength decision table for one team and venue:
//
//	both seasons present    -> w*current + (1-w)*previous
//	previous season only    -> previous scaled by the promotion penalty
//	current season only     -> current as-is
//	neither                 -> league averages, provenance league-average-fallback
//
// A record with zero matches played counts as absent. The league-average
// branch is the guard against missing-data crashes downstream; it only errors
// when the league itself is unknown.
func (b *TeamStrengthBlender) Blend(teamID, leagueID string, current, previous *TeamSeasonStats, venue Venue) (*BlendedTeamStrength, error) {
	hasCurrent := current != nil && current.MatchesPlayed() > 0
	hasPrevious := previous != nil && previous.MatchesPlayed() > 0

	xgWeight := b.config.XGRateWeight

	var attack, defense float64
	var provenance Provenance

	switch {
	case hasCurrent && hasPrevious:
		w := b.config.EffectiveBlendWeight(b.leagues.Round(leagueID))
		curAttack, curDefense := b.currentRates(current, venue)
		attack = w*curAttack + (1.0-w)*previous.AttackRate(venue, xgWeight)
		defense = w*curDefense + (1.0-w)*previous.DefenseRate(venue, xgWeight)
		provenance = ProvenanceBlended

	case hasPrevious:
		// Newly promoted or yet to play: prior-tier numbers flatter a team
		// facing new-tier opposition, so scale them down
		attack = previous.AttackRate(venue, xgWeight) * b.config.PromotionPenalty
		defense = previous.DefenseRate(venue, xgWeight) * b.config.PromotionPenalty
		provenance = ProvenancePreviousOnly

	case hasCurrent:
		attack, defense = b.currentRates(current, venue)
		provenance = ProvenanceCurrentOnly

	default:
		la, err := b.leagues.Resolve(leagueID)
		if err != nil {
			return nil, fmt.Errorf("cannot blend strength for team %s: %w", teamID, err)
		}
		logger.Debug("No season data for team, using league averages", teamID, leagueID)
		attack = la.GoalsPerMatch(venue)
		defense = la.ConcededPerMatch(venue)
		provenance = ProvenanceLeagueAverage
	}

	return &BlendedTeamStrength{
		TeamID:     teamID,
		Venue:      venue,
		Attack:     clampStrength(attack),
		Defense:    clampStrength(defense),
		Provenance: provenance,
	}, nil
}

// currentRates resolves the current-season venue rates, folding the team's
// recent-form rates in under the configured weight when the source provides
// them. Form reflects the last handful of matches, so it only ever modulates
// current-season numbers.
func (b *TeamStrengthBlender) currentRates(current *TeamSeasonStats, venue Venue) (attack, defense float64) {
	attack = current.AttackRate(venue, b.config.XGRateWeight)
	defense = current.DefenseRate(venue, b.config.XGRateWeight)

	fw := b.config.FormRateWeight
	if fw > 0 && current.HasForm(venue) {
		attack = fw*current.FormAttackRate(venue) + (1.0-fw)*attack
		defense = fw*current.FormDefenseRate(venue) + (1.0-fw)*defense
	}
	return attack, defense
}

// clampStrength enforces the non-negative finite invariant
func clampStrength(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0.0
	}
	return value
}
