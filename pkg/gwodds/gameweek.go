package gwodds

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/richard-senior/gwodds/internal/logger"
)

// Gameweek is a labeled, chronologically grouped batch of fixture summaries
// within one league's schedule.
type Gameweek struct {
	Label    string                     `json:"label"`
	LeagueID string                     `json:"leagueId"`
	Matches  []*MatchProbabilitySummary `json:"matches"`
}

// RankedByFavorability returns the gameweek's summaries ordered best-first
// for lineup picking. The Matches slice itself stays in chronological order.
func (gw *Gameweek) RankedByFavorability() []*MatchProbabilitySummary {
	ranked := make([]*MatchProbabilitySummary, len(gw.Matches))
	copy(ranked, gw.Matches)
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Favorability > ranked[b].Favorability
	})
	return ranked
}

// SkippedFixture is the diagnostic record for a fixture the batch could not
// compute. Skipped fixtures are reported, never silently dropped.
type SkippedFixture struct {
	Fixture *Fixture `json:"fixture"`
	Reason  string   `json:"reason"`
	Err     error    `json:"-"`
}

// GameweekAssembler maps fixtures to probability summaries and groups them
// into gameweeks. All state is read-only after construction, so fixture
// computations run in parallel without locking.
type GameweekAssembler struct {
	config  *GwoddsConfig
	leagues *LeagueContext
	blender *TeamStrengthBlender

	currentSeason  string
	previousSeason string
	stats          map[string]*TeamSeasonStats
}

// NewGameweekAssembler indexes the loaded season stats and computes the
// league context (the compute-once barrier before any fixture work). The
// config is validated here because a bad global weight would silently corrupt
// every fixture.
func NewGameweekAssembler(config *GwoddsConfig, seasonStats []*TeamSeasonStats) (*GameweekAssembler, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	previousSeason, err := PreviousSeason(config.CurrentSeason)
	if err != nil {
		return nil, fmt.Errorf("%w: current_season: %v", ErrInvalidConfiguration, err)
	}

	leagues := ComputeLeagueContext(config, seasonStats)

	a := &GameweekAssembler{
		config:         config,
		leagues:        leagues,
		blender:        NewTeamStrengthBlender(config, leagues),
		currentSeason:  config.CurrentSeason,
		previousSeason: previousSeason,
		stats:          make(map[string]*TeamSeasonStats, len(seasonStats)),
	}
	for _, ts := range seasonStats {
		a.stats[statsKey(ts.TeamID, ts.LeagueID, ts.Season)] = ts
	}

	return a, nil
}

func statsKey(teamID, leagueID, season string) string {
	return teamID + "|" + leagueID + "|" + season
}

func (a *GameweekAssembler) lookup(teamID, leagueID, season string) *TeamSeasonStats {
	return a.stats[statsKey(teamID, leagueID, season)]
}

// Assemble computes one summary per fixture and groups them into gameweeks.
// Fixture computations are independent, so they fan out over a bounded worker
// pool and join back in input order. Per-fixture failures become diagnostics;
// no single bad fixture aborts the batch.
func (a *GameweekAssembler) Assemble(fixtures []*Fixture) ([]*Gameweek, []*SkippedFixture) {
	summaries := make([]*MatchProbabilitySummary, len(fixtures))
	failures := make([]error, len(fixtures))

	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := a.config.WorkerCount()
	if workers > len(fixtures) {
		workers = len(fixtures)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				summaries[i], failures[i] = a.Summarize(fixtures[i])
			}
		}()
	}
	for i := range fixtures {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var gameweeks []*Gameweek
	index := make(map[string]*Gameweek)
	var skipped []*SkippedFixture

	for i, fixture := range fixtures {
		if failures[i] != nil {
			logger.Warn("Skipping fixture", fixture.String(), failures[i])
			skipped = append(skipped, &SkippedFixture{
				Fixture: fixture,
				Reason:  failures[i].Error(),
				Err:     failures[i],
			})
			continue
		}

		key := fixture.LeagueID + "|" + fixture.Gameweek
		gw, ok := index[key]
		if !ok {
			gw = &Gameweek{Label: fixture.Gameweek, LeagueID: fixture.LeagueID}
			index[key] = gw
			gameweeks = append(gameweeks, gw)
		}
		// fixtures arrive date-ordered, so append order is chronological
		gw.Matches = append(gw.Matches, summaries[i])
	}

	return gameweeks, skipped
}

// Summarize runs the whole pipeline for a single fixture: blend both teams'
// strengths, estimate expected goals, build the scoreline distribution and
// derive the summary probabilities.
func (a *GameweekAssembler) Summarize(fixture *Fixture) (*MatchProbabilitySummary, error) {
	home, err := a.blender.Blend(fixture.HomeID, fixture.LeagueID,
		a.lookup(fixture.HomeID, fixture.LeagueID, a.currentSeason),
		a.lookup(fixture.HomeID, fixture.LeagueID, a.previousSeason),
		Home)
	if err != nil {
		return nil, unresolvable(fixture, err)
	}

	away, err := a.blender.Blend(fixture.AwayID, fixture.LeagueID,
		a.lookup(fixture.AwayID, fixture.LeagueID, a.currentSeason),
		a.lookup(fixture.AwayID, fixture.LeagueID, a.previousSeason),
		Away)
	if err != nil {
		return nil, unresolvable(fixture, err)
	}

	la, err := a.leagues.Resolve(fixture.LeagueID)
	if err != nil {
		return nil, unresolvable(fixture, err)
	}

	homeXG, awayXG := EstimateExpectedGoals(home, away, la, a.config.MinExpectedGoals)

	dist, err := BuildScorelineDistribution(homeXG, awayXG, a.config.GoalsTruncationCap)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", fixture.ID, err)
	}

	summary := SummarizeMatch(fixture, dist, a.config.TopNScorelines)
	summary.HomeProvenance = home.Provenance
	summary.AwayProvenance = away.Provenance
	return summary, nil
}

// unresolvable wraps team/league lookup failures as the skipped-fixture kind
func unresolvable(fixture *Fixture, err error) error {
	if errors.Is(err, ErrMissingTeamData) {
		return fmt.Errorf("%w: fixture %s: %v", ErrUnresolvableFixture, fixture.ID, err)
	}
	return fmt.Errorf("fixture %s: %w", fixture.ID, err)
}
