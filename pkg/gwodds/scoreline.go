package gwodds

import (
	"fmt"
	"sort"

	"github.com/atgjack/prob"
)

// ScorelineDistribution is the joint probability grid over exact scorelines
// (home goals, away goals), both truncated at MaxGoals. The grid is always
// renormalized so it sums to 1: the Poisson tail beyond the cap is
// redistributed proportionally rather than silently dropped.
type ScorelineDistribution struct {
	HomeExpectedGoals float64
	AwayExpectedGoals float64
	MaxGoals          int
	grid              [][]float64
}

// Scoreline is one exact-score cell with its probability
type Scoreline struct {
	HomeGoals   int     `json:"homeGoals"`
	AwayGoals   int     `json:"awayGoals"`
	Probability float64 `json:"probability"`
}

func (s Scoreline) String() string {
	return fmt.Sprintf("%d-%d", s.HomeGoals, s.AwayGoals)
}

// BuildScorelineDistribution computes P(home=i, away=j) = Poisson(i; homeXG) *
// Poisson(j; awayXG) for 0 <= i,j <= maxGoals, independence assumed between
// the two sides, then renormalizes the truncated grid.
//
// Non-positive means fail fast: the estimator's epsilon floor should prevent
// this ever happening in practice, but the model does not assume it.
func BuildScorelineDistribution(homeXG, awayXG float64, maxGoals int) (*ScorelineDistribution, error) {
	if homeXG <= 0 || awayXG <= 0 {
		return nil, fmt.Errorf("%w: home=%f away=%f", ErrInvalidExpectedGoals, homeXG, awayXG)
	}
	if maxGoals < 1 {
		return nil, fmt.Errorf("%w: truncation cap %d is too small", ErrInvalidExpectedGoals, maxGoals)
	}

	homeDist := prob.Poisson{Mu: homeXG}
	awayDist := prob.Poisson{Mu: awayXG}

	homeProbs := make([]float64, maxGoals+1)
	awayProbs := make([]float64, maxGoals+1)
	for goals := 0; goals <= maxGoals; goals++ {
		homeProbs[goals] = homeDist.Pdf(float64(goals))
		awayProbs[goals] = awayDist.Pdf(float64(goals))
	}

	grid := make([][]float64, maxGoals+1)
	for i := range grid {
		grid[i] = make([]float64, maxGoals+1)
		for j := range grid[i] {
			grid[i][j] = homeProbs[i] * awayProbs[j]
		}
	}

	d := &ScorelineDistribution{
		HomeExpectedGoals: homeXG,
		AwayExpectedGoals: awayXG,
		MaxGoals:          maxGoals,
		grid:              grid,
	}
	if !d.renormalize() {
		// the pmf underflowed to zero everywhere: the mean is so far beyond
		// the truncation cap that no probability mass survives
		return nil, fmt.Errorf("%w: no probability mass within %d goals for home=%f away=%f",
			ErrInvalidExpectedGoals, maxGoals, homeXG, awayXG)
	}
	return d, nil
}

// renormalize scales the grid so all probabilities sum to 1. Reports false
// when the grid carries no mass at all, which callers must treat as an error.
func (d *ScorelineDistribution) renormalize() bool {
	total := 0.0
	for i := range d.grid {
		for j := range d.grid[i] {
			total += d.grid[i][j]
		}
	}
	if total <= 0 {
		return false
	}
	for i := range d.grid {
		for j := range d.grid[i] {
			d.grid[i][j] /= total
		}
	}
	return true
}

// Probability returns the renormalized probability of an exact scoreline.
// Scorelines beyond the truncation cap have probability zero by construction.
func (d *ScorelineDistribution) Probability(homeGoals, awayGoals int) float64 {
	if homeGoals < 0 || awayGoals < 0 || homeGoals > d.MaxGoals || awayGoals > d.MaxGoals {
		return 0.0
	}
	return d.grid[homeGoals][awayGoals]
}

// Outcomes sums the grid triangles into win/draw/loss probabilities.
// Home win is the lower triangle (i > j), the draw is the diagonal, and the
// away win is the upper triangle.
func (d *ScorelineDistribution) Outcomes() (homeWin, draw, awayWin float64) {
	for i := range d.grid {
		for j := range d.grid[i] {
			switch {
			case i > j:
				homeWin += d.grid[i][j]
			case i == j:
				draw += d.grid[i][j]
			default:
				awayWin += d.grid[i][j]
			}
		}
	}
	return homeWin, draw, awayWin
}

// CleanSheets returns each side's probability of conceding zero.
// The home side keeps a clean sheet when the away side scores nothing
// (column 0), and vice versa (row 0).
func (d *ScorelineDistribution) CleanSheets() (home, away float64) {
	for i := 0; i <= d.MaxGoals; i++ {
		home += d.grid[i][0]
		away += d.grid[0][i]
	}
	return home, away
}

// ThreePlusGoals returns the probability of three or more total goals
func (d *ScorelineDistribution) ThreePlusGoals() float64 {
	total := 0.0
	for i := range d.grid {
		for j := range d.grid[i] {
			if i+j >= 3 {
				total += d.grid[i][j]
			}
		}
	}
	return total
}

// TopScorelines returns the n most likely exact scorelines. Ties are broken
// by lower total goals, then by home goals ascending, so the ordering is
// deterministic and reproducible across runs.
func (d *ScorelineDistribution) TopScorelines(n int) []Scoreline {
	if n < 1 {
		return nil
	}

	cells := make([]Scoreline, 0, (d.MaxGoals+1)*(d.MaxGoals+1))
	for i := range d.grid {
		for j := range d.grid[i] {
			cells = append(cells, Scoreline{HomeGoals: i, AwayGoals: j, Probability: d.grid[i][j]})
		}
	}

	sort.Slice(cells, func(a, b int) bool {
		if cells[a].Probability != cells[b].Probability {
			return cells[a].Probability > cells[b].Probability
		}
		totalA := cells[a].HomeGoals + cells[a].AwayGoals
		totalB := cells[b].HomeGoals + cells[b].AwayGoals
		if totalA != totalB {
			return totalA < totalB
		}
		return cells[a].HomeGoals < cells[b].HomeGoals
	})

	if n > len(cells) {
		n = len(cells)
	}
	return cells[:n]
}

// MatchProbabilitySummary is the full per-fixture output of the model
type MatchProbabilitySummary struct {
	Fixture *Fixture `json:"fixture"`

	HomeExpectedGoals float64 `json:"homeExpectedGoals"`
	AwayExpectedGoals float64 `json:"awayExpectedGoals"`

	HomeWin float64 `json:"homeWin"`
	Draw    float64 `json:"draw"`
	AwayWin float64 `json:"awayWin"`

	HomeCleanSheet float64 `json:"homeCleanSheet"`
	AwayCleanSheet float64 `json:"awayCleanSheet"`
	ThreePlusGoals float64 `json:"threePlusGoals"`

	TopScorelines []Scoreline `json:"topScorelines"`

	HomeProvenance Provenance `json:"homeProvenance"`
	AwayProvenance Provenance `json:"awayProvenance"`

	// Favorability ranks fixtures for lineup picking: the stronger side's win
	// probability sweetened by its clean-sheet odds
	Favorability float64 `json:"favorability"`
}

// SummarizeMatch derives the summary probabilities for one fixture from its
// scoreline distribution
func SummarizeMatch(fixture *Fixture, d *ScorelineDistribution, topN int) *MatchProbabilitySummary {
	homeWin, draw, awayWin := d.Outcomes()
	homeCS, awayCS := d.CleanSheets()

	summary := &MatchProbabilitySummary{
		Fixture:           fixture,
		HomeExpectedGoals: d.HomeExpectedGoals,
		AwayExpectedGoals: d.AwayExpectedGoals,
		HomeWin:           homeWin,
		Draw:              draw,
		AwayWin:           awayWin,
		HomeCleanSheet:    homeCS,
		AwayCleanSheet:    awayCS,
		ThreePlusGoals:    d.ThreePlusGoals(),
		TopScorelines:     d.TopScorelines(topN),
	}

	if homeWin >= awayWin {
		summary.Favorability = homeWin + 0.25*homeCS
	} else {
		summary.Favorability = awayWin + 0.25*awayCS
	}

	return summary
}
