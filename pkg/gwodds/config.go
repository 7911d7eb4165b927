package gwodds

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// GwoddsConfig contains all configurable parameters that influence prediction outcomes
// This centralizes all magic numbers and constants for easy adjustment
type GwoddsConfig struct {
	// Database parameters
	DatabasePath string `yaml:"database_path"` // Location of the gwodds sqlite database

	// === SEASON BLENDING ===

	// BlendWeight is the emphasis given to current-season statistics over
	// previous-season statistics, in [0,1]. A value of -1 means "dynamic":
	// derive the weight from the round number using the transition window
	// below, so early-season predictions lean on last season's data.
	BlendWeight          float64 `yaml:"blend_weight"`
	TransitionStartRound int     `yaml:"transition_start_round"` // Round at which current-season data starts to count (default: 5)
	TransitionEndRound   int     `yaml:"transition_end_round"`   // Round at which current-season data fully takes over (default: 10)

	// PromotionPenalty scales the prior-tier statistics of a team with no
	// current-season history, in (0,1]. Promoted teams tend to underperform
	// their old-tier numbers against new-tier opposition.
	PromotionPenalty float64 `yaml:"promotion_penalty"`

	// XGRateWeight is the emphasis given to shot-quality expected-goals rates
	// over raw goal rates when both are available, in [0,1].
	XGRateWeight float64 `yaml:"xg_rate_weight"`

	// FormRateWeight is the emphasis given to a team's recent-form rates over
	// its season-long current rates when the source provides them, in [0,1].
	FormRateWeight float64 `yaml:"form_rate_weight"`

	// === SCORELINE MODEL ===

	GoalsTruncationCap int     `yaml:"goals_truncation_cap"` // Maximum per-side goals in the scoreline grid 0-N (default: 10, minimum: 5)
	TopNScorelines     int     `yaml:"top_n_scorelines"`     // How many most-likely scorelines to report (default: 5)
	MinExpectedGoals   float64 `yaml:"min_expected_goals"`   // Floor applied to expected goals to avoid a degenerate zero-mean Poisson (default: 0.05)

	// === LEAGUE AVERAGES ===

	// Used when no historical data is available for a league
	LeagueAverageGoals        map[string]float64 `yaml:"league_average_goals"` // Per-league override of average goals per match, keyed by league id
	DefaultHomeGoalsPerMatch  float64            `yaml:"default_home_goals_per_match"`  // Default home goals per match (default: 1.5)
	DefaultAwayGoalsPerMatch  float64            `yaml:"default_away_goals_per_match"`  // Default away goals per match (default: 1.1)

	// === BATCH EXECUTION ===

	Workers       int    `yaml:"workers"`        // Fixture computation fan-out width; 0 means NumCPU
	CurrentSeason string `yaml:"current_season"` // Season label used to split current vs previous stats (default: "2025/2026")
}

// DefaultGwoddsConfig returns the default configuration with all standard values
func DefaultGwoddsConfig() *GwoddsConfig {
	return &GwoddsConfig{
		DatabasePath: ".gwodds/gwodds.db",

		// === SEASON BLENDING ===
		BlendWeight:          -1.0, // dynamic by default
		TransitionStartRound: 5,
		TransitionEndRound:   10,
		PromotionPenalty:     0.9,
		XGRateWeight:         0.3,
		FormRateWeight:       0.5,

		// === SCORELINE MODEL ===
		GoalsTruncationCap: 10,
		TopNScorelines:     5,
		MinExpectedGoals:   0.05,

		// === LEAGUE AVERAGES ===
		LeagueAverageGoals:       map[string]float64{},
		DefaultHomeGoalsPerMatch: 1.5,
		DefaultAwayGoalsPerMatch: 1.1,

		// === BATCH EXECUTION ===
		Workers:       0,
		CurrentSeason: "2025/2026",
	}
}

// Global configuration instance
var Config *GwoddsConfig

func init() {
	Config = DefaultGwoddsConfig()
}

// UpdateConfig replaces the global configuration after validating it
func UpdateConfig(newConfig *GwoddsConfig) error {
	if err := ValidateConfig(newConfig); err != nil {
		return err
	}
	Config = newConfig
	return nil
}

// LoadConfigFile reads a YAML configuration file over the top of the defaults
// and installs the result as the global configuration
func LoadConfigFile(path string) (*GwoddsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := DefaultGwoddsConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfiguration, path, err)
	}

	if err := UpdateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// WorkerCount resolves the configured fan-out width
func (c *GwoddsConfig) WorkerCount() int {
	if c.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}

// EffectiveBlendWeight resolves the blend weight for a given round, applying
// the dynamic transition window when no explicit weight is configured.
// Below the transition start round last season's data is trusted entirely;
// past the end round the current season takes over completely.
func (c *GwoddsConfig) EffectiveBlendWeight(round int) float64 {
	if c.BlendWeight >= 0 {
		return c.BlendWeight
	}
	if round <= c.TransitionStartRound {
		return 0.0
	}
	if round >= c.TransitionEndRound {
		return 1.0
	}
	return float64(round-c.TransitionStartRound) / float64(c.TransitionEndRound-c.TransitionStartRound)
}

// === CONFIGURATION VALIDATION ===

// ValidateConfig ensures all configuration values are within acceptable ranges.
// A bad global weight would silently corrupt every fixture, so this fails the
// whole run before any computation.
func ValidateConfig(config *GwoddsConfig) error {
	if config.BlendWeight != -1.0 && (config.BlendWeight < 0.0 || config.BlendWeight > 1.0) {
		return fmt.Errorf("%w: blend_weight must be in [0,1] or -1 for dynamic, got %f", ErrInvalidConfiguration, config.BlendWeight)
	}

	if config.TransitionStartRound < 0 || config.TransitionEndRound <= config.TransitionStartRound {
		return fmt.Errorf("%w: transition window must satisfy 0 <= start < end, got %d..%d",
			ErrInvalidConfiguration, config.TransitionStartRound, config.TransitionEndRound)
	}

	if config.PromotionPenalty <= 0.0 || config.PromotionPenalty > 1.0 {
		return fmt.Errorf("%w: promotion_penalty must be in (0,1], got %f", ErrInvalidConfiguration, config.PromotionPenalty)
	}

	if config.XGRateWeight < 0.0 || config.XGRateWeight > 1.0 {
		return fmt.Errorf("%w: xg_rate_weight must be in [0,1], got %f", ErrInvalidConfiguration, config.XGRateWeight)
	}

	if config.FormRateWeight < 0.0 || config.FormRateWeight > 1.0 {
		return fmt.Errorf("%w: form_rate_weight must be in [0,1], got %f", ErrInvalidConfiguration, config.FormRateWeight)
	}

	if config.GoalsTruncationCap < 5 {
		return fmt.Errorf("%w: goals_truncation_cap must be at least 5 to capture realistic scores, got %d",
			ErrInvalidConfiguration, config.GoalsTruncationCap)
	}

	if config.TopNScorelines < 1 {
		return fmt.Errorf("%w: top_n_scorelines must be at least 1, got %d", ErrInvalidConfiguration, config.TopNScorelines)
	}

	if config.MinExpectedGoals <= 0.0 || config.MinExpectedGoals > 0.5 {
		return fmt.Errorf("%w: min_expected_goals must be in (0,0.5], got %f", ErrInvalidConfiguration, config.MinExpectedGoals)
	}

	if config.DefaultHomeGoalsPerMatch <= 0.0 || config.DefaultAwayGoalsPerMatch <= 0.0 {
		return fmt.Errorf("%w: default goals per match must be positive", ErrInvalidConfiguration)
	}

	for league, avg := range config.LeagueAverageGoals {
		if avg <= 0.0 {
			return fmt.Errorf("%w: league_average_goals[%s] must be positive, got %f", ErrInvalidConfiguration, league, avg)
		}
	}

	if config.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalidConfiguration, config.Workers)
	}

	return nil
}
