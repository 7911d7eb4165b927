package gwodds

import "errors"

// Error kinds surfaced by the engine. Callers are expected to test these
// with errors.Is because every site wraps them with fmt.Errorf("%w").
var (
	// ErrMissingTeamData means a team had no usable season statistics.
	// The blender recovers from this locally via the league-average fallback,
	// so it only escapes when not even league averages exist.
	ErrMissingTeamData = errors.New("missing team data")

	// ErrInvalidExpectedGoals means a non-positive Poisson mean reached the
	// scoreline model. Fatal to that fixture only.
	ErrInvalidExpectedGoals = errors.New("invalid expected goals")

	// ErrUnresolvableFixture means neither team of a fixture could be
	// resolved to any statistics, not even a league average. The fixture is
	// skipped with a diagnostic and the batch continues.
	ErrUnresolvableFixture = errors.New("unresolvable fixture")

	// ErrInvalidConfiguration is fatal before any computation starts.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
