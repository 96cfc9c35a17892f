// Package dice provides the die model, the composable roller/roll hierarchy,
// and the deterministic random stream the whole engine evaluates against.
//
// A roller tree is assembled from SubRollers (dice at the leaves) and may be
// wrapped by a MultiRoller or StatsRoller at the top. Rolling walks the tree
// depth-first, left to right, threading one Rng so that a given seed always
// replays the same result.
package dice

import "errors"

// ErrNoFaces is returned when a die is authored without any faces.
var ErrNoFaces = errors.New("die must have at least one face")

// ErrEmptyPool is returned when a pool is asked to roll fewer than one time.
var ErrEmptyPool = errors.New("pool count must be >= 1")

// ErrDropsAll is returned when a pool strategy would drop every result.
var ErrDropsAll = errors.New("pool strategy must keep at least one result")

// ErrNoRuns is returned when a stats roller is asked for fewer than one run.
var ErrNoRuns = errors.New("stats runs must be >= 1")

// ErrInvalidExpression is returned when a dice expression cannot be parsed.
var ErrInvalidExpression = errors.New("invalid dice expression")

// ErrUnknownDie is returned when an expression names a die the resolver
// does not know.
var ErrUnknownDie = errors.New("unknown die")

// wrapped parenthesizes text unless simple is true.
func wrapped(text string, simple bool) string {
	if simple {
		return text
	}
	return "(" + text + ")"
}
